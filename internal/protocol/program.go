package protocol

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// MediaType selects the storage a title is installed on.
type MediaType uint8

const (
	MediaTypeNAND     MediaType = 0
	MediaTypeSD       MediaType = 1
	MediaTypeGameCard MediaType = 2
)

var mediaTypeNames = map[MediaType]string{
	MediaTypeNAND:     "nand",
	MediaTypeSD:       "sd",
	MediaTypeGameCard: "gamecard",
}

func (m MediaType) String() string {
	if name, ok := mediaTypeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("media(%d)", uint8(m))
}

// ParseMediaType accepts the names printed by String, case-insensitively.
func ParseMediaType(s string) (MediaType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "nand":
		return MediaTypeNAND, nil
	case "sd", "sdmc":
		return MediaTypeSD, nil
	case "gamecard", "game_card", "card":
		return MediaTypeGameCard, nil
	}
	return 0, fmt.Errorf("unknown media type %q (want nand, sd or gamecard)", s)
}

// ProgramInfoSize is the serialized size of ProgramInfo.
const ProgramInfoSize = 16

// ProgramInfoWords is ProgramInfoSize in command buffer words.
const ProgramInfoWords = ProgramInfoSize / WordSize

// ProgramInfoSchema is the byte layout of a program descriptor.
var ProgramInfoSchema = Schema{
	Name: "program_info",
	Size: ProgramInfoSize,
	Fields: []Field{
		{Name: "program_id", Offset: 0, Width: 8, Order: binary.LittleEndian},
		{Name: "media_type", Offset: 8, Width: 1, Order: binary.LittleEndian},
		{Name: "padding", Offset: 9, Width: 7},
	},
}

// ProgramInfo identifies a launchable title and where it is stored.
type ProgramInfo struct {
	ProgramID uint64
	MediaType MediaType
}

func (p ProgramInfo) String() string {
	return fmt.Sprintf("%016X@%s", p.ProgramID, p.MediaType)
}

// MarshalBinary encodes p using ProgramInfoSchema.
func (p ProgramInfo) MarshalBinary() ([]byte, error) {
	return ProgramInfoSchema.Encode(map[string]uint64{
		"program_id": p.ProgramID,
		"media_type": uint64(p.MediaType),
	})
}

// UnmarshalBinary decodes exactly ProgramInfoSize bytes into p.
func (p *ProgramInfo) UnmarshalBinary(b []byte) error {
	values, err := ProgramInfoSchema.Decode(b)
	if err != nil {
		return err
	}
	p.ProgramID = values["program_id"]
	p.MediaType = MediaType(values["media_type"])
	return nil
}
