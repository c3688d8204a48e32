package protocol

import "fmt"

const (
	headerCommandShift = 16
	headerNormalShift  = 6
	headerFieldMask    = 0x3F

	// MaxParamWords is the largest word count a header field can declare.
	MaxParamWords = headerFieldMask
)

// Header is the decoded form of word 0 of a command buffer.
type Header struct {
	Command   uint16
	Normal    uint8 // plain parameter words following the header
	Translate uint8 // handle/buffer translation words following the normal words
}

// MakeHeader packs a header word as (command << 16) | (normal << 6) | translate.
// normal and translate are 6-bit fields; larger values are truncated.
func MakeHeader(command uint16, normal, translate uint8) uint32 {
	return uint32(command)<<headerCommandShift |
		(uint32(normal)&headerFieldMask)<<headerNormalShift |
		uint32(translate)&headerFieldMask
}

// ParseHeader splits a header word into its fields.
func ParseHeader(word uint32) Header {
	return Header{
		Command:   uint16(word >> headerCommandShift),
		Normal:    uint8(word >> headerNormalShift & headerFieldMask),
		Translate: uint8(word & headerFieldMask),
	}
}

// Word packs h back into a header word.
func (h Header) Word() uint32 { return MakeHeader(h.Command, h.Normal, h.Translate) }

// Words is the number of parameter words the header declares.
func (h Header) Words() int { return int(h.Normal) + int(h.Translate) }

func (h Header) String() string {
	return fmt.Sprintf("cmd=0x%04x normal=%d translate=%d (0x%08x)", h.Command, h.Normal, h.Translate, h.Word())
}
