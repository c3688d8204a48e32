package protocol

import (
	"fmt"
	"strconv"
	"strings"
)

// CmdLaunchTitle is the pm:app command id for launching a title.
const CmdLaunchTitle uint16 = 0x1

// LaunchTitleNormalWords is the descriptor plus the flags word.
const LaunchTitleNormalWords = ProgramInfoWords + 1

// LaunchTitleHeader is the header word every launch request carries.
var LaunchTitleHeader = MakeHeader(CmdLaunchTitle, LaunchTitleNormalWords, 0)

// LaunchFlags modifies how the process manager starts a title.
type LaunchFlags uint32

const (
	// LaunchLoadDependencies also starts the modules the title declares.
	LaunchLoadDependencies LaunchFlags = 1 << 0
)

var launchFlagNames = []struct {
	flag LaunchFlags
	name string
}{
	{LaunchLoadDependencies, "load_dependencies"},
}

// Has reports whether every bit of f2 is set.
func (f LaunchFlags) Has(f2 LaunchFlags) bool { return f&f2 == f2 }

func (f LaunchFlags) String() string {
	if f == 0 {
		return "none"
	}
	var parts []string
	rest := f
	for _, n := range launchFlagNames {
		if f.Has(n.flag) {
			parts = append(parts, n.name)
			rest &^= n.flag
		}
	}
	if rest != 0 {
		parts = append(parts, fmt.Sprintf("0x%x", uint32(rest)))
	}
	return strings.Join(parts, "|")
}

// ParseLaunchFlags combines named flags. Hex literals are accepted for bits
// without a name.
func ParseLaunchFlags(names []string) (LaunchFlags, error) {
	var f LaunchFlags
	for _, raw := range names {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "" || name == "none" {
			continue
		}
		found := false
		for _, n := range launchFlagNames {
			if n.name == name {
				f |= n.flag
				found = true
				break
			}
		}
		if found {
			continue
		}
		hexDigits, ok := strings.CutPrefix(name, "0x")
		if !ok {
			return 0, fmt.Errorf("unknown launch flag %q", raw)
		}
		bits, err := strconv.ParseUint(hexDigits, 16, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid launch flag %q: %w", raw, err)
		}
		f |= LaunchFlags(bits)
	}
	return f, nil
}

// LaunchTitleRequest is the argument set of a launch command.
type LaunchTitleRequest struct {
	Program ProgramInfo
	Flags   LaunchFlags
}

// NewLaunchTitleRequest builds a request value.
func NewLaunchTitleRequest(p ProgramInfo, f LaunchFlags) LaunchTitleRequest {
	return LaunchTitleRequest{Program: p, Flags: f}
}

// Encode serializes the request into a fresh command buffer: the header, the
// descriptor copied verbatim into words 1-4, and the flags in word 5.
func (r LaunchTitleRequest) Encode() (CommandBuffer, error) {
	var buf CommandBuffer
	buf[0] = LaunchTitleHeader

	info, err := r.Program.MarshalBinary()
	if err != nil {
		return CommandBuffer{}, fmt.Errorf("encode program info: %w", err)
	}
	if err := buf.PutBytes(1, info); err != nil {
		return CommandBuffer{}, fmt.Errorf("encode program info: %w", err)
	}
	buf[1+ProgramInfoWords] = uint32(r.Flags)
	return buf, nil
}

// DecodeLaunchTitleRequest is the server-side inverse of Encode. The header
// must declare exactly the launch command's word counts.
func DecodeLaunchTitleRequest(buf CommandBuffer) (LaunchTitleRequest, error) {
	h := buf.Header()
	if h.Command != CmdLaunchTitle {
		return LaunchTitleRequest{}, fmt.Errorf("command 0x%04x is not launch title", h.Command)
	}
	if h.Normal != LaunchTitleNormalWords || h.Translate != 0 {
		return LaunchTitleRequest{}, fmt.Errorf("launch title header %s: want normal=%d translate=0",
			h, LaunchTitleNormalWords)
	}

	info, err := buf.ReadBytes(1, ProgramInfoSize)
	if err != nil {
		return LaunchTitleRequest{}, fmt.Errorf("decode program info: %w", err)
	}
	var req LaunchTitleRequest
	if err := req.Program.UnmarshalBinary(info); err != nil {
		return LaunchTitleRequest{}, fmt.Errorf("decode program info: %w", err)
	}
	req.Flags = LaunchFlags(buf[1+ProgramInfoWords])
	return req, nil
}
