// Package result models the packed status codes returned by the kernel and
// by system services.
//
// A Code is a 32-bit value laid out as:
//
//	bits  0-9   description
//	bits 10-17  module
//	bits 21-26  summary
//	bits 27-31  level
//
// Zero is success. Any code that is negative when read as int32 is a failure.
// The raw integer is canonical; the accessors only decompose it.
package result

import (
	"fmt"
	"strconv"
	"strings"
)

// Code is a raw result code.
type Code uint32

// Success is the zero result.
const Success Code = 0

const (
	descriptionBits = 10
	moduleShift     = 10
	moduleBits      = 8
	summaryShift    = 21
	summaryBits     = 6
	levelShift      = 27
	levelBits       = 5
)

// MakeResult packs the four fields into a Code. Fields wider than their slot
// are truncated.
func MakeResult(level Level, summary Summary, module Module, description Description) Code {
	return Code(uint32(level)&mask(levelBits))<<levelShift |
		Code(uint32(summary)&mask(summaryBits))<<summaryShift |
		Code(uint32(module)&mask(moduleBits))<<moduleShift |
		Code(uint32(description)&mask(descriptionBits))
}

func mask(bits uint) uint32 { return 1<<bits - 1 }

// IsSuccess reports whether the code is not a failure.
func (c Code) IsSuccess() bool { return int32(c) >= 0 }

// IsFailure reports whether the code is a failure (negative as int32).
func (c Code) IsFailure() bool { return int32(c) < 0 }

func (c Code) Level() Level { return Level(uint32(c) >> levelShift & mask(levelBits)) }
func (c Code) Summary() Summary { return Summary(uint32(c) >> summaryShift & mask(summaryBits)) }
func (c Code) Module() Module { return Module(uint32(c) >> moduleShift & mask(moduleBits)) }
func (c Code) Description() Description { return Description(uint32(c) & mask(descriptionBits)) }

// Hex formats the raw value the way the console prints it, e.g. "d8e007f7".
func (c Code) Hex() string { return fmt.Sprintf("%08x", uint32(c)) }

// String renders the raw value together with its decomposition.
func (c Code) String() string {
	if c == Success {
		return "0x00000000 (success)"
	}
	return fmt.Sprintf("0x%s (level=%s summary=%s module=%s description=%s)",
		c.Hex(), c.Level(), c.Summary(), c.Module(), c.Description())
}

// Err returns nil for non-failure codes and a *Error otherwise.
func (c Code) Err() error {
	if c.IsSuccess() {
		return nil
	}
	return &Error{Code: c}
}

// Parse reads a code written as hex (with or without 0x) or as a signed
// decimal integer.
func Parse(s string) (Code, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty result code")
	}

	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, "0x") {
		v, err := strconv.ParseUint(lower[2:], 16, 32)
		if err != nil {
			return 0, fmt.Errorf("parse result code %q: %w", s, err)
		}
		return Code(v), nil
	}

	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		if v < -1<<31 || v > 1<<32-1 {
			return 0, fmt.Errorf("result code %q out of range", s)
		}
		return Code(uint32(v)), nil
	}

	v, err := strconv.ParseUint(lower, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("parse result code %q: %w", s, err)
	}
	return Code(v), nil
}

// Error wraps a failing Code so it can travel through error returns.
type Error struct {
	Code Code
	Op   string
}

func (e *Error) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Code)
	}
	return e.Code.String()
}

// Is matches another *Error carrying the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Wrap attaches an operation name to a failing code. It returns nil when the
// code is not a failure.
func Wrap(op string, c Code) error {
	if c.IsSuccess() {
		return nil
	}
	return &Error{Code: c, Op: op}
}
