package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrReservedBytes is returned when a reserved field holds non-zero bytes.
var ErrReservedBytes = errors.New("reserved bytes are not zero")

// Field describes one value in a fixed byte layout.
type Field struct {
	Name   string
	Offset int
	Width  int              // 1, 2, 4 or 8 for values; any size for reserved
	Order  binary.ByteOrder // nil marks a reserved field that must stay zero
}

// Reserved reports whether the field is padding.
func (f Field) Reserved() bool { return f.Order == nil }

// Schema is a fixed-size layout made of contiguous fields.
type Schema struct {
	Name   string
	Size   int
	Fields []Field
}

// Validate checks that the fields tile the layout exactly, in order, with
// supported widths.
func (s Schema) Validate() error {
	next := 0
	for _, f := range s.Fields {
		if f.Offset != next {
			return fmt.Errorf("%s.%s: offset %d, want %d", s.Name, f.Name, f.Offset, next)
		}
		if !f.Reserved() {
			switch f.Width {
			case 1, 2, 4, 8:
			default:
				return fmt.Errorf("%s.%s: unsupported width %d", s.Name, f.Name, f.Width)
			}
		} else if f.Width <= 0 {
			return fmt.Errorf("%s.%s: empty reserved field", s.Name, f.Name)
		}
		next += f.Width
	}
	if next != s.Size {
		return fmt.Errorf("%s: fields cover %d bytes, size is %d", s.Name, next, s.Size)
	}
	return nil
}

// Field looks up a field by name.
func (s Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Encode lays values out by field name into a zeroed buffer of s.Size
// bytes. Reserved fields are left zero.
func (s Schema) Encode(values map[string]uint64) ([]byte, error) {
	b := make([]byte, s.Size)
	for _, f := range s.Fields {
		if f.Reserved() {
			continue
		}
		v, ok := values[f.Name]
		if !ok {
			return nil, fmt.Errorf("%s: missing value for %s", s.Name, f.Name)
		}
		if f.Width < 8 && v>>(8*f.Width) != 0 {
			return nil, fmt.Errorf("%s.%s: value %#x overflows %d bytes", s.Name, f.Name, v, f.Width)
		}
		putUint(b[f.Offset:f.Offset+f.Width], f.Order, v)
	}
	return b, nil
}

// Decode reads every value field from b and verifies reserved fields are zero.
func (s Schema) Decode(b []byte) (map[string]uint64, error) {
	if len(b) != s.Size {
		return nil, fmt.Errorf("%s: got %d bytes, want %d", s.Name, len(b), s.Size)
	}
	out := make(map[string]uint64, len(s.Fields))
	for _, f := range s.Fields {
		chunk := b[f.Offset : f.Offset+f.Width]
		if f.Reserved() {
			for _, c := range chunk {
				if c != 0 {
					return nil, fmt.Errorf("%s.%s: %w", s.Name, f.Name, ErrReservedBytes)
				}
			}
			continue
		}
		out[f.Name] = getUint(chunk, f.Order)
	}
	return out, nil
}

func putUint(b []byte, order binary.ByteOrder, v uint64) {
	switch len(b) {
	case 1:
		b[0] = byte(v)
	case 2:
		order.PutUint16(b, uint16(v))
	case 4:
		order.PutUint32(b, uint32(v))
	case 8:
		order.PutUint64(b, v)
	}
}

func getUint(b []byte, order binary.ByteOrder) uint64 {
	switch len(b) {
	case 1:
		return uint64(b[0])
	case 2:
		return uint64(order.Uint16(b))
	case 4:
		return uint64(order.Uint32(b))
	case 8:
		return order.Uint64(b)
	}
	return 0
}
