package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// CommandBufferWords is the size of a command buffer in 32-bit words.
const CommandBufferWords = 64

// WordSize is the width of one command buffer word in bytes.
const WordSize = 4

var (
	// ErrShortBuffer is returned when a payload does not fit in the buffer.
	ErrShortBuffer = errors.New("command buffer too small for payload")

	// ErrUnaligned is returned when a payload is not a whole number of words.
	ErrUnaligned = errors.New("payload is not word aligned")
)

// CommandBuffer is the fixed-size word array exchanged with the kernel. A
// request is written into a fresh value; the kernel hands back a separate
// value holding the reply.
type CommandBuffer [CommandBufferWords]uint32

// Header decodes word 0.
func (b *CommandBuffer) Header() Header { return ParseHeader(b[0]) }

// PutBytes copies p into the buffer starting at word index at. Words are
// little-endian, so the bytes land in memory order.
func (b *CommandBuffer) PutBytes(at int, p []byte) error {
	if len(p)%WordSize != 0 {
		return fmt.Errorf("put %d bytes: %w", len(p), ErrUnaligned)
	}
	n := len(p) / WordSize
	if at < 0 || at+n > CommandBufferWords {
		return fmt.Errorf("put %d words at %d: %w", n, at, ErrShortBuffer)
	}
	for i := range n {
		b[at+i] = binary.LittleEndian.Uint32(p[i*WordSize:])
	}
	return nil
}

// ReadBytes returns n bytes starting at word index at.
func (b *CommandBuffer) ReadBytes(at, n int) ([]byte, error) {
	if n%WordSize != 0 {
		return nil, fmt.Errorf("read %d bytes: %w", n, ErrUnaligned)
	}
	words := n / WordSize
	if at < 0 || at+words > CommandBufferWords {
		return nil, fmt.Errorf("read %d words at %d: %w", words, at, ErrShortBuffer)
	}
	out := make([]byte, n)
	for i := range words {
		binary.LittleEndian.PutUint32(out[i*WordSize:], b[at+i])
	}
	return out, nil
}

// Used returns the header word plus every parameter word it declares.
func (b *CommandBuffer) Used() []uint32 {
	n := 1 + b.Header().Words()
	if n > CommandBufferWords {
		n = CommandBufferWords
	}
	return b[:n]
}

// Bytes returns the used words serialized little-endian.
func (b *CommandBuffer) Bytes() []byte {
	used := b.Used()
	out := make([]byte, len(used)*WordSize)
	for i, w := range used {
		binary.LittleEndian.PutUint32(out[i*WordSize:], w)
	}
	return out
}

// Reply is a read-only view of a buffer returned by the kernel.
type Reply struct {
	buf CommandBuffer
}

// NewReply wraps a buffer returned from a synchronous request.
func NewReply(buf CommandBuffer) Reply { return Reply{buf: buf} }

// Header decodes the reply's header word.
func (r Reply) Header() Header { return r.buf.Header() }

// Word returns reply word i, or zero when i is out of range.
func (r Reply) Word(i int) uint32 {
	if i < 0 || i >= CommandBufferWords {
		return 0
	}
	return r.buf[i]
}

// ResultWord is word 1, where services place their own result code.
func (r Reply) ResultWord() uint32 { return r.buf[1] }
