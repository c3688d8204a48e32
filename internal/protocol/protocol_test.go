package protocol

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeHeader(t *testing.T) {
	tests := []struct {
		name      string
		command   uint16
		normal    uint8
		translate uint8
		want      uint32
	}{
		{name: "launch title", command: 0x1, normal: 5, translate: 0, want: 0x00010140},
		{name: "no params", command: 0x2, want: 0x00020000},
		{name: "translate only", command: 0x403, translate: 2, want: 0x04030002},
		{name: "max fields", command: 0xFFFF, normal: 63, translate: 63, want: 0xFFFF0FFF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MakeHeader(tt.command, tt.normal, tt.translate)
			assert.Equal(t, tt.want, got)

			h := ParseHeader(got)
			assert.Equal(t, tt.command, h.Command)
			assert.Equal(t, tt.normal, h.Normal)
			assert.Equal(t, tt.translate, h.Translate)
			assert.Equal(t, got, h.Word())
		})
	}
}

func TestLaunchTitleHeaderConstant(t *testing.T) {
	assert.Equal(t, uint32(1<<16|5<<6|0), LaunchTitleHeader)
	assert.Equal(t, uint32(0x10140), LaunchTitleHeader)
}

func TestProgramInfoSchemaIsValid(t *testing.T) {
	require.NoError(t, ProgramInfoSchema.Validate())
}

func TestSchemaValidateRejectsGaps(t *testing.T) {
	s := Schema{
		Name: "gappy",
		Size: 8,
		Fields: []Field{
			{Name: "a", Offset: 0, Width: 4, Order: binary.LittleEndian},
			{Name: "b", Offset: 5, Width: 2, Order: binary.LittleEndian},
		},
	}
	assert.Error(t, s.Validate())

	s = Schema{
		Name:   "odd",
		Size:   3,
		Fields: []Field{{Name: "a", Offset: 0, Width: 3, Order: binary.LittleEndian}},
	}
	assert.Error(t, s.Validate())
}

func TestProgramInfoRoundTrip(t *testing.T) {
	cases := []ProgramInfo{
		{ProgramID: 0x0004013000CB9702, MediaType: MediaTypeNAND},
		{ProgramID: 0x0004000000055D00, MediaType: MediaTypeSD},
		{ProgramID: 0, MediaType: MediaTypeGameCard},
		{ProgramID: ^uint64(0), MediaType: MediaType(0xFF)},
	}

	for _, p := range cases {
		t.Run(p.String(), func(t *testing.T) {
			b, err := p.MarshalBinary()
			require.NoError(t, err)
			require.Len(t, b, ProgramInfoSize)

			var got ProgramInfo
			require.NoError(t, got.UnmarshalBinary(b))
			assert.Equal(t, p, got)
		})
	}
}

func TestProgramInfoLayout(t *testing.T) {
	p := ProgramInfo{ProgramID: 0x0004013000CB9702, MediaType: MediaTypeSD}
	b, err := p.MarshalBinary()
	require.NoError(t, err)

	assert.Equal(t, []byte{
		0x02, 0x97, 0xCB, 0x00, 0x30, 0x01, 0x04, 0x00,
		0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	}, b)
}

func TestProgramInfoRejectsPaddingDrift(t *testing.T) {
	b := make([]byte, ProgramInfoSize)
	b[12] = 0xAA

	var p ProgramInfo
	err := p.UnmarshalBinary(b)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrReservedBytes))

	assert.Error(t, p.UnmarshalBinary(make([]byte, ProgramInfoSize-1)))
}

func TestLaunchTitleRequestEncode(t *testing.T) {
	req := NewLaunchTitleRequest(
		ProgramInfo{ProgramID: 0x0004013000CB9702, MediaType: MediaTypeNAND},
		LaunchLoadDependencies,
	)

	buf, err := req.Encode()
	require.NoError(t, err)

	assert.Equal(t, []uint32{
		0x00010140,
		0x00CB9702,
		0x00040130,
		0x00000000,
		0x00000000,
		0x00000001,
	}, buf[:6])
	assert.Equal(t, buf[:6], buf.Used())

	assert.Equal(t, []byte{
		0x40, 0x01, 0x01, 0x00,
		0x02, 0x97, 0xCB, 0x00,
		0x30, 0x01, 0x04, 0x00,
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
		0x01, 0x00, 0x00, 0x00,
	}, buf.Bytes())

	for i := 6; i < CommandBufferWords; i++ {
		assert.Zero(t, buf[i], "word %d", i)
	}
}

func TestLaunchTitleHeaderInvariance(t *testing.T) {
	programs := []ProgramInfo{
		{ProgramID: 1, MediaType: MediaTypeNAND},
		{ProgramID: 0xFFFFFFFFFFFFFFFF, MediaType: MediaTypeGameCard},
		{ProgramID: 0x0004000000033500, MediaType: MediaTypeSD},
	}
	flags := []LaunchFlags{0, LaunchLoadDependencies, 0xFFFFFFFF}

	for _, p := range programs {
		for _, f := range flags {
			buf, err := NewLaunchTitleRequest(p, f).Encode()
			require.NoError(t, err)
			assert.Equal(t, uint32(0x10140), buf[0])
			assert.Equal(t, uint32(f), buf[5])
		}
	}
}

func TestDecodeLaunchTitleRequest(t *testing.T) {
	want := NewLaunchTitleRequest(
		ProgramInfo{ProgramID: 0x000400000F800100, MediaType: MediaTypeSD},
		LaunchLoadDependencies,
	)
	buf, err := want.Encode()
	require.NoError(t, err)

	got, err := DecodeLaunchTitleRequest(buf)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	bad := buf
	bad[0] = MakeHeader(CmdLaunchTitle, 4, 0)
	_, err = DecodeLaunchTitleRequest(bad)
	assert.Error(t, err)

	bad = buf
	bad[0] = MakeHeader(0x2, LaunchTitleNormalWords, 0)
	_, err = DecodeLaunchTitleRequest(bad)
	assert.Error(t, err)

	bad = buf
	bad[4] = 0x1
	_, err = DecodeLaunchTitleRequest(bad)
	assert.ErrorIs(t, err, ErrReservedBytes)
}

func TestPutBytesBounds(t *testing.T) {
	var buf CommandBuffer
	assert.ErrorIs(t, buf.PutBytes(0, []byte{1, 2, 3}), ErrUnaligned)
	assert.ErrorIs(t, buf.PutBytes(CommandBufferWords-1, make([]byte, 8)), ErrShortBuffer)
	assert.ErrorIs(t, buf.PutBytes(-1, make([]byte, 4)), ErrShortBuffer)
	require.NoError(t, buf.PutBytes(CommandBufferWords-2, make([]byte, 8)))

	_, err := buf.ReadBytes(CommandBufferWords, 4)
	assert.ErrorIs(t, err, ErrShortBuffer)
}

func TestReplyView(t *testing.T) {
	var buf CommandBuffer
	buf[0] = MakeHeader(CmdLaunchTitle, 1, 0)
	buf[1] = 0xC8A12402

	r := NewReply(buf)
	assert.Equal(t, uint32(0xC8A12402), r.ResultWord())
	assert.Equal(t, uint8(1), r.Header().Normal)
	assert.Zero(t, r.Word(CommandBufferWords))

	buf[1] = 0
	assert.Equal(t, uint32(0xC8A12402), r.ResultWord(), "reply must not alias the source buffer")
}

func TestLaunchFlags(t *testing.T) {
	assert.Equal(t, "none", LaunchFlags(0).String())
	assert.Equal(t, "load_dependencies", LaunchLoadDependencies.String())
	assert.Equal(t, "load_dependencies|0x100", (LaunchLoadDependencies | 0x100).String())

	f, err := ParseLaunchFlags([]string{"load_dependencies", "0x100"})
	require.NoError(t, err)
	assert.Equal(t, LaunchLoadDependencies|0x100, f)

	_, err = ParseLaunchFlags([]string{"warp_speed"})
	assert.Error(t, err)

	for _, bad := range []string{"0x1zz", "0x", "0x1ffffffff", "0x2 please", "0x10g", "1"} {
		_, err := ParseLaunchFlags([]string{bad})
		assert.Error(t, err, "flag %q", bad)
	}

	f, err = ParseLaunchFlags([]string{"0xFFFFFFFF"})
	require.NoError(t, err)
	assert.Equal(t, LaunchFlags(0xFFFFFFFF), f)
}

func TestParseMediaType(t *testing.T) {
	for in, want := range map[string]MediaType{
		"NAND":     MediaTypeNAND,
		"sd":       MediaTypeSD,
		"GameCard": MediaTypeGameCard,
	} {
		got, err := ParseMediaType(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseMediaType("tape")
	assert.Error(t, err)
}
