package dispatch

import (
	"os"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattjoyce/pmlaunch/internal/log"
	"github.com/mattjoyce/pmlaunch/internal/protocol"
	"github.com/mattjoyce/pmlaunch/internal/result"
	"github.com/mattjoyce/pmlaunch/internal/svc"
	"github.com/mattjoyce/pmlaunch/internal/svc/mocks"
)

func TestMain(m *testing.M) {
	log.Setup("ERROR") // Suppress logs in tests
	os.Exit(m.Run())
}

var pnp = protocol.ProgramInfo{ProgramID: 0x0004013000CB9702, MediaType: protocol.MediaTypeNAND}

// replyWith builds a reply buffer carrying code in word 1.
func replyWith(code result.Code) protocol.CommandBuffer {
	var buf protocol.CommandBuffer
	buf[0] = protocol.MakeHeader(protocol.CmdLaunchTitle, 1, 0)
	buf[1] = uint32(code)
	return buf
}

func TestLaunchEndToEnd(t *testing.T) {
	ctrl := gomock.NewController(t)
	k := mocks.NewMockKernel(ctrl)

	var sent protocol.CommandBuffer
	k.EXPECT().
		SendSyncRequest(svc.Handle(0x20), gomock.Any()).
		DoAndReturn(func(_ svc.Handle, req protocol.CommandBuffer) (protocol.CommandBuffer, result.Code) {
			sent = req
			return replyWith(result.Success), result.Success
		})

	code := LaunchTitle(k, svc.Handle(0x20), pnp, protocol.LaunchLoadDependencies)
	assert.Equal(t, result.Success, code)

	assert.Equal(t, []uint32{0x00010140, 0x00CB9702, 0x00040130, 0, 0, 1}, sent[:6])
}

func TestLaunchDoesNotValidateHandle(t *testing.T) {
	ctrl := gomock.NewController(t)
	k := mocks.NewMockKernel(ctrl)

	k.EXPECT().
		SendSyncRequest(svc.InvalidHandle, gomock.Any()).
		Return(protocol.CommandBuffer{}, result.InvalidHandle).
		Times(1)

	out := New(k).Launch(svc.InvalidHandle, pnp, protocol.LaunchLoadDependencies)
	assert.Equal(t, result.InvalidHandle, out.Code)
	assert.Equal(t, SourceTransport, out.Source)
}

func TestLaunchTransportFailureShortCircuits(t *testing.T) {
	ctrl := gomock.NewController(t)
	k := mocks.NewMockKernel(ctrl)

	// A reply that would read as success if anyone looked at it.
	garbage := replyWith(result.Success)
	k.EXPECT().SendSyncRequest(gomock.Any(), gomock.Any()).Return(garbage, result.InvalidCommandHeader)

	out := New(k).Launch(svc.Handle(1), pnp, 0)
	assert.Equal(t, result.InvalidCommandHeader, out.Code)
	assert.Equal(t, SourceTransport, out.Source)
	assert.Error(t, out.Err())
}

func TestLaunchServiceResultPassThrough(t *testing.T) {
	notFound := result.MakeResult(result.LevelPermanent, result.SummaryNotFound, result.ModulePM, result.DescriptionNotFound)

	tests := []struct {
		name string
		code result.Code
	}{
		{name: "success", code: result.Success},
		{name: "not found", code: notFound},
		{name: "raw value", code: 0xC8A12402},
		{name: "positive info code", code: 0x0000BEEF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			k := mocks.NewMockKernel(ctrl)
			k.EXPECT().SendSyncRequest(svc.Handle(4), gomock.Any()).Return(replyWith(tt.code), result.Success)

			out := New(k).Launch(svc.Handle(4), pnp, protocol.LaunchLoadDependencies)
			assert.Equal(t, tt.code, out.Code)
			assert.Equal(t, SourceService, out.Source)
			if tt.code.IsFailure() {
				assert.Error(t, out.Err())
			} else {
				assert.NoError(t, out.Err())
			}
		})
	}
}

func TestLaunchHeaderInvariance(t *testing.T) {
	ctrl := gomock.NewController(t)
	k := mocks.NewMockKernel(ctrl)

	var headers []uint32
	k.EXPECT().
		SendSyncRequest(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ svc.Handle, req protocol.CommandBuffer) (protocol.CommandBuffer, result.Code) {
			headers = append(headers, req[0])
			return replyWith(result.Success), result.Success
		}).
		Times(4)

	d := New(k)
	d.Launch(1, protocol.ProgramInfo{ProgramID: 1, MediaType: protocol.MediaTypeSD}, 0)
	d.Launch(1, protocol.ProgramInfo{ProgramID: ^uint64(0), MediaType: protocol.MediaTypeGameCard}, 0xFFFFFFFF)
	d.Launch(2, pnp, protocol.LaunchLoadDependencies)
	d.Launch(0, pnp, 0)

	require.Len(t, headers, 4)
	for _, h := range headers {
		assert.Equal(t, uint32((1<<16)|(5<<6)|0), h)
	}
}

func TestLaunchIsStateless(t *testing.T) {
	ctrl := gomock.NewController(t)
	k := mocks.NewMockKernel(ctrl)

	var reqs []protocol.CommandBuffer
	k.EXPECT().
		SendSyncRequest(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ svc.Handle, req protocol.CommandBuffer) (protocol.CommandBuffer, result.Code) {
			reqs = append(reqs, req)
			// Scribble on the reply the way a service reuses the buffer.
			reply := req
			reply[1] = 0xDEADBEEF
			reply[5] = 0xFFFFFFFF
			return reply, result.Success
		}).
		Times(2)

	d := New(k)
	first := d.Launch(1, pnp, protocol.LaunchLoadDependencies)
	second := d.Launch(1, pnp, protocol.LaunchLoadDependencies)

	assert.Equal(t, first, second)
	assert.Equal(t, reqs[0], reqs[1])
	assert.Equal(t, uint32(1), reqs[1][5])
}

func TestSourceString(t *testing.T) {
	assert.Equal(t, "transport", SourceTransport.String())
	assert.Equal(t, "service", SourceService.String())
	assert.Equal(t, "encode", SourceEncode.String())
	assert.Equal(t, "unknown", Source(42).String())
}
