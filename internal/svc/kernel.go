// Package svc is the boundary between the launcher and the kernel: the
// supervisor calls it consumes and the service-session acquirer built on
// top of them.
package svc

import (
	"fmt"

	"github.com/mattjoyce/pmlaunch/internal/protocol"
	"github.com/mattjoyce/pmlaunch/internal/result"
)

//go:generate mockgen -destination=mocks/mock_kernel.go -package=mocks github.com/mattjoyce/pmlaunch/internal/svc Kernel

// Handle is a kernel-issued capability for one endpoint.
type Handle uint32

// InvalidHandle is the value of a handle that was never acquired or has
// been released.
const InvalidHandle Handle = 0

func (h Handle) String() string { return fmt.Sprintf("0x%08x", uint32(h)) }

// Kernel is the set of supervisor calls the launcher depends on.
type Kernel interface {
	// StealClientSession takes over an existing client session to the named
	// service and returns a new handle for it in the caller's table.
	StealClientSession(name string) (Handle, result.Code)

	// SendSyncRequest delivers req over h and blocks until the service
	// replies. A failing code is a transport error; the reply is only
	// meaningful when the code succeeds.
	SendSyncRequest(h Handle, req protocol.CommandBuffer) (protocol.CommandBuffer, result.Code)

	// CloseHandle releases h from the caller's table.
	CloseHandle(h Handle) result.Code
}
