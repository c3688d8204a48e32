// Package sim is an in-process stand-in for the microkernel: a handle table,
// a registry of running services with live client sessions, and synchronous
// request delivery. It lets the launcher run and be tested off-device.
package sim

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/mattjoyce/pmlaunch/internal/log"
	"github.com/mattjoyce/pmlaunch/internal/protocol"
	"github.com/mattjoyce/pmlaunch/internal/result"
	"github.com/mattjoyce/pmlaunch/internal/svc"
)

// DefaultMaxHandles bounds the caller's handle table.
const DefaultMaxHandles = 32

// Service handles requests delivered to one named endpoint. A failing code
// is reported to the caller as a transport error; otherwise the returned
// buffer is the reply.
type Service interface {
	HandleRequest(req protocol.CommandBuffer) (protocol.CommandBuffer, result.Code)
}

type registration struct {
	service  Service
	sessions int // live client sessions other processes hold
}

// Kernel implements svc.Kernel in memory.
type Kernel struct {
	mu         sync.Mutex
	services   map[string]*registration
	handles    map[svc.Handle]string
	nextHandle svc.Handle
	maxHandles int
	requests   int
	logger     *slog.Logger
}

var _ svc.Kernel = (*Kernel)(nil)

// NewKernel creates an empty kernel.
func NewKernel() *Kernel {
	return &Kernel{
		services:   make(map[string]*registration),
		handles:    make(map[svc.Handle]string),
		nextHandle: 0x10,
		maxHandles: DefaultMaxHandles,
		logger:     log.WithComponent("sim-kernel"),
	}
}

// SetMaxHandles changes the handle table size.
func (k *Kernel) SetMaxHandles(n int) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.maxHandles = n
}

// Register makes a service reachable under name. liveSessions is the number
// of client sessions other processes already hold; a steal needs at least one.
func (k *Kernel) Register(name string, s Service, liveSessions int) error {
	if err := svc.ValidateServiceName(name); err != nil {
		return err
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	if _, exists := k.services[name]; exists {
		return fmt.Errorf("service %q already registered", name)
	}
	k.services[name] = &registration{service: s, sessions: liveSessions}
	return nil
}

// StealClientSession duplicates an existing client session into the
// caller's handle table.
func (k *Kernel) StealClientSession(name string) (svc.Handle, result.Code) {
	k.mu.Lock()
	defer k.mu.Unlock()

	reg, ok := k.services[name]
	if !ok || reg.sessions == 0 {
		k.logger.Debug("no session to steal", "service", name)
		return svc.InvalidHandle, result.SessionNotFound
	}
	if len(k.handles) >= k.maxHandles {
		return svc.InvalidHandle, result.OutOfHandles
	}

	h := k.nextHandle
	k.nextHandle++
	k.handles[h] = name
	k.logger.Debug("session stolen", "service", name, "handle", h.String())
	return h, result.Success
}

// SendSyncRequest routes req to the service behind h and blocks for the reply.
func (k *Kernel) SendSyncRequest(h svc.Handle, req protocol.CommandBuffer) (protocol.CommandBuffer, result.Code) {
	k.mu.Lock()
	defer k.mu.Unlock()

	k.requests++
	name, ok := k.handles[h]
	if !ok {
		return protocol.CommandBuffer{}, result.InvalidHandle
	}
	reg := k.services[name]
	return reg.service.HandleRequest(req)
}

// CloseHandle removes h from the table.
func (k *Kernel) CloseHandle(h svc.Handle) result.Code {
	k.mu.Lock()
	defer k.mu.Unlock()

	if _, ok := k.handles[h]; !ok {
		return result.InvalidHandle
	}
	delete(k.handles, h)
	return result.Success
}

// OpenHandles lists handles currently in the table, sorted.
func (k *Kernel) OpenHandles() []svc.Handle {
	k.mu.Lock()
	defer k.mu.Unlock()

	out := make([]svc.Handle, 0, len(k.handles))
	for h := range k.handles {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Requests counts SendSyncRequest calls, including ones that failed.
func (k *Kernel) Requests() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.requests
}
