package sim

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/mattjoyce/pmlaunch/internal/log"
	"github.com/mattjoyce/pmlaunch/internal/protocol"
	"github.com/mattjoyce/pmlaunch/internal/result"
)

// Process manager results placed in reply word 1.
var (
	ErrTitleNotFound     = result.MakeResult(result.LevelPermanent, result.SummaryNotFound, result.ModulePM, result.DescriptionNotFound)
	ErrNotAuthorized     = result.MakeResult(result.LevelPermanent, result.SummaryInvalidState, result.ModulePM, result.DescriptionNotAuthorized)
	ErrAlreadyRunning    = result.MakeResult(result.LevelStatus, result.SummaryInvalidState, result.ModulePM, result.DescriptionAlreadyExists)
	ErrDependencyMissing = result.MakeResult(result.LevelPermanent, result.SummaryNotFound, result.ModulePM, result.DescriptionNoData)
)

// Title is an installed program.
type Title struct {
	Program      protocol.ProgramInfo
	Name         string
	Dependencies []uint64 // program ids of NAND modules loaded with LaunchLoadDependencies
	Denied       bool     // pm refuses to launch it
}

// Process is a running title.
type Process struct {
	PID     uint32
	Program protocol.ProgramInfo
	Name    string
}

// ProcessManager is the pm:app endpoint. It accepts only the launch-title
// command and validates the header's word counts before decoding.
type ProcessManager struct {
	mu        sync.Mutex
	installed map[protocol.ProgramInfo]Title
	running   []Process
	nextPID   uint32
	logger    *slog.Logger
}

var _ Service = (*ProcessManager)(nil)

// NewProcessManager creates a process manager with the given titles installed.
func NewProcessManager(titles ...Title) *ProcessManager {
	pm := &ProcessManager{
		installed: make(map[protocol.ProgramInfo]Title),
		nextPID:   0x28,
		logger:    log.WithComponent("sim-pm"),
	}
	for _, t := range titles {
		pm.installed[t.Program] = t
	}
	return pm
}

// HandleRequest routes a command buffer by command id.
func (pm *ProcessManager) HandleRequest(req protocol.CommandBuffer) (protocol.CommandBuffer, result.Code) {
	h := req.Header()
	switch h.Command {
	case protocol.CmdLaunchTitle:
		launch, err := protocol.DecodeLaunchTitleRequest(req)
		if err != nil {
			pm.logger.Debug("rejecting malformed launch request", "header", h.String(), "error", err)
			return protocol.CommandBuffer{}, result.InvalidCommandHeader
		}
		return replyFor(h.Command, pm.launch(launch)), result.Success
	default:
		pm.logger.Debug("unknown command", "header", h.String())
		return protocol.CommandBuffer{}, result.InvalidCommandHeader
	}
}

func replyFor(cmd uint16, code result.Code) protocol.CommandBuffer {
	var reply protocol.CommandBuffer
	reply[0] = protocol.MakeHeader(cmd, 1, 0)
	reply[1] = uint32(code)
	return reply
}

func (pm *ProcessManager) launch(req protocol.LaunchTitleRequest) result.Code {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	title, ok := pm.installed[req.Program]
	if !ok {
		return ErrTitleNotFound
	}
	if title.Denied {
		return ErrNotAuthorized
	}
	if pm.isRunning(req.Program) {
		return ErrAlreadyRunning
	}

	var deps []Title
	if req.Flags.Has(protocol.LaunchLoadDependencies) {
		for _, id := range title.Dependencies {
			dep, ok := pm.installed[protocol.ProgramInfo{ProgramID: id, MediaType: protocol.MediaTypeNAND}]
			if !ok {
				pm.logger.Debug("dependency not installed", "program", title.Program.String(), "dependency", fmt.Sprintf("%016X", id))
				return ErrDependencyMissing
			}
			deps = append(deps, dep)
		}
	}

	for _, dep := range deps {
		if !pm.isRunning(dep.Program) {
			pm.start(dep)
		}
	}
	pm.start(title)
	return result.Success
}

func (pm *ProcessManager) isRunning(p protocol.ProgramInfo) bool {
	for _, proc := range pm.running {
		if proc.Program == p {
			return true
		}
	}
	return false
}

func (pm *ProcessManager) start(t Title) {
	proc := Process{PID: pm.nextPID, Program: t.Program, Name: t.Name}
	pm.nextPID++
	pm.running = append(pm.running, proc)
	pm.logger.Info("process started", "pid", proc.PID, "program", t.Program.String(), "name", t.Name)
}

// Running returns a snapshot of started processes in launch order.
func (pm *ProcessManager) Running() []Process {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	return append([]Process(nil), pm.running...)
}

// Boot creates a kernel with a process manager registered under name and one
// live client session to steal, the state a launcher finds after boot.
func Boot(name string, titles ...Title) (*Kernel, *ProcessManager, error) {
	k := NewKernel()
	pm := NewProcessManager(titles...)
	if err := k.Register(name, pm, 1); err != nil {
		return nil, nil, fmt.Errorf("register %s: %w", name, err)
	}
	return k, pm, nil
}
