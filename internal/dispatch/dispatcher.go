package dispatch

import (
	"log/slog"

	"github.com/mattjoyce/pmlaunch/internal/log"
	"github.com/mattjoyce/pmlaunch/internal/protocol"
	"github.com/mattjoyce/pmlaunch/internal/result"
	"github.com/mattjoyce/pmlaunch/internal/svc"
)

// Source tells which layer produced an Outcome's code.
type Source int

const (
	// SourceTransport means the kernel rejected or failed the request itself.
	SourceTransport Source = iota
	// SourceService means the request was delivered and the code came from
	// reply word 1.
	SourceService
	// SourceEncode means the request could not be serialized and was never sent.
	SourceEncode
)

func (s Source) String() string {
	switch s {
	case SourceTransport:
		return "transport"
	case SourceService:
		return "service"
	case SourceEncode:
		return "encode"
	default:
		return "unknown"
	}
}

// Outcome is the result of one launch attempt.
type Outcome struct {
	Code   result.Code
	Source Source
}

// Err converts the outcome to an error, nil on success.
func (o Outcome) Err() error {
	return result.Wrap("launch title ("+o.Source.String()+")", o.Code)
}

// encodeFailure is reported when a request cannot be serialized. It cannot
// happen for well-formed ProgramInfo values.
var encodeFailure = result.MakeResult(result.LevelUsage, result.SummaryInvalidArgument,
	result.ModuleApplication, result.DescriptionInvalidSize)

// Dispatcher issues launch requests over a kernel.
type Dispatcher struct {
	kernel svc.Kernel
	logger *slog.Logger
}

// New creates a Dispatcher.
func New(k svc.Kernel) *Dispatcher {
	return &Dispatcher{
		kernel: k,
		logger: log.WithComponent("dispatch"),
	}
}

// WithLogger returns a copy of d that logs through l.
func (d *Dispatcher) WithLogger(l *slog.Logger) *Dispatcher {
	return &Dispatcher{kernel: d.kernel, logger: l}
}

// Launch asks the process manager behind h to start program p.
func (d *Dispatcher) Launch(h svc.Handle, p protocol.ProgramInfo, flags protocol.LaunchFlags) Outcome {
	req := protocol.NewLaunchTitleRequest(p, flags)
	buf, err := req.Encode()
	if err != nil {
		d.logger.Error("encode launch request", "program", p.String(), "error", err)
		return Outcome{Code: encodeFailure, Source: SourceEncode}
	}

	d.logger.Debug("sending launch request",
		"handle", h.String(),
		"program", p.String(),
		"flags", flags.String(),
		"header", buf.Header().String(),
	)

	reply, rc := d.kernel.SendSyncRequest(h, buf)
	if rc.IsFailure() {
		d.logger.Warn("launch request transport failure", "handle", h.String(), "result", rc.String())
		return Outcome{Code: rc, Source: SourceTransport}
	}

	code := result.Code(protocol.NewReply(reply).ResultWord())
	if code.IsFailure() {
		d.logger.Warn("process manager rejected launch", "program", p.String(), "result", code.String())
	} else {
		d.logger.Info("process manager accepted launch", "program", p.String(), "result", code.Hex())
	}
	return Outcome{Code: code, Source: SourceService}
}

// LaunchTitle is the single-call form: one request, one result code.
func LaunchTitle(k svc.Kernel, h svc.Handle, p protocol.ProgramInfo, flags protocol.LaunchFlags) result.Code {
	return New(k).Launch(h, p, flags).Code
}
