// Package host runs the launcher around the one launch request: take the
// instance lock, steal the service session, send the request, report the
// outcome, then hand control to a front end until the exit button.
package host

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mattjoyce/pmlaunch/internal/dispatch"
	"github.com/mattjoyce/pmlaunch/internal/lock"
	"github.com/mattjoyce/pmlaunch/internal/log"
	"github.com/mattjoyce/pmlaunch/internal/protocol"
	"github.com/mattjoyce/pmlaunch/internal/result"
	"github.com/mattjoyce/pmlaunch/internal/svc"
)

// Options fixes what the host launches.
type Options struct {
	Service  string
	Program  protocol.ProgramInfo
	Flags    protocol.LaunchFlags
	LockPath string // empty: no instance lock
}

// Frontend presents a Report and runs the frame loop. Run returns nil when
// the exit button was pressed, or ctx.Err() when cancelled.
type Frontend interface {
	Run(ctx context.Context, r Report) error
}

// Report is what the host learned from the launch.
type Report struct {
	RequestID string
	Service   string
	Handle    svc.Handle
	StealCode result.Code // kernel result of the session steal
	Program   protocol.ProgramInfo
	Flags     protocol.LaunchFlags
	Request   []uint32 // words sent, header first
	Outcome   dispatch.Outcome
	Elapsed   time.Duration
}

// Lines renders the report as console text.
func (r Report) Lines() []string {
	lines := []string{
		fmt.Sprintf("Steal %s rc %s", r.Service, r.StealCode.Hex()),
		fmt.Sprintf("LaunchTitle %s flags=%s rc %s", r.Program, r.Flags, r.Outcome.Code.Hex()),
	}
	if r.Outcome.Code.IsFailure() {
		lines = append(lines, fmt.Sprintf("  %s error: %s", r.Outcome.Source, r.Outcome.Code))
	}
	return lines
}

// Run launches once and then blocks in fe until exit. The session and the
// lock are released on every return path. A failed steal does not stop the
// launch: the request goes out over InvalidHandle and the transport reports
// the failure, which lands in the Report like any other outcome.
func Run(ctx context.Context, k svc.Kernel, opts Options, fe Frontend) (Report, error) {
	logger := log.WithComponent("host")

	if opts.LockPath != "" {
		l, err := lock.Acquire(opts.LockPath)
		if err != nil {
			return Report{}, err
		}
		defer func() {
			if err := l.Release(); err != nil {
				logger.Warn("release instance lock", "path", opts.LockPath, "error", err)
			}
		}()
		logger.Debug("acquired instance lock", "path", opts.LockPath)
	}

	if err := svc.ValidateServiceName(opts.Service); err != nil {
		return Report{}, err
	}

	var report Report
	acquired := false
	err := svc.WithSession(k, opts.Service, func(s *svc.Session) error {
		acquired = true
		report = launch(k, s.Handle(), result.Success, opts)
		return fe.Run(ctx, report)
	})
	if acquired {
		return report, err
	}

	var rerr *result.Error
	if !errors.As(err, &rerr) {
		return Report{}, err
	}
	logger.Warn("session steal failed, sending over invalid handle", "service", opts.Service, "result", rerr.Code.String())
	report = launch(k, svc.InvalidHandle, rerr.Code, opts)
	return report, fe.Run(ctx, report)
}

func launch(k svc.Kernel, h svc.Handle, steal result.Code, opts Options) Report {
	id := uuid.NewString()
	logger := log.WithRequest(id).With(slog.String("service", opts.Service))

	report := Report{
		RequestID: id,
		Service:   opts.Service,
		Handle:    h,
		StealCode: steal,
		Program:   opts.Program,
		Flags:     opts.Flags,
	}
	if buf, err := protocol.NewLaunchTitleRequest(opts.Program, opts.Flags).Encode(); err == nil {
		report.Request = append([]uint32(nil), buf.Used()...)
	}

	start := time.Now()
	report.Outcome = dispatch.New(k).WithLogger(logger).Launch(h, opts.Program, opts.Flags)
	report.Elapsed = time.Since(start)

	logger.Info("launch finished",
		"program", opts.Program.String(),
		"flags", opts.Flags.String(),
		"handle", h.String(),
		"source", report.Outcome.Source.String(),
		"result", report.Outcome.Code.Hex(),
		"elapsed", report.Elapsed,
	)
	return report
}
