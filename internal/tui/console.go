package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mattjoyce/pmlaunch/internal/hid"
	"github.com/mattjoyce/pmlaunch/internal/host"
	"github.com/mattjoyce/pmlaunch/internal/log"
)

// ErrAborted is returned when the loop is interrupted with ctrl+c.
var ErrAborted = errors.New("console aborted")

// Console runs Model as a host.Frontend.
type Console struct {
	Exit  hid.Buttons
	Frame time.Duration

	// In and Out override the terminal; nil means stdin/stdout.
	In  io.Reader
	Out io.Writer
}

var _ host.Frontend = (*Console)(nil)

func (c *Console) Run(ctx context.Context, r host.Report) error {
	logger := log.WithComponent("tui")

	opts := []tea.ProgramOption{tea.WithContext(ctx), tea.WithAltScreen()}
	if c.In != nil {
		opts = append(opts, tea.WithInput(c.In))
	}
	if c.Out != nil {
		opts = append(opts, tea.WithOutput(c.Out))
	}

	final, err := tea.NewProgram(NewModel(r, c.Exit, c.Frame), opts...).Run()
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("console: %w", err)
	}

	m, ok := final.(Model)
	if !ok {
		return fmt.Errorf("console: unexpected model %T", final)
	}
	logger.Debug("frame loop finished", "frames", m.Frames(), "exited", m.Exited())
	if m.Aborted() {
		return ErrAborted
	}
	return nil
}
