package host

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mattjoyce/pmlaunch/internal/hid"
	"github.com/mattjoyce/pmlaunch/internal/log"
)

// DefaultFrame is the frame interval used when none is set.
const DefaultFrame = time.Second / 60

// Headless is the line-mode front end for pipes and serial consoles. Every
// input byte is a button press; the frame loop polls them once per tick.
//
// Headless owns In for the life of the process. A read blocked on an idle
// In outlives Run; the reader stops at its next byte or at EOF.
type Headless struct {
	In    io.Reader
	Out   io.Writer
	Exit  hid.Buttons
	Frame time.Duration
}

var _ Frontend = (*Headless)(nil)

// Run prints the report, then loops until the exit buttons arrive within one
// frame, the input ends, or ctx is cancelled.
func (h *Headless) Run(ctx context.Context, r Report) error {
	logger := log.WithComponent("headless")

	printReport(h.Out, r, h.Exit)

	frame := h.Frame
	if frame <= 0 {
		frame = DefaultFrame
	}

	presses := make(chan hid.Buttons, 64)
	done := make(chan struct{})
	defer close(done)
	go readButtons(h.In, presses, done)

	ticker := time.NewTicker(frame)
	defer ticker.Stop()

	var frames uint64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		frames++

		pressed, open := drain(presses)
		if pressed.HasAll(h.Exit) {
			logger.Debug("exit button pressed", "buttons", pressed.String(), "frames", frames)
			return nil
		}
		if !open {
			logger.Info("input closed, leaving frame loop", "frames", frames)
			return nil
		}
	}
}

// readButtons forwards presses until r fails or done is closed. The channel
// is closed on return.
func readButtons(r io.Reader, out chan<- hid.Buttons, done <-chan struct{}) {
	defer close(out)
	br := bufio.NewReader(r)
	for {
		c, err := br.ReadByte()
		if err != nil {
			return
		}
		b := hid.FromByte(c)
		if b == 0 {
			continue
		}
		select {
		case out <- b:
		case <-done:
			return
		}
	}
}

// drain collects every press queued since the last frame without blocking.
func drain(presses <-chan hid.Buttons) (hid.Buttons, bool) {
	var pressed hid.Buttons
	for {
		select {
		case b, ok := <-presses:
			if !ok {
				return pressed, false
			}
			pressed |= b
		default:
			return pressed, true
		}
	}
}

// Once prints the report and returns without a frame loop.
type Once struct {
	Out io.Writer
}

var _ Frontend = (*Once)(nil)

func (o *Once) Run(_ context.Context, r Report) error {
	printReport(o.Out, r, 0)
	return nil
}

func printReport(w io.Writer, r Report, exit hid.Buttons) {
	fmt.Fprintln(w, "Started!")
	for _, line := range r.Lines() {
		fmt.Fprintln(w, line)
	}
	if exit == 0 {
		fmt.Fprintln(w, "Finished!")
		return
	}
	fmt.Fprintf(w, "Finished! Press %s to exit.\n", strings.ToUpper(exit.String()))
}
