package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mattjoyce/pmlaunch/internal/hid"
	"github.com/mattjoyce/pmlaunch/internal/host"
)

// frameMsg is the frame sync: one per frame interval.
type frameMsg time.Time

var frameGlyphs = []string{"◐", "◓", "◑", "◒"}

// Model is the bubbletea model for the launcher console.
type Model struct {
	report host.Report
	exit   hid.Buttons
	frame  time.Duration

	width int

	frames  uint64
	pending hid.Buttons // pressed since the last frame
	last    hid.Buttons // buttons polled on the last frame

	exited  bool
	aborted bool

	keys  keyMap
	help  help.Model
	theme Theme
}

// NewModel creates a console showing r that exits when every button in exit
// is pressed within one frame.
func NewModel(r host.Report, exit hid.Buttons, frame time.Duration) Model {
	if frame <= 0 {
		frame = host.DefaultFrame
	}
	return Model{
		report: r,
		exit:   exit,
		frame:  frame,
		keys:   newKeyMap(exit),
		help:   help.New(),
		theme:  NewDefaultTheme(),
	}
}

func (m Model) waitFrame() tea.Cmd {
	return tea.Tick(m.frame, func(t time.Time) tea.Msg { return frameMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.waitFrame()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Abort) {
			m.aborted = true
			return m, tea.Quit
		}
		m.pending |= hid.FromKey(msg.String())

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width

	case frameMsg:
		m.frames++
		m.last, m.pending = m.pending, 0
		if m.last.HasAll(m.exit) {
			m.exited = true
			return m, tea.Quit
		}
		return m, m.waitFrame()
	}

	return m, nil
}

// Exited reports whether the exit buttons ended the loop.
func (m Model) Exited() bool { return m.exited }

// Aborted reports whether the loop was interrupted with ctrl+c.
func (m Model) Aborted() bool { return m.aborted }

// Frames counts frame syncs seen so far.
func (m Model) Frames() uint64 { return m.frames }

func (m Model) View() string {
	r := m.report
	t := m.theme

	status := t.StatusOK.Render("OK")
	if r.Outcome.Code.IsFailure() {
		status = t.StatusFailed.Render("FAILED")
	}

	lines := []string{
		t.Title.Render("pmlaunch " + frameGlyphs[m.frames%uint64(len(frameGlyphs))]),
		"",
		fmt.Sprintf("%s %s  handle %s", t.Label.Render("service"), r.Service, r.Handle),
		fmt.Sprintf("%s %s  flags %s", t.Label.Render("program"), r.Program, r.Flags),
		fmt.Sprintf("%s %s", t.Label.Render("request"), t.Words.Render(formatWords(r.Request))),
		"",
	}
	for _, l := range r.Lines() {
		lines = append(lines, "  "+l)
	}
	lines = append(lines,
		"",
		fmt.Sprintf("%s %s", t.Label.Render("status "), status),
		t.Dim.Render(fmt.Sprintf("frame %d  buttons %s  request %s", m.frames, m.last, r.RequestID)),
	)

	body := t.Border.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
	return lipgloss.JoinVertical(lipgloss.Left, body, m.help.View(m.keys))
}

func formatWords(words []uint32) string {
	parts := make([]string, len(words))
	for i, w := range words {
		parts[i] = fmt.Sprintf("%08x", w)
	}
	return strings.Join(parts, " ")
}
