package tui

import (
	"os"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattjoyce/pmlaunch/internal/dispatch"
	"github.com/mattjoyce/pmlaunch/internal/hid"
	"github.com/mattjoyce/pmlaunch/internal/host"
	"github.com/mattjoyce/pmlaunch/internal/log"
	"github.com/mattjoyce/pmlaunch/internal/protocol"
	"github.com/mattjoyce/pmlaunch/internal/result"
)

func TestMain(m *testing.M) {
	log.Setup("ERROR")
	os.Exit(m.Run())
}

func testReport(code result.Code, source dispatch.Source) host.Report {
	return host.Report{
		RequestID: "req-1",
		Service:   "pm:app",
		Handle:    0x15,
		Program:   protocol.ProgramInfo{ProgramID: 0x0004013000CB9702, MediaType: protocol.MediaTypeNAND},
		Flags:     protocol.LaunchLoadDependencies,
		Request:   []uint32{0x00010140, 0x00CB9702, 0x00040130, 0, 0, 1},
		Outcome:   dispatch.Outcome{Code: code, Source: source},
	}
}

func press(m Model, k tea.KeyType) Model {
	next, _ := m.Update(tea.KeyMsg{Type: k})
	return next.(Model)
}

func frame(m Model) (Model, tea.Cmd) {
	next, cmd := m.Update(frameMsg(time.Now()))
	return next.(Model), cmd
}

func TestInitWaitsForFrame(t *testing.T) {
	m := NewModel(testReport(result.Success, dispatch.SourceService), hid.ButtonStart, time.Millisecond)
	cmd := m.Init()
	require.NotNil(t, cmd)
	_, ok := cmd().(frameMsg)
	assert.True(t, ok)
}

func TestZeroFrameFallsBackToDefault(t *testing.T) {
	m := NewModel(testReport(result.Success, dispatch.SourceService), hid.ButtonStart, 0)
	assert.Equal(t, host.DefaultFrame, m.frame)
}

func TestExitOnStartAtNextFrame(t *testing.T) {
	m := NewModel(testReport(result.Success, dispatch.SourceService), hid.ButtonStart, time.Millisecond)

	m, cmd := frame(m)
	assert.False(t, m.Exited())
	require.NotNil(t, cmd, "loop keeps ticking")

	m = press(m, tea.KeyEnter)
	assert.False(t, m.Exited(), "input is polled on the frame, not on the key")

	m, cmd = frame(m)
	assert.True(t, m.Exited())
	assert.False(t, m.Aborted())
	assert.Equal(t, uint64(2), m.Frames())
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestOtherButtonsDoNotExit(t *testing.T) {
	m := NewModel(testReport(result.Success, dispatch.SourceService), hid.ButtonStart, time.Millisecond)

	m = press(m, tea.KeyUp)
	m = press(m, tea.KeyBackspace)
	m, _ = frame(m)
	assert.False(t, m.Exited())
	assert.Equal(t, hid.ButtonDUp|hid.ButtonSelect, m.last)

	m, _ = frame(m)
	assert.Equal(t, hid.Buttons(0), m.last, "presses last one frame")
}

func TestComboNeedsAllButtonsInOneFrame(t *testing.T) {
	m := NewModel(testReport(result.Success, dispatch.SourceService), hid.ButtonStart|hid.ButtonSelect, time.Millisecond)

	m = press(m, tea.KeyEnter)
	m, _ = frame(m)
	assert.False(t, m.Exited())

	m = press(m, tea.KeyEnter)
	m = press(m, tea.KeyTab)
	m, _ = frame(m)
	assert.True(t, m.Exited())
}

func TestCtrlCAborts(t *testing.T) {
	m := NewModel(testReport(result.Success, dispatch.SourceService), hid.ButtonStart, time.Millisecond)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	m = next.(Model)
	assert.True(t, m.Aborted())
	assert.False(t, m.Exited())
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestViewShowsOutcome(t *testing.T) {
	ok := NewModel(testReport(result.Success, dispatch.SourceService), hid.ButtonStart, time.Millisecond).View()
	assert.Contains(t, ok, "pm:app")
	assert.Contains(t, ok, "00010140 00cb9702 00040130 00000000 00000000 00000001")
	assert.Contains(t, ok, "OK")
	assert.Contains(t, ok, "START")

	failed := NewModel(testReport(result.InvalidHandle, dispatch.SourceTransport), hid.ButtonStart, time.Millisecond).View()
	assert.Contains(t, failed, "FAILED")
	assert.Contains(t, failed, "d8e007f7")
	assert.Contains(t, failed, "transport error")
}
