package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"github.com/mattjoyce/pmlaunch/internal/hid"
)

// keyMap holds the bindings shown in the help line. Button input itself goes
// through hid.FromKey.
type keyMap struct {
	Exit  key.Binding
	Abort key.Binding
}

func newKeyMap(exit hid.Buttons) keyMap {
	keys := hid.KeysFor(exit)
	return keyMap{
		Exit: key.NewBinding(
			key.WithKeys(keys...),
			key.WithHelp(strings.Join(keys, "/"), "press "+strings.ToUpper(exit.String())+" to exit"),
		),
		Abort: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "abort"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Exit, k.Abort}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
