// Package hid maps console buttons to and from terminal keys.
package hid

import (
	"fmt"
	"strings"
)

// Buttons is a bitmask of pad buttons, laid out the way the input service
// reports them.
type Buttons uint32

const (
	ButtonA      Buttons = 1 << 0
	ButtonB      Buttons = 1 << 1
	ButtonSelect Buttons = 1 << 2
	ButtonStart  Buttons = 1 << 3
	ButtonDRight Buttons = 1 << 4
	ButtonDLeft  Buttons = 1 << 5
	ButtonDUp    Buttons = 1 << 6
	ButtonDDown  Buttons = 1 << 7
	ButtonR      Buttons = 1 << 8
	ButtonL      Buttons = 1 << 9
	ButtonX      Buttons = 1 << 10
	ButtonY      Buttons = 1 << 11
)

var buttonNames = []struct {
	b    Buttons
	name string
}{
	{ButtonA, "a"},
	{ButtonB, "b"},
	{ButtonSelect, "select"},
	{ButtonStart, "start"},
	{ButtonDRight, "dright"},
	{ButtonDLeft, "dleft"},
	{ButtonDUp, "dup"},
	{ButtonDDown, "ddown"},
	{ButtonR, "r"},
	{ButtonL, "l"},
	{ButtonX, "x"},
	{ButtonY, "y"},
}

// Has reports whether any of the buttons in other are set.
func (b Buttons) Has(other Buttons) bool { return b&other != 0 }

// HasAll reports whether every button in combo is set. An empty combo never
// matches.
func (b Buttons) HasAll(combo Buttons) bool { return combo != 0 && b&combo == combo }

func (b Buttons) String() string {
	if b == 0 {
		return "none"
	}
	var parts []string
	for _, n := range buttonNames {
		if b&n.b != 0 {
			parts = append(parts, n.name)
		}
	}
	if rest := b &^ allButtons(); rest != 0 {
		parts = append(parts, fmt.Sprintf("0x%x", uint32(rest)))
	}
	return strings.Join(parts, "+")
}

func allButtons() Buttons {
	var all Buttons
	for _, n := range buttonNames {
		all |= n.b
	}
	return all
}

// ParseButtons reads a "+" separated combination such as "start" or
// "start+select".
func ParseButtons(s string) (Buttons, error) {
	var out Buttons
	for _, part := range strings.Split(s, "+") {
		name := strings.ToLower(strings.TrimSpace(part))
		found := false
		for _, n := range buttonNames {
			if n.name == name {
				out |= n.b
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("unknown button %q", part)
		}
	}
	return out, nil
}

// keyMap binds terminal keys to buttons. Enter stands in for START and
// backspace for SELECT; arrows drive the d-pad.
var keyMap = map[string]Buttons{
	"enter":     ButtonStart,
	"s":         ButtonStart,
	"backspace": ButtonSelect,
	"tab":       ButtonSelect,
	"a":         ButtonA,
	"b":         ButtonB,
	"x":         ButtonX,
	"y":         ButtonY,
	"l":         ButtonL,
	"r":         ButtonR,
	"right":     ButtonDRight,
	"left":      ButtonDLeft,
	"up":        ButtonDUp,
	"down":      ButtonDDown,
}

// FromKey maps a key name, as reported by the terminal front end, to a button.
func FromKey(key string) Buttons {
	return keyMap[strings.ToLower(key)]
}

// FromByte maps a raw input byte from a non-interactive stream.
func FromByte(c byte) Buttons {
	switch c {
	case '\r', '\n':
		return ButtonStart
	case 0x7F, 0x08, '\t':
		return ButtonSelect
	}
	return keyMap[strings.ToLower(string(rune(c)))]
}

// KeysFor lists the terminal keys bound to any button in b, for help text.
func KeysFor(b Buttons) []string {
	var keys []string
	for _, k := range []string{"enter", "s", "backspace", "tab", "a", "b", "x", "y", "l", "r", "up", "down", "left", "right"} {
		if keyMap[k]&b != 0 {
			keys = append(keys, k)
		}
	}
	return keys
}
