package ui

import (
	"github.com/charmbracelet/bubbles/key"

	"lazypager/internal/pager"
)

// KeyMap defines the key bindings of the pager view
type KeyMap struct {
	Next      key.Binding
	Prev      key.Binding
	First     key.Binding
	Last      key.Binding
	Jump      key.Binding
	Reload    key.Binding
	ZoomIn    key.Binding
	ZoomOut   key.Binding
	DoubleTap key.Binding
	Tap       key.Binding
	Dismiss   key.Binding
	Open      key.Binding
	Help      key.Binding
	HelpInOv  key.Binding
	Quit      key.Binding
}

// NewKeyMap returns the bindings for a pager paging along axis
func NewKeyMap(axis pager.Axis) KeyMap {
	next := key.NewBinding(key.WithKeys("right", "l", "pgdown", " "), key.WithHelp("→/l", "next"))
	prev := key.NewBinding(key.WithKeys("left", "h", "pgup"), key.WithHelp("←/h", "prev"))
	if axis == pager.Vertical {
		next = key.NewBinding(key.WithKeys("down", "j", "pgdown", " "), key.WithHelp("↓/j", "next"))
		prev = key.NewBinding(key.WithKeys("up", "k", "pgup"), key.WithHelp("↑/k", "prev"))
	}
	return KeyMap{
		Next:      next,
		Prev:      prev,
		First:     key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "first")),
		Last:      key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "last")),
		Jump:      key.NewBinding(key.WithKeys("0", "1", "2", "3", "4", "5", "6", "7", "8", "9"), key.WithHelp("0-9⏎", "jump")),
		Reload:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		ZoomIn:    key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "zoom in")),
		ZoomOut:   key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "zoom out")),
		DoubleTap: key.NewBinding(key.WithKeys("z"), key.WithHelp("z", "toggle zoom")),
		Tap:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("⏎", "toggle chrome")),
		Dismiss:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "dismiss")),
		Open:      key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open in ov")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		HelpInOv:  key.NewBinding(key.WithKeys("H"), key.WithHelp("H", "help in ov")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Prev, k.Next, k.Jump, k.Open, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Prev, k.Next, k.First, k.Last, k.Jump},
		{k.ZoomIn, k.ZoomOut, k.DoubleTap, k.Tap},
		{k.Reload, k.Dismiss, k.Open, k.HelpInOv, k.Help, k.Quit},
	}
}
