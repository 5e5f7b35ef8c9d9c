package historyui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	PrevTab  key.Binding
	NextTab  key.Binding
	Narrower key.Binding
	Wider    key.Binding
	Top      key.Binding
	Bottom   key.Binding
	Quit     key.Binding
}

var keys = keyMap{
	PrevTab:  key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev tab")),
	NextTab:  key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next tab")),
	Narrower: key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "window down")),
	Wider:    key.NewBinding(key.WithKeys("="), key.WithHelp("=", "window up")),
	Top:      key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "top")),
	Bottom:   key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "bottom")),
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.PrevTab, k.NextTab, k.Narrower, k.Wider, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp(), {k.Top, k.Bottom}}
}

// Moving-average windows step by five; below five the only stop is one.
const windowStep = 5

func nextWindow(n int) int {
	if n < windowStep {
		return windowStep
	}
	return (n/windowStep + 1) * windowStep
}

func prevWindow(n int) int {
	switch {
	case n <= windowStep:
		return 1
	case n%windowStep == 0:
		return n - windowStep
	default:
		return n / windowStep * windowStep
	}
}
