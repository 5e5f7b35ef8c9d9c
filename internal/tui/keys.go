package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/samber/lo"

	"github.com/verte-zerg/timeit/internal/model"
)

type keyMap struct {
	Start key.Binding
	Split key.Binding
	Pause key.Binding
	Reset key.Binding
	Save  key.Binding
	Skip  key.Binding
	Quit  key.Binding
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Start, k.Split, k.Pause, k.Skip, k.Reset, k.Save, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

func newKeyMap(km model.KeyMap) keyMap {
	return keyMap{
		Start: binding(km.Start, "start"),
		Split: binding(km.Split, "split"),
		Pause: binding(km.Pause, "pause"),
		Reset: binding(km.Reset, "reset"),
		Save:  binding(km.Save, "save"),
		Skip:  binding(km.Skip, "skip"),
		Quit:  binding(km.Quit, "quit"),
	}
}

func binding(keys []string, desc string) key.Binding {
	if len(keys) == 0 {
		return key.NewBinding(key.WithDisabled())
	}
	// Bubble Tea reports the space bar as " ".
	normalized := lo.Map(keys, func(k string, _ int) string {
		if k == "space" {
			return " "
		}
		return k
	})
	label := keys[0]
	if label == " " {
		label = "space"
	}
	return key.NewBinding(
		key.WithKeys(normalized...),
		key.WithHelp(label, desc),
	)
}
