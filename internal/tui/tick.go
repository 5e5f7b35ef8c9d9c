package tui

import tea "github.com/charmbracelet/bubbletea"

// tickMsg carries a clock tick into Update, so the run is only touched
// from the Bubble Tea loop.
type tickMsg struct {
	run func()
}

// waitForTick blocks until the scheduler hands over the next tick.
func waitForTick(ticks <-chan func()) tea.Cmd {
	return func() tea.Msg {
		return tickMsg{run: <-ticks}
	}
}
