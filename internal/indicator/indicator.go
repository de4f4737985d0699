// Package indicator holds the on-screen scroll direction hint.
package indicator

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	activeStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#38bdf8")).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#38bdf8")).
			Padding(0, 1)

	idleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
)

// State is an indicator that remembers the last instruction it received.
type State struct {
	symbol  string
	visible bool
	changes int
}

func New() *State { return &State{} }

func (s *State) Show(symbol string) {
	if !s.visible || s.symbol != symbol {
		s.changes++
	}
	s.symbol = symbol
	s.visible = true
}

// Hide keeps the last symbol, matching a CSS class toggle.
func (s *State) Hide() {
	if s.visible {
		s.changes++
	}
	s.visible = false
}

func (s *State) Symbol() string { return s.symbol }
func (s *State) Visible() bool  { return s.visible }

// Changes counts visible transitions, useful to spot flicker.
func (s *State) Changes() int { return s.changes }

func (s *State) Render() string {
	if !s.visible {
		return idleStyle.Render("  ")
	}
	return activeStyle.Render(s.symbol)
}
