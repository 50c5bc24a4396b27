// Package status provides status bar components for the TUI.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/prepkit/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/prepkit/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/prepkit/internal/core/domain"
)

// State represents the current activity for display.
type State string

const (
	StateIdle    State = "idle"
	StateWorking State = "working"
	StateError   State = "error"
	StateResults State = "results"
)

// Bar displays engine status, the current activity and keybinding hints.
type Bar struct {
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	hints   []key.Binding
	state   State
	message string
	count   int
	engine  domain.EngineStatus
	width   int
}

// NewBar creates a new status bar component.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &Bar{
		styles: s,
		keymap: km,
		hints:  km.ShortHelp(),
		state:  StateIdle,
		width:  80,
	}
}

// Init initialises the status bar.
func (s *Bar) Init() tea.Cmd {
	return nil
}

// Update handles status bar messages.
func (s *Bar) Update(_ tea.Msg) (*Bar, tea.Cmd) {
	// Bar is passive, updated via Set methods
	return s, nil
}

// View renders the status bar.
func (s *Bar) View() string {
	left := s.renderEngine() + "  " + s.renderActivity()
	right := s.renderHints()

	padding := max(s.width-lipgloss.Width(left)-lipgloss.Width(right), 1)

	return s.styles.StatusBar.Width(s.width).Render(
		left + strings.Repeat(" ", padding) + right,
	)
}

func (s *Bar) renderEngine() string {
	label := "engine: " + s.engine.State.String()
	if s.engine.State == domain.EngineReady {
		if s.engine.Index.Built {
			label += fmt.Sprintf(" (%d chunks)", s.engine.Index.Entries)
		} else {
			label += " (no index)"
		}
	}
	return s.styles.EngineState(s.engine.State).Render(label)
}

func (s *Bar) renderActivity() string {
	switch s.state {
	case StateWorking:
		return s.styles.Muted.Render("Thinking...")
	case StateError:
		if s.message != "" {
			return s.styles.Error.Render("Error: " + s.message)
		}
		return s.styles.Error.Render("Error")
	case StateResults:
		return s.styles.Normal.Render(fmt.Sprintf("%d results", s.count))
	case StateIdle:
	}
	if s.message != "" {
		return s.styles.Muted.Render(s.message)
	}
	return ""
}

func (s *Bar) renderHints() string {
	hints := make([]string, 0, len(s.hints))
	for _, b := range s.hints {
		h := b.Help()
		hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	return s.styles.Muted.Render(strings.Join(hints, " | "))
}

// SetHints replaces the keybinding hints.
func (s *Bar) SetHints(bindings []key.Binding) {
	s.hints = bindings
}

// SetState sets the current activity.
func (s *Bar) SetState(state State) {
	s.state = state
}

// State returns the current activity.
func (s *Bar) State() State {
	return s.state
}

// SetMessage sets a custom message.
func (s *Bar) SetMessage(message string) {
	s.message = message
}

// Message returns the current message.
func (s *Bar) Message() string {
	return s.message
}

// SetCount sets the result count shown in StateResults.
func (s *Bar) SetCount(count int) {
	s.count = count
}

// Count returns the current result count.
func (s *Bar) Count() int {
	return s.count
}

// SetEngine updates the engine snapshot.
func (s *Bar) SetEngine(status domain.EngineStatus) {
	s.engine = status
}

// Engine returns the last engine snapshot.
func (s *Bar) Engine() domain.EngineStatus {
	return s.engine
}

// SetWidth sets the status bar width.
func (s *Bar) SetWidth(width int) {
	s.width = width
}

// Width returns the current width.
func (s *Bar) Width() int {
	return s.width
}

// Clear resets the activity. The engine snapshot is kept.
func (s *Bar) Clear() {
	s.state = StateIdle
	s.message = ""
	s.count = 0
}
