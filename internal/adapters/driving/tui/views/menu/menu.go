// Package menu provides the main navigation menu view for the TUI.
package menu

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/prepkit/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/prepkit/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/prepkit/internal/adapters/driving/tui/styles"
)

// Entry is one line of the menu. An entry with Quit set exits instead of
// switching views.
type Entry struct {
	Label       string
	Description string
	View        messages.ViewType
	Quit        bool
}

func defaultEntries() []Entry {
	return []Entry{
		{Label: "Chat", Description: "Ask anything about the interview process", View: messages.ViewChat},
		{Label: "Roadmap", Description: "Preparation plan for a company and role", View: messages.ViewRoadmap},
		{Label: "Experiences", Description: "What past candidates were asked", View: messages.ViewExperiences},
		{Label: "Help", View: messages.ViewHelp},
		{Label: "Quit", Quit: true},
	}
}

// View is the landing screen listing the other views.
type View struct {
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	entries []Entry
	cursor  int
	width   int
	height  int
	ready   bool
}

// NewView creates the menu. Nil styles or keymap fall back to the defaults.
func NewView(s *styles.Styles, km *keymap.KeyMap) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &View{
		styles:  s,
		keymap:  km,
		entries: defaultEntries(),
		width:   80,
		height:  24,
	}
}

func (v *View) Init() tea.Cmd {
	return nil
}

// Update moves the cursor and opens entries. Digits jump straight to the
// matching entry.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, v.keymap.Up):
			v.cursor = max(v.cursor-1, 0)
		case key.Matches(msg, v.keymap.Down):
			v.cursor = min(v.cursor+1, len(v.entries)-1)
		case key.Matches(msg, v.keymap.Submit):
			return v, v.open(v.cursor)
		case key.Matches(msg, v.keymap.Quit):
			return v, tea.Quit
		default:
			if n, err := strconv.Atoi(msg.String()); err == nil && n >= 1 && n <= len(v.entries) {
				v.cursor = n - 1
				return v, v.open(v.cursor)
			}
		}
	}
	return v, nil
}

func (v *View) open(i int) tea.Cmd {
	e := v.entries[i]
	if e.Quit {
		return tea.Quit
	}
	return func() tea.Msg {
		return messages.ViewChanged{View: e.View}
	}
}

func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("prepkit"))
	b.WriteString("\n\n")
	b.WriteString(v.styles.Muted.Render("Interview preparation from your knowledge base"))
	b.WriteString("\n\n")

	for i, e := range v.entries {
		marker, label := "  ", v.styles.Normal.Render(e.Label)
		if i == v.cursor {
			marker, label = "> ", v.styles.Subtitle.Render(e.Label)
		}
		b.WriteString(marker + strconv.Itoa(i+1) + ". " + label)
		if e.Description != "" {
			b.WriteString("  " + v.styles.Muted.Render(e.Description))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render(hints(v.keymap.MenuHelp())))
	return b.String()
}

func hints(bindings []key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, "["+h.Key+"] "+h.Desc)
	}
	return strings.Join(parts, "  ")
}

// SetDimensions records the terminal size and marks the view ready.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Selected returns the cursor position.
func (v *View) Selected() int {
	return v.cursor
}
