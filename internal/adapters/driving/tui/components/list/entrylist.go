// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/prepkit/internal/adapters/driving/tui/styles"
)

// Entry is one row of an EntryList.
type Entry struct {
	Title string

	// Tag is shown right of the title, e.g. a date or verdict.
	Tag string

	// TagStyle overrides the muted tag style when set.
	TagStyle *lipgloss.Style

	// Lines are shown under the selected entry only.
	Lines []string
}

// EntryList displays entries in a navigable list and expands the selection.
type EntryList struct {
	entries  []Entry
	selected int
	styles   *styles.Styles
	width    int
	height   int
	empty    string
}

// NewEntryList creates a new list component.
func NewEntryList(s *styles.Styles, empty string) *EntryList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &EntryList{
		styles: s,
		width:  80,
		height: 10,
		empty:  empty,
	}
}

// Init initialises the list.
func (l *EntryList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (l *EntryList) Update(msg tea.Msg) (*EntryList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			l.MoveUp()
		case "down", "j":
			l.MoveDown()
		}
	}
	return l, nil
}

// View renders the list.
func (l *EntryList) View() string {
	if len(l.entries) == 0 {
		return l.styles.Muted.Render(l.empty)
	}

	// Collapsed rows take one line; keep room for the expanded selection.
	visible := max(l.height-len(l.entries[l.selected].Lines)-1, 1)
	start := 0
	if l.selected >= visible {
		start = l.selected - visible + 1
	}
	end := min(start+visible, len(l.entries))

	lines := make([]string, 0, end-start+len(l.entries[l.selected].Lines))
	for i := start; i < end; i++ {
		lines = append(lines, l.renderEntry(i))
	}
	return strings.Join(lines, "\n")
}

func (l *EntryList) renderEntry(i int) string {
	e := l.entries[i]

	title := e.Title
	if maxLen := max(l.width-24, 10); len(title) > maxLen {
		title = title[:maxLen-3] + "..."
	}

	tagStyle := l.styles.Muted
	if e.TagStyle != nil {
		tagStyle = *e.TagStyle
	}
	tag := ""
	if e.Tag != "" {
		tag = "  " + tagStyle.Render(e.Tag)
	}

	if i != l.selected {
		return l.styles.Normal.Render(fmt.Sprintf("  %d. %s", i+1, title)) + tag
	}

	row := l.styles.Selected.Render(fmt.Sprintf("> %d. %s", i+1, title)) + tag
	if len(e.Lines) == 0 {
		return row
	}
	body := make([]string, len(e.Lines))
	for j, line := range e.Lines {
		body[j] = l.styles.Muted.Render("     " + line)
	}
	return row + "\n" + strings.Join(body, "\n")
}

// SetEntries replaces the entries and selects the first.
func (l *EntryList) SetEntries(entries []Entry) {
	l.entries = entries
	l.selected = 0
}

// Entries returns the current entries.
func (l *EntryList) Entries() []Entry {
	return l.entries
}

// Selected returns the index of the selected entry.
func (l *EntryList) Selected() int {
	return l.selected
}

// MoveUp moves selection up.
func (l *EntryList) MoveUp() {
	if l.selected > 0 {
		l.selected--
	}
}

// MoveDown moves selection down.
func (l *EntryList) MoveDown() {
	if l.selected < len(l.entries)-1 {
		l.selected++
	}
}

// SetDimensions sets the component dimensions.
func (l *EntryList) SetDimensions(width, height int) {
	l.width = width
	l.height = height
}

// Count returns the number of entries.
func (l *EntryList) Count() int {
	return len(l.entries)
}
