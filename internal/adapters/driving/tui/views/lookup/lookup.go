// Package lookup provides the company-driven views of the TUI: the
// preparation roadmap and the interview experience digest.
package lookup

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/prepkit/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/prepkit/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/prepkit/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/prepkit/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/prepkit/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/prepkit/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/prepkit/internal/core/domain"
	"github.com/custodia-labs/prepkit/internal/core/ports/driving"
)

// Error definitions for the lookup views.
var (
	ErrNoCareerService = errors.New("career service is required")
	ErrMissingFields   = errors.New("fill in every field")
)

// Mode selects what the view looks up.
type Mode int

const (
	// ModeRoadmap asks for company and role and shows a roadmap.
	ModeRoadmap Mode = iota
	// ModeExperiences asks for a company and shows past interviews.
	ModeExperiences
)

// View is a small form followed by a navigable result list.
type View struct {
	mode      Mode
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	fields    []*input.Field
	focus     int
	list      *list.EntryList
	statusbar *status.Bar

	career driving.CareerService
	ctx    context.Context

	formActive bool
	pending    bool
	err        string
	width      int
	height     int
	ready      bool
}

// NewView creates a lookup view for mode.
func NewView(mode Mode, s *styles.Styles, km *keymap.KeyMap, career driving.CareerService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	fields := []*input.Field{input.NewField(s, "Company", "e.g. Acme")}
	empty := "No interview experiences yet"
	if mode == ModeRoadmap {
		fields = append(fields, input.NewField(s, "Role", "e.g. Software Engineer"))
		empty = "No roadmap yet"
	}

	v := &View{
		mode:      mode,
		styles:    s,
		keymap:    km,
		fields:    fields,
		list:      list.NewEntryList(s, empty),
		statusbar: status.NewBar(s, km),
		career:    career,
		ctx:       context.Background(),
		width:     80,
		height:    24,
	}
	v.Reset()
	return v
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.fields[v.focus].Init()
}

// Update handles messages for the lookup view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.RoadmapLoaded:
		if v.mode == ModeRoadmap {
			v.showResults(roadmapEntries(msg.Items), msg.Err)
		}
		return v, nil

	case messages.ExperiencesLoaded:
		if v.mode == ModeExperiences {
			v.showResults(experienceEntries(v.styles, msg.Items), msg.Err)
		}
		return v, nil

	case messages.EngineStatusLoaded:
		v.statusbar.SetEngine(msg.Status)
		return v, nil

	case messages.ErrorOccurred:
		v.showResults(nil, msg.Err)
		return v, nil
	}

	if v.formActive {
		var cmd tea.Cmd
		v.fields[v.focus], cmd = v.fields[v.focus].Update(msg)
		return v, cmd
	}
	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}

	if !v.formActive {
		if key.Matches(msg, v.keymap.NewQuery) {
			return v, v.edit()
		}
		v.list, _ = v.list.Update(msg)
		return v, nil
	}

	//nolint:exhaustive // handling only relevant key types
	switch msg.Type {
	case tea.KeyTab, tea.KeyShiftTab:
		step := 1
		if msg.Type == tea.KeyShiftTab {
			step = len(v.fields) - 1
		}
		v.fields[v.focus].Blur()
		v.focus = (v.focus + step) % len(v.fields)
		return v, v.fields[v.focus].Focus()

	case tea.KeyEnter:
		if v.pending {
			return v, nil
		}
		values := v.Values()
		for _, val := range values {
			if val == "" {
				v.err = ErrMissingFields.Error()
				return v, nil
			}
		}
		v.err = ""
		v.pending = true
		v.statusbar.SetState(status.StateWorking)
		return v, v.fetch(values)
	}

	var cmd tea.Cmd
	v.fields[v.focus], cmd = v.fields[v.focus].Update(msg)
	return v, cmd
}

// fetch runs the lookup off the UI goroutine.
func (v *View) fetch(values []string) tea.Cmd {
	career, ctx, mode := v.career, v.ctx, v.mode
	return func() tea.Msg {
		if career == nil {
			return messages.ErrorOccurred{Err: ErrNoCareerService}
		}
		if mode == ModeRoadmap {
			items, err := career.Roadmap(ctx, values[0], values[1])
			return messages.RoadmapLoaded{Company: values[0], Role: values[1], Items: items, Err: err}
		}
		items, err := career.Experiences(ctx, values[0])
		return messages.ExperiencesLoaded{Company: values[0], Items: items, Err: err}
	}
}

func (v *View) showResults(entries []list.Entry, err error) {
	v.pending = false
	v.list.SetEntries(entries)

	if err != nil {
		v.err = domain.PayloadFor(err).Error
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(v.err)
		return
	}

	v.err = ""
	v.formActive = false
	for _, f := range v.fields {
		f.Blur()
	}
	v.statusbar.SetState(status.StateResults)
	v.statusbar.SetCount(len(entries))
	v.statusbar.SetHints(v.keymap.ResultsHelp())
}

// edit returns focus to the form, keeping the previous values.
func (v *View) edit() tea.Cmd {
	v.formActive = true
	v.focus = 0
	v.statusbar.Clear()
	v.statusbar.SetHints(v.keymap.FormHelp())
	return v.fields[0].Focus()
}

// View renders the lookup view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := []string{v.styles.Title.Render(v.title()), ""}
	for _, f := range v.fields {
		sections = append(sections, f.View())
	}
	sections = append(sections, "")

	if v.err != "" {
		sections = append(sections, v.styles.Error.Render(v.err), "")
	}

	sections = append(sections, v.list.View(), "", v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (v *View) title() string {
	if v.mode == ModeRoadmap {
		return "Preparation roadmap"
	}
	return "Interview experiences"
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	for _, f := range v.fields {
		f.SetWidth(width)
	}
	v.list.SetDimensions(width, max(height-6-3*len(v.fields), 3))
	v.statusbar.SetWidth(width)
}

// SetEngine updates the status bar engine snapshot.
func (v *View) SetEngine(st domain.EngineStatus) {
	v.statusbar.SetEngine(st)
}

// Values returns the trimmed form values in field order.
func (v *View) Values() []string {
	values := make([]string, len(v.fields))
	for i, f := range v.fields {
		values[i] = strings.TrimSpace(f.Value())
	}
	return values
}

// Entries returns the rendered result entries.
func (v *View) Entries() []list.Entry {
	return v.list.Entries()
}

// Err returns the current error text, if any.
func (v *View) Err() string {
	return v.err
}

// FormActive reports whether keys go to the form.
func (v *View) FormActive() bool {
	return v.formActive
}

// Pending reports whether a lookup is in flight.
func (v *View) Pending() bool {
	return v.pending
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Reset clears the form and the results.
func (v *View) Reset() {
	for _, f := range v.fields {
		f.Reset()
		f.Blur()
	}
	v.list.SetEntries(nil)
	v.err = ""
	v.pending = false
	v.edit()
}

func roadmapEntries(items []domain.RoadmapItem) []list.Entry {
	entries := make([]list.Entry, len(items))
	for i, item := range items {
		lines := wrapLines(item.Description, 72)
		if item.Status != "" {
			lines = append(lines, "Status: "+item.Status)
		}
		entries[i] = list.Entry{
			Title: item.Title,
			Tag:   item.Date,
			Lines: lines,
		}
	}
	return entries
}

func experienceEntries(s *styles.Styles, items []domain.Experience) []list.Entry {
	entries := make([]list.Entry, len(items))
	for i, item := range items {
		verdict := s.Verdict(item.Verdict)
		var lines []string
		if item.CandidateProfile != "" {
			lines = append(lines, "Candidate: "+item.CandidateProfile)
		}
		if len(item.Rounds) > 0 {
			lines = append(lines, "Rounds: "+strings.Join(item.Rounds, "; "))
		}
		for _, q := range item.QuestionsAsked {
			lines = append(lines, "- "+q)
		}
		if item.Tips != "" {
			lines = append(lines, wrapLines("Tips: "+item.Tips, 72)...)
		}
		entries[i] = list.Entry{
			Title:    fmt.Sprintf("%s (%d rounds)", item.Role, len(item.Rounds)),
			Tag:      item.Verdict,
			TagStyle: &verdict,
			Lines:    lines,
		}
	}
	return entries
}

// wrapLines breaks s into lines of at most width bytes at word boundaries.
func wrapLines(s string, width int) []string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return nil
	}
	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len(line)+1+len(w) > width {
			lines = append(lines, line)
			line = w
			continue
		}
		line += " " + w
	}
	return append(lines, line)
}
