// Package chat provides the question and answer view for the TUI.
package chat

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/prepkit/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/prepkit/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/prepkit/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/prepkit/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/prepkit/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/prepkit/internal/core/domain"
	"github.com/custodia-labs/prepkit/internal/core/ports/driving"
)

// ErrNoCareerService indicates that no career service was provided.
var ErrNoCareerService = errors.New("career service is required")

// Turn is one exchange in the transcript.
type Turn struct {
	Question string
	Response string
	Failed   bool
}

// View shows a scrolling transcript above a question input.
type View struct {
	styles     *styles.Styles
	keymap     *keymap.KeyMap
	input      *input.Field
	transcript viewport.Model
	statusbar  *status.Bar

	career driving.CareerService
	ctx    context.Context

	turns   []Turn
	pending bool
	width   int
	height  int
	ready   bool
}

// NewView creates a new chat view.
func NewView(s *styles.Styles, km *keymap.KeyMap, career driving.CareerService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	field := input.NewField(s, "Ask", "How many rounds does the Acme SDE process have?")
	field.Focus()

	return &View{
		styles:     s,
		keymap:     km,
		input:      field,
		transcript: viewport.New(80, 14),
		statusbar:  status.NewBar(s, km),
		career:     career,
		ctx:        context.Background(),
		width:      80,
		height:     24,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.ChatAnswered:
		v.handleAnswer(msg)
		return v, nil

	case messages.EngineStatusLoaded:
		v.statusbar.SetEngine(msg.Status)
		return v, nil

	case messages.ErrorOccurred:
		v.pending = false
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	//nolint:exhaustive // handling only relevant key types
	switch msg.Type {
	case tea.KeyEsc:
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}

	case tea.KeyEnter:
		question := strings.TrimSpace(v.input.Value())
		if question == "" || v.pending {
			return v, nil
		}
		v.pending = true
		v.turns = append(v.turns, Turn{Question: question})
		v.input.Reset()
		v.statusbar.SetState(status.StateWorking)
		v.refresh()
		return v, v.ask(question)

	case tea.KeyPgUp, tea.KeyPgDown:
		var cmd tea.Cmd
		v.transcript, cmd = v.transcript.Update(msg)
		return v, cmd
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// ask runs the chat operation off the UI goroutine.
func (v *View) ask(question string) tea.Cmd {
	career, ctx := v.career, v.ctx
	return func() tea.Msg {
		if career == nil {
			return messages.ErrorOccurred{Err: ErrNoCareerService}
		}
		reply, err := career.Chat(ctx, question)
		return messages.ChatAnswered{Question: question, Response: reply.Response, Err: err}
	}
}

func (v *View) handleAnswer(msg messages.ChatAnswered) {
	v.pending = false

	response := msg.Response
	if response == "" && msg.Err != nil {
		response = domain.PayloadFor(msg.Err).Error
	}

	// Fill the most recent unanswered turn for this question.
	for i := len(v.turns) - 1; i >= 0; i-- {
		if v.turns[i].Question == msg.Question && v.turns[i].Response == "" {
			v.turns[i].Response = response
			v.turns[i].Failed = msg.Err != nil
			break
		}
	}

	if msg.Err != nil {
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(response)
	} else {
		v.statusbar.Clear()
	}
	v.refresh()
}

// refresh re-renders the transcript and scrolls to the newest turn.
func (v *View) refresh() {
	wrap := lipgloss.NewStyle().Width(max(v.width-4, 20))

	var b strings.Builder
	for _, turn := range v.turns {
		b.WriteString(v.styles.Question.Render("You: "))
		b.WriteString(wrap.Render(turn.Question))
		b.WriteString("\n")
		switch {
		case turn.Response == "":
			b.WriteString(v.styles.Muted.Render("  ..."))
		case turn.Failed:
			b.WriteString(v.styles.Warning.PaddingLeft(2).Render(wrap.Render(turn.Response)))
		default:
			b.WriteString(v.styles.Answer.Render(wrap.Render(turn.Response)))
		}
		b.WriteString("\n\n")
	}
	v.transcript.SetContent(b.String())
	v.transcript.GotoBottom()
}

// View renders the chat view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	body := v.transcript.View()
	if len(v.turns) == 0 {
		body = v.styles.Muted.Render("Ask about rounds, topics or preparation for any company in the knowledge base.")
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		v.styles.Title.Render("Chat"),
		"",
		body,
		"",
		v.input.View(),
		"",
		v.statusbar.View(),
	)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.transcript.Width = width
	v.transcript.Height = max(height-10, 3) // title, input box, status bar
	v.statusbar.SetWidth(width)
	v.refresh()
}

// Turns returns the transcript.
func (v *View) Turns() []Turn {
	return v.turns
}

// Pending reports whether a question is awaiting its answer.
func (v *View) Pending() bool {
	return v.pending
}

// SetEngine updates the status bar engine snapshot.
func (v *View) SetEngine(st domain.EngineStatus) {
	v.statusbar.SetEngine(st)
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Reset clears the input but keeps the transcript.
func (v *View) Reset() {
	v.input.Reset()
	v.input.Focus()
	v.statusbar.Clear()
}
