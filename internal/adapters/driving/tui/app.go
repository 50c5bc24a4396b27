package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/prepkit/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/prepkit/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/prepkit/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/prepkit/internal/adapters/driving/tui/views/chat"
	"github.com/custodia-labs/prepkit/internal/adapters/driving/tui/views/lookup"
	"github.com/custodia-labs/prepkit/internal/adapters/driving/tui/views/menu"
	"github.com/custodia-labs/prepkit/internal/core/domain"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	// styles holds the TUI styles.
	styles *styles.Styles

	menuView        *menu.View
	chatView        *chat.View
	roadmapView     *lookup.View
	experiencesView *lookup.View

	// currentView tracks which view is active.
	currentView messages.ViewType

	// engine is the last engine snapshot.
	engine domain.EngineStatus

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has initialised.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:           ports,
		ctx:             context.Background(),
		styles:          s,
		menuView:        menu.NewView(s, km),
		chatView:        chat.NewView(s, km, ports.Career),
		roadmapView:     lookup.NewView(lookup.ModeRoadmap, s, km, ports.Career),
		experiencesView: lookup.NewView(lookup.ModeExperiences, s, km, ports.Career),
		currentView:     messages.ViewMenu,
	}, nil
}

// WithContext sets the context for the app and its views.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.chatView.WithContext(ctx)
	a.roadmapView.WithContext(ctx)
	a.experiencesView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("prepkit"),
		a.refreshStatus(),
	)
}

// refreshStatus fetches an engine snapshot for the status bars.
func (a *App) refreshStatus() tea.Cmd {
	engine, ctx := a.ports.Engine, a.ctx
	if engine == nil {
		return nil
	}
	return func() tea.Msg {
		return messages.EngineStatusLoaded{Status: engine.Status(ctx)}
	}
}

// Update implements tea.Model.
//
//nolint:gocyclo // central message handler requires complexity
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		return a, a.forward(msg)

	case messages.ViewChanged:
		a.currentView = msg.View
		switch msg.View {
		case messages.ViewChat:
			return a, a.chatView.Init()
		case messages.ViewRoadmap:
			a.roadmapView.Reset()
			return a, a.roadmapView.Init()
		case messages.ViewExperiences:
			a.experiencesView.Reset()
			return a, a.experiencesView.Init()
		case messages.ViewMenu, messages.ViewHelp:
		}
		return a, nil

	case messages.EngineStatusLoaded:
		a.engine = msg.Status
		a.chatView.SetEngine(msg.Status)
		a.roadmapView.SetEngine(msg.Status)
		a.experiencesView.SetEngine(msg.Status)
		return a, nil

	case messages.ChatAnswered:
		a.err = msg.Err
		a.chatView, cmd = a.chatView.Update(msg)
		return a, tea.Batch(cmd, a.refreshStatus())

	case messages.RoadmapLoaded:
		a.err = msg.Err
		a.roadmapView, cmd = a.roadmapView.Update(msg)
		return a, tea.Batch(cmd, a.refreshStatus())

	case messages.ExperiencesLoaded:
		a.err = msg.Err
		a.experiencesView, cmd = a.experiencesView.Update(msg)
		return a, tea.Batch(cmd, a.refreshStatus())

	case messages.ErrorOccurred:
		a.err = msg.Err
		return a, a.forward(msg)

	case messages.Quit:
		return a, tea.Quit
	}

	return a, a.forward(msg)
}

// forward passes msg to the active view.
func (a *App) forward(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch a.currentView {
	case messages.ViewMenu:
		a.menuView, cmd = a.menuView.Update(msg)
	case messages.ViewChat:
		a.chatView, cmd = a.chatView.Update(msg)
	case messages.ViewRoadmap:
		a.roadmapView, cmd = a.roadmapView.Update(msg)
	case messages.ViewExperiences:
		a.experiencesView, cmd = a.experiencesView.Update(msg)
	case messages.ViewHelp:
		if key, ok := msg.(tea.KeyMsg); ok && (key.Type == tea.KeyEsc || key.String() == "q") {
			a.currentView = messages.ViewMenu
		}
	}
	return cmd
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewChat:
		return a.chatView.View()
	case messages.ViewRoadmap:
		return a.roadmapView.View()
	case messages.ViewExperiences:
		return a.experiencesView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	default:
		return a.menuView.View()
	}
}

// viewHelp renders the help view.
func (a *App) viewHelp() string {
	return a.styles.Title.Render("Help") + `

Navigation:
  esc         Back to Menu
  ctrl+c      Quit

Menu:
  j/k, ↑/↓    Navigate options
  enter       Select option
  q           Quit

Chat:
  (type)      Ask a question
  enter       Send
  pgup/pgdn   Scroll transcript

Roadmap and Experiences:
  tab         Next field
  enter       Look up
  j/k, ↑/↓    Navigate results
  n           New query

[esc] back to menu`
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Engine returns the last engine snapshot.
func (a *App) Engine() domain.EngineStatus {
	return a.engine
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions on the app and every view.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.menuView.SetDimensions(width, height)
	a.chatView.SetDimensions(width, height)
	a.roadmapView.SetDimensions(width, height)
	a.experiencesView.SetDimensions(width, height)
}
