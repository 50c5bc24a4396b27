package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/prepkit/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/prepkit/internal/core/domain"
)

func newTestApp(t *testing.T, career *MockCareerService, engine *MockEngineService) *App {
	t.Helper()
	ports := &Ports{Career: career}
	if engine != nil {
		ports.Engine = engine
	}
	app, err := NewApp(ports)
	require.NoError(t, err)
	return app
}

func update(app *App, msg tea.Msg) (*App, tea.Cmd) {
	model, cmd := app.Update(msg)
	return model.(*App), cmd
}

func TestNewApp_InvalidPorts(t *testing.T) {
	app, err := NewApp(&Ports{})

	assert.Nil(t, app)
	assert.ErrorIs(t, err, ErrMissingCareerService)
}

func TestNewApp_StartsOnMenu(t *testing.T) {
	app := newTestApp(t, &MockCareerService{}, nil)

	assert.Equal(t, messages.ViewMenu, app.CurrentView())
	assert.False(t, app.Ready())
	assert.Equal(t, "Initialising...", app.View())
	assert.NotNil(t, app.Init())
}

func TestApp_WindowSize(t *testing.T) {
	app := newTestApp(t, &MockCareerService{}, nil)

	app, cmd := update(app, tea.WindowSizeMsg{Width: 100, Height: 40})

	assert.Nil(t, cmd)
	assert.True(t, app.Ready())
	assert.Contains(t, app.View(), "prepkit")
}

func TestApp_CtrlCQuits(t *testing.T) {
	app := newTestApp(t, &MockCareerService{}, nil)

	_, cmd := update(app, tea.KeyMsg{Type: tea.KeyCtrlC})

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestApp_QuitMessage(t *testing.T) {
	app := newTestApp(t, &MockCareerService{}, nil)

	_, cmd := update(app, messages.Quit{})

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestApp_ViewChanged(t *testing.T) {
	tests := []struct {
		view  messages.ViewType
		title string
	}{
		{messages.ViewChat, "Chat"},
		{messages.ViewRoadmap, "Preparation roadmap"},
		{messages.ViewExperiences, "Interview experiences"},
		{messages.ViewHelp, "Help"},
	}

	for _, tt := range tests {
		t.Run(tt.view.String(), func(t *testing.T) {
			app := newTestApp(t, &MockCareerService{}, nil)
			app.SetDimensions(100, 40)

			app, _ = update(app, messages.ViewChanged{View: tt.view})

			assert.Equal(t, tt.view, app.CurrentView())
			assert.Contains(t, app.View(), tt.title)
		})
	}
}

func TestApp_HelpEscReturnsToMenu(t *testing.T) {
	app := newTestApp(t, &MockCareerService{}, nil)
	app, _ = update(app, messages.ViewChanged{View: messages.ViewHelp})

	app, _ = update(app, tea.KeyMsg{Type: tea.KeyEsc})

	assert.Equal(t, messages.ViewMenu, app.CurrentView())
}

func TestApp_EngineStatusReachesViews(t *testing.T) {
	engine := &MockEngineService{status: domain.EngineStatus{
		State: domain.EngineReady,
		Index: domain.IndexInfo{Built: true, Entries: 7},
	}}
	app := newTestApp(t, &MockCareerService{}, engine)
	app.SetDimensions(200, 40)

	msg := app.refreshStatus()()
	app, _ = update(app, msg)
	app, _ = update(app, messages.ViewChanged{View: messages.ViewChat})

	assert.Equal(t, 1, engine.calls)
	assert.Equal(t, domain.EngineReady, app.Engine().State)
	assert.Contains(t, app.View(), "7 chunks")
}

func TestApp_RefreshStatusWithoutEngine(t *testing.T) {
	app := newTestApp(t, &MockCareerService{}, nil)
	assert.Nil(t, app.refreshStatus())
}

func TestApp_ChatRoundTrip(t *testing.T) {
	var asked string
	career := &MockCareerService{ChatFunc: func(_ context.Context, message string) (domain.ChatReply, error) {
		asked = message
		return domain.ChatReply{Response: "Three rounds."}, nil
	}}
	engine := &MockEngineService{status: domain.EngineStatus{State: domain.EngineReady}}
	app := newTestApp(t, career, engine)
	app.SetDimensions(100, 40)
	app, _ = update(app, messages.ViewChanged{View: messages.ViewChat})

	app, _ = update(app, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("How many rounds?")})
	app, cmd := update(app, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	answer := cmd()
	app, next := update(app, answer)

	assert.Equal(t, "How many rounds?", asked)
	assert.NoError(t, app.Err())
	assert.Contains(t, app.View(), "Three rounds.")
	assert.NotNil(t, next, "status is refreshed after an answer")
}

func TestApp_ErrorOccurred(t *testing.T) {
	app := newTestApp(t, &MockCareerService{}, nil)
	err := domain.ErrSystemUnavailable

	app, _ = update(app, messages.ErrorOccurred{Err: err})

	assert.ErrorIs(t, app.Err(), err)
}
