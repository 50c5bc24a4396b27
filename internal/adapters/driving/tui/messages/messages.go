// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/prepkit/internal/core/domain"
)

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewChat is the question and answer transcript.
	ViewChat
	// ViewRoadmap builds a preparation roadmap.
	ViewRoadmap
	// ViewExperiences lists past interview experiences.
	ViewExperiences
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewChat:
		return "chat"
	case ViewRoadmap:
		return "roadmap"
	case ViewExperiences:
		return "experiences"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ChatAnswered carries the reply to a chat question.
// Response is always displayable; Err is set when it is a failure message.
type ChatAnswered struct {
	Question string
	Response string
	Err      error
}

// RoadmapLoaded carries a generated roadmap.
type RoadmapLoaded struct {
	Company string
	Role    string
	Items   []domain.RoadmapItem
	Err     error
}

// ExperiencesLoaded carries interview experience digests.
type ExperiencesLoaded struct {
	Company string
	Items   []domain.Experience
	Err     error
}

// EngineStatusLoaded carries a fresh engine snapshot for the status bar.
type EngineStatusLoaded struct {
	Status domain.EngineStatus
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
