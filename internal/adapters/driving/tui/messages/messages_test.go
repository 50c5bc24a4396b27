package messages

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/prepkit/internal/core/domain"
)

func TestViewType_String(t *testing.T) {
	tests := []struct {
		view     ViewType
		expected string
	}{
		{ViewMenu, "menu"},
		{ViewChat, "chat"},
		{ViewRoadmap, "roadmap"},
		{ViewExperiences, "experiences"},
		{ViewHelp, "help"},
		{ViewType(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.view.String())
		})
	}
}

func TestViewType_Distinct(t *testing.T) {
	views := []ViewType{ViewMenu, ViewChat, ViewRoadmap, ViewExperiences, ViewHelp}
	seen := make(map[ViewType]bool)
	for _, v := range views {
		assert.False(t, seen[v], "duplicate view type %d", v)
		seen[v] = true
	}
}

func TestChatAnswered(t *testing.T) {
	t.Run("successful answer", func(t *testing.T) {
		msg := ChatAnswered{Question: "How many rounds?", Response: "Three."}
		assert.Equal(t, "Three.", msg.Response)
		assert.NoError(t, msg.Err)
	})

	t.Run("failure still carries a response", func(t *testing.T) {
		msg := ChatAnswered{
			Question: "hi",
			Response: domain.MsgKnowledgeBaseEmpty,
			Err:      domain.ErrIndexUnavailable,
		}
		assert.Equal(t, domain.MsgKnowledgeBaseEmpty, msg.Response)
		assert.ErrorIs(t, msg.Err, domain.ErrIndexUnavailable)
	})
}

func TestRoadmapLoaded(t *testing.T) {
	msg := RoadmapLoaded{
		Company: "Acme",
		Role:    "SDE",
		Items:   []domain.RoadmapItem{{Title: "DSA", Status: domain.RoadmapStatusPending}},
	}

	require.Len(t, msg.Items, 1)
	assert.Equal(t, "DSA", msg.Items[0].Title)
	assert.Equal(t, "Acme", msg.Company)
}

func TestExperiencesLoaded_WithError(t *testing.T) {
	msg := ExperiencesLoaded{Company: "Acme", Err: errors.New("boom")}

	assert.Empty(t, msg.Items)
	assert.EqualError(t, msg.Err, "boom")
}

func TestEngineStatusLoaded(t *testing.T) {
	msg := EngineStatusLoaded{Status: domain.EngineStatus{State: domain.EngineReady}}

	assert.True(t, msg.Status.State.Accepting())
}
