package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/prepkit/internal/core/domain"
)

func TestExtractPromptName(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected string
	}{
		{
			name:     "valid prompt URI",
			uri:      "prepkit://prompts/roadmap",
			expected: "roadmap",
		},
		{
			name:     "invalid prefix",
			uri:      "file://prompts/roadmap",
			expected: "",
		},
		{
			name:     "nested path",
			uri:      "prepkit://prompts/roadmap/extra",
			expected: "",
		},
		{
			name:     "empty URI",
			uri:      "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := extractPromptName(tt.uri)
			assert.Equal(t, tt.expected, result)
		})
	}
}

// Helper to create a ReadResourceRequest with the given URI.
func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestServer_handleStatusResource(t *testing.T) {
	ctx := context.Background()

	t.Run("nil engine returns not found", func(t *testing.T) {
		server, err := NewServer(&Ports{Career: &mockCareerService{}})
		require.NoError(t, err)

		_, err = server.handleStatusResource(ctx, makeReadResourceRequest("prepkit://status"))

		require.Error(t, err)
	})

	t.Run("returns status JSON", func(t *testing.T) {
		engine := &mockEngineService{status: domain.EngineStatus{
			State:     domain.EngineReady,
			StateName: "ready",
			Index:     domain.IndexInfo{Built: true, Entries: 7},
		}}
		server, err := NewServer(&Ports{Career: &mockCareerService{}, Engine: engine})
		require.NoError(t, err)

		result, err := server.handleStatusResource(ctx, makeReadResourceRequest("prepkit://status"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "application/json", result.Contents[0].MIMEType)
		assert.Contains(t, result.Contents[0].Text, `"state": "ready"`)
		assert.Contains(t, result.Contents[0].Text, `"entries": 7`)
	})
}

func TestServer_handlePromptsResource(t *testing.T) {
	ctx := context.Background()

	t.Run("nil prompt service returns empty list", func(t *testing.T) {
		server, err := NewServer(&Ports{Career: &mockCareerService{}})
		require.NoError(t, err)

		result, err := server.handlePromptsResource(ctx, makeReadResourceRequest("prepkit://prompts"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "[]", result.Contents[0].Text)
	})

	t.Run("lists prompts", func(t *testing.T) {
		prompts := &mockPromptService{prompts: map[string]string{"chat": "Q: %[2]s"}}
		server, err := NewServer(&Ports{Career: &mockCareerService{}, Prompts: prompts})
		require.NoError(t, err)

		result, err := server.handlePromptsResource(ctx, makeReadResourceRequest("prepkit://prompts"))

		require.NoError(t, err)
		assert.Contains(t, result.Contents[0].Text, `"name": "chat"`)
	})

	t.Run("returns error on list failure", func(t *testing.T) {
		prompts := &mockPromptService{err: errors.New("disk error")}
		server, err := NewServer(&Ports{Career: &mockCareerService{}, Prompts: prompts})
		require.NoError(t, err)

		_, err = server.handlePromptsResource(ctx, makeReadResourceRequest("prepkit://prompts"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "listing prompts")
	})
}

func TestServer_handlePromptResource(t *testing.T) {
	ctx := context.Background()
	prompts := &mockPromptService{prompts: map[string]string{"roadmap": "Plan for %[1]s"}}
	server, err := NewServer(&Ports{Career: &mockCareerService{}, Prompts: prompts})
	require.NoError(t, err)

	t.Run("returns prompt text", func(t *testing.T) {
		result, err := server.handlePromptResource(ctx, makeReadResourceRequest("prepkit://prompts/roadmap"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "Plan for %[1]s", result.Contents[0].Text)
		assert.Equal(t, "text/plain", result.Contents[0].MIMEType)
	})

	t.Run("unknown prompt returns not found", func(t *testing.T) {
		_, err := server.handlePromptResource(ctx, makeReadResourceRequest("prepkit://prompts/poem"))

		require.Error(t, err)
	})

	t.Run("invalid URI returns not found", func(t *testing.T) {
		_, err := server.handlePromptResource(ctx, makeReadResourceRequest("prepkit://other/roadmap"))

		require.Error(t, err)
	})
}
