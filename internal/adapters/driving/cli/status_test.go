package cli

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/prepkit/internal/core/domain"
)

func TestStatusCmd_NotBuilt(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.engine.status.LLMModel = "llama-3.3-70b-versatile"

	out, err := execute(t, "status")

	require.NoError(t, err)
	assert.Equal(t, 1, ts.engine.initCalls)
	assert.Contains(t, out, "State:     ready")
	assert.Contains(t, out, "LLM:       llama-3.3-70b-versatile")
	assert.Contains(t, out, "Not built. Run 'prepkit ingest' first.")
}

func TestStatusCmd_Built(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.engine.status = domain.EngineStatus{
		State:     domain.EngineReady,
		StateName: "ready",
		Index: domain.IndexInfo{
			Built: true, Entries: 120, Dimensions: 768, Model: "nomic-embed-text",
			BuiltAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		},
	}

	out, err := execute(t, "status")

	require.NoError(t, err)
	assert.Equal(t, 0, ts.engine.initCalls, "ready engine is not re-initialised")
	assert.Contains(t, out, "Entries:    120")
	assert.Contains(t, out, "Model:      nomic-embed-text")
	assert.Contains(t, out, "Built at:   2026-03-01T12:00:00Z")
}

func TestStatusCmd_Failed(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.engine.initErr = errors.New("dial tcp: connection refused")
	ts.engine.status = domain.EngineStatus{
		State: domain.EngineFailed, StateName: "failed", Error: "dial tcp: connection refused",
	}

	out, err := execute(t, "status", "--json")

	require.NoError(t, err)
	var status domain.EngineStatus
	require.NoError(t, json.Unmarshal([]byte(out), &status))
	assert.Equal(t, domain.EngineFailed, status.State)
	assert.Equal(t, "dial tcp: connection refused", status.Error)
}
