package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/prepkit/internal/core/domain"
	"github.com/custodia-labs/prepkit/internal/core/services"
)

func TestIngestOptions_FromSettings(t *testing.T) {
	settings := domain.DefaultAppSettings().Ingest
	settings.BatchSize = 16
	settings.Concurrency = 2
	settings.RatePerSecond = 5
	gate := services.NewIndexGate()

	opts := ingestOptions(settings, gate, nil)

	assert.Equal(t, 16, opts.BatchSize)
	assert.Equal(t, 2, opts.Concurrency)
	assert.InDelta(t, 5.0, opts.RatePerSecond, 1e-9)
	assert.Same(t, gate, opts.Gate)
}

func TestIngestOptions_RateDisabledByDefault(t *testing.T) {
	opts := ingestOptions(domain.DefaultAppSettings().Ingest, nil, nil)
	assert.Zero(t, opts.RatePerSecond)
}
