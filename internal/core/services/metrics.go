package services

import (
	"sync"
	"time"

	"github.com/custodia-labs/prepkit/internal/core/ports/driven"
)

// noopMetrics discards all instrumentation.
type noopMetrics struct{}

var _ driven.MetricsRecorder = noopMetrics{}

func (noopMetrics) ObserveStage(string, string, time.Duration, error) {}
func (noopMetrics) ObserveOperation(string, string, time.Duration)    {}
func (noopMetrics) RerankDegraded(string)                             {}
func (noopMetrics) ObserveIngest(int, int, time.Duration, error)      {}
func (noopMetrics) SetEngineState(string)                             {}

// IndexGate serialises index replacement against queries.
// Queries hold the read side for the whole retrieve stage; ingestion holds
// the write side only while the new entries are swapped in.
type IndexGate struct {
	mu sync.RWMutex
}

// NewIndexGate creates an unlocked gate.
func NewIndexGate() *IndexGate {
	return &IndexGate{}
}

// Read runs fn under the shared lock.
func (g *IndexGate) Read(fn func() error) error {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return fn()
}

// Write runs fn under the exclusive lock.
func (g *IndexGate) Write(fn func() error) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return fn()
}
