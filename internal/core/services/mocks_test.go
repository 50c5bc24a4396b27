package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/custodia-labs/prepkit/internal/core/domain"
	"github.com/custodia-labs/prepkit/internal/core/ports/driven"
)

// mockEmbedding returns [1, 0] for every text and records the inputs.
type mockEmbedding struct {
	mu       sync.Mutex
	err      error
	queries  []string
	batches  [][]string
	dims     int
	inflight int
	peak     int
	delay    time.Duration
}

func (m *mockEmbedding) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, text)
	if m.err != nil {
		return nil, m.err
	}
	return []float32{1, 0}, nil
}

func (m *mockEmbedding) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	m.batches = append(m.batches, texts)
	m.inflight++
	if m.inflight > m.peak {
		m.peak = m.inflight
	}
	err := m.err
	m.mu.Unlock()

	if m.delay > 0 {
		time.Sleep(m.delay)
	}

	m.mu.Lock()
	m.inflight--
	m.mu.Unlock()

	if err != nil {
		return nil, err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = []float32{1, float32(len(t) % 5)}
	}
	return out, nil
}

func (m *mockEmbedding) Dimensions() int              { return 2 }
func (m *mockEmbedding) ModelName() string            { return "mock-embed" }
func (m *mockEmbedding) Ping(_ context.Context) error { return nil }
func (m *mockEmbedding) Close() error                 { return nil }

func (m *mockEmbedding) queryCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queries)
}

// mockReranker scores passages with score, or fails with err.
type mockReranker struct {
	mu    sync.Mutex
	score func(passages []string) []float64
	err   error
	calls int
}

func (m *mockReranker) Score(_ context.Context, _ string, passages []string) ([]float64, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.score(passages), nil
}

func (m *mockReranker) ModelName() string            { return "mock-rerank" }
func (m *mockReranker) Ping(_ context.Context) error { return nil }
func (m *mockReranker) Close() error                 { return nil }

// mockLLM returns reply and records every prompt.
// When started is set, Generate signals on it and waits for release.
type mockLLM struct {
	mu      sync.Mutex
	reply   string
	err     error
	prompts []string
	opts    []driven.GenerateOptions

	started chan struct{}
	release chan struct{}
	closed  atomic.Bool
}

func (m *mockLLM) Generate(_ context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	if m.started != nil {
		m.started <- struct{}{}
		<-m.release
	}
	if m.closed.Load() {
		return "", errors.New("llm closed")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, prompt)
	m.opts = append(m.opts, opts)
	if m.err != nil {
		return "", m.err
	}
	return m.reply, nil
}

func (m *mockLLM) ModelName() string            { return "mock-llm" }
func (m *mockLLM) Ping(_ context.Context) error { return nil }
func (m *mockLLM) Close() error {
	m.closed.Store(true)
	return nil
}

func (m *mockLLM) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

func (m *mockLLM) lastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.prompts) == 0 {
		return ""
	}
	return m.prompts[len(m.prompts)-1]
}

// mockLoader hands out fixed components.
type mockLoader struct {
	components *driven.Components
	err        error
	calls      int
}

func (m *mockLoader) Load(_ context.Context) (*driven.Components, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.components, nil
}

// mockMetrics records what the services report.
type mockMetrics struct {
	mu       sync.Mutex
	stages   []string
	outcomes map[string][]string
	degraded map[string]int
	states   []string
	ingests  []error
}

func newMockMetrics() *mockMetrics {
	return &mockMetrics{outcomes: map[string][]string{}, degraded: map[string]int{}}
}

func (m *mockMetrics) ObserveStage(op, stage string, _ time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.stages = append(m.stages, fmt.Sprintf("%s/%s/%s", op, stage, status))
}

func (m *mockMetrics) ObserveOperation(op, outcome string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes[op] = append(m.outcomes[op], outcome)
}

func (m *mockMetrics) RerankDegraded(op string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.degraded[op]++
}

func (m *mockMetrics) ObserveIngest(_, _ int, _ time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ingests = append(m.ingests, err)
}

func (m *mockMetrics) SetEngineState(state string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states = append(m.states, state)
}

// mockPromptStore serves templates from a map.
type mockPromptStore struct {
	prompts  map[string]string
	written  map[string]string
	reloaded int
}

func newMockPromptStore() *mockPromptStore {
	return &mockPromptStore{prompts: driven.DefaultPrompts(), written: map[string]string{}}
}

func (m *mockPromptStore) Load(name string) (string, error) {
	p, ok := m.prompts[name]
	if !ok {
		return "", fmt.Errorf("unknown prompt %q", name)
	}
	return p, nil
}

func (m *mockPromptStore) Reload() { m.reloaded++ }

func (m *mockPromptStore) Write(name, content string) error {
	m.prompts[name] = content
	m.written[name] = content
	return nil
}

func (m *mockPromptStore) Path(name string) string { return "/prompts/" + name + ".txt" }

// indexEntries builds entries whose similarity to [1, 0] decreases with position.
func indexEntries(contents ...string) []domain.IndexEntry {
	entries := make([]domain.IndexEntry, len(contents))
	for i, c := range contents {
		entries[i] = domain.IndexEntry{
			Chunk: domain.Chunk{
				ID:         fmt.Sprintf("chunk-%d", i),
				DocumentID: "doc",
				Source:     "acme.txt",
				Content:    c,
				Position:   i,
				End:        len([]rune(c)),
			},
			Vector: []float32{1, float32(i) * 0.1},
		}
	}
	return entries
}
