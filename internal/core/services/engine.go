package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/prepkit/internal/core/domain"
	"github.com/custodia-labs/prepkit/internal/core/parser"
	"github.com/custodia-labs/prepkit/internal/core/ports/driven"
	"github.com/custodia-labs/prepkit/internal/core/ports/driving"
	"github.com/custodia-labs/prepkit/internal/logger"
)

// Ensure Engine implements the interfaces.
var (
	_ driving.CareerService = (*Engine)(nil)
	_ driving.EngineService = (*Engine)(nil)
)

// Operation names used in logs and metrics.
const (
	OpChat        = "chat"
	OpRoadmap     = "roadmap"
	OpSkills      = "skills"
	OpATS         = "ats"
	OpExperiences = "experiences"
)

// Retrieval parameters per operation. Only chat reranks.
const (
	chatTopK        = 10
	chatTopN        = 3
	roadmapTopK     = 5
	skillsTopK      = 5
	atsTopK         = 5
	experiencesTopK = 10
)

// MinResumeWords is the shortest text accepted as a resume.
const MinResumeWords = 20

// Engine is the query orchestrator. It owns the loaded components and runs
// the retrieve, rerank, prompt, generate and parse stages of each operation.
type Engine struct {
	loader  driven.ComponentLoader
	prompts *PromptBuilder
	metrics driven.MetricsRecorder
	gate    *IndexGate
	genOpts driven.GenerateOptions

	mu         sync.RWMutex
	state      domain.EngineState
	initErr    error
	components *driven.Components
	inflight   *sync.WaitGroup
	readySince time.Time
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithMetrics sets the metrics recorder.
func WithMetrics(m driven.MetricsRecorder) EngineOption {
	return func(e *Engine) {
		if m != nil {
			e.metrics = m
		}
	}
}

// WithIndexGate shares an index gate with an IngestService.
func WithIndexGate(g *IndexGate) EngineOption {
	return func(e *Engine) {
		if g != nil {
			e.gate = g
		}
	}
}

// WithMaxTokens caps generated output length.
func WithMaxTokens(n int) EngineOption {
	return func(e *Engine) { e.genOpts.MaxTokens = n }
}

// NewEngine creates an engine in the Uninitialized state.
// A nil prompt store uses the built-in templates.
func NewEngine(loader driven.ComponentLoader, prompts driven.PromptStore, opts ...EngineOption) *Engine {
	e := &Engine{
		loader:  loader,
		prompts: NewPromptBuilder(prompts),
		metrics: noopMetrics{},
		gate:    NewIndexGate(),
		state:   domain.EngineUninitialized,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.metrics.SetEngineState(e.state.String())
	return e
}

// Initialize loads the components and moves the engine to Ready or Failed.
// A Failed engine may be initialized again; a Ready engine is left as is.
func (e *Engine) Initialize(ctx context.Context) error {
	e.mu.Lock()
	switch e.state {
	case domain.EngineReady:
		e.mu.Unlock()
		return nil
	case domain.EngineInitializing:
		e.mu.Unlock()
		return fmt.Errorf("%w: initialization already in progress", domain.ErrSystemUnavailable)
	}
	e.setState(domain.EngineInitializing)
	e.mu.Unlock()

	logger.Section("Engine Initialization")
	start := time.Now()
	components, err := e.loader.Load(ctx)

	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		e.initErr = err
		e.setState(domain.EngineFailed)
		logger.Error(err, "engine initialization failed")
		return err
	}
	for _, w := range components.Warnings {
		logger.Warn("engine: %s", w)
	}
	e.components = components
	e.inflight = &sync.WaitGroup{}
	e.initErr = nil
	e.readySince = time.Now()
	e.setState(domain.EngineReady)
	logger.Info("engine ready in %s", time.Since(start).Round(time.Millisecond))
	return nil
}

// setState must be called with mu held.
func (e *Engine) setState(s domain.EngineState) {
	e.state = s
	e.metrics.SetEngineState(s.String())
	logger.Debug("engine state: %s", s)
}

// State returns the current lifecycle state.
func (e *Engine) State() domain.EngineState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

// Components returns the loaded components when the engine is Ready.
func (e *Engine) Components() (*driven.Components, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.state != domain.EngineReady {
		return nil, false
	}
	return e.components, true
}

// Gate returns the index gate shared with ingestion.
func (e *Engine) Gate() *IndexGate {
	return e.gate
}

// Status returns a snapshot for health reporting.
func (e *Engine) Status(ctx context.Context) domain.EngineStatus {
	e.mu.RLock()
	state, initErr, c, since := e.state, e.initErr, e.components, e.readySince
	if c != nil {
		e.inflight.Add(1)
		defer e.inflight.Done()
	}
	e.mu.RUnlock()

	status := domain.EngineStatus{State: state, StateName: state.String()}
	if initErr != nil {
		status.Error = initErr.Error()
	}
	if state != domain.EngineReady || c == nil {
		return status
	}

	status.ReadySince = since
	status.EmbeddingModel = c.Embedding.ModelName()
	status.LLMModel = c.LLM.ModelName()
	if c.Reranker != nil {
		status.RerankModel = c.Reranker.ModelName()
	}
	_ = e.gate.Read(func() error {
		info, err := c.Index.Info(ctx)
		if err != nil {
			logger.Warn("index info: %v", err)
			return err
		}
		status.Index = info
		return nil
	})
	return status
}

// Close returns the engine to Uninitialized and releases the components.
// New operations are refused at once; the components are closed after the
// operations already running on them return and no index swap is in progress.
func (e *Engine) Close() error {
	e.mu.Lock()
	c, inflight := e.components, e.inflight
	e.components, e.inflight = nil, nil
	e.setState(domain.EngineUninitialized)
	e.mu.Unlock()

	if c == nil {
		return nil
	}
	inflight.Wait()
	return e.gate.Write(c.Close)
}

// ready hands out the components to one operation. The caller must call
// done when it no longer uses them.
func (e *Engine) ready() (c *driven.Components, done func(), err error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.state != domain.EngineReady || e.components == nil {
		return nil, nil, fmt.Errorf("%w: engine is %s", domain.ErrSystemUnavailable, e.state)
	}
	e.inflight.Add(1)
	return e.components, e.inflight.Done, nil
}

// Chat answers a free-form question from the knowledge base.
func (e *Engine) Chat(ctx context.Context, message string) (reply domain.ChatReply, err error) {
	start := time.Now()
	defer func() { e.finish(OpChat, start, err) }()

	c, done, err := e.ready()
	if err != nil {
		return domain.ChatReply{Response: domain.MsgSystemUnavailable}, err
	}
	defer done()

	results, err := e.retrieve(ctx, c, OpChat, message, chatTopK)
	var retErr *domain.RetrievalError
	switch {
	case errors.Is(err, domain.ErrIndexUnavailable):
		return domain.ChatReply{Response: domain.MsgKnowledgeBaseEmpty}, err
	case errors.As(err, &retErr):
		return domain.ChatReply{Response: fmt.Sprintf("Error accessing vector DB: %v", retErr.Err)}, err
	case err != nil:
		return domain.ChatReply{Response: fmt.Sprintf("Error accessing vector DB: %v", err)}, err
	case len(results) == 0:
		return domain.ChatReply{Response: domain.MsgNoRelevantInfo}, domain.ErrNoResults
	}

	reranked := e.rerank(ctx, c, OpChat, message, results, chatTopN)

	prompt, err := e.prompts.Chat(domain.JoinReranked(reranked), message)
	if err != nil {
		return domain.ChatReply{Response: fmt.Sprintf("Error communicating with LLM: %v", err)},
			&domain.GenerationError{Err: err}
	}

	answer, err := e.generate(ctx, c, OpChat, prompt)
	if err != nil {
		var genErr *domain.GenerationError
		cause := err
		if errors.As(err, &genErr) {
			cause = genErr.Err
		}
		return domain.ChatReply{Response: fmt.Sprintf("Error communicating with LLM: %v", cause)}, err
	}
	return domain.ChatReply{Response: answer}, nil
}

// Roadmap builds a preparation roadmap for a company and role.
func (e *Engine) Roadmap(ctx context.Context, company, role string) (items []domain.RoadmapItem, err error) {
	start := time.Now()
	defer func() { e.finish(OpRoadmap, start, err) }()

	c, done, err := e.ready()
	if err != nil {
		return nil, err
	}
	defer done()

	query := fmt.Sprintf("preparation roadmap for %s %s interview recruitment process", company, role)
	results, err := e.retrieve(ctx, c, OpRoadmap, query, roadmapTopK)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, domain.ErrNoResults
	}

	prompt, err := e.prompts.Roadmap(company, role, domain.JoinRetrieved(results))
	if err != nil {
		return nil, &domain.GenerationError{Err: err}
	}
	raw, err := e.generate(ctx, c, OpRoadmap, prompt)
	if err != nil {
		return nil, err
	}
	return parseStage(e, OpRoadmap, raw, parser.Roadmap)
}

// AnalyzeSkills compares resume text against a role's requirements.
func (e *Engine) AnalyzeSkills(
	ctx context.Context, company, role, resume string,
) (analysis *domain.SkillsAnalysis, err error) {
	start := time.Now()
	defer func() { e.finish(OpSkills, start, err) }()

	c, done, err := e.ready()
	if err != nil {
		return nil, err
	}
	defer done()
	if !PlausibleResume(resume) {
		logger.Debug("skills: resume rejected before generation (%d words)", len(strings.Fields(resume)))
		return domain.InvalidResumeAnalysis(), nil
	}

	query := fmt.Sprintf("technical skills requirements for %s %s", company, role)
	kb := e.optionalContext(ctx, c, OpSkills, query, skillsTopK)

	prompt, err := e.prompts.Skills(company, role, kb, resume)
	if err != nil {
		return nil, &domain.GenerationError{Err: err}
	}
	raw, err := e.generate(ctx, c, OpSkills, prompt)
	if err != nil {
		return nil, err
	}
	return parseStage(e, OpSkills, raw, parser.Skills)
}

// AnalyzeATS scores resume text for applicant-tracking-system compatibility.
func (e *Engine) AnalyzeATS(
	ctx context.Context, company, role, resume string,
) (report *domain.AtsReport, err error) {
	start := time.Now()
	defer func() { e.finish(OpATS, start, err) }()

	c, done, err := e.ready()
	if err != nil {
		return nil, err
	}
	defer done()
	if !PlausibleResume(resume) {
		logger.Debug("ats: resume rejected before generation (%d words)", len(strings.Fields(resume)))
		return domain.InvalidDocumentReport(), nil
	}

	query := fmt.Sprintf("job description requirements keywords for %s %s", company, role)
	kb := e.optionalContext(ctx, c, OpATS, query, atsTopK)

	prompt, err := e.prompts.ATS(company, role, kb, resume)
	if err != nil {
		return nil, &domain.GenerationError{Err: err}
	}
	raw, err := e.generate(ctx, c, OpATS, prompt)
	if err != nil {
		return nil, err
	}
	return parseStage(e, OpATS, raw, parser.ATS)
}

// Experiences digests interview experiences for a company.
// Every failure after the readiness check yields an empty list.
func (e *Engine) Experiences(ctx context.Context, company string) ([]domain.Experience, error) {
	start := time.Now()

	c, done, err := e.ready()
	if err != nil {
		e.finish(OpExperiences, start, err)
		return []domain.Experience{}, err
	}

	items, err := e.experiences(ctx, c, company)
	done()
	e.finish(OpExperiences, start, err)
	if err != nil {
		logger.Warn("experiences for %q: returning empty list: %v", company, err)
		return []domain.Experience{}, nil
	}
	return items, nil
}

func (e *Engine) experiences(ctx context.Context, c *driven.Components, company string) ([]domain.Experience, error) {
	query := fmt.Sprintf("interview experience %s questions rounds", company)
	results, err := e.retrieve(ctx, c, OpExperiences, query, experiencesTopK)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, domain.ErrNoResults
	}

	prompt, err := e.prompts.Experiences(company, domain.JoinRetrieved(results))
	if err != nil {
		return nil, &domain.GenerationError{Err: err}
	}
	raw, err := e.generate(ctx, c, OpExperiences, prompt)
	if err != nil {
		return nil, err
	}
	return parseStage(e, OpExperiences, raw, parser.Experiences)
}

// retrieve embeds query and searches the index under the shared gate.
// An index that was never built returns domain.ErrIndexUnavailable before
// the embedding model is called.
func (e *Engine) retrieve(
	ctx context.Context, c *driven.Components, op, query string, k int,
) (results []domain.RetrievalResult, err error) {
	err = e.gate.Read(func() error {
		info, err := c.Index.Info(ctx)
		if err != nil {
			return &domain.RetrievalError{Err: err}
		}
		if !info.Built {
			return domain.ErrIndexUnavailable
		}

		start := time.Now()
		vec, err := c.Embedding.Embed(ctx, query)
		e.observe(op, driven.StageEmbed, start, err)
		if err != nil {
			return &domain.RetrievalError{Err: fmt.Errorf("embed query: %w", err)}
		}

		start = time.Now()
		results, err = c.Index.Search(ctx, vec, k)
		e.observe(op, driven.StageRetrieve, start, err)
		switch {
		case errors.Is(err, domain.ErrIndexUnavailable):
			return domain.ErrIndexUnavailable
		case err != nil:
			return &domain.RetrievalError{Err: err}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Debug("%s: retrieved %d chunks", op, len(results))
	return results, nil
}

// optionalContext retrieves context for the resume operations.
// Any retrieval failure degrades to an empty context.
func (e *Engine) optionalContext(ctx context.Context, c *driven.Components, op, query string, k int) string {
	results, err := e.retrieve(ctx, c, op, query, k)
	if err != nil {
		logger.Warn("%s: continuing without context: %v", op, err)
		return ""
	}
	return domain.JoinRetrieved(results)
}

func (e *Engine) rerank(
	ctx context.Context, c *driven.Components, op, query string, results []domain.RetrievalResult, n int,
) []domain.RerankedResult {
	start := time.Now()
	reranked, err := Rerank(ctx, c.Reranker, query, results, n)
	e.observe(op, driven.StageRerank, start, err)
	if err != nil {
		logger.Warn("%s: using retrieval order: %v", op, err)
		e.metrics.RerankDegraded(op)
	}
	return reranked
}

func (e *Engine) generate(ctx context.Context, c *driven.Components, op, prompt string) (string, error) {
	start := time.Now()
	opts := e.genOpts
	opts.Temperature = 0
	raw, err := c.LLM.Generate(ctx, prompt, opts)
	e.observe(op, driven.StageGenerate, start, err)
	if err != nil {
		return "", &domain.GenerationError{Err: err}
	}
	return raw, nil
}

// parseStage runs an artifact parser and records the parse stage.
func parseStage[T any](e *Engine, op, raw string, parse func(string) (T, error)) (T, error) {
	start := time.Now()
	out, err := parse(raw)
	e.observe(op, driven.StageParse, start, err)
	if err != nil {
		logger.Warn("%s: unusable model output: %v\nraw: %s", op, err, raw)
	}
	return out, err
}

func (e *Engine) observe(op, stage string, start time.Time, err error) {
	d := time.Since(start)
	e.metrics.ObserveStage(op, stage, d, err)
	logger.Stage(op, stage, d, err)
}

func (e *Engine) finish(op string, start time.Time, err error) {
	e.metrics.ObserveOperation(op, Outcome(err), time.Since(start))
}

// Outcome classifies an operation error for metrics.
func Outcome(err error) string {
	var (
		retErr   *domain.RetrievalError
		genErr   *domain.GenerationError
		parseErr *domain.ParseError
		validErr *domain.ValidationError
	)
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrSystemUnavailable):
		return "unavailable"
	case errors.Is(err, domain.ErrIndexUnavailable):
		return "empty_index"
	case errors.Is(err, domain.ErrNoResults):
		return "no_results"
	case errors.As(err, &retErr):
		return "retrieval_error"
	case errors.As(err, &genErr):
		return "generation_error"
	case errors.As(err, &parseErr):
		return "parse_error"
	case errors.As(err, &validErr):
		return "validation_error"
	default:
		return "error"
	}
}

// PlausibleResume reports whether text is long enough to be worth analysing.
func PlausibleResume(text string) bool {
	return len(strings.Fields(text)) >= MinResumeWords
}
