package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/prepkit/internal/core/domain"
	"github.com/custodia-labs/prepkit/internal/core/ports/driving"
)

// MockCareerService implements driving.CareerService for CLI tests.
type MockCareerService struct {
	Reply   domain.ChatReply
	Items   []domain.RoadmapItem
	Skills  *domain.SkillsAnalysis
	ATS     *domain.AtsReport
	Records []domain.Experience
	Err     error

	LastMessage string
	LastResume  string
}

func (m *MockCareerService) Chat(_ context.Context, message string) (domain.ChatReply, error) {
	m.LastMessage = message
	return m.Reply, m.Err
}

func (m *MockCareerService) Roadmap(context.Context, string, string) ([]domain.RoadmapItem, error) {
	return m.Items, m.Err
}

func (m *MockCareerService) AnalyzeSkills(_ context.Context, _, _, resume string) (*domain.SkillsAnalysis, error) {
	m.LastResume = resume
	return m.Skills, m.Err
}

func (m *MockCareerService) AnalyzeATS(_ context.Context, _, _, resume string) (*domain.AtsReport, error) {
	m.LastResume = resume
	return m.ATS, m.Err
}

func (m *MockCareerService) Experiences(context.Context, string) ([]domain.Experience, error) {
	return m.Records, m.Err
}

// MockEngineService implements driving.EngineService for CLI tests.
type MockEngineService struct {
	status    domain.EngineStatus
	initErr   error
	initCalls int
}

func (m *MockEngineService) Initialize(context.Context) error {
	m.initCalls++
	if m.initErr == nil {
		m.status.State = domain.EngineReady
		m.status.StateName = domain.EngineReady.String()
	}
	return m.initErr
}

func (m *MockEngineService) State() domain.EngineState { return m.status.State }

func (m *MockEngineService) Status(context.Context) domain.EngineStatus { return m.status }

func (m *MockEngineService) Close() error { return nil }

// MockIngestService implements driving.IngestService for CLI tests.
type MockIngestService struct {
	Report *domain.IngestReport
	Err    error
	Dir    string
}

func (m *MockIngestService) Ingest(_ context.Context, dir string) (*domain.IngestReport, error) {
	m.Dir = dir
	return m.Report, m.Err
}

// MockResumeDecoder implements driving.ResumeDecoder for CLI tests.
type MockResumeDecoder struct {
	Err error
}

func (m *MockResumeDecoder) Decode(_ context.Context, _ string, data []byte) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	return strings.TrimSpace(string(data)), nil
}

// MockPromptService implements driving.PromptService for CLI tests.
type MockPromptService struct {
	Prompts  map[string]string
	Restored []string
}

func (m *MockPromptService) List() ([]driving.PromptInfo, error) {
	return []driving.PromptInfo{
		{Name: "chat", Path: "/p/chat.txt"},
		{Name: "ats", Path: "/p/ats.txt", Customised: true},
	}, nil
}

func (m *MockPromptService) Show(name string) (string, error) {
	text, ok := m.Prompts[name]
	if !ok {
		return "", domain.ErrNotFound
	}
	return text, nil
}

func (m *MockPromptService) Reset(name string) error {
	if _, ok := m.Prompts[name]; !ok {
		return domain.ErrNotFound
	}
	m.Restored = append(m.Restored, name)
	return nil
}

// MockSettingsService implements driving.SettingsService for CLI tests.
type MockSettingsService struct {
	settings    domain.AppSettings
	set         map[string]string
	validateErr error
}

func NewMockSettingsService() *MockSettingsService {
	return &MockSettingsService{settings: domain.DefaultAppSettings(), set: map[string]string{}}
}

func (m *MockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *MockSettingsService) Save(s *domain.AppSettings) error {
	m.settings = *s
	return nil
}

func (m *MockSettingsService) Set(key, value string) error {
	if !strings.Contains(key, ".") {
		return domain.ErrInvalidInput
	}
	m.set[key] = value
	return nil
}

func (m *MockSettingsService) Keys() []string { return []string{"llm.model", "llm.provider"} }

func (m *MockSettingsService) Validate() error { return m.validateErr }

func (m *MockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }

func (m *MockSettingsService) ValidateEmbeddingConfig() error { return nil }

func (m *MockSettingsService) ValidateLLMConfig() error { return nil }

func (m *MockSettingsService) ValidateRerankConfig() error { return nil }

// testServices bundles the mocks installed by setupTestServices.
type testServices struct {
	career   *MockCareerService
	engine   *MockEngineService
	ingest   *MockIngestService
	resume   *MockResumeDecoder
	prompts  *MockPromptService
	settings *MockSettingsService
}

// setupTestServices installs mocks and returns them with a cleanup func.
func setupTestServices() (*testServices, func()) {
	ts := &testServices{
		career:   &MockCareerService{},
		engine:   &MockEngineService{},
		ingest:   &MockIngestService{Report: &domain.IngestReport{}},
		resume:   &MockResumeDecoder{},
		prompts:  &MockPromptService{Prompts: map[string]string{"chat": "You are a career assistant."}},
		settings: NewMockSettingsService(),
	}
	SetServices(&Services{
		Career:   ts.career,
		Engine:   ts.engine,
		Ingest:   func(bool) driving.IngestService { return ts.ingest },
		Resume:   ts.resume,
		Prompts:  ts.prompts,
		Settings: ts.settings,
	})
	color.NoColor = true

	return ts, func() {
		SetServices(&Services{})
	}
}

// execute runs the root command with args and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		resetFlags(rootCmd)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

// resetFlags restores every flag to its default so tests stay independent.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

var (
	_ driving.CareerService   = (*MockCareerService)(nil)
	_ driving.EngineService   = (*MockEngineService)(nil)
	_ driving.IngestService   = (*MockIngestService)(nil)
	_ driving.ResumeDecoder   = (*MockResumeDecoder)(nil)
	_ driving.PromptService   = (*MockPromptService)(nil)
	_ driving.SettingsService = (*MockSettingsService)(nil)
)
