package mcp

import (
	"context"
	"fmt"

	"github.com/custodia-labs/prepkit/internal/core/domain"
	"github.com/custodia-labs/prepkit/internal/core/ports/driving"
)

// mockCareerService is a mock implementation of driving.CareerService.
type mockCareerService struct {
	reply       domain.ChatReply
	roadmap     []domain.RoadmapItem
	skills      *domain.SkillsAnalysis
	ats         *domain.AtsReport
	experiences []domain.Experience
	err         error

	lastArgs []string
}

func (m *mockCareerService) Chat(_ context.Context, message string) (domain.ChatReply, error) {
	m.lastArgs = []string{message}
	return m.reply, m.err
}

func (m *mockCareerService) Roadmap(_ context.Context, company, role string) ([]domain.RoadmapItem, error) {
	m.lastArgs = []string{company, role}
	return m.roadmap, m.err
}

func (m *mockCareerService) AnalyzeSkills(_ context.Context, company, role, resume string) (*domain.SkillsAnalysis, error) {
	m.lastArgs = []string{company, role, resume}
	return m.skills, m.err
}

func (m *mockCareerService) AnalyzeATS(_ context.Context, company, role, resume string) (*domain.AtsReport, error) {
	m.lastArgs = []string{company, role, resume}
	return m.ats, m.err
}

func (m *mockCareerService) Experiences(_ context.Context, company string) ([]domain.Experience, error) {
	m.lastArgs = []string{company}
	return m.experiences, m.err
}

// mockEngineService is a mock implementation of driving.EngineService.
type mockEngineService struct {
	status domain.EngineStatus
}

func (m *mockEngineService) Initialize(context.Context) error { return nil }
func (m *mockEngineService) State() domain.EngineState        { return m.status.State }
func (m *mockEngineService) Status(context.Context) domain.EngineStatus {
	return m.status
}
func (m *mockEngineService) Close() error { return nil }

// mockPromptService is a mock implementation of driving.PromptService.
type mockPromptService struct {
	prompts map[string]string
	err     error
}

func (m *mockPromptService) List() ([]driving.PromptInfo, error) {
	if m.err != nil {
		return nil, m.err
	}
	infos := make([]driving.PromptInfo, 0, len(m.prompts))
	for name := range m.prompts {
		infos = append(infos, driving.PromptInfo{Name: name})
	}
	return infos, nil
}

func (m *mockPromptService) Show(name string) (string, error) {
	content, ok := m.prompts[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrNotFound, name)
	}
	return content, m.err
}

func (m *mockPromptService) Reset(string) error { return m.err }
