package mcp

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/prepkit/internal/core/domain"
)

func newTestServer(t *testing.T, career *mockCareerService) *Server {
	t.Helper()
	server, err := NewServer(&Ports{Career: career, Engine: &mockEngineService{}})
	require.NoError(t, err)
	return server
}

func TestServer_handleChat(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the reply", func(t *testing.T) {
		career := &mockCareerService{reply: domain.ChatReply{Response: "Two rounds."}}
		server := newTestServer(t, career)

		res, output, err := server.handleChat(ctx, nil, ChatInput{Message: "How many rounds?"})

		require.NoError(t, err)
		assert.Nil(t, res)
		assert.Equal(t, "Two rounds.", output.Response)
		assert.Equal(t, []string{"How many rounds?"}, career.lastArgs)
	})

	t.Run("failure reply is still returned", func(t *testing.T) {
		career := &mockCareerService{
			reply: domain.ChatReply{Response: domain.MsgKnowledgeBaseEmpty},
			err:   domain.ErrIndexUnavailable,
		}
		server := newTestServer(t, career)

		_, output, err := server.handleChat(ctx, nil, ChatInput{Message: "hi"})

		require.NoError(t, err)
		assert.Equal(t, domain.MsgKnowledgeBaseEmpty, output.Response)
	})
}

func TestServer_handleRoadmap(t *testing.T) {
	ctx := context.Background()

	t.Run("returns roadmap items", func(t *testing.T) {
		career := &mockCareerService{roadmap: []domain.RoadmapItem{
			{Title: "DSA", Status: "pending", Date: "Week 1", Description: "Arrays"},
		}}
		server := newTestServer(t, career)

		res, output, err := server.handleRoadmap(ctx, nil, TargetInput{Company: "Acme", Role: "SDE"})

		require.NoError(t, err)
		assert.Nil(t, res)
		assert.Empty(t, output.Error)
		require.Len(t, output.Roadmap, 1)
		assert.Equal(t, "DSA", output.Roadmap[0].Title)
		assert.Equal(t, []string{"Acme", "SDE"}, career.lastArgs)
	})

	t.Run("no results becomes an error payload", func(t *testing.T) {
		server := newTestServer(t, &mockCareerService{err: fmt.Errorf("roadmap: %w", domain.ErrNoResults)})

		res, output, err := server.handleRoadmap(ctx, nil, TargetInput{Company: "Acme", Role: "SDE"})

		require.NoError(t, err)
		require.NotNil(t, res)
		assert.True(t, res.IsError)
		assert.Equal(t, domain.MsgNoInfoFound, output.Error)
		assert.Nil(t, output.Roadmap)
	})

	t.Run("parse errors keep the raw output", func(t *testing.T) {
		server := newTestServer(t, &mockCareerService{
			err: &domain.ParseError{Raw: "not json", Err: errors.New("invalid character 'o'")},
		})

		res, output, err := server.handleRoadmap(ctx, nil, TargetInput{Company: "Acme", Role: "SDE"})

		require.NoError(t, err)
		assert.True(t, res.IsError)
		assert.Equal(t, "LLM/Parsing Error: invalid character 'o'", output.Error)
		assert.Equal(t, "not json", output.Raw)
		text, ok := res.Content[0].(*mcp.TextContent)
		require.True(t, ok)
		assert.Equal(t, output.Error, text.Text)
	})
}

func TestServer_handleAnalyzeSkills(t *testing.T) {
	ctx := context.Background()
	input := ResumeInput{Company: "Acme", Role: "SDE", Resume: "Go, SQL"}

	t.Run("returns the analysis", func(t *testing.T) {
		career := &mockCareerService{skills: &domain.SkillsAnalysis{
			PresentSkills:   []string{"Go"},
			MissingSkills:   []string{"Kubernetes"},
			Recommendations: []domain.Recommendation{{Skill: "Kubernetes", Action: "Deploy a cluster"}},
		}}
		server := newTestServer(t, career)

		res, output, err := server.handleAnalyzeSkills(ctx, nil, input)

		require.NoError(t, err)
		assert.Nil(t, res)
		require.NotNil(t, output.Analysis)
		assert.Equal(t, []string{"Go"}, output.Analysis.PresentSkills)
		assert.Equal(t, []string{"Acme", "SDE", "Go, SQL"}, career.lastArgs)
	})

	t.Run("system unavailable", func(t *testing.T) {
		server := newTestServer(t, &mockCareerService{err: domain.ErrSystemUnavailable})

		res, output, err := server.handleAnalyzeSkills(ctx, nil, input)

		require.NoError(t, err)
		assert.True(t, res.IsError)
		assert.Equal(t, domain.MsgSystemUnavailable, output.Error)
		assert.Nil(t, output.Analysis)
	})
}

func TestServer_handleAnalyzeATS(t *testing.T) {
	ctx := context.Background()
	input := ResumeInput{Company: "Acme", Role: "SDE", Resume: "Go, SQL"}

	t.Run("returns the report", func(t *testing.T) {
		server := newTestServer(t, &mockCareerService{ats: &domain.AtsReport{AtsScore: 72}})

		_, output, err := server.handleAnalyzeATS(ctx, nil, input)

		require.NoError(t, err)
		require.NotNil(t, output.Report)
		assert.Equal(t, 72, output.Report.AtsScore)
	})

	t.Run("validation error", func(t *testing.T) {
		server := newTestServer(t, &mockCareerService{
			err: &domain.ValidationError{Field: "ats_score", Reason: "out of range", Raw: `{"ats_score": 140}`},
		})

		res, output, err := server.handleAnalyzeATS(ctx, nil, input)

		require.NoError(t, err)
		assert.True(t, res.IsError)
		assert.Equal(t, "LLM/Parsing Error: validate LLM response: ats_score: out of range", output.Error)
		assert.Equal(t, `{"ats_score": 140}`, output.Raw)
	})
}

func TestServer_handleExperiences(t *testing.T) {
	ctx := context.Background()

	t.Run("returns experiences", func(t *testing.T) {
		career := &mockCareerService{experiences: []domain.Experience{
			{CandidateProfile: "New grad", Role: "SDE", Verdict: domain.VerdictSelected},
		}}
		server := newTestServer(t, career)

		res, output, err := server.handleExperiences(ctx, nil, CompanyInput{Company: "Acme"})

		require.NoError(t, err)
		assert.Nil(t, res)
		assert.Equal(t, 1, output.Count)
		assert.Equal(t, domain.VerdictSelected, output.Experiences[0].Verdict)
	})

	t.Run("nil list becomes empty", func(t *testing.T) {
		server := newTestServer(t, &mockCareerService{})

		_, output, err := server.handleExperiences(ctx, nil, CompanyInput{Company: "Acme"})

		require.NoError(t, err)
		assert.NotNil(t, output.Experiences)
		assert.Equal(t, 0, output.Count)
	})

	t.Run("unavailable engine", func(t *testing.T) {
		server := newTestServer(t, &mockCareerService{err: domain.ErrSystemUnavailable})

		res, output, err := server.handleExperiences(ctx, nil, CompanyInput{Company: "Acme"})

		require.NoError(t, err)
		assert.True(t, res.IsError)
		assert.Empty(t, output.Experiences)
	})
}

func TestServer_handleIndexStatus(t *testing.T) {
	builtAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	engine := &mockEngineService{status: domain.EngineStatus{
		State: domain.EngineReady,
		Index: domain.IndexInfo{Built: true, Entries: 42, Dimensions: 768, Model: "all-mpnet-base-v2", BuiltAt: builtAt},
	}}
	server, err := NewServer(&Ports{Career: &mockCareerService{}, Engine: engine})
	require.NoError(t, err)

	_, output, err := server.handleIndexStatus(context.Background(), nil, IndexStatusInput{})

	require.NoError(t, err)
	assert.Equal(t, IndexStatusOutput{
		State:      "ready",
		Built:      true,
		Entries:    42,
		Dimensions: 768,
		Model:      "all-mpnet-base-v2",
		BuiltAt:    "2025-03-01T12:00:00Z",
	}, output)
}
