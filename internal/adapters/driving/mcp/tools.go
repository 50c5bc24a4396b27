package mcp

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/prepkit/internal/core/domain"
)

// ChatInput is the input schema for the chat tool.
type ChatInput struct {
	Message string `json:"message" jsonschema:"the question to answer from the knowledge base"`
}

// ChatOutput is the output schema for the chat tool.
type ChatOutput struct {
	Response string `json:"response"`
}

// TargetInput names a company and role.
type TargetInput struct {
	Company string `json:"company" jsonschema:"the company being interviewed with"`
	Role    string `json:"role" jsonschema:"the role being applied for"`
}

// ResumeInput is the input schema for the resume analysis tools.
type ResumeInput struct {
	Company string `json:"company" jsonschema:"the company being interviewed with"`
	Role    string `json:"role" jsonschema:"the role being applied for"`
	Resume  string `json:"resume" jsonschema:"the plain-text resume to analyse"`
}

// CompanyInput is the input schema for the experiences tool.
type CompanyInput struct {
	Company string `json:"company" jsonschema:"the company whose interview experiences to summarise"`
}

// RoadmapOutput is the output schema for the roadmap tool.
type RoadmapOutput struct {
	Error   string               `json:"error,omitempty"`
	Raw     string               `json:"raw,omitempty"`
	Roadmap []domain.RoadmapItem `json:"roadmap,omitempty"`
}

// SkillsOutput is the output schema for the analyze_skills tool.
type SkillsOutput struct {
	Error    string                 `json:"error,omitempty"`
	Raw      string                 `json:"raw,omitempty"`
	Analysis *domain.SkillsAnalysis `json:"analysis,omitempty"`
}

// ATSOutput is the output schema for the analyze_ats tool.
type ATSOutput struct {
	Error  string            `json:"error,omitempty"`
	Raw    string            `json:"raw,omitempty"`
	Report *domain.AtsReport `json:"report,omitempty"`
}

// ExperiencesOutput is the output schema for the experiences tool.
type ExperiencesOutput struct {
	Experiences []domain.Experience `json:"experiences"`
	Count       int                 `json:"count"`
}

// IndexStatusInput is the (empty) input schema for the index_status tool.
type IndexStatusInput struct{}

// IndexStatusOutput is the output schema for the index_status tool.
type IndexStatusOutput struct {
	State      string `json:"state"`
	Error      string `json:"error,omitempty"`
	Built      bool   `json:"built"`
	Entries    int    `json:"entries"`
	Dimensions int    `json:"dimensions"`
	Model      string `json:"model,omitempty"`
	BuiltAt    string `json:"built_at,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "chat",
		Description: "Answer an interview-preparation question from the knowledge base",
	}, s.handleChat)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "roadmap",
		Description: "Build a preparation roadmap for a company and role",
	}, s.handleRoadmap)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_skills",
		Description: "Compare a resume against the skills a role requires",
	}, s.handleAnalyzeSkills)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_ats",
		Description: "Score a resume for applicant tracking system compatibility",
	}, s.handleAnalyzeATS)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "experiences",
		Description: "Summarise past interview experiences at a company",
	}, s.handleExperiences)

	if s.ports.Engine != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "index_status",
			Description: "Report the engine state and the loaded knowledge base index",
		}, s.handleIndexStatus)
	}
}

func (s *Server) handleChat(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ChatInput,
) (*mcp.CallToolResult, ChatOutput, error) {
	// The reply text is displayable even on failure.
	reply, _ := s.ports.Career.Chat(ctx, input.Message) //nolint:errcheck
	return nil, ChatOutput{Response: reply.Response}, nil
}

func (s *Server) handleRoadmap(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input TargetInput,
) (*mcp.CallToolResult, RoadmapOutput, error) {
	items, err := s.ports.Career.Roadmap(ctx, input.Company, input.Role)
	if err != nil {
		payload := domain.PayloadFor(err)
		return errorResult(payload), RoadmapOutput{Error: payload.Error, Raw: payload.Raw}, nil
	}
	return nil, RoadmapOutput{Roadmap: items}, nil
}

func (s *Server) handleAnalyzeSkills(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ResumeInput,
) (*mcp.CallToolResult, SkillsOutput, error) {
	analysis, err := s.ports.Career.AnalyzeSkills(ctx, input.Company, input.Role, input.Resume)
	if err != nil {
		payload := domain.PayloadFor(err)
		return errorResult(payload), SkillsOutput{Error: payload.Error, Raw: payload.Raw}, nil
	}
	return nil, SkillsOutput{Analysis: analysis}, nil
}

func (s *Server) handleAnalyzeATS(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ResumeInput,
) (*mcp.CallToolResult, ATSOutput, error) {
	report, err := s.ports.Career.AnalyzeATS(ctx, input.Company, input.Role, input.Resume)
	if err != nil {
		payload := domain.PayloadFor(err)
		return errorResult(payload), ATSOutput{Error: payload.Error, Raw: payload.Raw}, nil
	}
	return nil, ATSOutput{Report: report}, nil
}

func (s *Server) handleExperiences(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input CompanyInput,
) (*mcp.CallToolResult, ExperiencesOutput, error) {
	items, err := s.ports.Career.Experiences(ctx, input.Company)
	if err != nil {
		return errorResult(domain.PayloadFor(err)), ExperiencesOutput{Experiences: []domain.Experience{}}, nil
	}
	if items == nil {
		items = []domain.Experience{}
	}
	return nil, ExperiencesOutput{Experiences: items, Count: len(items)}, nil
}

func (s *Server) handleIndexStatus(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ IndexStatusInput,
) (*mcp.CallToolResult, IndexStatusOutput, error) {
	status := s.ports.Engine.Status(ctx)
	out := IndexStatusOutput{
		State:      status.State.String(),
		Error:      status.Error,
		Built:      status.Index.Built,
		Entries:    status.Index.Entries,
		Dimensions: status.Index.Dimensions,
		Model:      status.Index.Model,
	}
	if !status.Index.BuiltAt.IsZero() {
		out.BuiltAt = status.Index.BuiltAt.Format(time.RFC3339)
	}
	return nil, out, nil
}

// errorResult marks a tool call as failed while keeping the structured output.
func errorResult(payload domain.ErrorPayload) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: payload.Error}},
	}
}
