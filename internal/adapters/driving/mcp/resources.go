package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/prepkit/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for prepkit resources.
	uriScheme = "prepkit://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "status",
		Name:        "status",
		Description: "Engine state and knowledge base index details",
		MIMEType:    "application/json",
	}, s.handleStatusResource)

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "prompts",
		Name:        "prompts",
		Description: "Prompt templates used for generation",
		MIMEType:    "application/json",
	}, s.handlePromptsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "prompts/{name}",
		Name:        "prompt-template",
		Description: "Active text of a prompt template",
		MIMEType:    "text/plain",
	}, s.handlePromptResource)
}

// handleStatusResource returns the engine status as JSON.
func (s *Server) handleStatusResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Engine == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	data, err := json.MarshalIndent(s.ports.Engine.Status(ctx), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling status: %w", err)
	}
	return jsonResult(req.Params.URI, data), nil
}

// handlePromptsResource lists the prompt templates.
func (s *Server) handlePromptsResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Prompts == nil {
		return jsonResult(req.Params.URI, []byte("[]")), nil
	}

	infos, err := s.ports.Prompts.List()
	if err != nil {
		return nil, fmt.Errorf("listing prompts: %w", err)
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling prompts: %w", err)
	}
	return jsonResult(req.Params.URI, data), nil
}

// handlePromptResource returns the active text of one prompt.
func (s *Server) handlePromptResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Prompts == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	name := extractPromptName(req.Params.URI)
	if name == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	content, err := s.ports.Prompts.Show(name)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting prompt: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     content,
		}},
	}, nil
}

func jsonResult(uri string, data []byte) *mcp.ReadResourceResult {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}
}

// extractPromptName extracts the name from a URI like prepkit://prompts/{name}.
func extractPromptName(uri string) string {
	const prefix = uriScheme + "prompts/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	name := strings.TrimPrefix(uri, prefix)
	if strings.Contains(name, "/") {
		return ""
	}
	return name
}
