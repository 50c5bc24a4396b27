package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/prepkit/internal/logger"
)

// DefaultVersion is reported when no version is configured.
const DefaultVersion = "dev"

// shutdownTimeout bounds draining of HTTP sessions.
const shutdownTimeout = 5 * time.Second

// Option configures a Server.
type Option func(*Server)

// WithVersion sets the implementation version announced to clients.
func WithVersion(v string) Option {
	return func(s *Server) {
		if v != "" {
			s.impl.Version = v
		}
	}
}

// Server exposes the career operations as MCP tools and resources.
type Server struct {
	ports  *Ports
	impl   *mcp.Implementation
	server *mcp.Server
}

// NewServer creates an MCP server over ports.
func NewServer(ports *Ports, opts ...Option) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	s := &Server{
		ports: ports,
		impl:  &mcp.Implementation{Name: "prepkit", Version: DefaultVersion},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.server = mcp.NewServer(s.impl, nil)

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Run serves a single client over stdio until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Handler returns the streamable HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.server
	}, nil)
}

// RunHTTP serves streamable HTTP on addr until ctx is done.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("mcp: shutdown: %v", err)
		}
	}()

	logger.Info("mcp: listening on %s", addr)
	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
