package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/custodia-labs/prepkit/internal/logger"
)

// Defaults for Config.
const (
	DefaultAddr           = ":8000"
	DefaultMaxUploadBytes = 10 << 20
	shutdownTimeout       = 10 * time.Second
)

// Config configures the HTTP server.
type Config struct {
	// Addr is the listen address (default :8000).
	Addr string

	// AllowOrigins lists CORS origins (default *).
	AllowOrigins []string

	// CorpusDir is the directory POST /ingest rebuilds from.
	CorpusDir string

	// MaxUploadBytes caps resume uploads (default 10 MiB).
	MaxUploadBytes int64
}

// Server is the echo application.
type Server struct {
	echo  *echo.Echo
	ports *Ports
	cfg   Config
}

// NewServer creates a server and registers every route.
func NewServer(ports *Ports, cfg Config) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, err
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if len(cfg.AllowOrigins) == 0 {
		cfg.AllowOrigins = []string{"*"}
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{AllowOrigins: cfg.AllowOrigins}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			logger.Debug("%s %s %d %s id=%s", v.Method, v.URI, v.Status, v.Latency, v.RequestID)
			return nil
		},
	}))

	s := &Server{echo: e, ports: ports, cfg: cfg}
	s.register()
	return s, nil
}

func (s *Server) register() {
	s.echo.POST("/chat", s.chat)
	s.echo.POST("/roadmap", s.roadmap)
	s.echo.POST("/analyze-skills", s.analyzeSkills)
	s.echo.POST("/analyze-ats", s.analyzeATS)
	s.echo.POST("/experiences", s.experiences)
	s.echo.POST("/ingest", s.ingest)

	s.echo.GET("/health", s.health)
	s.echo.GET("/ready", s.ready)
	if s.ports.Metrics != nil {
		s.echo.GET("/metrics", echo.WrapHandler(s.ports.Metrics))
	}
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.cfg.Addr
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.echo.Start(s.cfg.Addr)
	}()
	logger.Info("HTTP server listening on %s", s.cfg.Addr)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.echo.Shutdown(shutdownCtx)
	}
}
