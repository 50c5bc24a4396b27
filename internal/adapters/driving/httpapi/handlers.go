package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/custodia-labs/prepkit/internal/core/domain"
	"github.com/custodia-labs/prepkit/internal/logger"
)

type chatRequest struct {
	Message string `json:"message"`
}

type targetRequest struct {
	Company string `json:"company"`
	Role    string `json:"role"`
}

type companyRequest struct {
	Company string `json:"company"`
}

// Operation failures are reported with 200 and an error payload, so a
// client can always decode the body the same way. Malformed requests get 4xx.

func (s *Server) chat(c echo.Context) error {
	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return badRequest()
	}
	if strings.TrimSpace(req.Message) == "" {
		return missingField("message")
	}

	reply, err := s.ports.Career.Chat(c.Request().Context(), req.Message)
	if err != nil {
		logger.Debug("chat: %v", err)
	}
	return c.JSON(http.StatusOK, reply)
}

func (s *Server) roadmap(c echo.Context) error {
	var req targetRequest
	if err := c.Bind(&req); err != nil {
		return badRequest()
	}
	if field := firstMissing(map[string]string{"company": req.Company, "role": req.Role}); field != "" {
		return missingField(field)
	}

	items, err := s.ports.Career.Roadmap(c.Request().Context(), req.Company, req.Role)
	if err != nil {
		return c.JSON(http.StatusOK, domain.PayloadFor(err))
	}
	return c.JSON(http.StatusOK, items)
}

func (s *Server) analyzeSkills(c echo.Context) error {
	form, err := s.readResumeForm(c)
	if err != nil {
		return err
	}
	resume, err := s.ports.Resume.Decode(c.Request().Context(), form.filename, form.data)
	if err != nil {
		return c.JSON(http.StatusOK, domain.PayloadFor(err))
	}

	analysis, err := s.ports.Career.AnalyzeSkills(c.Request().Context(), form.company, form.role, resume)
	if err != nil {
		return c.JSON(http.StatusOK, domain.PayloadFor(err))
	}
	return c.JSON(http.StatusOK, analysis)
}

func (s *Server) analyzeATS(c echo.Context) error {
	form, err := s.readResumeForm(c)
	if err != nil {
		return err
	}
	resume, err := s.ports.Resume.Decode(c.Request().Context(), form.filename, form.data)
	if err != nil {
		return c.JSON(http.StatusOK, domain.PayloadFor(err))
	}

	report, err := s.ports.Career.AnalyzeATS(c.Request().Context(), form.company, form.role, resume)
	if err != nil {
		return c.JSON(http.StatusOK, domain.PayloadFor(err))
	}
	return c.JSON(http.StatusOK, report)
}

type resumeForm struct {
	company  string
	role     string
	filename string
	data     []byte
}

// readResumeForm reads the multipart company, role and file fields.
func (s *Server) readResumeForm(c echo.Context) (*resumeForm, error) {
	form := &resumeForm{
		company: c.FormValue("company"),
		role:    c.FormValue("role"),
	}
	if field := firstMissing(map[string]string{"company": form.company, "role": form.role}); field != "" {
		return nil, missingField(field)
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return nil, missingField("file")
	}
	f, err := fh.Open()
	if err != nil {
		return nil, badRequest()
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return nil, badRequest()
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return nil, echo.NewHTTPError(http.StatusRequestEntityTooLarge, domain.ErrorPayload{
			Error: fmt.Sprintf("file exceeds %d bytes", s.cfg.MaxUploadBytes),
		})
	}

	form.filename = fh.Filename
	form.data = data
	return form, nil
}

func (s *Server) experiences(c echo.Context) error {
	var req companyRequest
	if err := c.Bind(&req); err != nil {
		return badRequest()
	}
	if strings.TrimSpace(req.Company) == "" {
		return missingField("company")
	}

	items, err := s.ports.Career.Experiences(c.Request().Context(), req.Company)
	if err != nil {
		return c.JSON(http.StatusOK, domain.PayloadFor(err))
	}
	if items == nil {
		items = []domain.Experience{}
	}
	return c.JSON(http.StatusOK, items)
}

func (s *Server) ingest(c echo.Context) error {
	if s.ports.Ingest == nil {
		return c.JSON(http.StatusServiceUnavailable, domain.ErrorPayload{Error: "ingestion is not available"})
	}
	if s.cfg.CorpusDir == "" {
		return c.JSON(http.StatusServiceUnavailable, domain.ErrorPayload{Error: "no corpus directory configured"})
	}

	report, err := s.ports.Ingest.Ingest(c.Request().Context(), s.cfg.CorpusDir)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, domain.ErrCorpusNotFound):
			status = http.StatusNotFound
		case errors.Is(err, domain.ErrEmptyCorpus):
			status = http.StatusUnprocessableEntity
		}
		return c.JSON(status, domain.PayloadFor(err))
	}
	return c.JSON(http.StatusOK, report)
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}

func (s *Server) ready(c echo.Context) error {
	if s.ports.Engine == nil {
		return c.JSON(http.StatusServiceUnavailable, domain.ErrorPayload{Error: "engine not configured"})
	}
	status := s.ports.Engine.Status(c.Request().Context())
	code := http.StatusOK
	if status.State != domain.EngineReady {
		code = http.StatusServiceUnavailable
	}
	return c.JSON(code, status)
}

func badRequest() error {
	return echo.NewHTTPError(http.StatusBadRequest, domain.ErrorPayload{Error: "invalid request body"})
}

func missingField(field string) error {
	return echo.NewHTTPError(http.StatusUnprocessableEntity, domain.ErrorPayload{Error: field + " is required"})
}

// firstMissing returns the alphabetically first blank field name, or "".
func firstMissing(fields map[string]string) string {
	missing := ""
	for name, value := range fields {
		if strings.TrimSpace(value) == "" && (missing == "" || name < missing) {
			missing = name
		}
	}
	return missing
}
