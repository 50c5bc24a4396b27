package services

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/prepkit/internal/core/domain"
	"github.com/custodia-labs/prepkit/internal/core/ports/driving"
)

// Ensure ResumeService implements the interface.
var _ driving.ResumeDecoder = (*ResumeService)(nil)

// PDFExtractor extracts the text layer of a PDF.
type PDFExtractor interface {
	Text(ctx context.Context, data []byte) (string, error)
}

// ResumeService turns uploaded resume files into plain text.
type ResumeService struct {
	pdf PDFExtractor
}

// NewResumeService creates a decoder. A nil extractor rejects PDF uploads.
func NewResumeService(pdf PDFExtractor) *ResumeService {
	return &ResumeService{pdf: pdf}
}

// Decode returns the text of data. Files named *.pdf go through the PDF
// extractor; everything else is read as UTF-8 with invalid bytes dropped.
func (s *ResumeService) Decode(ctx context.Context, filename string, data []byte) (string, error) {
	var text string
	if strings.EqualFold(filepath.Ext(filename), ".pdf") {
		if s.pdf == nil {
			return "", &domain.DecodeError{Format: "PDF", Err: domain.ErrUnsupportedType}
		}
		out, err := s.pdf.Text(ctx, data)
		if err != nil {
			return "", &domain.DecodeError{Format: "PDF", Err: err}
		}
		text = out
	} else {
		text = strings.ToValidUTF8(string(data), "")
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", domain.ErrNoText
	}
	return text, nil
}
