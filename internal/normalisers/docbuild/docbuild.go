// Package docbuild holds the document construction shared by normalisers.
package docbuild

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/prepkit/internal/core/domain"
)

// New builds a normalised document from raw. format is recorded in metadata
// when non-empty.
func New(raw *domain.RawDocument, title, content, format string) domain.Document {
	meta := CopyMetadata(raw.Metadata)
	if meta == nil {
		meta = make(map[string]any)
	}
	meta["mime_type"] = raw.MIMEType
	if format != "" {
		meta["format"] = format
	}

	return domain.Document{
		ID:       uuid.New().String(),
		Source:   SourceName(raw),
		URI:      raw.URI,
		Title:    title,
		Content:  content,
		Metadata: meta,
		LoadedAt: time.Now(),
	}
}

// SourceName prefers the connector's relative "source" path and falls back
// to the file name.
func SourceName(raw *domain.RawDocument) string {
	if s, ok := raw.Metadata["source"].(string); ok && s != "" {
		return s
	}
	return filepath.Base(raw.URI)
}

// TitleFromURI derives a human-readable title from a file name.
func TitleFromURI(uri string) string {
	filename := filepath.Base(uri)
	if ext := filepath.Ext(filename); ext != "" {
		filename = strings.TrimSuffix(filename, ext)
	}
	filename = strings.ReplaceAll(filename, "_", " ")
	filename = strings.ReplaceAll(filename, "-", " ")
	return filename
}

// CleanText drops invalid UTF-8, a leading byte order mark and carriage returns.
func CleanText(b []byte) string {
	s := strings.ToValidUTF8(string(b), "")
	s = strings.TrimPrefix(s, "\ufeff")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// CopyMetadata creates a shallow copy of metadata.
func CopyMetadata(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
