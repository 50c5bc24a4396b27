package plaintext

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/prepkit/internal/core/domain"
	"github.com/custodia-labs/prepkit/internal/core/ports/driven"
)

func TestSupportedMIMETypes(t *testing.T) {
	mimeTypes := New().SupportedMIMETypes()
	assert.Contains(t, mimeTypes, "text/plain")
	assert.Contains(t, mimeTypes, "text/csv")
}

func TestPriority(t *testing.T) {
	assert.Equal(t, 5, New().Priority())
}

func TestNormalise_Success(t *testing.T) {
	raw := &domain.RawDocument{
		URI:      "/kb/amazon_sde.txt",
		MIMEType: "text/plain",
		Content:  []byte("Round 1: OA.\r\nRound 2: DSA."),
		Metadata: map[string]any{"source": "amazon_sde.txt"},
	}

	result, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)
	require.NotNil(t, result)

	doc := result.Document
	assert.NotEmpty(t, doc.ID)
	assert.Equal(t, "amazon_sde.txt", doc.Source)
	assert.Equal(t, raw.URI, doc.URI)
	assert.Equal(t, "amazon sde", doc.Title)
	assert.Equal(t, "Round 1: OA.\nRound 2: DSA.", doc.Content)
	assert.Equal(t, "text/plain", doc.Metadata["mime_type"])
}

func TestNormalise_NilDocument(t *testing.T) {
	result, err := New().Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, result)
}

func TestNormalise_EmptyContent(t *testing.T) {
	result, err := New().Normalise(context.Background(), &domain.RawDocument{URI: "/kb/empty.txt"})
	require.NoError(t, err)
	assert.Empty(t, result.Document.Content)
}

func TestNormalise_TitleFromMetadata(t *testing.T) {
	raw := &domain.RawDocument{
		URI:      "/kb/x.txt",
		Metadata: map[string]any{"title": "Flipkart SDE-1"},
	}
	result, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, "Flipkart SDE-1", result.Document.Title)
}

func TestNormalise_UnicodeContent(t *testing.T) {
	content := "Préparation d'entretien ✓ 面试"
	result, err := New().Normalise(context.Background(), &domain.RawDocument{URI: "/kb/u.txt", Content: []byte(content)})
	require.NoError(t, err)
	assert.Equal(t, content, result.Document.Content)
}

func TestNormalise_LargeContent(t *testing.T) {
	content := strings.Repeat("interview prep\n", 100000)
	result, err := New().Normalise(context.Background(), &domain.RawDocument{URI: "/kb/big.txt", Content: []byte(content)})
	require.NoError(t, err)
	assert.Len(t, result.Document.Content, len(content))
}

func TestNormalise_Tidy(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"trailing blanks", "Round 1  \nRound 2\t", "Round 1\nRound 2"},
		{"blank run", "OA\n\n\n\n\nHR", "OA\n\nHR"},
		{"bom and crlf", "\ufeffA\r\n\r\n\r\nB", "A\n\nB"},
		{"single blank kept", "A\n\nB", "A\n\nB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := New().Normalise(context.Background(), &domain.RawDocument{URI: "/kb/a.txt", Content: []byte(tt.in)})
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.Document.Content)
		})
	}
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.Normaliser = (*Normaliser)(nil)
}
