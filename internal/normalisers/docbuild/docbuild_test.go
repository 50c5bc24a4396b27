package docbuild

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/prepkit/internal/core/domain"
)

func TestNew(t *testing.T) {
	raw := &domain.RawDocument{
		URI:      "/kb/google_sde.txt",
		MIMEType: "text/plain",
		Metadata: map[string]any{"source": "google_sde.txt", "size": 3},
	}

	doc := New(raw, "Google SDE", "abc", "text")
	assert.NotEmpty(t, doc.ID)
	assert.Equal(t, "google_sde.txt", doc.Source)
	assert.Equal(t, "abc", doc.Content)
	assert.Equal(t, "text/plain", doc.Metadata["mime_type"])
	assert.Equal(t, "text", doc.Metadata["format"])
	assert.False(t, doc.LoadedAt.IsZero())
	_, leaked := raw.Metadata["mime_type"]
	assert.False(t, leaked, "raw metadata must not be modified")
}

func TestSourceName(t *testing.T) {
	assert.Equal(t, "a.txt", SourceName(&domain.RawDocument{URI: "/x/a.txt"}))
	assert.Equal(t, "sub/a.txt", SourceName(&domain.RawDocument{URI: "/x/sub/a.txt", Metadata: map[string]any{"source": "sub/a.txt"}}))
}

func TestTitleFromURI(t *testing.T) {
	assert.Equal(t, "amazon interview notes", TitleFromURI("/kb/amazon_interview-notes.txt"))
	assert.Equal(t, "README", TitleFromURI("README"))
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "a\nb\nc", CleanText([]byte("\ufeffa\r\nb\rc")))
	assert.Equal(t, "ok", CleanText([]byte{'o', 0xff, 'k'}))
}

func TestCopyMetadata(t *testing.T) {
	assert.Nil(t, CopyMetadata(nil))
	src := map[string]any{"k": "v"}
	dst := CopyMetadata(src)
	dst["k"] = "changed"
	assert.Equal(t, "v", src["k"])
}
