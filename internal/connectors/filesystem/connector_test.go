package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/prepkit/internal/core/domain"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNew(t *testing.T) {
	t.Run("normalises extensions", func(t *testing.T) {
		c := New("/tmp/kb", "txt", ".MD", " ")
		assert.Equal(t, "/tmp/kb", c.Root())
		assert.True(t, c.extensions[".txt"])
		assert.True(t, c.extensions[".md"])
		assert.Len(t, c.extensions, 2)
	})

	t.Run("no extensions matches everything", func(t *testing.T) {
		c := New("/tmp/kb")
		assert.True(t, c.matches("a.pdf"))
		assert.True(t, c.matches("README"))
	})
}

func TestConnector_Validate(t *testing.T) {
	t.Run("missing directory", func(t *testing.T) {
		err := New("/non/existent/path").Validate(context.Background())
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrCorpusNotFound)
		assert.Contains(t, err.Error(), "does not exist")
	})

	t.Run("file instead of directory", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "file.txt", "x")
		err := New(path).Validate(context.Background())
		assert.ErrorIs(t, err, domain.ErrCorpusNotFound)
	})

	t.Run("directory", func(t *testing.T) {
		assert.NoError(t, New(t.TempDir()).Validate(context.Background()))
	})
}

func TestConnector_Collect(t *testing.T) {
	t.Run("reads matching files in order", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "b.txt", "beta")
		writeFile(t, dir, "a.txt", "alpha")
		writeFile(t, dir, "notes.md", "# Notes")
		writeFile(t, dir, "sub/c.txt", "gamma")

		docs, skipped, err := New(dir, ".txt").Collect(context.Background())
		require.NoError(t, err)
		assert.Empty(t, skipped)
		require.Len(t, docs, 3)

		assert.Equal(t, "a.txt", docs[0].Metadata["source"])
		assert.Equal(t, "b.txt", docs[1].Metadata["source"])
		assert.Equal(t, "sub/c.txt", docs[2].Metadata["source"])
		assert.Equal(t, []byte("alpha"), docs[0].Content)
		assert.Equal(t, "text/plain", docs[0].MIMEType)
		assert.Equal(t, "txt", docs[0].Metadata["extension"])
	})

	t.Run("skips hidden files and directories", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "visible.txt", "visible")
		writeFile(t, dir, ".hidden.txt", "hidden")
		writeFile(t, dir, ".git/config.txt", "hidden")

		docs, _, err := New(dir).Collect(context.Background())
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Contains(t, docs[0].URI, "visible.txt")
	})

	t.Run("empty directory", func(t *testing.T) {
		docs, skipped, err := New(t.TempDir()).Collect(context.Background())
		require.NoError(t, err)
		assert.Empty(t, docs)
		assert.Empty(t, skipped)
	})

	t.Run("missing directory is fatal", func(t *testing.T) {
		_, _, err := New("/non/existent/path").Collect(context.Background())
		assert.ErrorIs(t, err, domain.ErrCorpusNotFound)
	})

	t.Run("cancelled context", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "a.txt", "alpha")
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, _, err := New(dir).Collect(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestConnector_Watch(t *testing.T) {
	dir := t.TempDir()
	c := New(dir, ".txt")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := c.Watch(ctx)
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Watch(ctx)
	assert.Error(t, err, "second watch should fail")

	go func() {
		time.Sleep(50 * time.Millisecond)
		_ = os.WriteFile(filepath.Join(dir, "ignored.md"), []byte("x"), 0o644)
		_ = os.WriteFile(filepath.Join(dir, "new-file.txt"), []byte("content"), 0o644)
	}()

	select {
	case ev := <-events:
		assert.Contains(t, ev.Path, "new-file.txt")
		assert.False(t, ev.Removed)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for file change event")
	}
}

func TestConnector_Close(t *testing.T) {
	c := New(t.TempDir())
	assert.NoError(t, c.Close())
	assert.NoError(t, c.Close())

	_, err := c.Watch(context.Background())
	assert.Error(t, err)
}

func TestHandleFsEvent(t *testing.T) {
	dir := t.TempDir()
	c := New(dir, ".txt")
	file := writeFile(t, dir, "a.txt", "x")
	hidden := writeFile(t, dir, ".a.txt", "x")
	sub := filepath.Join(dir, "sub.txt")
	require.NoError(t, os.Mkdir(sub, 0o755))

	tests := []struct {
		name    string
		event   fsnotify.Event
		want    bool
		removed bool
	}{
		{"create file", fsnotify.Event{Name: file, Op: fsnotify.Create}, true, false},
		{"write file", fsnotify.Event{Name: file, Op: fsnotify.Write}, true, false},
		{"remove file", fsnotify.Event{Name: filepath.Join(dir, "gone.txt"), Op: fsnotify.Remove}, true, true},
		{"rename file", fsnotify.Event{Name: filepath.Join(dir, "old.txt"), Op: fsnotify.Rename}, true, true},
		{"chmod ignored", fsnotify.Event{Name: file, Op: fsnotify.Chmod}, false, false},
		{"directory ignored", fsnotify.Event{Name: sub, Op: fsnotify.Create}, false, false},
		{"hidden ignored", fsnotify.Event{Name: hidden, Op: fsnotify.Write}, false, false},
		{"extension ignored", fsnotify.Event{Name: filepath.Join(dir, "x.md"), Op: fsnotify.Remove}, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, ok := c.handleFsEvent(tt.event)
			assert.Equal(t, tt.want, ok)
			if ok {
				assert.Equal(t, tt.removed, ev.Removed)
			}
		})
	}
}

func TestDetectMIMEType(t *testing.T) {
	tests := []struct {
		filename     string
		expectedMIME string
	}{
		{"file", "text/plain"},
		{"doc.txt", "text/plain"},
		{"doc.md", "text/markdown"},
		{"doc.markdown", "text/markdown"},
		{"page.html", "text/html"},
		{"doc.pdf", "application/pdf"},
		{"FILE.MD", "text/markdown"},
		{"file.zzzzunknown", "application/octet-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.expectedMIME, detectMIMEType(tt.filename))
		})
	}
}

func TestIsHiddenPath(t *testing.T) {
	assert.True(t, isHiddenPath(".hidden"))
	assert.True(t, isHiddenPath("dir/.git/config"))
	assert.False(t, isHiddenPath("dir/file.txt"))
	assert.False(t, isHiddenPath("./file.txt"))
}
