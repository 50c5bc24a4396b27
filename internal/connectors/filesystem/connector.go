// Package filesystem reads a corpus of documents from a local directory.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/prepkit/internal/core/domain"
)

// SkipError reports a single corpus file that could not be read.
// It is not fatal to a sync.
type SkipError struct {
	Path string
	Err  error
}

func (e *SkipError) Error() string {
	return fmt.Sprintf("skip %s: %v", e.Path, e.Err)
}

func (e *SkipError) Unwrap() error { return e.Err }

// Event is a change observed under the corpus root.
type Event struct {
	Path    string
	Removed bool
}

// Connector walks a corpus directory. Hidden files and directories are
// ignored. When extensions are given, only files with those extensions are read.
type Connector struct {
	rootPath   string
	extensions map[string]bool

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	closed  bool
}

// New creates a connector rooted at rootPath.
// Extensions are matched case-insensitively and may be given with or without the dot.
func New(rootPath string, extensions ...string) *Connector {
	c := &Connector{rootPath: rootPath, extensions: make(map[string]bool)}
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		c.extensions[ext] = true
	}
	return c
}

// Root returns the corpus root directory.
func (c *Connector) Root() string {
	return c.rootPath
}

// Validate checks that the root exists and is a directory.
func (c *Connector) Validate(_ context.Context) error {
	info, err := os.Stat(c.rootPath)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s does not exist", domain.ErrCorpusNotFound, c.rootPath)
	}
	if err != nil {
		return fmt.Errorf("stat %s: %w", c.rootPath, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", domain.ErrCorpusNotFound, c.rootPath)
	}
	return nil
}

// FullSync streams every matching file in lexical path order.
// Unreadable files are reported as *SkipError on the error channel; any
// other error ends the sync. Both channels are closed when the walk finishes.
func (c *Connector) FullSync(ctx context.Context) (<-chan domain.RawDocument, <-chan error) {
	docs := make(chan domain.RawDocument)
	errs := make(chan error, 1)

	go func() {
		defer close(docs)
		defer close(errs)

		if err := c.Validate(ctx); err != nil {
			errs <- err
			return
		}

		walkErr := filepath.WalkDir(c.rootPath, func(path string, d fs.DirEntry, err error) error {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if err != nil {
				return c.sendErr(ctx, errs, &SkipError{Path: path, Err: err})
			}
			if path != c.rootPath && isHidden(d.Name()) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() || !c.matches(path) {
				return nil
			}

			doc, err := c.read(path)
			if err != nil {
				return c.sendErr(ctx, errs, &SkipError{Path: path, Err: err})
			}

			select {
			case docs <- doc:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		if walkErr != nil && !errors.Is(walkErr, context.Canceled) {
			select {
			case errs <- walkErr:
			default:
			}
		}
	}()

	return docs, errs
}

// Collect runs FullSync to completion. Skipped files are returned separately
// from the first fatal error.
func (c *Connector) Collect(ctx context.Context) ([]domain.RawDocument, []*SkipError, error) {
	docsCh, errsCh := c.FullSync(ctx)

	var (
		docs    []domain.RawDocument
		skipped []*SkipError
		fatal   error
		wg      sync.WaitGroup
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		for err := range errsCh {
			var skip *SkipError
			if errors.As(err, &skip) {
				skipped = append(skipped, skip)
			} else if fatal == nil {
				fatal = err
			}
		}
	}()
	for doc := range docsCh {
		docs = append(docs, doc)
	}
	wg.Wait()

	if fatal == nil {
		fatal = ctx.Err()
	}
	return docs, skipped, fatal
}

// Watch reports changes to matching files until ctx is cancelled or the
// connector is closed. New subdirectories are watched as they appear.
func (c *Connector) Watch(ctx context.Context) (<-chan Event, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, errors.New("connector closed")
	}
	if c.watcher != nil {
		return nil, errors.New("already watching")
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := c.addTree(w, c.rootPath); err != nil {
		_ = w.Close()
		return nil, err
	}
	c.watcher = w

	events := make(chan Event)
	go func() {
		defer close(events)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Has(fsnotify.Create) {
					if info, err := os.Stat(ev.Name); err == nil && info.IsDir() && !isHidden(filepath.Base(ev.Name)) {
						_ = c.addTree(w, ev.Name)
					}
				}
				change, ok := c.handleFsEvent(ev)
				if !ok {
					continue
				}
				select {
				case events <- change:
				case <-ctx.Done():
					return
				}
			case _, ok := <-w.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return events, nil
}

// Close stops any active watch. It is safe to call more than once.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	if c.watcher == nil {
		return nil
	}
	err := c.watcher.Close()
	c.watcher = nil
	return err
}

func (c *Connector) handleFsEvent(ev fsnotify.Event) (Event, bool) {
	if isHiddenPath(c.rel(ev.Name)) || !c.matches(ev.Name) {
		return Event{}, false
	}
	switch {
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		return Event{Path: ev.Name, Removed: true}, true
	case ev.Has(fsnotify.Create), ev.Has(fsnotify.Write):
		info, err := os.Stat(ev.Name)
		if err != nil || info.IsDir() {
			return Event{}, false
		}
		return Event{Path: ev.Name}, true
	}
	return Event{}, false
}

func (c *Connector) addTree(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != c.rootPath && isHidden(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

func (c *Connector) read(path string) (domain.RawDocument, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return domain.RawDocument{}, err
	}

	ext := filepath.Ext(path)
	return domain.RawDocument{
		URI:      path,
		MIMEType: detectMIMEType(path),
		Content:  content,
		Metadata: map[string]any{
			"source":    c.rel(path),
			"filename":  filepath.Base(path),
			"extension": strings.TrimPrefix(strings.ToLower(ext), "."),
			"size":      len(content),
		},
	}, nil
}

func (c *Connector) matches(path string) bool {
	if len(c.extensions) == 0 {
		return true
	}
	return c.extensions[strings.ToLower(filepath.Ext(path))]
}

// rel returns path relative to the root with forward slashes.
func (c *Connector) rel(path string) string {
	r, err := filepath.Rel(c.rootPath, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(r)
}

func (c *Connector) sendErr(ctx context.Context, errs chan<- error, err error) error {
	select {
	case errs <- err:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// customMIMETypes covers extensions the mime package does not know everywhere.
var customMIMETypes = map[string]string{
	".md":       "text/markdown",
	".markdown": "text/markdown",
	".txt":      "text/plain",
	".text":     "text/plain",
	".log":      "text/plain",
	".csv":      "text/csv",
	".htm":      "text/html",
	".html":     "text/html",
	".pdf":      "application/pdf",
}

// detectMIMEType maps a file name to a MIME type without parameters.
// Files without an extension are treated as plain text.
func detectMIMEType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return "text/plain"
	}
	if mt, ok := customMIMETypes[ext]; ok {
		return mt
	}
	if mt := mime.TypeByExtension(ext); mt != "" {
		if i := strings.Index(mt, ";"); i >= 0 {
			mt = mt[:i]
		}
		return strings.TrimSpace(mt)
	}
	return "application/octet-stream"
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}

func isHiddenPath(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if isHidden(part) {
			return true
		}
	}
	return false
}
