package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/prepkit/internal/core/ports/driven"
	"github.com/custodia-labs/prepkit/internal/logger"
)

// Ensure PromptStore implements the interfaces.
var (
	_ driven.PromptStore  = (*PromptStore)(nil)
	_ driven.PromptWriter = (*PromptStore)(nil)
)

// promptExt is the file extension of prompt templates.
const promptExt = ".txt"

// reloadDebounce collapses the burst of events an editor save produces.
const reloadDebounce = 100 * time.Millisecond

// PromptStore loads LLM prompts from user-editable files on disk.
// Prompts are loaded from a configurable directory with fallback to built-in defaults.
//
// The store uses lazy initialisation - files are only created when first accessed,
// not in the constructor. This makes testing easier and avoids unexpected I/O.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	defaults  map[string]string
	cache     map[string]string
	initOnce  sync.Once
	initErr   error
}

// NewPromptStore creates a new file-based prompt store.
// If promptDir is empty, defaults to ~/.prepkit/prompts/.
//
// The constructor does not perform any I/O - directory creation and
// file writes happen lazily on first Load() call.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		promptDir = filepath.Join(home, ".prepkit", "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
		defaults:  driven.DefaultPrompts(),
		cache:     make(map[string]string),
	}, nil
}

// Load returns the prompt template for the given name.
// On first call, initialises the prompt directory and creates default files.
// Returns cached value if available, otherwise loads from file.
// Falls back to the built-in default if the file doesn't exist.
func (s *PromptStore) Load(name string) (string, error) {
	def, known := s.defaults[name]
	if !known {
		return "", fmt.Errorf("unknown prompt %q", name)
	}

	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		return def, nil
	}

	s.mu.RLock()
	if prompt, ok := s.cache[name]; ok {
		s.mu.RUnlock()
		return prompt, nil
	}
	s.mu.RUnlock()

	prompt, err := s.loadFromFile(name)
	if err != nil || prompt == "" {
		prompt = def
	}

	// Another goroutine may have loaded it first; keep theirs.
	s.mu.Lock()
	if cached, ok := s.cache[name]; ok {
		prompt = cached
	} else {
		s.cache[name] = prompt
	}
	s.mu.Unlock()

	return prompt, nil
}

// Reload clears the prompt cache, forcing fresh loads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Write replaces the stored template for name and drops it from the cache.
func (s *PromptStore) Write(name, content string) error {
	if _, ok := s.defaults[name]; !ok {
		return fmt.Errorf("unknown prompt %q", name)
	}
	if err := os.MkdirAll(s.promptDir, 0700); err != nil {
		return fmt.Errorf("create prompt directory: %w", err)
	}
	if err := os.WriteFile(s.Path(name), []byte(content), 0600); err != nil {
		return fmt.Errorf("write prompt %q: %w", name, err)
	}

	s.mu.Lock()
	delete(s.cache, name)
	s.mu.Unlock()
	return nil
}

// Path returns the file that holds the template for name.
func (s *PromptStore) Path(name string) string {
	return filepath.Join(s.promptDir, name+promptExt)
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

// Watch reloads the cache whenever a prompt file changes, until ctx is done.
// It returns once the watcher is registered.
func (s *PromptStore) Watch(ctx context.Context) error {
	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		return s.initErr
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create prompt watcher: %w", err)
	}
	if err := w.Add(s.promptDir); err != nil {
		w.Close()
		return fmt.Errorf("watch %s: %w", s.promptDir, err)
	}

	go s.watchLoop(ctx, w)
	return nil
}

func (s *PromptStore) watchLoop(ctx context.Context, w *fsnotify.Watcher) {
	defer w.Close()

	var timer *time.Timer
	reload := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return

		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if !strings.HasSuffix(ev.Name, promptExt) || ev.Op == fsnotify.Chmod {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(reloadDebounce, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})

		case <-reload:
			s.Reload()
			logger.Info("prompts reloaded from %s", s.promptDir)

		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			logger.Warn("prompt watcher: %v", err)
		}
	}
}

// initialise creates the prompt directory and default files.
// Called once via sync.Once on first Load().
func (s *PromptStore) initialise() {
	if err := os.MkdirAll(s.promptDir, 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	// Only missing files are written; user edits survive upgrades.
	for name, content := range s.defaults {
		path := s.Path(name)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := os.WriteFile(path, []byte(content), 0600); err != nil {
				s.initErr = fmt.Errorf("create default prompt %q: %w", name, err)
				return
			}
		}
	}

	if err := s.createReadme(); err != nil {
		s.initErr = err
	}
}

// loadFromFile reads a prompt from disk.
func (s *PromptStore) loadFromFile(name string) (string, error) {
	data, err := os.ReadFile(s.Path(name))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// createReadme writes a README file explaining the prompts directory.
func (s *PromptStore) createReadme() error {
	path := filepath.Join(s.promptDir, "README.md")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil // Already exists or stat error (ignore)
	}

	content := `# prepkit prompts

This directory holds the templates prepkit sends to the LLM.

## Files

- ` + "`chat.txt`" + ` - free-form answers. %[1]s context, %[2]s question
- ` + "`roadmap.txt`" + ` - roadmap JSON. %[1]s company, %[2]s role, %[3]s context
- ` + "`skills.txt`" + ` - skills gap JSON. %[1]s company, %[2]s role, %[3]s context, %[4]s resume
- ` + "`ats.txt`" + ` - ATS report JSON. %[1]s company, %[2]s role, %[3]s context, %[4]s resume
- ` + "`experiences.txt`" + ` - interview experiences JSON. %[1]s company, %[2]s context

## Customisation

Edit any file to change the model's instructions. A running server picks up
changes automatically. Run ` + "`prepkit prompts reset NAME`" + ` to restore a default.

Placeholders use explicit indexes, so they may appear in any order or more than once.
The JSON shapes requested by the default prompts are what the response parser expects.
`
	return os.WriteFile(path, []byte(content), 0600)
}
