package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/prepkit/internal/core/domain"
	"github.com/custodia-labs/prepkit/internal/core/ports/driven"
	"github.com/custodia-labs/prepkit/internal/core/ports/driving"
)

// Ensure PromptService implements the interface.
var _ driving.PromptService = (*PromptService)(nil)

// PromptService inspects and resets prompt templates.
type PromptService struct {
	store    driven.PromptStore
	defaults map[string]string
}

// NewPromptService creates a prompt service over store.
func NewPromptService(store driven.PromptStore) *PromptService {
	return &PromptService{store: store, defaults: driven.DefaultPrompts()}
}

// List returns every well-known prompt.
func (s *PromptService) List() ([]driving.PromptInfo, error) {
	writer, _ := s.store.(driven.PromptWriter)

	infos := make([]driving.PromptInfo, 0, len(driven.PromptNames()))
	for _, name := range driven.PromptNames() {
		content, err := s.store.Load(name)
		if err != nil {
			return nil, fmt.Errorf("load prompt %s: %w", name, err)
		}
		info := driving.PromptInfo{
			Name:       name,
			Customised: strings.TrimSpace(content) != strings.TrimSpace(s.defaults[name]),
		}
		if writer != nil {
			info.Path = writer.Path(name)
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// Show returns the active template for name.
func (s *PromptService) Show(name string) (string, error) {
	if _, ok := s.defaults[name]; !ok {
		return "", fmt.Errorf("%w: unknown prompt %q", domain.ErrNotFound, name)
	}
	return s.store.Load(name)
}

// Reset restores the default template for name.
func (s *PromptService) Reset(name string) error {
	def, ok := s.defaults[name]
	if !ok {
		return fmt.Errorf("%w: unknown prompt %q", domain.ErrNotFound, name)
	}
	writer, ok := s.store.(driven.PromptWriter)
	if !ok {
		return errors.New("prompt store is read-only")
	}
	if err := writer.Write(name, def); err != nil {
		return fmt.Errorf("reset prompt %s: %w", name, err)
	}
	s.store.Reload()
	return nil
}
