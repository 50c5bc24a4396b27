package services

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/prepkit/internal/core/ports/driven"
)

// MaxResumeRunes caps the resume text inserted into a prompt.
const MaxResumeRunes = 4000

// PromptBuilder renders task prompts from the templates of a PromptStore.
// Context strings are passed in already joined.
type PromptBuilder struct {
	store    driven.PromptStore
	defaults map[string]string
}

// NewPromptBuilder creates a builder. A nil store uses the built-in templates.
func NewPromptBuilder(store driven.PromptStore) *PromptBuilder {
	return &PromptBuilder{store: store, defaults: driven.DefaultPrompts()}
}

// SetPromptStore implements driven.PromptStoreAware.
func (b *PromptBuilder) SetPromptStore(store driven.PromptStore) {
	b.store = store
}

// Chat renders the free-form answer prompt.
func (b *PromptBuilder) Chat(context, question string) (string, error) {
	return b.render(driven.PromptChat, context, question)
}

// Roadmap renders the roadmap prompt.
func (b *PromptBuilder) Roadmap(company, role, context string) (string, error) {
	return b.render(driven.PromptRoadmap, company, role, context)
}

// Skills renders the skills gap prompt. The resume is truncated first.
func (b *PromptBuilder) Skills(company, role, context, resume string) (string, error) {
	return b.render(driven.PromptSkills, company, role, context, TruncateRunes(resume, MaxResumeRunes))
}

// ATS renders the ATS report prompt. The resume is truncated first.
func (b *PromptBuilder) ATS(company, role, context, resume string) (string, error) {
	return b.render(driven.PromptATS, company, role, context, TruncateRunes(resume, MaxResumeRunes))
}

// Experiences renders the interview experiences prompt.
func (b *PromptBuilder) Experiences(company, context string) (string, error) {
	return b.render(driven.PromptExperiences, company, context)
}

func (b *PromptBuilder) render(name string, args ...any) (string, error) {
	tmpl, err := b.template(name)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(tmpl, args...), nil
}

func (b *PromptBuilder) template(name string) (string, error) {
	if b.store != nil {
		tmpl, err := b.store.Load(name)
		if err != nil {
			return "", fmt.Errorf("load prompt %s: %w", name, err)
		}
		if strings.TrimSpace(tmpl) != "" {
			return tmpl, nil
		}
	}
	tmpl, ok := b.defaults[name]
	if !ok {
		return "", fmt.Errorf("unknown prompt %q", name)
	}
	return tmpl, nil
}

// TruncateRunes returns s cut to at most n runes.
func TruncateRunes(s string, n int) string {
	if n < 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
