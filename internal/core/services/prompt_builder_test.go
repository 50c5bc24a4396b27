package services

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/prepkit/internal/core/ports/driven"
)

func TestPromptBuilder_Defaults(t *testing.T) {
	b := NewPromptBuilder(nil)

	prompt, err := b.Chat("ctx one\n\nctx two", "what rounds?")
	require.NoError(t, err)
	assert.Contains(t, prompt, "Context:\nctx one\n\nctx two\n\nQuestion: what rounds?")

	prompt, err = b.Experiences("Acme", "some context")
	require.NoError(t, err)
	assert.Contains(t, prompt, "experiences for 'Acme'")
	assert.Contains(t, prompt, "some context")
	assert.NotContains(t, prompt, "%!")
}

func TestPromptBuilder_StructuredTemplates(t *testing.T) {
	b := NewPromptBuilder(nil)

	tests := []struct {
		name   string
		render func() (string, error)
		keys   []string
	}{
		{"roadmap", func() (string, error) { return b.Roadmap("Acme", "SWE", "ctx") }, []string{`"title"`, `"status"`, `"date"`, `"description"`}},
		{"skills", func() (string, error) { return b.Skills("Acme", "SWE", "ctx", "resume") }, []string{`"present_skills"`, `"missing_skills"`, `"recommendations"`}},
		{"ats", func() (string, error) { return b.ATS("Acme", "SWE", "ctx", "resume") }, []string{`"ats_score"`, `"missing_keywords"`, `"formatting_issues"`, `"tailored_suggestions"`}},
		{"experiences", func() (string, error) { return b.Experiences("Acme", "ctx") }, []string{`"candidate_profile"`, `"rounds"`, `"questions_asked"`, `"verdict"`, `"tips"`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prompt, err := tt.render()

			require.NoError(t, err)
			assert.Contains(t, prompt, "Return ONLY")
			assert.Contains(t, prompt, "markdown code fences")
			for _, k := range tt.keys {
				assert.Contains(t, prompt, k)
			}
			assert.NotContains(t, prompt, "%!")
		})
	}
}

func TestPromptBuilder_ResumeTruncated(t *testing.T) {
	b := NewPromptBuilder(nil)
	resume := strings.Repeat("é", MaxResumeRunes) + "OVERFLOW"

	prompt, err := b.ATS("Acme", "SWE", "ctx", resume)

	require.NoError(t, err)
	assert.NotContains(t, prompt, "OVERFLOW")
	assert.Contains(t, prompt, strings.Repeat("é", MaxResumeRunes))
}

func TestPromptBuilder_StoreOverride(t *testing.T) {
	store := newMockPromptStore()
	store.prompts[driven.PromptChat] = "Q=%[2]s C=%[1]s"
	b := NewPromptBuilder(store)

	prompt, err := b.Chat("kb", "why")

	require.NoError(t, err)
	assert.Equal(t, "Q=why C=kb", prompt)
}

func TestPromptBuilder_EmptyOverrideUsesDefault(t *testing.T) {
	store := newMockPromptStore()
	store.prompts[driven.PromptChat] = "  \n"
	b := NewPromptBuilder(store)

	prompt, err := b.Chat("kb", "why")

	require.NoError(t, err)
	assert.Contains(t, prompt, "Question: why")
}

func TestPromptBuilder_StoreError(t *testing.T) {
	b := NewPromptBuilder(&failingPromptStore{})

	_, err := b.Roadmap("Acme", "SWE", "ctx")

	assert.ErrorContains(t, err, "load prompt roadmap")
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "héll", TruncateRunes("héllo", 4))
	assert.Equal(t, "héllo", TruncateRunes("héllo", 5))
	assert.Equal(t, "héllo", TruncateRunes("héllo", 50))
	assert.Equal(t, "", TruncateRunes("héllo", 0))
	assert.Equal(t, "", TruncateRunes("héllo", -1))
}

type failingPromptStore struct{}

func (failingPromptStore) Load(string) (string, error) { return "", errors.New("permission denied") }
func (failingPromptStore) Reload()                     {}
