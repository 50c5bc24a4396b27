package input

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/prepkit/internal/adapters/driving/tui/styles"
)

func TestNewField(t *testing.T) {
	f := NewField(styles.DefaultStyles(), "Company", "e.g. Acme")

	require.NotNil(t, f)
	assert.Equal(t, "", f.Value())
	assert.Equal(t, "Company", f.Label())
	assert.False(t, f.Focused())
}

func TestNewField_NilStyles(t *testing.T) {
	f := NewField(nil, "Ask", "")

	require.NotNil(t, f)
	assert.NotNil(t, f.styles)
}

func TestField_Init(t *testing.T) {
	f := NewField(nil, "Ask", "")

	assert.NotNil(t, f.Init())
}

func TestField_UpdateWhenFocused(t *testing.T) {
	f := NewField(nil, "Ask", "")
	f.Focus()

	updated, _ := f.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'h', 'i'}})

	assert.Equal(t, f, updated)
	assert.Equal(t, "hi", f.Value())
}

func TestField_UpdateWhenBlurred(t *testing.T) {
	f := NewField(nil, "Ask", "")

	f.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})

	assert.Equal(t, "", f.Value())
}

func TestField_View(t *testing.T) {
	f := NewField(nil, "Role", "")

	assert.Contains(t, f.View(), "Role: ")
}

func TestField_FocusBlur(t *testing.T) {
	f := NewField(nil, "Ask", "")

	f.Focus()
	assert.True(t, f.Focused())

	f.Blur()
	assert.False(t, f.Focused())
}

func TestField_SetValueAndReset(t *testing.T) {
	f := NewField(nil, "Ask", "")

	f.SetValue("system design")
	assert.Equal(t, "system design", f.Value())

	f.Reset()
	assert.Equal(t, "", f.Value())
}

func TestField_SetWidth(t *testing.T) {
	f := NewField(nil, "Ask", "")

	f.SetWidth(100)
	assert.Equal(t, 100, f.Width())
	assert.Equal(t, 89, f.textinput.Width)

	f.SetWidth(10)
	assert.Equal(t, 20, f.textinput.Width)
}
