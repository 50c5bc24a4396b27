package driving

// PromptInfo describes one prompt template.
type PromptInfo struct {
	Name string `json:"name"`

	// Path is the override file location, empty when prompts are not file-backed.
	Path string `json:"path,omitempty"`

	// Customised is true when the active template differs from the default.
	Customised bool `json:"customised"`
}

// PromptService lets users inspect and reset prompt templates.
type PromptService interface {
	// List returns every well-known prompt.
	List() ([]PromptInfo, error)

	// Show returns the active template for name.
	Show(name string) (string, error)

	// Reset restores the default template for name.
	Reset(name string) error
}
