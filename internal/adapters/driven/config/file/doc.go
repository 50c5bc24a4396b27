// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data under the prepkit home directory.
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage
//   - PromptStore: editable prompt templates with hot reload
package file
