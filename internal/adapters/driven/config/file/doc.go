// Package file provides file-based implementations of driven port interfaces.
//
// Adapters:
//   - ConfigStore: TOML configuration under the bookbot config directory
//   - PromptStore: user-editable prompt templates with embedded defaults
package file
