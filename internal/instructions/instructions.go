// Package instructions loads the system prompt seeded into every session.
package instructions

import (
	"os"
	"strings"
)

// DefaultPath is where the deployment drops the prompt file.
const DefaultPath = "instructions.txt"

// Load reads the system instructions from path. An unreadable file degrades
// to empty instructions with the error returned as a warning: the chat must
// stay usable for testing even without a prompt, so callers report the error
// but keep going.
func Load(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
