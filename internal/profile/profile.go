// Package profile manages isolated tool profiles: one directory per
// profile under the config root, each holding a meta.yaml plus the
// tool's own state (auth, settings, transcripts).
package profile

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// ToolType identifies which CLI a profile isolates.
type ToolType string

const (
	ToolClaude ToolType = "claude"
	ToolCodex  ToolType = "codex"
)

// ParseToolType parses a user-supplied tool name, case-insensitively.
func ParseToolType(s string) (ToolType, error) {
	switch strings.ToLower(s) {
	case "claude":
		return ToolClaude, nil
	case "codex":
		return ToolCodex, nil
	}
	return "", fmt.Errorf("invalid tool type %q (valid: claude, codex)", s)
}

// Command returns the CLI binary name for the tool.
func (t ToolType) Command() string {
	return string(t)
}

// Profile is the metadata stored in a profile's meta.yaml.
type Profile struct {
	Name      string     `yaml:"name"`
	Tool      ToolType   `yaml:"tool"`
	CreatedAt time.Time  `yaml:"created_at"`
	LastUsed  *time.Time `yaml:"last_used,omitempty"`
}

// timeNow is swappable in tests.
var timeNow = func() time.Time { return time.Now().UTC() }

// New returns a fresh profile stamped with the current time.
func New(name string, tool ToolType) *Profile {
	return &Profile{Name: name, Tool: tool, CreatedAt: timeNow()}
}

const maxNameLength = 64

var namePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Names that collide with directories or subcommands under the config root.
var reservedNames = map[string]bool{
	"default":  true,
	"config":   true,
	"cache":    true,
	"profiles": true,
	"oauth":    true,
}

// ValidateName rejects names that cannot safely become directory names.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("profile name is empty")
	}
	if len(name) > maxNameLength {
		return fmt.Errorf("profile name %q exceeds %d characters", name, maxNameLength)
	}
	if !namePattern.MatchString(name) {
		return fmt.Errorf("profile name %q may only contain letters, digits, hyphens and underscores", name)
	}
	if reservedNames[strings.ToLower(name)] {
		return fmt.Errorf("profile name %q is reserved", name)
	}
	return nil
}

// FindSimilar suggests an existing profile whose name starts with the
// input, for "did you mean" hints. Matching is case-insensitive.
func FindSimilar(input string, names []string) (string, bool) {
	lower := strings.ToLower(input)
	for _, n := range names {
		if strings.HasPrefix(strings.ToLower(n), lower) {
			return n, true
		}
	}
	return "", false
}
