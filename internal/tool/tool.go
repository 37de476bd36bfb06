// Package tool launches the managed CLIs (Claude Code, Codex) inside an
// isolated profile directory by pointing each tool's config-dir
// environment variable at the profile.
package tool

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"agentctl/internal/profile"
)

// Environment variables injected into every launched tool.
const (
	EnvProfile     = "AGENTCTL_PROFILE"
	EnvProfileTool = "AGENTCTL_PROFILE_TOOL"
	EnvVersion     = "AGENTCTL_VERSION"

	EnvAnthropicAPIKey = "ANTHROPIC_API_KEY"
)

// ErrNotAuthenticated means the profile has no credential file yet.
var ErrNotAuthenticated = errors.New("profile not authenticated")

// Info describes how to drive one tool type.
type Info struct {
	Command        string
	EnvVar         string // config-dir override variable
	InstallURL     string
	CredentialFile string   // file whose presence means "logged in"
	AuthArgs       []string // subcommand that starts a login flow, if any
}

// InfoFor returns the launch description for a tool type.
func InfoFor(t profile.ToolType) Info {
	switch t {
	case profile.ToolCodex:
		return Info{
			Command:        "codex",
			EnvVar:         "CODEX_HOME",
			InstallURL:     "https://github.com/openai/codex",
			CredentialFile: "auth.json",
			AuthArgs:       []string{"login"},
		}
	default:
		return Info{
			Command:        "claude",
			EnvVar:         "CLAUDE_CONFIG_DIR",
			InstallURL:     "https://claude.ai/download",
			CredentialFile: ".claude.json",
		}
	}
}

// CheckAvailable verifies the tool binary is on PATH.
func CheckAvailable(t profile.ToolType) error {
	info := InfoFor(t)
	if _, err := exec.LookPath(info.Command); err != nil {
		return fmt.Errorf("%s not found on PATH, install from %s", info.Command, info.InstallURL)
	}
	return nil
}

// IsAuthenticated reports whether the profile's credential file exists.
func IsAuthenticated(store *profile.Store, p *profile.Profile) bool {
	cred := filepath.Join(store.Dir(p.Name), InfoFor(p.Tool).CredentialFile)
	_, err := os.Stat(cred)
	return err == nil
}

// CredentialPath returns where the tool keeps its credential file for the
// given profile.
func CredentialPath(store *profile.Store, p *profile.Profile) string {
	return filepath.Join(store.Dir(p.Name), InfoFor(p.Tool).CredentialFile)
}

// Logout removes the profile's credential file. Returns
// ErrNotAuthenticated when there is nothing to remove.
func Logout(store *profile.Store, p *profile.Profile) error {
	path := CredentialPath(store, p)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return ErrNotAuthenticated
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("removing credentials: %w", err)
	}
	return nil
}
