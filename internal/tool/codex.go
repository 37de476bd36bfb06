package tool

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const codexConfigFile = "config.toml"

// CodexConfig is the subset of Codex's config.toml we seed for a new
// profile. Codex fills in the rest on first run.
type CodexConfig struct {
	Model                string `toml:"model,omitempty"`
	ApprovalPolicy       string `toml:"approval_policy,omitempty"`
	DisableResponseStore bool   `toml:"disable_response_storage,omitempty"`
}

// SeedCodexConfig writes an initial config.toml into a fresh Codex
// profile directory. An existing file is left alone so re-adding a
// profile never clobbers user edits.
func SeedCodexConfig(dir string, cfg CodexConfig) error {
	path := filepath.Join(dir, codexConfigFile)
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		if os.IsExist(err) {
			return nil
		}
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("encoding codex config: %w", err)
	}
	return nil
}

// LoadCodexConfig reads a profile's config.toml, returning a zero config
// when the file does not exist.
func LoadCodexConfig(dir string) (CodexConfig, error) {
	var cfg CodexConfig
	path := filepath.Join(dir, codexConfigFile)
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if os.IsNotExist(err) {
			return CodexConfig{}, nil
		}
		return CodexConfig{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}
