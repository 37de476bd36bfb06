// Package config persists the small global state file (config.yaml under
// the config root): the user's default profile and the last profile a
// tool ran under.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvDefaultProfile overrides the default profile without touching disk.
const EnvDefaultProfile = "AGENTCTL_DEFAULT_PROFILE"

const fileName = "config.yaml"

// Global is the persisted state.
type Global struct {
	DefaultProfile  string `yaml:"default_profile,omitempty"`
	LastUsedProfile string `yaml:"last_used_profile,omitempty"`
}

// Path returns the config file location under the given root.
func Path(root string) string {
	return filepath.Join(root, fileName)
}

// Load reads config.yaml, returning a zero value when it does not exist.
func Load(root string) (Global, error) {
	data, err := os.ReadFile(Path(root))
	if err != nil {
		if os.IsNotExist(err) {
			return Global{}, nil
		}
		return Global{}, fmt.Errorf("reading config: %w", err)
	}

	var g Global
	if err := yaml.Unmarshal(data, &g); err != nil {
		return Global{}, fmt.Errorf("parsing %s: %w", Path(root), err)
	}
	return g, nil
}

// Save writes config.yaml atomically, creating the root if needed.
func Save(root string, g Global) error {
	if err := os.MkdirAll(root, 0o700); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	data, err := yaml.Marshal(g)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	path := Path(root)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

// SetLastUsed records the profile a tool just ran under.
func SetLastUsed(root, name string) error {
	g, err := Load(root)
	if err != nil {
		return err
	}
	g.LastUsedProfile = strings.ToLower(name)
	return Save(root, g)
}

// DefaultProfile resolves which profile to use when none is named:
// environment override first, then the configured default, then the last
// used profile. Empty when nothing applies.
func DefaultProfile(root string) (string, error) {
	if env := os.Getenv(EnvDefaultProfile); env != "" {
		return strings.ToLower(env), nil
	}

	g, err := Load(root)
	if err != nil {
		return "", err
	}
	if g.DefaultProfile != "" {
		return g.DefaultProfile, nil
	}
	return g.LastUsedProfile, nil
}
