package profile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrNotFound means no profile with the given name exists.
var ErrNotFound = errors.New("profile not found")

const (
	metaFile       = "meta.yaml"
	transcriptsDir = "transcripts"

	// EnvConfigDir overrides the config root location.
	EnvConfigDir = "AGENTCTL_CONFIG_DIR"
)

// Store reads and writes profiles under a config root directory.
type Store struct {
	root string
}

// NewStore returns a store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{root: dir}
}

// DefaultRoot resolves the config root: $AGENTCTL_CONFIG_DIR if set, else
// ~/.agentctl.
func DefaultRoot() (string, error) {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".agentctl"), nil
}

// Root returns the store's base directory.
func (s *Store) Root() string {
	return s.root
}

// Dir returns the directory for a profile. Names are lowercased so that
// lookups are case-insensitive on case-sensitive filesystems.
func (s *Store) Dir(name string) string {
	return filepath.Join(s.root, "profiles", strings.ToLower(name))
}

// TranscriptsDir returns where the profile's tool writes session
// transcripts (the Claude projects layout lives underneath).
func (s *Store) TranscriptsDir(name string) string {
	return filepath.Join(s.Dir(name), transcriptsDir)
}

// ProjectsDir returns the Claude Code projects directory for a profile.
func (s *Store) ProjectsDir(name string) string {
	return filepath.Join(s.Dir(name), "projects")
}

func (s *Store) metaPath(name string) string {
	return filepath.Join(s.Dir(name), metaFile)
}

// Save validates and persists a profile's metadata. The profile directory
// is created 0700 since it will hold credentials.
func (s *Store) Save(p *Profile) error {
	if err := ValidateName(p.Name); err != nil {
		return err
	}

	dir := s.Dir(p.Name)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating profile dir: %w", err)
	}

	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding profile meta: %w", err)
	}
	return atomicWrite(s.metaPath(p.Name), data)
}

// Load reads a profile's metadata.
func (s *Store) Load(name string) (*Profile, error) {
	data, err := os.ReadFile(s.metaPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
		}
		return nil, fmt.Errorf("reading profile meta: %w", err)
	}

	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", s.metaPath(name), err)
	}
	return &p, nil
}

// Exists reports whether a profile's meta file is present.
func (s *Store) Exists(name string) bool {
	_, err := os.Stat(s.metaPath(name))
	return err == nil
}

// List returns all profile names, sorted. A missing profiles directory
// yields an empty list.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, "profiles"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing profiles: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(s.root, "profiles", e.Name(), metaFile)); err == nil {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Delete removes a profile directory and everything in it.
func (s *Store) Delete(name string) error {
	dir := s.Dir(name)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("removing profile dir: %w", err)
	}
	return nil
}

// Touch records that a profile was just used.
func (s *Store) Touch(name string) error {
	p, err := s.Load(name)
	if err != nil {
		return err
	}
	now := timeNow()
	p.LastUsed = &now
	return s.Save(p)
}

// atomicWrite lands content via a temp file and rename so a crash never
// leaves a half-written meta file. Mode 0600: profiles hold credentials.
func atomicWrite(path string, data []byte) error {
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
