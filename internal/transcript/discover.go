package transcript

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrAmbiguousSession means a session id prefix matched more than one
// session; the caller should ask for a longer prefix.
var ErrAmbiguousSession = errors.New("ambiguous session id prefix")

// ErrSessionNotFound means no session matched the given id prefix.
var ErrSessionNotFound = errors.New("session not found")

// File is one discovered transcript file.
type File struct {
	Path      string
	SessionID string // file stem
	Project   string // decoded project directory name
	ModTime   int64  // unix nanoseconds, for recency sorting
}

// ScanDir walks a projects directory (<dir>/<project>/<session>.jsonl)
// and returns every transcript, most recently modified first. A missing
// directory yields an empty slice, not an error: "no data" is a normal
// state for a fresh profile.
func ScanDir(projectsDir string) ([]File, error) {
	info, err := os.Stat(projectsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, nil
	}

	var files []File
	err = filepath.WalkDir(projectsDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // skip unreadable entries
		}
		if d.IsDir() || filepath.Ext(path) != ".jsonl" {
			return nil
		}

		stem := strings.TrimSuffix(d.Name(), ".jsonl")
		if strings.HasPrefix(stem, "agent-") {
			return nil // subagent side files, not sessions
		}

		rel, _ := filepath.Rel(projectsDir, path)
		parts := strings.Split(rel, string(filepath.Separator))
		project := ""
		if len(parts) >= 2 {
			project = decodeProjectName(parts[0])
		}

		f := File{Path: path, SessionID: stem, Project: project}
		if fi, err := d.Info(); err == nil {
			f.ModTime = fi.ModTime().UnixNano()
		}
		files = append(files, f)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].ModTime > files[j].ModTime
	})
	return files, nil
}

// MostRecent returns the most recently modified transcript, or false when
// there are none.
func MostRecent(projectsDir string) (File, bool, error) {
	files, err := ScanDir(projectsDir)
	if err != nil || len(files) == 0 {
		return File{}, false, err
	}
	return files[0], true, nil
}

// FindByPrefix resolves a session id prefix against the discovered files.
// The prefix must match exactly one session id, else ErrAmbiguousSession
// or ErrSessionNotFound.
func FindByPrefix(files []File, prefix string) (File, error) {
	var matches []File
	for _, f := range files {
		if strings.HasPrefix(f.SessionID, prefix) {
			matches = append(matches, f)
		}
	}
	switch len(matches) {
	case 0:
		return File{}, fmt.Errorf("%w: %q", ErrSessionNotFound, prefix)
	case 1:
		return matches[0], nil
	default:
		return File{}, fmt.Errorf("%w: %q matches %d sessions", ErrAmbiguousSession, prefix, len(matches))
	}
}

// decodeProjectName extracts a readable project name from the encoded
// directory name. Claude Code encodes absolute paths by replacing "/"
// with "-", so "-Users-me-projects-my-tool" -> "my-tool". We look for the
// last common parent marker and take everything after it, falling back to
// the last non-empty segment.
func decodeProjectName(dirName string) string {
	parts := strings.Split(dirName, "-")

	knownParents := map[string]bool{
		"projects": true, "repos": true, "src": true,
		"code": true, "workspace": true, "dev": true,
	}

	for i := len(parts) - 2; i >= 0; i-- {
		if knownParents[strings.ToLower(parts[i])] {
			if name := strings.Join(parts[i+1:], "-"); name != "" {
				return name
			}
		}
	}

	for i := len(parts) - 1; i >= 0; i-- {
		if parts[i] != "" {
			return parts[i]
		}
	}
	return dirName
}
