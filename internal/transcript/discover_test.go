package transcript

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func makeProjectsDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	write := func(project, session string, mod time.Time) {
		p := filepath.Join(dir, project)
		if err := os.MkdirAll(p, 0o755); err != nil {
			t.Fatal(err)
		}
		path := filepath.Join(p, session+".jsonl")
		if err := os.WriteFile(path, []byte("{\"type\":\"user\"}\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		if err := os.Chtimes(path, mod, mod); err != nil {
			t.Fatal(err)
		}
	}

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	write("-home-dev-projects-widget", "aaaa-1111", base)
	write("-home-dev-projects-widget", "aaab-2222", base.Add(2*time.Hour))
	write("-home-dev-projects-gadget", "bbbb-3333", base.Add(time.Hour))
	return dir
}

func TestScanDirSortsByRecency(t *testing.T) {
	files, err := ScanDir(makeProjectsDir(t))
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 3 {
		t.Fatalf("got %d files", len(files))
	}
	if files[0].SessionID != "aaab-2222" || files[2].SessionID != "aaaa-1111" {
		t.Errorf("order = [%s %s %s]", files[0].SessionID, files[1].SessionID, files[2].SessionID)
	}
	if files[0].Project != "widget" {
		t.Errorf("Project = %q", files[0].Project)
	}
}

func TestScanDirMissing(t *testing.T) {
	files, err := ScanDir(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 0 {
		t.Errorf("got %d files from missing dir", len(files))
	}
}

func TestScanDirSkipsAgentFiles(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "-home-dev-projects-widget")
	if err := os.MkdirAll(p, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"sess-1.jsonl", "agent-xyz.jsonl", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(p, name), []byte("x\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	files, err := ScanDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 || files[0].SessionID != "sess-1" {
		t.Errorf("files = %+v", files)
	}
}

func TestMostRecent(t *testing.T) {
	f, ok, err := MostRecent(makeProjectsDir(t))
	if err != nil {
		t.Fatal(err)
	}
	if !ok || f.SessionID != "aaab-2222" {
		t.Errorf("ok=%v f=%+v", ok, f)
	}

	_, ok, err = MostRecent(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("empty dir reported a most-recent session")
	}
}

func TestFindByPrefix(t *testing.T) {
	files, err := ScanDir(makeProjectsDir(t))
	if err != nil {
		t.Fatal(err)
	}

	f, err := FindByPrefix(files, "bbbb")
	if err != nil {
		t.Fatal(err)
	}
	if f.SessionID != "bbbb-3333" {
		t.Errorf("got %q", f.SessionID)
	}

	if _, err := FindByPrefix(files, "aaa"); !errors.Is(err, ErrAmbiguousSession) {
		t.Errorf("err = %v, want ErrAmbiguousSession", err)
	}
	if _, err := FindByPrefix(files, "zzz"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("err = %v, want ErrSessionNotFound", err)
	}
}

func TestDecodeProjectName(t *testing.T) {
	cases := []struct{ in, want string }{
		{"-home-dev-projects-widget", "widget"},
		{"-Users-me-projects-my-cool-project", "my-cool-project"},
		{"-home-dev-src-thing", "thing"},
		{"-opt-stuff", "stuff"},
		{"plain", "plain"},
	}
	for _, c := range cases {
		if got := decodeProjectName(c.in); got != c.want {
			t.Errorf("decodeProjectName(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
