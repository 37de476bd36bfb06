package transcript

import (
	"os"
	"path/filepath"
	"testing"
)

func appendFile(t *testing.T, path, data string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString(data); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestTailReaderNewLinesOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.jsonl")
	tr := NewTailReader(path)

	appendFile(t, path, "{\"type\":\"user\"}\n{\"type\":\"assistant\"}\n{\"type\":\"user\"}\n")

	lines, truncated, err := tr.Poll()
	if err != nil {
		t.Fatal(err)
	}
	if truncated {
		t.Error("fresh file reported truncated")
	}
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}

	// Second poll with nothing appended yields nothing.
	lines, _, err = tr.Poll()
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 0 {
		t.Errorf("repeat poll returned %d lines, want 0", len(lines))
	}
}

func TestTailReaderMissingFile(t *testing.T) {
	tr := NewTailReader(filepath.Join(t.TempDir(), "absent.jsonl"))
	lines, truncated, err := tr.Poll()
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 0 || truncated {
		t.Errorf("missing file: lines=%d truncated=%v", len(lines), truncated)
	}
}

func TestTailReaderPartialLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.jsonl")
	tr := NewTailReader(path)

	appendFile(t, path, "{\"type\":\"user\"}\n{\"type\":\"assis")

	lines, _, err := tr.Poll()
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1 (partial line withheld)", len(lines))
	}

	appendFile(t, path, "tant\"}\n")

	lines, _, err = tr.Poll()
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 1 {
		t.Fatalf("got %d lines after completion, want 1", len(lines))
	}
	if string(lines[0]) != `{"type":"assistant"}` {
		t.Errorf("reassembled line = %q", lines[0])
	}
}

func TestTailReaderTruncation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.jsonl")
	tr := NewTailReader(path)

	appendFile(t, path, "{\"type\":\"user\"}\n{\"type\":\"assistant\"}\n")
	if _, _, err := tr.Poll(); err != nil {
		t.Fatal(err)
	}

	// Replace with a shorter file, as when a new session reuses the path.
	if err := os.WriteFile(path, []byte("{\"type\":\"user\"}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	lines, truncated, err := tr.Poll()
	if err != nil {
		t.Fatal(err)
	}
	if !truncated {
		t.Error("shrunk file must report truncation")
	}
	if len(lines) != 1 {
		t.Errorf("got %d lines after truncation, want full reread of 1", len(lines))
	}
	if tr.Offset() != int64(len("{\"type\":\"user\"}\n")) {
		t.Errorf("Offset = %d", tr.Offset())
	}
}

func TestTailReaderOffsetMonotonic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.jsonl")
	tr := NewTailReader(path)

	appendFile(t, path, "{\"a\":1}\n")
	if _, _, err := tr.Poll(); err != nil {
		t.Fatal(err)
	}
	prev := tr.Offset()

	appendFile(t, path, "{\"b\":2}\n")
	if _, _, err := tr.Poll(); err != nil {
		t.Fatal(err)
	}
	if tr.Offset() <= prev {
		t.Errorf("offset went from %d to %d", prev, tr.Offset())
	}
}

func TestTailReaderSkipsBlankLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.jsonl")
	tr := NewTailReader(path)

	appendFile(t, path, "{\"a\":1}\n\n\n{\"b\":2}\n")

	lines, _, err := tr.Poll()
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 2 {
		t.Errorf("got %d lines, want 2", len(lines))
	}
}
