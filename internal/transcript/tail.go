package transcript

import (
	"bytes"
	"io"
	"os"
)

// TailReader tracks a byte offset into a growing transcript and yields
// only newly appended, complete lines on each poll. The offset only ever
// advances past bytes confirmed to end in a newline, so a half-written
// trailing line is left for the next poll.
type TailReader struct {
	path   string
	offset int64
}

// NewTailReader returns a reader positioned at the start of path.
func NewTailReader(path string) *TailReader {
	return &TailReader{path: path}
}

// Offset returns the current cursor, mainly for tests.
func (t *TailReader) Offset() int64 {
	return t.offset
}

// Poll reads everything appended since the last call. truncated is true
// when the file shrank below the stored offset, which is treated as a
// rotation: the cursor resets to zero and the new content is returned from
// the top, so the caller must discard any state derived from the old file.
// A missing file is not an error; it yields no lines.
func (t *TailReader) Poll() (lines [][]byte, truncated bool, err error) {
	info, err := os.Stat(t.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}

	if info.Size() < t.offset {
		t.offset = 0
		truncated = true
	}
	if info.Size() == t.offset {
		return nil, truncated, nil
	}

	f, err := os.Open(t.path)
	if err != nil {
		return nil, truncated, err
	}
	defer func() { _ = f.Close() }()

	if t.offset > 0 {
		if _, err := f.Seek(t.offset, io.SeekStart); err != nil {
			return nil, truncated, err
		}
	}

	chunk, err := io.ReadAll(io.LimitReader(f, info.Size()-t.offset))
	if err != nil {
		return nil, truncated, err
	}

	// Consume only up to the last newline.
	last := bytes.LastIndexByte(chunk, '\n')
	if last < 0 {
		return nil, truncated, nil
	}
	complete := chunk[:last+1]
	t.offset += int64(len(complete))

	for _, line := range bytes.Split(complete[:last], []byte{'\n'}) {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		lines = append(lines, line)
	}
	return lines, truncated, nil
}
