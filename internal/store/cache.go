// Package store provides a SQLite-backed cache of parsed session
// summaries, so repeat scans only reparse transcripts that changed on
// disk.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // register sqlite driver
)

// Summary is the flattened form of one parsed session, as cached.
type Summary struct {
	SessionID  string
	Project    string
	FilePath   string
	Cwd        string
	GitBranch  string
	Model      string
	StartTime  time.Time
	EndTime    time.Time
	Messages   int
	ToolCalls  int
	AgentCalls int
	Errors     int

	InputTokens   int64
	OutputTokens  int64
	CacheCreation int64
	CacheRead     int64

	TodoTotal int
	TodoDone  int

	ToolCounts map[string]int
}

// Duration is the session wall time in whole seconds.
func (s Summary) Duration() time.Duration {
	if s.StartTime.IsZero() || s.EndTime.IsZero() {
		return 0
	}
	d := s.EndTime.Sub(s.StartTime)
	if d < 0 {
		return 0
	}
	return d
}

// Cache is the on-disk summary store.
type Cache struct {
	db *sql.DB
}

// Open opens or creates the cache database at the given path.
func Open(dbPath string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("opening cache db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Cache{db: db}, nil
}

// Close closes the cache database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// FileInfo holds the tracked mtime and size for a transcript.
type FileInfo struct {
	MtimeNs   int64
	SizeBytes int64
}

// TrackedFiles returns file_path -> FileInfo for every tracked transcript.
func (c *Cache) TrackedFiles() (map[string]FileInfo, error) {
	rows, err := c.db.Query("SELECT file_path, mtime_ns, size_bytes FROM file_tracker")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	result := make(map[string]FileInfo)
	for rows.Next() {
		var path string
		var fi FileInfo
		if err := rows.Scan(&path, &fi.MtimeNs, &fi.SizeBytes); err != nil {
			return nil, err
		}
		result[path] = fi
	}
	return result, rows.Err()
}

// SaveSummary stores a parsed session and its file tracking info.
func (c *Cache) SaveSummary(s Summary, mtimeNs, sizeBytes int64) error {
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(time.RFC3339)
	start := ""
	if !s.StartTime.IsZero() {
		start = s.StartTime.UTC().Format(time.RFC3339)
	}
	end := ""
	if !s.EndTime.IsZero() {
		end = s.EndTime.UTC().Format(time.RFC3339)
	}

	_, err = tx.Exec(`INSERT OR REPLACE INTO sessions
		(session_id, project, file_path, cwd, git_branch, model,
		 start_time, end_time, duration_secs, messages, tool_calls, agent_calls, errors,
		 input_tokens, output_tokens, cache_creation, cache_read,
		 todo_total, todo_done, file_mtime_ns, file_size, parsed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.SessionID, s.Project, s.FilePath, s.Cwd, s.GitBranch, s.Model,
		start, end, int64(s.Duration().Seconds()), s.Messages, s.ToolCalls, s.AgentCalls, s.Errors,
		s.InputTokens, s.OutputTokens, s.CacheCreation, s.CacheRead,
		s.TodoTotal, s.TodoDone, mtimeNs, sizeBytes, now,
	)
	if err != nil {
		return err
	}

	if _, err = tx.Exec("DELETE FROM session_tools WHERE session_id = ?", s.SessionID); err != nil {
		return err
	}
	for tool, n := range s.ToolCounts {
		if _, err = tx.Exec(`INSERT INTO session_tools (session_id, tool, calls) VALUES (?, ?, ?)`,
			s.SessionID, tool, n); err != nil {
			return err
		}
	}

	if _, err = tx.Exec(`INSERT OR REPLACE INTO file_tracker (file_path, mtime_ns, size_bytes)
		VALUES (?, ?, ?)`, s.FilePath, mtimeNs, sizeBytes); err != nil {
		return err
	}

	return tx.Commit()
}

// LoadSummaries reads every cached session.
func (c *Cache) LoadSummaries() ([]Summary, error) {
	rows, err := c.db.Query(`SELECT
		session_id, project, file_path, cwd, git_branch, model,
		start_time, end_time, messages, tool_calls, agent_calls, errors,
		input_tokens, output_tokens, cache_creation, cache_read,
		todo_total, todo_done
		FROM sessions`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var summaries []Summary
	for rows.Next() {
		var s Summary
		var cwd, branch, model, start, end sql.NullString

		err := rows.Scan(
			&s.SessionID, &s.Project, &s.FilePath, &cwd, &branch, &model,
			&start, &end, &s.Messages, &s.ToolCalls, &s.AgentCalls, &s.Errors,
			&s.InputTokens, &s.OutputTokens, &s.CacheCreation, &s.CacheRead,
			&s.TodoTotal, &s.TodoDone,
		)
		if err != nil {
			return nil, err
		}

		s.Cwd = cwd.String
		s.GitBranch = branch.String
		s.Model = model.String
		if start.String != "" {
			s.StartTime, _ = time.Parse(time.RFC3339, start.String)
		}
		if end.String != "" {
			s.EndTime, _ = time.Parse(time.RFC3339, end.String)
		}
		s.ToolCounts = make(map[string]int)
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	toolRows, err := c.db.Query("SELECT session_id, tool, calls FROM session_tools")
	if err != nil {
		return nil, err
	}
	defer func() { _ = toolRows.Close() }()

	idx := make(map[string]int)
	for i, s := range summaries {
		idx[s.SessionID] = i
	}

	for toolRows.Next() {
		var sid, tool string
		var calls int
		if err := toolRows.Scan(&sid, &tool, &calls); err != nil {
			return nil, err
		}
		if i, ok := idx[sid]; ok {
			summaries[i].ToolCounts[tool] = calls
		}
	}
	return summaries, toolRows.Err()
}

// DeleteSummary removes a session and its tool breakdown.
func (c *Cache) DeleteSummary(sessionID string) error {
	_, err := c.db.Exec("DELETE FROM sessions WHERE session_id = ?", sessionID)
	return err
}

// DeleteFileTracker removes a file tracking entry after its transcript
// disappeared from disk.
func (c *Cache) DeleteFileTracker(filePath string) error {
	_, err := c.db.Exec("DELETE FROM file_tracker WHERE file_path = ?", filePath)
	return err
}

// SummaryCount returns the number of cached sessions.
func (c *Cache) SummaryCount() (int, error) {
	var count int
	err := c.db.QueryRow("SELECT COUNT(*) FROM sessions").Scan(&count)
	return count, err
}
