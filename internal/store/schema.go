package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS sessions (
    session_id       TEXT PRIMARY KEY,
    project          TEXT NOT NULL,
    file_path        TEXT NOT NULL,
    cwd              TEXT,
    git_branch       TEXT,
    model            TEXT,
    start_time       TEXT,
    end_time         TEXT,
    duration_secs    INTEGER,
    messages         INTEGER,
    tool_calls       INTEGER,
    agent_calls      INTEGER,
    errors           INTEGER,
    input_tokens     INTEGER,
    output_tokens    INTEGER,
    cache_creation   INTEGER,
    cache_read       INTEGER,
    todo_total       INTEGER,
    todo_done        INTEGER,
    file_mtime_ns    INTEGER NOT NULL,
    file_size        INTEGER NOT NULL,
    parsed_at        TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS session_tools (
    session_id       TEXT NOT NULL REFERENCES sessions(session_id) ON DELETE CASCADE,
    tool             TEXT NOT NULL,
    calls            INTEGER,
    PRIMARY KEY (session_id, tool)
);

CREATE TABLE IF NOT EXISTS file_tracker (
    file_path        TEXT PRIMARY KEY,
    mtime_ns         INTEGER NOT NULL,
    size_bytes       INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_sessions_start ON sessions(start_time);
CREATE INDEX IF NOT EXISTS idx_sessions_project ON sessions(project);
`
