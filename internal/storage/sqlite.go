package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// DBPathEnv overrides the database location, useful for testing.
const DBPathEnv = "HOOKD_DB_PATH"

// SQLiteStore implements SessionStorer using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens the store at the default location
// (~/.local/share/hookd/state.db) or the DBPathEnv override.
func NewSQLiteStore() (*SQLiteStore, error) {
	dbPath := os.Getenv(DBPathEnv)
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".local", "share", "hookd", "state.db")
	}
	return NewSQLiteStoreWithPath(dbPath)
}

// NewSQLiteStoreWithPath opens (and migrates) the store at a custom path.
func NewSQLiteStoreWithPath(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		pid INTEGER,
		working_directory TEXT,
		user TEXT,
		status TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		ended_at DATETIME,
		last_activity DATETIME,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS dispatches (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		event TEXT NOT NULL,
		tool_name TEXT,
		decision TEXT NOT NULL,
		reasons TEXT,
		duration_ms INTEGER,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (session_id) REFERENCES sessions(id)
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_status ON sessions(status);
	CREATE INDEX IF NOT EXISTS idx_sessions_last_activity ON sessions(last_activity);
	CREATE INDEX IF NOT EXISTS idx_dispatches_session_id ON dispatches(session_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// EnsureSessionExists creates the session or refreshes its activity.
func (s *SQLiteStore) EnsureSessionExists(session *Session) error {
	query := `
	INSERT INTO sessions (id, pid, working_directory, user, status, started_at, last_activity)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		status = excluded.status,
		last_activity = excluded.last_activity,
		updated_at = CURRENT_TIMESTAMP,
		ended_at = CASE WHEN excluded.status = 'running' THEN NULL ELSE sessions.ended_at END
	`
	_, err := s.db.Exec(query,
		session.ID, session.PID, session.WorkingDirectory, session.User,
		session.Status, session.StartedAt, session.LastActivity,
	)
	return err
}

// GetSession retrieves a session by ID.
func (s *SQLiteStore) GetSession(sessionID string) (*Session, error) {
	query := `
	SELECT id, pid, COALESCE(working_directory, ''), COALESCE(user, ''),
		status, started_at, ended_at, last_activity
	FROM sessions WHERE id = ?
	`
	var session Session
	var endedAt sql.NullTime
	err := s.db.QueryRow(query, sessionID).Scan(
		&session.ID, &session.PID, &session.WorkingDirectory, &session.User,
		&session.Status, &session.StartedAt, &endedAt, &session.LastActivity,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("session %s not found", sessionID)
		}
		return nil, err
	}
	if endedAt.Valid {
		session.EndedAt = &endedAt.Time
	}
	return &session, nil
}

// GetAllSessions retrieves all sessions, most recent first.
func (s *SQLiteStore) GetAllSessions() ([]*Session, error) {
	query := `
	SELECT id, pid, COALESCE(working_directory, ''), COALESCE(user, ''),
		status, started_at, ended_at, last_activity
	FROM sessions
	ORDER BY started_at DESC
	`
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		var session Session
		var endedAt sql.NullTime
		if err := rows.Scan(
			&session.ID, &session.PID, &session.WorkingDirectory, &session.User,
			&session.Status, &session.StartedAt, &endedAt, &session.LastActivity,
		); err != nil {
			return nil, err
		}
		if endedAt.Valid {
			session.EndedAt = &endedAt.Time
		}
		sessions = append(sessions, &session)
	}
	return sessions, rows.Err()
}

// UpdateSessionStatus sets a session's status, stamping ended_at for
// terminal states.
func (s *SQLiteStore) UpdateSessionStatus(sessionID, status string) error {
	query := `
	UPDATE sessions SET
		status = ?,
		updated_at = CURRENT_TIMESTAMP,
		last_activity = CURRENT_TIMESTAMP,
		ended_at = CASE WHEN ? IN ('completed', 'failed') THEN CURRENT_TIMESTAMP ELSE ended_at END
	WHERE id = ?
	`
	res, err := s.db.Exec(query, status, status, sessionID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("session %s not found", sessionID)
	}
	return nil
}

// LogDispatch records one dispatch outcome and refreshes session activity.
func (s *SQLiteStore) LogDispatch(dispatch *Dispatch) error {
	reasonsJSON := "[]"
	if len(dispatch.Reasons) > 0 {
		data, err := json.Marshal(dispatch.Reasons)
		if err != nil {
			return fmt.Errorf("failed to marshal reasons: %w", err)
		}
		reasonsJSON = string(data)
	}

	_, err := s.db.Exec(`
		INSERT INTO dispatches (session_id, event, tool_name, decision, reasons, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?)`,
		dispatch.SessionID, dispatch.Event, dispatch.ToolName,
		dispatch.Decision, reasonsJSON, dispatch.DurationMs,
	)
	if err != nil {
		return err
	}

	s.db.Exec(`UPDATE sessions SET last_activity = CURRENT_TIMESTAMP WHERE id = ?`, dispatch.SessionID)
	return nil
}

// GetDispatches returns a session's dispatch history, most recent first.
// limit <= 0 means no limit.
func (s *SQLiteStore) GetDispatches(sessionID string, limit int) ([]*Dispatch, error) {
	query := `
	SELECT id, session_id, event, COALESCE(tool_name, ''), decision,
		COALESCE(reasons, '[]'), COALESCE(duration_ms, 0), created_at
	FROM dispatches
	WHERE session_id = ?
	ORDER BY id DESC
	`
	args := []any{sessionID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dispatches []*Dispatch
	for rows.Next() {
		var d Dispatch
		var reasonsJSON string
		if err := rows.Scan(
			&d.ID, &d.SessionID, &d.Event, &d.ToolName, &d.Decision,
			&reasonsJSON, &d.DurationMs, &d.CreatedAt,
		); err != nil {
			return nil, err
		}
		if reasonsJSON != "" && reasonsJSON != "[]" {
			if err := json.Unmarshal([]byte(reasonsJSON), &d.Reasons); err != nil {
				return nil, fmt.Errorf("failed to unmarshal reasons for dispatch %d: %w", d.ID, err)
			}
		}
		dispatches = append(dispatches, &d)
	}
	return dispatches, rows.Err()
}

// DeleteSessionsBefore removes stale sessions and their dispatch history.
func (s *SQLiteStore) DeleteSessionsBefore(cutoff time.Time) (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		DELETE FROM dispatches WHERE session_id IN
		(SELECT id FROM sessions WHERE last_activity < ?)`, cutoff); err != nil {
		return 0, err
	}
	res, err := tx.Exec(`DELETE FROM sessions WHERE last_activity < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return int(n), nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
