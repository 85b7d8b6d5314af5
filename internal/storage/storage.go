// Package storage persists sessions and dispatch outcomes so they can be
// inspected after the fact (sessions CLI, browse TUI). The store is an
// observability sink: dispatch never depends on a write succeeding.
package storage

import "time"

// Session is one continuous run of the agent runtime.
type Session struct {
	ID               string     `json:"id"`
	PID              int        `json:"pid"`
	WorkingDirectory string     `json:"working_directory"`
	User             string     `json:"user"`
	Status           string     `json:"status"`
	StartedAt        time.Time  `json:"started_at"`
	LastActivity     time.Time  `json:"last_activity"`
	EndedAt          *time.Time `json:"ended_at,omitempty"`
}

// Dispatch is one recorded dispatch outcome.
type Dispatch struct {
	ID         int64     `json:"id"`
	SessionID  string    `json:"session_id"`
	Event      string    `json:"event"`
	ToolName   string    `json:"tool_name,omitempty"`
	Decision   string    `json:"decision"`
	Reasons    []string  `json:"reasons,omitempty"`
	DurationMs int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}

// SessionStorer is the persistence contract for hookd state.
type SessionStorer interface {
	EnsureSessionExists(session *Session) error
	GetSession(sessionID string) (*Session, error)
	GetAllSessions() ([]*Session, error)
	UpdateSessionStatus(sessionID, status string) error

	LogDispatch(dispatch *Dispatch) error
	GetDispatches(sessionID string, limit int) ([]*Dispatch, error)

	// DeleteSessionsBefore removes sessions (and their dispatches) whose
	// last activity predates the cutoff. Returns the number removed.
	DeleteSessionsBefore(cutoff time.Time) (int, error)

	Close() error
}
