// Package sessions keeps per-user retrieval history: a session is an
// append-only sequence of answered queries with their cited sources.
package sessions

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nabilh/coursepilot/internal/db"
)

// ErrNotFound means the session id does not exist.
var ErrNotFound = errors.New("session not found")

// Session is a named sequence of answered queries owned by a user.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// Entry is one answered query within a session. Entries are never updated
// after creation.
type Entry struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Query     string    `json:"query"`
	Mode      string    `json:"mode"`
	Answer    string    `json:"answer"`
	Sources   []string  `json:"sources"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists sessions and their entries.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// CreateSession starts a new session for the user.
func (s *Store) CreateSession(ctx context.Context, userID, title string) (*Session, error) {
	id := uuid.New().String()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO retrieval_sessions (id, user_id, title) VALUES (?, ?, ?)`,
		id, userID, title,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting session: %w", err)
	}
	return s.GetSession(ctx, id)
}

// GetSession retrieves a session by id.
func (s *Store) GetSession(ctx context.Context, id string) (*Session, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, title, created_at FROM retrieval_sessions WHERE id = ?`, id)

	var (
		sess      Session
		createdAt string
	)
	err := row.Scan(&sess.ID, &sess.UserID, &sess.Title, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying session %s: %w", id, err)
	}
	sess.CreatedAt = parseTimestamp(createdAt)
	return &sess, nil
}

// ListSessions returns a user's sessions, newest first.
func (s *Store) ListSessions(ctx context.Context, userID string) ([]Session, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, title, created_at FROM retrieval_sessions
		WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		var (
			sess      Session
			createdAt string
		)
		if err := rows.Scan(&sess.ID, &sess.UserID, &sess.Title, &createdAt); err != nil {
			return nil, err
		}
		sess.CreatedAt = parseTimestamp(createdAt)
		out = append(out, sess)
	}
	return out, rows.Err()
}

// Record appends an answered query to a session. It satisfies the recorder
// hook of the query routes.
func (s *Store) Record(ctx context.Context, sessionID, query, mode, answer string, sources []string) error {
	if _, err := s.GetSession(ctx, sessionID); err != nil {
		return err
	}

	encoded, err := json.Marshal(sources)
	if err != nil {
		return fmt.Errorf("encoding sources: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO session_entries (id, session_id, query, mode, answer, sources)
		VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), sessionID, query, mode, answer, string(encoded),
	)
	if err != nil {
		return fmt.Errorf("inserting session entry: %w", err)
	}
	return nil
}

// Entries returns a session's entries in append order.
func (s *Store) Entries(ctx context.Context, sessionID string) ([]Entry, error) {
	if _, err := s.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, query, mode, answer, sources, created_at
		FROM session_entries WHERE session_id = ?
		ORDER BY created_at, rowid`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("listing session entries: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e         Entry
			sources   string
			createdAt string
		)
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Query, &e.Mode, &e.Answer, &sources, &createdAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(sources), &e.Sources); err != nil {
			return nil, fmt.Errorf("decoding sources: %w", err)
		}
		e.CreatedAt = parseTimestamp(createdAt)
		out = append(out, e)
	}
	return out, rows.Err()
}

// DeleteSession removes a session; its entries go with it via the foreign
// key cascade.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM retrieval_sessions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting session %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func parseTimestamp(s string) time.Time {
	if t, err := time.Parse(time.DateTime, s); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	return time.Time{}
}
