package content

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nabilh/coursepilot/internal/db"
)

// Store persists generated content in the relational store.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Create inserts a generated content record. If gen.ID is empty a UUID is
// generated. Returns the stored record.
func (s *Store) Create(ctx context.Context, gen Generated) (*Generated, error) {
	if gen.ID == "" {
		gen.ID = uuid.New().String()
	}

	docIDs, err := json.Marshal(gen.DocumentIDs)
	if err != nil {
		return nil, fmt.Errorf("encoding document ids: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO generated_content (id, content_type, author_id, document_ids, difficulty, content)
		VALUES (?, ?, ?, ?, ?, ?)`,
		gen.ID, string(gen.Type), gen.AuthorID, string(docIDs), gen.Difficulty, gen.Content,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting generated content: %w", err)
	}

	return s.Get(ctx, gen.ID)
}

// Get retrieves a single record by id.
func (s *Store) Get(ctx context.Context, id string) (*Generated, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, content_type, author_id, document_ids, difficulty, content, created_at
		FROM generated_content WHERE id = ?`, id)

	gen, err := scanGenerated(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying generated content %s: %w", id, err)
	}
	return gen, nil
}

// ListFilter narrows the result of List.
type ListFilter struct {
	AuthorID string
	Type     Type
}

// List returns generated content matching the filter, newest first.
func (s *Store) List(ctx context.Context, filter ListFilter) ([]Generated, error) {
	var (
		clauses []string
		args    []any
	)
	if filter.AuthorID != "" {
		clauses = append(clauses, "author_id = ?")
		args = append(args, filter.AuthorID)
	}
	if filter.Type != "" {
		clauses = append(clauses, "content_type = ?")
		args = append(args, string(filter.Type))
	}

	query := `SELECT id, content_type, author_id, document_ids, difficulty, content, created_at
		FROM generated_content`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing generated content: %w", err)
	}
	defer rows.Close()

	var out []Generated
	for rows.Next() {
		gen, err := scanGenerated(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *gen)
	}
	return out, rows.Err()
}

// Delete removes a record.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM generated_content WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting generated content %s: %w", id, err)
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

type scanner interface {
	Scan(dest ...any) error
}

func scanGenerated(sc scanner) (*Generated, error) {
	var (
		gen       Generated
		typ       string
		docIDs    string
		createdAt string
	)
	err := sc.Scan(&gen.ID, &typ, &gen.AuthorID, &docIDs, &gen.Difficulty, &gen.Content, &createdAt)
	if err != nil {
		return nil, err
	}

	gen.Type = Type(typ)
	if err := json.Unmarshal([]byte(docIDs), &gen.DocumentIDs); err != nil {
		return nil, fmt.Errorf("decoding document ids: %w", err)
	}
	gen.CreatedAt = parseTimestamp(createdAt)
	return &gen, nil
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
