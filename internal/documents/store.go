package documents

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nabilh/coursepilot/internal/db"
)

// Store provides CRUD operations and guarded status transitions for
// document records. All status writes are single conditional UPDATE
// statements, so concurrent writers serialize on the database and a lost
// update cannot occur.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Create inserts a new document record in the queued state. If doc.ID is
// empty a UUID is generated. Returns the stored document.
func (s *Store) Create(ctx context.Context, doc Document) (*Document, error) {
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (id, filename, file_path, uploaded_by, course, status)
		VALUES (?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.Filename, doc.FilePath, doc.UploadedBy, doc.Course, string(StatusQueued),
	)
	if err != nil {
		return nil, fmt.Errorf("inserting document: %w", err)
	}

	return s.Get(ctx, doc.ID)
}

// Get retrieves a single document by id.
func (s *Store) Get(ctx context.Context, id string) (*Document, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, filename, file_path, uploaded_by, course, status,
		       chunk_count, error_message, created_at, updated_at
		FROM documents WHERE id = ?`, id)

	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying document %s: %w", id, err)
	}
	return doc, nil
}

// ListFilter narrows the result of List.
type ListFilter struct {
	Course     string
	Status     Status
	UploadedBy string
}

// List returns documents matching the filter, newest first.
func (s *Store) List(ctx context.Context, filter ListFilter) ([]Document, error) {
	var (
		clauses []string
		args    []any
	)
	if filter.Course != "" {
		clauses = append(clauses, "course = ?")
		args = append(args, filter.Course)
	}
	if filter.Status != "" {
		clauses = append(clauses, "status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.UploadedBy != "" {
		clauses = append(clauses, "uploaded_by = ?")
		args = append(args, filter.UploadedBy)
	}

	query := `SELECT id, filename, file_path, uploaded_by, course, status,
		chunk_count, error_message, created_at, updated_at FROM documents`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	return docs, rows.Err()
}

// MarkProcessing transitions queued -> processing. The conditional UPDATE is
// the mutual-exclusion gate: only one caller can win the transition, any
// concurrent attempt gets ErrAlreadyProcessing.
func (s *Store) MarkProcessing(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE documents SET status = ?, updated_at = datetime('now')
		WHERE id = ? AND status = ?`,
		string(StatusProcessing), id, string(StatusQueued),
	)
	if err != nil {
		return fmt.Errorf("marking document %s processing: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		doc, err := s.Get(ctx, id)
		if err != nil {
			return err
		}
		if doc.Status == StatusProcessing {
			return ErrAlreadyProcessing
		}
		return fmt.Errorf("%w: status is %s", ErrInvalidState, doc.Status)
	}
	return nil
}

// MarkCompleted transitions processing -> completed and records the final
// chunk count.
func (s *Store) MarkCompleted(ctx context.Context, id string, chunkCount int) error {
	return s.finish(ctx, id, StatusCompleted, chunkCount, "")
}

// MarkFailed transitions processing -> failed with a diagnostic message.
func (s *Store) MarkFailed(ctx context.Context, id string, errorMessage string) error {
	return s.finish(ctx, id, StatusFailed, 0, errorMessage)
}

func (s *Store) finish(ctx context.Context, id string, status Status, chunkCount int, errorMessage string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE documents SET status = ?, chunk_count = ?, error_message = ?, updated_at = datetime('now')
		WHERE id = ? AND status = ?`,
		string(status), chunkCount, errorMessage, id, string(StatusProcessing),
	)
	if err != nil {
		return fmt.Errorf("marking document %s %s: %w", id, status, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := s.Get(ctx, id); err != nil {
			return err
		}
		return fmt.Errorf("%w: expected %s", ErrInvalidState, StatusProcessing)
	}
	return nil
}

// Requeue transitions failed -> queued, clearing the prior error message and
// chunk count so the document is processed again from scratch.
func (s *Store) Requeue(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE documents SET status = ?, chunk_count = 0, error_message = '', updated_at = datetime('now')
		WHERE id = ? AND status = ?`,
		string(StatusQueued), id, string(StatusFailed),
	)
	if err != nil {
		return fmt.Errorf("requeueing document %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := s.Get(ctx, id); err != nil {
			return err
		}
		return fmt.Errorf("%w: only failed documents can be resubmitted", ErrInvalidState)
	}
	return nil
}

// Delete removes the document row.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting document %s: %w", id, err)
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

// Stats returns per-status document counts and the total indexed chunks.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT status, COUNT(*), COALESCE(SUM(chunk_count), 0)
		FROM documents GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("querying document stats: %w", err)
	}
	defer rows.Close()

	var stats Stats
	for rows.Next() {
		var status string
		var count, chunks int
		if err := rows.Scan(&status, &count, &chunks); err != nil {
			return nil, err
		}
		stats.Total += count
		stats.TotalChunks += chunks
		switch Status(status) {
		case StatusQueued:
			stats.Queued = count
		case StatusProcessing:
			stats.Processing = count
		case StatusCompleted:
			stats.Completed = count
		case StatusFailed:
			stats.Failed = count
		}
	}
	return &stats, rows.Err()
}

// scanner is implemented by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(sc scanner) (*Document, error) {
	var (
		doc                  Document
		status               string
		createdAt, updatedAt string
	)
	err := sc.Scan(
		&doc.ID, &doc.Filename, &doc.FilePath, &doc.UploadedBy, &doc.Course,
		&status, &doc.ChunkCount, &doc.ErrorMessage, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	doc.Status = Status(status)
	doc.CreatedAt = parseTimestamp(createdAt)
	doc.UpdatedAt = parseTimestamp(updatedAt)
	return &doc, nil
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
