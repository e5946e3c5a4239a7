package sessions

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/nabilh/coursepilot/internal/db"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewStore(database)
}

func TestSessionLifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	sess, err := store.CreateSession(ctx, "student-1", "thermo revision")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if sess.UserID != "student-1" || sess.Title != "thermo revision" {
		t.Errorf("session = %+v", sess)
	}

	for i := 0; i < 3; i++ {
		err := store.Record(ctx, sess.ID,
			fmt.Sprintf("question %d", i), "qa",
			fmt.Sprintf("answer %d", i), []string{"doc-a"})
		if err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	entries, err := store.Entries(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("entries = %d, want 3", len(entries))
	}
	// Append order is preserved.
	for i, e := range entries {
		if e.Query != fmt.Sprintf("question %d", i) {
			t.Errorf("entry %d query = %q", i, e.Query)
		}
		if len(e.Sources) != 1 || e.Sources[0] != "doc-a" {
			t.Errorf("entry %d sources = %v", i, e.Sources)
		}
	}
}

func TestRecordUnknownSession(t *testing.T) {
	store := newTestStore(t)

	err := store.Record(context.Background(), "missing", "q", "qa", "a", nil)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestListSessionsByUser(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	store.CreateSession(ctx, "student-1", "a")
	store.CreateSession(ctx, "student-1", "b")
	store.CreateSession(ctx, "student-2", "c")

	out, err := store.ListSessions(ctx, "student-1")
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if len(out) != 2 {
		t.Errorf("len = %d, want 2", len(out))
	}
}

func TestDeleteSessionCascadesEntries(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	sess, err := store.CreateSession(ctx, "student-1", "t")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if err := store.Record(ctx, sess.ID, "q", "qa", "a", nil); err != nil {
		t.Fatalf("Record: %v", err)
	}

	if err := store.DeleteSession(ctx, sess.ID); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}
	if _, err := store.GetSession(ctx, sess.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetSession = %v, want ErrNotFound", err)
	}
	if _, err := store.Entries(ctx, sess.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Entries = %v, want ErrNotFound", err)
	}
}

func TestSessionRoutes(t *testing.T) {
	store := newTestStore(t)
	r := chi.NewRouter()
	RegisterRoutes(r, store)

	// Create.
	body, _ := json.Marshal(createRequest{UserID: "student-1", Title: "midterm prep"})
	req := httptest.NewRequest(http.MethodPost, "/api/sessions", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rec.Code, rec.Body.String())
	}
	var sess Session
	json.Unmarshal(rec.Body.Bytes(), &sess)

	// List requires a user.
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("list without user = %d, want 400", rec.Code)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions?user=student-1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var sessions []Session
	json.Unmarshal(rec.Body.Bytes(), &sessions)
	if len(sessions) != 1 || sessions[0].ID != sess.ID {
		t.Errorf("sessions = %+v", sessions)
	}

	// Entries of a fresh session is an empty list, not an error.
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions/"+sess.ID+"/entries", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("entries status = %d", rec.Code)
	}

	// Delete, then 404.
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/sessions/"+sess.ID, nil))
	if rec.Code != http.StatusNoContent {
		t.Errorf("delete status = %d, want 204", rec.Code)
	}
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions/"+sess.ID, nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after delete = %d, want 404", rec.Code)
	}
}
