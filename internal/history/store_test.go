package history

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	path := filepath.Join(t.TempDir(), "stacklume.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open(%s): %v", path, err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStoreRecordAndRecent(t *testing.T) {
	store := openTestStore(t)

	id := uuid.New()
	if err := store.RecordStart(id, 3001, 4242); err != nil {
		t.Fatalf("RecordStart: %v", err)
	}
	if err := store.RecordOutcome(id, "ready", ""); err != nil {
		t.Fatalf("RecordOutcome: %v", err)
	}
	if err := store.RecordEnd(id); err != nil {
		t.Fatalf("RecordEnd: %v", err)
	}

	records, err := store.Recent(10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}

	rec := records[0]
	if rec.ID != id.String() {
		t.Errorf("id = %s, want %s", rec.ID, id)
	}
	if rec.Port != 3001 {
		t.Errorf("port = %d, want 3001", rec.Port)
	}
	if rec.PID != 4242 {
		t.Errorf("pid = %d, want 4242", rec.PID)
	}
	if rec.Outcome != "ready" {
		t.Errorf("outcome = %q, want ready", rec.Outcome)
	}
	if rec.EndedAt == nil {
		t.Error("ended_at not set")
	}
}

func TestStoreRecentOrdering(t *testing.T) {
	store := openTestStore(t)

	ids := make([]uuid.UUID, 3)
	for i := range ids {
		ids[i] = uuid.New()
		if err := store.RecordStart(ids[i], 3001+i, 100+i); err != nil {
			t.Fatalf("RecordStart %d: %v", i, err)
		}
	}

	records, err := store.Recent(2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].StartedAt.Before(records[1].StartedAt) {
		t.Error("records not ordered newest first")
	}
}

func TestStoreFailureOutcomeKeepsDiagnostic(t *testing.T) {
	store := openTestStore(t)

	id := uuid.New()
	if err := store.RecordStart(id, 3001, 1); err != nil {
		t.Fatalf("RecordStart: %v", err)
	}
	if err := store.RecordOutcome(id, "health_timeout", "server never became healthy"); err != nil {
		t.Fatalf("RecordOutcome: %v", err)
	}

	records, err := store.Recent(1)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if records[0].Diagnostic != "server never became healthy" {
		t.Errorf("diagnostic = %q", records[0].Diagnostic)
	}
	if records[0].EndedAt != nil {
		t.Error("ended_at set before RecordEnd")
	}
}
