package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestAppStateStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "state.json")
	store := NewFileAppStateStore(path)

	state, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if state.SortMode != "" || state.EmailMode != "" {
		t.Fatalf("expected empty state, got %+v", state)
	}

	state.SortMode = "ranking-desc"
	state.EmailMode = "draft"
	state.LastUploadPath = "/tmp/companies.csv"
	if err := store.Save(ctx, state); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if *loaded != *state {
		t.Fatalf("unexpected reload state %+v", loaded)
	}
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected temp files to be cleaned up, got %d entries", len(entries))
	}
}

func TestAppStateStoreEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	state, err := NewFileAppStateStore(path).Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if state.SortMode != "" {
		t.Fatalf("expected zero state")
	}
}

func TestAppStateStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := NewFileAppStateStore(path).Load(context.Background()); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestAppStateStoreSaveRequiresState(t *testing.T) {
	store := NewFileAppStateStore(filepath.Join(t.TempDir(), "state.json"))
	if err := store.Save(context.Background(), nil); err == nil {
		t.Fatalf("expected error for nil state")
	}
}
