package history_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/laurelkeys/kaleidoscopy/internal/history"
)

func openStore(t *testing.T) *history.Store {
	t.Helper()

	store, err := history.Open(filepath.Join(t.TempDir(), "transcript.db"))
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestAppendAndRecent(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	value := 55.0
	if err := store.Append(ctx, "fib(10)", &value, ""); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if err := store.Append(ctx, "def f() 1", nil, ""); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if err := store.Append(ctx, "1 & 2", nil, "1:3: [C001] unknown operator '&'"); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	entries, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("recent failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}

	// Newest first.
	if entries[0].Source != "1 & 2" || entries[0].Err == "" {
		t.Errorf("entry 0: expected the failed line with its diagnostic, got %+v", entries[0])
	}
	if entries[1].Source != "def f() 1" || entries[1].Value.Valid {
		t.Errorf("entry 1: a definition should have no value, got %+v", entries[1])
	}
	if entries[2].Source != "fib(10)" {
		t.Errorf("entry 2: expected fib(10), got %q", entries[2].Source)
	}
	if !entries[2].Value.Valid || entries[2].Value.Float64 != 55 {
		t.Errorf("entry 2: expected value 55, got %+v", entries[2].Value)
	}
}

func TestRecentRespectsLimit(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := store.Append(ctx, "1 + 1", nil, ""); err != nil {
			t.Fatalf("append failed: %v", err)
		}
	}

	entries, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("recent failed: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("expected 2 entries, got %d", len(entries))
	}
}

func TestReopenKeepsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transcript.db")
	ctx := context.Background()

	store, err := history.Open(path)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if err := store.Append(ctx, "42", nil, ""); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	store.Close()

	store, err = history.Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer store.Close()

	entries, err := store.Recent(ctx, 1)
	if err != nil {
		t.Fatalf("recent failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Source != "42" {
		t.Errorf("expected the persisted entry, got %+v", entries)
	}
}
