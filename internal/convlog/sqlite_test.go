package convlog

import (
	"context"
	"path/filepath"
	"testing"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "conversation.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteAppendAndRecent(t *testing.T) {
	ctx := context.Background()
	store := newTestSQLiteStore(t)

	for _, msg := range []string{"A", "B", "C", "D"} {
		if _, err := store.Append(ctx, msg, "re:"+msg); err != nil {
			t.Fatalf("Append(%q) error = %v", msg, err)
		}
	}

	turns, err := store.Recent(ctx, 3)
	if err != nil {
		t.Fatalf("Recent error = %v", err)
	}
	if len(turns) != 3 {
		t.Fatalf("len(turns) = %d, want 3", len(turns))
	}
	for i, want := range []string{"B", "C", "D"} {
		if turns[i].UserText != want {
			t.Fatalf("turns[%d].UserText = %q, want %q", i, turns[i].UserText, want)
		}
	}
	if !turns[0].Timestamp.Before(turns[2].Timestamp) && !turns[0].Timestamp.Equal(turns[2].Timestamp) {
		t.Fatalf("timestamps not chronological: %v then %v", turns[0].Timestamp, turns[2].Timestamp)
	}
}

func TestSQLiteIDsStrictlyIncrease(t *testing.T) {
	ctx := context.Background()
	store := newTestSQLiteStore(t)

	var last int64
	for i := 0; i < 4; i++ {
		turn, err := store.Append(ctx, "u", "a")
		if err != nil {
			t.Fatalf("Append error = %v", err)
		}
		if turn.ID <= last {
			t.Fatalf("turn.ID = %d, want > %d", turn.ID, last)
		}
		last = turn.ID
	}
}

func TestSQLiteRecentOnEmptyStore(t *testing.T) {
	store := newTestSQLiteStore(t)
	turns, err := store.Recent(context.Background(), 5)
	if err != nil {
		t.Fatalf("Recent error = %v", err)
	}
	if len(turns) != 0 {
		t.Fatalf("len(turns) = %d, want 0", len(turns))
	}
}

func TestOpenPicksBackend(t *testing.T) {
	ctx := context.Background()

	store, err := Open(ctx, "", "memory")
	if err != nil {
		t.Fatalf("Open(memory) error = %v", err)
	}
	if _, ok := store.(*InMemoryStore); !ok {
		t.Fatalf("Open(memory) = %T, want *InMemoryStore", store)
	}

	path := filepath.Join(t.TempDir(), "conversation.db")
	store, err = Open(ctx, "", path)
	if err != nil {
		t.Fatalf("Open(sqlite) error = %v", err)
	}
	defer store.Close()
	if _, ok := store.(*SQLiteStore); !ok {
		t.Fatalf("Open(sqlite) = %T, want *SQLiteStore", store)
	}
}
