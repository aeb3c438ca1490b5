package store

import (
	"context"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) Repository {
	t.Helper()
	repo, err := NewSQLite(filepath.Join(t.TempDir(), "widget.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := repo.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	return repo
}

func TestSetGetRoundtrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestStore(t)

	if err := repo.Set(ctx, KeyUserID, "user_abc"); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, ok, err := repo.Get(ctx, KeyUserID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok || got != "user_abc" {
		t.Errorf("got %q (ok=%v), want user_abc", got, ok)
	}
}

func TestGetMissingKey(t *testing.T) {
	ctx := context.Background()
	repo := newTestStore(t)

	_, ok, err := repo.Get(ctx, "nonexistent")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok {
		t.Error("missing key reported as present")
	}
}

func TestSetReplacesValue(t *testing.T) {
	ctx := context.Background()
	repo := newTestStore(t)

	if err := repo.Set(ctx, KeyAgentName, "ava_k"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := repo.Set(ctx, KeyAgentName, "mira"); err != nil {
		t.Fatalf("replace: %v", err)
	}

	got, _, err := repo.Get(ctx, KeyAgentName)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != "mira" {
		t.Errorf("got %q, want mira", got)
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	repo := newTestStore(t)

	if err := repo.Set(ctx, KeyAgentName, "ava_k"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := repo.Delete(ctx, KeyAgentName); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := repo.Get(ctx, KeyAgentName); ok {
		t.Error("deleted key still present")
	}

	// Deleting a missing key is not an error.
	if err := repo.Delete(ctx, KeyAgentName); err != nil {
		t.Errorf("delete missing key: %v", err)
	}
}

func TestWipeClearsAllKeys(t *testing.T) {
	ctx := context.Background()
	repo := newTestStore(t)

	for _, key := range []string{KeyUserID, KeyAgentName, KeyTranscript} {
		if err := repo.Set(ctx, key, "x"); err != nil {
			t.Fatalf("set %s: %v", key, err)
		}
	}

	if err := repo.Wipe(ctx); err != nil {
		t.Fatalf("wipe: %v", err)
	}

	for _, key := range []string{KeyUserID, KeyAgentName, KeyTranscript} {
		if _, ok, _ := repo.Get(ctx, key); ok {
			t.Errorf("key %s survived wipe", key)
		}
	}
}

func TestStateSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "widget.db")

	first, err := NewSQLite(dbPath)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := first.Set(ctx, KeyUserID, "user_persisted"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	second, err := NewSQLite(dbPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer second.Close()

	got, ok, err := second.Get(ctx, KeyUserID)
	if err != nil || !ok || got != "user_persisted" {
		t.Errorf("got %q (ok=%v, err=%v), want user_persisted", got, ok, err)
	}
}

func TestPing(t *testing.T) {
	repo := newTestStore(t)
	if err := repo.Ping(context.Background()); err != nil {
		t.Errorf("ping: %v", err)
	}
}
