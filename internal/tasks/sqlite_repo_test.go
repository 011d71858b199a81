package tasks

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func newTempDB(t *testing.T) *SQLiteRepo {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	dsn, err := SQLiteFileDSN(dbPath)
	if err != nil {
		t.Fatalf("dsn error: %v", err)
	}
	repo, err := NewSQLiteRepo(dsn)
	if err != nil {
		t.Fatalf("open error: %v", err)
	}
	t.Cleanup(func() {
		_ = repo.Close()
		_ = os.RemoveAll(dir)
	})
	if err := repo.ApplyMigrations(context.Background()); err != nil {
		t.Fatalf("migrate error: %v", err)
	}
	return repo
}

func TestSQLiteRepo_CreateAndList(t *testing.T) {
	repo := newTempDB(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, "", "") // validation
	if err != ErrTitleRequired {
		t.Fatalf("expected ErrTitleRequired, got %v", err)
	}

	a, err := repo.Create(ctx, "first", "")
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	if a.ID == 0 || a.Title != "first" || a.Completed {
		t.Fatalf("bad first task: %+v", a)
	}

	b, err := repo.Create(ctx, "second", "with details")
	if err != nil {
		t.Fatalf("create second: %v", err)
	}
	if b.ID <= a.ID {
		t.Fatalf("expected monotonic IDs: a=%d b=%d", a.ID, b.ID)
	}

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(list))
	}
	if list[0].Title != "first" || list[1].Title != "second" {
		t.Fatalf("unexpected order: %+v", list)
	}
	if list[1].Description != "with details" {
		t.Fatalf("description not stored: %+v", list[1])
	}
}

func TestSQLiteRepo_MigrationsAreIdempotent(t *testing.T) {
	repo := newTempDB(t)
	ctx := context.Background()

	if _, err := repo.Create(ctx, "kept", ""); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.ApplyMigrations(ctx); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected existing rows to survive, got %d", len(list))
	}
}

func TestSQLiteRepo_IDsNotReusedAfterDelete(t *testing.T) {
	repo := newTempDB(t)
	ctx := context.Background()

	a, _ := repo.Create(ctx, "a", "")
	if err := repo.Delete(ctx, a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	b, err := repo.Create(ctx, "b", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if b.ID <= a.ID {
		t.Fatalf("expected id after %d, got %d", a.ID, b.ID)
	}
}
