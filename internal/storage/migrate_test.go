package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"
)

func TestMigrateRoundTripCompatibility(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "migrate-roundtrip.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	if err := MigrateUp(db); err != nil {
		t.Fatalf("first migrate up failed: %v", err)
	}
	if err := MigrateUp(db); err != nil {
		t.Fatalf("repeated migrate up failed: %v", err)
	}

	if v, err := Version(db); err != nil || v != "0002" {
		t.Fatalf("expected version 0002, got %q (%v)", v, err)
	}

	if err := MigrateDown(db); err != nil {
		t.Fatalf("migrate down failed: %v", err)
	}
	if v, err := Version(db); err != nil || v != "" {
		t.Fatalf("expected empty version after down, got %q (%v)", v, err)
	}

	if err := MigrateUp(db); err != nil {
		t.Fatalf("second migrate up failed: %v", err)
	}

	repo, err := NewSQLiteRepository(db)
	if err != nil {
		t.Fatalf("new repo: %v", err)
	}

	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	if err := repo.CreateTask(context.Background(), Task{
		ID:           "task-rt-1",
		Title:        "Roundtrip task",
		ReminderHour: 9,
		IsActive:     true,
		CreatedAt:    now,
	}); err != nil {
		t.Fatalf("insert after roundtrip failed: %v", err)
	}

	got, err := repo.GetTask(context.Background(), "task-rt-1")
	if err != nil {
		t.Fatalf("get after roundtrip failed: %v", err)
	}
	if got.Title != "Roundtrip task" {
		t.Fatalf("unexpected title after roundtrip: %q", got.Title)
	}
}

func TestMigrationsRejectOutOfRangeReminder(t *testing.T) {
	repo := setupRepo(t)
	err := repo.CreateTask(context.Background(), Task{
		ID:           "bad-hour",
		Title:        "Bad",
		ReminderHour: 24,
		CreatedAt:    time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC),
	})
	if err == nil {
		t.Fatal("expected check constraint violation for hour 24")
	}
}

func TestMigrationVersionFromFileName(t *testing.T) {
	cases := map[string]string{
		"migrations/0001_init.up.sql":    "0001",
		"migrations/0002_visits.down.sql": "0002",
		"migrations/0003.up.sql":          "0003",
	}
	for name, want := range cases {
		if got := migrationVersion(name); got != want {
			t.Fatalf("migrationVersion(%q) = %q, want %q", name, got, want)
		}
	}
}
