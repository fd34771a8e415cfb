package history

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"codeberg.org/snonux/treetranslate/internal/batch"
	"codeberg.org/snonux/treetranslate/internal/scan"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "state", "history.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testSummary(id string, started time.Time) batch.Summary {
	return batch.Summary{
		RunID:      id,
		TotalFiles: 2,
		Succeeded:  1,
		Failed:     1,
		StartedAt:  started,
		FinishedAt: started.Add(time.Minute),
		Outcomes: []batch.FileOutcome{
			{Task: scan.NewFileTask("/in/a.xml", "a.xml", "/out"), Status: batch.StatusTranslated, Attempts: 1},
			{Task: scan.NewFileTask("/in/sub/b.xml", filepath.Join("sub", "b.xml"), "/out"), Status: batch.StatusFallback, Attempts: 5, Err: errors.New("retries exhausted")},
		},
	}
}

func TestRecordAndList(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	meta := Meta{InputRoot: "/in", OutputRoot: "/out", Language: "German", Provider: "gemini"}

	base := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	if err := store.Record(ctx, testSummary("run-1", base), meta); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if err := store.Record(ctx, testSummary("run-2", base.Add(time.Hour)), meta); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	runs, err := store.List(ctx, 10)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("Expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != "run-2" {
		t.Errorf("Expected newest run first, got %s", runs[0].ID)
	}

	r := runs[1]
	if r.Total != 2 || r.Succeeded != 1 || r.Failed != 1 || r.Cancelled {
		t.Errorf("Unexpected counters %+v", r)
	}
	if r.Language != "German" || r.Provider != "gemini" || r.InputRoot != "/in" {
		t.Errorf("Unexpected meta %+v", r.Meta)
	}
	if !r.StartedAt.Equal(base) {
		t.Errorf("StartedAt = %v, want %v", r.StartedAt, base)
	}

	limited, err := store.List(ctx, 1)
	if err != nil || len(limited) != 1 {
		t.Errorf("List(1) = %d runs, %v", len(limited), err)
	}
}

func TestFiles(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Record(ctx, testSummary("run-1", time.Now()), Meta{}); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	files, err := store.Files(ctx, "run-1")
	if err != nil {
		t.Fatalf("Files failed: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("Expected 2 files, got %d", len(files))
	}
	if files[0].RelPath != "a.xml" || files[0].Status != "translated" || files[0].Error != "" {
		t.Errorf("Unexpected first file %+v", files[0])
	}
	if files[1].RelPath != "sub/b.xml" || files[1].Status != "fallback" || files[1].Attempts != 5 || files[1].Error != "retries exhausted" {
		t.Errorf("Unexpected second file %+v", files[1])
	}
}

func TestRecord_DuplicateID(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Record(ctx, testSummary("dup", time.Now()), Meta{}); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if err := store.Record(ctx, testSummary("dup", time.Now()), Meta{}); err == nil {
		t.Error("Expected error for duplicate run id")
	}

	files, err := store.Files(ctx, "dup")
	if err != nil || len(files) != 2 {
		t.Errorf("Failed insert should roll back, got %d files (%v)", len(files), err)
	}
}

func TestDefaultPath(t *testing.T) {
	if filepath.Base(DefaultPath()) != "history.db" {
		t.Errorf("Unexpected default path %s", DefaultPath())
	}
}
