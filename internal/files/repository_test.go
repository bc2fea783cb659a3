package files

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/filedepot/filedepot/pkg/types"
)

func TestRepository(t *testing.T) {
	repo, err := NewRepository(filepath.Join(t.TempDir(), "files.db"))
	if err != nil {
		t.Fatalf("Failed to open repository: %v", err)
	}
	defer repo.Close()

	ctx := context.Background()
	rec := Record{
		Name:       "report.pdf",
		File:       types.BunnyFile("7d1f-report.pdf"),
		Size:       1024,
		UploadedAt: time.Unix(1724400000, 0).UTC(),
	}

	t.Run("Save", func(t *testing.T) {
		if err := repo.Save(ctx, rec); err != nil {
			t.Fatalf("Failed to save: %v", err)
		}
	})

	t.Run("Get", func(t *testing.T) {
		got, err := repo.Get(ctx, "report.pdf")
		if err != nil {
			t.Fatalf("Failed to get: %v", err)
		}
		if got == nil {
			t.Fatal("Expected a record, got nil")
		}
		// The stored reference must round-trip unchanged
		if *got != rec {
			t.Errorf("Expected %+v, got %+v", rec, *got)
		}
	})

	t.Run("GetMissing", func(t *testing.T) {
		got, err := repo.Get(ctx, "nope.pdf")
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if got != nil {
			t.Errorf("Expected nil for missing record, got %+v", got)
		}
	})

	t.Run("Upsert", func(t *testing.T) {
		updated := rec
		updated.File = types.LocalFile("report.pdf")
		updated.Size = 2048
		if err := repo.Save(ctx, updated); err != nil {
			t.Fatalf("Failed to upsert: %v", err)
		}

		got, err := repo.Get(ctx, "report.pdf")
		if err != nil {
			t.Fatalf("Failed to get: %v", err)
		}
		if got.File != updated.File || got.Size != 2048 {
			t.Errorf("Expected updated record, got %+v", got)
		}
	})

	t.Run("List", func(t *testing.T) {
		other := Record{
			Name:       "notes.txt",
			File:       types.BunnyFile("91ab-notes.txt"),
			Size:       12,
			UploadedAt: time.Unix(1724403600, 0).UTC(),
		}
		if err := repo.Save(ctx, other); err != nil {
			t.Fatalf("Failed to save: %v", err)
		}

		records, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("Failed to list: %v", err)
		}
		if len(records) != 2 {
			t.Fatalf("Expected 2 records, got %d", len(records))
		}
		if records[0].Name != "report.pdf" || records[1].Name != "notes.txt" {
			t.Errorf("Unexpected order: %s, %s", records[0].Name, records[1].Name)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		if err := repo.Delete(ctx, "report.pdf"); err != nil {
			t.Fatalf("Failed to delete: %v", err)
		}
		got, err := repo.Get(ctx, "report.pdf")
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if got != nil {
			t.Error("Expected record to be gone after delete")
		}
	})
}
