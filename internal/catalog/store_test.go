package catalog

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/opencontainers/go-digest"

	"spool/internal/video"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "frames", "catalog.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestPutHasGetRemove(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	fp := digest.FromString("frame-a")
	entry := Entry{
		Fingerprint: fp,
		Format:      video.FormatRGBA16F,
		RelPath:     fp.Encoded() + ".exr",
		SizeBytes:   4096,
	}
	if err := store.Put(ctx, entry); err != nil {
		t.Fatalf("put: %v", err)
	}

	ok, err := store.Has(ctx, fp, video.FormatRGBA16F)
	if err != nil || !ok {
		t.Fatalf("has = %v, %v; want true", ok, err)
	}

	// Same fingerprint, other format: distinct entry.
	ok, err = store.Has(ctx, fp, video.FormatRGBA8)
	if err != nil || ok {
		t.Fatalf("has other format = %v, %v; want false", ok, err)
	}

	got, err := store.Get(ctx, fp, video.FormatRGBA16F)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.RelPath != entry.RelPath || got.SizeBytes != 4096 {
		t.Fatalf("get = %+v", got)
	}
	if got.CreatedAt.IsZero() {
		t.Fatal("created_at should be defaulted on put")
	}

	if err := store.Remove(ctx, fp, video.FormatRGBA16F); err != nil {
		t.Fatalf("remove: %v", err)
	}
	got, err = store.Get(ctx, fp, video.FormatRGBA16F)
	if err != nil {
		t.Fatalf("get after remove: %v", err)
	}
	if got != nil {
		t.Fatalf("entry survived removal: %+v", got)
	}

	// Removing again is not an error.
	if err := store.Remove(ctx, fp, video.FormatRGBA16F); err != nil {
		t.Fatalf("second remove: %v", err)
	}
}

func TestPutRejectsEmptyFingerprint(t *testing.T) {
	store := openTestStore(t)
	if err := store.Put(context.Background(), Entry{Format: video.FormatRGBA8}); err == nil {
		t.Fatal("expected error for empty fingerprint")
	}
}

func TestListAndTotalSize(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	older := Entry{
		Fingerprint: digest.FromString("older"),
		Format:      video.FormatRGBA8,
		RelPath:     "older.jpg",
		SizeBytes:   100,
		CreatedAt:   time.Now().UTC().Add(-time.Hour),
	}
	newer := Entry{
		Fingerprint: digest.FromString("newer"),
		Format:      video.FormatRGBA8,
		RelPath:     "newer.jpg",
		SizeBytes:   200,
	}
	if err := store.Put(ctx, older); err != nil {
		t.Fatalf("put older: %v", err)
	}
	if err := store.Put(ctx, newer); err != nil {
		t.Fatalf("put newer: %v", err)
	}

	entries, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("list len = %d", len(entries))
	}
	if entries[0].RelPath != "older.jpg" {
		t.Fatalf("list not ordered oldest first: %+v", entries)
	}

	total, err := store.TotalSize(ctx)
	if err != nil || total != 300 {
		t.Fatalf("total = %d, %v; want 300", total, err)
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	total, err = store.TotalSize(ctx)
	if err != nil || total != 0 {
		t.Fatalf("total after clear = %d, %v", total, err)
	}
}

func TestReopenKeepsEntries(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.db")

	store, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	fp := digest.FromString("persistent")
	if err := store.Put(context.Background(), Entry{
		Fingerprint: fp, Format: video.FormatRGB32F, RelPath: "p.exr",
	}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	ok, err := reopened.Has(context.Background(), fp, video.FormatRGB32F)
	if err != nil || !ok {
		t.Fatalf("entry lost across reopen: %v, %v", ok, err)
	}
}
