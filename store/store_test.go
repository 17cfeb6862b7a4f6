//go:build cgo

package store

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// ---------------------------------------------------------------------------
// Schema / construction
// ---------------------------------------------------------------------------

func TestNew(t *testing.T) {
	s := newTestStore(t)
	if s.DB() == nil {
		t.Fatal("expected non-nil *sql.DB")
	}
}

func TestNewCreatesParentDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "sub", "dir")
	dbPath := filepath.Join(dir, "test.db")
	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("creating store in nested dir: %v", err)
	}
	s.Close()
}

// ---------------------------------------------------------------------------
// Document CRUD
// ---------------------------------------------------------------------------

func sampleDoc(path string) Document {
	return Document{
		Path:        path,
		Filename:    "test.pdf",
		Format:      "pdf",
		ContentHash: "abc123",
		Status:      "pending",
	}
}

func TestUpsertAndGetDocument(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	doc := sampleDoc("/tmp/test.pdf")
	id, err := s.UpsertDocument(ctx, doc)
	if err != nil {
		t.Fatalf("upserting document: %v", err)
	}
	if id == 0 {
		t.Fatal("expected non-zero document id")
	}

	got, err := s.GetDocumentByPath(ctx, "/tmp/test.pdf")
	if err != nil {
		t.Fatalf("getting document by path: %v", err)
	}
	if got.ContentHash != "abc123" {
		t.Errorf("content hash = %q, want %q", got.ContentHash, "abc123")
	}
	if got.Status != "pending" {
		t.Errorf("status = %q, want pending", got.Status)
	}
}

func TestUpsertDocumentUpdatesExisting(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id1, err := s.UpsertDocument(ctx, sampleDoc("/tmp/a.pdf"))
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	updated := sampleDoc("/tmp/a.pdf")
	updated.ContentHash = "def456"
	updated.Status = "generated"
	id2, err := s.UpsertDocument(ctx, updated)
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if id1 != id2 {
		t.Errorf("upsert created a new row: %d vs %d", id1, id2)
	}

	got, err := s.GetDocumentByPath(ctx, "/tmp/a.pdf")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ContentHash != "def456" || got.Status != "generated" {
		t.Errorf("got %+v, want updated hash and status", got)
	}
}

func TestUpdateDocumentStatus(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.UpsertDocument(ctx, sampleDoc("/tmp/b.pdf"))
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := s.UpdateDocumentStatus(ctx, id, "generated"); err != nil {
		t.Fatalf("update status: %v", err)
	}
	got, err := s.GetDocumentByPath(ctx, "/tmp/b.pdf")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != "generated" {
		t.Errorf("status = %q, want generated", got.Status)
	}
}

func TestListDocuments(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, p := range []string{"/tmp/1.pdf", "/tmp/2.pdf", "/tmp/3.pdf"} {
		if _, err := s.UpsertDocument(ctx, sampleDoc(p)); err != nil {
			t.Fatalf("upsert %s: %v", p, err)
		}
	}
	docs, err := s.ListDocuments(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(docs) != 3 {
		t.Errorf("got %d documents, want 3", len(docs))
	}
}

// ---------------------------------------------------------------------------
// Outline cache
// ---------------------------------------------------------------------------

func TestOutlineCacheRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	const jsonBody = `{"slides":[{"layout_idx":0,"title":"Hi"}]}`
	if err := s.SaveOutline(ctx, "hash1", "gpt-4o-mini", jsonBody); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.GetOutline(ctx, "hash1", "gpt-4o-mini")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.OutlineJSON != jsonBody {
		t.Errorf("outline json = %q", got.OutlineJSON)
	}
}

func TestOutlineCacheMiss(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Wrong hash and wrong model are both misses.
	if err := s.SaveOutline(ctx, "hash1", "model-a", "{}"); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := s.GetOutline(ctx, "hash2", "model-a"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("wrong hash: err = %v, want sql.ErrNoRows", err)
	}
	if _, err := s.GetOutline(ctx, "hash1", "model-b"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("wrong model: err = %v, want sql.ErrNoRows", err)
	}
}

func TestOutlineCacheReplace(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.SaveOutline(ctx, "h", "m", `{"v":1}`); err != nil {
		t.Fatalf("save 1: %v", err)
	}
	if err := s.SaveOutline(ctx, "h", "m", `{"v":2}`); err != nil {
		t.Fatalf("save 2: %v", err)
	}
	got, err := s.GetOutline(ctx, "h", "m")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.OutlineJSON != `{"v":2}` {
		t.Errorf("outline json = %q, want replacement", got.OutlineJSON)
	}
}

func TestDeleteOutline(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.SaveOutline(ctx, "h", "m", "{}"); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.DeleteOutline(ctx, "h", "m"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.GetOutline(ctx, "h", "m"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("err = %v, want sql.ErrNoRows after delete", err)
	}
}

// ---------------------------------------------------------------------------
// Image cache
// ---------------------------------------------------------------------------

func TestImageCache(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	img := Image{
		Query:     "solar farm",
		SourceURL: "http://example.com/1.jpg",
		LocalPath: "/tmp/solar_farm_abc.jpg",
		Width:     1200,
		Height:    900,
	}
	id, err := s.SaveImage(ctx, img)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if id == 0 {
		t.Fatal("expected non-zero image id")
	}

	got, err := s.GetImageByQuery(ctx, "solar farm")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.LocalPath != img.LocalPath || got.Width != 1200 {
		t.Errorf("got %+v", got)
	}

	if _, err := s.GetImageByQuery(ctx, "nothing cached"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("miss err = %v, want sql.ErrNoRows", err)
	}
}

func TestImageCacheUpsertSameURL(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	img := Image{Query: "q", SourceURL: "http://x/1.jpg", LocalPath: "/a.jpg"}
	id1, err := s.SaveImage(ctx, img)
	if err != nil {
		t.Fatalf("save 1: %v", err)
	}
	img.LocalPath = "/b.jpg"
	id2, err := s.SaveImage(ctx, img)
	if err != nil {
		t.Fatalf("save 2: %v", err)
	}
	if id1 != id2 {
		t.Errorf("same query+url should update in place: %d vs %d", id1, id2)
	}
	got, err := s.GetImageByQuery(ctx, "q")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.LocalPath != "/b.jpg" {
		t.Errorf("local path = %q, want replacement", got.LocalPath)
	}
}
