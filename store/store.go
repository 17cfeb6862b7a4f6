// Package store persists generation state in SQLite: source documents,
// cached outlines and downloaded images.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Document represents a row in the documents table.
type Document struct {
	ID          int64  `json:"id"`
	Path        string `json:"path"`
	Filename    string `json:"filename"`
	Format      string `json:"format"`
	ContentHash string `json:"content_hash"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// Outline represents a cached outline produced for a document.
type Outline struct {
	ID          int64  `json:"id"`
	ContentHash string `json:"content_hash"`
	Model       string `json:"model"`
	OutlineJSON string `json:"outline_json"`
	CreatedAt   string `json:"created_at"`
}

// Image represents a downloaded, validated image.
type Image struct {
	ID        int64  `json:"id"`
	Query     string `json:"query"`
	SourceURL string `json:"source_url"`
	LocalPath string `json:"local_path"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	CreatedAt string `json:"created_at"`
}

// Store wraps the SQLite database for all genslides persistence.
type Store struct {
	db *sql.DB
}

// New opens (or creates) a SQLite database at the given path and
// initialises the schema.
func New(dbPath string) (*Store, error) {
	// Ensure parent directory exists
	dir := filepath.Dir(dbPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	// Connection pool settings for SQLite.
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	s := &Store{db: db}

	// Run pending migrations.
	if err := s.Migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for advanced queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// --- Document operations ---

// UpsertDocument inserts or updates a document record. Returns the document ID.
func (s *Store) UpsertDocument(ctx context.Context, doc Document) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (path, filename, format, content_hash, status)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			filename = excluded.filename,
			format = excluded.format,
			content_hash = excluded.content_hash,
			status = excluded.status,
			updated_at = CURRENT_TIMESTAMP
	`, doc.Path, doc.Filename, doc.Format, doc.ContentHash, doc.Status)
	if err != nil {
		return 0, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	// If UPSERT did an UPDATE, LastInsertId may not reflect the existing row.
	if id == 0 {
		row := s.db.QueryRowContext(ctx, "SELECT id FROM documents WHERE path = ?", doc.Path)
		if err := row.Scan(&id); err != nil {
			return 0, err
		}
	}
	return id, nil
}

// GetDocumentByPath retrieves a document by its file path.
func (s *Store) GetDocumentByPath(ctx context.Context, path string) (*Document, error) {
	doc := &Document{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, path, filename, format, content_hash, status, created_at, updated_at
		FROM documents WHERE path = ?
	`, path).Scan(&doc.ID, &doc.Path, &doc.Filename, &doc.Format,
		&doc.ContentHash, &doc.Status, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// ListDocuments returns all documents ordered by creation time.
func (s *Store) ListDocuments(ctx context.Context) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, path, filename, format, content_hash, status, created_at, updated_at
		FROM documents ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.ID, &d.Path, &d.Filename, &d.Format,
			&d.ContentHash, &d.Status, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// UpdateDocumentStatus sets a document's status field.
func (s *Store) UpdateDocumentStatus(ctx context.Context, id int64, status string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE documents SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		status, id)
	return err
}

// --- Outline cache ---

// SaveOutline caches the outline JSON produced for a (content hash, model)
// pair, replacing any previous entry.
func (s *Store) SaveOutline(ctx context.Context, contentHash, model, outlineJSON string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO outlines (content_hash, model, outline_json)
		VALUES (?, ?, ?)
		ON CONFLICT(content_hash, model) DO UPDATE SET
			outline_json = excluded.outline_json,
			created_at = CURRENT_TIMESTAMP
	`, contentHash, model, outlineJSON)
	return err
}

// GetOutline returns the cached outline for a (content hash, model) pair.
// A miss is reported as sql.ErrNoRows.
func (s *Store) GetOutline(ctx context.Context, contentHash, model string) (*Outline, error) {
	o := &Outline{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, content_hash, model, outline_json, created_at
		FROM outlines WHERE content_hash = ? AND model = ?
	`, contentHash, model).Scan(&o.ID, &o.ContentHash, &o.Model, &o.OutlineJSON, &o.CreatedAt)
	if err != nil {
		return nil, err
	}
	return o, nil
}

// DeleteOutline drops the cached outline for a (content hash, model) pair.
func (s *Store) DeleteOutline(ctx context.Context, contentHash, model string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM outlines WHERE content_hash = ? AND model = ?", contentHash, model)
	return err
}

// --- Image cache ---

// SaveImage records a downloaded image. Returns the row ID.
func (s *Store) SaveImage(ctx context.Context, img Image) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO images (query, source_url, local_path, width, height)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(query, source_url) DO UPDATE SET
			local_path = excluded.local_path,
			width = excluded.width,
			height = excluded.height,
			created_at = CURRENT_TIMESTAMP
	`, img.Query, img.SourceURL, img.LocalPath, img.Width, img.Height)
	if err != nil {
		return 0, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if id == 0 {
		row := s.db.QueryRowContext(ctx,
			"SELECT id FROM images WHERE query = ? AND source_url = ?", img.Query, img.SourceURL)
		if err := row.Scan(&id); err != nil {
			return 0, err
		}
	}
	return id, nil
}

// GetImageByQuery returns the most recently cached image for a query.
// A miss is reported as sql.ErrNoRows.
func (s *Store) GetImageByQuery(ctx context.Context, query string) (*Image, error) {
	img := &Image{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, query, source_url, local_path, width, height, created_at
		FROM images WHERE query = ?
		ORDER BY created_at DESC, id DESC LIMIT 1
	`, query).Scan(&img.ID, &img.Query, &img.SourceURL, &img.LocalPath,
		&img.Width, &img.Height, &img.CreatedAt)
	if err != nil {
		return nil, err
	}
	return img, nil
}
