package store

// schemaSQL is the DDL for all tables.
const schemaSQL = `
-- Source document registry with hash-based change detection
CREATE TABLE IF NOT EXISTS documents (
    id INTEGER PRIMARY KEY,
    path TEXT NOT NULL UNIQUE,
    filename TEXT NOT NULL,
    format TEXT NOT NULL,
    content_hash TEXT NOT NULL,
    status TEXT DEFAULT 'pending',
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Produced outlines, keyed by source content hash and producing model so a
-- re-run against an unchanged document skips the LLM call.
CREATE TABLE IF NOT EXISTS outlines (
    id INTEGER PRIMARY KEY,
    content_hash TEXT NOT NULL,
    model TEXT NOT NULL,
    outline_json TEXT NOT NULL,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    UNIQUE(content_hash, model)
);

-- Downloaded images, keyed by search query and source URL.
CREATE TABLE IF NOT EXISTS images (
    id INTEGER PRIMARY KEY,
    query TEXT NOT NULL,
    source_url TEXT NOT NULL,
    local_path TEXT NOT NULL,
    width INTEGER,
    height INTEGER,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    UNIQUE(query, source_url)
);

-- Indexes
CREATE INDEX IF NOT EXISTS idx_documents_hash ON documents(content_hash);
CREATE INDEX IF NOT EXISTS idx_outlines_hash ON outlines(content_hash);
CREATE INDEX IF NOT EXISTS idx_images_query ON images(query);
`
