package store

// schemaSQL is the DDL for all tables.
const schemaSQL = `
-- Source PDFs, identified by content hash so renames and copies
-- still hit the cache
CREATE TABLE IF NOT EXISTS documents (
    doc_hash TEXT PRIMARY KEY,
    path TEXT NOT NULL,
    pages INTEGER NOT NULL,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- One transcription per (document, page, model). Re-running a convert
-- with the same model reads from here instead of the API.
CREATE TABLE IF NOT EXISTS transcriptions (
    id INTEGER PRIMARY KEY,
    doc_hash TEXT NOT NULL REFERENCES documents(doc_hash) ON DELETE CASCADE,
    page INTEGER NOT NULL,
    model TEXT NOT NULL,
    markdown TEXT NOT NULL,
    prompt_tokens INTEGER DEFAULT 0,
    completion_tokens INTEGER DEFAULT 0,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    UNIQUE(doc_hash, page, model)
);

-- Indexes
CREATE INDEX IF NOT EXISTS idx_transcriptions_doc ON transcriptions(doc_hash);
CREATE INDEX IF NOT EXISTS idx_transcriptions_model ON transcriptions(model);
`
