// Package store caches page transcriptions in SQLite so aborted or
// repeated conversions do not re-pay vision API calls.
package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Document represents a row in the documents table.
type Document struct {
	DocHash   string `json:"doc_hash"`
	Path      string `json:"path"`
	Pages     int    `json:"pages"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// Transcription represents a row in the transcriptions table.
type Transcription struct {
	DocHash          string `json:"doc_hash"`
	Page             int    `json:"page"`
	Model            string `json:"model"`
	Markdown         string `json:"markdown"`
	PromptTokens     int    `json:"prompt_tokens"`
	CompletionTokens int    `json:"completion_tokens"`
}

// Store wraps the SQLite database for all mdmend persistence.
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

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// HashFile returns the hex SHA-256 of the file's content, the document
// key used throughout the cache.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("hashing %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hashing %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// RegisterDocument records (or refreshes) a document row.
func (s *Store) RegisterDocument(ctx context.Context, docHash, path string, pages int) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (doc_hash, path, pages)
		VALUES (?, ?, ?)
		ON CONFLICT(doc_hash) DO UPDATE SET
			path = excluded.path,
			pages = excluded.pages,
			updated_at = CURRENT_TIMESTAMP
	`, docHash, path, pages)
	if err != nil {
		return fmt.Errorf("registering document: %w", err)
	}
	return nil
}

// GetDocument fetches a document row by hash.
func (s *Store) GetDocument(ctx context.Context, docHash string) (*Document, error) {
	var d Document
	err := s.db.QueryRowContext(ctx, `
		SELECT doc_hash, path, pages, created_at, updated_at
		FROM documents WHERE doc_hash = ?
	`, docHash).Scan(&d.DocHash, &d.Path, &d.Pages, &d.CreatedAt, &d.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetching document: %w", err)
	}
	return &d, nil
}

// GetPage fetches a cached transcription. The bool reports a cache hit.
func (s *Store) GetPage(ctx context.Context, docHash string, page int, model string) (string, bool, error) {
	var md string
	err := s.db.QueryRowContext(ctx, `
		SELECT markdown FROM transcriptions
		WHERE doc_hash = ? AND page = ? AND model = ?
	`, docHash, page, model).Scan(&md)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("fetching transcription: %w", err)
	}
	return md, true, nil
}

// PutPage stores a transcription, replacing any previous entry for the
// same (document, page, model).
func (s *Store) PutPage(ctx context.Context, t Transcription) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transcriptions (doc_hash, page, model, markdown, prompt_tokens, completion_tokens)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(doc_hash, page, model) DO UPDATE SET
			markdown = excluded.markdown,
			prompt_tokens = excluded.prompt_tokens,
			completion_tokens = excluded.completion_tokens,
			created_at = CURRENT_TIMESTAMP
	`, t.DocHash, t.Page, t.Model, t.Markdown, t.PromptTokens, t.CompletionTokens)
	if err != nil {
		return fmt.Errorf("storing transcription: %w", err)
	}
	return nil
}

// CountPages returns how many pages of a document are already cached
// for the given model.
func (s *Store) CountPages(ctx context.Context, docHash, model string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM transcriptions WHERE doc_hash = ? AND model = ?
	`, docHash, model).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting transcriptions: %w", err)
	}
	return n, nil
}

// TokenTotals sums cached token usage for a document and model.
func (s *Store) TokenTotals(ctx context.Context, docHash, model string) (prompt, completion int, err error) {
	err = s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(prompt_tokens), 0), COALESCE(SUM(completion_tokens), 0)
		FROM transcriptions WHERE doc_hash = ? AND model = ?
	`, docHash, model).Scan(&prompt, &completion)
	if err != nil {
		return 0, 0, fmt.Errorf("summing token usage: %w", err)
	}
	return prompt, completion, nil
}

// PurgeDocument removes a document and all of its transcriptions.
func (s *Store) PurgeDocument(ctx context.Context, docHash string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE doc_hash = ?`, docHash); err != nil {
		return fmt.Errorf("purging document: %w", err)
	}
	return nil
}
