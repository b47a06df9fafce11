package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/slimecats/internal/doc"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 1 - documents table keyed by (workspace, path)
const currentSchemaVersion = 1

// SQLiteBackend stores documents in a SQLite file.
// Uses WAL mode so reads do not block the single writer.
type SQLiteBackend struct {
	db *sql.DB
}

var _ Backend = (*SQLiteBackend)(nil)

// OpenSQLite creates or opens a SQLite database at path.
// Applies required pragmas and the schema automatically.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//
// This function is idempotent - safe to call multiple times.
func OpenSQLite(path string) (*SQLiteBackend, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &SQLiteBackend{db: db}, nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema creates tables if they don't exist and records the version.
// This function is idempotent.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}
	if version > currentSchemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d", version, currentSchemaVersion)
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (b *SQLiteBackend) verifyPragma(name, expected string) error {
	var value string
	if err := b.db.QueryRow(fmt.Sprintf("PRAGMA %s", name)).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}

func (b *SQLiteBackend) Get(ctx context.Context, workspace, path string) (doc.Document, bool, error) {
	row := b.db.QueryRowContext(ctx, `
		SELECT format, workspace, path, content_hash, content, author, timestamp, signature
		FROM documents
		WHERE workspace = ? AND path = ?
	`, workspace, path)

	d, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return doc.Document{}, false, nil
	}
	if err != nil {
		return doc.Document{}, false, fmt.Errorf("get document: %w", err)
	}
	return d, true, nil
}

// Upsert relies on SQLite row-value comparison with BINARY collation, which
// matches doc.Compare: (timestamp, content_hash, signature) lexicographically.
func (b *SQLiteBackend) Upsert(ctx context.Context, d doc.Document) (bool, error) {
	result, err := b.db.ExecContext(ctx, `
		INSERT INTO documents
		(workspace, path, format, author, content, content_hash, timestamp, signature)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(workspace, path) DO UPDATE SET
			format       = excluded.format,
			author       = excluded.author,
			content      = excluded.content,
			content_hash = excluded.content_hash,
			timestamp    = excluded.timestamp,
			signature    = excluded.signature
		WHERE (excluded.timestamp, excluded.content_hash, excluded.signature)
			> (documents.timestamp, documents.content_hash, documents.signature)
	`,
		d.Workspace,
		d.Path,
		d.Format,
		d.Author,
		d.Content,
		d.ContentHash,
		d.Timestamp,
		d.Signature,
	)
	if err != nil {
		return false, fmt.Errorf("upsert document: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("upsert document: rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// Paths scans forward from prefix in path order and stops at the first path
// that no longer shares it. Avoids LIKE, whose wildcards are legal path
// characters.
func (b *SQLiteBackend) Paths(ctx context.Context, workspace, prefix string) ([]string, error) {
	rows, err := b.db.QueryContext(ctx, `
		SELECT path FROM documents
		WHERE workspace = ? AND path >= ?
		ORDER BY path COLLATE BINARY ASC
	`, workspace, prefix)
	if err != nil {
		return nil, fmt.Errorf("query paths: %w", err)
	}
	defer rows.Close()

	paths := []string{}
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scan path: %w", err)
		}
		if !strings.HasPrefix(p, prefix) {
			break
		}
		paths = append(paths, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate paths: %w", err)
	}
	return paths, nil
}

func (b *SQLiteBackend) Documents(ctx context.Context, workspace, prefix string) ([]doc.Document, error) {
	rows, err := b.db.QueryContext(ctx, `
		SELECT format, workspace, path, content_hash, content, author, timestamp, signature
		FROM documents
		WHERE workspace = ? AND path >= ?
		ORDER BY path COLLATE BINARY ASC
	`, workspace, prefix)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	docs := []doc.Document{}
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		if !strings.HasPrefix(d.Path, prefix) {
			break
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return docs, nil
}

// Close closes the database connection, checkpointing the WAL.
func (b *SQLiteBackend) Close() error {
	if b.db == nil {
		return nil
	}
	return b.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(s scanner) (doc.Document, error) {
	var d doc.Document
	err := s.Scan(&d.Format, &d.Workspace, &d.Path, &d.ContentHash, &d.Content, &d.Author, &d.Timestamp, &d.Signature)
	return d, err
}
