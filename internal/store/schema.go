// Package store is the Chunk Store (spec §4.5 and §3): a single SQLite
// database holding file and chunk records plus an FTS5 index kept in sync by
// triggers. Every read and write goes through one *sql.DB limited to a
// single open connection, so reads do not run concurrently with each other
// or with a write.
package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schemaVersion = "1"

// CreateSchema creates every table, index, virtual table and trigger this
// store needs. Safe to call against an empty database only; callers check
// GetSchemaVersion first.
func CreateSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin schema transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("enable foreign keys: %w", err)
	}

	statements := []string{
		createFilesTable,
		createChunksTable,
		createMetaTable,
		createChunksIndexes,
		createFileIndexes,
	}
	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i, err)
		}
	}

	if _, err := tx.Exec(`INSERT INTO meta(key, value) VALUES ('schema_version', ?)`, schemaVersion); err != nil {
		return fmt.Errorf("bootstrap meta: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema transaction: %w", err)
	}

	// FTS5 virtual tables and their sync triggers must be created outside the
	// surrounding transaction.
	if _, err := db.Exec(createChunksFTSTable); err != nil {
		return fmt.Errorf("create chunks_fts: %w", err)
	}
	if err := createFTSTriggers(db); err != nil {
		return fmt.Errorf("create FTS triggers: %w", err)
	}

	return nil
}

// GetSchemaVersion returns the stored schema_version, or "0" for a database
// that hasn't been initialized yet.
func GetSchemaVersion(db *sql.DB) (string, error) {
	var exists int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='meta'`).Scan(&exists)
	if err != nil {
		return "", fmt.Errorf("check meta table: %w", err)
	}
	if exists == 0 {
		return "0", nil
	}

	var version string
	err = db.QueryRow(`SELECT value FROM meta WHERE key = 'schema_version'`).Scan(&version)
	if err == sql.ErrNoRows {
		return "0", nil
	}
	if err != nil {
		return "", fmt.Errorf("query schema_version: %w", err)
	}
	return version, nil
}

const createFilesTable = `
CREATE TABLE files (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    path          TEXT NOT NULL UNIQUE,
    hash          TEXT NOT NULL,
    size          INTEGER NOT NULL DEFAULT 0,
    language      TEXT NOT NULL,
    parse_quality TEXT NOT NULL DEFAULT 'not-parsed',
    error_spans   TEXT NOT NULL DEFAULT '[]'
)
`

const createChunksTable = `
CREATE TABLE chunks (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    file_id     INTEGER NOT NULL REFERENCES files(id) ON DELETE CASCADE,
    kind        TEXT NOT NULL,
    identifier  TEXT NOT NULL DEFAULT '',
    start_line  INTEGER NOT NULL,
    end_line    INTEGER NOT NULL,
    start_byte  INTEGER NOT NULL,
    end_byte    INTEGER NOT NULL,
    content     TEXT NOT NULL,
    signature   TEXT NOT NULL DEFAULT '',
    doc         TEXT NOT NULL DEFAULT '',
    attr        TEXT NOT NULL DEFAULT '',
    ui_context  TEXT NOT NULL DEFAULT '',
    parent_id   INTEGER REFERENCES chunks(id) ON DELETE SET NULL
)
`

const createMetaTable = `
CREATE TABLE meta (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
)
`

const createChunksFTSTable = `
CREATE VIRTUAL TABLE chunks_fts USING fts5(
    identifier,
    content,
    content = 'chunks',
    content_rowid = 'id',
    tokenize = "unicode61 separators '._'"
)
`

const createChunksIndexes = `
CREATE INDEX idx_chunks_file_id ON chunks(file_id);
CREATE INDEX idx_chunks_identifier ON chunks(identifier);
CREATE INDEX idx_chunks_kind ON chunks(kind);
CREATE INDEX idx_chunks_parent_id ON chunks(parent_id)
`

const createFileIndexes = `
CREATE INDEX idx_files_language ON files(language)
`

// createFTSTriggers keeps chunks_fts in sync with chunks via its external
// content mechanism: the row's own rowid is shared, so a delete+insert on
// update is the standard way to refresh the shadow tables.
func createFTSTriggers(db *sql.DB) error {
	triggers := []string{
		`CREATE TRIGGER chunks_fts_insert AFTER INSERT ON chunks BEGIN
			INSERT INTO chunks_fts(rowid, identifier, content) VALUES (new.id, new.identifier, new.content);
		END`,
		`CREATE TRIGGER chunks_fts_delete AFTER DELETE ON chunks BEGIN
			INSERT INTO chunks_fts(chunks_fts, rowid, identifier, content) VALUES ('delete', old.id, old.identifier, old.content);
		END`,
		`CREATE TRIGGER chunks_fts_update AFTER UPDATE ON chunks BEGIN
			INSERT INTO chunks_fts(chunks_fts, rowid, identifier, content) VALUES ('delete', old.id, old.identifier, old.content);
			INSERT INTO chunks_fts(rowid, identifier, content) VALUES (new.id, new.identifier, new.content);
		END`,
	}
	for i, t := range triggers {
		if _, err := db.Exec(t); err != nil {
			return fmt.Errorf("trigger %d: %w", i, err)
		}
	}
	return nil
}
