package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/outpost-dev/rlm/internal/chunk"
	"github.com/outpost-dev/rlm/internal/rlmerr"
)

// Store owns the single SQLite connection backing one repository's index.
type Store struct {
	db *sql.DB
}

// Open opens (and, if empty, initializes) the SQLite database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, rlmerr.Wrap(rlmerr.KindStore, "open database", err)
	}
	// chunks_fts's external-content triggers do unordered interleaved
	// writes; a single connection keeps them serialized without relying on
	// SQLite's busy-timeout retry path.
	db.SetMaxOpenConns(1)

	version, err := GetSchemaVersion(db)
	if err != nil {
		db.Close()
		return nil, rlmerr.Wrap(rlmerr.KindStore, "check schema version", err)
	}
	if version == "0" {
		if err := CreateSchema(db); err != nil {
			db.Close()
			return nil, rlmerr.Wrap(rlmerr.KindStore, "create schema", err)
		}
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// queryer is the subset of *sql.DB and *sql.Tx that squirrel's RunWith
// needs. Store methods that must compose into a larger WriteBatch
// transaction take one of these instead of assuming s.db directly.
type queryer interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

// UpsertFile inserts or updates a file record by path, returning its id.
func (s *Store) UpsertFile(f chunk.File) (int64, error) {
	return s.upsertFile(s.db, f)
}

func (s *Store) upsertFile(q queryer, f chunk.File) (int64, error) {
	spans, err := json.Marshal(f.ErrorSpans)
	if err != nil {
		return 0, rlmerr.Wrap(rlmerr.KindStore, "marshal error spans", err)
	}

	_, err = sq.Insert("files").
		Columns("path", "hash", "size", "language", "parse_quality", "error_spans").
		Values(f.Path, f.Hash, f.Size, string(f.Language), string(f.ParseQuality), string(spans)).
		Suffix(`ON CONFLICT(path) DO UPDATE SET
			hash = excluded.hash,
			size = excluded.size,
			language = excluded.language,
			parse_quality = excluded.parse_quality,
			error_spans = excluded.error_spans`).
		RunWith(q).
		Exec()
	if err != nil {
		return 0, rlmerr.Wrap(rlmerr.KindStore, fmt.Sprintf("upsert file %s", f.Path), err)
	}

	existing, err := s.getFileByPath(q, f.Path)
	if err != nil {
		return 0, err
	}
	return existing.ID, nil
}

// DeleteFile removes a file and (via ON DELETE CASCADE) its chunks.
func (s *Store) DeleteFile(path string) error {
	_, err := sq.Delete("files").Where(sq.Eq{"path": path}).RunWith(s.db).Exec()
	if err != nil {
		return rlmerr.Wrap(rlmerr.KindStore, fmt.Sprintf("delete file %s", path), err)
	}
	return nil
}

// ListFilePaths returns every indexed file's path, used to detect files that
// disappeared between ingestion runs.
func (s *Store) ListFilePaths() ([]string, error) {
	rows, err := sq.Select("path").From("files").RunWith(s.db).Query()
	if err != nil {
		return nil, rlmerr.Wrap(rlmerr.KindStore, "list file paths", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, rlmerr.Wrap(rlmerr.KindStore, "scan file path", err)
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

func (s *Store) GetFileByPath(path string) (chunk.File, error) {
	return s.getFileByPath(s.db, path)
}

func (s *Store) getFileByPath(q queryer, path string) (chunk.File, error) {
	row := sq.Select("id", "path", "hash", "size", "language", "parse_quality", "error_spans").
		From("files").Where(sq.Eq{"path": path}).RunWith(q).QueryRow()
	return scanFile(row)
}

func (s *Store) GetFileByID(id int64) (chunk.File, error) {
	row := sq.Select("id", "path", "hash", "size", "language", "parse_quality", "error_spans").
		From("files").Where(sq.Eq{"id": id}).RunWith(s.db).QueryRow()
	return scanFile(row)
}

func scanFile(row sq.RowScanner) (chunk.File, error) {
	var f chunk.File
	var lang, quality, spans string
	if err := row.Scan(&f.ID, &f.Path, &f.Hash, &f.Size, &lang, &quality, &spans); err != nil {
		if err == sql.ErrNoRows {
			return chunk.File{}, rlmerr.New(rlmerr.KindNotFound, "file not found")
		}
		return chunk.File{}, rlmerr.Wrap(rlmerr.KindStore, "scan file", err)
	}
	f.Language = chunk.Language(lang)
	f.ParseQuality = chunk.ParseQuality(quality)
	_ = json.Unmarshal([]byte(spans), &f.ErrorSpans)
	return f, nil
}

// ReplaceChunks atomically replaces every chunk belonging to fileID with the
// given set, resolving each Chunk.ParentID ordinal (spec's parent-pointer
// convention, see chunk.Chunk) into the persisted row id of the chunk that
// ordinal refers to, within the same transaction, before any reader can see
// a half-written state.
func (s *Store) ReplaceChunks(fileID int64, chunks []chunk.Chunk) error {
	tx, err := s.db.Begin()
	if err != nil {
		return rlmerr.Wrap(rlmerr.KindStore, "begin replace chunks", err)
	}
	defer tx.Rollback()

	if err := s.replaceChunks(tx, fileID, chunks); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return rlmerr.Wrap(rlmerr.KindStore, "commit replace chunks", err)
	}
	return nil
}

func (s *Store) replaceChunks(q queryer, fileID int64, chunks []chunk.Chunk) error {
	if _, err := sq.Delete("chunks").Where(sq.Eq{"file_id": fileID}).RunWith(q).Exec(); err != nil {
		return rlmerr.Wrap(rlmerr.KindStore, "clear chunks", err)
	}

	ids := make([]int64, len(chunks))
	for i, c := range chunks {
		var parentID any
		if c.ParentID > 0 {
			ordinal := int(c.ParentID) - 1
			if ordinal < 0 || ordinal >= len(chunks) {
				return rlmerr.New(rlmerr.KindStore, "chunk parent ordinal out of range")
			}
			if ids[ordinal] == 0 {
				return rlmerr.New(rlmerr.KindStore, "chunk parent not yet inserted")
			}
			parentID = ids[ordinal]
		}

		res, err := sq.Insert("chunks").
			Columns("file_id", "kind", "identifier", "start_line", "end_line", "start_byte", "end_byte",
				"content", "signature", "doc", "attr", "ui_context", "parent_id").
			Values(fileID, string(c.Kind), c.Identifier, c.StartLine, c.EndLine, c.StartByte, c.EndByte,
				c.Content, c.Signature, c.Doc, c.Attr, c.UIContext, parentID).
			RunWith(q).
			Exec()
		if err != nil {
			return rlmerr.Wrap(rlmerr.KindStore, "insert chunk", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return rlmerr.Wrap(rlmerr.KindStore, "chunk last insert id", err)
		}
		ids[i] = id
	}

	return nil
}

// FileUpdate is one file's record plus its freshly extracted chunks, the
// unit WriteBatch commits.
type FileUpdate struct {
	File   chunk.File
	Chunks []chunk.Chunk
}

// WriteBatch commits UpsertFile+ReplaceChunks for every update in one
// transaction, so the single writer pays one commit per N files (spec
// §4.4 step 3's batching) instead of one per file.
func (s *Store) WriteBatch(updates []FileUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return rlmerr.Wrap(rlmerr.KindStore, "begin write batch", err)
	}
	defer tx.Rollback()

	for _, u := range updates {
		fileID, err := s.upsertFile(tx, u.File)
		if err != nil {
			return err
		}
		if err := s.replaceChunks(tx, fileID, u.Chunks); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return rlmerr.Wrap(rlmerr.KindStore, "commit write batch", err)
	}
	return nil
}
