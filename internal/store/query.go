package store

import (
	"database/sql"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/outpost-dev/rlm/internal/chunk"
	"github.com/outpost-dev/rlm/internal/rlmerr"
)

func scanChunk(row sq.RowScanner) (chunk.Chunk, error) {
	var c chunk.Chunk
	var kind string
	var parentID sql.NullInt64
	err := row.Scan(&c.ID, &c.FileID, &kind, &c.Identifier, &c.StartLine, &c.EndLine,
		&c.StartByte, &c.EndByte, &c.Content, &c.Signature, &c.Doc, &c.Attr, &c.UIContext, &parentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return chunk.Chunk{}, rlmerr.New(rlmerr.KindNotFound, "chunk not found")
		}
		return chunk.Chunk{}, rlmerr.Wrap(rlmerr.KindStore, "scan chunk", err)
	}
	c.Kind = chunk.Kind(kind)
	if parentID.Valid {
		c.ParentID = parentID.Int64
	}
	return c, nil
}

var chunkColumns = []string{
	"id", "file_id", "kind", "identifier", "start_line", "end_line",
	"start_byte", "end_byte", "content", "signature", "doc", "attr", "ui_context", "parent_id",
}

func (s *Store) queryChunks(b sq.SelectBuilder) ([]chunk.Chunk, error) {
	rows, err := b.RunWith(s.db).Query()
	if err != nil {
		return nil, rlmerr.Wrap(rlmerr.KindStore, "query chunks", err)
	}
	defer rows.Close()

	var result []chunk.Chunk
	for rows.Next() {
		c, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

// GetChunk fetches a single chunk by id.
func (s *Store) GetChunk(id int64) (chunk.Chunk, error) {
	row := sq.Select(chunkColumns...).From("chunks").Where(sq.Eq{"id": id}).RunWith(s.db).QueryRow()
	return scanChunk(row)
}

// ListChunksForFile returns every chunk belonging to fileID, in source order.
func (s *Store) ListChunksForFile(fileID int64) ([]chunk.Chunk, error) {
	return s.queryChunks(sq.Select(chunkColumns...).From("chunks").
		Where(sq.Eq{"file_id": fileID}).OrderBy("start_byte"))
}

// ChildChunks returns the direct children of a chunk (parent-pointer
// relaxation, spec §4.3): chunks nested one level below parentID.
func (s *Store) ChildChunks(parentID int64) ([]chunk.Chunk, error) {
	return s.queryChunks(sq.Select(chunkColumns...).From("chunks").
		Where(sq.Eq{"parent_id": parentID}).OrderBy("start_byte"))
}

// FindByIdentifier resolves a symbol name to its candidate chunks, per spec
// §4.5's find_by_identifier(name, case_sensitive, kinds?). Callers apply the
// disambiguation order from spec §4.6 (exact match, then enclosing scope,
// then earliest line) themselves; this only returns the raw matches.
func (s *Store) FindByIdentifier(identifier string, caseSensitive bool, kinds []chunk.Kind) ([]chunk.Chunk, error) {
	b := sq.Select(chunkColumns...).From("chunks")
	if caseSensitive {
		b = b.Where(sq.Eq{"identifier": identifier})
	} else {
		b = b.Where("identifier = ? COLLATE NOCASE", identifier)
	}
	if len(kinds) > 0 {
		kindValues := make([]string, len(kinds))
		for i, k := range kinds {
			kindValues[i] = string(k)
		}
		b = b.Where(sq.Eq{"kind": kindValues})
	}
	return s.queryChunks(b.OrderBy("start_line"))
}

// FTSResult is one full-text search hit: the matching chunk plus its BM25
// rank (lower is more relevant, per SQLite's convention) and a highlighted
// snippet.
type FTSResult struct {
	Chunk   chunk.Chunk
	Rank    float64
	Snippet string
}

// SearchFullText runs an FTS5 MATCH query over chunk identifiers and
// content, ranked by BM25. Relevance beyond that ranking (spec's Open
// Question on result ordering) is left to SQLite's own bm25() weighting; the
// broker does not re-rank results itself.
func (s *Store) SearchFullText(query string, limit int) ([]FTSResult, error) {
	sqlQuery := `
		SELECT
			chunks.id, chunks.file_id, chunks.kind, chunks.identifier,
			chunks.start_line, chunks.end_line, chunks.start_byte, chunks.end_byte,
			chunks.content, chunks.signature, chunks.doc, chunks.attr, chunks.ui_context, chunks.parent_id,
			rank,
			snippet(chunks_fts, 1, '<mark>', '</mark>', '...', 24) as snippet
		FROM chunks_fts
		INNER JOIN chunks ON chunks_fts.rowid = chunks.id
		WHERE chunks_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`
	rows, err := s.db.Query(sqlQuery, query, limit)
	if err != nil {
		return nil, rlmerr.Wrap(rlmerr.KindStore, "full text search", err)
	}
	defer rows.Close()

	var results []FTSResult
	for rows.Next() {
		var c chunk.Chunk
		var kind string
		var parentID sql.NullInt64
		var rank float64
		var snippetText string
		err := rows.Scan(&c.ID, &c.FileID, &kind, &c.Identifier, &c.StartLine, &c.EndLine,
			&c.StartByte, &c.EndByte, &c.Content, &c.Signature, &c.Doc, &c.Attr, &c.UIContext,
			&parentID, &rank, &snippetText)
		if err != nil {
			return nil, rlmerr.Wrap(rlmerr.KindStore, "scan full text result", err)
		}
		c.Kind = chunk.Kind(kind)
		if parentID.Valid {
			c.ParentID = parentID.Int64
		}
		results = append(results, FTSResult{Chunk: c, Rank: rank, Snippet: snippetText})
	}
	return results, rows.Err()
}

// ScanForReferences finds chunks whose content mentions identifier, via the
// same chunks_fts index SearchFullText uses. This is the best-effort
// reference scan (spec §4.6): it finds textual mentions via the tokenized
// index, not semantically resolved references.
func (s *Store) ScanForReferences(identifier string) ([]chunk.Chunk, error) {
	sqlQuery := `
		SELECT
			chunks.id, chunks.file_id, chunks.kind, chunks.identifier,
			chunks.start_line, chunks.end_line, chunks.start_byte, chunks.end_byte,
			chunks.content, chunks.signature, chunks.doc, chunks.attr, chunks.ui_context, chunks.parent_id
		FROM chunks_fts
		INNER JOIN chunks ON chunks_fts.rowid = chunks.id
		WHERE chunks_fts MATCH ?
		ORDER BY chunks.file_id, chunks.start_byte
	`
	rows, err := s.db.Query(sqlQuery, ftsMatchTerm(identifier))
	if err != nil {
		return nil, rlmerr.Wrap(rlmerr.KindStore, "scan for references", err)
	}
	defer rows.Close()

	var result []chunk.Chunk
	for rows.Next() {
		c, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

// ftsMatchTerm wraps identifier as an FTS5 string literal so characters
// FTS5's query syntax treats specially (-, ", *, column filters) are matched
// literally rather than as query operators.
func ftsMatchTerm(identifier string) string {
	return `"` + strings.ReplaceAll(identifier, `"`, `""`) + `"`
}

// TreeEntry is one row of a file/chunk outline (spec's tree projection).
type TreeEntry struct {
	FilePath string
	Chunk    chunk.Chunk
	Depth    int
}

// TreeView builds the nested outline for one file: every chunk with no
// parent, followed recursively by its children, each tagged with its
// nesting depth.
func (s *Store) TreeView(fileID int64) ([]TreeEntry, error) {
	all, err := s.ListChunksForFile(fileID)
	if err != nil {
		return nil, err
	}

	children := map[int64][]chunk.Chunk{}
	var roots []chunk.Chunk
	for _, c := range all {
		if c.ParentID == 0 {
			roots = append(roots, c)
		} else {
			children[c.ParentID] = append(children[c.ParentID], c)
		}
	}

	var entries []TreeEntry
	var walk func(c chunk.Chunk, depth int, filePath string)
	walk = func(c chunk.Chunk, depth int, filePath string) {
		entries = append(entries, TreeEntry{FilePath: filePath, Chunk: c, Depth: depth})
		for _, child := range children[c.ID] {
			walk(child, depth+1, filePath)
		}
	}

	f, err := s.GetFileByID(fileID)
	if err != nil {
		return nil, err
	}
	for _, r := range roots {
		walk(r, 0, f.Path)
	}

	return entries, nil
}
