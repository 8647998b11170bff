// Package query implements the Query Engine (spec §4.6): a thin, caching
// adapter over the Chunk Store. It resolves symbolic lookups, builds
// best-effort call-graph/impact views, and produces tree/map/peek
// projections purely from indexed data — it never reads the filesystem.
package query

import (
	"fmt"
	"sort"

	"github.com/maypok86/otter"

	"github.com/outpost-dev/rlm/internal/chunk"
	"github.com/outpost-dev/rlm/internal/rlmerr"
	"github.com/outpost-dev/rlm/internal/store"
)

// resolvableKinds are preferred, in order of no particular priority beyond
// being the symbol-bearing kinds spec §4.6 names for symbol resolution.
var resolvableKinds = map[chunk.Kind]bool{
	chunk.KindFunction:  true,
	chunk.KindMethod:    true,
	chunk.KindClass:     true,
	chunk.KindStruct:    true,
	chunk.KindTrait:     true,
	chunk.KindInterface: true,
	chunk.KindEnum:      true,
}

const fileCacheWeight = 50 * 1024 * 1024 // 50MB, mirrors the teacher's file cache budget

// Engine is the Query Engine. It caches per-file chunk lists and identifier lookups
// so repeated reads (e.g. while a caller walks a call graph) don't re-hit
// SQLite for every hop.
type Engine struct {
	store *store.Store

	identifierCache otter.Cache[string, []chunk.Chunk]
	fileChunksCache otter.Cache[int64, []chunk.Chunk]
}

// New builds a Query Engine over st.
func New(st *store.Store) (*Engine, error) {
	idCache, err := otter.MustBuilder[string, []chunk.Chunk](fileCacheWeight).
		Cost(func(key string, value []chunk.Chunk) uint32 { return uint32(len(value)*256 + 1) }).
		CollectStats().
		Build()
	if err != nil {
		return nil, rlmerr.Wrap(rlmerr.KindStore, "build identifier cache", err)
	}
	fileCache, err := otter.MustBuilder[int64, []chunk.Chunk](fileCacheWeight).
		Cost(func(key int64, value []chunk.Chunk) uint32 { return uint32(len(value)*256 + 1) }).
		CollectStats().
		Build()
	if err != nil {
		return nil, rlmerr.Wrap(rlmerr.KindStore, "build file chunk cache", err)
	}
	return &Engine{store: st, identifierCache: idCache, fileChunksCache: fileCache}, nil
}

// Invalidate drops cached entries for fileID and every identifier defined in
// it. The broker calls this for the edited file after a surgical edit's
// reindex; the ingestion pipeline itself does not call it.
func (e *Engine) Invalidate(fileID int64) {
	if chunks, ok := e.fileChunksCache.Get(fileID); ok {
		for _, c := range chunks {
			if c.Identifier != "" {
				e.identifierCache.Delete(c.Identifier)
			}
		}
	}
	e.fileChunksCache.Delete(fileID)
}

func (e *Engine) chunksForFile(fileID int64) ([]chunk.Chunk, error) {
	if cached, ok := e.fileChunksCache.Get(fileID); ok {
		return cached, nil
	}
	chunks, err := e.store.ListChunksForFile(fileID)
	if err != nil {
		return nil, err
	}
	e.fileChunksCache.Set(fileID, chunks)
	return chunks, nil
}

func (e *Engine) candidatesForIdentifier(identifier string) ([]chunk.Chunk, error) {
	if cached, ok := e.identifierCache.Get(identifier); ok {
		return cached, nil
	}
	chunks, err := e.store.FindByIdentifier(identifier, true, nil)
	if err != nil {
		return nil, err
	}
	e.identifierCache.Set(identifier, chunks)
	return chunks, nil
}

// ResolveSymbol finds the single chunk named identifier, optionally scoped to
// filePath and/or kind. Candidates are exact identifier matches; with a
// filePath, matches in that file are preferred and the earliest line wins
// among several. Without a filePath, more than one candidate is an
// Ambiguous error.
func (e *Engine) ResolveSymbol(filePath, identifier string, kind chunk.Kind) (chunk.Chunk, error) {
	candidates, err := e.candidatesForIdentifier(identifier)
	if err != nil {
		return chunk.Chunk{}, err
	}

	filtered := candidates[:0:0]
	for _, c := range candidates {
		if kind != "" && c.Kind != kind {
			continue
		}
		if !resolvableKindOrExplicit(c.Kind, kind) {
			continue
		}
		filtered = append(filtered, c)
	}
	if len(filtered) == 0 {
		return chunk.Chunk{}, rlmerr.New(rlmerr.KindNotFound, fmt.Sprintf("symbol %q not found", identifier))
	}

	if filePath != "" {
		var scoped []chunk.Chunk
		for _, c := range filtered {
			f, err := e.store.GetFileByID(c.FileID)
			if err == nil && f.Path == filePath {
				scoped = append(scoped, c)
			}
		}
		if len(scoped) > 0 {
			filtered = scoped
		}
	}

	if len(filtered) == 1 {
		return filtered[0], nil
	}

	sort.Slice(filtered, func(i, j int) bool { return filtered[i].StartLine < filtered[j].StartLine })

	if filePath == "" {
		return chunk.Chunk{}, rlmerr.New(rlmerr.KindAmbiguous,
			fmt.Sprintf("symbol %q is ambiguous across %d files; narrow with a file path", identifier, len(filtered)))
	}
	return filtered[0], nil
}

func resolvableKindOrExplicit(k chunk.Kind, requested chunk.Kind) bool {
	if requested != "" {
		return true
	}
	return resolvableKinds[k]
}

// Peek returns a single chunk's full record by id, the simplest of the
// tree/map/peek projections (spec §4.6).
func (e *Engine) Peek(chunkID int64) (chunk.Chunk, error) {
	return e.store.GetChunk(chunkID)
}

// Map returns the flat list of chunks in a file, in source order — the
// "map" projection.
func (e *Engine) Map(filePath string) ([]chunk.Chunk, error) {
	f, err := e.store.GetFileByPath(filePath)
	if err != nil {
		return nil, err
	}
	return e.chunksForFile(f.ID)
}

// Tree returns the nested outline for a file — the "tree" projection.
func (e *Engine) Tree(filePath string) ([]store.TreeEntry, error) {
	f, err := e.store.GetFileByPath(filePath)
	if err != nil {
		return nil, err
	}
	return e.store.TreeView(f.ID)
}

// SearchFullText delegates straight to the Store's FTS5 index.
func (e *Engine) SearchFullText(q string, limit int) ([]store.FTSResult, error) {
	return e.store.SearchFullText(q, limit)
}
