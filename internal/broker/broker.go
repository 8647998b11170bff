// Package broker wires the Path Walker, Parser Registry, Ingestion
// Pipeline, Chunk Store, Query Engine and Surgical Editor into the flat
// in-process surface spec §6 describes: one composition root, no
// inheritance hierarchy, every operation a plain method returning plain
// data records. JSON shaping belongs to the caller (cmd/rlm, cmd/rlm-mcp),
// never to this package.
package broker

import (
	"context"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"github.com/outpost-dev/rlm/internal/chunk"
	"github.com/outpost-dev/rlm/internal/config"
	"github.com/outpost-dev/rlm/internal/edit"
	"github.com/outpost-dev/rlm/internal/ingest"
	"github.com/outpost-dev/rlm/internal/langparser"
	"github.com/outpost-dev/rlm/internal/query"
	"github.com/outpost-dev/rlm/internal/store"
	"github.com/outpost-dev/rlm/internal/walk"
)

// Broker is the single entry point a CLI or server collaborator holds.
type Broker struct {
	root string

	store    *store.Store
	registry *langparser.Registry
	pipeline *ingest.Pipeline
	query    *query.Engine
	editor   *edit.Editor
}

// Open builds a Broker rooted at root, opening (or creating) its
// .rlm/index.db per cfg.Store.Path, and wires every component's
// cross-references (the editor's reindex callback invalidates the query
// cache after every write, closing the loop spec §5 describes between an
// edit's write and its subsequent reindex).
func Open(fs afero.Fs, root string, cfg *config.Config) (*Broker, error) {
	dbPath := filepath.Join(root, cfg.Store.Path)
	if err := fs.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, err
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}

	registry := langparser.NewRegistry()

	var walkOpts []walk.Option
	if len(cfg.Paths.IgnoreGlobs) > 0 {
		walkOpts = append(walkOpts, walk.WithIgnoreGlobs(cfg.Paths.IgnoreGlobs))
	}
	if cfg.Paths.IgnoreFile != "" {
		walkOpts = append(walkOpts, walk.WithIgnoreFile(fs, root, cfg.Paths.IgnoreFile))
	}
	if cfg.Paths.MaxFileBytes > 0 {
		walkOpts = append(walkOpts, walk.WithMaxBytes(cfg.Paths.MaxFileBytes))
	}
	w := walk.New(fs, root, walkOpts...)

	pipeline := ingest.New(fs, root, w, registry, st,
		ingest.WithWorkers(cfg.Ingest.Workers),
		ingest.WithBatchSize(cfg.Ingest.BatchSize))

	queryEngine, err := query.New(st)
	if err != nil {
		st.Close()
		return nil, err
	}

	b := &Broker{root: root, store: st, registry: registry, pipeline: pipeline, query: queryEngine}

	reindex := func(path string) error {
		if _, err := pipeline.Index(context.Background()); err != nil {
			return err
		}
		if f, err := st.GetFileByPath(path); err == nil {
			queryEngine.Invalidate(f.ID)
		}
		return nil
	}
	b.editor = edit.New(fs, root, registry, st, reindex)

	return b, nil
}

func (b *Broker) Close() error { return b.store.Close() }

// Index runs a full walk-and-parse pass (spec §4.4).
func (b *Broker) Index(ctx context.Context) (*ingest.Stats, error) {
	return b.pipeline.Index(ctx)
}

// Watch runs live-reindex mode until ctx is cancelled (SPEC_FULL.md's
// fsnotify-backed addition over the base spec).
func (b *Broker) Watch(ctx context.Context, cfg *config.Config, onReindex func(*ingest.Stats, error)) error {
	debounceMillis := cfg.Watch.DebounceMillis
	if debounceMillis <= 0 {
		debounceMillis = 500
	}
	return b.pipeline.Watch(ctx, durationMillis(debounceMillis), onReindex)
}

// ResolveSymbol, Peek, Map, Tree, SearchFullText and ImpactView are the
// Query Engine operations (spec §4.6), exposed directly.
func (b *Broker) ResolveSymbol(filePath, identifier string, kind chunk.Kind) (chunk.Chunk, error) {
	return b.query.ResolveSymbol(filePath, identifier, kind)
}

func (b *Broker) Peek(chunkID int64) (chunk.Chunk, error) { return b.query.Peek(chunkID) }

func (b *Broker) Map(filePath string) ([]chunk.Chunk, error) { return b.query.Map(filePath) }

func (b *Broker) Tree(filePath string) ([]store.TreeEntry, error) { return b.query.Tree(filePath) }

func (b *Broker) SearchFullText(q string, limit int) ([]store.FTSResult, error) {
	return b.query.SearchFullText(q, limit)
}

func (b *Broker) ImpactView(filePath, identifier string) (*query.CallGraphResult, error) {
	return b.query.ImpactView(filePath, identifier)
}

// Replace and Insert are the Surgical Editor operations (spec §4.7),
// exposed directly.
func (b *Broker) Replace(path string, sel edit.Selector, newCode string, preview bool) (*edit.Result, error) {
	return b.editor.Replace(path, sel, newCode, preview)
}

func (b *Broker) Insert(path string, containerSel edit.Selector, at edit.InsertAt, code string, preview bool) (*edit.Result, error) {
	return b.editor.Insert(path, containerSel, at, code, preview)
}

// CanEdit reports whether path's language is AST-aware and therefore
// eligible for the Surgical Editor (spec §4.7's "plain-text files cannot be
// surgically edited").
func (b *Broker) CanEdit(path string) bool {
	return b.registry.Lookup(filepath.Ext(path)).Language().IsASTAware()
}

func durationMillis(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
