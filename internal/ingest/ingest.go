// Package ingest implements the Ingestion Pipeline (spec §4.4 and §5): it
// walks a repository, parses every eligible file in parallel, and commits
// the resulting files/chunks to the store through a single writer.
package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"path"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/outpost-dev/rlm/internal/chunk"
	"github.com/outpost-dev/rlm/internal/langparser"
	"github.com/outpost-dev/rlm/internal/rlmerr"
	"github.com/outpost-dev/rlm/internal/store"
	"github.com/outpost-dev/rlm/internal/walk"
)

const defaultBatchSize = 64

// Stats summarizes one Index run.
type Stats struct {
	FilesSeen    int
	FilesIndexed int
	FilesSkipped int // unchanged since last index, by content hash
	FilesFailed  int
	FilesDeleted int
	Warnings     []string
}

// Pipeline ties the Path Walker, Parser Registry and Chunk Store together.
type Pipeline struct {
	fs        afero.Fs
	root      string
	walker    *walk.Walker
	registry  *langparser.Registry
	store     *store.Store
	workers   int
	batchSize int
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithWorkers sets the parallel parse fan-out (spec §4.4). Default 4.
func WithWorkers(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithBatchSize sets how many parsed files the single writer accumulates
// before committing them to the Store in one transaction (spec §4.4 step
// 3). Default 64.
func WithBatchSize(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.batchSize = n
		}
	}
}

func New(fs afero.Fs, root string, w *walk.Walker, registry *langparser.Registry, st *store.Store, opts ...Option) *Pipeline {
	p := &Pipeline{fs: fs, root: root, walker: w, registry: registry, store: st, workers: 4, batchSize: defaultBatchSize}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type parseResult struct {
	path    string
	skipped bool
	file    chunk.File
	chunks  []chunk.Chunk
	err     error
}

// Index performs a full walk-and-parse pass, then deletes store rows for any
// previously-indexed file the walk no longer finds (spec §4.4/§5).
func (p *Pipeline) Index(ctx context.Context) (*Stats, error) {
	batchID := uuid.New().String()
	log := slog.With("component", "ingest", "batch", batchID)
	log.Info("index batch starting", "root", p.root)

	entries, walkErr := p.walker.Walk(ctx)
	stats := &Stats{}
	for _, w := range p.walker.Warnings() {
		stats.Warnings = append(stats.Warnings, w.Path+": "+w.Message)
	}

	seen := make(map[string]bool, len(entries))

	jobs := make(chan walk.Entry)
	results := make(chan parseResult, p.batchSize)

	var wg sync.WaitGroup
	workers := p.workers
	if workers < 1 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for e := range jobs {
				results <- p.processFile(e)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, e := range entries {
			select {
			case jobs <- e:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	var batch []store.FileUpdate
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := p.store.WriteBatch(batch); err != nil {
			return err
		}
		stats.FilesIndexed += len(batch)
		batch = batch[:0]
		return nil
	}

	for r := range results {
		seen[r.path] = true
		stats.FilesSeen++

		if r.err != nil {
			stats.FilesFailed++
			stats.Warnings = append(stats.Warnings, r.path+": "+r.err.Error())
			continue
		}
		if r.skipped {
			stats.FilesSkipped++
			continue
		}

		batch = append(batch, store.FileUpdate{File: r.file, Chunks: r.chunks})
		if len(batch) >= p.batchSize {
			if err := flush(); err != nil {
				return stats, err
			}
		}
	}
	if err := flush(); err != nil {
		return stats, err
	}

	existing, err := p.store.ListFilePaths()
	if err != nil {
		return stats, err
	}
	for _, existingPath := range existing {
		if !seen[existingPath] {
			if err := p.store.DeleteFile(existingPath); err != nil {
				return stats, err
			}
			stats.FilesDeleted++
		}
	}

	if ctx.Err() != nil {
		return stats, rlmerr.Wrap(rlmerr.KindCancelled, "ingestion cancelled", ctx.Err())
	}
	if walkErr != nil {
		return stats, rlmerr.Wrap(rlmerr.KindWalk, "walk failed", walkErr)
	}
	log.Info("index batch complete", "indexed", stats.FilesIndexed, "skipped", stats.FilesSkipped,
		"failed", stats.FilesFailed, "deleted", stats.FilesDeleted)
	return stats, nil
}

// Reindex re-runs Index. Change detection by content hash means an
// unchanged file costs one stat + hash read, not a re-parse.
func (p *Pipeline) Reindex(ctx context.Context) (*Stats, error) {
	return p.Index(ctx)
}

func (p *Pipeline) processFile(e walk.Entry) parseResult {
	abs := path.Join(p.root, e.Path)
	src, err := afero.ReadFile(p.fs, abs)
	if err != nil {
		return parseResult{path: e.Path, err: rlmerr.Wrap(rlmerr.KindIO, "read file", err)}
	}

	sum := sha256.Sum256(src)
	hash := hex.EncodeToString(sum[:])

	if existing, err := p.store.GetFileByPath(e.Path); err == nil && existing.Hash == hash {
		return parseResult{path: e.Path, skipped: true}
	}

	ext := path.Ext(e.Path)
	parser := p.registry.Lookup(ext)

	tree, err := parser.Parse(src)
	if err != nil {
		return parseResult{
			path: e.Path,
			file: chunk.File{Path: e.Path, Hash: hash, Size: e.Size, Language: parser.Language(), ParseQuality: chunk.QualityFailed},
		}
	}
	defer tree.Close()

	hasErrors, spans := parser.HasErrors(tree)
	quality := chunk.QualityComplete
	if hasErrors {
		quality = classifyQuality(spans, len(src))
	}

	chunks, err := parser.Extract(tree, src, e.Path)
	if err != nil {
		return parseResult{path: e.Path, err: rlmerr.Wrap(rlmerr.KindIO, "extract chunks", err)}
	}

	return parseResult{
		path: e.Path,
		file: chunk.File{
			Path:         e.Path,
			Hash:         hash,
			Size:         e.Size,
			Language:     parser.Language(),
			ParseQuality: quality,
			ErrorSpans:   spans,
		},
		chunks: chunks,
	}
}

// classifyQuality applies the byte-majority heuristic: a file whose error
// spans cover less than half its bytes parsed mostly fine (partial); at or
// above half, treat the parse as a loss (failed).
func classifyQuality(spans []chunk.ErrorSpan, size int) chunk.ParseQuality {
	if size == 0 {
		return chunk.QualityFailed
	}
	errorBytes := 0
	for _, s := range spans {
		errorBytes += s.EndByte - s.StartByte
	}
	if float64(errorBytes)/float64(size) >= 0.5 {
		return chunk.QualityFailed
	}
	return chunk.QualityPartial
}
