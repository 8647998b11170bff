package query

import (
	"fmt"

	"github.com/dominikbraun/graph"

	"github.com/outpost-dev/rlm/internal/chunk"
)

// CallGraphNode is one vertex in a best-effort call/impact graph: a defined
// symbol plus the textual reference hits that stand in for call edges.
type CallGraphNode struct {
	ChunkID    int64
	Identifier string
	Kind       chunk.Kind
	FilePath   string
}

func nodeKey(n CallGraphNode) string {
	return fmt.Sprintf("%s:%d", n.FilePath, n.ChunkID)
}

// CallGraphResult carries the graph plus the best-effort disclaimer spec
// §4.6 requires: this is built from plain-text reference scanning, not
// semantic call resolution, and callers must present it as such.
type CallGraphResult struct {
	Root      CallGraphNode
	Callers   []CallGraphNode
	BestEffort bool
}

// ImpactView builds a shallow (one-hop) impact graph for identifier: the
// definition itself plus every chunk whose content textually mentions it.
// It combines FindByIdentifier (definitions) with ScanForReferences (uses),
// exactly as spec §4.6 describes, and is therefore heuristic by
// construction — two unrelated symbols sharing a name will over-match.
func (e *Engine) ImpactView(filePath, identifier string) (*CallGraphResult, error) {
	def, err := e.ResolveSymbol(filePath, identifier, "")
	if err != nil {
		return nil, err
	}

	defFile, err := e.store.GetFileByID(def.FileID)
	if err != nil {
		return nil, err
	}
	root := CallGraphNode{ChunkID: def.ID, Identifier: def.Identifier, Kind: def.Kind, FilePath: defFile.Path}

	refs, err := e.store.ScanForReferences(identifier)
	if err != nil {
		return nil, err
	}

	g := graph.New(nodeKey, graph.Directed())
	if err := g.AddVertex(root); err != nil {
		return nil, err
	}

	seen := map[int64]bool{def.ID: true}
	var callers []CallGraphNode
	for _, r := range refs {
		if seen[r.ID] {
			continue
		}
		seen[r.ID] = true
		refFile, err := e.store.GetFileByID(r.FileID)
		if err != nil {
			continue
		}
		caller := CallGraphNode{ChunkID: r.ID, Identifier: r.Identifier, Kind: r.Kind, FilePath: refFile.Path}
		if err := g.AddVertex(caller); err != nil {
			continue
		}
		// Edges may reference vertices outside this one-hop view; errors here
		// are expected and ignored, as in the reverse-index builder this
		// pattern is grounded on.
		_ = g.AddEdge(nodeKey(caller), nodeKey(root))
		callers = append(callers, caller)
	}

	return &CallGraphResult{Root: root, Callers: callers, BestEffort: true}, nil
}
