package langparser

import (
	"fmt"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/outpost-dev/rlm/internal/chunk"
)

// rule binds one tree-sitter node kind to the chunk.Kind it produces. A rule
// marked Container also has its body's direct children walked for nested
// chunks (methods inside a class, inner types inside a namespace); a
// non-container rule is a leaf as far as extraction is concerned.
type rule struct {
	NodeType    string
	Kind        chunk.Kind
	NameField   string   // field holding the identifier; defaults to "name"
	BodyField   string   // field holding the container's member list; defaults to "body"
	Container   bool
	DocTypes    []string // sibling node kinds, immediately preceding, captured as Doc
	AttrTypes   []string // sibling node kinds, immediately preceding, captured as Attr
	SigEndField string   // if set, Signature is src up to (not including) this field's start

	// KindField and KindByChildKind let one grammar node type resolve to
	// different chunk kinds depending on a child's node kind (Go's
	// type_spec is a struct, an interface, or a plain alias depending on
	// what its "type" field holds). When KindField is set and the child it
	// names has a kind present in KindByChildKind, that kind wins over Kind.
	KindField      string
	KindByChildKind map[string]chunk.Kind
}

// languageConfig is everything a per-language file needs to supply to get a
// working tree-sitter Parser: the grammar and the node-kind rule table walked
// in source order.
type languageConfig struct {
	Lang  *sitter.Language
	Rules []rule
}

type treeSitterParser struct {
	lang chunk.Language
	cfg  languageConfig
}

func newTreeSitterParser(lang chunk.Language, cfg languageConfig) Parser {
	return &treeSitterParser{lang: lang, cfg: cfg}
}

func (p *treeSitterParser) Language() chunk.Language { return p.lang }

func (p *treeSitterParser) Parse(src []byte) (Tree, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(p.cfg.Lang)

	tree := parser.Parse(src, nil)
	if tree == nil {
		parser.Close()
		return Tree{}, fmt.Errorf("%s: parse produced no tree", p.lang)
	}

	return Tree{
		Raw: tree,
		Release: func() {
			tree.Close()
			parser.Close()
		},
	}, nil
}

func (p *treeSitterParser) HasErrors(t Tree) (bool, []chunk.ErrorSpan) {
	tree, ok := t.Raw.(*sitter.Tree)
	if !ok || tree == nil {
		return false, nil
	}

	var spans []chunk.ErrorSpan
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		if n.IsError() || n.IsMissing() {
			spans = append(spans, chunk.ErrorSpan{
				StartByte: int(n.StartByte()),
				EndByte:   int(n.EndByte()),
			})
			return
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(uint(i)))
		}
	}
	walk(tree.RootNode())

	return len(spans) > 0, spans
}

func (p *treeSitterParser) Extract(t Tree, src []byte, filePath string) ([]chunk.Chunk, error) {
	tree, ok := t.Raw.(*sitter.Tree)
	if !ok || tree == nil {
		return nil, fmt.Errorf("%s: not a tree-sitter tree", p.lang)
	}

	uiContext := chunk.UIContext(filePath)
	var result []chunk.Chunk

	ruleFor := func(nodeType string) (rule, bool) {
		for _, r := range p.cfg.Rules {
			if r.NodeType == nodeType {
				return r, true
			}
		}
		return rule{}, false
	}

	leadingText := func(n *sitter.Node, types []string) string {
		if len(types) == 0 {
			return ""
		}
		parent := n.Parent()
		if parent == nil {
			return ""
		}
		idx := -1
		for i := 0; i < int(parent.ChildCount()); i++ {
			if parent.Child(uint(i)) == n {
				idx = i
				break
			}
		}
		if idx <= 0 {
			return ""
		}
		sib := parent.Child(uint(idx - 1))
		for _, want := range types {
			if sib.Kind() == want {
				return string(src[sib.StartByte():sib.EndByte()])
			}
		}
		return ""
	}

	var visit func(n *sitter.Node, parentOrdinal int64)
	visit = func(n *sitter.Node, parentOrdinal int64) {
		if n == nil {
			return
		}

		r, matched := ruleFor(n.Kind())
		if !matched {
			for i := 0; i < int(n.ChildCount()); i++ {
				visit(n.Child(uint(i)), parentOrdinal)
			}
			return
		}

		nameField := r.NameField
		if nameField == "" {
			nameField = "name"
		}
		var identifier string
		if nameNode := n.ChildByFieldName(nameField); nameNode != nil {
			identifier = string(src[nameNode.StartByte():nameNode.EndByte()])
		}

		kind := r.Kind
		if r.KindField != "" {
			if child := n.ChildByFieldName(r.KindField); child != nil {
				if resolved, ok := r.KindByChildKind[child.Kind()]; ok {
					kind = resolved
				}
			}
		}

		signature := ""
		if r.SigEndField != "" {
			if endNode := n.ChildByFieldName(r.SigEndField); endNode != nil {
				signature = trimTrailingSpace(string(src[n.StartByte():endNode.StartByte()]))
			}
		}

		c := chunk.Chunk{
			Kind:       kind,
			Identifier: identifier,
			StartLine:  int(n.StartPosition().Row) + 1,
			EndLine:    int(n.EndPosition().Row) + 1,
			StartByte:  int(n.StartByte()),
			EndByte:    int(n.EndByte()),
			Content:    string(src[n.StartByte():n.EndByte()]),
			Signature:  signature,
			Doc:        leadingText(n, r.DocTypes),
			Attr:       leadingText(n, r.AttrTypes),
			UIContext:  uiContext,
			ParentID:   parentOrdinal,
		}
		result = append(result, c)
		ordinal := int64(len(result))

		if r.Container {
			bodyField := r.BodyField
			if bodyField == "" {
				bodyField = "body"
			}
			if body := n.ChildByFieldName(bodyField); body != nil {
				for i := 0; i < int(body.ChildCount()); i++ {
					visit(body.Child(uint(i)), ordinal)
				}
			}
		}
	}

	visit(tree.RootNode(), 0)

	return result, nil
}

func trimTrailingSpace(s string) string {
	end := len(s)
	for end > 0 && (s[end-1] == ' ' || s[end-1] == '\t' || s[end-1] == '\n' || s[end-1] == '\r') {
		end--
	}
	return s[:end]
}
