package sitterx

import "github.com/codellm-devkit/typeextractor-go/internal/resolve"

var (
	_ resolve.Node      = (*node)(nil)
	_ resolve.TypedName = (*typedNode)(nil)
)

// node holds 1-based coordinates; the end is exclusive.
type node struct {
	kind                string
	startLine, startCol int
	endLine, endCol     int
	missing             bool
	children            []resolve.Node
}

func (nd *node) NumChild() int { return len(nd.children) }

func (nd *node) Child(i int) resolve.Node { return nd.children[i] }

// IsSynthetic is true for MISSING nodes, which error recovery inserts
// without any source text.
func (nd *node) IsSynthetic() bool { return nd.missing }

// GrammarKind returns the node kind, e.g. "call_expression".
func (nd *node) GrammarKind() string { return nd.kind }

func (nd *node) ContainsLocation(line, column int) bool {
	if line < nd.startLine || (line == nd.startLine && column < nd.startCol) {
		return false
	}
	return line < nd.endLine || (line == nd.endLine && column < nd.endCol)
}

type typedNode struct {
	node
	name     string
	typeName string
	kind     string
}

func (tn *typedNode) Name() string     { return tn.name }
func (tn *typedNode) TypeName() string { return tn.typeName }

// Kind returns param, var, const or field.
func (tn *typedNode) Kind() string { return tn.kind }
