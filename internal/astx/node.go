package astx

import (
	"go/ast"
	"go/token"

	"github.com/codellm-devkit/typeextractor-go/internal/resolve"
	"github.com/codellm-devkit/typeextractor-go/pkg/schema"
)

var (
	_ resolve.Node      = (*node)(nil)
	_ resolve.TypedName = (*typedNode)(nil)
)

type node struct {
	n          ast.Node
	children   []resolve.Node
	start, end token.Position
	synthetic  bool
}

func (nd *node) NumChild() int { return len(nd.children) }

func (nd *node) Child(i int) resolve.Node { return nd.children[i] }

func (nd *node) IsSynthetic() bool { return nd.synthetic }

// Syntax returns the wrapped go/ast node.
func (nd *node) Syntax() ast.Node { return nd.n }

// ContainsLocation reports whether start <= (line, column) < end.
func (nd *node) ContainsLocation(line, column int) bool {
	if nd.synthetic || !nd.start.IsValid() {
		return false
	}
	if before(line, column, nd.start.Line, nd.start.Column) {
		return false
	}
	return before(line, column, nd.end.Line, nd.end.Column)
}

func before(l1, c1, l2, c2 int) bool {
	return l1 < l2 || (l1 == l2 && c1 < c2)
}

// typedNode è un identificatore con un oggetto types.Var, Const o Func.
type typedNode struct {
	node
	name     string
	typeName string
	kind     string
	decl     schema.Position
}

func (tn *typedNode) Name() string     { return tn.name }
func (tn *typedNode) TypeName() string { return tn.typeName }

// Kind returns var, param, field, const, func or method.
func (tn *typedNode) Kind() string { return tn.kind }

// DeclaredAt returns where the object is declared; zero for universe objects.
func (tn *typedNode) DeclaredAt() schema.Position { return tn.decl }
