// Package astx adatta un *ast.File type-checked all'albero letto da resolve.
package astx

import (
	"go/ast"
	"go/token"
	"go/types"

	"github.com/codellm-devkit/typeextractor-go/internal/resolve"
	"github.com/codellm-devkit/typeextractor-go/pkg/schema"
)

// Tree is an immutable, fully built view of one compilation unit.
type Tree struct {
	fset *token.FileSet
	tf   *token.File
	info *types.Info
	root *node
	size int
}

// NewTree wraps file. info may be nil, in which case the tree carries no
// typed names.
func NewTree(fset *token.FileSet, file *ast.File, info *types.Info) *Tree {
	t := &Tree{
		fset: fset,
		tf:   fset.File(file.Pos()),
		info: info,
	}
	t.root = t.build(file).(*node)
	return t
}

// Root returns the compilation unit node.
func (t *Tree) Root() resolve.Node { return t.root }

// Size returns the number of wrapped nodes.
func (t *Tree) Size() int { return t.size }

// Filename returns the physical file name of the unit.
func (t *Tree) Filename() string {
	if t.tf == nil {
		return ""
	}
	return t.tf.Name()
}

// build wraps n and its whole subtree eagerly so that the result can be
// shared across goroutines.
func (t *Tree) build(n ast.Node) resolve.Node {
	t.size++
	nd := &node{n: n}
	t.span(nd)
	for _, c := range children(n) {
		nd.children = append(nd.children, t.build(c))
	}
	if id, ok := n.(*ast.Ident); ok {
		if tn := t.typed(id, nd); tn != nil {
			return tn
		}
	}
	return nd
}

// span calcola l'intervallo fisico [start, end) del nodo.
func (t *Tree) span(nd *node) {
	if _, ok := nd.n.(*ast.File); ok && t.tf != nil {
		// il file copre tutto il token.File, commenti iniziali compresi
		nd.start = token.Position{Filename: t.tf.Name(), Line: 1, Column: 1}
		nd.end = t.tf.PositionFor(token.Pos(t.tf.Base()+t.tf.Size()), false)
		return
	}
	pos, end := nd.n.Pos(), nd.n.End()
	if !pos.IsValid() || !end.IsValid() || end < pos {
		nd.synthetic = true
		return
	}
	if t.tf == nil || t.fset.File(pos) != t.tf {
		nd.synthetic = true
		return
	}
	nd.start = t.fset.PositionFor(pos, false)
	nd.end = t.fset.PositionFor(end, false)
}

// children returns the immediate children of n in ast.Walk order.
func children(n ast.Node) []ast.Node {
	var out []ast.Node
	first := true
	ast.Inspect(n, func(c ast.Node) bool {
		if first {
			first = false
			return true
		}
		if c == nil {
			return false
		}
		out = append(out, c)
		return false
	})
	return out
}

// typed returns a typedNode for identifiers that denote a variable, field,
// constant or function, nil otherwise.
func (t *Tree) typed(id *ast.Ident, base *node) *typedNode {
	if t.info == nil {
		return nil
	}
	obj := t.info.ObjectOf(id)
	if obj == nil {
		return nil
	}
	kind := kindOf(obj)
	if kind == "" {
		return nil
	}
	tn := &typedNode{
		node:     *base,
		name:     id.Name,
		typeName: types.TypeString(obj.Type(), nil),
		kind:     kind,
	}
	if p := t.fset.Position(obj.Pos()); p.IsValid() {
		tn.decl = schema.Position{File: p.Filename, Line: p.Line, Column: p.Column}
	}
	return tn
}

func kindOf(obj types.Object) string {
	switch o := obj.(type) {
	case *types.Var:
		switch o.Kind() {
		case types.FieldVar:
			return "field"
		case types.ParamVar, types.RecvVar, types.ResultVar:
			return "param"
		default:
			return "var"
		}
	case *types.Const:
		return "const"
	case *types.Func:
		if sig, ok := o.Type().(*types.Signature); ok && sig.Recv() != nil {
			return "method"
		}
		return "func"
	default:
		// TypeName, PkgName, Label, Builtin, Nil: nessun tipo da riportare
		return ""
	}
}
