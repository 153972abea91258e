package astx

import (
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codellm-devkit/typeextractor-go/internal/resolve"
)

const demoSrc = `package demo

type Counter struct {
	N int
}

const Limit = 10

func (c *Counter) Add(delta int) int {
	c.N += delta
	total := c.N
	return total
}
`

func checkSource(t *testing.T, src string) (*token.FileSet, *ast.File, *types.Info) {
	t.Helper()
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "demo.go", src, parser.ParseComments)
	require.NoError(t, err)

	info := &types.Info{
		Types: map[ast.Expr]types.TypeAndValue{},
		Defs:  map[*ast.Ident]types.Object{},
		Uses:  map[*ast.Ident]types.Object{},
	}
	_, err = (&types.Config{}).Check("example.com/demo", fset, []*ast.File{file}, info)
	require.NoError(t, err)
	return fset, file, info
}

type described interface {
	Kind() string
}

func TestTree_ResolveTypedNames(t *testing.T) {
	fset, file, info := checkSource(t, demoSrc)
	tree := NewTree(fset, file, info)

	cases := []struct {
		name         string
		line, column int
		want         string
		wantType     string
		wantKind     string
	}{
		{name: "field decl", line: 4, column: 2, want: "N", wantType: "int", wantKind: "field"},
		{name: "const", line: 7, column: 7, want: "Limit", wantType: "untyped int", wantKind: "const"},
		{name: "receiver", line: 9, column: 7, want: "c", wantType: "*example.com/demo.Counter", wantKind: "param"},
		{name: "method", line: 9, column: 19, want: "Add", wantType: "func(delta int) int", wantKind: "method"},
		{name: "param", line: 9, column: 23, want: "delta", wantType: "int", wantKind: "param"},
		{name: "receiver use", line: 10, column: 2, want: "c", wantType: "*example.com/demo.Counter", wantKind: "param"},
		{name: "field use", line: 10, column: 4, want: "N", wantType: "int", wantKind: "field"},
		{name: "local", line: 11, column: 2, want: "total", wantType: "int", wantKind: "var"},
		{name: "local end", line: 11, column: 6, want: "total", wantType: "int", wantKind: "var"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tn, ok := resolve.Resolve(tree.Root(), tc.line, tc.column)
			require.True(t, ok)
			assert.Equal(t, tc.want, tn.Name())
			assert.Equal(t, tc.wantType, tn.TypeName())
			d, ok := tn.(described)
			require.True(t, ok)
			assert.Equal(t, tc.wantKind, d.Kind())
		})
	}
}

func TestTree_NoMatch(t *testing.T) {
	fset, file, info := checkSource(t, demoSrc)
	tree := NewTree(fset, file, info)

	cases := []struct {
		name         string
		line, column int
	}{
		{name: "type name", line: 9, column: 10},
		{name: "blank line", line: 2, column: 1},
		{name: "keyword", line: 12, column: 3},
		{name: "past identifier", line: 11, column: 7},
		{name: "outside file", line: 50, column: 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, ok := resolve.Resolve(tree.Root(), tc.line, tc.column)
			assert.False(t, ok)
		})
	}
}

func TestTree_DeclaredAt(t *testing.T) {
	fset, file, info := checkSource(t, demoSrc)
	tree := NewTree(fset, file, info)

	tn, ok := resolve.Resolve(tree.Root(), 12, 9)
	require.True(t, ok)
	require.Equal(t, "total", tn.Name())

	decl := tn.(*typedNode).DeclaredAt()
	assert.Equal(t, "demo.go", decl.File)
	assert.Equal(t, 11, decl.Line)
	assert.Equal(t, 2, decl.Column)
}

func TestTree_WithoutTypeInfo(t *testing.T) {
	fset, file, _ := checkSource(t, demoSrc)
	tree := NewTree(fset, file, nil)

	_, ok := resolve.Resolve(tree.Root(), 11, 2)
	assert.False(t, ok)
	assert.Greater(t, tree.Size(), 10)
	assert.Equal(t, "demo.go", tree.Filename())
}

func TestTree_RewrittenNodesAreSynthetic(t *testing.T) {
	fset, file, info := checkSource(t, demoSrc)

	// wrap the method body in a generated block without positions
	var fn *ast.FuncDecl
	for _, d := range file.Decls {
		if f, ok := d.(*ast.FuncDecl); ok {
			fn = f
		}
	}
	require.NotNil(t, fn)
	fn.Body.List = []ast.Stmt{&ast.BlockStmt{List: fn.Body.List}}

	tree := NewTree(fset, file, info)

	var synthetic []ast.Node
	var walk func(n resolve.Node)
	walk = func(n resolve.Node) {
		if n.IsSynthetic() {
			synthetic = append(synthetic, n.(*node).Syntax())
		}
		for i := 0; i < n.NumChild(); i++ {
			walk(n.Child(i))
		}
	}
	walk(tree.Root())
	require.Len(t, synthetic, 1)
	assert.IsType(t, &ast.BlockStmt{}, synthetic[0])

	tn, ok := resolve.Resolve(tree.Root(), 11, 2)
	require.True(t, ok)
	assert.Equal(t, "total", tn.Name())
	assert.Equal(t, "int", tn.TypeName())
}

func TestChildren_SourceOrder(t *testing.T) {
	_, file, _ := checkSource(t, demoSrc)

	kids := children(file)
	require.Len(t, kids, 4)
	assert.IsType(t, &ast.Ident{}, kids[0])
	assert.IsType(t, &ast.GenDecl{}, kids[1])
	assert.IsType(t, &ast.GenDecl{}, kids[2])
	assert.IsType(t, &ast.FuncDecl{}, kids[3])
}
