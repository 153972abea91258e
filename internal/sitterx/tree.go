// Package sitterx builds a syntax-only tree for resolve from the tree-sitter
// Go grammar. Types are the ones written in declarations; nothing is
// inferred, so the backend also works on code that does not type-check.
package sitterx

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"

	"github.com/codellm-devkit/typeextractor-go/internal/resolve"
)

// Tree is an immutable copy of a tree-sitter parse. The C tree is released
// as soon as the copy is built.
type Tree struct {
	filename string
	root     *node
	size     int
	errors   int
}

// ParseFile reads and parses path.
func ParseFile(path string) (*Tree, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	t, err := Parse(src)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	t.filename = path
	return t, nil
}

// Parse parses Go source text.
func Parse(src []byte) (*Tree, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(sitter.NewLanguage(tree_sitter_go.Language()))

	st := parser.Parse(src, nil)
	if st == nil {
		return nil, errors.New("tree-sitter returned no tree")
	}
	defer st.Close()

	b := &builder{src: src}
	rootNode := st.RootNode()
	b.imports = collectImports(rootNode, src)

	t := &Tree{}
	t.root = b.build(rootNode)
	// il source_file copre tutto il testo, anche spazi e commenti in coda
	t.root.startLine, t.root.startCol = 1, 1
	t.root.endLine, t.root.endCol = endOf(src)
	t.size = b.size
	t.errors = b.errors
	return t, nil
}

// Root returns the source_file node.
func (t *Tree) Root() resolve.Node { return t.root }

// Size returns the number of wrapped nodes.
func (t *Tree) Size() int { return t.size }

// Filename returns the parsed file name, empty for Parse.
func (t *Tree) Filename() string { return t.filename }

// ErrorCount returns the number of ERROR and MISSING nodes.
func (t *Tree) ErrorCount() int { return t.errors }

// endOf returns the 1-based position just past the last byte of src.
func endOf(src []byte) (line, col int) {
	line = 1 + bytes.Count(src, []byte("\n"))
	last := bytes.LastIndexByte(src, '\n')
	return line, len(src) - last
}

type builder struct {
	src     []byte
	imports map[string]string
	size    int
	errors  int
}

// declKinds sono le dichiarazioni i cui nomi portano un tipo esplicito.
var declKinds = map[string]string{
	"parameter_declaration":          "param",
	"variadic_parameter_declaration": "param",
	"var_spec":                       "var",
	"const_spec":                     "const",
	"field_declaration":              "field",
}

// declared describes the type a declaration gives to its names.
type declared struct {
	typeName string
	kind     string
	until    uint // names are the identifiers that start before this byte
}

func (b *builder) build(n *sitter.Node) *node {
	b.size++
	nd := &node{
		kind:      n.Kind(),
		startLine: int(n.StartPosition().Row) + 1,
		startCol:  int(n.StartPosition().Column) + 1,
		endLine:   int(n.EndPosition().Row) + 1,
		endCol:    int(n.EndPosition().Column) + 1,
		missing:   n.IsMissing(),
	}
	if n.IsMissing() || n.IsError() {
		b.errors++
	}

	own := b.declaration(n)
	for i := uint(0); i < n.ChildCount(); i++ {
		c := n.Child(i)
		if c == nil {
			continue
		}
		if own != nil && isName(c) && c.StartByte() < own.until {
			nd.children = append(nd.children, b.typed(c, own))
			continue
		}
		nd.children = append(nd.children, b.build(c))
	}
	return nd
}

func (b *builder) typed(c *sitter.Node, d *declared) resolve.Node {
	base := b.build(c)
	return &typedNode{
		node:     *base,
		name:     b.text(c),
		typeName: d.typeName,
		kind:     d.kind,
	}
}

// declaration returns the declared type of n when n is a declaration with an
// explicit type, nil otherwise.
func (b *builder) declaration(n *sitter.Node) *declared {
	kind, ok := declKinds[n.Kind()]
	if !ok {
		return nil
	}
	typ := n.ChildByFieldName("type")
	if typ == nil || typ.IsMissing() {
		return nil
	}
	name := b.qualified(typ)
	if n.Kind() == "variadic_parameter_declaration" {
		name = "[]" + name
	}
	return &declared{typeName: name, kind: kind, until: typ.StartByte()}
}

func isName(n *sitter.Node) bool {
	switch n.Kind() {
	case "identifier", "field_identifier":
		return !n.IsMissing()
	}
	return false
}

func (b *builder) text(n *sitter.Node) string {
	return string(b.src[n.StartByte():n.EndByte()])
}
