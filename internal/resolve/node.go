// Package resolve trova il nome tipizzato che racchiude una posizione del sorgente.
//
// Il pacchetto non conosce nessun parser: lavora su qualsiasi albero che
// implementi Node. I provider concreti vivono in internal/astx (go/types)
// e internal/sitterx (tree-sitter).
package resolve

// Node is a read-only view of one syntax tree node.
//
// Coordinates passed to ContainsLocation follow the provider's convention;
// both providers in this module use 1-based lines and columns.
type Node interface {
	// NumChild returns the number of children.
	NumChild() int
	// Child returns the i-th child, 0-indexed, in source order.
	Child(i int) Node
	// ContainsLocation reports whether the node's span covers the position.
	// Only meaningful when IsSynthetic is false.
	ContainsLocation(line, column int) bool
	// IsSynthetic marks nodes whose recorded span cannot be trusted.
	IsSynthetic() bool
}

// TypedName is the node variant the resolver looks for: a named entity
// with a resolved type.
type TypedName interface {
	Node
	Name() string
	// TypeName returns the fully qualified type name.
	TypeName() string
}
