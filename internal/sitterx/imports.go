package sitterx

import (
	"path"
	"strconv"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// collectImports maps each package name visible in the file to its import
// path. Blank and dot imports are skipped.
func collectImports(root *sitter.Node, src []byte) map[string]string {
	imports := make(map[string]string)
	for i := uint(0); i < root.ChildCount(); i++ {
		decl := root.Child(i)
		if decl == nil || decl.Kind() != "import_declaration" {
			continue
		}
		for j := uint(0); j < decl.ChildCount(); j++ {
			c := decl.Child(j)
			if c == nil {
				continue
			}
			switch c.Kind() {
			case "import_spec":
				addImport(imports, c, src)
			case "import_spec_list":
				for k := uint(0); k < c.ChildCount(); k++ {
					if spec := c.Child(k); spec != nil && spec.Kind() == "import_spec" {
						addImport(imports, spec, src)
					}
				}
			}
		}
	}
	return imports
}

func addImport(imports map[string]string, spec *sitter.Node, src []byte) {
	p := spec.ChildByFieldName("path")
	if p == nil || p.IsMissing() {
		return
	}
	raw := string(src[p.StartByte():p.EndByte()])
	importPath, err := strconv.Unquote(raw)
	if err != nil || importPath == "" {
		return
	}
	alias := defaultName(importPath)
	if n := spec.ChildByFieldName("name"); n != nil {
		alias = string(src[n.StartByte():n.EndByte()])
	}
	if alias == "_" || alias == "." {
		return
	}
	imports[alias] = importPath
}

// defaultName guesses the package name from the import path: the last
// element, or the one before it for a major version suffix like "v2".
func defaultName(importPath string) string {
	base := path.Base(importPath)
	if isMajorVersion(base) {
		if dir := path.Dir(importPath); dir != "." && dir != "/" {
			base = path.Base(dir)
		}
	}
	return base
}

func isMajorVersion(s string) bool {
	if len(s) < 2 || s[0] != 'v' {
		return false
	}
	_, err := strconv.Atoi(s[1:])
	return err == nil
}

// qualified returns the source text of typ with every package name
// replaced by its import path, so "http.Header" becomes "net/http.Header".
func (b *builder) qualified(typ *sitter.Node) string {
	var sb strings.Builder
	cursor := typ.StartByte()
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n.Kind() == "package_identifier" {
			if importPath, ok := b.imports[b.text(n)]; ok {
				sb.Write(b.src[cursor:n.StartByte()])
				sb.WriteString(importPath)
				cursor = n.EndByte()
			}
			return
		}
		for i := uint(0); i < n.ChildCount(); i++ {
			if c := n.Child(i); c != nil {
				walk(c)
			}
		}
	}
	walk(typ)
	sb.Write(b.src[cursor:typ.EndByte()])
	return sb.String()
}
