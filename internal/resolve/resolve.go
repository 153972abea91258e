package resolve

// Resolve returns the first TypedName on the chain of nodes containing
// (line, column), starting below root. The boolean is false when the
// position lies outside root or no TypedName sits on the descent path.
func Resolve(root Node, line, column int) (TypedName, bool) {
	if root == nil || !root.ContainsLocation(line, column) {
		return nil, false
	}
	return descend(root, line, column)
}

// descend segue la catena di contenimento a partire da cur.
func descend(cur Node, line, column int) (TypedName, bool) {
	for {
		next, ok := step(cur, line, column)
		if !ok {
			return nil, false
		}
		if tn, ok := next.(TypedName); ok {
			return tn, true
		}
		cur = next
	}
}

// step picks the child of n to continue from. The first child in
// declared order wins.
func step(n Node, line, column int) (Node, bool) {
	for i := 0; i < n.NumChild(); i++ {
		child := n.Child(i)
		if child == nil {
			continue
		}
		if child.IsSynthetic() {
			// nessuna informazione affidabile: ricerca esaustiva nei figli
			if found, ok := searchSynthetic(child, line, column); ok {
				return found, true
			}
		}
		if child.ContainsLocation(line, column) {
			return child, true
		}
	}
	return nil, false
}

// searchSynthetic looks through the children of a synthetic node, whose own
// span is not trusted, for the first one that leads to the position.
func searchSynthetic(n Node, line, column int) (Node, bool) {
	for j := 0; j < n.NumChild(); j++ {
		grandchild := n.Child(j)
		if grandchild == nil {
			continue
		}
		if found, ok := locate(grandchild, line, column); ok {
			return found, true
		}
	}
	return nil, false
}

// locate returns n itself when it contains the position, otherwise the
// TypedName found by descending from it.
func locate(n Node, line, column int) (Node, bool) {
	if n.ContainsLocation(line, column) {
		return n, true
	}
	if tn, ok := descend(n, line, column); ok {
		return tn, true
	}
	return nil, false
}
