package graph

// Walk visits root and then every file reachable through the dependents
// index, depth first, children in name order. Each file is visited at most
// once, so an include cycle cannot recurse forever.
func (d Dependents) Walk(root string, visit func(name string, depth int)) {
	seen := make(map[string]bool)
	d.walk(root, 0, seen, visit)
}

func (d Dependents) walk(name string, depth int, seen map[string]bool, visit func(string, int)) {
	if seen[name] {
		return
	}
	seen[name] = true
	visit(name, depth)

	if !d.Has(name) {
		return
	}
	for _, child := range d.Children(name) {
		d.walk(child, depth+1, seen, visit)
	}
}
