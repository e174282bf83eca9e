package dict

// AddBranch sets tree[path[0]][path[1]]...[path[n-1]] = value, creating the
// intermediate maps on the way. A non-map value standing where an
// intermediate map is needed is replaced. A nil tree is allocated and the
// (possibly new) root is returned.
func AddBranch(tree map[string]any, path []string, value any) map[string]any {
	if tree == nil {
		tree = make(map[string]any)
	}
	if len(path) == 0 {
		return tree
	}

	key := path[0]
	if len(path) == 1 {
		tree[key] = value
		return tree
	}

	child, _ := tree[key].(map[string]any)
	tree[key] = AddBranch(child, path[1:], value)
	return tree
}

// Get walks path through nested maps and returns the value found there.
func Get(tree map[string]any, path []string) (any, bool) {
	var cur any = tree
	for _, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}
