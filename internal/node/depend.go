package node

import (
	"slices"
	"sort"
)

// DependMap maps each exposing node reached by a node to the sorted,
// de-duplicated paths through which it is reached.
type DependMap map[Node][]string

// Add records that n is reached through paths.
func (d DependMap) Add(n Node, paths ...string) {
	merged := append(slices.Clone(d[n]), paths...)
	sort.Strings(merged)
	d[n] = slices.Compact(merged)
}

// Merge adds every entry of other to d.
func (d DependMap) Merge(other DependMap) {
	for n, paths := range other {
		d.Add(n, paths...)
	}
}

// Has reports whether n is one of the dependencies.
func (d DependMap) Has(n Node) bool {
	_, ok := d[n]
	return ok
}

// Without returns a copy of d with n removed.
func (d DependMap) Without(n Node) DependMap {
	out := make(DependMap, len(d))
	for k, v := range d {
		if k != n {
			out[k] = v
		}
	}
	return out
}

// Paths returns every dependency path in lexical order.
func (d DependMap) Paths() []string {
	var out []string
	for _, paths := range d {
		out = append(out, paths...)
	}
	sort.Strings(out)
	return slices.Compact(out)
}
