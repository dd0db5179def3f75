// Package explain renders the dependency structure of a node as a tree, for
// the deps command and debug logging.
package explain

import (
	"fmt"
	"sort"

	"github.com/samber/lo"
	"github.com/specialistvlad/evalgraph/internal/code"
	"github.com/specialistvlad/evalgraph/internal/node"
	"github.com/xlab/treeprint"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// Tree builds the tree of n, published as name. It lists the node's own
// structure, the exposing paths it reads with the values observed by its
// last evaluation, and its fetch state. It does not evaluate anything.
func Tree(name string, n node.Node, t *node.Table) treeprint.Tree {
	root := treeprint.NewWithRoot(fmt.Sprintf("%s (%s)", name, n.Kind()))
	root.AddMetaNode("fetch", fetchLabel(n.FetchInfo(t)))

	if children := n.Children(); len(children) > 0 {
		addChildren(root.AddBranch("structure"), children)
	}

	deps := n.FilterNodes(t).Paths()
	if len(deps) == 0 {
		return root
	}
	values := n.DependValues()
	branch := root.AddBranch("depends on")
	for _, p := range deps {
		v, ok := values[p]
		if !ok {
			branch.AddMetaNode("not evaluated", p)
			continue
		}
		branch.AddNode(fmt.Sprintf("%s = %s", p, Format(v)))
	}
	return root
}

// Render returns the tree of n as text.
func Render(name string, n node.Node, t *node.Table) string {
	return Tree(name, n, t).String()
}

// Dependents renders, for every exposing path, the bindings that read it.
func Dependents(byPath map[string][]string) string {
	root := treeprint.NewWithRoot("exposing paths")
	paths := lo.Keys(byPath)
	sort.Strings(paths)
	for _, p := range paths {
		branch := root.AddBranch(p)
		for _, b := range byPath[p] {
			branch.AddNode(b)
		}
	}
	return root.String()
}

func addChildren(tree treeprint.Tree, children []node.Node) {
	for _, c := range children {
		if grand := c.Children(); len(grand) > 0 {
			addChildren(tree.AddBranch(string(c.Kind())), grand)
			continue
		}
		tree.AddNode(string(c.Kind()))
	}
}

func fetchLabel(info node.FetchInfo) string {
	switch {
	case info.IsFetching:
		return "fetching"
	case info.Ready:
		return "ready"
	}
	return "pending"
}

// Format renders a dependency value as JSON where it converts to a cty
// value, and with fmt otherwise.
func Format(v any) string {
	cv, err := code.ToValue(v)
	if err != nil || !cv.IsWhollyKnown() {
		return fmt.Sprintf("%v", v)
	}
	if cv.IsNull() {
		return "null"
	}
	out, err := ctyjson.Marshal(cv, cv.Type())
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(out)
}
