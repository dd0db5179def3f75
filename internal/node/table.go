package node

import "sort"

// Table is an immutable snapshot of the exposing nodes visible to one
// evaluation round. A nil *Table is a valid, empty table.
//
// Nodes memoize FilterNodes by table identity, so a caller that wants those
// memos to survive across rounds must hand out the same *Table while nothing
// has changed. A table is evaluated by one goroutine at a time.
type Table struct {
	nodes map[string]Node
	pass  *evalPass
}

// evalPass records the value each exposing node had during one outermost
// evaluation against a table, so a node read by many fingerprints is
// evaluated once per pass.
type evalPass struct {
	depth  int
	values map[Node]any
	busy   map[Node]bool
}

// enter opens an evaluation pass on t, or joins the one already open. The
// returned func closes it.
func (t *Table) enter() func() {
	if t == nil {
		return func() {}
	}
	if t.pass == nil {
		t.pass = &evalPass{values: make(map[Node]any), busy: make(map[Node]bool)}
	}
	t.pass.depth++
	return func() {
		t.pass.depth--
		if t.pass.depth == 0 {
			t.pass = nil
		}
	}
}

// Observe returns the value n has in the evaluation pass running against t,
// evaluating n the first time it is read. Outside a pass it evaluates n.
func Observe(t *Table, n Node, m Methods) any {
	if t == nil || t.pass == nil {
		return n.EvaluateAny(t, m)
	}
	p := t.pass
	if v, ok := p.values[n]; ok {
		return v
	}
	if p.busy[n] {
		// Cyclic read: the node's own guard yields its zero value.
		return n.EvaluateAny(t, m)
	}
	p.busy[n] = true
	v := n.EvaluateAny(t, m)
	delete(p.busy, n)
	p.values[n] = v
	return v
}

// NewTable copies nodes into a new table.
func NewTable(nodes map[string]Node) *Table {
	t := &Table{nodes: make(map[string]Node, len(nodes))}
	for name, n := range nodes {
		t.nodes[name] = n
	}
	return t
}

// Lookup returns the exposing node registered under name.
func (t *Table) Lookup(name string) (Node, bool) {
	if t == nil {
		return nil, false
	}
	n, ok := t.nodes[name]
	return n, ok
}

// With returns a copy of the table with name bound to n.
func (t *Table) With(name string, n Node) *Table {
	out := &Table{nodes: make(map[string]Node, t.Len()+1)}
	if t != nil {
		for k, v := range t.nodes {
			out.nodes[k] = v
		}
	}
	out.nodes[name] = n
	return out
}

// Names returns the exposing names in lexical order.
func (t *Table) Names() []string {
	if t == nil {
		return nil
	}
	names := make([]string, 0, len(t.nodes))
	for name := range t.nodes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of exposing nodes.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.nodes)
}
