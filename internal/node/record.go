package node

import "sort"

// Record aggregates named children into a single map value.
type Record struct {
	Base
	keys   []string
	fields map[string]Node
}

// FromRecord returns a node whose value maps each key of fields to the value
// of the corresponding child. Children are visited in lexical key order.
func FromRecord(fields map[string]Node) *Record {
	r := &Record{fields: make(map[string]Node, len(fields))}
	for k, n := range fields {
		r.keys = append(r.keys, k)
		r.fields[k] = n
	}
	sort.Strings(r.keys)
	return r
}

// Keys returns the field names in lexical order.
func (r *Record) Keys() []string { return append([]string(nil), r.keys...) }

// Field returns the child stored under name.
func (r *Record) Field(name string) (Node, bool) {
	n, ok := r.fields[name]
	return n, ok
}

func (r *Record) Kind() Kind { return KindRecord }

func (r *Record) Children() []Node {
	out := make([]Node, 0, len(r.keys))
	for _, k := range r.keys {
		out = append(out, r.fields[k])
	}
	return out
}

func (r *Record) FilterNodes(t *Table) DependMap {
	return r.Filter(t, func() DependMap {
		deps := DependMap{}
		for _, k := range r.keys {
			deps.Merge(r.fields[k].FilterNodes(t))
		}
		return deps
	})
}

func (r *Record) DependValues() map[string]any {
	out := map[string]any{}
	for _, k := range r.keys {
		for p, v := range r.fields[k].DependValues() {
			out[p] = v
		}
	}
	return out
}

func (r *Record) FetchInfo(t *Table) FetchInfo {
	return r.Fetch(func() FetchInfo {
		info := ReadyInfo
		for _, k := range r.keys {
			info = info.Merge(r.fields[k].FetchInfo(t))
		}
		return info
	})
}

func (r *Record) IsHitEvalCache(t *Table, m Methods) bool { return r.IsHit(r, t, m) }

func (r *Record) Evaluate(t *Table, m Methods) map[string]any {
	return Eval(&r.Base, r, t, m, func() map[string]any {
		out := make(map[string]any, len(r.keys))
		for _, k := range r.keys {
			out[k] = r.fields[k].EvaluateAny(t, m)
		}
		return out
	})
}

func (r *Record) EvaluateAny(t *Table, m Methods) any { return r.Evaluate(t, m) }

func (r *Record) WrapContextAny(param string) Node { return NewWrapContext(r, param) }
