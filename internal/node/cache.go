package node

import (
	"reflect"

	"github.com/zclconf/go-cty/cty"
)

// EvalCache records the last evaluation of a node: the exposing nodes it
// depended on, the value each had at that time, and the value produced.
type EvalCache struct {
	valid       bool
	deps        DependMap
	fingerprint map[Node]any
	value       any
}

// Valid reports whether the node has been evaluated at least once.
func (c EvalCache) Valid() bool { return c.valid }

// Value returns the recorded value, or nil for an empty cache.
func (c EvalCache) Value() any { return c.value }

// Fingerprint returns a copy of the recorded dependency values.
func (c EvalCache) Fingerprint() map[Node]any {
	out := make(map[Node]any, len(c.fingerprint))
	for k, v := range c.fingerprint {
		out[k] = v
	}
	return out
}

func (c EvalCache) clone() EvalCache {
	out := c
	out.fingerprint = c.Fingerprint()
	out.deps = make(DependMap, len(c.deps))
	out.deps.Merge(c.deps)
	return out
}

func (c EvalCache) matches(fp map[Node]any) bool {
	if !c.valid || len(c.fingerprint) != len(fp) {
		return false
	}
	for n, v := range fp {
		prev, ok := c.fingerprint[n]
		if !ok || !SameValue(prev, v) {
			return false
		}
	}
	return true
}

// SameValue compares dependency values structurally. cty values are compared
// with RawEquals so unknown and marked values take part in the comparison.
func SameValue(a, b any) bool {
	if av, ok := a.(cty.Value); ok {
		bv, ok := b.(cty.Value)
		if !ok {
			return false
		}
		if av.Type() == cty.NilType || bv.Type() == cty.NilType {
			return av.Type() == cty.NilType && bv.Type() == cty.NilType
		}
		return av.RawEquals(bv)
	}
	return reflect.DeepEqual(a, b)
}

// Base carries the bookkeeping shared by every node kind: the evaluation
// cache, the per-table FilterNodes memo and the reentrancy guards that keep
// cyclic graphs from recursing forever.
//
// Base is meant to be embedded. Node kinds outside this package (see
// internal/code) embed it and route their operations through Eval, Filter
// and Fetch.
type Base struct {
	cache EvalCache
	memo  bool

	inEval   bool
	inFilter bool
	inFetch  bool
	cyclic   bool

	filterTable  *Table
	filterResult DependMap
	filterValid  bool
}

// Memoize makes the node return its recorded value whenever the dependency
// fingerprint is unchanged, instead of recomputing it.
func (b *Base) Memoize() { b.memo = true }

// Cyclic reports whether an evaluation of the node ever re-entered itself.
func (b *Base) Cyclic() bool { return b.cyclic }

// EvalCache returns a copy of the evaluation cache.
func (b *Base) EvalCache() EvalCache { return b.cache.clone() }

// DependValues maps each dependency path of the last evaluation to the value
// its exposing node had at that time.
func (b *Base) DependValues() map[string]any {
	out := map[string]any{}
	for n, paths := range b.cache.deps {
		v, ok := b.cache.fingerprint[n]
		if !ok {
			continue
		}
		for _, p := range paths {
			out[p] = v
		}
	}
	return out
}

// Filter memoizes compute for the table t. A call that re-enters the same
// node while compute runs sees an empty map, which cuts dependency cycles.
func (b *Base) Filter(t *Table, compute func() DependMap) DependMap {
	if b.filterValid && b.filterTable == t {
		return b.filterResult
	}
	if b.inFilter {
		return DependMap{}
	}
	b.inFilter = true
	defer func() { b.inFilter = false }()

	res := compute()
	b.filterTable, b.filterResult, b.filterValid = t, res, true
	return res
}

// Fetch guards compute against re-entry, reporting a re-entered node as
// ready.
func (b *Base) Fetch(compute func() FetchInfo) FetchInfo {
	if b.inFetch {
		return ReadyInfo
	}
	b.inFetch = true
	defer func() { b.inFetch = false }()
	return compute()
}

// IsHit reports whether the dependency fingerprint of self for t matches the
// recorded one.
func (b *Base) IsHit(self Node, t *Table, m Methods) bool {
	if !b.cache.valid || b.inEval {
		return false
	}
	return b.cache.matches(fingerprintOf(self, self.FilterNodes(t), t, m))
}

// Eval runs the shared evaluation protocol for self: it computes the
// dependency fingerprint, reuses the recorded value when self is memoized and
// nothing changed, and otherwise calls compute and records the result.
//
// Re-entering a node that is already being evaluated yields the zero value of
// T and marks the node cyclic. Dependencies are read with Observe, so within
// one pass each is evaluated once.
func Eval[T any](b *Base, self Node, t *Table, m Methods, compute func() T) T {
	if b.inEval {
		b.cyclic = true
		var zero T
		return zero
	}
	b.inEval = true
	defer func() { b.inEval = false }()
	defer t.enter()()

	deps := self.FilterNodes(t)
	fp := fingerprintOf(self, deps, t, m)
	if b.memo && b.cache.matches(fp) {
		return as[T](b.cache.value)
	}

	v := compute()
	b.cache = EvalCache{valid: true, deps: deps, fingerprint: fp, value: v}
	return v
}

// fingerprintOf reads every dependency through the table's evaluation pass,
// so nested fingerprints share one value per exposing node.
func fingerprintOf(self Node, deps DependMap, t *Table, m Methods) map[Node]any {
	defer t.enter()()
	fp := make(map[Node]any, len(deps))
	for dep := range deps {
		if dep == self {
			continue
		}
		fp[dep] = Observe(t, dep, m)
	}
	return fp
}
