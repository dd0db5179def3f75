package node

// Cached wraps a child and reports, with every value, whether the child
// reused its previous result.
type Cached[T any] struct {
	Base
	child *Function[T, T]
}

// NewCached wraps child. The child is first wrapped in a memoizing identity
// node seeded with the child's own cache, so the hit check reflects the
// child's previous evaluation.
func NewCached[T any](child Of[T]) *Cached[T] {
	return &Cached[T]{child: withEvalCache(child)}
}

func withEvalCache[T any](n Of[T]) *Function[T, T] {
	w := WithFunction(n, func(v T) T { return v })
	w.memo = true
	w.cache = n.EvalCache()
	return w
}

func (c *Cached[T]) Kind() Kind       { return KindCached }
func (c *Cached[T]) Children() []Node { return []Node{c.child} }

func (c *Cached[T]) FilterNodes(t *Table) DependMap {
	return c.Filter(t, func() DependMap { return c.child.FilterNodes(t) })
}

func (c *Cached[T]) DependValues() map[string]any { return c.child.DependValues() }

func (c *Cached[T]) FetchInfo(t *Table) FetchInfo {
	return c.Fetch(func() FetchInfo { return c.child.FetchInfo(t) })
}

// IsHitEvalCache and EvalCache report the wrapped child's cache; Cached
// keeps no evaluation record of its own.
func (c *Cached[T]) IsHitEvalCache(t *Table, m Methods) bool { return c.child.IsHitEvalCache(t, m) }

func (c *Cached[T]) EvalCache() EvalCache { return c.child.EvalCache() }

func (c *Cached[T]) Evaluate(t *Table, m Methods) CachedValue[T] {
	// One pass covers both calls so they observe the same dependency values.
	defer t.enter()()
	// The hit check must run first: Evaluate rewrites the child's cache.
	isCached := c.child.IsHitEvalCache(t, m)
	v := c.child.Evaluate(t, m)
	return CachedValue[T]{Value: v, IsCached: isCached}
}

func (c *Cached[T]) EvaluateAny(t *Table, m Methods) any { return c.Evaluate(t, m) }

// WrapContextAny caches the wrapped child and reports the cache status with
// every call of the resulting function.
func (c *Cached[T]) WrapContextAny(param string) Node {
	inner := NewCached(c.child.WrapContextAny(param).(Of[ContextFn[any]]))
	return WithFunction(inner, func(cv CachedValue[ContextFn[any]]) ContextFn[any] {
		return func(p any) any {
			return CachedValue[T]{Value: as[T](cv.Value(p)), IsCached: cv.IsCached}
		}
	})
}

// EvalOrMinor evaluates to the value of main when main was recomputed, and to
// the value of minor when main's dependencies did not change.
//
// It is used to reset a stateful value: main describes the value to reset
// to, and minor the value the state holds otherwise.
func EvalOrMinor[T any](main, minor Of[T]) Of[T] {
	rec := FromRecord(map[string]Node{
		"main":  NewCached(main),
		"minor": minor,
	})
	return WithFunction(rec, func(r map[string]any) T {
		mc := as[CachedValue[T]](r["main"])
		if !mc.IsCached {
			return mc.Value
		}
		return as[T](r["minor"])
	})
}
