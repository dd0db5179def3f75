package node

// Function applies a pure transform to the value of its child.
type Function[A, B any] struct {
	Base
	child Of[A]
	fn    func(A) B
}

// WithFunction returns a node whose value is fn applied to the value of
// child.
func WithFunction[A, B any](child Of[A], fn func(A) B) *Function[A, B] {
	return &Function[A, B]{child: child, fn: fn}
}

func (f *Function[A, B]) Kind() Kind       { return KindFunction }
func (f *Function[A, B]) Children() []Node { return []Node{f.child} }

func (f *Function[A, B]) FilterNodes(t *Table) DependMap {
	return f.Filter(t, func() DependMap { return f.child.FilterNodes(t) })
}

func (f *Function[A, B]) DependValues() map[string]any { return f.child.DependValues() }

func (f *Function[A, B]) FetchInfo(t *Table) FetchInfo {
	return f.Fetch(func() FetchInfo { return f.child.FetchInfo(t) })
}

func (f *Function[A, B]) IsHitEvalCache(t *Table, m Methods) bool { return f.IsHit(f, t, m) }

func (f *Function[A, B]) Evaluate(t *Table, m Methods) B {
	return Eval(&f.Base, f, t, m, func() B { return f.fn(f.child.Evaluate(t, m)) })
}

func (f *Function[A, B]) EvaluateAny(t *Table, m Methods) any { return f.Evaluate(t, m) }

// WrapContextAny wraps the child and applies the transform inside every call
// of the resulting function.
func (f *Function[A, B]) WrapContextAny(param string) Node {
	inner := f.child.WrapContextAny(param).(Of[ContextFn[any]])
	return WithFunction(inner, func(fn ContextFn[any]) ContextFn[any] {
		return func(p any) any { return f.fn(as[A](fn(p))) }
	})
}
