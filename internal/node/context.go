package node

type wrapContext struct {
	Base
	child Node
	param string
}

// NewWrapContext returns the default context wrapper for child: a node
// evaluating to a ContextFn[any] whose every call evaluates child against the
// table with param bound to the call argument as a constant exposing node.
//
// Node kinds use it to implement WrapContextAny.
func NewWrapContext(child Node, param string) Of[ContextFn[any]] {
	return &wrapContext{child: child, param: param}
}

func (w *wrapContext) Kind() Kind       { return KindWrapContext }
func (w *wrapContext) Children() []Node { return []Node{w.child} }

// FilterNodes reports the child's dependencies other than the parameter,
// which is bound per call rather than read from the table.
func (w *wrapContext) FilterNodes(t *Table) DependMap {
	return w.Filter(t, func() DependMap {
		placeholder := FromValue[any](nil)
		return w.child.FilterNodes(t.With(w.param, placeholder)).Without(placeholder)
	})
}

func (w *wrapContext) DependValues() map[string]any { return w.child.DependValues() }

func (w *wrapContext) FetchInfo(t *Table) FetchInfo {
	return w.Fetch(func() FetchInfo {
		return w.child.FetchInfo(t.With(w.param, FromValue[any](nil)))
	})
}

func (w *wrapContext) IsHitEvalCache(t *Table, m Methods) bool { return w.IsHit(w, t, m) }

func (w *wrapContext) Evaluate(t *Table, m Methods) ContextFn[any] {
	return Eval(&w.Base, w, t, m, func() ContextFn[any] {
		return func(p any) any {
			return w.child.EvaluateAny(t.With(w.param, FromValue(p)), m)
		}
	})
}

func (w *wrapContext) EvaluateAny(t *Table, m Methods) any { return w.Evaluate(t, m) }

func (w *wrapContext) WrapContextAny(param string) Node { return NewWrapContext(w, param) }
