package node

type fetchCheck struct {
	Base
	child Node
}

// FetchCheck returns a node whose value is the FetchInfo of child.
func FetchCheck(child Node) Of[FetchInfo] {
	return &fetchCheck{child: child}
}

func (f *fetchCheck) Kind() Kind       { return KindFetchCheck }
func (f *fetchCheck) Children() []Node { return []Node{f.child} }

func (f *fetchCheck) FilterNodes(t *Table) DependMap {
	return f.Filter(t, func() DependMap { return f.child.FilterNodes(t) })
}

func (f *fetchCheck) FetchInfo(t *Table) FetchInfo {
	return f.Fetch(func() FetchInfo { return f.child.FetchInfo(t) })
}

func (f *fetchCheck) IsHitEvalCache(t *Table, m Methods) bool { return f.IsHit(f, t, m) }

func (f *fetchCheck) Evaluate(t *Table, m Methods) FetchInfo {
	return Eval(&f.Base, f, t, m, func() FetchInfo { return f.FetchInfo(t) })
}

func (f *fetchCheck) EvaluateAny(t *Table, m Methods) any { return f.Evaluate(t, m) }

func (f *fetchCheck) WrapContextAny(param string) Node { return NewWrapContext(f, param) }
