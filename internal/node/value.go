package node

// Value is a constant leaf node.
type Value[T any] struct {
	Base
	value T
	info  FetchInfo
}

// FromValue returns a node that always evaluates to v.
func FromValue[T any](v T) *Value[T] {
	return &Value[T]{value: v, info: ReadyInfo}
}

// WithFetchInfo sets the FetchInfo the node reports. It is meant to be
// called while the node is being built, before it is shared.
func (v *Value[T]) WithFetchInfo(info FetchInfo) *Value[T] {
	v.info = info
	return v
}

func (v *Value[T]) Kind() Kind       { return KindValue }
func (v *Value[T]) Children() []Node { return nil }

func (v *Value[T]) FilterNodes(*Table) DependMap { return DependMap{} }

func (v *Value[T]) FetchInfo(*Table) FetchInfo { return v.info }

func (v *Value[T]) IsHitEvalCache(t *Table, m Methods) bool { return v.IsHit(v, t, m) }

func (v *Value[T]) Evaluate(t *Table, m Methods) T {
	return Eval(&v.Base, v, t, m, func() T { return v.value })
}

func (v *Value[T]) EvaluateAny(t *Table, m Methods) any { return v.Evaluate(t, m) }

func (v *Value[T]) WrapContextAny(param string) Node { return NewWrapContext(v, param) }

// Constant returns the held value without going through evaluation.
func (v *Value[T]) Constant() T { return v.value }
