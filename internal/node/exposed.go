package node

import "fmt"

// Ref reads the exposing node registered under a name. The exposing node is
// looked up in the table of every call, so a Ref never keeps it alive.
type Ref[T any] struct {
	Base
	name string
}

// Exposed returns a node that evaluates to the value of the exposing node
// called name. If that value is not a T the node evaluates to the zero T;
// use Exposed[any] when the exposing type is not known up front.
//
// Every operation that needs the exposing node panics with an error wrapping
// ErrMissingExposingNode when name is absent from the table.
func Exposed[T any](name string) *Ref[T] {
	return &Ref[T]{name: name}
}

// Name returns the exposing name the node reads.
func (r *Ref[T]) Name() string { return r.name }

func (r *Ref[T]) target(t *Table) Node {
	n, ok := t.Lookup(r.name)
	if !ok {
		panic(fmt.Errorf("%w: %q", ErrMissingExposingNode, r.name))
	}
	return n
}

func (r *Ref[T]) Kind() Kind       { return KindExposed }
func (r *Ref[T]) Children() []Node { return nil }

func (r *Ref[T]) FilterNodes(t *Table) DependMap {
	return r.Filter(t, func() DependMap {
		n := r.target(t)
		deps := DependMap{}
		deps.Add(n, r.name)
		deps.Merge(n.FilterNodes(t))
		return deps
	})
}

func (r *Ref[T]) FetchInfo(t *Table) FetchInfo {
	return r.Fetch(func() FetchInfo { return r.target(t).FetchInfo(t) })
}

func (r *Ref[T]) IsHitEvalCache(t *Table, m Methods) bool { return r.IsHit(r, t, m) }

func (r *Ref[T]) Evaluate(t *Table, m Methods) T {
	return Eval(&r.Base, r, t, m, func() T {
		return as[T](Observe(t, r.target(t), m))
	})
}

func (r *Ref[T]) EvaluateAny(t *Table, m Methods) any { return r.Evaluate(t, m) }

func (r *Ref[T]) WrapContextAny(param string) Node { return NewWrapContext(r, param) }
