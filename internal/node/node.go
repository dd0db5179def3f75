package node

import (
	"errors"
	"fmt"

	"github.com/zclconf/go-cty/cty/function"
)

// Kind distinguishes the closed set of node variants.
type Kind string

const (
	// KindValue is a constant leaf.
	KindValue Kind = "value"
	// KindExposed reads a named node from the exposing table.
	KindExposed Kind = "exposed"
	// KindFunction applies a transform to a single child.
	KindFunction Kind = "function"
	// KindRecord aggregates named children into one record value.
	KindRecord Kind = "record"
	// KindCached wraps a child and reports whether its value was reused.
	KindCached Kind = "cached"
	// KindWrapContext lifts a child into a function of a late-bound parameter.
	KindWrapContext Kind = "wrapContext"
	// KindFetchCheck evaluates to the FetchInfo of its child.
	KindFetchCheck Kind = "fetchCheck"
	// KindCode is an authored expression (see internal/code).
	KindCode Kind = "code"
)

var (
	// ErrContract marks programming errors in the construction of a graph.
	// These are raised with panic and are not meant to be recovered by the
	// graph itself.
	ErrContract = errors.New("node contract violation")

	// ErrMissingExposingNode is raised when a node requires an exposing node
	// that is absent from the table.
	ErrMissingExposingNode = fmt.Errorf("%w: missing exposing node", ErrContract)
)

// Methods are the named helper functions made available to authored
// expressions during evaluation.
type Methods map[string]function.Function

// ContextFn is the value produced by a context-wrapped node: calling it with
// the late-bound parameter yields the node's value for that call.
type ContextFn[T any] func(param any) T

// CachedValue pairs a value with whether the evaluation that produced it
// reused a previous result.
type CachedValue[T any] struct {
	Value    T
	IsCached bool
}

// Reused returns the value marked as served without re-evaluation.
func (c CachedValue[T]) Reused() any {
	c.IsCached = true
	return c
}

// Reuser is implemented by values that can report they were reused.
// CachedValue is the only one.
type Reuser interface {
	Reused() any
}

// FetchInfo describes whether a node's inputs are still being loaded by a
// collaborator outside the graph.
type FetchInfo struct {
	IsFetching bool
	Ready      bool
}

// ReadyInfo is the FetchInfo of a node with nothing in flight.
var ReadyInfo = FetchInfo{Ready: true}

// Merge combines two FetchInfo values: fetching if either is, ready only if
// both are.
func (f FetchInfo) Merge(other FetchInfo) FetchInfo {
	return FetchInfo{
		IsFetching: f.IsFetching || other.IsFetching,
		Ready:      f.Ready && other.Ready,
	}
}

// Node is the type-erased contract every node kind satisfies.
//
// A node derives its value from its children and from the exposing table
// passed to each call; it never holds references to the components that
// publish exposing nodes.
type Node interface {
	// Kind reports the node variant.
	Kind() Kind

	// Children returns the nodes this node owns, in a stable order.
	Children() []Node

	// FilterNodes returns every exposing node this node transitively reads,
	// together with the dependency paths through which each is reached.
	// Results are memoized per *Table.
	FilterNodes(t *Table) DependMap

	// DependValues returns the dependency values observed by the last
	// evaluation, keyed by dependency path.
	DependValues() map[string]any

	// FetchInfo reports whether any input of the node is still loading.
	FetchInfo(t *Table) FetchInfo

	// IsHitEvalCache reports whether evaluating now would match the
	// dependency fingerprint recorded by the last evaluation. It does not
	// modify the cache.
	IsHitEvalCache(t *Table, m Methods) bool

	// EvaluateAny is Evaluate with the result boxed.
	EvaluateAny(t *Table, m Methods) any

	// WrapContextAny returns a node whose value is a ContextFn[any]: calling
	// it evaluates this node with param bound in the exposing table.
	WrapContextAny(param string) Node

	// EvalCache returns a copy of the node's evaluation cache.
	EvalCache() EvalCache
}

// Of is a node producing values of type T.
type Of[T any] interface {
	Node
	Evaluate(t *Table, m Methods) T
}

// Fielder is implemented by nodes whose value is a record with addressable
// fields. Dependency paths descend through Fielder nodes.
type Fielder interface {
	Field(name string) (Node, bool)
}

// WrapContext lifts n into a node that evaluates to a function of a
// late-bound parameter, exposed to n under the name param.
func WrapContext[T any](n Of[T], param string) Of[ContextFn[T]] {
	inner := n.WrapContextAny(param).(Of[ContextFn[any]])
	return WithFunction(inner, func(fn ContextFn[any]) ContextFn[T] {
		return func(p any) T {
			return as[T](fn(p))
		}
	})
}

// HasCycle reports whether n transitively depends on itself through the
// exposing table.
func HasCycle(n Node, t *Table) bool {
	deps := n.FilterNodes(t)
	if deps.Has(n) {
		return true
	}
	for dep := range deps {
		if dep.FilterNodes(t).Has(n) {
			return true
		}
	}
	return false
}

func as[T any](v any) T {
	if out, ok := v.(T); ok {
		return out
	}
	var zero T
	return zero
}
