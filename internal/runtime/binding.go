package runtime

import (
	"reflect"

	"github.com/specialistvlad/evalgraph/internal/code"
	"github.com/specialistvlad/evalgraph/internal/node"
	"github.com/zclconf/go-cty/cty"
)

// FollowUpFunc computes the mutations a binding requests after it was
// re-evaluated. prev is the binding's output from the previous evaluation and
// next the new one. It is not called on a binding's first evaluation.
type FollowUpFunc func(prev, next any) []Mutation

// Binding is a named node whose value the application consumes.
type Binding struct {
	Name     string
	Node     node.Node
	FollowUp FollowUpFunc
}

// ResetOnChange returns a FollowUpFunc that sets every name in names to null
// whenever the binding's output changes.
func ResetOnChange(names ...string) FollowUpFunc {
	return func(prev, next any) []Mutation {
		if sameOutput(prev, next) {
			return nil
		}
		out := make([]Mutation, 0, len(names))
		for _, name := range names {
			out = append(out, Set{Name: name, Value: nil})
		}
		return out
	}
}

func sameOutput(a, b any) bool {
	na, errA := Native(unwrapCached(a))
	nb, errB := Native(unwrapCached(b))
	if errA != nil || errB != nil {
		return node.SameValue(a, b)
	}
	return reflect.DeepEqual(na, nb)
}

// unwrapCached drops the cache status, which alone does not make an output
// different.
func unwrapCached(v any) any {
	switch tv := v.(type) {
	case node.CachedValue[code.Result]:
		return tv.Value
	case node.CachedValue[cty.Value]:
		return tv.Value
	case node.CachedValue[any]:
		return tv.Value
	}
	return v
}
