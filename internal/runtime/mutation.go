package runtime

import (
	"context"
	"fmt"

	"dario.cat/mergo"
	"github.com/specialistvlad/evalgraph/internal/node"
	"github.com/specialistvlad/evalgraph/internal/tablestore"
)

// Mutation is a change to the exposing table, applied between rounds.
type Mutation interface {
	// Target returns the exposing name the mutation writes.
	Target() string

	apply(ctx context.Context, s tablestore.Store, m node.Methods) error
}

// Set publishes Value as a constant exposing node under Name. Setting a
// value equal to the one already published is a no-op, so it does not
// trigger dependent bindings.
type Set struct {
	Name  string
	Value any
}

func (s Set) Target() string { return s.Name }

func (s Set) String() string { return fmt.Sprintf("set %s", s.Name) }

func (s Set) apply(ctx context.Context, store tablestore.Store, _ node.Methods) error {
	cur, ok, err := store.Get(ctx, s.Name)
	if err != nil {
		return err
	}
	if ok {
		if v, isConst := cur.(*node.Value[any]); isConst && node.SameValue(v.Constant(), s.Value) {
			return nil
		}
	}
	return store.Set(ctx, s.Name, node.FromValue[any](s.Value))
}

// Merge deep-merges Patch into the object published under Name, overriding
// existing keys. A missing or null exposing value is treated as an empty
// object.
type Merge struct {
	Name  string
	Patch map[string]any
}

func (m Merge) Target() string { return m.Name }

func (m Merge) String() string { return fmt.Sprintf("merge %s", m.Name) }

func (m Merge) apply(ctx context.Context, store tablestore.Store, methods node.Methods) error {
	base := map[string]any{}

	cur, ok, err := store.Get(ctx, m.Name)
	if err != nil {
		return err
	}
	if ok {
		table, err := store.Snapshot(ctx)
		if err != nil {
			return err
		}
		native, err := Native(cur.EvaluateAny(table, methods))
		if err != nil {
			return fmt.Errorf("merge %s: %w", m.Name, err)
		}
		switch tv := native.(type) {
		case nil:
		case map[string]any:
			base = deepCopy(tv).(map[string]any)
		default:
			return fmt.Errorf("merge %s: exposing value is %T, not an object", m.Name, native)
		}
	}

	if err := mergo.Merge(&base, deepCopy(m.Patch).(map[string]any), mergo.WithOverride); err != nil {
		return fmt.Errorf("merge %s: %w", m.Name, err)
	}
	return Set{Name: m.Name, Value: base}.apply(ctx, store, methods)
}

// Delete removes the exposing node published under Name.
type Delete struct {
	Name string
}

func (d Delete) Target() string { return d.Name }

func (d Delete) String() string { return fmt.Sprintf("delete %s", d.Name) }

func (d Delete) apply(ctx context.Context, store tablestore.Store, _ node.Methods) error {
	return store.Delete(ctx, d.Name)
}

func deepCopy(v any) any {
	switch tv := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(tv))
		for k, elem := range tv {
			out[k] = deepCopy(elem)
		}
		return out
	case []any:
		out := make([]any, len(tv))
		for i, elem := range tv {
			out[i] = deepCopy(elem)
		}
		return out
	default:
		return v
	}
}
