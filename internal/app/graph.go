package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/evalgraph/internal/code"
	"github.com/specialistvlad/evalgraph/internal/config"
	"github.com/specialistvlad/evalgraph/internal/node"
	"github.com/specialistvlad/evalgraph/internal/runtime"
	"github.com/specialistvlad/evalgraph/internal/tablestore"
	"github.com/zclconf/go-cty/cty"
)

// publishExposes writes a node for every exposing declaration into store.
func publishExposes(ctx context.Context, store tablestore.Store, model *config.Model) error {
	for _, name := range model.ExposeNames() {
		if err := store.Set(ctx, name, exposeNode(model.Exposes[name])); err != nil {
			return err
		}
	}
	return nil
}

func exposeNode(e *config.Expose) node.Node {
	if e.IsCode() {
		return code.New(e.Code, code.WithFilename(e.Name))
	}
	v := node.FromValue[any](*e.Value)
	if e.Fetching {
		v.WithFetchInfo(node.FetchInfo{IsFetching: true})
	}
	return v
}

func buildBindings(model *config.Model) []runtime.Binding {
	out := make([]runtime.Binding, 0, len(model.Bindings))
	for _, name := range model.BindingNames() {
		out = append(out, bindingOf(model.Bindings[name]))
	}
	return out
}

// bindingOf assembles the node of a binding declaration: the expression,
// optionally falling back to an exposing node while its dependencies are
// unchanged, optionally wrapped to report cache hits.
func bindingOf(b *config.Binding) runtime.Binding {
	var n node.Of[code.Result] = code.New(b.Code, code.WithFilename(b.Name))
	if b.Fallback != "" {
		n = node.EvalOrMinor(n, code.Exposed(b.Fallback))
	}

	out := runtime.Binding{Name: b.Name, Node: n}
	if b.Cached {
		out.Node = node.NewCached(n)
	}
	if len(b.Reset) > 0 {
		out.FollowUp = runtime.ResetOnChange(b.Reset...)
	}
	return out
}

// parseSets reads name=value overrides. A value that parses as an HCL
// expression without references is used as such; anything else is a string.
func parseSets(sets []string) (map[string]cty.Value, error) {
	out := make(map[string]cty.Value, len(sets))
	for _, s := range sets {
		name, raw, ok := strings.Cut(s, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --set %q: expected name=value", s)
		}
		out[name] = parseSetValue(raw)
	}
	return out, nil
}

func parseSetValue(raw string) cty.Value {
	expr, diags := hclsyntax.ParseExpression([]byte(raw), "--set", hcl.InitialPos)
	if diags.HasErrors() {
		return cty.StringVal(raw)
	}
	v, diags := expr.Value(nil)
	if diags.HasErrors() {
		return cty.StringVal(raw)
	}
	return v
}
