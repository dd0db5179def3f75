package code

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/evalgraph/internal/ctyconv"
	"github.com/specialistvlad/evalgraph/internal/exposepath"
	"github.com/specialistvlad/evalgraph/internal/node"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
)

// Result is the value of an authored expression together with any problems
// found while parsing or evaluating it.
type Result struct {
	Value cty.Value
	Diags hcl.Diagnostics
}

// Err returns the diagnostics as an error, or nil when none is an error.
func (r Result) Err() error {
	if r.Diags.HasErrors() {
		return r.Diags
	}
	return nil
}

// Node is an authored-expression node. It memoizes its result: a
// re-evaluation whose dependency values are unchanged returns the previous
// Result without evaluating the expression again.
type Node struct {
	node.Base

	src        string
	filename   string
	expr       hclsyntax.Expression
	parseDiags hcl.Diagnostics
	refs       []hcl.Traversal
	roots      []string
	funcs      []string
}

var _ node.Of[Result] = (*Node)(nil)

// Option configures a Node.
type Option func(*Node)

// WithFilename sets the file name reported in diagnostic ranges.
func WithFilename(name string) Option {
	return func(n *Node) { n.filename = name }
}

// New parses src as an HCL template. Parse errors are kept and reported by
// every evaluation.
func New(src string, opts ...Option) *Node {
	n := &Node{src: src, filename: "<expr>"}
	for _, opt := range opts {
		opt(n)
	}
	n.Memoize()

	expr, diags := hclsyntax.ParseTemplate([]byte(src), n.filename, hcl.InitialPos)
	n.parseDiags = diags
	if expr == nil || diags.HasErrors() {
		return n
	}
	n.expr = expr
	n.refs, n.funcs = analyze(expr)

	seen := make(map[string]struct{})
	for _, tr := range n.refs {
		root := tr.RootName()
		if _, ok := seen[root]; ok {
			continue
		}
		seen[root] = struct{}{}
		n.roots = append(n.roots, root)
	}
	return n
}

// Source returns the authored template text.
func (n *Node) Source() string { return n.src }

// References returns the unique variable traversals of the expression.
func (n *Node) References() []hcl.Traversal { return n.refs }

// CalledFunctions returns the names of the functions the expression calls.
func (n *Node) CalledFunctions() []string { return n.funcs }

func (n *Node) Kind() node.Kind       { return node.KindCode }
func (n *Node) Children() []node.Node { return nil }

func (n *Node) WrapContextAny(param string) node.Node { return node.NewWrapContext(n, param) }

// FilterNodes resolves every referenced path against the table. A path
// descends through record fields for as long as the reached node exposes
// them, so an expression reading input1.value depends on that field and not
// on the whole record. Unknown roots are skipped; evaluation reports them.
func (n *Node) FilterNodes(t *node.Table) node.DependMap {
	return n.Filter(t, func() node.DependMap {
		deps := node.DependMap{}
		for _, tr := range n.refs {
			p := exposepath.FromTraversal(tr)
			target, ok := t.Lookup(p.Root())
			if !ok {
				continue
			}

			reached := target
			reachedPath := &exposepath.Path{Segments: []exposepath.Segment{exposepath.NewSegment(p.Root())}}
			for _, seg := range p.Segments[1:] {
				f, ok := reached.(node.Fielder)
				if !ok {
					break
				}
				child, ok := f.Field(seg.Name)
				if !ok {
					break
				}
				reached = child
				reachedPath.Segments = append(reachedPath.Segments, exposepath.NewSegment(seg.Name))
				if seg.HasIndex() {
					break
				}
			}

			deps.Add(reached, reachedPath.String())
			deps.Merge(reached.FilterNodes(t))
		}
		return deps
	})
}

func (n *Node) FetchInfo(t *node.Table) node.FetchInfo {
	return n.Fetch(func() node.FetchInfo {
		info := node.ReadyInfo
		for dep := range n.FilterNodes(t) {
			if dep == node.Node(n) {
				continue
			}
			info = info.Merge(dep.FetchInfo(t))
		}
		return info
	})
}

func (n *Node) IsHitEvalCache(t *node.Table, m node.Methods) bool { return n.IsHit(n, t, m) }

func (n *Node) Evaluate(t *node.Table, m node.Methods) Result {
	return node.Eval(&n.Base, n, t, m, func() Result { return n.evaluate(t, m) })
}

func (n *Node) EvaluateAny(t *node.Table, m node.Methods) any { return n.Evaluate(t, m) }

func (n *Node) evaluate(t *node.Table, m node.Methods) Result {
	if n.expr == nil {
		return Result{Value: cty.DynamicVal, Diags: n.parseDiags}
	}
	diags := append(hcl.Diagnostics(nil), n.parseDiags...)
	if node.HasCycle(n, t) {
		return Result{Value: cty.DynamicVal, Diags: diags.Append(&hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Dependency cycle",
			Detail:   fmt.Sprintf("The expression %q depends on its own value.", n.src),
			Subject:  n.expr.Range().Ptr(),
		})}
	}

	vars := make(map[string]cty.Value, len(n.roots))
	for _, root := range n.roots {
		target, ok := t.Lookup(root)
		if !ok {
			continue
		}
		raw := node.Observe(t, target, m)
		if dd := DiagnosticsOf(raw); dd.HasErrors() {
			diags = diags.Append(&hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Dependency has errors",
				Detail:   fmt.Sprintf("The value of %q could not be evaluated: %s.", root, dd.Error()),
				Subject:  n.expr.Range().Ptr(),
			})
		}
		v, err := ToValue(raw)
		if err != nil {
			diags = diags.Append(&hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Unsupported exposing value",
				Detail:   fmt.Sprintf("The value of %q cannot be used in an expression: %s.", root, err),
				Subject:  n.expr.Range().Ptr(),
			})
			v = cty.DynamicVal
		}
		vars[root] = v
	}

	funcs := make(map[string]function.Function, len(m))
	for name, fn := range m {
		funcs[name] = fn
	}

	val, evalDiags := n.expr.Value(&hcl.EvalContext{Variables: vars, Functions: funcs})
	diags = append(diags, evalDiags...)
	if val == cty.NilVal {
		val = cty.DynamicVal
	}
	return Result{Value: val, Diags: diags}
}

// ToValue converts the value of an exposing node into a cty.Value usable in
// an evaluation context. Code results contribute their value; cached values
// become an object with value and is_cached attributes.
func ToValue(v any) (cty.Value, error) {
	switch tv := v.(type) {
	case Result:
		if tv.Value == cty.NilVal {
			return cty.DynamicVal, nil
		}
		return tv.Value, nil
	case node.CachedValue[Result]:
		inner, err := ToValue(tv.Value)
		if err != nil {
			return cty.NilVal, err
		}
		return cachedObject(inner, tv.IsCached), nil
	case node.CachedValue[cty.Value]:
		inner, err := ToValue(tv.Value)
		if err != nil {
			return cty.NilVal, err
		}
		return cachedObject(inner, tv.IsCached), nil
	}
	return ctyconv.ToCty(v)
}

// DiagnosticsOf returns the diagnostics carried by a code result, cached or
// not, and nil for any other value.
func DiagnosticsOf(v any) hcl.Diagnostics {
	switch tv := v.(type) {
	case Result:
		return tv.Diags
	case node.CachedValue[Result]:
		return tv.Value.Diags
	}
	return nil
}

func cachedObject(v cty.Value, isCached bool) cty.Value {
	return cty.ObjectVal(map[string]cty.Value{
		"value":     v,
		"is_cached": cty.BoolVal(isCached),
	})
}

// ValueOf projects a code node onto its value, dropping diagnostics.
func ValueOf(n node.Of[Result]) node.Of[cty.Value] {
	return node.WithFunction(n, func(r Result) cty.Value { return r.Value })
}

// Decoded is a code result decoded into a Go value.
type Decoded[T any] struct {
	Value T
	Diags hcl.Diagnostics
}

// Decode projects a code node onto a Go value of type T. Conversion failures
// are added to the diagnostics and leave Value at its zero value.
func Decode[T any](n node.Of[Result]) node.Of[Decoded[T]] {
	return node.WithFunction(n, func(r Result) Decoded[T] {
		out := Decoded[T]{Diags: r.Diags}
		if r.Diags.HasErrors() || !r.Value.IsWhollyKnown() {
			return out
		}
		if err := ctyconv.Decode(r.Value, &out.Value); err != nil {
			out.Diags = out.Diags.Append(&hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Unsuitable value type",
				Detail:   err.Error(),
			})
		}
		return out
	})
}

// Exposed reads the exposing node called name as a code result, so it can
// stand in for an authored expression. Values that cannot be converted are
// reported in the diagnostics.
func Exposed(name string) node.Of[Result] {
	return node.WithFunction(node.Exposed[any](name), func(v any) Result {
		val, err := ToValue(v)
		if err != nil {
			return Result{Value: cty.DynamicVal, Diags: hcl.Diagnostics{{
				Severity: hcl.DiagError,
				Summary:  "Unsupported exposing value",
				Detail:   fmt.Sprintf("The value of %q cannot be used in an expression: %s.", name, err),
			}}}
		}
		return Result{Value: val}
	})
}
