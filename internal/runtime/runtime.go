package runtime

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/hashicorp/hcl/v2"
	"github.com/samber/lo"
	"github.com/specialistvlad/evalgraph/internal/code"
	"github.com/specialistvlad/evalgraph/internal/ctxlog"
	"github.com/specialistvlad/evalgraph/internal/exposepath"
	"github.com/specialistvlad/evalgraph/internal/node"
	"github.com/specialistvlad/evalgraph/internal/tablestore"
)

// Runtime evaluates a fixed set of bindings against a table store.
//
// Round must not be called concurrently with itself; calls are serialized.
// Enqueue may be called from any goroutine.
type Runtime struct {
	store    tablestore.Store
	methods  node.Methods
	bindings []Binding

	mu      sync.Mutex // guards queue
	queue   []Mutation
	roundMu sync.Mutex // serializes rounds

	pending     []Mutation
	outputs     map[string]any
	fetch       map[string]node.FetchInfo
	lastPaths   map[string][]string // dependency paths seen at each binding's last evaluation
	lastVersion uint64
	rounds      int
}

// New creates a runtime over store. Binding names must be unique and every
// binding must carry a node.
func New(store tablestore.Store, methods node.Methods, bindings ...Binding) (*Runtime, error) {
	var errs *multierror.Error
	seen := make(map[string]struct{}, len(bindings))
	for _, b := range bindings {
		if b.Name == "" {
			errs = multierror.Append(errs, errors.New("binding with empty name"))
			continue
		}
		if _, dup := seen[b.Name]; dup {
			errs = multierror.Append(errs, fmt.Errorf("binding %q declared more than once", b.Name))
		}
		seen[b.Name] = struct{}{}
		if b.Node == nil {
			errs = multierror.Append(errs, fmt.Errorf("binding %q has no node", b.Name))
		}
	}
	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}

	sorted := append([]Binding(nil), bindings...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	return &Runtime{
		store:     store,
		methods:   methods,
		bindings:  sorted,
		outputs:   make(map[string]any),
		fetch:     make(map[string]node.FetchInfo),
		lastPaths: make(map[string][]string),
	}, nil
}

// Enqueue queues mutations for the next round.
func (r *Runtime) Enqueue(muts ...Mutation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queue = append(r.queue, muts...)
}

// Bindings returns the binding names in lexical order.
func (r *Runtime) Bindings() []string {
	return lo.Map(r.bindings, func(b Binding, _ int) string { return b.Name })
}

// Binding returns the binding called name.
func (r *Runtime) Binding(name string) (Binding, bool) {
	return lo.Find(r.bindings, func(b Binding) bool { return b.Name == name })
}

// Round runs one evaluation round.
//
// The returned error aggregates mutation failures and contract violations
// raised while evaluating individual bindings; the round still evaluates
// every other binding and the result is always returned.
func (r *Runtime) Round(ctx context.Context) (*RoundResult, error) {
	r.roundMu.Lock()
	defer r.roundMu.Unlock()

	logger := ctxlog.FromContext(ctx)
	var errs *multierror.Error

	r.mu.Lock()
	muts := append(r.pending, r.queue...)
	r.pending, r.queue = nil, nil
	r.mu.Unlock()

	for _, m := range muts {
		if err := m.apply(ctx, r.store, r.methods); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("applying %s: %w", m.Target(), err))
		}
	}

	table, err := r.store.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("taking table snapshot: %w", err)
	}
	version, err := r.store.Version(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading table version: %w", err)
	}
	changed, err := r.store.ChangedSince(ctx, r.lastVersion)
	if err != nil {
		return nil, fmt.Errorf("reading table changes: %w", err)
	}

	r.rounds++
	res := &RoundResult{
		ID:          uuid.New(),
		Number:      r.rounds,
		Version:     version,
		Diagnostics: make(map[string]hcl.Diagnostics),
	}
	logger.Debug("Starting round.", "round", res.Number, "id", res.ID, "version", version, "mutations", len(muts), "changed", changed)

	for _, b := range r.bindings {
		if res.Number > 1 && !r.affected(b, table, changed) {
			res.Skipped = append(res.Skipped, b.Name)
			// A skipped cached binding served its previous value.
			if ru, ok := r.outputs[b.Name].(node.Reuser); ok {
				r.outputs[b.Name] = ru.Reused()
			}
			continue
		}

		out, info, err := r.evaluate(b, table)
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		res.Evaluated = append(res.Evaluated, b.Name)
		if deps, err := r.dependencies(b, table); err == nil {
			r.lastPaths[b.Name] = deps.Paths()
		}
		r.fetch[b.Name] = info
		if diags := code.DiagnosticsOf(out); len(diags) > 0 {
			res.Diagnostics[b.Name] = diags
		}

		prev, hadPrev := r.outputs[b.Name]
		r.outputs[b.Name] = out
		if b.FollowUp != nil && hadPrev {
			res.Pending = append(res.Pending, b.FollowUp(prev, out)...)
		}
	}

	res.Outputs = make(map[string]any, len(r.outputs))
	for k, v := range r.outputs {
		res.Outputs[k] = v
	}
	res.Fetch = make(map[string]node.FetchInfo, len(r.fetch))
	for k, v := range r.fetch {
		res.Fetch[k] = v
	}
	r.pending = append([]Mutation(nil), res.Pending...)
	r.lastVersion = version

	logger.Debug("Finished round.", "round", res.Number, "evaluated", len(res.Evaluated), "skipped", len(res.Skipped), "pending", len(res.Pending))
	return res, errs.ErrorOrNil()
}

// Dependents returns, in lexical order, the bindings that read the exposing
// path or a path related to it.
func (r *Runtime) Dependents(ctx context.Context, path string) ([]string, error) {
	target, err := exposepath.Parse(path)
	if err != nil {
		return nil, err
	}
	table, err := r.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	var out []string
	for _, b := range r.bindings {
		deps, err := r.dependencies(b, table)
		if err != nil {
			continue
		}
		if lo.ContainsBy(deps.Paths(), func(p string) bool { return pathsRelated(p, target) }) {
			out = append(out, b.Name)
		}
	}
	return out, nil
}

// Dependencies returns the dependency map of the binding called name against
// the current table.
func (r *Runtime) Dependencies(ctx context.Context, name string) (node.DependMap, error) {
	b, ok := r.Binding(name)
	if !ok {
		return nil, fmt.Errorf("unknown binding %q", name)
	}
	table, err := r.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return r.dependencies(b, table)
}

// affected reports whether b reads, or read at its last evaluation, any
// exposing name in changed. The previous paths matter when a dependency was
// deleted. A binding whose dependencies cannot be resolved is always
// affected, so that its evaluation reports the problem.
func (r *Runtime) affected(b Binding, table *node.Table, changed []string) bool {
	if len(changed) == 0 {
		return false
	}
	deps, err := r.dependencies(b, table)
	if err != nil {
		return true
	}
	paths := append(deps.Paths(), r.lastPaths[b.Name]...)
	roots := lo.Uniq(lo.Map(paths, func(p string, _ int) string { return rootOf(p) }))
	return len(lo.Intersect(roots, changed)) > 0
}

func (r *Runtime) dependencies(b Binding, table *node.Table) (deps node.DependMap, err error) {
	defer recoverContract(b.Name, &err)
	return b.Node.FilterNodes(table), nil
}

func (r *Runtime) evaluate(b Binding, table *node.Table) (out any, info node.FetchInfo, err error) {
	defer recoverContract(b.Name, &err)
	info = b.Node.FetchInfo(table)
	out = b.Node.EvaluateAny(table, r.methods)
	return out, info, nil
}

// recoverContract turns a contract-violation panic into an error. Any other
// panic is re-raised.
func recoverContract(binding string, err *error) {
	p := recover()
	if p == nil {
		return
	}
	if perr, ok := p.(error); ok && errors.Is(perr, node.ErrContract) {
		*err = fmt.Errorf("binding %q: %w", binding, perr)
		return
	}
	panic(p)
}

func rootOf(path string) string {
	if p, err := exposepath.Parse(path); err == nil {
		return p.Root()
	}
	return path
}

func pathsRelated(path string, target *exposepath.Path) bool {
	p, err := exposepath.Parse(path)
	if err != nil {
		return path == target.String()
	}
	return exposepath.Related(p, target)
}
