package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/hashicorp/go-multierror"
	"github.com/hashicorp/hcl/v2"
	"github.com/samber/lo"
	"github.com/specialistvlad/evalgraph/internal/ctxlog"
	"github.com/specialistvlad/evalgraph/internal/explain"
	"github.com/specialistvlad/evalgraph/internal/feed"
	"github.com/specialistvlad/evalgraph/internal/runtime"
)

// roundOutput is the JSON line written for every round.
type roundOutput struct {
	Round       int                 `json:"round"`
	ID          string              `json:"id"`
	Evaluated   []string            `json:"evaluated"`
	Skipped     []string            `json:"skipped,omitempty"`
	Outputs     map[string]any      `json:"outputs"`
	Fetching    []string            `json:"fetching,omitempty"`
	Pending     []string            `json:"pending,omitempty"`
	Diagnostics map[string][]string `json:"diagnostics,omitempty"`
}

// Run executes the configured number of rounds, writing one JSON line per
// round. Rounds after the first apply the follow-up mutations requested by
// the previous one.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.", "rounds", a.config.Rounds)

	var errs *multierror.Error
	for i := 0; i < a.config.Rounds; i++ {
		if ctx.Err() != nil {
			break
		}
		if _, err := a.Apply(ctx); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("round %d: %w", i+1, err))
		}
	}

	a.logger.Debug("App.Run method finished.")
	return errs.ErrorOrNil()
}

// Apply queues muts, runs one round and writes its output. It implements
// feed.Sink.
func (a *App) Apply(ctx context.Context, muts ...runtime.Mutation) (*runtime.RoundResult, error) {
	a.runtime.Enqueue(muts...)
	res, err := a.runtime.Round(ctx)
	if res == nil {
		return nil, err
	}
	a.lastRound.Store(int64(res.Number))
	a.fetching.Store(int32(countFetching(res)))
	if err != nil {
		a.logger.Error("Round finished with errors.", "round", res.Number, "error", err)
	}
	if werr := a.writeRound(res); werr != nil {
		err = multierror.Append(err, werr)
	}
	return res, err
}

// Watch runs a first round, then applies editor changes received from the
// feed until ctx is cancelled. The health check server runs alongside when
// a port is configured.
func (a *App) Watch(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	if a.config.FeedURL == "" {
		return fmt.Errorf("a feed URL is required to watch")
	}

	a.healthCheckServer()
	defer func() {
		if err := a.closeHealthCheckServer(); err != nil {
			a.logger.Warn("Health check server did not shut down cleanly.", "error", err)
		}
	}()

	if _, err := a.Apply(ctx); err != nil {
		a.logger.Warn("Initial round finished with errors.", "error", err)
	}

	f := feed.New(feed.Options{
		URL:       a.config.FeedURL,
		Namespace: a.config.FeedNamespace,
		Event:     a.config.FeedEvent,
		AckEvent:  a.config.FeedAckEvent,
	})
	return f.Run(ctx, a)
}

// Explain evaluates every binding once and writes the dependency tree of the
// named bindings, or of all bindings when names is empty.
func (a *App) Explain(ctx context.Context, w io.Writer, names ...string) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	if len(names) == 0 {
		names = a.runtime.Bindings()
	}
	if _, err := a.runtime.Round(ctx); err != nil {
		a.logger.Warn("Round finished with errors.", "error", err)
	}

	table, err := a.store.Snapshot(ctx)
	if err != nil {
		return err
	}
	for _, name := range names {
		b, ok := a.runtime.Binding(name)
		if !ok {
			return fmt.Errorf("unknown binding %q", name)
		}
		fmt.Fprint(w, explain.Render(name, b.Node, table))
	}
	return nil
}

// ExplainPaths writes, for each exposing path, the bindings that read it.
func (a *App) ExplainPaths(ctx context.Context, w io.Writer, paths ...string) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	byPath := make(map[string][]string, len(paths))
	for _, p := range paths {
		deps, err := a.runtime.Dependents(ctx, p)
		if err != nil {
			return err
		}
		byPath[p] = deps
	}
	fmt.Fprint(w, explain.Dependents(byPath))
	return nil
}

func (a *App) writeRound(res *runtime.RoundResult) error {
	line := roundOutput{
		Round:     res.Number,
		ID:        res.ID.String(),
		Evaluated: res.Evaluated,
		Skipped:   res.Skipped,
		Outputs:   make(map[string]any, len(res.Outputs)),
	}
	if line.Evaluated == nil {
		line.Evaluated = []string{}
	}
	for name, out := range res.Outputs {
		native, err := runtime.Native(out)
		if err != nil {
			return fmt.Errorf("converting output of %q: %w", name, err)
		}
		line.Outputs[name] = native
	}
	for name, info := range res.Fetch {
		if info.IsFetching {
			line.Fetching = append(line.Fetching, name)
		}
	}
	sort.Strings(line.Fetching)
	line.Pending = lo.Map(res.Pending, func(m runtime.Mutation, _ int) string {
		return fmt.Sprint(m)
	})
	if len(res.Diagnostics) > 0 {
		line.Diagnostics = make(map[string][]string, len(res.Diagnostics))
		for name, diags := range res.Diagnostics {
			line.Diagnostics[name] = lo.Map(diags, func(d *hcl.Diagnostic, _ int) string {
				return d.Error()
			})
		}
	}

	a.outMu.Lock()
	defer a.outMu.Unlock()
	return json.NewEncoder(a.outW).Encode(line)
}

func countFetching(res *runtime.RoundResult) int {
	n := 0
	for _, info := range res.Fetch {
		if info.IsFetching || !info.Ready {
			n++
		}
	}
	return n
}
