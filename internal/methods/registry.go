package methods

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/specialistvlad/evalgraph/internal/node"
	"github.com/zclconf/go-cty/cty/function"
)

// Module is the interface that all method modules must implement to be
// registered.
type Module interface {
	Register(r *Registry)
}

// Registry holds the functions registered for a single application instance.
type Registry struct {
	functions map[string]function.Function
}

// New creates a registry and registers every module in order.
func New(modules ...Module) *Registry {
	r := &Registry{functions: make(map[string]function.Function)}
	for _, m := range modules {
		m.Register(r)
	}
	return r
}

// Register adds a function under name.
func (r *Registry) Register(name string, fn function.Function) {
	if _, exists := r.functions[name]; exists {
		panic(fmt.Sprintf("method with name '%s' already registered", name))
	}
	slog.Debug("Registering method.", "name", name)
	r.functions[name] = fn
}

// RegisterAll adds every function of fns.
func (r *Registry) RegisterAll(fns map[string]function.Function) {
	names := make([]string, 0, len(fns))
	for name := range fns {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		r.Register(name, fns[name])
	}
}

// Lookup returns the function registered under name.
func (r *Registry) Lookup(name string) (function.Function, bool) {
	fn, ok := r.functions[name]
	return fn, ok
}

// Names returns the registered names in lexical order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.functions))
	for name := range r.functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Methods returns a copy of the registered functions, ready to be passed to
// node evaluation.
func (r *Registry) Methods() node.Methods {
	out := make(node.Methods, len(r.functions))
	for name, fn := range r.functions {
		out[name] = fn
	}
	return out
}
