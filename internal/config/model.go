package config

import (
	"fmt"
	"sort"

	"github.com/hashicorp/go-multierror"
	"github.com/zclconf/go-cty/cty"
)

// Model is the unified, format-agnostic representation of an application
// definition.
type Model struct {
	Exposes  map[string]*Expose
	Bindings map[string]*Binding
}

// NewModel returns an empty model.
func NewModel() *Model {
	return &Model{
		Exposes:  make(map[string]*Expose),
		Bindings: make(map[string]*Binding),
	}
}

// Expose is the format-agnostic representation of an exposing node. Exactly
// one of Value and Code is set.
type Expose struct {
	Name     string
	Value    *cty.Value
	Code     string
	Fetching bool
	// Source locates the declaration for error messages, e.g. "app.hcl:3,1".
	Source string
}

// IsCode reports whether the exposing node is an authored expression.
func (e *Expose) IsCode() bool { return e.Value == nil }

// Binding is the format-agnostic representation of a consumed expression.
type Binding struct {
	Name string
	Code string
	// Cached wraps the binding so its output reports whether the value was
	// reused.
	Cached bool
	// Fallback names an exposing node whose value the binding yields while
	// the dependencies of Code are unchanged.
	Fallback string
	// Reset lists exposing names set to null whenever the output changes.
	Reset  []string
	Source string
}

// ApplyState overrides the values of exposing nodes with state. Names that
// are not declared are added as constant exposing nodes.
func (m *Model) ApplyState(state map[string]cty.Value) {
	for name, v := range state {
		v := v
		e, ok := m.Exposes[name]
		if !ok {
			e = &Expose{Name: name, Source: "state"}
			m.Exposes[name] = e
		}
		e.Value = &v
		e.Code = ""
	}
}

// Validate checks references between declarations.
func (m *Model) Validate() error {
	var errs *multierror.Error
	for _, name := range m.BindingNames() {
		b := m.Bindings[name]
		if b.Fallback != "" {
			if _, ok := m.Exposes[b.Fallback]; !ok {
				errs = multierror.Append(errs, fmt.Errorf("%s: binding %q: fallback %q is not an exposing node", b.Source, name, b.Fallback))
			}
		}
		for _, r := range b.Reset {
			if _, ok := m.Exposes[r]; !ok {
				errs = multierror.Append(errs, fmt.Errorf("%s: binding %q: reset target %q is not an exposing node", b.Source, name, r))
			}
		}
	}
	return errs.ErrorOrNil()
}

// ExposeNames returns the exposing names in lexical order.
func (m *Model) ExposeNames() []string { return sortedKeys(m.Exposes) }

// BindingNames returns the binding names in lexical order.
func (m *Model) BindingNames() []string { return sortedKeys(m.Bindings) }

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
