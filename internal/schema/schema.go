package schema

import (
	"github.com/hashicorp/hcl/v2"
)

// Expose represents an `expose` block: a named value published to every
// expression of the application. Exactly one of Value and Code is set.
type Expose struct {
	Name string `hcl:"name,label"`
	// Value is a constant expression; it may not reference other names.
	Value hcl.Expression `hcl:"value,optional"`
	// Code is an expression evaluated against the other exposing nodes.
	Code hcl.Expression `hcl:"code,optional"`
	// Fetching marks the value as still being loaded.
	Fetching *bool `hcl:"fetching,optional"`

	DeclRange hcl.Range `hcl:",def_range"`
}

// Binding represents a `binding` block: an expression whose value the
// application consumes.
type Binding struct {
	Name     string         `hcl:"name,label"`
	Code     hcl.Expression `hcl:"code"`
	Cached   *bool          `hcl:"cached,optional"`
	Fallback *string        `hcl:"fallback,optional"`
	Reset    []string       `hcl:"reset,optional"`

	DeclRange hcl.Range `hcl:",def_range"`
}

// File represents the top-level structure of a definition file.
type File struct {
	Exposes  []*Expose  `hcl:"expose,block"`
	Bindings []*Binding `hcl:"binding,block"`
	Remain   hcl.Body   `hcl:",remain"`
}
