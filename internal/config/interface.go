package config

import (
	"context"

	"github.com/zclconf/go-cty/cty"
)

// Loader is the interface for a format-specific definition loader.
type Loader interface {
	// Load reads the definition from the given paths and translates it into
	// the format-agnostic model.
	Load(ctx context.Context, paths ...string) (*Model, error)
}

// StateLoader is the interface for reading seed state: values that override
// the declared values of exposing nodes before the first round.
type StateLoader interface {
	LoadState(ctx context.Context, path string) (map[string]cty.Value, error)
}
