// Package yamlstate reads seed state for exposing nodes from YAML documents.
package yamlstate

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/specialistvlad/evalgraph/internal/config"
	"github.com/specialistvlad/evalgraph/internal/ctxlog"
	yaml "github.com/zclconf/go-cty-yaml"
	"github.com/zclconf/go-cty/cty"
)

// Loader reads a YAML mapping whose keys are exposing names.
type Loader struct{}

var _ config.StateLoader = (*Loader)(nil)

// LoadState reads the file at path.
func (Loader) LoadState(ctx context.Context, path string) (map[string]cty.Value, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read state file %s: %w", path, err)
	}
	state, err := Parse(src)
	if err != nil {
		return nil, fmt.Errorf("failed to decode state file %s: %w", path, err)
	}
	ctxlog.FromContext(ctx).Debug("Loaded seed state.", "path", path, "names", len(state))
	return state, nil
}

// Parse decodes a YAML mapping into one value per key. An empty document
// yields no values.
func Parse(src []byte) (map[string]cty.Value, error) {
	if len(bytes.TrimSpace(src)) == 0 {
		return map[string]cty.Value{}, nil
	}
	v, err := yaml.Unmarshal(src, cty.DynamicPseudoType)
	if err != nil {
		return nil, err
	}
	if v.IsNull() {
		return map[string]cty.Value{}, nil
	}
	ty := v.Type()
	if !ty.IsObjectType() && !ty.IsMapType() {
		return nil, fmt.Errorf("state must be a mapping, got %s", ty.FriendlyName())
	}
	out := make(map[string]cty.Value)
	for it := v.ElementIterator(); it.Next(); {
		k, elem := it.Element()
		out[k.AsString()] = elem
	}
	return out, nil
}
