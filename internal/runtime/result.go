package runtime

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
	"github.com/google/uuid"
	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/evalgraph/internal/code"
	"github.com/specialistvlad/evalgraph/internal/ctyconv"
	"github.com/specialistvlad/evalgraph/internal/node"
	"github.com/zclconf/go-cty/cty"
)

// RoundResult describes one evaluation round.
type RoundResult struct {
	// ID uniquely identifies the round in logs and feed acknowledgements.
	ID uuid.UUID
	// Number counts rounds from 1.
	Number int
	// Version is the table store version the round evaluated.
	Version uint64
	// Outputs holds the latest value of every binding, including bindings
	// skipped this round.
	Outputs map[string]any
	// Evaluated and Skipped partition the binding names, in lexical order.
	Evaluated []string
	Skipped   []string
	// Pending are the follow-up mutations requested by this round. They are
	// applied at the start of the next round.
	Pending []Mutation
	// Fetch is the latest FetchInfo of every binding evaluated so far.
	Fetch map[string]node.FetchInfo
	// Diagnostics holds the in-band diagnostics of evaluated bindings that
	// reported any.
	Diagnostics map[string]hcl.Diagnostics
}

// Native converts a binding output into plain Go values: code results and
// cty values become maps, slices and scalars, and cached values become a map
// with "value" and "is_cached" keys.
func Native(out any) (any, error) {
	switch tv := out.(type) {
	case code.Result:
		return ctyconv.FromCty(tv.Value)
	case cty.Value:
		return ctyconv.FromCty(tv)
	case node.CachedValue[code.Result]:
		return cachedNative(tv.Value, tv.IsCached)
	case node.CachedValue[cty.Value]:
		return cachedNative(tv.Value, tv.IsCached)
	case node.CachedValue[any]:
		return cachedNative(tv.Value, tv.IsCached)
	}
	return out, nil
}

func cachedNative(v any, isCached bool) (any, error) {
	native, err := Native(v)
	if err != nil {
		return nil, err
	}
	return map[string]any{"value": native, "is_cached": isCached}, nil
}

// Decode converts out with Native and decodes the result into target, which
// must be a pointer. Struct fields are matched by their json tag.
func Decode(out any, target any) error {
	native, err := Native(out)
	if err != nil {
		return err
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("creating decoder: %w", err)
	}
	return dec.Decode(native)
}
