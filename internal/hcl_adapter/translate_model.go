// This file contains the logic for translating HCL schema structs into the
// format-agnostic model defined in the config package.

package hcl_adapter

import (
	"context"
	"fmt"

	"github.com/specialistvlad/evalgraph/internal/config"
	"github.com/specialistvlad/evalgraph/internal/ctxlog"
	"github.com/specialistvlad/evalgraph/internal/schema"
)

// translateExpose converts the HCL-specific expose schema into the agnostic
// model. src is the content of the file declaring the block.
func (l *Loader) translateExpose(ctx context.Context, e *schema.Expose, src []byte) (*config.Expose, error) {
	logger := ctxlog.FromContext(ctx).With("expose", e.Name)

	hasValue := isExprDefined(e.Value)
	hasCode := isExprDefined(e.Code)
	switch {
	case hasValue && hasCode:
		return nil, fmt.Errorf("%s: expose %q: only one of value and code may be set", e.DeclRange, e.Name)
	case !hasValue && !hasCode:
		return nil, fmt.Errorf("%s: expose %q: one of value and code is required", e.DeclRange, e.Name)
	}

	def := &config.Expose{
		Name:     e.Name,
		Fetching: e.Fetching != nil && *e.Fetching,
		Source:   e.DeclRange.String(),
	}
	if hasCode {
		logger.Debug("Translating expose with code.")
		def.Code = exprTemplate(e.Code, src)
		return def, nil
	}

	val, diags := e.Value.Value(nil)
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid value for expose %q: %w", e.Name, diags)
	}
	logger.Debug("Translating expose with constant value.", "type", val.Type().FriendlyName())
	def.Value = &val
	return def, nil
}

// translateBinding converts the HCL-specific binding schema into the agnostic
// model.
func (l *Loader) translateBinding(ctx context.Context, b *schema.Binding, src []byte) *config.Binding {
	ctxlog.FromContext(ctx).Debug("Translating binding.", "binding", b.Name)

	def := &config.Binding{
		Name:   b.Name,
		Code:   exprTemplate(b.Code, src),
		Cached: b.Cached != nil && *b.Cached,
		Reset:  b.Reset,
		Source: b.DeclRange.String(),
	}
	if b.Fallback != nil {
		def.Fallback = *b.Fallback
	}
	return def
}
