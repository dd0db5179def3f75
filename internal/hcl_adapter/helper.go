package hcl_adapter

import (
	"github.com/hashicorp/hcl/v2"
)

// isExprDefined checks if an HCL expression was actually present in the source
// code. The HCL decoder populates omitted optional fields with non-nil,
// zero-width expression objects, so a nil check is insufficient.
func isExprDefined(expr hcl.Expression) bool {
	if expr == nil {
		return false
	}
	r := expr.Range()
	return r.End.Byte > r.Start.Byte
}

// exprTemplate returns the source text of expr, taken from the file content
// src, as a template whose only interpolation is the expression itself.
// Quoted strings and heredocs keep working since a template may interpolate
// another template.
func exprTemplate(expr hcl.Expression, src []byte) string {
	return "${" + string(expr.Range().SliceBytes(src)) + "}"
}
