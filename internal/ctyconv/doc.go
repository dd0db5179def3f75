// Package ctyconv converts between native Go values and cty values.
//
// Exposing nodes may hold either form: values loaded from HCL or YAML are cty
// values, while values computed by Go transforms are usually native. Code
// nodes need cty values for their evaluation context, and outputs are
// returned to Go callers in native form.
package ctyconv
