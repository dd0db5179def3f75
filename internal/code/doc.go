// Package code implements authored-expression nodes.
//
// An authored expression is an HCL template such as "Hello ${input1.value}"
// or "${x * 2}". Its dependencies are the exposing nodes named by the roots
// of its variable traversals, and it evaluates against an HCL evaluation
// context built from those nodes' values and the methods passed to the call.
//
// Evaluation never panics on bad data: parse errors, unknown names, type
// errors, failing function calls and dependency cycles are reported in-band
// as hcl.Diagnostics on the Result.
package code
