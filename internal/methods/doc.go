// Package methods provides the registry for the helper functions that
// authored expressions may call.
//
// Functions are contributed by modules. Each module registers a set of named
// cty functions during application startup, and the assembled set is handed
// to every evaluation as node.Methods. Registering the same name twice is a
// programming error and panics, so a collision between modules surfaces at
// startup instead of silently shadowing a function.
package methods
