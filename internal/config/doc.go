// Package config defines the format-agnostic model of an application
// definition, along with the Loader interface for reading it from various
// sources.
//
// An application definition declares exposing nodes, which publish values
// under a name, and bindings, which are the named expressions the
// application consumes. Concrete loaders, such as the HCL one, are provided
// in separate packages.
package config
