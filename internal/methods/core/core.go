// Package core lists the method modules compiled into the evalgraph binary.
package core

import (
	"github.com/specialistvlad/evalgraph/internal/methods"
	"github.com/specialistvlad/evalgraph/modules/collections"
	"github.com/specialistvlad/evalgraph/modules/encoding"
	"github.com/specialistvlad/evalgraph/modules/env_vars"
	"github.com/specialistvlad/evalgraph/modules/numeric"
	"github.com/specialistvlad/evalgraph/modules/text"
)

// Modules returns the definitive list of core modules.
func Modules() []methods.Module {
	return []methods.Module{
		&text.Module{},
		&collections.Module{},
		&numeric.Module{},
		&encoding.Module{},
		&env_vars.Module{},
	}
}

// Registry returns a registry populated with every core module.
func Registry() *methods.Registry {
	return methods.New(Modules()...)
}
