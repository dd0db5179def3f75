package env_vars

import (
	"os"
	"strings"

	"github.com/specialistvlad/evalgraph/internal/methods"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
)

// Module implements the methods.Module interface for this package.
type Module struct {
	// Environ overrides the process environment, in os.Environ form.
	Environ []string
}

// Register registers the env function. The environment is captured once, so
// expressions calling env stay pure for the life of the process.
func (m *Module) Register(r *methods.Registry) {
	environ := m.Environ
	if environ == nil {
		environ = os.Environ()
	}

	envMap := make(map[string]string)
	for _, e := range environ {
		pair := strings.SplitN(e, "=", 2)
		if len(pair) == 2 {
			envMap[pair[0]] = pair[1]
		}
	}

	r.Register("env", EnvFunc(envMap))
}

// EnvFunc returns a function that looks up a variable in env, returning a
// null string when it is unset.
func EnvFunc(env map[string]string) function.Function {
	return function.New(&function.Spec{
		Description: "Returns the value of an environment variable, or null when unset.",
		Params: []function.Parameter{
			{Name: "name", Type: cty.String},
		},
		Type: function.StaticReturnType(cty.String),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			v, ok := env[args[0].AsString()]
			if !ok {
				return cty.NullVal(cty.String), nil
			}
			return cty.StringVal(v), nil
		},
	})
}
