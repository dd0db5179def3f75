package encoding

import (
	"github.com/specialistvlad/evalgraph/internal/methods"
	yaml "github.com/zclconf/go-cty-yaml"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// Module implements the methods.Module interface for this package.
type Module struct{}

// Register registers the serialization functions.
func (m *Module) Register(r *methods.Registry) {
	r.RegisterAll(map[string]function.Function{
		"csvdecode":  stdlib.CSVDecodeFunc,
		"jsondecode": stdlib.JSONDecodeFunc,
		"jsonencode": stdlib.JSONEncodeFunc,
		"yamldecode": yaml.YAMLDecodeFunc,
		"yamlencode": yaml.YAMLEncodeFunc,
	})
}
