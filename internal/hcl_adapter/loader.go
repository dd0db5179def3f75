package hcl_adapter

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/evalgraph/internal/config"
	"github.com/specialistvlad/evalgraph/internal/ctxlog"
	"github.com/specialistvlad/evalgraph/internal/fsutil"
	"github.com/specialistvlad/evalgraph/internal/schema"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

var _ config.Loader = (*Loader)(nil)

// NewLoader creates a new HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load orchestrates the entire HCL loading process. It is agnostic to the
// origin of the paths and accepts `expose` and `binding` blocks from any file.
// A name declared twice, in one file or across files, is an error.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	model := config.NewModel()

	hclFiles, err := fsutil.CollectFiles(paths, ".hcl")
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(hclFiles))

	parser := hclparse.NewParser()

	for _, file := range hclFiles {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root schema.File
		diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		for _, e := range root.Exposes {
			if prev, ok := model.Exposes[e.Name]; ok {
				return nil, fmt.Errorf("%s: expose %q already declared at %s", e.DeclRange, e.Name, prev.Source)
			}
			def, err := l.translateExpose(ctx, e, hclFile.Bytes)
			if err != nil {
				return nil, err
			}
			model.Exposes[def.Name] = def
		}
		for _, b := range root.Bindings {
			if prev, ok := model.Bindings[b.Name]; ok {
				return nil, fmt.Errorf("%s: binding %q already declared at %s", b.DeclRange, b.Name, prev.Source)
			}
			model.Bindings[b.Name] = l.translateBinding(ctx, b, hclFile.Bytes)
		}
	}

	if err := model.Validate(); err != nil {
		return nil, err
	}

	logger.Debug("HCL loading complete.", "exposes", len(model.Exposes), "bindings", len(model.Bindings))
	return model, nil
}
