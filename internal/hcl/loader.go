package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/chainprobe/internal/config"
	"github.com/vk/chainprobe/internal/ctxlog"
	"github.com/vk/chainprobe/internal/fsutil"
	"github.com/vk/chainprobe/internal/schema"
)

// Loader is the HCL implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load discovers .hcl files under the given paths, decodes them, and merges
// them into a single model. Later probe definitions with the same name
// replace earlier ones; run blocks accumulate in file order.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	model := config.NewModel()

	for _, path := range paths {
		if path == "" {
			continue
		}
		files, err := fsutil.FindFilesByExtension(path, ".hcl")
		if err != nil {
			return nil, fmt.Errorf("resolve config path %q: %w", path, err)
		}
		if len(files) == 0 {
			logger.Warn("No .hcl files found at the specified path.", "path", path)
			continue
		}

		for _, file := range files {
			decoded, err := l.decodeFile(file)
			if err != nil {
				return nil, err
			}
			if err := l.mergeFile(ctx, model, file, decoded); err != nil {
				return nil, err
			}
		}
	}

	logger.Debug("Configuration loaded.", "probes", len(model.Probes), "runs", len(model.Runs))
	return model, nil
}

// decodeFile parses one .hcl file into the schema structs.
func (l *Loader) decodeFile(path string) (*schema.File, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse %s: %w", path, diags)
	}

	var decoded schema.File
	if diags := gohcl.DecodeBody(hclFile.Body, nil, &decoded); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode %s: %w", path, diags)
	}
	return &decoded, nil
}

// mergeFile translates the decoded file and merges it into the model.
func (l *Loader) mergeFile(ctx context.Context, model *config.Model, path string, decoded *schema.File) error {
	logger := ctxlog.FromContext(ctx)

	for _, probe := range decoded.Probes {
		definition, err := l.translateProbe(ctx, probe)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if _, exists := model.Probes[definition.Name]; exists {
			logger.Warn("Duplicate probe definition found, overwriting.", "probe", definition.Name, "path", path)
		}
		logger.Debug("Discovered probe definition.", "probe", definition.Name, "path", path)
		model.Probes[definition.Name] = definition
	}

	for _, run := range decoded.Runs {
		translated, err := l.translateRun(run)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		model.Runs = append(model.Runs, translated)
	}
	return nil
}
