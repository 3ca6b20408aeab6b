package hcl

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/ConnectedSystems/openwater/internal/config"
	"github.com/ConnectedSystems/openwater/internal/ctxlog"
	"github.com/ConnectedSystems/openwater/internal/fsutil"
	"github.com/ConnectedSystems/openwater/internal/schema"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL scenario loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load discovers every scenario file under the given paths, decodes them and
// merges the results into one model. Template, domain and run blocks may be
// split across files in any way; a template name, the domain and the run may
// each be defined only once across the whole set.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	files, err := l.findScenarioFiles(paths)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered scenario files.", "count", len(files))

	model := config.NewModel()
	parser := hclparse.NewParser()

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse scenario file %s: %w", file, diags)
		}

		var root schema.Root
		diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode scenario file %s: %w", file, diags)
		}

		if err := l.merge(model, &root, file); err != nil {
			return nil, err
		}
	}

	if err := model.Validate(); err != nil {
		return nil, err
	}

	logger.Debug("HCL loading complete.",
		"templates", len(model.Templates),
		"has_domain", model.Domain != nil,
		"has_run", model.Run != nil,
	)
	return model, nil
}

// merge translates one decoded file root into the shared model.
func (l *Loader) merge(model *config.Model, root *schema.Root, file string) error {
	for _, tpl := range root.Templates {
		if _, dup := model.Templates[tpl.Name]; dup {
			return fmt.Errorf("%s: template '%s' defined more than once", file, tpl.Name)
		}
		translated, err := translateTemplate(tpl)
		if err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}
		model.Templates[tpl.Name] = translated
	}

	if root.Domain != nil {
		if model.Domain != nil {
			return fmt.Errorf("%s: domain defined more than once", file)
		}
		domain, err := translateDomain(root.Domain)
		if err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}
		model.Domain = domain
	}

	if root.Run != nil {
		if model.Run != nil {
			return fmt.Errorf("%s: run defined more than once", file)
		}
		run, err := translateRun(root.Run)
		if err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}
		model.Run = run
	}

	return nil
}

// findScenarioFiles resolves the given paths to a deduplicated, ordered list
// of .hcl files. Directories are searched recursively.
func (l *Loader) findScenarioFiles(paths []string) ([]string, error) {
	var files []string
	seen := make(map[string]struct{})

	add := func(p string) {
		if _, dup := seen[p]; !dup {
			files = append(files, p)
			seen[p] = struct{}{}
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue // It's not an error if a configured path doesn't exist.
			}
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}

		if info.IsDir() {
			found, err := fsutil.FindFilesByExtension(path, ".hcl")
			if err != nil {
				return nil, err
			}
			for _, f := range found {
				add(f)
			}
		} else if filepath.Ext(path) == ".hcl" {
			add(path)
		}
	}

	return files, nil
}
