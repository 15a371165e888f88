package hcl

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/pathscript/internal/config"
	"github.com/specialistvlad/pathscript/internal/ctxlog"
	"github.com/specialistvlad/pathscript/internal/fsutil"
	"github.com/specialistvlad/pathscript/internal/scripterr"
	"github.com/specialistvlad/pathscript/internal/value"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL description loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses a single .hcl file, or every .hcl file under a directory in
// lexical order, and merges them into one description. Singleton blocks may
// appear in one file only.
func (l *Loader) Load(ctx context.Context, path string) (*config.Description, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path", path)

	files, err := findHCLFiles(path)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	desc := &config.Description{Source: path}
	parser := hclparse.NewParser()

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root fileRoot
		diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		t := &translator{src: hclFile.Bytes}
		part, err := t.translate(&root)
		if err != nil {
			return nil, fmt.Errorf("in %s: %w", file, err)
		}
		if err := desc.Merge(part); err != nil {
			return nil, fmt.Errorf("in %s: %w", file, err)
		}
	}

	logger.Debug("HCL loading complete.",
		"run_type", desc.RunType,
		"cvs", len(desc.CVs),
		"volumes", len(desc.Volumes),
		"parameters", len(desc.Parameters),
	)
	return desc, nil
}

func findHCLFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("error accessing path %s: %w", path, err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}
	files, err := fsutil.FindFilesByExtension(path, ".hcl")
	if err != nil {
		return nil, fmt.Errorf("failed to search %s: %w", path, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .hcl files found in %s", path)
	}
	return files, nil
}

// translate turns one decoded file into a partial description.
func (t *translator) translate(root *fileRoot) (*config.Description, error) {
	part := &config.Description{RunType: root.RunType}

	if root.Engine != nil {
		e, err := t.engine(root.Engine)
		if err != nil {
			return nil, err
		}
		part.Engine = e
	}

	for _, b := range root.CVs {
		cv, err := t.cv(b)
		if err != nil {
			return nil, err
		}
		part.CVs = append(part.CVs, cv)
	}

	// state and volume blocks are numbered in the order they are written.
	type declared struct {
		block   *volumeBlock
		isState bool
	}
	volumes := make([]declared, 0, len(root.States)+len(root.Volumes))
	for _, b := range root.States {
		volumes = append(volumes, declared{b, true})
	}
	for _, b := range root.Volumes {
		volumes = append(volumes, declared{b, false})
	}
	sort.SliceStable(volumes, func(i, j int) bool {
		return volumes[i].block.DefRange.Start.Byte < volumes[j].block.DefRange.Start.Byte
	})
	for _, d := range volumes {
		v, err := t.volume(d.block, d.isState)
		if err != nil {
			return nil, err
		}
		part.Volumes = append(part.Volumes, v)
	}

	if root.Storage != nil {
		mode := root.Storage.Mode
		if mode == "" {
			mode = "w"
		}
		part.Storage = &config.Storage{File: root.Storage.File, Mode: mode}
	}

	if b := root.InitialTrajectory; b != nil {
		part.InitialTrajectory = &config.InitialTrajectory{File: b.File, Index: b.Index, Topology: b.Topology}
	}

	if root.Randomizer != nil {
		part.Randomizer = &config.Randomizer{Temperature: root.Randomizer.Temperature, KB: root.Randomizer.KB}
	}

	if root.Parameters != nil {
		params, err := t.attributes(root.Parameters)
		if err != nil {
			return nil, fmt.Errorf("parameters: %w", err)
		}
		part.Parameters = params
	}
	return part, nil
}

func (t *translator) engine(b *engineBlock) (*config.Engine, error) {
	e := &config.Engine{Script: b.Script}
	if !isExprDefined(b.Options) {
		return e, nil
	}
	v, err := t.toValue(b.Options)
	if err != nil {
		return nil, fmt.Errorf("engine options: %w", err)
	}
	if v.Kind() != value.KindMapping {
		return nil, fmt.Errorf("engine options must be an object, got %s", v.Kind())
	}
	e.Options = v.Pairs()
	return e, nil
}

func (t *translator) cv(b *cvBlock) (*config.CV, error) {
	cv := &config.CV{
		Name:      b.Name,
		Class:     b.Class,
		Namespace: b.Namespace,
		DiskCache: b.DiskCache,
	}
	if b.Arguments != nil {
		args, err := t.attributes(b.Arguments)
		if err != nil {
			return nil, fmt.Errorf("cv %q: %w", b.Name, err)
		}
		cv.Arguments = args
	}
	return cv, nil
}

func (t *translator) volume(b *volumeBlock, isState bool) (*config.Volume, error) {
	kind := "volume"
	if isState {
		kind = "state"
	}
	v := &config.Volume{Name: b.Name, CV: b.CV, Periodic: b.Periodic, IsState: isState}

	if b.IsState != nil {
		v.IsState = *b.IsState
	} else if !isState {
		return nil, scripterr.Configuration("", "is_state", "volume %q must set is_state", b.Name)
	}

	var err error
	if v.LambdaMin, err = t.bound(b.LambdaMin, "lambda_min"); err != nil {
		return nil, fmt.Errorf("%s %q: %w", kind, b.Name, err)
	}
	if v.LambdaMax, err = t.bound(b.LambdaMax, "lambda_max"); err != nil {
		return nil, fmt.Errorf("%s %q: %w", kind, b.Name, err)
	}
	if !b.Periodic {
		return v, nil
	}
	if !isExprDefined(b.PeriodMin) || !isExprDefined(b.PeriodMax) {
		return nil, scripterr.Configuration("", "period_max", "periodic %s %q needs period_min and period_max", kind, b.Name)
	}
	if v.PeriodMin, err = t.bound(b.PeriodMin, "period_min"); err != nil {
		return nil, fmt.Errorf("%s %q: %w", kind, b.Name, err)
	}
	if v.PeriodMax, err = t.bound(b.PeriodMax, "period_max"); err != nil {
		return nil, fmt.Errorf("%s %q: %w", kind, b.Name, err)
	}
	return v, nil
}

// attributes translates every attribute of a free-form block, in the order
// they appear in the file.
func (t *translator) attributes(b *attributesBlock) ([]value.Pair, error) {
	attrs, diags := b.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to read attributes: %w", diags)
	}

	sorted := make([]*hcl.Attribute, 0, len(attrs))
	for _, attr := range attrs {
		sorted = append(sorted, attr)
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Range.Start.Byte < sorted[j].Range.Start.Byte
	})

	pairs := make([]value.Pair, 0, len(sorted))
	for _, attr := range sorted {
		v, err := t.toValue(attr.Expr)
		if err != nil {
			return nil, fmt.Errorf("attribute %s: %w", attr.Name, err)
		}
		pairs = append(pairs, value.Pair{Key: attr.Name, Value: v})
	}
	return pairs, nil
}
