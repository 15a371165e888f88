package yamlcfg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/specialistvlad/pathscript/internal/config"
	"github.com/specialistvlad/pathscript/internal/ctxlog"
	"github.com/specialistvlad/pathscript/internal/fsutil"
	"github.com/specialistvlad/pathscript/internal/scripterr"
	"gopkg.in/yaml.v3"
)

// Extensions lists the file extensions the loader reads.
var Extensions = []string{".yaml", ".yml"}

// Loader is the YAML implementation of config.Loader.
type Loader struct{}

// NewLoader creates a new YAML description loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads a single YAML file, or every YAML file under a directory in
// lexical order, and merges them into one description.
func (l *Loader) Load(ctx context.Context, path string) (*config.Description, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("YAML loader started.", "path", path)

	files, err := findYAMLFiles(path)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered YAML files.", "count", len(files))

	desc := &config.Description{Source: path}
	for _, file := range files {
		part, err := loadFile(file)
		if err != nil {
			return nil, err
		}
		if err := desc.Merge(part); err != nil {
			return nil, fmt.Errorf("in %s: %w", file, err)
		}
	}

	logger.Debug("YAML loading complete.",
		"run_type", desc.RunType,
		"cvs", len(desc.CVs),
		"volumes", len(desc.Volumes),
		"parameters", len(desc.Parameters),
	)
	return desc, nil
}

func findYAMLFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("error accessing path %s: %w", path, err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}
	var files []string
	for _, ext := range Extensions {
		found, err := fsutil.FindFilesByExtension(path, ext)
		if err != nil {
			return nil, fmt.Errorf("failed to search %s: %w", path, err)
		}
		files = append(files, found...)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no YAML files found in %s", path)
	}
	sort.Strings(files)
	return files, nil
}

func loadFile(file string) (*config.Description, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read YAML file %s: %w", file, err)
	}

	var doc document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode YAML file %s: %w", file, err)
	}

	part, err := translate(&doc)
	if err != nil {
		return nil, fmt.Errorf("in %s: %w", file, err)
	}
	return part, nil
}

func translate(doc *document) (*config.Description, error) {
	part := &config.Description{RunType: doc.RunType}

	if doc.Engine != nil {
		e := &config.Engine{Script: doc.Engine.Script}
		if isSet(&doc.Engine.Options) {
			opts, err := toPairs(&doc.Engine.Options)
			if err != nil {
				return nil, fmt.Errorf("engine options: %w", err)
			}
			e.Options = opts
		}
		part.Engine = e
	}

	for _, c := range doc.CVs {
		cv := &config.CV{Name: c.Name, Class: c.Class, Namespace: c.Namespace, DiskCache: c.DiskCache}
		if isSet(&c.Arguments) {
			args, err := toPairs(&c.Arguments)
			if err != nil {
				return nil, fmt.Errorf("cv %q: %w", c.Name, err)
			}
			cv.Arguments = args
		}
		part.CVs = append(part.CVs, cv)
	}

	// states and volumes are numbered in the order they are written.
	type declared struct {
		doc     *volumeDoc
		isState bool
	}
	volumes := make([]declared, 0, len(doc.States)+len(doc.Volumes))
	for i := range doc.States {
		volumes = append(volumes, declared{&doc.States[i], true})
	}
	for i := range doc.Volumes {
		volumes = append(volumes, declared{&doc.Volumes[i], false})
	}
	sort.SliceStable(volumes, func(i, j int) bool {
		return volumes[i].doc.line() < volumes[j].doc.line()
	})
	for _, d := range volumes {
		v, err := volume(d.doc, d.isState)
		if err != nil {
			return nil, err
		}
		part.Volumes = append(part.Volumes, v)
	}

	if doc.Storage != nil {
		mode := doc.Storage.Mode
		if mode == "" {
			mode = "w"
		}
		part.Storage = &config.Storage{File: doc.Storage.File, Mode: mode}
	}
	if t := doc.InitialTrajectory; t != nil {
		part.InitialTrajectory = &config.InitialTrajectory{File: t.File, Index: t.Index, Topology: t.Topology}
	}
	if r := doc.Randomizer; r != nil {
		part.Randomizer = &config.Randomizer{Temperature: r.Temperature, KB: r.KB}
	}

	if isSet(&doc.Parameters) {
		params, err := toPairs(&doc.Parameters)
		if err != nil {
			return nil, fmt.Errorf("parameters: %w", err)
		}
		part.Parameters = params
	}
	return part, nil
}

func volume(d *volumeDoc, isState bool) (*config.Volume, error) {
	kind := "volume"
	if isState {
		kind = "state"
	}
	v := &config.Volume{Name: d.Name, CV: d.CV, Periodic: d.Periodic, IsState: isState}
	if d.IsState != nil {
		v.IsState = *d.IsState
	} else if !isState {
		return nil, scripterr.Configuration("", "is_state", "volume %q must set is_state", d.Name)
	}

	var err error
	if v.LambdaMin, err = bound(&d.LambdaMin, "lambda_min"); err != nil {
		return nil, fmt.Errorf("%s %q: %w", kind, d.Name, err)
	}
	if v.LambdaMax, err = bound(&d.LambdaMax, "lambda_max"); err != nil {
		return nil, fmt.Errorf("%s %q: %w", kind, d.Name, err)
	}
	if !d.Periodic {
		return v, nil
	}
	if !isSet(&d.PeriodMin) || !isSet(&d.PeriodMax) {
		return nil, scripterr.Configuration("", "period_max", "periodic %s %q needs period_min and period_max", kind, d.Name)
	}
	if v.PeriodMin, err = bound(&d.PeriodMin, "period_min"); err != nil {
		return nil, fmt.Errorf("%s %q: %w", kind, d.Name, err)
	}
	if v.PeriodMax, err = bound(&d.PeriodMax, "period_max"); err != nil {
		return nil, fmt.Errorf("%s %q: %w", kind, d.Name, err)
	}
	return v, nil
}
