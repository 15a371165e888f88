package writer

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/pathscript/internal/scripterr"
	"github.com/specialistvlad/pathscript/internal/value"
)

// Storage opens the OPS storage file the simulation writes to.
type Storage struct {
	Filename string
	Mode     string
}

var storageModes = map[string]bool{"r": true, "w": true, "a": true}

// NewStorage validates the file name and mode.
func NewStorage(filename, mode string) (*Storage, error) {
	s := &Storage{Filename: filename, Mode: mode}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Storage) validate() error {
	if s.Filename == "" {
		return scripterr.Configuration("storage", "filename", "storage needs a file name")
	}
	if !storageModes[s.Mode] {
		return scripterr.Configuration("storage", "mode", "mode %q is not one of r, w, a", s.Mode)
	}
	return nil
}

// Code renders the storage statement.
func (s *Storage) Code() (string, error) {
	if err := s.validate(); err != nil {
		return "", err
	}
	file, err := quote("storage", "file", s.Filename)
	if err != nil {
		return "", err
	}
	mode, err := quote("storage", "mode", s.Mode)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("storage = paths.Storage(%s, mode=%s)", file, mode), nil
}

// Provides returns "storage".
func (s *Storage) Provides() []string { return []string{"storage"} }

// DefaultEngineOptions are the engine options used unless overridden.
func DefaultEngineOptions() []value.Pair {
	return []value.Pair{
		{Key: "n_steps_per_frame", Value: value.Int(200)},
		{Key: "n_frames_max", Value: value.Int(500000)},
	}
}

// Engine reads the LAMMPS input script and builds the engine from it.
type Engine struct {
	Script  string
	Options []value.Pair
}

// NewEngine returns an engine writer for script. overrides replace default
// options with the same key and append new ones.
func NewEngine(script string, overrides ...value.Pair) (*Engine, error) {
	if script == "" {
		return nil, scripterr.Configuration("engine", "script", "engine needs an input script")
	}
	options := DefaultEngineOptions()
	for _, o := range overrides {
		replaced := false
		for i := range options {
			if options[i].Key == o.Key {
				options[i].Value = o.Value
				replaced = true
				break
			}
		}
		if !replaced {
			options = append(options, o)
		}
	}
	return &Engine{Script: script, Options: options}, nil
}

// Code renders the script read and the engine construction.
func (e *Engine) Code() (string, error) {
	options, err := value.Mapping(e.Options...).Literal()
	if err != nil {
		var fe *scripterr.FormatError
		if errors.As(err, &fe) {
			fe.Binding, fe.Argument = "engine", "options"
		}
		return "", err
	}
	script, err := quote("engine", "script", e.Script)
	if err != nil {
		return "", err
	}
	code := fmt.Sprintf("with open(%s, 'r') as f:\n", script)
	code += "    data = f.read()\n"
	code += fmt.Sprintf("engine = ops_lammps.Engine(inputs=data, options=%s)", options)
	return code, nil
}

// Provides returns the engine and the script contents.
func (e *Engine) Provides() []string { return []string{"engine", "data"} }

// KBKcalPerMolK is Boltzmann's constant in kcal/(mol K), matching LAMMPS
// "real" units.
const KBKcalPerMolK = 0.0019872041

// Randomizer draws new velocities for committor shots.
type Randomizer struct {
	Beta float64
}

// NewRandomizer builds a randomizer for temperature (K) using Boltzmann
// constant kB in the engine's energy units.
func NewRandomizer(temperature, kB float64) (*Randomizer, error) {
	if !(temperature > 0) {
		return nil, scripterr.Configuration("randomizer", "temperature", "temperature must be positive, got %v", temperature)
	}
	if !(kB > 0) {
		return nil, scripterr.Configuration("randomizer", "kB", "Boltzmann constant must be positive, got %v", kB)
	}
	return &Randomizer{Beta: 1.0 / (kB * temperature)}, nil
}

// Code renders the randomizer statement.
func (r *Randomizer) Code() (string, error) {
	beta, err := value.FormatArgument("beta", value.Float(r.Beta), nil)
	if err != nil {
		var fe *scripterr.FormatError
		if errors.As(err, &fe) {
			fe.Binding = "randomizer"
		}
		return "", err
	}
	return "randomizer = paths.RandomVelocities(beta=" + beta + ")", nil
}

// Provides returns "randomizer".
func (r *Randomizer) Provides() []string { return []string{"randomizer"} }

// Blank emits nothing. It keeps the shape of a program uniform when a run
// type has no initial-condition step.
type Blank struct{}

// Code returns an empty string.
func (Blank) Code() (string, error) { return "", nil }
