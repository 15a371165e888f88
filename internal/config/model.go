package config

import (
	"github.com/specialistvlad/pathscript/internal/value"
)

// Description is the unified, format-agnostic representation of one run
// script.
type Description struct {
	// Source is the path the description was loaded from.
	Source string

	RunType           string
	Engine            *Engine
	CVs               []*CV
	Volumes           []*Volume
	Storage           *Storage
	InitialTrajectory *InitialTrajectory
	Randomizer        *Randomizer
	// Parameters fill the run-type template placeholders, in file order.
	Parameters []value.Pair
}

// Engine is the `engine` block.
type Engine struct {
	Script string
	// Options override or extend the default engine options.
	Options []value.Pair
}

// CV is a `cv` block.
type CV struct {
	Name      string
	Class     string
	Namespace string // empty means the default namespace
	DiskCache bool
	Arguments []value.Pair
}

// Volume is a `volume` or `state` block. Bounds may be infinite.
type Volume struct {
	Name      string
	CV        string // display name of the CV
	Periodic  bool
	LambdaMin float64
	LambdaMax float64
	PeriodMin float64
	PeriodMax float64
	IsState   bool
}

// Storage is the `storage` block.
type Storage struct {
	File string
	Mode string
}

// InitialTrajectory is the `initial_trajectory` block.
type InitialTrajectory struct {
	File     string
	Index    int
	Topology string
}

// Randomizer is the `randomizer` block. A zero KB selects the default
// Boltzmann constant.
type Randomizer struct {
	Temperature float64
	KB          float64
}

// Parameter returns the named parameter.
func (d *Description) Parameter(name string) (value.Value, bool) {
	for _, p := range d.Parameters {
		if p.Key == name {
			return p.Value, true
		}
	}
	return value.Value{}, false
}
