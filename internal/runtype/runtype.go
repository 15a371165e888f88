// Package runtype is the closed set of simulations a program can run. Each
// run type carries its setup template, the names the template expects the
// rest of the program to bind, and the GUI-facing label and artifact name.
package runtype

import (
	"fmt"
	"sort"
	"strings"

	"github.com/specialistvlad/pathscript/internal/tmpl"
)

// RunType selects the simulation setup.
type RunType int

const (
	Invalid RunType = iota
	Trajectory
	TPS
	Committor
)

// Header is emitted at the top of every program.
const Header = "import openpathsampling as paths\nimport openpathsampling.engines.lammps as ops_lammps\n"

// Predeclared are the names bound by Header.
var Predeclared = []string{"paths", "ops_lammps"}

// StatesName is the binding of the states list.
const StatesName = "states"

// Main is the trailer that starts the simulation.
var Main = tmpl.Must("main", "if __name__ == \"__main__\":\n    sim.run(${n_sim_steps})\n")

type definition struct {
	name      string
	label     string
	artifact  string
	minStates int
	// requires lists names the setup reads that other writers must bind.
	requires []string
	setup    *tmpl.Template
}

var definitions = map[RunType]definition{
	Trajectory: {
		name:      "trajectory",
		label:     "Transition trajectory",
		artifact:  "trajectory.nc",
		minStates: 1,
		requires:  []string{"engine", "storage"},
		setup:     tmpl.Must("trajectory", trajectorySetup),
	},
	TPS: {
		name:      "TPS",
		label:     "Transition path sampling",
		artifact:  "tps.nc",
		minStates: 2,
		requires:  []string{"engine", "storage", "trajectory"},
		setup:     tmpl.Must("TPS", tpsSetup),
	},
	Committor: {
		name:      "committor",
		label:     "Committor simulation",
		artifact:  "committor.nc",
		minStates: 1,
		requires:  []string{"storage", "randomizer", "trajectory"},
		setup:     tmpl.Must("committor", committorSetup),
	},
}

// All returns every run type in menu order.
func All() []RunType {
	return []RunType{Trajectory, TPS, Committor}
}

// Parse resolves a run type by name, ignoring case.
func Parse(s string) (RunType, error) {
	for _, rt := range All() {
		if strings.EqualFold(definitions[rt].name, strings.TrimSpace(s)) {
			return rt, nil
		}
	}
	return Invalid, fmt.Errorf("unknown run type %q (valid: %s)", s, strings.Join(Names(), ", "))
}

// Names returns the canonical names of all run types.
func Names() []string {
	all := All()
	names := make([]string, len(all))
	for i, rt := range all {
		names[i] = rt.String()
	}
	return names
}

// Valid reports whether rt is one of the known run types.
func (rt RunType) Valid() bool {
	_, ok := definitions[rt]
	return ok
}

func (rt RunType) String() string {
	if d, ok := definitions[rt]; ok {
		return d.name
	}
	return fmt.Sprintf("RunType(%d)", int(rt))
}

// Label is the human-readable name.
func (rt RunType) Label() string { return definitions[rt].label }

// DefaultArtifact is the storage file name a run of this type writes by default.
func (rt RunType) DefaultArtifact() string { return definitions[rt].artifact }

// MinStates is the smallest states list the setup accepts.
func (rt RunType) MinStates() int { return definitions[rt].minStates }

// Requires returns the names, besides the states list, that must be bound
// before the setup runs.
func (rt RunType) Requires() []string {
	return append([]string(nil), definitions[rt].requires...)
}

// Setup returns the setup template, or nil for an invalid run type.
func (rt RunType) Setup() *tmpl.Template { return definitions[rt].setup }

// Parameters returns the sorted placeholder names the setup and the trailer
// need.
func (rt RunType) Parameters() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, t := range []*tmpl.Template{rt.Setup(), Main} {
		if t == nil {
			continue
		}
		for _, p := range t.Placeholders() {
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}
