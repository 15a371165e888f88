package hcl

import (
	"github.com/hashicorp/hcl/v2"
)

// fileRoot is a struct used to decode all possible top-level blocks from any
// file. Anything else in a file is an error.
type fileRoot struct {
	RunType           string           `hcl:"run_type,optional"`
	Engine            *engineBlock     `hcl:"engine,block"`
	CVs               []*cvBlock       `hcl:"cv,block"`
	States            []*volumeBlock   `hcl:"state,block"`
	Volumes           []*volumeBlock   `hcl:"volume,block"`
	Storage           *storageBlock    `hcl:"storage,block"`
	InitialTrajectory *trajectoryBlock `hcl:"initial_trajectory,block"`
	Randomizer        *randomizerBlock `hcl:"randomizer,block"`
	Parameters        *attributesBlock `hcl:"parameters,block"`
}

// attributesBlock holds a block of free-form attributes, such as the
// arguments of a CV.
type attributesBlock struct {
	Body hcl.Body `hcl:",remain"`
}

type engineBlock struct {
	Script  string         `hcl:"script"`
	Options hcl.Expression `hcl:"options,optional"`
}

type cvBlock struct {
	Name      string           `hcl:"name,label"`
	Class     string           `hcl:"class"`
	Namespace string           `hcl:"namespace,optional"`
	DiskCache bool             `hcl:"disk_cache,optional"`
	Arguments *attributesBlock `hcl:"arguments,block"`
}

type volumeBlock struct {
	Name      string         `hcl:"name,label"`
	CV        string         `hcl:"cv"`
	Periodic  bool           `hcl:"periodic,optional"`
	LambdaMin hcl.Expression `hcl:"lambda_min"`
	LambdaMax hcl.Expression `hcl:"lambda_max"`
	PeriodMin hcl.Expression `hcl:"period_min,optional"`
	PeriodMax hcl.Expression `hcl:"period_max,optional"`
	IsState   *bool          `hcl:"is_state,optional"`
	DefRange  hcl.Range      `hcl:",def_range"`
}

type storageBlock struct {
	File string `hcl:"file"`
	Mode string `hcl:"mode,optional"`
}

type trajectoryBlock struct {
	File     string `hcl:"file"`
	Index    int    `hcl:"index,optional"`
	Topology string `hcl:"topology,optional"`
}

type randomizerBlock struct {
	Temperature float64 `hcl:"temperature"`
	KB          float64 `hcl:"kb,optional"`
}
