package yamlcfg

import "gopkg.in/yaml.v3"

// document is the top level of a YAML description.
type document struct {
	RunType           string         `yaml:"run_type"`
	Engine            *engineDoc     `yaml:"engine"`
	CVs               []cvDoc        `yaml:"cvs"`
	States            []volumeDoc    `yaml:"states"`
	Volumes           []volumeDoc    `yaml:"volumes"`
	Storage           *storageDoc    `yaml:"storage"`
	InitialTrajectory *trajectoryDoc `yaml:"initial_trajectory"`
	Randomizer        *randomizerDoc `yaml:"randomizer"`
	Parameters        yaml.Node      `yaml:"parameters"`
}

type engineDoc struct {
	Script  string    `yaml:"script"`
	Options yaml.Node `yaml:"options"`
}

type cvDoc struct {
	Name      string    `yaml:"name"`
	Class     string    `yaml:"class"`
	Namespace string    `yaml:"namespace"`
	DiskCache bool      `yaml:"disk_cache"`
	Arguments yaml.Node `yaml:"arguments"`
}

type volumeDoc struct {
	Name      string    `yaml:"name"`
	CV        string    `yaml:"cv"`
	Periodic  bool      `yaml:"periodic"`
	LambdaMin yaml.Node `yaml:"lambda_min"`
	LambdaMax yaml.Node `yaml:"lambda_max"`
	PeriodMin yaml.Node `yaml:"period_min"`
	PeriodMax yaml.Node `yaml:"period_max"`
	IsState   *bool     `yaml:"is_state"`
}

// line is the first source line holding one of the entry's bounds. Only
// node fields keep their position, and every entry sets lambda_min and
// lambda_max.
func (d *volumeDoc) line() int {
	line := 0
	for _, n := range []*yaml.Node{&d.LambdaMin, &d.LambdaMax, &d.PeriodMin, &d.PeriodMax} {
		if isSet(n) && (line == 0 || n.Line < line) {
			line = n.Line
		}
	}
	return line
}

type storageDoc struct {
	File string `yaml:"file"`
	Mode string `yaml:"mode"`
}

type trajectoryDoc struct {
	File     string `yaml:"file"`
	Index    int    `yaml:"index"`
	Topology string `yaml:"topology"`
}

type randomizerDoc struct {
	Temperature float64 `yaml:"temperature"`
	KB          float64 `yaml:"kb"`
}
