package writer

import (
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/specialistvlad/pathscript/internal/scripterr"
	"github.com/specialistvlad/pathscript/internal/tmpl"
)

const mdtrajImports = `import mdtraj as md
from openpathsampling.engines.openmm.tools import trajectory_from_mdtraj
`

type trajectoryLoader struct {
	template      *tmpl.Template
	needsTopology bool
	// ops files hold many trajectories; mdtraj files hold one.
	indexed bool
}

var trajectoryLoaders = map[string]trajectoryLoader{
	"nc": {
		template: tmpl.Must("initial_trajectory.nc",
			"inp_traj_file = paths.Storage(${file}, mode='r')\ntrajectory = inp_traj_file.trajectories[${index}]"),
		indexed: true,
	},
	"pdb": {
		template: tmpl.Must("initial_trajectory.pdb",
			mdtrajImports+"trajectory = trajectory_from_mdtraj(md.load(${file}))"),
	},
	"dcd": mdtrajWithTopology("dcd"),
	"xtc": mdtrajWithTopology("xtc"),
	"trr": mdtrajWithTopology("trr"),
}

func mdtrajWithTopology(ext string) trajectoryLoader {
	return trajectoryLoader{
		template: tmpl.Must("initial_trajectory."+ext,
			mdtrajImports+"trajectory = trajectory_from_mdtraj(md.load(${file}, top=${topology}))"),
		needsTopology: true,
	}
}

// SupportedTrajectoryFormats lists the extensions InitialTrajectory accepts.
func SupportedTrajectoryFormats() []string {
	exts := make([]string, 0, len(trajectoryLoaders))
	for ext := range trajectoryLoaders {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// InitialTrajectory loads the trajectory a simulation starts from. The
// loading snippet is picked by the file extension.
type InitialTrajectory struct {
	File     string
	Index    int
	Topology string
}

// NewInitialTrajectory checks that file has a supported extension and that
// the loader gets what it needs.
func NewInitialTrajectory(file string, index int, topology string) (*InitialTrajectory, error) {
	it := &InitialTrajectory{File: file, Index: index, Topology: topology}
	if _, err := it.loader(); err != nil {
		return nil, err
	}
	return it, nil
}

func (it *InitialTrajectory) loader() (trajectoryLoader, error) {
	if it.File == "" {
		return trajectoryLoader{}, scripterr.Configuration("trajectory", "file", "initial trajectory needs a file")
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(it.File), "."))
	l, ok := trajectoryLoaders[ext]
	if !ok {
		return trajectoryLoader{}, &scripterr.UnsupportedFormatError{
			Path:      it.File,
			Extension: ext,
			Supported: SupportedTrajectoryFormats(),
		}
	}
	if l.needsTopology && it.Topology == "" {
		return trajectoryLoader{}, scripterr.Configuration("trajectory", "topology", "%s files need a topology file", ext)
	}
	if it.Index < 0 {
		return trajectoryLoader{}, scripterr.Configuration("trajectory", "index", "index must not be negative, got %d", it.Index)
	}
	if !l.indexed && it.Index != 0 {
		return trajectoryLoader{}, scripterr.Configuration("trajectory", "index", "%s files hold a single trajectory, got index %d", ext, it.Index)
	}
	return l, nil
}

// Code renders the loading snippet. It returns no text on error.
func (it *InitialTrajectory) Code() (string, error) {
	l, err := it.loader()
	if err != nil {
		return "", err
	}
	file, err := quote("trajectory", "file", it.File)
	if err != nil {
		return "", err
	}
	topology, err := quote("trajectory", "topology", it.Topology)
	if err != nil {
		return "", err
	}
	return l.template.Execute(map[string]string{
		"file":     file,
		"index":    strconv.Itoa(it.Index),
		"topology": topology,
	})
}

// Provides returns "trajectory".
func (it *InitialTrajectory) Provides() []string {
	return []string{"trajectory"}
}
