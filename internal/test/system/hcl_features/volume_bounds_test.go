package system

import (
	"testing"

	"github.com/specialistvlad/pathscript/internal/testutil"
	"github.com/stretchr/testify/require"
)

func TestHCL_VolumeBounds(t *testing.T) {
	files := map[string]string{
		"main.hcl": `
run_type = "TPS"

engine {
  script = "in.lammps"
}

cv "phi" {
  class = "FunctionCV"
  arguments {
    f = raw("phi")
  }
}

state "A" {
  cv         = "phi"
  lambda_min = "-inf"
  lambda_max = -100
}

volume "B" {
  cv         = "phi"
  periodic   = true
  lambda_min = 100
  lambda_max = -100
  period_min = -180
  period_max = 180
  is_state   = true
}

volume "interface" {
  cv         = "phi"
  lambda_min = -100
  lambda_max = 0
  is_state   = false
}

initial_trajectory {
  file     = "initial.dcd"
  topology = "initial.pdb"
}

parameters {
  n_sim_steps = 1000
}
`,
	}

	result := testutil.RunScriptTest(t, files)

	require.NoError(t, result.Err)
	testutil.AssertLine(t, result, "volume_1 = paths.CVDefinedVolume(collectivevariable=cv_1, lambda_min=float('-inf'), lambda_max=-100.0).named('A')")
	testutil.AssertLine(t, result, "volume_2 = paths.PeriodicCVDefinedVolume(collectivevariable=cv_1, lambda_min=100.0, lambda_max=-100.0, period_min=-180.0, period_max=180.0).named('B')")
	testutil.AssertLine(t, result, "states = [volume_1, volume_2]")
	testutil.AssertLine(t, result, "storage = paths.Storage('tps.nc', mode='w')")
	testutil.AssertLine(t, result, "trajectory = trajectory_from_mdtraj(md.load('initial.dcd', top='initial.pdb'))")
}
