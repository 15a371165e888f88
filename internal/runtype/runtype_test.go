package runtype

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		input    string
		expected RunType
	}{
		{input: "trajectory", expected: Trajectory},
		{input: "TPS", expected: TPS},
		{input: "tps", expected: TPS},
		{input: " Committor ", expected: Committor},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got, err := Parse(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
			assert.True(t, got.Valid())
		})
	}

	_, err := Parse("replica_exchange")
	assert.ErrorContains(t, err, `unknown run type "replica_exchange" (valid: trajectory, TPS, committor)`)
}

func TestRunTypeTable(t *testing.T) {
	testCases := []struct {
		runType   RunType
		name      string
		label     string
		artifact  string
		minStates int
		params    []string
	}{
		{Trajectory, "trajectory", "Transition trajectory", "trajectory.nc", 1, []string{"n_sim_steps"}},
		{TPS, "TPS", "Transition path sampling", "tps.nc", 2, []string{"n_sim_steps"}},
		{Committor, "committor", "Committor simulation", "committor.nc", 1, []string{"initial_frame", "n_sim_steps"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.name, tc.runType.String())
			assert.Equal(t, tc.label, tc.runType.Label())
			assert.Equal(t, tc.artifact, tc.runType.DefaultArtifact())
			assert.Equal(t, tc.minStates, tc.runType.MinStates())
			assert.Equal(t, tc.params, tc.runType.Parameters())
			require.NotNil(t, tc.runType.Setup())
			assert.NotEmpty(t, tc.runType.Requires())
		})
	}
}

func TestInvalid(t *testing.T) {
	assert.False(t, Invalid.Valid())
	assert.Equal(t, "RunType(0)", Invalid.String())
	assert.Nil(t, Invalid.Setup())
	assert.Equal(t, []string{"n_sim_steps"}, Invalid.Parameters())
}

func TestSetupsReferenceStates(t *testing.T) {
	for _, rt := range All() {
		t.Run(rt.String(), func(t *testing.T) {
			params := map[string]string{"initial_frame": "0"}
			code, err := rt.Setup().Execute(params)
			require.NoError(t, err)
			assert.Contains(t, code, StatesName)
			assert.Contains(t, code, "sim = ")
		})
	}
}

func TestMainTrailer(t *testing.T) {
	code, err := Main.Execute(map[string]string{"n_sim_steps": "1000"})
	require.NoError(t, err)
	assert.Equal(t, "if __name__ == \"__main__\":\n    sim.run(1000)\n", code)
}
