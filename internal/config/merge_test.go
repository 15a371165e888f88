package config

import (
	"testing"

	"github.com/specialistvlad/pathscript/internal/scripterr"
	"github.com/specialistvlad/pathscript/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMerge(t *testing.T) {
	// Arrange
	d := &Description{
		RunType: "TPS",
		CVs:     []*CV{{Name: "phi"}},
		Volumes: []*Volume{{Name: "A", IsState: true}},
	}
	part := &Description{
		Engine:     &Engine{Script: "in.lammps"},
		CVs:        []*CV{{Name: "psi"}},
		Volumes:    []*Volume{{Name: "B", IsState: true}},
		Parameters: []value.Pair{{Key: "n_sim_steps", Value: value.Int(10)}},
	}

	// Act
	err := d.Merge(part)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "TPS", d.RunType)
	assert.Equal(t, "in.lammps", d.Engine.Script)
	require.Len(t, d.CVs, 2)
	assert.Equal(t, "psi", d.CVs[1].Name)
	require.Len(t, d.Volumes, 2)
	v, ok := d.Parameter("n_sim_steps")
	require.True(t, ok)
	assert.Equal(t, value.Int(10), v)
}

func TestMerge_Duplicates(t *testing.T) {
	testCases := []struct {
		name     string
		base     *Description
		part     *Description
		contains string
	}{
		{"run type", &Description{RunType: "TPS"}, &Description{RunType: "committor"}, "run_type"},
		{"engine", &Description{Engine: &Engine{}}, &Description{Engine: &Engine{}}, "engine block"},
		{"storage", &Description{Storage: &Storage{}}, &Description{Storage: &Storage{}}, "storage block"},
		{"initial trajectory", &Description{InitialTrajectory: &InitialTrajectory{}}, &Description{InitialTrajectory: &InitialTrajectory{}}, "initial_trajectory block"},
		{"randomizer", &Description{Randomizer: &Randomizer{}}, &Description{Randomizer: &Randomizer{}}, "randomizer block"},
		{
			"parameter",
			&Description{Parameters: []value.Pair{{Key: "n", Value: value.Int(1)}}},
			&Description{Parameters: []value.Pair{{Key: "n", Value: value.Int(2)}}},
			"parameter n",
		},
		{"cv", &Description{CVs: []*CV{{Name: "phi"}}}, &Description{CVs: []*CV{{Name: "phi"}}}, `cv "phi" is declared more than once`},
		{"cv within one part", &Description{}, &Description{CVs: []*CV{{Name: "phi"}, {Name: "phi"}}}, `cv "phi"`},
		{
			"volume",
			&Description{Volumes: []*Volume{{Name: "A", IsState: true}}},
			&Description{Volumes: []*Volume{{Name: "A"}}},
			`volume "A" is declared more than once`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.base.Merge(tc.part)
			assert.ErrorContains(t, err, tc.contains)
		})
	}
}

func TestMerge_DuplicateEntityIsConfigurationError(t *testing.T) {
	d := &Description{CVs: []*CV{{Name: "phi", Class: "FirstCV"}}}

	err := d.Merge(&Description{CVs: []*CV{{Name: "phi", Class: "SecondCV"}}})

	require.ErrorIs(t, err, scripterr.ErrConfiguration)
	require.Len(t, d.CVs, 1)
	assert.Equal(t, "FirstCV", d.CVs[0].Class)
}

func TestCheckNames(t *testing.T) {
	testCases := []struct {
		name    string
		desc    *Description
		wantErr string
	}{
		{name: "unique", desc: &Description{
			CVs:     []*CV{{Name: "phi"}, {Name: "psi"}},
			Volumes: []*Volume{{Name: "A"}, {Name: "B"}},
		}},
		{name: "cv and volume may share a name", desc: &Description{
			CVs:     []*CV{{Name: "A"}},
			Volumes: []*Volume{{Name: "A"}},
		}},
		{name: "repeated cv", desc: &Description{CVs: []*CV{{Name: "phi"}, {Name: "phi"}}}, wantErr: `cv "phi"`},
		{name: "repeated volume", desc: &Description{Volumes: []*Volume{{Name: "A"}, {Name: "A"}}}, wantErr: `volume "A"`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.desc.CheckNames()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}
