package writer

import (
	"fmt"
	"math"
	"testing"

	"github.com/specialistvlad/pathscript/internal/scripterr"
	"github.com/specialistvlad/pathscript/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVolume_Code(t *testing.T) {
	f := NewFactory()
	named, err := NewVolume(f, VolumeClassPlain, "bar", true, Args{
		Arg("collectivevariable", value.String("foo")),
		Arg("lambda_min", value.Float(0.0)),
		Arg("lambda_max", value.Float(1.0)),
	})
	require.NoError(t, err)
	unnamed, err := NewVolume(f, VolumeClassPeriodic, "", false, Args{
		Arg("collectivevariable", value.Identifier("baz")),
		Arg("lambda_min", value.Float(0.0)),
		Arg("lambda_max", value.Float(1.0)),
		Arg("period_min", value.Float(-2.0)),
		Arg("period_max", value.Float(2.0)),
	})
	require.NoError(t, err)

	testCases := []struct {
		name     string
		volume   *Volume
		binding  string
		isState  bool
		expected string
	}{
		{
			name:     "named plain volume",
			volume:   named,
			binding:  "volume_1",
			isState:  true,
			expected: "volume_1 = paths.CVDefinedVolume(collectivevariable=foo, lambda_min=0.0, lambda_max=1.0).named('bar')",
		},
		{
			name:     "unnamed periodic volume",
			volume:   unnamed,
			binding:  "volume_2",
			isState:  false,
			expected: "volume_2 = paths.PeriodicCVDefinedVolume(collectivevariable=baz, lambda_min=0.0, lambda_max=1.0, period_min=-2.0, period_max=2.0)",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			code, err := tc.volume.Code()
			require.NoError(t, err)
			assert.Equal(t, tc.expected, code)
			assert.Equal(t, tc.binding, tc.volume.BindingName())
			assert.Equal(t, tc.isState, tc.volume.IsState())
		})
	}
}

func TestVolume_ConfigurationErrors(t *testing.T) {
	testCases := []struct {
		name     string
		typeTag  string
		args     Args
		argument string
	}{
		{
			name:    "periodic without period_max",
			typeTag: VolumeClassPeriodic,
			args: Args{
				Arg("collectivevariable", value.Identifier("cv_1")),
				Arg("lambda_min", value.Float(0)),
				Arg("lambda_max", value.Float(1)),
				Arg("period_min", value.Float(-2)),
			},
			argument: "period_max",
		},
		{
			name:    "reversed lambda bounds",
			typeTag: VolumeClassPlain,
			args: Args{
				Arg("collectivevariable", value.Identifier("cv_1")),
				Arg("lambda_min", value.Float(1)),
				Arg("lambda_max", value.Float(0)),
			},
			argument: "lambda_max",
		},
		{
			name:    "equal lambda bounds",
			typeTag: VolumeClassPlain,
			args: Args{
				Arg("collectivevariable", value.Identifier("cv_1")),
				Arg("lambda_min", value.Float(0.5)),
				Arg("lambda_max", value.Float(0.5)),
			},
			argument: "lambda_max",
		},
		{
			name:    "reversed period",
			typeTag: VolumeClassPeriodic,
			args: Args{
				Arg("collectivevariable", value.Identifier("cv_1")),
				Arg("lambda_min", value.Float(2)),
				Arg("lambda_max", value.Float(-2)),
				Arg("period_min", value.Float(3)),
				Arg("period_max", value.Float(-3)),
			},
			argument: "period_max",
		},
		{
			name:     "missing cv",
			typeTag:  VolumeClassPlain,
			args:     Args{Arg("lambda_min", value.Float(0)), Arg("lambda_max", value.Float(1))},
			argument: "collectivevariable",
		},
		{
			name:    "non-numeric bound",
			typeTag: VolumeClassPlain,
			args: Args{
				Arg("collectivevariable", value.Identifier("cv_1")),
				Arg("lambda_min", value.String("0")),
				Arg("lambda_max", value.Float(1)),
			},
			argument: "lambda_min",
		},
		{
			name:    "unknown class",
			typeTag: "UnionVolume",
			args: Args{
				Arg("collectivevariable", value.Identifier("cv_1")),
				Arg("lambda_min", value.Float(0)),
				Arg("lambda_max", value.Float(1)),
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := NewFactory()

			vol, err := NewVolume(f, tc.typeTag, "", true, tc.args)

			assert.Nil(t, vol)
			require.ErrorIs(t, err, scripterr.ErrConfiguration)
			var ce *scripterr.ConfigurationError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tc.argument, ce.Argument)
			assert.Zero(t, f.Count("volume"))
		})
	}
}

func TestVolume_UpdateRevalidates(t *testing.T) {
	f := NewFactory()
	vol, err := NewVolumeFromRange(f, "A", true, Range{CV: "cv_1", LambdaMin: 0, LambdaMax: 1})
	require.NoError(t, err)

	err = vol.Update(VolumeClassPlain, "A", false, Range{CV: "cv_1", LambdaMin: 2, LambdaMax: 1}.Args())

	var ce *scripterr.ConfigurationError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "volume_1", ce.Binding)
	assert.True(t, vol.IsState(), "failed update must keep is_state")

	require.NoError(t, vol.Update(VolumeClassPlain, "B", false, Range{CV: "cv_2", LambdaMin: 2, LambdaMax: 3}.Args()))
	assert.False(t, vol.IsState())
	assert.Equal(t, "volume_1", vol.BindingName())
	assert.Equal(t, []string{"cv_2"}, vol.References())
}

func TestVolumeFromRange_Infinite(t *testing.T) {
	f := NewFactory()
	vol, err := NewVolumeFromRange(f, "B", true, Range{CV: "cv_1", LambdaMin: 0.5, LambdaMax: math.Inf(1)})
	require.NoError(t, err)

	code, err := vol.Code()

	require.NoError(t, err)
	assert.Equal(t, "volume_1 = paths.CVDefinedVolume(collectivevariable=cv_1, lambda_min=0.5, lambda_max=float('inf')).named('B')", code)
}

func TestVolumeFromRange_PeriodicWraps(t *testing.T) {
	f := NewFactory()
	vol, err := NewVolumeFromRange(f, "", false, Range{
		CV: "cv_1", Periodic: true,
		LambdaMin: 150, LambdaMax: -150,
		PeriodMin: -180, PeriodMax: 180,
	})
	require.NoError(t, err)

	assert.Equal(t, VolumeClassPeriodic, vol.TypeTag())
}

func TestVolume_FailedConstructionTakesNoNumber(t *testing.T) {
	// Arrange
	f := NewFactory()
	reversed := Range{CV: "cv_1", LambdaMin: 1, LambdaMax: 1}
	valid := Range{CV: "cv_1", LambdaMin: 0, LambdaMax: 1}

	// Act
	_, errReversed := NewVolumeFromRange(f, "A", true, reversed)
	first, errFirst := NewVolumeFromRange(f, "A", true, valid)
	_, errPeriod := NewVolume(f, VolumeClassPeriodic, "B", true, Args{
		Arg("collectivevariable", value.Identifier("cv_1")),
		Arg("lambda_min", value.Float(0)),
		Arg("lambda_max", value.Float(1)),
		Arg("period_min", value.Float(-1)),
	})
	second, errSecond := NewVolumeFromRange(f, "B", true, valid)

	// Assert
	require.ErrorIs(t, errReversed, scripterr.ErrConfiguration)
	require.ErrorIs(t, errPeriod, scripterr.ErrConfiguration)
	require.NoError(t, errFirst)
	require.NoError(t, errSecond)
	assert.Equal(t, "volume_1", first.BindingName())
	assert.Equal(t, "volume_2", second.BindingName())
	assert.Equal(t, 2, f.Count("volume"))
}

func TestVolume_BindingNamesSurviveUpdates(t *testing.T) {
	const n = 12
	f := NewFactory()

	volumes := make([]*Volume, 0, n)
	for i := 1; i <= n; i++ {
		r := Range{CV: "cv_1", LambdaMin: float64(i), LambdaMax: float64(i + 1)}
		v, err := NewVolumeFromRange(f, fmt.Sprintf("V%d", i), i%2 == 0, r)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("volume_%d", i), v.BindingName())
		volumes = append(volumes, v)
	}

	for round := 0; round < 4; round++ {
		for i, v := range volumes {
			r := Range{
				CV:        fmt.Sprintf("cv_%d", round+1),
				Periodic:  round%2 == 1,
				LambdaMin: float64(-round),
				LambdaMax: float64(round + i + 1),
				PeriodMin: -180,
				PeriodMax: 180,
			}
			require.NoError(t, v.Update(r.TypeTag(), fmt.Sprintf("W%d", round), round%2 == 0, r.Args()))
			bad := Range{CV: r.CV, LambdaMin: 5, LambdaMax: -5}
			require.Error(t, v.Update(bad.TypeTag(), "bad", true, bad.Args()))

			assert.Equal(t, fmt.Sprintf("volume_%d", i+1), v.BindingName())
		}
	}
	assert.Equal(t, n, f.Count("volume"))
}
