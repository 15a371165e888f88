package scripterr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMessages(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "configuration with binding and argument",
			err:  Configuration("cv_0", "f", "is required"),
			want: "configuration error: cv_0.f: is required",
		},
		{
			name: "configuration with argument only",
			err:  Configuration("", "lambda_min", "must be a number"),
			want: "configuration error: argument lambda_min: must be a number",
		},
		{
			name: "format without context",
			err:  Format("cannot render %s", "NaN"),
			want: "format error: cannot render NaN",
		},
		{
			name: "unsupported format",
			err:  &UnsupportedFormatError{Path: "traj.xyz", Extension: "xyz", Supported: []string{"nc", "dcd"}},
			want: `unsupported format: "traj.xyz" has extension "xyz" (supported: nc, dcd)`,
		},
		{
			name: "missing parameter",
			err:  &MissingParameterError{Template: "setup", Names: []string{"n_steps", "stateA"}},
			want: `missing parameter: template "setup" needs n_steps, stateA`,
		},
		{
			name: "assembly",
			err:  Assembly("volume_1", "refers to undefined name %q", "cv_9"),
			want: `assembly error: volume_1: refers to undefined name "cv_9"`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.err.Error())
		})
	}
}

func TestSentinelsSurviveWrapping(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"configuration", Configuration("", "", "bad"), ErrConfiguration},
		{"format", Format("bad"), ErrFormat},
		{"unsupported", &UnsupportedFormatError{Extension: "xyz"}, ErrUnsupportedFormat},
		{"missing", &MissingParameterError{Template: "t"}, ErrMissingParameter},
		{"assembly", Assembly("", "bad"), ErrAssembly},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			wrapped := fmt.Errorf("rendering: %w", tc.err)

			assert.ErrorIs(t, wrapped, tc.sentinel)
			for _, other := range []error{ErrConfiguration, ErrFormat, ErrUnsupportedFormat, ErrMissingParameter, ErrAssembly} {
				if other != tc.sentinel {
					assert.NotErrorIs(t, wrapped, other)
				}
			}
		})
	}
}

func TestAs_ExposesBinding(t *testing.T) {
	err := fmt.Errorf("cv %q: %w", "phi", Configuration("cv_2", "scale", "must be positive"))

	var cfgErr *ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "cv_2", cfgErr.Binding)
	assert.Equal(t, "scale", cfgErr.Argument)
}
