package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
)

// EnvPrefix prefixes the environment variables that default flags.
const EnvPrefix = "PATHSCRIPT_"

// environ returns the process environment as a map.
func environ() map[string]string {
	envMap := make(map[string]string)
	for _, e := range os.Environ() {
		pair := strings.SplitN(e, "=", 2)
		if len(pair) == 2 {
			envMap[pair[0]] = pair[1]
		}
	}
	return envMap
}

// EnvName returns the variable that defaults flag name, e.g. log-level ->
// PATHSCRIPT_LOG_LEVEL.
func EnvName(flag string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(flag, "-", "_"))
}

// applyEnv sets every flag the user did not give on the command line from
// its environment variable, if one is set.
func applyEnv(flags *pflag.FlagSet, env map[string]string) error {
	var firstErr error
	flags.VisitAll(func(f *pflag.Flag) {
		if firstErr != nil || f.Changed {
			return
		}
		v, ok := env[EnvName(f.Name)]
		if !ok {
			return
		}
		if err := flags.Set(f.Name, v); err != nil {
			firstErr = fmt.Errorf("invalid %s: %w", EnvName(f.Name), err)
		}
	})
	return firstErr
}
