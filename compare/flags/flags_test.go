package flags

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

// TestUniqueFlags asserts that all flag names are unique, to avoid accidental conflicts between the many flags.
func TestUniqueFlags(t *testing.T) {
	seenCLI := make(map[string]struct{})
	for _, flag := range Flags {
		for _, name := range flag.Names() {
			if _, ok := seenCLI[name]; ok {
				t.Errorf("duplicate flag %s", name)
				continue
			}
			seenCLI[name] = struct{}{}
		}
	}
}

func TestHasEnvVar(t *testing.T) {
	for _, flag := range Flags {
		flagName := flag.Names()[0]

		t.Run(flagName, func(t *testing.T) {
			envFlagGetter, ok := flag.(interface {
				GetEnvVars() []string
			})
			require.True(t, ok, "must be able to cast the flag to an EnvVar interface")
			envFlags := envFlagGetter.GetEnvVars()
			require.Equal(t, 1, len(envFlags), "flags should have exactly one env var")
			assert.True(t, strings.HasPrefix(envFlags[0], EnvVarPrefix+"_"), "env var must carry the %s prefix", EnvVarPrefix)
		})
	}
}

func TestDefaults(t *testing.T) {
	app := &cli.App{
		Flags: Flags,
		Action: func(ctx *cli.Context) error {
			assert.False(t, ctx.Bool(SecondProfile.Name))
			assert.False(t, ctx.Bool(Group.Name))
			assert.False(t, ctx.Bool(Timing.Name))
			assert.Equal(t, 3.0, ctx.Float64(TimeAbs.Name))
			assert.Equal(t, 1.5, ctx.Float64(TimeRatio.Name))
			assert.False(t, ctx.Bool(ZeroFirst.Name))
			assert.Equal(t, "info", ctx.String(LogLevel.Name))
			return nil
		},
	}

	require.NoError(t, app.Run([]string{"compare"}))
}

func TestShortAliases(t *testing.T) {
	app := &cli.App{
		Flags: Flags,
		Action: func(ctx *cli.Context) error {
			assert.True(t, ctx.Bool(SecondProfile.Name))
			assert.True(t, ctx.Bool(Group.Name))
			assert.True(t, ctx.Bool(Timing.Name))
			assert.True(t, ctx.Bool(ZeroFirst.Name))
			return nil
		},
	}

	require.NoError(t, app.Run([]string{"compare", "-b", "-g", "-t", "-z"}))
}
