package compare

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/gcforge/infra/compare/flags"
)

// Config carries one comparison invocation. The first file feeds group 1,
// the remaining files are merged into group 2.
type Config struct {
	Files         []string
	SecondProfile bool
	GroupByDir    bool
	Timing        bool
	TimeAbs       float64
	TimeRatio     float64
	ZeroFirst     bool
	ProfilesPath  string
	Find          string
}

// NewConfig reads the CLI context into a Config.
func NewConfig(ctx *cli.Context) (*Config, error) {
	files := ctx.Args().Slice()
	if len(files) == 0 {
		return nil, fmt.Errorf("at least one report file is required")
	}

	return &Config{
		Files:         files,
		SecondProfile: ctx.Bool(flags.SecondProfile.Name),
		GroupByDir:    ctx.Bool(flags.Group.Name),
		Timing:        ctx.Bool(flags.Timing.Name),
		TimeAbs:       ctx.Float64(flags.TimeAbs.Name),
		TimeRatio:     ctx.Float64(flags.TimeRatio.Name),
		ZeroFirst:     ctx.Bool(flags.ZeroFirst.Name),
		ProfilesPath:  ctx.String(flags.Profiles.Name),
		Find:          ctx.String(flags.Find.Name),
	}, nil
}
