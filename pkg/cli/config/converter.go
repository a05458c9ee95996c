package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/towebp/pkg/domain/model"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"
)

// Converter holds image conversion configuration
type Converter struct {
	Quality   int
	MaxWidth  int
	MaxHeight int
	Profile   string
}

const (
	flagQuality   = "quality"
	flagMaxWidth  = "max-width"
	flagMaxHeight = "max-height"
)

// Flags returns CLI flags for conversion configuration
func (c *Converter) Flags() []cli.Flag {
	defaults := model.DefaultConvertOptions()

	return []cli.Flag{
		&cli.IntFlag{
			Name:        flagQuality,
			Usage:       "WebP quality (0-100)",
			Value:       defaults.Quality,
			Destination: &c.Quality,
			Sources:     cli.EnvVars("TOWEBP_QUALITY"),
		},
		&cli.IntFlag{
			Name:        flagMaxWidth,
			Usage:       "Maximum output width in pixels",
			Value:       defaults.MaxWidth,
			Destination: &c.MaxWidth,
			Sources:     cli.EnvVars("TOWEBP_MAX_WIDTH"),
		},
		&cli.IntFlag{
			Name:        flagMaxHeight,
			Usage:       "Maximum output height in pixels",
			Value:       defaults.MaxHeight,
			Destination: &c.MaxHeight,
			Sources:     cli.EnvVars("TOWEBP_MAX_HEIGHT"),
		},
		&cli.StringFlag{
			Name:        "profile",
			Usage:       "TOML file with a [convert] section (quality, max_width, max_height)",
			Destination: &c.Profile,
			Sources:     cli.EnvVars("TOWEBP_PROFILE"),
		},
	}
}

type profileFile struct {
	Convert model.ConvertOptions `toml:"convert"`
}

// Options resolves conversion options. Values come from the defaults, then
// the profile file, then flags that were explicitly set.
func (c *Converter) Options(isSet func(name string) bool) (*model.ConvertOptions, error) {
	profile := profileFile{Convert: model.DefaultConvertOptions()}

	if c.Profile != "" {
		raw, err := os.ReadFile(c.Profile)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read profile", goerr.V("path", c.Profile))
		}
		if err := toml.Unmarshal(raw, &profile); err != nil {
			return nil, goerr.Wrap(err, "failed to parse profile", goerr.V("path", c.Profile))
		}
	}

	opts := profile.Convert
	if isSet(flagQuality) {
		opts.Quality = c.Quality
	}
	if isSet(flagMaxWidth) {
		opts.MaxWidth = c.MaxWidth
	}
	if isSet(flagMaxHeight) {
		opts.MaxHeight = c.MaxHeight
	}

	if err := opts.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid convert options",
			goerr.V("quality", opts.Quality),
			goerr.V("max_width", opts.MaxWidth),
			goerr.V("max_height", opts.MaxHeight),
			goerr.V("profile", c.Profile),
		)
	}

	return &opts, nil
}
