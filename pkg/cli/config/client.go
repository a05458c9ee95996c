package config

import (
	"time"

	"github.com/urfave/cli/v3"
)

// Client holds configuration of the batch conversion client
type Client struct {
	Server  string
	Output  string
	Zip     bool
	Timeout time.Duration
}

// Flags returns CLI flags for client configuration
func (c *Client) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "server",
			Usage:       "Base URL of the towebp server",
			Value:       "http://localhost:8080",
			Destination: &c.Server,
			Sources:     cli.EnvVars("TOWEBP_SERVER"),
		},
		&cli.StringFlag{
			Name:        "output",
			Aliases:     []string{"o"},
			Usage:       "Output directory",
			Value:       ".",
			Destination: &c.Output,
		},
		&cli.BoolFlag{
			Name:        "zip",
			Usage:       "Download all results as a single zip archive",
			Destination: &c.Zip,
		},
		&cli.DurationFlag{
			Name:        "timeout",
			Usage:       "Timeout per HTTP request (0 means no timeout)",
			Destination: &c.Timeout,
			Sources:     cli.EnvVars("TOWEBP_TIMEOUT"),
		},
	}
}
