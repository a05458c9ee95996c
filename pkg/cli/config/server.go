package config

import "github.com/urfave/cli/v3"

// Server holds server configuration
type Server struct {
	Addr          string
	MaxUploadSize int64
}

// Flags returns CLI flags for server configuration
func (c *Server) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "Server address",
			Value:       "localhost:8080",
			Destination: &c.Addr,
			Sources:     cli.EnvVars("TOWEBP_ADDR"),
		},
		&cli.Int64Flag{
			Name:        "max-upload-size",
			Usage:       "Maximum upload size in bytes for a single conversion request (0 means unlimited)",
			Value:       0,
			Destination: &c.MaxUploadSize,
			Sources:     cli.EnvVars("TOWEBP_MAX_UPLOAD_SIZE"),
		},
	}
}
