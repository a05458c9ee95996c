package config

import "io"

// SetWriter replaces the log output of a Logger
func (c *Logger) SetWriter(w io.Writer) {
	c.writer = w
}
