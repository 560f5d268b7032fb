package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
	"github.com/apex/log/handlers/multi"
	"github.com/apex/log/handlers/text"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// SetupLogging installs the process-wide log handler: stderr always, and
// the log file when the Logging feature is enabled. The returned Closer
// closes the log file.
func SetupLogging(c *Config, stderr io.Writer) (io.Closer, error) {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	if c.Has(Debug) {
		level = log.DebugLevel
	}

	handlers := []log.Handler{cli.New(stderr)}
	var closer io.Closer = nopCloser{}

	if c.Has(Logging) {
		path := c.LogFile
		if !filepath.IsAbs(path) {
			path = filepath.Join(c.Dir, path)
		}

		f, err := os.Create(path)
		if err != nil {
			return nil, fmt.Errorf("cannot open log file: %w", err)
		}
		handlers = append(handlers, text.New(f))
		closer = f
	}

	log.SetHandler(multi.New(handlers...))
	log.SetLevel(level)

	log.WithFields(log.Fields{
		"level":    level,
		"features": c.Features,
	}).Debug("logging configured")
	return closer, nil
}
