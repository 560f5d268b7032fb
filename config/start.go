package config

import (
	"errors"
	"io"

	"github.com/apex/log"
	"github.com/pboyd/detour/hook"
)

// Start loads the configuration beside the executable, sets up logging and
// creates the hook engine. The Closer releases the log file and must be
// closed after the engine.
func Start(stderr io.Writer) (*Config, *hook.Engine, io.Closer, error) {
	c, err := LoadSelf()
	if err != nil {
		return nil, nil, nil, err
	}

	closer, err := SetupLogging(c, stderr)
	if err != nil {
		return nil, nil, nil, err
	}

	e, err := hook.New(c.EngineOptions())
	if err != nil {
		log.WithError(err).Error("Unable to start hook engine")
		return nil, nil, nil, errors.Join(err, closer.Close())
	}
	return c, e, closer, nil
}
