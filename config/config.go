// Package config handles the detour.toml file kept beside the host
// executable.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/BurntSushi/toml"
	"github.com/apex/log"
	"github.com/pboyd/detour/hook"
)

// FileName is the name of the configuration file.
const FileName = "detour.toml"

// Feature is an optional part of the engine.
type Feature string

const (
	Multiplayer Feature = "Multiplayer"
	LuaJit      Feature = "LuaJit"
	Logging     Feature = "Logging"
	Debug       Feature = "Debug"
)

var features = []Feature{Multiplayer, LuaJit, Logging, Debug}

func (f *Feature) UnmarshalText(text []byte) error {
	v := Feature(text)
	if !slices.Contains(features, v) {
		return fmt.Errorf("unknown feature %q", text)
	}
	*f = v
	return nil
}

// Config is the contents of detour.toml.
type Config struct {
	// BinSHA256 overrides the fingerprint of the host executable.
	BinSHA256 string    `toml:"bin_sha256"`
	Features  []Feature `toml:"features"`
	LogLevel  string    `toml:"log_level"`

	// LogFile is written when the Logging feature is enabled. Relative
	// paths are relative to Dir.
	LogFile string `toml:"log_file"`

	// Dir is the directory the file was loaded from.
	Dir string `toml:"-"`
}

// Default returns the configuration used when there is no file.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		LogFile:  "detour_debug.log",
	}
}

// Load parses detour.toml in dir. Settings missing from the file keep
// their defaults.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	c := Default()
	md, err := toml.Decode(string(data), c)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	for _, key := range md.Undecoded() {
		log.WithField("key", key.String()).Warnf("Unknown setting in %s", path)
	}

	c.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// LoadSelf loads the file beside the running executable. A missing file
// gives the defaults.
func LoadSelf() (*Config, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, err
	}
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(exe)
	c, err := Load(dir)
	if errors.Is(err, os.ErrNotExist) {
		c = Default()
		c.Dir = dir
		return c, nil
	}
	return c, err
}

// Validate checks the values that the TOML decoder can't.
func (c *Config) Validate() error {
	if c.BinSHA256 != "" {
		b, err := hex.DecodeString(c.BinSHA256)
		if err != nil || len(b) != 32 {
			return fmt.Errorf("bin_sha256 %q is not a SHA-256 hash", c.BinSHA256)
		}
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	return nil
}

// Has reports whether feature f is enabled.
func (c *Config) Has(f Feature) bool {
	return slices.Contains(c.Features, f)
}

// EngineOptions returns the hook engine options the file asks for.
func (c *Config) EngineOptions() hook.Options {
	return hook.Options{Fingerprint: c.BinSHA256}
}
