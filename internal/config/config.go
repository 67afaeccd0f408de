package config

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

// Config holds all runtime configuration. Values come from defaults, then
// an optional TOML file named by FIGURA_CONFIG, then environment variables.
type Config struct {
	// Server
	Port int

	// Script and sources
	ScriptPath string // watched choreography script; empty plays Example
	Example    string // built-in script id used when ScriptPath is empty
	SourceDir  string // directory of <name>.motion files
	SourceURL  string // download fallback for missing sources

	// Target character
	TargetSkeleton string // YAML descriptor path; empty uses the built-in Mixamo rig

	// Behaviour
	Debounce         time.Duration // quiet period before a changed script is recompiled
	Crossfade        time.Duration // blend length when the compiled clip changes
	PlaybackSpeed    float64
	GenerateInterval float64 // seconds between generated source samples; 0 keeps native timing
}

// fileConfig mirrors Config in the TOML file.
type fileConfig struct {
	Port             int     `toml:"port"`
	Script           string  `toml:"script"`
	Example          string  `toml:"example"`
	SourceDir        string  `toml:"source_dir"`
	SourceURL        string  `toml:"source_url"`
	TargetSkeleton   string  `toml:"target_skeleton"`
	DebounceMS       int     `toml:"debounce_ms"`
	CrossfadeMS      int     `toml:"crossfade_ms"`
	PlaybackSpeed    float64 `toml:"speed"`
	GenerateInterval float64 `toml:"generate_interval"`
}

// ParseError reports a config file that could not be decoded.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("config %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Port:          8080,
		Example:       "choreography",
		SourceDir:     "motions",
		Debounce:      150 * time.Millisecond,
		Crossfade:     250 * time.Millisecond,
		PlaybackSpeed: 1,
	}
}

// Load builds the configuration from defaults, the FIGURA_CONFIG file if
// set, and environment variables, in that order.
func Load() (Config, error) {
	cfg := Defaults()
	if path := os.Getenv("FIGURA_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return cfg, err
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file %s: %w", path, err)
	}

	var fc fileConfig
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&fc); err != nil {
		return &ParseError{Path: path, Err: err}
	}

	if fc.Port != 0 {
		c.Port = fc.Port
	}
	c.ScriptPath = orStr(fc.Script, c.ScriptPath)
	c.Example = orStr(fc.Example, c.Example)
	c.SourceDir = orStr(fc.SourceDir, c.SourceDir)
	c.SourceURL = orStr(fc.SourceURL, c.SourceURL)
	c.TargetSkeleton = orStr(fc.TargetSkeleton, c.TargetSkeleton)
	if fc.DebounceMS > 0 {
		c.Debounce = time.Duration(fc.DebounceMS) * time.Millisecond
	}
	if fc.CrossfadeMS > 0 {
		c.Crossfade = time.Duration(fc.CrossfadeMS) * time.Millisecond
	}
	if fc.PlaybackSpeed > 0 {
		c.PlaybackSpeed = fc.PlaybackSpeed
	}
	if fc.GenerateInterval > 0 {
		c.GenerateInterval = fc.GenerateInterval
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Port = envInt("FIGURA_PORT", c.Port)
	c.ScriptPath = envStr("FIGURA_SCRIPT", c.ScriptPath)
	c.Example = envStr("FIGURA_EXAMPLE", c.Example)
	c.SourceDir = envStr("FIGURA_SOURCE_DIR", c.SourceDir)
	c.SourceURL = envStr("FIGURA_SOURCE_URL", c.SourceURL)
	c.TargetSkeleton = envStr("FIGURA_TARGET_SKELETON", c.TargetSkeleton)
	c.Debounce = time.Duration(envInt("FIGURA_DEBOUNCE_MS", int(c.Debounce/time.Millisecond))) * time.Millisecond
	c.Crossfade = time.Duration(envInt("FIGURA_CROSSFADE_MS", int(c.Crossfade/time.Millisecond))) * time.Millisecond
	c.PlaybackSpeed = envFloat("FIGURA_SPEED", c.PlaybackSpeed)
	c.GenerateInterval = envFloat("FIGURA_GENERATE_INTERVAL", c.GenerateInterval)
}

func orStr(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
