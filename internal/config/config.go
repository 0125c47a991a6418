// Package config provides configuration loading and defaults for the colorkit
// tools.
//
// Configuration is read from a TOML file (colorkit.toml) in the project root.
// Every field has a default, so a missing file or a partial file is valid.
package config

//go:generate go run ../../cmd/genconfig

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/bmatcuk/doublestar/v4"
	"tools.zach/dev/colorkit/internal/atomicfile"
	"tools.zach/dev/colorkit/internal/paths"
)

// SchemaVersion is the config schema version written by this build.
const SchemaVersion = 1

// ///////////////////////////////////////////////
// Configuration Types
// ///////////////////////////////////////////////

// Config represents the top-level configuration.
type Config struct {
	// Version is the config schema version.
	Version int `toml:"version"`
	// Log holds logging settings.
	Log LogConfig `toml:"log"`
	// Output holds rgb565 CLI output settings.
	Output OutputConfig `toml:"output"`
	// Palette holds palette header generation settings.
	Palette PaletteConfig `toml:"palette"`
	// Firmware holds firmware version flag settings.
	Firmware FirmwareConfig `toml:"firmware"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is the minimum log level (trace, debug, info, warn, error).
	Level string `toml:"level"`
	// File routes logs to a rotating file instead of stderr when non-empty.
	File string `toml:"file"`
	// MaxSizeMB is the maximum log file size in megabytes before rotation.
	MaxSizeMB int `toml:"max_size_mb"`
}

// OutputConfig holds rgb565 CLI output settings.
type OutputConfig struct {
	// Swatch controls color previews: "auto", "always", or "never".
	Swatch string `toml:"swatch"`
}

// PaletteConfig holds palette header generation settings.
type PaletteConfig struct {
	// Sources lists doublestar glob patterns of palette files.
	Sources []string `toml:"sources"`
	// URL is an optional remote palette merged after local sources.
	URL string `toml:"url"`
	// CacheDir stores the last successful download of URL.
	CacheDir string `toml:"cache_dir"`
	// Header is the path of the generated C header.
	Header string `toml:"header"`
	// Guard is the include guard macro of the generated header.
	Guard string `toml:"guard"`
	// Prefix is prepended to every color macro unless a palette sets its own.
	Prefix string `toml:"prefix"`
}

// FirmwareConfig holds firmware version flag settings.
type FirmwareConfig struct {
	// Macro is the preprocessor symbol receiving the version string.
	Macro string `toml:"macro"`
	// Fallback is used when git cannot describe the working tree.
	Fallback string `toml:"fallback"`
	// Format selects fwversion output: "cflag", "plain", "semver", or "ldflags".
	Format string `toml:"format"`
	// LdflagsVar is the fully qualified Go variable set by the "ldflags" format.
	LdflagsVar string `toml:"ldflags_var"`
}

// ///////////////////////////////////////////////
// Default Configuration
// ///////////////////////////////////////////////

// DefaultConfig returns a Config populated with defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: SchemaVersion,
		Log: LogConfig{
			Level:     "info",
			File:      "",
			MaxSizeMB: 10,
		},
		Output: OutputConfig{
			Swatch: "auto",
		},
		Palette: PaletteConfig{
			Sources:  []string{paths.DefaultPaletteGlob},
			CacheDir: paths.CacheDir,
			Header:   paths.HeaderFile,
			Guard:    "PALETTE_H",
			Prefix:   "COLOR_",
		},
		Firmware: FirmwareConfig{
			Macro:      "APP_VERSION",
			Fallback:   "0.0.0-dev",
			Format:     "cflag",
			LdflagsVar: "main.version",
		},
	}
}

// ExampleConfig returns a Config suitable for generating colorkit.default.toml.
func ExampleConfig() *Config {
	return DefaultConfig()
}

// ///////////////////////////////////////////////
// Loading and Saving
// ///////////////////////////////////////////////

// Load reads and validates the configuration file at path. Fields absent from
// the file keep their defaults. A missing file yields [DefaultConfig].
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := DefaultConfig()
	cfg.Version = 0
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	for _, key := range md.Undecoded() {
		slog.Warn("unknown config key", "key", key.String(), "file", path)
	}
	if cfg.Version == 0 {
		cfg.Version = SchemaVersion
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// Save writes the config to disk as TOML using atomic file write.
func (c *Config) Save(path string) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return atomicfile.Write(path, buf.Bytes(), 0o644)
}

// ///////////////////////////////////////////////
// Validation
// ///////////////////////////////////////////////

// identRe matches a C preprocessor identifier.
var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// prefixRe matches a string that may be prepended to an identifier.
var prefixRe = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)?$`)

// ldflagsVarRe matches "<import path>.<name>" as accepted by go build -X.
var ldflagsVarRe = regexp.MustCompile(`^[^\s=]+\.[A-Za-z_][A-Za-z0-9_]*$`)

// validLogLevels is the set of accepted log level strings.
var validLogLevels = map[string]bool{
	"trace": true, "debug": true, "info": true, "warn": true, "error": true,
}

// Validate checks that all configuration values are within acceptable ranges.
func (c *Config) Validate() error {
	if c.Version > SchemaVersion {
		return fmt.Errorf("config version %d is newer than supported version %d", c.Version, SchemaVersion)
	}

	if !validLogLevels[strings.ToLower(c.Log.Level)] {
		return fmt.Errorf("invalid log.level %q: must be trace, debug, info, warn, or error", c.Log.Level)
	}
	if c.Log.MaxSizeMB <= 0 {
		return fmt.Errorf("log.max_size_mb must be > 0, got %d", c.Log.MaxSizeMB)
	}

	switch c.Output.Swatch {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("invalid output.swatch %q: must be auto, always, or never", c.Output.Swatch)
	}

	for _, p := range c.Palette.Sources {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid palette.sources pattern %q", p)
		}
	}
	if c.Palette.URL != "" {
		u, err := url.Parse(c.Palette.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("invalid palette.url %q: must be an http or https URL", c.Palette.URL)
		}
	}
	if c.Palette.Header == "" {
		return fmt.Errorf("palette.header must not be empty")
	}
	if !identRe.MatchString(c.Palette.Guard) {
		return fmt.Errorf("invalid palette.guard %q: must be a C identifier", c.Palette.Guard)
	}
	if !prefixRe.MatchString(c.Palette.Prefix) {
		return fmt.Errorf("invalid palette.prefix %q: must start a C identifier", c.Palette.Prefix)
	}

	if !identRe.MatchString(c.Firmware.Macro) {
		return fmt.Errorf("invalid firmware.macro %q: must be a C identifier", c.Firmware.Macro)
	}
	if strings.TrimSpace(c.Firmware.Fallback) == "" {
		return fmt.Errorf("firmware.fallback must not be empty")
	}
	switch c.Firmware.Format {
	case "cflag", "plain", "semver", "ldflags":
	default:
		return fmt.Errorf("invalid firmware.format %q: must be cflag, plain, semver, or ldflags", c.Firmware.Format)
	}
	if !ldflagsVarRe.MatchString(c.Firmware.LdflagsVar) {
		return fmt.Errorf("invalid firmware.ldflags_var %q: must be <package>.<variable>", c.Firmware.LdflagsVar)
	}

	return nil
}
