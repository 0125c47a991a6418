// Package config tests verify [Load] behavior (defaults, overrides,
// missing files, malformed input, newer schema), validation
// ([Config.Validate]), serialization round-trips ([Config.Save]), and
// [ConfigDocs] completeness.
package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
)

// ///////////////////////////////////////////////
// Load
// ///////////////////////////////////////////////

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		config  string
		noFile  bool
		wantErr bool
		check   func(t *testing.T, cfg *Config)
	}{
		{
			name:   "missing file returns defaults",
			noFile: true,
			check: func(t *testing.T, cfg *Config) {
				t.Helper()
				if !reflect.DeepEqual(cfg, DefaultConfig()) {
					t.Errorf("Load(missing) = %+v, want defaults", cfg)
				}
			},
		},
		{
			name:   "empty file keeps defaults",
			config: "",
			check: func(t *testing.T, cfg *Config) {
				t.Helper()
				if cfg.Version != SchemaVersion {
					t.Errorf("Version = %d, want %d", cfg.Version, SchemaVersion)
				}
				if cfg.Palette.Guard != "PALETTE_H" {
					t.Errorf("Guard = %q, want PALETTE_H", cfg.Palette.Guard)
				}
			},
		},
		{
			name: "user overrides applied",
			config: `
version = 1

[output]
swatch = "never"

[palette]
sources = ["colors/*.toml"]
prefix = "CATPPUCCIN_"
header = "src/colors.h"

[firmware]
macro = "FW_VERSION"
format = "plain"
`,
			check: func(t *testing.T, cfg *Config) {
				t.Helper()
				if cfg.Output.Swatch != "never" {
					t.Errorf("Swatch = %q, want never", cfg.Output.Swatch)
				}
				if len(cfg.Palette.Sources) != 1 || cfg.Palette.Sources[0] != "colors/*.toml" {
					t.Errorf("Sources = %v, want [colors/*.toml]", cfg.Palette.Sources)
				}
				if cfg.Palette.Prefix != "CATPPUCCIN_" {
					t.Errorf("Prefix = %q", cfg.Palette.Prefix)
				}
				if cfg.Palette.Header != "src/colors.h" {
					t.Errorf("Header = %q", cfg.Palette.Header)
				}
				if cfg.Palette.Guard != "PALETTE_H" {
					t.Errorf("Guard = %q, want default PALETTE_H", cfg.Palette.Guard)
				}
				if cfg.Firmware.Macro != "FW_VERSION" || cfg.Firmware.Format != "plain" {
					t.Errorf("Firmware = %+v", cfg.Firmware)
				}
				if cfg.Firmware.Fallback != "0.0.0-dev" {
					t.Errorf("Fallback = %q, want default", cfg.Firmware.Fallback)
				}
			},
		},
		{
			name:    "malformed toml",
			config:  "[palette\nheader = ",
			wantErr: true,
		},
		{
			name:    "invalid value rejected",
			config:  "[output]\nswatch = \"sometimes\"\n",
			wantErr: true,
		},
		{
			name:    "newer schema rejected",
			config:  "version = 99\n",
			wantErr: true,
		},
		{
			name:   "unknown keys are ignored",
			config: "[palette]\ncolour_space = \"srgb\"\n",
			check: func(t *testing.T, cfg *Config) {
				t.Helper()
				if cfg.Palette.Header != DefaultConfig().Palette.Header {
					t.Errorf("Header = %q, want default", cfg.Palette.Header)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "colorkit.toml")
			if !tt.noFile {
				writeConfig(t, path, tt.config)
			}
			cfg, err := Load(path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Load() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.check != nil && err == nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestLoad_UnreadablePath(t *testing.T) {
	// A directory in place of the config file is a read error, not "missing".
	dir := t.TempDir()
	if _, err := Load(dir); err == nil {
		t.Fatal("expected error when config path is a directory")
	}
}

// ///////////////////////////////////////////////
// ExampleConfig / ConfigDocs
// ///////////////////////////////////////////////

func TestExampleConfig(t *testing.T) {
	cfg := ExampleConfig()
	if cfg == nil {
		t.Fatal("ExampleConfig returned nil")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("ExampleConfig does not validate: %v", err)
	}
	var buf strings.Builder
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		t.Fatalf("failed to marshal ExampleConfig: %v", err)
	}
}

func TestConfigDocsComplete(t *testing.T) {
	for _, field := range collectTOMLFields(reflect.TypeOf(Config{}), "") {
		if _, ok := ConfigDocs[field]; !ok {
			t.Errorf("ConfigDocs missing entry for field %q", field)
		}
	}
}

// collectTOMLFields recursively walks a struct type and returns the
// dot-separated TOML key path for every tagged leaf field.
func collectTOMLFields(typ reflect.Type, prefix string) []string {
	var fields []string
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		tag := f.Tag.Get("toml")
		if tag == "" || tag == "-" {
			continue
		}
		if idx := strings.Index(tag, ","); idx != -1 {
			tag = tag[:idx]
		}
		path := tag
		if prefix != "" {
			path = prefix + "." + tag
		}
		if f.Type.Kind() == reflect.Struct {
			fields = append(fields, collectTOMLFields(f.Type, path)...)
		} else {
			fields = append(fields, path)
		}
	}
	return fields
}

func TestConfigMarshalFieldOrder(t *testing.T) {
	var buf strings.Builder
	if err := toml.NewEncoder(&buf).Encode(DefaultConfig()); err != nil {
		t.Fatalf("marshal: %v", err)
	}
	out := buf.String()

	order := []string{"version", "[log]", "[output]", "[palette]", "[firmware]"}
	for i := 1; i < len(order); i++ {
		b, a := strings.Index(out, order[i-1]), strings.Index(out, order[i])
		if b < 0 || a < 0 || b > a {
			t.Errorf("expected %q before %q in marshaled output", order[i-1], order[i])
		}
	}
}

// ///////////////////////////////////////////////
// Save
// ///////////////////////////////////////////////

func TestConfig_Save_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "colorkit.toml")

	orig := DefaultConfig()
	orig.Palette.Sources = []string{"a/*.toml", "b/**/*.toml"}
	orig.Palette.URL = "https://example.com/mocha.toml"
	orig.Firmware.Format = "semver"

	if err := orig.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(loaded, orig) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", loaded, orig)
	}
}

// ///////////////////////////////////////////////
// Validate
// ///////////////////////////////////////////////

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(cfg *Config)
		wantErr bool
	}{
		{"default config passes", func(cfg *Config) {}, false},
		{"invalid log.level", func(cfg *Config) { cfg.Log.Level = "verbose" }, true},
		{"upper-case log.level", func(cfg *Config) { cfg.Log.Level = "DEBUG" }, false},
		{"zero max_size_mb", func(cfg *Config) { cfg.Log.MaxSizeMB = 0 }, true},
		{"invalid swatch", func(cfg *Config) { cfg.Output.Swatch = "yes" }, true},
		{"swatch always", func(cfg *Config) { cfg.Output.Swatch = "always" }, false},
		{"swatch never", func(cfg *Config) { cfg.Output.Swatch = "never" }, false},
		{"bad glob", func(cfg *Config) { cfg.Palette.Sources = []string{"palettes/[a-"} }, true},
		{"no sources", func(cfg *Config) { cfg.Palette.Sources = nil }, false},
		{"https url", func(cfg *Config) { cfg.Palette.URL = "https://example.com/p.toml" }, false},
		{"ftp url", func(cfg *Config) { cfg.Palette.URL = "ftp://example.com/p.toml" }, true},
		{"relative url", func(cfg *Config) { cfg.Palette.URL = "palettes/p.toml" }, true},
		{"empty header", func(cfg *Config) { cfg.Palette.Header = "" }, true},
		{"guard with dash", func(cfg *Config) { cfg.Palette.Guard = "PALETTE-H" }, true},
		{"guard leading digit", func(cfg *Config) { cfg.Palette.Guard = "1PALETTE" }, true},
		{"empty prefix", func(cfg *Config) { cfg.Palette.Prefix = "" }, false},
		{"prefix with space", func(cfg *Config) { cfg.Palette.Prefix = "MY COLOR_" }, true},
		{"macro with space", func(cfg *Config) { cfg.Firmware.Macro = "APP VERSION" }, true},
		{"blank fallback", func(cfg *Config) { cfg.Firmware.Fallback = "  " }, true},
		{"format plain", func(cfg *Config) { cfg.Firmware.Format = "plain" }, false},
		{"format ldflags", func(cfg *Config) { cfg.Firmware.Format = "ldflags" }, false},
		{"format json", func(cfg *Config) { cfg.Firmware.Format = "json" }, true},
		{"ldflags var full path", func(cfg *Config) {
			cfg.Firmware.LdflagsVar = "tools.zach/dev/colorkit/internal/buildinfo.Version"
		}, false},
		{"ldflags var without package", func(cfg *Config) { cfg.Firmware.LdflagsVar = "version" }, true},
		{"newer version", func(cfg *Config) { cfg.Version = SchemaVersion + 1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.setup(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// ///////////////////////////////////////////////
// Helpers
// ///////////////////////////////////////////////

// writeConfig writes TOML content to path for use by [Load] in test cases.
func writeConfig(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write test config: %v", err)
	}
}
