// Package palette loads named color palettes and renders them as C headers of
// RGB565 macros for the firmware.
//
// A palette file is TOML:
//
//	name = "catppuccin-mocha"
//	prefix = "CATPPUCCIN_"
//
//	[colors]
//	base = "#1e1e2e"
//	mauve = "#cba6f7"
//
// Every color is validated with [rgb565.Parse] at load time, so a palette that
// loads successfully always renders.
package palette

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/BurntSushi/toml"
	"github.com/bmatcuk/doublestar/v4"
	"tools.zach/dev/colorkit/internal/rgb565"
)

// ///////////////////////////////////////////////
// Types
// ///////////////////////////////////////////////

// Palette is a parsed palette file.
type Palette struct {
	// Name is a human-readable label written above the palette's macros.
	Name string
	// Prefix overrides the header-wide macro prefix when non-empty.
	Prefix string
	// Source is the file path or URL the palette was read from.
	Source string
	// Entries holds the palette colors sorted by name.
	Entries []Entry
}

// Entry is a single named color.
type Entry struct {
	Name string
	// Hex is the normalized "#rrggbb" form of the input.
	Hex   string
	Value rgb565.Color
}

// file mirrors the on-disk TOML layout.
type file struct {
	Name   string            `toml:"name"`
	Prefix string            `toml:"prefix"`
	Colors map[string]string `toml:"colors"`
}

// ///////////////////////////////////////////////
// Parsing
// ///////////////////////////////////////////////

// Parse decodes palette TOML read from source. It fails when the palette has
// no colors, when any color is not a valid hex color, when the prefix could not
// start a C identifier, or when the name would break out of its header comment.
func Parse(data []byte, source string) (*Palette, error) {
	var f file
	md, err := toml.Decode(string(data), &f)
	if err != nil {
		return nil, fmt.Errorf("%s: parse palette: %w", source, err)
	}
	for _, key := range md.Undecoded() {
		slog.Warn("unknown palette key", "key", key.String(), "source", source)
	}
	if len(f.Colors) == 0 {
		return nil, fmt.Errorf("%s: palette has no [colors]", source)
	}

	if !prefixRe.MatchString(f.Prefix) {
		return nil, fmt.Errorf("%s: invalid prefix %q: must be empty or a C identifier", source, f.Prefix)
	}
	if strings.ContainsFunc(f.Name, unicode.IsControl) {
		return nil, fmt.Errorf("%s: invalid name %q: contains control characters", source, f.Name)
	}

	p := &Palette{
		Name:    f.Name,
		Prefix:  f.Prefix,
		Source:  source,
		Entries: make([]Entry, 0, len(f.Colors)),
	}
	if p.Name == "" {
		p.Name = strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	}
	for name, hex := range f.Colors {
		c, err := rgb565.ParseHex(hex)
		if err != nil {
			return nil, fmt.Errorf("%s: color %q: %w", source, name, err)
		}
		p.Entries = append(p.Entries, Entry{
			Name:  name,
			Hex:   fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B),
			Value: rgb565.FromNRGBA(c),
		})
	}
	sort.Slice(p.Entries, func(i, j int) bool { return p.Entries[i].Name < p.Entries[j].Name })
	return p, nil
}

// Load reads and parses the palette file at path.
func Load(path string) (*Palette, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read palette: %w", err)
	}
	return Parse(data, path)
}

// Find expands doublestar patterns into a sorted, de-duplicated list of
// palette files. A pattern matching nothing is logged, not an error.
func Find(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			slog.Warn("palette pattern matched no files", "pattern", pattern)
		}
		for _, m := range matches {
			m = filepath.Clean(m)
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}
	sort.Strings(files)
	return files, nil
}

// LoadGlob loads every palette file matched by patterns, in path order.
func LoadGlob(patterns []string) ([]*Palette, error) {
	files, err := Find(patterns)
	if err != nil {
		return nil, err
	}
	palettes := make([]*Palette, 0, len(files))
	for _, f := range files {
		p, err := Load(f)
		if err != nil {
			return nil, err
		}
		slog.Debug("loaded palette", "name", p.Name, "source", f, "colors", len(p.Entries))
		palettes = append(palettes, p)
	}
	return palettes, nil
}
