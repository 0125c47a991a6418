package palette

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/iancoleman/strcase"
	"tools.zach/dev/colorkit/internal/atomicfile"
)

// HeaderOptions controls C header rendering.
type HeaderOptions struct {
	// Guard is the include guard macro.
	Guard string
	// Prefix is prepended to macro names of palettes without their own prefix.
	Prefix string
	// Generator names the tool in the "Code generated" banner.
	Generator string
}

// prefixRe matches a string that may be prepended to a C identifier.
var prefixRe = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)?$`)

// MacroName converts a color name to a C macro: SCREAMING_SNAKE_CASE with any
// character outside [A-Z0-9_] replaced, prefixed with prefix.
// "bg-alt" with prefix "COLOR_" becomes "COLOR_BG_ALT".
func MacroName(prefix, name string) (string, error) {
	if !prefixRe.MatchString(prefix) {
		return "", fmt.Errorf("invalid macro prefix %q: must be empty or a C identifier", prefix)
	}
	snake := strcase.ToScreamingSnake(name)
	var b strings.Builder
	lastUnderscore := true
	for _, r := range snake {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		case !lastUnderscore:
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	body := strings.TrimSuffix(b.String(), "_")
	if body == "" {
		return "", fmt.Errorf("color name %q has no usable characters", name)
	}
	macro := prefix + body
	if macro[0] >= '0' && macro[0] <= '9' {
		macro = "_" + macro
	}
	return macro, nil
}

// define is one rendered macro line.
type define struct {
	macro string
	entry Entry
}

// block groups the defines of one palette.
type block struct {
	palette *Palette
	defines []define
}

// RenderHeader renders palettes as a C header of RGB565 macros. Palettes keep
// their given order and entries within a palette are sorted by name. A macro
// name produced by two colors, in the same palette or across palettes, is an
// error.
func RenderHeader(opts HeaderOptions, palettes ...*Palette) ([]byte, error) {
	owner := make(map[string]string)
	blocks := make([]block, 0, len(palettes))
	width := 0
	for _, p := range palettes {
		prefix := opts.Prefix
		if p.Prefix != "" {
			prefix = p.Prefix
		}
		blk := block{palette: p}
		for _, e := range p.Entries {
			macro, err := MacroName(prefix, e.Name)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", p.Source, err)
			}
			where := fmt.Sprintf("%s (%s)", e.Name, p.Source)
			if prev, dup := owner[macro]; dup {
				return nil, fmt.Errorf("duplicate macro %s from %s and %s", macro, prev, where)
			}
			owner[macro] = where
			width = max(width, len(macro))
			blk.defines = append(blk.defines, define{macro: macro, entry: e})
		}
		blocks = append(blocks, blk)
	}

	generator := opts.Generator
	if generator == "" {
		generator = "genpalette"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "// Code generated by %s. DO NOT EDIT.\n", generator)
	b.WriteString("// RGB565 layout: RRRRRGGGGGGBBBBB, channels truncated from 8 bits.\n\n")
	fmt.Fprintf(&b, "#ifndef %s\n#define %s\n", opts.Guard, opts.Guard)
	for _, blk := range blocks {
		fmt.Fprintf(&b, "\n// %s (%s)\n", commentText(blk.palette.Name), commentText(blk.palette.Source))
		for _, d := range blk.defines {
			fmt.Fprintf(&b, "#define %-*s %s // %s\n", width, d.macro, d.entry.Value, d.entry.Hex)
		}
	}
	fmt.Fprintf(&b, "\n#endif // %s\n", opts.Guard)
	return []byte(b.String()), nil
}

// WriteHeader writes a rendered header to path, leaving the file untouched
// when the content is unchanged. It reports whether the file was written.
func WriteHeader(path string, data []byte) (bool, error) {
	changed, err := atomicfile.WriteIfChanged(path, data, 0o644)
	if err != nil {
		return false, fmt.Errorf("write header %s: %w", path, err)
	}
	return changed, nil
}

// Count returns the total number of colors across palettes.
func Count(palettes []*Palette) int {
	n := 0
	for _, p := range palettes {
		n += len(p.Entries)
	}
	return n
}

// commentText replaces control characters so s stays on one comment line.
func commentText(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)
}
