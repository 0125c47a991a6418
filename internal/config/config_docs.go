package config

// ///////////////////////////////////////////////
// Documentation Types
// ///////////////////////////////////////////////

// FieldDoc holds documentation and alternative examples for a single config field.
// The genconfig tool uses [FieldDoc] values to annotate colorkit.default.toml.
type FieldDoc struct {
	// Comment is shown as a header comment above the field in the example config.
	Comment string

	// Alternatives are shown as commented-out lines below the active value.
	Alternatives []string
}

// ///////////////////////////////////////////////
// Field Documentation Map
// ///////////////////////////////////////////////

// ConfigDocs maps dot-separated TOML field paths (e.g. "palette.guard") and
// section names (e.g. "palette") to their [FieldDoc] entries.
var ConfigDocs = map[string]FieldDoc{
	"version": {
		Comment: "Config schema version. Do not edit.",
	},

	"log": {
		Comment: "Diagnostics for rgb565, genpalette and fwversion.",
	},
	"log.level": {
		Comment:      "Minimum level: trace, debug, info, warn, error",
		Alternatives: []string{`level = "debug"`},
	},
	"log.file": {
		Comment:      "Write logs to a rotating file instead of stderr. Empty means stderr.",
		Alternatives: []string{`file = ".colorkit-cache/colorkit.log"`},
	},
	"log.max_size_mb": {
		Comment: "Rotate the log file after this many megabytes.",
	},

	"output": {
		Comment: "rgb565 command output.",
	},
	"output.swatch": {
		Comment:      "Show a color preview next to each value: auto (only on a terminal), always, never.\nThe preview shows the truncated RGB565 color, i.e. what the panel displays.",
		Alternatives: []string{`swatch = "never"`},
	},

	"palette": {
		Comment: "C header generation for firmware color macros (genpalette).",
	},
	"palette.sources": {
		Comment:      "Glob patterns of palette TOML files. ** matches any number of directories.",
		Alternatives: []string{`sources = ["palettes/catppuccin-*.toml", "boards/**/colors.toml"]`},
	},
	"palette.url": {
		Comment:      "Optional remote palette, merged after local sources.\nThe last successful download is cached and used when offline.",
		Alternatives: []string{`url = "https://example.com/palettes/mocha.toml"`},
	},
	"palette.cache_dir": {
		Comment: "Directory for downloaded palettes.",
	},
	"palette.header": {
		Comment: "Generated header path. It is only rewritten when its content changes.",
	},
	"palette.guard": {
		Comment: "Include guard macro.",
	},
	"palette.prefix": {
		Comment:      "Prefix for every macro. A palette file's own prefix takes precedence.",
		Alternatives: []string{`prefix = "CATPPUCCIN_"`},
	},

	"firmware": {
		Comment: "Firmware version flag (fwversion).",
	},
	"firmware.macro": {
		Comment: "Preprocessor symbol that receives the version, e.g. -DAPP_VERSION=\\\"v1.2.0\\\"",
	},
	"firmware.fallback": {
		Comment: "Version used when git is unavailable or the tree is not a repository.",
	},
	"firmware.format": {
		Comment:      "Output format: cflag, plain, semver, ldflags",
		Alternatives: []string{`format = "plain"`, `format = "ldflags"`},
	},
	"firmware.ldflags_var": {
		Comment: "Go variable set by the ldflags format (-X <ldflags_var>=<version>).",
	},
}
