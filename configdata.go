// Package colorkit provides embedded assets for the colorkit tools.
//
// The root package exists solely to embed colorkit.default.toml via
// [DefaultConfigTOML]. genpalette -init writes it out as a starting config.
package colorkit

import _ "embed"

// DefaultConfigTOML holds the raw bytes of colorkit.default.toml, generated by
// cmd/genconfig and embedded at build time.
//
//go:embed colorkit.default.toml
var DefaultConfigTOML []byte
