// Package paths centralizes file names and default locations used by the
// colorkit tools.
package paths

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
)

// ///////////////////////////////////////////////
// Constants
// ///////////////////////////////////////////////

// Project-relative file names.
const (
	ConfigFile        = "colorkit.toml"
	DefaultConfigFile = "colorkit.default.toml"
	CacheDir          = ".colorkit-cache"
	PaletteDir        = "palettes"
	HeaderFile        = "include/palette.h"
)

// PaletteExt is the extension of palette definition files.
const PaletteExt = ".toml"

// DefaultPaletteGlob matches every palette file below [PaletteDir].
const DefaultPaletteGlob = PaletteDir + "/**/*" + PaletteExt

// ///////////////////////////////////////////////
// Cache
// ///////////////////////////////////////////////

// Cache provides path construction rooted at a cache directory.
type Cache struct {
	Root string
}

// Palette returns the cache file for a palette fetched from url. The name is
// derived from a hash of the URL so distinct sources never collide.
func (c Cache) Palette(url string) string {
	sum := sha256.Sum256([]byte(url))
	return filepath.Join(c.Root, "palette-"+hex.EncodeToString(sum[:8])+PaletteExt)
}
