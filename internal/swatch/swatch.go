// Package swatch draws terminal colour swatches showing how an RGB565 value
// looks on the display after truncation.
package swatch

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"

	"tools.zach/dev/colorkit/internal/rgb565"
)

// Mode controls when swatches are drawn.
type Mode string

const (
	ModeAuto   Mode = "auto"
	ModeAlways Mode = "always"
	ModeNever  Mode = "never"
)

// Modes lists every accepted mode in documentation order.
var Modes = []Mode{ModeAuto, ModeAlways, ModeNever}

// ParseMode parses s case-insensitively. An empty string is [ModeAuto].
func ParseMode(s string) (Mode, error) {
	if s == "" {
		return ModeAuto, nil
	}
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	for _, valid := range Modes {
		if m == valid {
			return m, nil
		}
	}
	return "", fmt.Errorf("invalid swatch mode %q (want auto, always, or never)", s)
}

// Width is the number of cells a swatch occupies.
const Width = 2

// Renderer renders swatches for one output stream.
type Renderer struct {
	out     *termenv.Output
	enabled bool
}

// New returns a Renderer for w. In [ModeAuto] swatches are drawn only when w
// is a terminal, using the colour profile detected from the environment.
// [ModeAlways] forces true colour.
func New(w io.Writer, mode Mode) *Renderer {
	switch mode {
	case ModeNever:
		return &Renderer{out: termenv.NewOutput(w, termenv.WithProfile(termenv.Ascii))}
	case ModeAlways:
		return &Renderer{
			out:     termenv.NewOutput(w, termenv.WithProfile(termenv.TrueColor)),
			enabled: true,
		}
	default:
		if !isTerminal(w) {
			return &Renderer{out: termenv.NewOutput(w, termenv.WithProfile(termenv.Ascii))}
		}
		out := termenv.NewOutput(w, termenv.WithColorCache(true))
		return &Renderer{out: out, enabled: out.Profile != termenv.Ascii}
	}
}

// Enabled reports whether Swatch returns anything.
func (r *Renderer) Enabled() bool {
	return r != nil && r.enabled
}

// Swatch returns a block of background colour c, or "" when disabled.
func (r *Renderer) Swatch(c rgb565.Color) string {
	if !r.Enabled() {
		return ""
	}
	return r.out.String(strings.Repeat(" ", Width)).
		Background(r.out.Color(c.Hex())).
		String()
}

// fder is implemented by *os.File.
type fder interface {
	Fd() uintptr
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(fder)
	if !ok {
		return false
	}
	return isTerminalFd(f.Fd())
}
