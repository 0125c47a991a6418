// Package main implements rgb565, which converts hex colors such as #DA7756
// into packed 16-bit RGB565 values for TFT displays.
//
//	$ rgb565 "#1e1e2e" cba6f7
//	Hex: #1e1e2e, RGB565: 0x18e5
//	Hex: cba6f7, RGB565: 0xcd3e
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"tools.zach/dev/colorkit/internal/config"
	"tools.zach/dev/colorkit/internal/fwversion"
	"tools.zach/dev/colorkit/internal/logger"
	"tools.zach/dev/colorkit/internal/paths"
	"tools.zach/dev/colorkit/internal/rgb565"
	"tools.zach/dev/colorkit/internal/swatch"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

const usage = "Usage: rgb565 [flags] <hex_color_1> <hex_color_2> ..."

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run converts every positional argument and returns the exit status. An
// invalid color is reported on stderr and the remaining arguments are still
// converted; the status is then 1.
func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("rgb565", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", paths.ConfigFile, "Path to the colorkit TOML config")
	swatchMode := fs.String("swatch", "", "Color preview: auto, always, or never (default from config)")
	showVersion := fs.Bool("version", false, "Print the version and exit")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), usage)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if *showVersion {
		fmt.Fprintf(stdout, "rgb565 %s\n", fwversion.Binary(version))
		return 0
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(stdout, usage)
		return 0
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "fatal: load config: %v\n", err)
		return 1
	}

	log, logCloser := logger.New(logger.Options{
		Tool:      "rgb565",
		Level:     cfg.Log.Level,
		File:      cfg.Log.File,
		MaxSizeMB: cfg.Log.MaxSizeMB,
		Stderr:    stderr,
	})
	defer logCloser.Close()
	slog.SetDefault(log)

	modeName := cfg.Output.Swatch
	if *swatchMode != "" {
		modeName = *swatchMode
	}
	mode, err := swatch.ParseMode(modeName)
	if err != nil {
		fmt.Fprintf(stderr, "fatal: %v\n", err)
		return 2
	}
	sw := swatch.New(stdout, mode)

	status := 0
	for _, arg := range fs.Args() {
		v, err := rgb565.Convert(arg)
		if err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			status = 1
			continue
		}
		slog.Debug("converted", "hex", arg, "rgb565", rgb565.Format(v))
		line := fmt.Sprintf("Hex: %s, RGB565: %s", arg, rgb565.Format(v))
		if sw.Enabled() {
			line += " " + sw.Swatch(rgb565.Color(v))
		}
		fmt.Fprintln(stdout, line)
	}
	return status
}
