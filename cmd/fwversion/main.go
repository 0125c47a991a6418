// Package main prints the firmware version flag for the PlatformIO build.
//
// Wire it into platformio.ini:
//
//	build_flags = !fwversion
//
// stdout carries only the flag, e.g. -DAPP_VERSION=\"v1.2.0-3-gabc1234\";
// "Firmware Version: <v>" goes to stderr for the build log. When git is
// unavailable the version is 0.0.0-dev and the build proceeds.
package main

import (
	"context"
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
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr, nil))
}

// run resolves and prints the version flag. git is nil outside tests.
func run(ctx context.Context, args []string, stdout, stderr io.Writer, git fwversion.Runner) int {
	fs := flag.NewFlagSet("fwversion", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", paths.ConfigFile, "Path to the colorkit TOML config")
	dir := fs.String("dir", ".", "Git working directory to describe")
	format := fs.String("format", "", "Output format: cflag, plain, semver, or ldflags (default from config)")
	macro := fs.String("macro", "", "C macro receiving the version (default from config)")
	showVersion := fs.Bool("version", false, "Print the tool version and exit")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(stderr, "fwversion: unexpected argument %q\n", fs.Arg(0))
		return 2
	}

	if *showVersion {
		fmt.Fprintf(stdout, "fwversion %s\n", fwversion.Binary(version))
		return 0
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "fatal: load config: %v\n", err)
		return 1
	}
	if *format != "" {
		cfg.Firmware.Format = *format
	}
	if *macro != "" {
		cfg.Firmware.Macro = *macro
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "fatal: %v\n", err)
		return 2
	}

	log, logCloser := logger.New(logger.Options{
		Tool:      "fwversion",
		Level:     cfg.Log.Level,
		File:      cfg.Log.File,
		MaxSizeMB: cfg.Log.MaxSizeMB,
		Stderr:    stderr,
	})
	defer logCloser.Close()
	slog.SetDefault(log)

	opts := fwversion.Options{
		Dir:        *dir,
		Macro:      cfg.Firmware.Macro,
		Fallback:   cfg.Firmware.Fallback,
		Format:     fwversion.Format(cfg.Firmware.Format),
		LdflagsVar: cfg.Firmware.LdflagsVar,
		Run:        git,
	}

	res, err := fwversion.Resolve(ctx, opts)
	if err != nil {
		fmt.Fprintf(stderr, "fatal: %v\n", err)
		return 2
	}

	fmt.Fprintf(stderr, "Firmware Version: %s\n", res.Describe)
	fmt.Fprintln(stdout, res.Flag)
	return 0
}
