// Package main implements genpalette, which renders palette TOML files into a
// C header of RGB565 color macros for the firmware.
//
//	genpalette                      # palettes/**/*.toml -> include/palette.h
//	genpalette -palettes 'themes/*.toml' -out src/colors.h
//	genpalette -watch               # regenerate on every palette save
//	genpalette -init                # write colorkit.toml with defaults
//
// The header is only rewritten when its content changes, so incremental
// firmware builds are not triggered by a no-op regeneration.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	rootpkg "tools.zach/dev/colorkit"
	"tools.zach/dev/colorkit/internal/atomicfile"
	"tools.zach/dev/colorkit/internal/config"
	"tools.zach/dev/colorkit/internal/fwversion"
	"tools.zach/dev/colorkit/internal/logger"
	"tools.zach/dev/colorkit/internal/palette"
	"tools.zach/dev/colorkit/internal/paths"
	"tools.zach/dev/colorkit/internal/watch"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

// ///////////////////////////////////////////////
// Flags
// ///////////////////////////////////////////////

// patternList is a repeatable string flag.
type patternList []string

func (p *patternList) String() string { return strings.Join(*p, ",") }

func (p *patternList) Set(v string) error {
	*p = append(*p, v)
	return nil
}

// ///////////////////////////////////////////////
// Main
// ///////////////////////////////////////////////

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("genpalette", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", paths.ConfigFile, "Path to the colorkit TOML config")
	var sources patternList
	fs.Var(&sources, "palettes", "Palette glob, repeatable (default from config)")
	url := fs.String("url", "", "Remote palette URL (default from config)")
	out := fs.String("out", "", "Header output path (default from config)")
	prefix := fs.String("prefix", "", "Macro prefix for palettes without their own (default from config)")
	guard := fs.String("guard", "", "Include guard macro (default from config)")
	watchMode := fs.Bool("watch", false, "Regenerate whenever a palette file changes")
	initConfig := fs.Bool("init", false, "Write the default config to -config and exit")
	showVersion := fs.Bool("version", false, "Print the version and exit")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if *showVersion {
		fmt.Fprintf(stdout, "genpalette %s\n", fwversion.Binary(version))
		return 0
	}
	if *initConfig {
		if err := writeDefaultConfig(*configPath); err != nil {
			fmt.Fprintf(stderr, "fatal: %v\n", err)
			return 1
		}
		fmt.Fprintf(stdout, "wrote %s\n", *configPath)
		return 0
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "fatal: load config: %v\n", err)
		return 1
	}
	if len(sources) > 0 {
		cfg.Palette.Sources = sources
	}
	if *url != "" {
		cfg.Palette.URL = *url
	}
	if *out != "" {
		cfg.Palette.Header = *out
	}
	if *prefix != "" {
		cfg.Palette.Prefix = *prefix
	}
	if *guard != "" {
		cfg.Palette.Guard = *guard
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "fatal: %v\n", err)
		return 2
	}

	log, logCloser := logger.New(logger.Options{
		Tool:      "genpalette",
		Level:     cfg.Log.Level,
		File:      cfg.Log.File,
		MaxSizeMB: cfg.Log.MaxSizeMB,
		Stderr:    stderr,
	})
	defer logCloser.Close()
	slog.SetDefault(log)

	gen := &generator{cfg: cfg.Palette, stdout: stdout}
	if err := gen.generate(ctx); err != nil {
		if !*watchMode {
			fmt.Fprintf(stderr, "fatal: %v\n", err)
			return 1
		}
		slog.Error("generation failed", "error", err)
	}
	if !*watchMode {
		return 0
	}

	ctx, stop := signal.NotifyContext(ctx, shutdownSignals...)
	defer stop()
	if err := gen.watch(ctx); err != nil {
		fmt.Fprintf(stderr, "fatal: %v\n", err)
		return 1
	}
	return 0
}

// writeDefaultConfig writes the embedded default config to path, refusing to
// overwrite an existing file.
func writeDefaultConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if err := atomicfile.Write(path, rootpkg.DefaultConfigTOML, 0o644); err != nil {
		return fmt.Errorf("write default config: %w", err)
	}
	return nil
}

// ///////////////////////////////////////////////
// Generator
// ///////////////////////////////////////////////

// generator renders the header described by one palette config.
type generator struct {
	cfg    config.PaletteConfig
	stdout io.Writer
}

// load collects local palettes in path order followed by the remote palette.
func (g *generator) load(ctx context.Context) ([]*palette.Palette, error) {
	palettes, err := palette.LoadGlob(g.cfg.Sources)
	if err != nil {
		return nil, err
	}
	if g.cfg.URL != "" {
		remote, err := palette.Fetch(ctx, g.cfg.URL, paths.Cache{Root: g.cfg.CacheDir})
		if remote == nil {
			return nil, err
		}
		if err != nil {
			slog.Warn("remote palette fetch used fallback", "error", err)
		}
		palettes = append(palettes, remote)
	}
	if len(palettes) == 0 {
		return nil, fmt.Errorf("no palettes found (sources: %s)", strings.Join(g.cfg.Sources, ", "))
	}
	return palettes, nil
}

// generate loads, renders, and writes the header once.
func (g *generator) generate(ctx context.Context) error {
	palettes, err := g.load(ctx)
	if err != nil {
		return err
	}
	data, err := palette.RenderHeader(palette.HeaderOptions{
		Guard:     g.cfg.Guard,
		Prefix:    g.cfg.Prefix,
		Generator: "genpalette",
	}, palettes...)
	if err != nil {
		return err
	}
	changed, err := palette.WriteHeader(g.cfg.Header, data)
	if err != nil {
		return err
	}

	colors := palette.Count(palettes)
	slog.Info("header generated", "path", g.cfg.Header, "palettes", len(palettes), "colors", colors, "changed", changed)
	if changed {
		fmt.Fprintf(g.stdout, "wrote %s (%d colors)\n", g.cfg.Header, colors)
	} else {
		fmt.Fprintf(g.stdout, "%s up to date\n", g.cfg.Header)
	}
	return nil
}

// watch regenerates the header on every palette change until ctx is done.
// Generation errors are logged so a half-saved file does not end the session.
func (g *generator) watch(ctx context.Context) error {
	w, err := watch.New(g.cfg.Sources, 0)
	if err != nil {
		return err
	}
	defer w.Close()

	slog.Info("watching palettes", "sources", strings.Join(g.cfg.Sources, ", "), "polling", w.Polling())
	for {
		select {
		case <-ctx.Done():
			slog.Info("watch stopped")
			return nil
		case <-w.Events():
			if err := g.generate(ctx); err != nil {
				slog.Error("generation failed", "error", err)
			}
		}
	}
}
