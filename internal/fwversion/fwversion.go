// Package fwversion derives the firmware version from git and renders it as a
// compiler or linker flag.
//
// The version is the output of
//
//	git describe --dirty --always --tags
//
// or [Fallback] when git is missing, the directory is not a repository, or the
// command times out. [SemVer] reformats describe output:
//
//	On tag v0.1.0:      0.1.0
//	Dirty tag:          0.1.0-dirty
//	3 past v0.1.0:      0.1.0-dev.3+g1234567
//	Same but dirty:     0.1.0-dev.3+g1234567.dirty
//	No tags:            0.0.0-dev+05ffee5
package fwversion

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"regexp"
	"runtime/debug"
	"strings"
	"time"
)

// ///////////////////////////////////////////////
// Constants
// ///////////////////////////////////////////////

const (
	// DefaultMacro is the preprocessor symbol the firmware reads.
	DefaultMacro = "APP_VERSION"
	// Fallback is reported when git cannot describe the tree.
	Fallback = "0.0.0-dev"
	// DefaultTimeout bounds the git invocation.
	DefaultTimeout = 10 * time.Second
	// DefaultLdflagsVar is the Go variable stamped by [FormatLdflags].
	DefaultLdflagsVar = "main.version"
)

// describeArgs are the git arguments used to name the working tree.
var describeArgs = []string{"describe", "--dirty", "--always", "--tags"}

// Format selects how [Resolve] renders the version.
type Format string

const (
	// FormatCFlag renders -D<macro>=\"<describe>\" for PlatformIO build_flags.
	FormatCFlag Format = "cflag"
	// FormatPlain renders the describe output unchanged.
	FormatPlain Format = "plain"
	// FormatSemVer renders [SemVer] of the describe output.
	FormatSemVer Format = "semver"
	// FormatLdflags renders -X <var>=<semver> for go build -ldflags.
	FormatLdflags Format = "ldflags"
)

// Formats lists every accepted format in documentation order.
var Formats = []Format{FormatCFlag, FormatPlain, FormatSemVer, FormatLdflags}

// ParseFormat parses s. An empty string is [FormatCFlag].
func ParseFormat(s string) (Format, error) {
	if s == "" {
		return FormatCFlag, nil
	}
	for _, f := range Formats {
		if Format(s) == f {
			return f, nil
		}
	}
	return "", fmt.Errorf("invalid format %q: must be cflag, plain, semver, or ldflags", s)
}

// ///////////////////////////////////////////////
// Git
// ///////////////////////////////////////////////

// Runner runs name with args in dir and returns its standard output.
type Runner func(ctx context.Context, dir, name string, args ...string) ([]byte, error)

// ExecRunner runs the command with os/exec. Stderr from a failed command is
// folded into the returned error.
func ExecRunner(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s %s: %w: %s", name, strings.Join(args, " "), err, msg)
		}
		return nil, fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
	}
	return out, nil
}

// Describe returns the git description of dir, or [Fallback] with a logged
// warning when git fails.
func Describe(ctx context.Context, dir string) string {
	v, _ := describe(ctx, Options{Dir: dir})
	return v
}

// describe runs git per opts. The boolean reports whether git succeeded.
func describe(ctx context.Context, opts Options) (string, bool) {
	run := opts.Run
	if run == nil {
		run = ExecRunner
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	fallback := opts.Fallback
	if fallback == "" {
		fallback = Fallback
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	out, err := run(ctx, opts.Dir, "git", describeArgs...)
	desc := strings.TrimSpace(string(out))
	if err == nil && desc == "" {
		err = errors.New("git describe printed nothing")
	}
	if err != nil {
		slog.Warn("git version check failed", "error", err, "fallback", fallback)
		return fallback, false
	}
	return desc, true
}

// ///////////////////////////////////////////////
// Formatting
// ///////////////////////////////////////////////

// BuildFlag returns the C preprocessor flag defining macro as the quoted
// version string. The quotes are backslash-escaped so they survive the
// PlatformIO build_flags shell expansion: -DAPP_VERSION=\"v1.2.0\".
func BuildFlag(macro, version string) string {
	if macro == "" {
		macro = DefaultMacro
	}
	return fmt.Sprintf(`-D%s=\"%s\"`, macro, version)
}

// LdflagsFlag returns the go linker flag setting variable to version.
func LdflagsFlag(variable, version string) string {
	if variable == "" {
		variable = DefaultLdflagsVar
	}
	return fmt.Sprintf("-X %s=%s", variable, version)
}

// SemVer converts git describe output (e.g. "v0.1.0-3-g1234567-dirty") into a
// SemVer string. The "v" prefix and "-dirty" flag are stripped, and the
// <N>-g<hash> portion is reformatted as "-dev.<N>+g<hash>". A bare commit hash
// from --always becomes "0.0.0-dev+<hash>".
func SemVer(desc string) string {
	dirty := strings.HasSuffix(desc, "-dirty")
	clean := strings.TrimSuffix(desc, "-dirty")
	clean = strings.TrimPrefix(clean, "v")

	if isCommitHash(clean) {
		meta := clean
		if dirty {
			meta += ".dirty"
		}
		return "0.0.0-dev+" + meta
	}

	// git describe format: <tag>-<N>-g<abbreviated-hash>
	lastDash := strings.LastIndex(clean, "-")
	if lastDash > 0 {
		hash := clean[lastDash+1:]
		rest := clean[:lastDash]
		secondLastDash := strings.LastIndex(rest, "-")
		if secondLastDash > 0 && strings.HasPrefix(hash, "g") {
			n := rest[secondLastDash+1:]
			tag := rest[:secondLastDash]
			meta := hash
			if dirty {
				meta += ".dirty"
			}
			return fmt.Sprintf("%s-dev.%s+%s", tag, n, meta)
		}
	}

	if dirty {
		return clean + "-dirty"
	}
	return clean
}

// isCommitHash reports whether s looks like an abbreviated object name as
// printed by git describe --always when no tag is reachable.
func isCommitHash(s string) bool {
	if len(s) < 4 || len(s) > 40 {
		return false
	}
	letter := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'f':
			letter = true
		case r >= '0' && r <= '9':
		default:
			return false
		}
	}
	// All-digit names are tags like "2024", not hashes.
	return letter
}

// ///////////////////////////////////////////////
// Resolve
// ///////////////////////////////////////////////

// Options configures [Resolve]. Zero values select the defaults.
type Options struct {
	// Dir is the git working directory; empty means the current directory.
	Dir string
	// Macro is the C symbol for [FormatCFlag].
	Macro string
	// Fallback replaces [Fallback] when git fails.
	Fallback string
	// Format selects the rendered flag.
	Format Format
	// LdflagsVar is the Go variable for [FormatLdflags].
	LdflagsVar string
	// Timeout bounds the git invocation.
	Timeout time.Duration
	// Run executes git; nil uses [ExecRunner].
	Run Runner
}

// Result is a resolved firmware version.
type Result struct {
	// Describe is the raw git description, or the fallback.
	Describe string
	// FromGit is false when the fallback was used.
	FromGit bool
	// Flag is the version rendered in the requested format.
	Flag string
}

// macroRe matches a C preprocessor identifier.
var macroRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Resolve describes the tree and renders the result. Errors are limited to an
// unknown format or a macro that is not a C identifier; git failures degrade
// to the fallback version.
func Resolve(ctx context.Context, opts Options) (Result, error) {
	format, err := ParseFormat(string(opts.Format))
	if err != nil {
		return Result{}, err
	}
	if opts.Macro != "" && !macroRe.MatchString(opts.Macro) {
		return Result{}, fmt.Errorf("invalid macro %q: must be a C identifier", opts.Macro)
	}
	desc, ok := describe(ctx, opts)
	res := Result{Describe: desc, FromGit: ok}
	switch format {
	case FormatCFlag:
		res.Flag = BuildFlag(opts.Macro, desc)
	case FormatPlain:
		res.Flag = desc
	case FormatSemVer:
		res.Flag = SemVer(desc)
	case FormatLdflags:
		res.Flag = LdflagsFlag(opts.LdflagsVar, SemVer(desc))
	}
	return res, nil
}

// ///////////////////////////////////////////////
// Binary version
// ///////////////////////////////////////////////

// DevVersion is the value of an unstamped version variable.
const DevVersion = "dev"

// Binary returns the version of the running colorkit tool. stamped is the
// ldflags-set variable; if it still reads [DevVersion], VCS info embedded by
// the Go toolchain produces "dev+<hash>" instead.
func Binary(stamped string) string {
	if stamped != DevVersion {
		return stamped
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return stamped
	}
	var revision string
	var dirty bool
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if revision == "" {
		return stamped
	}
	hash := revision[:min(7, len(revision))]
	if dirty {
		return DevVersion + "+" + hash + ".dirty"
	}
	return DevVersion + "+" + hash
}
