package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// runCLI runs the tool with a config path that does not exist, so defaults
// apply regardless of the working directory.
func runCLI(t *testing.T, args ...string) (stdout, stderr string, status int) {
	t.Helper()
	cfg := filepath.Join(t.TempDir(), "colorkit.toml")
	var out, errOut bytes.Buffer
	status = run(append([]string{"-config", cfg}, args...), &out, &errOut)
	return out.String(), errOut.String(), status
}

// ///////////////////////////////////////////////
// Conversion Tests
// ///////////////////////////////////////////////

func TestRunConvertsEachArgument(t *testing.T) {
	stdout, stderr, status := runCLI(t, "#FF0000", "00ff00", "#DA7756")
	if status != 0 {
		t.Fatalf("status = %d, stderr = %q", status, stderr)
	}
	want := "Hex: #FF0000, RGB565: 0xf800\n" +
		"Hex: 00ff00, RGB565: 0x07e0\n" +
		"Hex: #DA7756, RGB565: 0xdbaa\n"
	if stdout != want {
		t.Errorf("stdout =\n%s\nwant\n%s", stdout, want)
	}
}

func TestRunZeroPads(t *testing.T) {
	stdout, _, _ := runCLI(t, "#000000", "#0000FF")
	want := "Hex: #000000, RGB565: 0x0000\nHex: #0000FF, RGB565: 0x001f\n"
	if stdout != want {
		t.Errorf("stdout = %q, want %q", stdout, want)
	}
}

func TestRunInvalidArgumentContinues(t *testing.T) {
	stdout, stderr, status := runCLI(t, "#FFF", "#FFFFFF", "zzzzzz")
	if status != 1 {
		t.Errorf("status = %d, want 1", status)
	}
	if stdout != "Hex: #FFFFFF, RGB565: 0xffff\n" {
		t.Errorf("stdout = %q", stdout)
	}
	for _, bad := range []string{`"#FFF"`, `"zzzzzz"`} {
		if !strings.Contains(stderr, "error: invalid hex color "+bad) {
			t.Errorf("stderr %q missing error for %s", stderr, bad)
		}
	}
}

// ///////////////////////////////////////////////
// Usage and Flags
// ///////////////////////////////////////////////

func TestRunNoArgumentsPrintsUsage(t *testing.T) {
	stdout, _, status := runCLI(t)
	if status != 0 {
		t.Errorf("status = %d, want 0", status)
	}
	if stdout != usage+"\n" {
		t.Errorf("stdout = %q, want usage", stdout)
	}
}

func TestRunVersion(t *testing.T) {
	original := version
	defer func() { version = original }()
	version = "1.2.3"

	stdout, _, status := runCLI(t, "-version")
	if status != 0 || stdout != "rgb565 1.2.3\n" {
		t.Errorf("status = %d, stdout = %q", status, stdout)
	}
}

func TestRunUnknownFlag(t *testing.T) {
	_, stderr, status := runCLI(t, "-bogus", "#FFFFFF")
	if status != 2 {
		t.Errorf("status = %d, want 2", status)
	}
	if !strings.Contains(stderr, usage) {
		t.Errorf("stderr missing usage: %q", stderr)
	}
}

func TestRunSwatchAlways(t *testing.T) {
	stdout, _, status := runCLI(t, "-swatch", "always", "#FF0000")
	if status != 0 {
		t.Fatalf("status = %d", status)
	}
	if !strings.HasPrefix(stdout, "Hex: #FF0000, RGB565: 0xf800 \x1b[") {
		t.Errorf("stdout = %q, want swatch after value", stdout)
	}
}

func TestRunSwatchInvalid(t *testing.T) {
	_, stderr, status := runCLI(t, "-swatch", "rainbow", "#FF0000")
	if status != 2 || !strings.Contains(stderr, "invalid swatch mode") {
		t.Errorf("status = %d, stderr = %q", status, stderr)
	}
}

// ///////////////////////////////////////////////
// Config
// ///////////////////////////////////////////////

func TestRunSwatchFromConfig(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "colorkit.toml")
	if err := os.WriteFile(cfg, []byte("[output]\nswatch = \"always\"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	var out, errOut bytes.Buffer
	if status := run([]string{"-config", cfg, "#00FF00"}, &out, &errOut); status != 0 {
		t.Fatalf("status = %d, stderr = %q", status, errOut.String())
	}
	if !strings.Contains(out.String(), "\x1b[") {
		t.Errorf("stdout = %q, want swatch from config", out.String())
	}
}

func TestRunBadConfig(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "colorkit.toml")
	if err := os.WriteFile(cfg, []byte("[log]\nlevel = \"loud\"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	var out, errOut bytes.Buffer
	if status := run([]string{"-config", cfg, "#00FF00"}, &out, &errOut); status != 1 {
		t.Errorf("status = %d, want 1", status)
	}
	if !strings.Contains(errOut.String(), "fatal: load config") {
		t.Errorf("stderr = %q", errOut.String())
	}
	if out.Len() != 0 {
		t.Errorf("stdout = %q, want empty", out.String())
	}
}
