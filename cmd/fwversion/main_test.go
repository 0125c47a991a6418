package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tools.zach/dev/colorkit/internal/fwversion"
)

func fakeGit(out string, err error) fwversion.Runner {
	return func(context.Context, string, string, ...string) ([]byte, error) {
		return []byte(out), err
	}
}

func runCLI(t *testing.T, git fwversion.Runner, args ...string) (stdout, stderr string, status int) {
	t.Helper()
	cfg := filepath.Join(t.TempDir(), "colorkit.toml")
	var out, errOut bytes.Buffer
	status = run(context.Background(), append([]string{"-config", cfg}, args...), &out, &errOut, git)
	return out.String(), errOut.String(), status
}

// ///////////////////////////////////////////////
// Output Tests
// ///////////////////////////////////////////////

func TestRunPrintsCFlag(t *testing.T) {
	stdout, stderr, status := runCLI(t, fakeGit("v1.2.0-3-gabc1234\n", nil))
	if status != 0 {
		t.Fatalf("status = %d, stderr = %q", status, stderr)
	}
	if stdout != `-DAPP_VERSION=\"v1.2.0-3-gabc1234\"`+"\n" {
		t.Errorf("stdout = %s", stdout)
	}
	if !strings.Contains(stderr, "Firmware Version: v1.2.0-3-gabc1234\n") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestRunFormatFlags(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"-format", "plain"}, "v0.1.0-dirty"},
		{[]string{"-format", "semver"}, "0.1.0-dirty"},
		{[]string{"-format", "ldflags"}, "-X main.version=0.1.0-dirty"},
		{[]string{"-macro", "FW_REV"}, `-DFW_REV=\"v0.1.0-dirty\"`},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			stdout, stderr, status := runCLI(t, fakeGit("v0.1.0-dirty", nil), tt.args...)
			if status != 0 {
				t.Fatalf("status = %d, stderr = %q", status, stderr)
			}
			if got := strings.TrimSuffix(stdout, "\n"); got != tt.want {
				t.Errorf("stdout = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRunGitFailureUsesFallback(t *testing.T) {
	stdout, stderr, status := runCLI(t, fakeGit("", errors.New("exec: \"git\": executable file not found")))
	if status != 0 {
		t.Fatalf("status = %d, want 0", status)
	}
	if stdout != `-DAPP_VERSION=\"0.0.0-dev\"`+"\n" {
		t.Errorf("stdout = %s", stdout)
	}
	if !strings.Contains(stderr, "git version check failed") {
		t.Errorf("stderr missing warning: %q", stderr)
	}
	if !strings.Contains(stderr, "Firmware Version: 0.0.0-dev") {
		t.Errorf("stderr missing version line: %q", stderr)
	}
}

func TestRunConfigOverridesDefaults(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "colorkit.toml")
	data := "[firmware]\nmacro = \"BUILD_ID\"\nfallback = \"unknown\"\n"
	if err := os.WriteFile(cfg, []byte(data), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	var out, errOut bytes.Buffer
	status := run(context.Background(), []string{"-config", cfg}, &out, &errOut, fakeGit("", errors.New("no git")))
	if status != 0 {
		t.Fatalf("status = %d, stderr = %q", status, errOut.String())
	}
	if out.String() != `-DBUILD_ID=\"unknown\"`+"\n" {
		t.Errorf("stdout = %s", out.String())
	}
}

// ///////////////////////////////////////////////
// Error Tests
// ///////////////////////////////////////////////

func TestRunInvalidFormat(t *testing.T) {
	_, stderr, status := runCLI(t, fakeGit("v1.0.0", nil), "-format", "json")
	if status != 2 || !strings.Contains(stderr, "invalid firmware.format") {
		t.Errorf("status = %d, stderr = %q", status, stderr)
	}
}

func TestRunInvalidMacroFlag(t *testing.T) {
	for _, macro := range []string{"APP VERSION; rm", "9LIVES", "APP-VERSION"} {
		t.Run(macro, func(t *testing.T) {
			stdout, stderr, status := runCLI(t, fakeGit("v1.0.0", nil), "-macro", macro)
			if status != 2 {
				t.Errorf("status = %d, want 2", status)
			}
			if stdout != "" {
				t.Errorf("stdout = %q, want no flag emitted", stdout)
			}
			if !strings.Contains(stderr, "invalid firmware.macro") {
				t.Errorf("stderr = %q", stderr)
			}
		})
	}
}

func TestRunRejectsArguments(t *testing.T) {
	_, _, status := runCLI(t, fakeGit("v1.0.0", nil), "extra")
	if status != 2 {
		t.Errorf("status = %d, want 2", status)
	}
}

func TestRunVersion(t *testing.T) {
	original := version
	defer func() { version = original }()
	version = "0.3.0"

	stdout, _, status := runCLI(t, nil, "-version")
	if status != 0 || stdout != "fwversion 0.3.0\n" {
		t.Errorf("status = %d, stdout = %q", status, stdout)
	}
}
