package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/afero"
)

func stubMain(t *testing.T, fs afero.Fs, argv ...string) (*bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}

	oldArgs, oldOut, oldErr, oldFs := args, stdout, stderr, newFs
	t.Cleanup(func() {
		args, stdout, stderr, newFs = oldArgs, oldOut, oldErr, oldFs
	})
	args = func() []string { return argv }
	stdout = out
	stderr = errOut
	newFs = func() afero.Fs { return fs }
	t.Setenv("MODSWAP_CONFIG", "")
	return out, errOut
}

func TestMainExecutesWithoutExit(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := fs.MkdirAll("/mods/vanilla", 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := afero.WriteFile(fs, "/mods/vanilla/a.jar", []byte("a"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	out, _ := stubMain(t, fs, "--root", "/mods", "list")

	called := false
	oldExit := exitFunc
	exitFunc = func(code int) {
		if code != 0 {
			called = true
		}
	}
	defer func() { exitFunc = oldExit }()

	main()

	if called {
		t.Fatalf("exit should not be invoked with a failure code on success")
	}
	if !strings.Contains(out.String(), "(1) vanilla") {
		t.Fatalf("unexpected output: %s", out.String())
	}
}

func TestRunReportsErrors(t *testing.T) {
	_, errOut := stubMain(t, afero.NewMemMapFs(), "--root", "/missing", "status")
	if code := run(); code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
	if !strings.HasPrefix(errOut.String(), "Error: ") {
		t.Fatalf("unexpected stderr: %s", errOut.String())
	}
}
