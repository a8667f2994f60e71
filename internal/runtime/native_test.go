// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"slices"
	"testing"
)

func skipWithoutShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("POSIX shell required")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestNativeExecutorStreamsLines(t *testing.T) {
	t.Parallel()
	skipWithoutShell(t)

	var stdout, stderr []string
	code, err := NewNativeExecutor().Exec(context.Background(), "sh",
		[]string{"-c", "echo one; echo two; printf tail; echo oops >&2"},
		ExecOptions{
			OnStdoutLine: func(line string) { stdout = append(stdout, line) },
			OnStderrLine: func(line string) { stderr = append(stderr, line) },
		})
	if err != nil {
		t.Fatalf("Exec() error = %v", err)
	}
	if code != 0 {
		t.Errorf("Exec() code = %d, want 0", code)
	}
	if want := []string{"one", "two", "tail"}; !slices.Equal(stdout, want) {
		t.Errorf("stdout lines = %q, want %q", stdout, want)
	}
	if want := []string{"oops"}; !slices.Equal(stderr, want) {
		t.Errorf("stderr lines = %q, want %q", stderr, want)
	}
}

func TestNativeExecutorNonZeroExit(t *testing.T) {
	t.Parallel()
	skipWithoutShell(t)

	code, err := NewNativeExecutor().Exec(context.Background(), "sh",
		[]string{"-c", "exit 3"},
		ExecOptions{OnStdoutLine: func(string) {}, OnStderrLine: func(string) {}})
	if err == nil {
		t.Fatal("Exec() error = nil, want *ExitError")
	}
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("Exec() error = %T, want *ExitError", err)
	}
	if exitErr.Code != 3 || code != 3 {
		t.Errorf("exit code = %d (returned %d), want 3", exitErr.Code, code)
	}
	if IsCommandNotFound(err) {
		t.Error("IsCommandNotFound() = true for a plain non-zero exit")
	}
}

func TestNativeExecutorCommandNotFound(t *testing.T) {
	t.Parallel()

	code, err := NewNativeExecutor().Exec(context.Background(), "deckbuilder-definitely-missing-tool", nil, ExecOptions{})
	if err == nil {
		t.Fatal("Exec() error = nil, want not-found error")
	}
	if !errors.Is(err, ErrCommandNotFound) {
		t.Errorf("error %v does not wrap ErrCommandNotFound", err)
	}
	if code != ExitCommandNotFound {
		t.Errorf("code = %d, want %d", code, ExitCommandNotFound)
	}
	if !IsCommandNotFound(err) {
		t.Error("IsCommandNotFound() = false, want true")
	}
}

func TestNativeExecutorRelativeScriptUsesDir(t *testing.T) {
	t.Parallel()
	skipWithoutShell(t)

	dir := t.TempDir()
	scriptDir := filepath.Join(dir, "scripts")
	if err := os.MkdirAll(scriptDir, 0o755); err != nil {
		t.Fatal(err)
	}
	script := "#!/bin/sh\necho \"$@\"\n"
	if err := os.WriteFile(filepath.Join(scriptDir, "build.sh"), []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}

	var lines []string
	_, err := NewNativeExecutor().Exec(context.Background(), "scripts/build.sh", []string{"core", "amazon"},
		ExecOptions{Dir: dir, OnStdoutLine: func(line string) { lines = append(lines, line) }})
	if err != nil {
		t.Fatalf("Exec() error = %v", err)
	}
	if want := []string{"core amazon"}; !slices.Equal(lines, want) {
		t.Errorf("lines = %q, want %q", lines, want)
	}
}

func TestNativeExecutorMissingRelativeScript(t *testing.T) {
	t.Parallel()

	_, err := NewNativeExecutor().Exec(context.Background(), "scripts/missing.sh", nil, ExecOptions{Dir: t.TempDir()})
	if !IsCommandNotFound(err) {
		t.Errorf("IsCommandNotFound(%v) = false, want true", err)
	}
}

func TestLineWriterSplitsAcrossWrites(t *testing.T) {
	t.Parallel()

	var lines []string
	w := newLineWriter(func(line string) { lines = append(lines, line) })
	for _, chunk := range []string{"fir", "st\r\nsec", "ond\n", "third"} {
		if _, err := w.Write([]byte(chunk)); err != nil {
			t.Fatal(err)
		}
	}
	w.flush()

	if want := []string{"first", "second", "third"}; !slices.Equal(lines, want) {
		t.Errorf("lines = %q, want %q", lines, want)
	}
}

func TestExitCodeOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want ExitCode
	}{
		{name: "nil", err: nil, want: 0},
		{name: "exit error", err: &ExitError{Command: "yarn", Code: 2}, want: 2},
		{name: "other error", err: errors.New("boom"), want: 1},
	}
	for _, tt := range tests {
		if got := ExitCodeOf(tt.err); got != tt.want {
			t.Errorf("%s: ExitCodeOf() = %d, want %d", tt.name, got, tt.want)
		}
	}
}
