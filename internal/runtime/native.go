// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
)

// NativeExecutor runs programs on the host with os/exec.
type NativeExecutor struct {
	// Stdout receives stdout when ExecOptions.OnStdoutLine is nil. Defaults to os.Stdout.
	Stdout io.Writer
	// Stderr receives stderr when ExecOptions.OnStderrLine is nil. Defaults to os.Stderr.
	Stderr io.Writer
}

// NewNativeExecutor creates an executor that forwards unhandled output to the
// process's own stdout and stderr.
func NewNativeExecutor() *NativeExecutor {
	return &NativeExecutor{Stdout: os.Stdout, Stderr: os.Stderr}
}

// Exec runs name with args and waits for it to exit.
func (e *NativeExecutor) Exec(ctx context.Context, name string, args []string, opts ExecOptions) (ExitCode, error) {
	// Bare names are looked up in PATH up front so a missing tool is reported
	// the same way regardless of platform. Paths containing a separator are
	// resolved by os/exec relative to opts.Dir.
	if filepath.Base(name) == name {
		if _, err := exec.LookPath(name); err != nil {
			exitErr := extractExitError(name, err)
			return ExitCodeOf(exitErr), exitErr
		}
	}

	cmd := exec.CommandContext(ctx, name, args...)
	if opts.Dir != "" {
		cmd.Dir = opts.Dir
	}

	stdout := e.outputFor(opts.OnStdoutLine, e.Stdout, os.Stdout)
	stderr := e.outputFor(opts.OnStderrLine, e.Stderr, os.Stderr)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	runErr := cmd.Run()
	flushLines(stdout)
	flushLines(stderr)

	if err := extractExitError(name, runErr); err != nil {
		return ExitCodeOf(err), err
	}
	return 0, nil
}

func (e *NativeExecutor) outputFor(fn func(string), w, fallback io.Writer) io.Writer {
	if fn != nil {
		return newLineWriter(fn)
	}
	if w != nil {
		return w
	}
	return fallback
}

func flushLines(w io.Writer) {
	if lw, ok := w.(*lineWriter); ok {
		lw.flush()
	}
}
