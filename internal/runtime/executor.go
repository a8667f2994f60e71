// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"context"
	"errors"
	"fmt"
)

// ErrCommandNotFound is wrapped by the *ExitError returned when the executable
// cannot be located.
var ErrCommandNotFound = errors.New("command not found")

type (
	// Executor runs an external program and waits for it to finish.
	//
	// A zero exit code is returned with a nil error. Any other outcome returns
	// an error; a non-zero exit is reported as *ExitError.
	Executor interface {
		Exec(ctx context.Context, name string, args []string, opts ExecOptions) (ExitCode, error)
	}

	// ExecOptions configures a single invocation.
	ExecOptions struct {
		// Dir is the working directory. Empty means the current directory.
		Dir string
		// OnStdoutLine receives each line written to stdout, without the trailing newline.
		// When nil, stdout is forwarded to the executor's default writer.
		OnStdoutLine func(line string)
		// OnStderrLine receives each line written to stderr, without the trailing newline.
		// When nil, stderr is forwarded to the executor's default writer.
		OnStderrLine func(line string)
	}

	// ExitError reports a process that could not be started or exited non-zero.
	ExitError struct {
		// Command is the program name as passed to Exec.
		Command string
		// Code is the exit status. ExitCommandNotFound when the program is missing.
		Code ExitCode
		// Err is the underlying cause when the process never ran (optional).
		Err error
	}
)

// Error implements the error interface.
func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("the process '%s' failed with exit code %s: %v", e.Command, e.Code, e.Err)
	}
	return fmt.Sprintf("the process '%s' failed with exit code %s", e.Command, e.Code)
}

// Unwrap returns the underlying cause, if any.
func (e *ExitError) Unwrap() error { return e.Err }

// IsCommandNotFound reports whether err means the executable was missing,
// either through ErrCommandNotFound or an exit status of 127.
func IsCommandNotFound(err error) bool {
	if errors.Is(err, ErrCommandNotFound) {
		return true
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code.IsCommandNotFound()
	}
	return false
}

// ExitCodeOf extracts the exit status carried by err. Errors that are not
// *ExitError map to 1.
func ExitCodeOf(err error) ExitCode {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return 1
}
