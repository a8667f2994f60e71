// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strings"
	"sync"
)

// lineWriter splits whatever is written to it into lines and hands each one
// to fn. A trailing partial line is delivered by flush.
type lineWriter struct {
	mu  sync.Mutex
	fn  func(string)
	buf bytes.Buffer
}

func newLineWriter(fn func(string)) *lineWriter {
	return &lineWriter{fn: fn}
}

// Write implements io.Writer.
func (w *lineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf.Write(p)
	for {
		idx := bytes.IndexByte(w.buf.Bytes(), '\n')
		if idx < 0 {
			break
		}
		line := string(w.buf.Next(idx + 1))
		w.fn(strings.TrimRight(line, "\r\n"))
	}
	return len(p), nil
}

func (w *lineWriter) flush() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.buf.Len() > 0 {
		w.fn(strings.TrimRight(w.buf.String(), "\r\n"))
		w.buf.Reset()
	}
}

// extractExitError converts the error from exec.Cmd.Run into the package's
// error contract.
func extractExitError(name string, err error) error {
	if err == nil {
		return nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := ExitCode(exitErr.ExitCode())
		if valid, _ := code.IsValid(); !valid {
			// Killed by a signal (-1) or an out-of-range status.
			return &ExitError{Command: name, Code: 1, Err: err}
		}
		return &ExitError{Command: name, Code: code}
	}

	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
		return &ExitError{Command: name, Code: ExitCommandNotFound, Err: fmt.Errorf("%w: %w", ErrCommandNotFound, err)}
	}

	return &ExitError{Command: name, Code: 1, Err: err}
}
