// SPDX-License-Identifier: MPL-2.0

// Package runtime runs the external programs the publish pipeline delegates to
// (yarn, jfrog, the legacy module build script).
//
// Executor is the single capability the rest of deckbuilder depends on. Two
// implementations are provided:
//   - NativeExecutor: runs the program with os/exec, streaming stdout and
//     stderr line by line to the caller.
//   - Recorder: records every invocation without running anything. It backs
//     `deckbuilder publish --dry-run` and the package tests.
//
// A missing executable is reported as an *ExitError with code 127 that wraps
// ErrCommandNotFound, mirroring what a POSIX shell reports, so callers can
// treat both cases the same way.
package runtime
