// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

type (
	// Invocation is one recorded call to Recorder.Exec.
	Invocation struct {
		Command string
		Args    []string
		Dir     string
	}

	// RecorderHook decides the outcome of a recorded invocation. It may call
	// the line callbacks in opts to simulate output.
	RecorderHook func(inv Invocation, opts ExecOptions) (ExitCode, error)

	// Recorder is an Executor that records invocations instead of running them.
	// Every invocation succeeds unless Hook says otherwise.
	Recorder struct {
		// Hook is consulted for every invocation when set.
		Hook RecorderHook
		// Output, when set, receives one line per invocation in the form
		// "[dir] $ command args...".
		Output io.Writer
		// Secrets are masked as "***" in Output. Recorded invocations keep
		// the real values.
		Secrets []string

		mu          sync.Mutex
		invocations []Invocation
	}
)

// String renders the invocation as "command arg1 arg2".
func (i Invocation) String() string {
	if len(i.Args) == 0 {
		return i.Command
	}
	return i.Command + " " + strings.Join(i.Args, " ")
}

// NewRecorder creates a Recorder that prints each invocation to w (may be nil).
func NewRecorder(w io.Writer) *Recorder {
	return &Recorder{Output: w}
}

// Exec records the invocation and returns the hook's verdict.
func (r *Recorder) Exec(ctx context.Context, name string, args []string, opts ExecOptions) (ExitCode, error) {
	if err := ctx.Err(); err != nil {
		return 1, err
	}

	inv := Invocation{Command: name, Args: append([]string(nil), args...), Dir: opts.Dir}

	r.mu.Lock()
	r.invocations = append(r.invocations, inv)
	r.mu.Unlock()

	if r.Output != nil {
		dir := opts.Dir
		if dir == "" {
			dir = "."
		}
		fmt.Fprintf(r.Output, "[%s] $ %s\n", dir, QuoteCommand(name, r.mask(args)))
	}

	if r.Hook != nil {
		return r.Hook(inv, opts)
	}
	return 0, nil
}

// Invocations returns a copy of everything recorded so far, in call order.
func (r *Recorder) Invocations() []Invocation {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Invocation, len(r.invocations))
	copy(out, r.invocations)
	return out
}

func (r *Recorder) mask(args []string) []string {
	if len(r.Secrets) == 0 {
		return args
	}
	out := make([]string, len(args))
	for i, arg := range args {
		for _, secret := range r.Secrets {
			if secret != "" {
				arg = strings.ReplaceAll(arg, secret, "***")
			}
		}
		out[i] = arg
	}
	return out
}
