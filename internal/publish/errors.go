// SPDX-License-Identifier: MPL-2.0

package publish

import (
	"errors"
	"fmt"
)

// Pipeline states, in execution order.
const (
	StepConfigureAuth Step = iota + 1
	StepResolveModules
	StepInstall
	StepBuild
	StepPublishModule
	StepCollectBuildInfo
	StepPublishBuildInfo
)

var (
	// ErrInvalidVersion is the sentinel error wrapped by InvalidVersionError.
	ErrInvalidVersion = errors.New("invalid version")
	// ErrNoModulesResolved is returned when resolution finds no module at all.
	ErrNoModulesResolved = errors.New("no modules resolved")
)

type (
	// Step identifies a pipeline state.
	Step int

	// InvalidVersionError is returned by New and ValidateVersion for a version
	// that is not valid semver.
	InvalidVersionError struct {
		Version string
	}

	// StepError reports the pipeline state a fatal failure happened in.
	StepError struct {
		Step Step
		// Module is set for failures inside the per-module publish loop.
		Module string
		Err    error
	}
)

// String returns a human-readable step name.
func (s Step) String() string {
	switch s {
	case StepConfigureAuth:
		return "configure Artifactory"
	case StepResolveModules:
		return "resolve modules"
	case StepInstall:
		return "install dependencies"
	case StepBuild:
		return "build modules"
	case StepPublishModule:
		return "publish module"
	case StepCollectBuildInfo:
		return "collect build info"
	case StepPublishBuildInfo:
		return "publish build info"
	default:
		return fmt.Sprintf("Step(%d)", int(s))
	}
}

// Error implements the error interface.
func (e *InvalidVersionError) Error() string {
	return fmt.Sprintf("%s is not valid semver.", e.Version)
}

// Unwrap returns ErrInvalidVersion for errors.Is() compatibility.
func (e *InvalidVersionError) Unwrap() error { return ErrInvalidVersion }

// Error implements the error interface.
func (e *StepError) Error() string {
	if e.Module != "" {
		return fmt.Sprintf("%s %s: %v", e.Step, e.Module, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

// Unwrap returns the underlying failure.
func (e *StepError) Unwrap() error { return e.Err }
