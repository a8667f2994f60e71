// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/deckbuilder/deckbuilder/internal/config"
	"github.com/deckbuilder/deckbuilder/internal/issue"
	"github.com/deckbuilder/deckbuilder/internal/module"
	"github.com/deckbuilder/deckbuilder/internal/publish"
	"github.com/deckbuilder/deckbuilder/internal/runtime"

	"github.com/charmbracelet/log"
)

// issueStyle is the glamour style used for catalog entries. "auto" falls back
// to plain text when stdout is not a terminal.
const issueStyle = "auto"

// classifyError turns a command failure into an ActionableError and the exit
// code the process should end with.
func classifyError(err error, deckPath string) (*issue.ActionableError, int) {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		code := ExitFailure
		if ae.Issue == issue.MissingInputId || ae.Issue == issue.ConfigLoadFailedId || errors.Is(err, config.ErrMissingInput) {
			code = ExitUsage
		}
		return ae, code
	}

	var versionErr *publish.InvalidVersionError
	if errors.As(err, &versionErr) {
		return issue.NewErrorContext().
			WithOperation("validate version").
			WithResource(versionErr.Version).
			WithSuggestion("Use MAJOR.MINOR.PATCH, optionally with -prerelease or +build parts").
			WithIssue(issue.InvalidVersionId).
			Wrap(err).
			Build(), ExitUsage
	}

	ctx := issue.NewErrorContext().WithOperation("publish modules").WithResource(deckPath)
	var stepErr *publish.StepError
	if errors.As(err, &stepErr) {
		ctx = ctx.WithOperation(stepErr.Step.String())
		if stepErr.Module != "" {
			ctx = ctx.WithResource(stepErr.Module)
		}
	}

	switch {
	case errors.Is(err, publish.ErrNoModulesResolved):
		ctx.WithIssue(issue.NoModulesResolvedId).
			WithSuggestion("Run 'deckbuilder modules' with the same inputs to see what is resolved")
	case runtime.IsCommandNotFound(err):
		ctx.WithIssue(issue.CommandNotFoundId).
			WithSuggestion("Make sure jfrog is installed and on your PATH")
	case errors.Is(err, module.ErrManifestNotFound), errors.Is(err, module.ErrInvalidManifest):
		ctx.WithIssue(issue.ManifestInvalidId)
	case stepErr != nil && stepErr.Step == publish.StepConfigureAuth:
		ctx.WithIssue(issue.ArtifactoryAuthFailedId).
			WithSuggestion("Check the Artifactory URL and access token")
	default:
		ctx.WithIssue(issue.StepFailedId).
			WithSuggestion("Re-run with --verbose to see every command")
	}

	// The step error already names the step; keep only what it wraps.
	if stepErr != nil {
		return ctx.Wrap(stepErr.Err).Build(), ExitFailure
	}
	return ctx.Wrap(err).Build(), ExitFailure
}

// reportError renders err to w and returns the ExitError the command should
// return. Catalog guidance is appended when the error links to an entry.
// The ExitError carries only the code since err has already been shown.
func reportError(w io.Writer, err error, deckPath string, verbose bool) error {
	ae, code := classifyError(err, deckPath)
	fmt.Fprintln(w, ErrorStyle.Render("Error:")+" "+ae.Format(verbose))

	if entry := issue.Get(ae.Issue); entry != nil {
		rendered, renderErr := entry.Render(issueStyle)
		if renderErr != nil {
			log.Warn("failed to render issue catalog entry", "issue", ae.Issue, "error", renderErr)
		} else {
			fmt.Fprint(w, rendered)
		}
	}

	return &ExitError{Code: code}
}
