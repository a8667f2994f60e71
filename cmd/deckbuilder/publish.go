// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"

	"github.com/deckbuilder/deckbuilder/internal/build"
	"github.com/deckbuilder/deckbuilder/internal/module"
	"github.com/deckbuilder/deckbuilder/internal/publish"
	"github.com/deckbuilder/deckbuilder/internal/runtime"

	"github.com/spf13/cobra"
)

// dryRunHandler resolves modules from disk but only reports version stamps.
// Manifests are still read, so broken ones fail the dry run too.
type dryRunHandler struct {
	module.Handler
	out io.Writer
}

func (h dryRunHandler) WriteVersion(moduleDir, version string) error {
	current, err := module.ReadVersion(moduleDir)
	if err != nil {
		return err
	}
	if current == "" {
		current = "(unset)"
	}
	fmt.Fprintf(h.out, "[%s] set package.json version %s -> %s\n", moduleDir, current, version)
	return nil
}

func newPublishCmd(flags *rootFlags) *cobra.Command {
	var dryRun bool

	publishCmd := &cobra.Command{
		Use:   "publish",
		Short: "Build all modules and publish them with build info",
		Long: `Run the publish pipeline:

  1. register the Artifactory server with the jfrog CLI
  2. resolve the modules of the checkout
  3. install dependencies with yarn
  4. build the modules
  5. configure npm, stamp the version and publish each module
  6. collect and publish the build info

The pipeline stops at the first failing step. Modules published before the
failure are not rolled back.`,
		Example: `  # Preview every command without running anything
  deckbuilder publish --dry-run --config ci.cue

  # Publish with inputs from the GitHub Actions environment
  deckbuilder publish`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			cmd.SilenceErrors = true
			return runPublish(cmd, flags, dryRun)
		},
	}

	addInputFlags(publishCmd)
	publishCmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the commands instead of running them and leave package.json files untouched")

	return publishCmd
}

func runPublish(cmd *cobra.Command, flags *rootFlags, dryRun bool) error {
	stdout := cmd.OutOrStdout()
	stderr := cmd.ErrOrStderr()
	logger := newLogger(stderr, flags.verbose)

	res, err := loadConfig(cmd, flags, nil)
	if err != nil {
		return reportError(stderr, err, "", flags.verbose)
	}
	cfg := res.Config
	if res.ConfigFile != "" {
		logger.Debug("Loaded config file", "path", res.ConfigFile)
	}

	var (
		executor runtime.Executor = &runtime.NativeExecutor{Stdout: stdout, Stderr: stderr}
		handler  module.Handler   = &module.FSHandler{Warnings: logger}
	)
	if dryRun {
		fmt.Fprintln(stdout, WarningStyle.Render("Dry run: commands are printed, not executed"))
		executor = &runtime.Recorder{Output: stdout, Secrets: []string{cfg.ArtifactoryToken}}
		handler = dryRunHandler{Handler: handler, out: stdout}
	}

	builder, err := publish.New(cfg, handler, executor, &build.Invoker{Logger: logger}, logger)
	if err != nil {
		return reportError(stderr, err, cfg.DeckPath, flags.verbose)
	}
	layout := builder.Config().Layout
	logger.Debug("Module layout", "primary", layout.PrimaryRoot, "legacy", layout.LegacyRoot, "legacy_markers", layout.LegacyMarkers)

	if err := builder.Build(cmd.Context()); err != nil {
		return reportError(stderr, err, cfg.DeckPath, flags.verbose)
	}

	fmt.Fprintln(stdout, SuccessStyle.Render("✓")+" Published "+cfg.BuildName+" #"+cfg.BuildNumber)
	return nil
}
