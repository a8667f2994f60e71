// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/deckbuilder/deckbuilder/internal/build"
	"github.com/deckbuilder/deckbuilder/internal/module"
	"github.com/deckbuilder/deckbuilder/internal/publish"
	"github.com/deckbuilder/deckbuilder/internal/runtime"

	"github.com/spf13/cobra"
)

var modulesInputs = []string{"deck_path", "version"}

func newModulesCmd(flags *rootFlags) *cobra.Command {
	modulesCmd := &cobra.Command{
		Use:   "modules",
		Short: "List the modules a publish run would resolve",
		Long: `Resolve the modules of a checkout and print them as root/name, one per line.

The version decides whether legacy release-branch modules are included, so
pass the same version the publish run will use.`,
		Example: `  deckbuilder modules --deck-path ./deck --version 2.27.3-release-2.27.x`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			cmd.SilenceErrors = true
			return runModules(cmd, flags)
		},
	}

	addInputFlags(modulesCmd, modulesInputs...)

	return modulesCmd
}

func runModules(cmd *cobra.Command, flags *rootFlags) error {
	stderr := cmd.ErrOrStderr()
	logger := newLogger(stderr, flags.verbose)

	res, err := loadConfig(cmd, flags, modulesInputs)
	if err != nil {
		return reportError(stderr, err, "", flags.verbose)
	}
	cfg := res.Config

	// Resolution never executes anything; the recorder only satisfies New.
	builder, err := publish.New(cfg, &module.FSHandler{Warnings: logger}, runtime.NewRecorder(nil), &build.Invoker{}, logger)
	if err != nil {
		return reportError(stderr, err, cfg.DeckPath, flags.verbose)
	}

	mods, err := builder.ResolveModules()
	if err != nil {
		return reportError(stderr, &publish.StepError{Step: publish.StepResolveModules, Err: err}, cfg.DeckPath, flags.verbose)
	}

	out := cmd.OutOrStdout()
	for _, m := range mods {
		fmt.Fprintln(out, ModuleRootStyle.Render(m.Root+"/")+ModuleNameStyle.Render(m.Name))
	}
	return nil
}
