// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/deckbuilder/deckbuilder/internal/config"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// rootFlags are the persistent flags shared by every subcommand.
type rootFlags struct {
	verbose bool
	cfgFile string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:   config.AppName,
		Short: "Build deck modules and publish them to Artifactory",
		Long: TitleStyle.Render(config.AppName) + SubtitleStyle.Render(" - build and publish deck modules") + `

deckbuilder resolves the publishable modules of a deck checkout, installs
dependencies, builds the modules, stamps every package.json with the release
version and publishes each module plus aggregate build info through the
jfrog CLI.

` + SubtitleStyle.Render("Inputs:") + `
  Every input can be a flag, an INPUT_<NAME> variable (as set by GitHub
  Actions), an entry in .env or a field in deckbuilder.cue.

` + SubtitleStyle.Render("Examples:") + `
  deckbuilder modules --deck-path ./deck --version 1.2.3
  deckbuilder publish --dry-run --config ci.cue
  INPUT_ARTIFACTORY_TOKEN=... deckbuilder publish --config ci.cue`,
	}

	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&flags.cfgFile, "config", "", "config file (default is ./"+config.ConfigFileName+" when present)")

	rootCmd.AddCommand(newPublishCmd(flags))
	rootCmd.AddCommand(newModulesCmd(flags))

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI and exits the process with the command's exit code.
func Execute() {
	if err := fang.Execute(
		context.Background(),
		newRootCmd(),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(handleError),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(ExitFailure)
	}
}

// handleError prints errors the commands did not already report.
func handleError(w io.Writer, styles fang.Styles, err error) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Err == nil {
		return
	}
	fang.DefaultErrorHandler(w, styles, err)
}

// newLogger returns the pipeline logger. Verbose mode enables debug output,
// which includes every command line with the access token redacted.
func newLogger(w io.Writer, verbose bool) *log.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		Prefix: config.AppName,
		Level:  level,
	})
}

// loadConfig loads the inputs for cmd, whose flags must include the input
// flags. A nil required list validates every required input.
func loadConfig(cmd *cobra.Command, flags *rootFlags, required []string) (*config.Result, error) {
	return config.Load(cmd.Context(), config.LoadOptions{
		ConfigFilePath: flags.cfgFile,
		Flags:          cmd.Flags(),
		Required:       required,
	})
}
