// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"slices"

	"github.com/deckbuilder/deckbuilder/internal/config"

	"github.com/spf13/cobra"
)

// addInputFlags declares one string flag per action input. The input list is
// embedded at build time, so failing to read it is a programming error.
func addInputFlags(cmd *cobra.Command, only ...string) {
	inputs, err := config.Inputs()
	if err != nil {
		panic(fmt.Sprintf("embedded action metadata: %v", err))
	}

	for _, in := range inputs {
		if len(only) > 0 && !slices.Contains(only, in.Name) {
			continue
		}
		usage := fmt.Sprintf("%s (env %s)", in.Description, in.EnvName())
		cmd.Flags().String(in.FlagName(), in.Default, usage)
	}
}
