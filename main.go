// SPDX-License-Identifier: MPL-2.0

// Command deckbuilder builds deck modules and publishes them to Artifactory.
package main

import cmd "github.com/deckbuilder/deckbuilder/cmd/deckbuilder"

func main() {
	cmd.Execute()
}
