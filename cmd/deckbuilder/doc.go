// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the CLI commands for deckbuilder.
//
// The publish command runs the whole pipeline; modules prints what module
// resolution sees for a given checkout and version. Both read their inputs
// through internal/config, so flags, INPUT_<NAME> variables and a
// deckbuilder.cue file are interchangeable.
package cmd
