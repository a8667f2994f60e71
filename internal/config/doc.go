// SPDX-License-Identifier: MPL-2.0

// Package config assembles the run configuration with Viper.
//
// The input list comes from the embedded action.yml, so the CLI flags, the
// INPUT_<NAME> variables set by GitHub Actions and the optional deckbuilder.cue
// file (validated against config_schema.cue) all describe the same inputs.
// A deckbuilder.cue file may also override the module layout.
package config
