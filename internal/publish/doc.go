// SPDX-License-Identifier: MPL-2.0

// Package publish sequences a deck release: it registers the Artifactory
// server alias, resolves the publishable modules, installs dependencies,
// builds the modules, stamps and publishes each one, and finally collects and
// publishes the aggregate build info.
//
// Every step is an external program run through a runtime.Executor. Steps run
// strictly in order and the first fatal failure stops the run; nothing that
// was already published is rolled back. Two failures are tolerated:
//   - `jfrog config add` reporting that the server alias already exists
//   - `yarn` not being installed (exit status 127)
//
// Modules are resolved under the primary layout root. Versions cut from a
// legacy release branch (see Layout.LegacyMarkers) additionally pick up
// modules from the legacy root that the primary root does not already provide.
package publish
