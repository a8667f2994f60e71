// SPDX-License-Identifier: MPL-2.0

// Package module discovers publishable front-end modules and edits their
// package.json manifests.
//
// A module is an immediate subdirectory of a layout root that contains a
// package.json. Discovery is a single-level scan: nested directories are
// never considered.
package module
