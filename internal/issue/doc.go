// SPDX-License-Identifier: MPL-2.0

// Package issue turns pipeline failures into user-facing errors.
//
// ActionableError carries the failed operation, the resource involved and
// short suggestions. Longer guidance lives in a catalog of markdown entries
// keyed by Id and rendered for the terminal with glamour.
package issue
