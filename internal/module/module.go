// SPDX-License-Identifier: MPL-2.0

package module

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"slices"
)

type (
	// Module is a publishable unit discovered under one of the layout roots.
	Module struct {
		// Name is the directory basename. Unique within a resolved set.
		Name string
		// Root is the layout root the module was found under, relative to the
		// repository root and using forward slashes (e.g. "packages").
		Root string
	}

	// Warner receives non-fatal diagnostics such as skipped candidates.
	// *log.Logger from charmbracelet/log satisfies it.
	Warner interface {
		Warn(msg any, keyvals ...any)
	}

	// Handler resolves modules and stamps their versions. FSHandler is the
	// filesystem implementation; tests substitute their own.
	Handler interface {
		Resolve(baseDir string, excluded []string) ([]string, error)
		WriteVersion(moduleDir, version string) error
	}

	// FSHandler implements Handler on the local filesystem.
	FSHandler struct {
		// Warnings receives one warning per skipped candidate (optional).
		Warnings Warner
	}
)

// Dir returns the module directory for the given repository root.
func (m Module) Dir(repoRoot string) string {
	return filepath.Join(repoRoot, filepath.FromSlash(m.Root), m.Name)
}

// String returns "root/name".
func (m Module) String() string {
	return path.Join(m.Root, m.Name)
}

// Names returns the module names in order.
func Names(mods []Module) []string {
	names := make([]string, len(mods))
	for i, m := range mods {
		names[i] = m.Name
	}
	return names
}

// Resolve implements Handler.
func (h *FSHandler) Resolve(baseDir string, excluded []string) ([]string, error) {
	return Resolve(baseDir, excluded, h.Warnings)
}

// WriteVersion implements Handler.
func (h *FSHandler) WriteVersion(moduleDir, version string) error {
	return WriteVersion(moduleDir, version)
}

// Resolve lists the immediate subdirectories of baseDir that are publishable
// modules, in directory-listing order. Names in excluded are dropped, as is
// any directory without a package.json; each of the latter produces a
// warning on warn (which may be nil).
//
// An empty baseDir yields an empty slice. A missing or unreadable baseDir is
// an error.
func Resolve(baseDir string, excluded []string, warn Warner) ([]string, error) {
	entries, err := os.ReadDir(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list modules in %s: %w", baseDir, err)
	}

	modules := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		if slices.Contains(excluded, name) {
			continue
		}
		if !manifestExists(filepath.Join(baseDir, name)) {
			if warn != nil {
				warn.Warn(fmt.Sprintf("Skipping module %s, no %s found", name, ManifestName), "dir", filepath.Join(baseDir, name))
			}
			continue
		}
		modules = append(modules, name)
	}

	return modules, nil
}
