// SPDX-License-Identifier: MPL-2.0

package publish

import (
	"path/filepath"
	"strings"

	"golang.org/x/mod/semver"
)

const (
	// DefaultPrimaryRoot is where current deck checkouts keep their modules.
	DefaultPrimaryRoot = "packages"
	// DefaultLegacyRoot is where older release branches keep their modules.
	DefaultLegacyRoot = "app/scripts/modules"
)

var (
	// DefaultLegacyMarkers identify versions built from legacy release branches.
	DefaultLegacyMarkers = []string{"release-2.26.x", "release-2.27.x"}
	// DefaultExcluded lists directory names that are never modules.
	DefaultExcluded = []string{"app"}
)

type (
	// Layout describes where modules live inside the repository.
	// Zero-valued fields fall back to the package defaults.
	Layout struct {
		// PrimaryRoot is always scanned.
		PrimaryRoot string
		// LegacyRoot is scanned only for versions containing a legacy marker.
		LegacyRoot string
		// LegacyMarkers are substrings of the version that select the legacy root.
		LegacyMarkers []string
		// Excluded names are skipped under both roots.
		Excluded []string
	}

	// Config is the immutable input of a run. All string fields are required.
	Config struct {
		DeckPath         string
		Version          string
		ArtifactoryURL   string
		ArtifactoryToken string
		ResolveRepo      string
		DeployRepo       string
		BuildName        string
		BuildNumber      string
		BuildURL         string
		Layout           Layout
	}
)

// DefaultLayout returns the layout used by deck.
func DefaultLayout() Layout {
	return Layout{
		PrimaryRoot:   DefaultPrimaryRoot,
		LegacyRoot:    DefaultLegacyRoot,
		LegacyMarkers: append([]string(nil), DefaultLegacyMarkers...),
		Excluded:      append([]string(nil), DefaultExcluded...),
	}
}

// WithDefaults fills empty fields from DefaultLayout.
func (l Layout) WithDefaults() Layout {
	def := DefaultLayout()
	if l.PrimaryRoot == "" {
		l.PrimaryRoot = def.PrimaryRoot
	}
	if l.LegacyRoot == "" {
		l.LegacyRoot = def.LegacyRoot
	}
	if l.LegacyMarkers == nil {
		l.LegacyMarkers = def.LegacyMarkers
	}
	if l.Excluded == nil {
		l.Excluded = def.Excluded
	}
	return l
}

// IsLegacyVersion reports whether version contains one of the legacy markers.
func (l Layout) IsLegacyVersion(version string) bool {
	for _, marker := range l.LegacyMarkers {
		if marker != "" && strings.Contains(version, marker) {
			return true
		}
	}
	return false
}

// PrimaryDir returns the primary root inside repoRoot.
func (l Layout) PrimaryDir(repoRoot string) string {
	return filepath.Join(repoRoot, filepath.FromSlash(l.PrimaryRoot))
}

// LegacyDir returns the legacy root inside repoRoot.
func (l Layout) LegacyDir(repoRoot string) string {
	return filepath.Join(repoRoot, filepath.FromSlash(l.LegacyRoot))
}

// ValidateVersion checks that version is a full semantic version
// (MAJOR.MINOR.PATCH with optional pre-release and build metadata).
// A leading "v" is accepted.
func ValidateVersion(version string) error {
	candidate := version
	if !strings.HasPrefix(candidate, "v") {
		candidate = "v" + candidate
	}
	// semver.IsValid also accepts the "v1" and "v1.2" shorthands.
	if !semver.IsValid(candidate) || !hasFullCore(candidate) {
		return &InvalidVersionError{Version: version}
	}
	return nil
}

func hasFullCore(v string) bool {
	core := strings.TrimPrefix(v, "v")
	if i := strings.IndexAny(core, "-+"); i >= 0 {
		core = core[:i]
	}
	return strings.Count(core, ".") == 2
}
