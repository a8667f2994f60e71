// SPDX-License-Identifier: MPL-2.0

package module

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// ManifestName is the module descriptor file looked for in every candidate.
const ManifestName = "package.json"

var (
	// ErrManifestNotFound is returned when a module has no package.json.
	ErrManifestNotFound = errors.New("manifest not found")
	// ErrInvalidManifest is returned when package.json is not a JSON object.
	ErrInvalidManifest = errors.New("invalid manifest")
)

// ManifestPath returns the package.json path inside dir.
func ManifestPath(dir string) string {
	return filepath.Join(dir, ManifestName)
}

// WriteVersion sets the top-level "version" field of dir/package.json to
// version. Every other field, the key order and the indentation are kept.
func WriteVersion(dir, version string) error {
	p := ManifestPath(dir)

	data, mode, err := readManifest(p)
	if err != nil {
		return err
	}

	updated, err := sjson.SetBytes(data, "version", version)
	if err != nil {
		return fmt.Errorf("failed to set version in %s: %w", p, err)
	}

	if err := os.WriteFile(p, updated, mode); err != nil {
		return fmt.Errorf("failed to write %s: %w", p, err)
	}
	return nil
}

// ReadVersion returns the "version" field of dir/package.json, or "" when it
// is not set.
func ReadVersion(dir string) (string, error) {
	data, _, err := readManifest(ManifestPath(dir))
	if err != nil {
		return "", err
	}
	return gjson.GetBytes(data, "version").String(), nil
}

// HasScript reports whether dir/package.json declares scripts.<name>.
// A missing manifest is not an error and reports false.
func HasScript(dir, name string) (bool, error) {
	data, _, err := readManifest(ManifestPath(dir))
	if errors.Is(err, ErrManifestNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return gjson.GetBytes(data, "scripts."+gjson.Escape(name)).Exists(), nil
}

func readManifest(p string) ([]byte, fs.FileMode, error) {
	info, err := os.Stat(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, 0, fmt.Errorf("%w: %s", ErrManifestNotFound, p)
		}
		return nil, 0, fmt.Errorf("failed to stat %s: %w", p, err)
	}
	if info.IsDir() {
		return nil, 0, fmt.Errorf("%w: %s is a directory", ErrInvalidManifest, p)
	}

	data, err := os.ReadFile(p)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read %s: %w", p, err)
	}
	if !gjson.ValidBytes(data) || !gjson.ParseBytes(data).IsObject() {
		return nil, 0, fmt.Errorf("%w: %s is not a JSON object", ErrInvalidManifest, p)
	}
	return data, info.Mode().Perm(), nil
}

func manifestExists(dir string) bool {
	info, err := os.Stat(ManifestPath(dir))
	return err == nil && !info.IsDir()
}
