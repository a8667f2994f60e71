// SPDX-License-Identifier: MPL-2.0

package publish

import (
	"os"
	"path/filepath"
)

func writeManifest(dir, content string) error {
	return os.WriteFile(filepath.Join(dir, "package.json"), []byte(content), 0o644)
}
