// SPDX-License-Identifier: MPL-2.0

package module

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

type recordingWarner struct {
	messages []string
}

func (w *recordingWarner) Warn(msg any, _ ...any) {
	w.messages = append(w.messages, fmt.Sprint(msg))
}

// writeFile creates path (and its parents) under root with content.
func writeFile(t *testing.T, root, path, content string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(full), err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", full, err)
	}
}

func mkdir(t *testing.T, root, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Join(root, filepath.FromSlash(path)), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
}
