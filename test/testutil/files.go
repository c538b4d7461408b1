// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteConfigFile writes a YAML config file into dir and returns its path
func WriteConfigFile(t *testing.T, dir, content string) string {
	t.Helper()

	path := filepath.Join(dir, "watch.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

// ReadFileString reads a file and returns its contents as a string
func ReadFileString(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read %s: %v", path, err)
	}
	return string(data)
}

// SnapshotDir captures the contents of every regular file in dir,
// keyed by filename. Used to assert rollback byte-equality.
func SnapshotDir(t *testing.T, dir string) map[string]string {
	t.Helper()

	contents := map[string]string{}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return contents
		}
		t.Fatalf("Failed to read directory %s: %v", dir, err)
	}
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		contents[e.Name()] = ReadFileString(t, filepath.Join(dir, e.Name()))
	}
	return contents
}

// FileExists reports whether path exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
