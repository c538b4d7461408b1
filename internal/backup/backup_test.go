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

package backup

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
}

func readFile(t *testing.T, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("Failed to read %s: %v", name, err)
	}
	return string(data)
}

func TestBackupAndRestore(t *testing.T) {
	tempDir := t.TempDir()
	dataDir := filepath.Join(tempDir, "data")
	backupDir := filepath.Join(tempDir, "data-backup")

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		t.Fatalf("Failed to create data dir: %v", err)
	}
	writeFile(t, dataDir, "a.json", "original-a")
	writeFile(t, dataDir, "b.xlsx", "original-b")

	m := NewManager(dataDir, backupDir)
	if err := m.Backup(); err != nil {
		t.Fatalf("Backup failed: %v", err)
	}
	if !m.Exists() {
		t.Fatal("Backup directory should exist after Backup")
	}

	// Mutate the live directory, then roll back
	writeFile(t, dataDir, "a.json", "mutated-a")
	if err := os.Remove(filepath.Join(dataDir, "b.xlsx")); err != nil {
		t.Fatalf("Failed to remove b.xlsx: %v", err)
	}

	if err := m.Restore(); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}

	if got := readFile(t, dataDir, "a.json"); got != "original-a" {
		t.Errorf("a.json not restored: got %q", got)
	}
	if got := readFile(t, dataDir, "b.xlsx"); got != "original-b" {
		t.Errorf("b.xlsx not restored: got %q", got)
	}
}

func TestRestore_LeavesExtraLiveFiles(t *testing.T) {
	tempDir := t.TempDir()
	dataDir := filepath.Join(tempDir, "data")
	backupDir := filepath.Join(tempDir, "data-backup")

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		t.Fatalf("Failed to create data dir: %v", err)
	}
	writeFile(t, dataDir, "a.json", "original-a")

	m := NewManager(dataDir, backupDir)
	if err := m.Backup(); err != nil {
		t.Fatalf("Backup failed: %v", err)
	}

	// A file that appeared after the snapshot must survive restore
	writeFile(t, dataDir, "new.json", "appeared-later")

	if err := m.Restore(); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if got := readFile(t, dataDir, "new.json"); got != "appeared-later" {
		t.Errorf("Extra live file should be untouched, got %q", got)
	}
}

func TestBackup_OverwritesPreviousSnapshot(t *testing.T) {
	tempDir := t.TempDir()
	dataDir := filepath.Join(tempDir, "data")
	backupDir := filepath.Join(tempDir, "data-backup")

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		t.Fatalf("Failed to create data dir: %v", err)
	}
	writeFile(t, dataDir, "a.json", "generation-1")

	m := NewManager(dataDir, backupDir)
	if err := m.Backup(); err != nil {
		t.Fatalf("First backup failed: %v", err)
	}

	writeFile(t, dataDir, "a.json", "generation-2")
	if err := m.Backup(); err != nil {
		t.Fatalf("Second backup failed: %v", err)
	}

	// Only one generation is retained
	if got := readFile(t, backupDir, "a.json"); got != "generation-2" {
		t.Errorf("Backup should hold the latest generation, got %q", got)
	}
}

func TestRestore_NoBackupIsNoop(t *testing.T) {
	tempDir := t.TempDir()
	dataDir := filepath.Join(tempDir, "data")

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		t.Fatalf("Failed to create data dir: %v", err)
	}
	writeFile(t, dataDir, "a.json", "untouched")

	m := NewManager(dataDir, filepath.Join(tempDir, "missing-backup"))
	if err := m.Restore(); err != nil {
		t.Fatalf("Restore without backup should be a no-op, got: %v", err)
	}
	if got := readFile(t, dataDir, "a.json"); got != "untouched" {
		t.Errorf("Data file modified by no-op restore: %q", got)
	}
}

func TestClear(t *testing.T) {
	tempDir := t.TempDir()
	dataDir := filepath.Join(tempDir, "data")
	backupDir := filepath.Join(tempDir, "data-backup")

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		t.Fatalf("Failed to create data dir: %v", err)
	}
	writeFile(t, dataDir, "a.json", "content")

	m := NewManager(dataDir, backupDir)
	if err := m.Backup(); err != nil {
		t.Fatalf("Backup failed: %v", err)
	}
	if err := m.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if m.Exists() {
		t.Error("Backup directory should be gone after Clear")
	}

	// Clearing again is a no-op
	if err := m.Clear(); err != nil {
		t.Errorf("Clear on absent backup should be a no-op, got: %v", err)
	}
}

func TestBackup_MissingDataDir(t *testing.T) {
	tempDir := t.TempDir()

	m := NewManager(filepath.Join(tempDir, "no-data"), filepath.Join(tempDir, "data-backup"))
	if err := m.Backup(); err != nil {
		t.Fatalf("Backup of missing dataset dir should succeed, got: %v", err)
	}
	if m.Exists() {
		t.Error("No backup directory should be created for a missing dataset dir")
	}
}
