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

package state

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestSaveAndLoad(t *testing.T) {
	tempDir := t.TempDir()
	stateFile := filepath.Join(tempDir, "data-state.json")

	testState := &DatasetState{
		Sources: map[string]SourceRecord{
			"socrata_90th": {Exists: true, ContentHash: "abc123", File: "socrata-90th-percentile.json"},
			"dsmi":         {Exists: false},
		},
		LastCheck: time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC),
		Changes: []ChangeEvent{
			{
				Source:  "Socrata 90th Percentile API",
				Type:    "Data content changed",
				Details: "File socrata-90th-percentile.json has been modified",
				File:    "socrata-90th-percentile.json",
			},
		},
		ChangesCount: 1,
		FetchSuccess: true,
		FetchErrors:  []FetchError{},
	}

	if err := Save(testState, stateFile); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if _, err := os.Stat(stateFile); err != nil {
		t.Fatalf("State file not created: %v", err)
	}

	loaded := Load(stateFile)

	if got := loaded.Sources["socrata_90th"].ContentHash; got != "abc123" {
		t.Errorf("ContentHash mismatch: got %q, want %q", got, "abc123")
	}
	if loaded.Sources["dsmi"].Exists {
		t.Error("dsmi record should have Exists=false")
	}
	if !loaded.LastCheck.Equal(testState.LastCheck) {
		t.Errorf("LastCheck mismatch: got %v, want %v", loaded.LastCheck, testState.LastCheck)
	}
	if loaded.ChangesCount != 1 || len(loaded.Changes) != 1 {
		t.Errorf("Changes mismatch: count=%d, len=%d", loaded.ChangesCount, len(loaded.Changes))
	}
	if !loaded.FetchSuccess {
		t.Error("FetchSuccess should be true")
	}
	if loaded.Version != CurrentVersion {
		t.Errorf("Version mismatch: got %d, want %d", loaded.Version, CurrentVersion)
	}
	if loaded.Checksum == "" {
		t.Error("Checksum should not be empty")
	}
}

func TestSave_HumanInspectable(t *testing.T) {
	tempDir := t.TempDir()
	stateFile := filepath.Join(tempDir, "data-state.json")

	s := Empty()
	s.Sources["lslr"] = SourceRecord{Exists: true, ContentHash: "ff", File: "2024-2025-LSLR-Data.xlsx"}
	if err := Save(s, stateFile); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	data, err := os.ReadFile(stateFile)
	if err != nil {
		t.Fatalf("Failed to read state file: %v", err)
	}

	// Indented JSON with empty collections, never nulls
	if !strings.Contains(string(data), "\n  ") {
		t.Error("State file should be indented for human inspection")
	}
	if strings.Contains(string(data), "null") {
		t.Errorf("State file should not contain nulls:\n%s", data)
	}
}

func TestSave_NoTempFileLeftBehind(t *testing.T) {
	tempDir := t.TempDir()
	stateFile := filepath.Join(tempDir, "data-state.json")

	if err := Save(Empty(), stateFile); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	entries, err := os.ReadDir(tempDir)
	if err != nil {
		t.Fatalf("Failed to read temp dir: %v", err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("Temporary file left behind: %s", e.Name())
		}
	}
}

func TestLoad_MissingFile(t *testing.T) {
	tempDir := t.TempDir()

	s := Load(filepath.Join(tempDir, "nonexistent.json"))
	if s == nil {
		t.Fatal("Load should return an empty state, not nil")
	}
	if len(s.Sources) != 0 {
		t.Errorf("Empty state should have no sources, got %d", len(s.Sources))
	}
	if s.Changes == nil || s.FetchErrors == nil {
		t.Error("Empty state collections should be initialized")
	}
}

func TestLoad_CorruptJSON(t *testing.T) {
	tempDir := t.TempDir()
	stateFile := filepath.Join(tempDir, "data-state.json")

	if err := os.WriteFile(stateFile, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("Failed to write corrupt file: %v", err)
	}

	s := Load(stateFile)
	if len(s.Sources) != 0 {
		t.Error("Corrupt state file should yield an empty state")
	}
}

func TestLoad_ChecksumMismatch(t *testing.T) {
	tempDir := t.TempDir()
	stateFile := filepath.Join(tempDir, "data-state.json")

	s := Empty()
	s.Sources["dsmi"] = SourceRecord{Exists: true, ContentHash: "aa", File: "f.xlsx"}
	if err := Save(s, stateFile); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Tamper with the file without updating the checksum
	data, err := os.ReadFile(stateFile)
	if err != nil {
		t.Fatalf("Failed to read state file: %v", err)
	}
	tampered := strings.Replace(string(data), `"aa"`, `"bb"`, 1)
	if err := os.WriteFile(stateFile, []byte(tampered), 0o644); err != nil {
		t.Fatalf("Failed to write tampered file: %v", err)
	}

	loaded := Load(stateFile)
	if len(loaded.Sources) != 0 {
		t.Error("Tampered state file should yield an empty state")
	}
}

func TestLoad_IncompatibleVersion(t *testing.T) {
	tempDir := t.TempDir()
	stateFile := filepath.Join(tempDir, "data-state.json")

	raw := map[string]interface{}{
		"version":  99,
		"checksum": "irrelevant",
		"sources":  map[string]interface{}{},
	}
	data, err := json.Marshal(raw)
	if err != nil {
		t.Fatalf("Failed to marshal raw state: %v", err)
	}
	if err := os.WriteFile(stateFile, data, 0o644); err != nil {
		t.Fatalf("Failed to write state file: %v", err)
	}

	loaded := Load(stateFile)
	if len(loaded.Sources) != 0 {
		t.Error("Incompatible version should yield an empty state")
	}
}
