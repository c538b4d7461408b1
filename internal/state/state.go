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
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Save atomically persists the dataset state to disk with integrity
// validation. It uses a write-to-temp-and-rename pattern to ensure a
// reader never observes a half-written file. The checksum is calculated
// and stored to detect corruption.
func Save(state *DatasetState, stateFile string) error {
	// Set version to current
	state.Version = CurrentVersion

	// Calculate checksum before adding it to the struct
	checksum, err := calculateChecksum(state)
	if err != nil {
		return fmt.Errorf("failed to calculate checksum: %w", err)
	}
	state.Checksum = checksum

	// Ensure the directory exists
	stateDir := filepath.Dir(stateFile)
	if mkdirErr := os.MkdirAll(stateDir, 0o755); mkdirErr != nil {
		return fmt.Errorf("failed to create state directory: %w", mkdirErr)
	}

	// Create a temporary file in the same directory
	tempFile := stateFile + ".tmp"

	// Indented JSON: the state file is the operator's primary inspection
	// surface, so keep it readable.
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	if writeErr := os.WriteFile(tempFile, data, 0o644); writeErr != nil {
		return fmt.Errorf("failed to write temporary state file: %w", writeErr)
	}

	// Sync to ensure data is flushed to disk
	file, err := os.Open(tempFile)
	if err != nil {
		_ = os.Remove(tempFile)
		return fmt.Errorf("failed to open temp file for sync: %w", err)
	}
	if err := file.Sync(); err != nil {
		_ = file.Close()
		_ = os.Remove(tempFile)
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(tempFile)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// Atomic rename
	if err := os.Rename(tempFile, stateFile); err != nil {
		_ = os.Remove(tempFile)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// Load reads the dataset state from disk. It fails soft: a missing,
// unreadable, corrupted, or version-incompatible state file yields an
// empty state and no error. This is the first-run case, and also the
// recovery path when a previous run's state cannot be trusted — the
// worst consequence is that one round of change detection is skipped.
func Load(stateFile string) *DatasetState {
	data, err := os.ReadFile(stateFile)
	if err != nil {
		return Empty()
	}

	var s DatasetState
	if err := json.Unmarshal(data, &s); err != nil {
		return Empty()
	}

	if s.Version != CurrentVersion {
		return Empty()
	}

	// Verify checksum
	savedChecksum := s.Checksum
	s.Checksum = ""
	calculated, err := calculateChecksum(&s)
	if err != nil || savedChecksum != calculated {
		return Empty()
	}
	s.Checksum = savedChecksum

	if s.Sources == nil {
		s.Sources = make(map[string]SourceRecord)
	}
	return &s
}

// calculateChecksum computes the SHA256 hash of the state content.
// The checksum field itself is excluded from the calculation.
func calculateChecksum(state *DatasetState) (string, error) {
	stateCopy := *state
	stateCopy.Checksum = ""

	// Marshal to JSON for consistent hashing
	data, err := json.Marshal(stateCopy)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
