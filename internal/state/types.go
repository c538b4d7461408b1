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
	"time"
)

// CurrentVersion is the current state schema version.
// Increment this when making breaking changes to the DatasetState structure.
const CurrentVersion = 1

// DatasetState is the authoritative record of the last monitoring run.
// It maps each configured source to its fingerprint record and carries the
// outcome of the run: detected changes, fetch errors, and the overall
// fetch-success flag. A new DatasetState is persisted at the end of every
// run, regardless of outcome.
type DatasetState struct {
	// Version indicates the schema version of this state file.
	// Used to handle migrations and compatibility checks.
	Version int `json:"version"`

	// Checksum is the SHA256 hash of the state content (excluding this field).
	// Used to detect corruption or tampering.
	Checksum string `json:"checksum"`

	// Sources maps source key to its record. Every key corresponds to
	// exactly one configured source; presence of a record does not imply
	// the underlying file currently exists.
	Sources map[string]SourceRecord `json:"sources"`

	// LastCheck records when this run computed its snapshot.
	LastCheck time.Time `json:"last_check"`

	// Changes lists the content changes detected against the previous run.
	Changes []ChangeEvent `json:"changes"`

	// ChangesCount is len(Changes), persisted for quick inspection.
	ChangesCount int `json:"changes_count"`

	// FetchSuccess is true when every configured source fetched cleanly.
	FetchSuccess bool `json:"fetch_success"`

	// FetchErrors lists the per-source failures of this run.
	FetchErrors []FetchError `json:"fetch_errors"`
}

// SourceRecord captures the on-disk status of one source's dataset file.
// ContentHash and File are only meaningful when Exists is true.
type SourceRecord struct {
	Exists      bool   `json:"exists"`
	ContentHash string `json:"content_hash,omitempty"`
	File        string `json:"file,omitempty"`
}

// ChangeEvent describes one detected content change. Events are produced
// only when a source carried a fingerprint in both the previous and current
// state and the fingerprints differ.
type ChangeEvent struct {
	// Source is the human-readable source name.
	Source string `json:"source"`

	// Type tags the kind of change. Currently always "Data content changed".
	Type string `json:"type"`

	// Details is a human-readable description of the change.
	Details string `json:"details"`

	// File is the affected filename inside the dataset directory.
	File string `json:"file"`
}

// FetchError records one source that could not be fetched during a run.
type FetchError struct {
	// Source is the source key.
	Source string `json:"source"`

	// Name is the human-readable source name.
	Name string `json:"name"`

	// Error is the failure message.
	Error string `json:"error"`
}

// Empty returns a DatasetState with all collections initialized. It is
// the zero value for first runs and for unreadable state files, and
// keeps the persisted JSON free of nulls.
func Empty() *DatasetState {
	return &DatasetState{
		Sources:     make(map[string]SourceRecord),
		Changes:     []ChangeEvent{},
		FetchErrors: []FetchError{},
	}
}
