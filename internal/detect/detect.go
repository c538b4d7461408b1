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

// Package detect compares the current dataset contents against the
// previous run's fingerprints and reports content changes.
//
// The detection scope is deliberately narrow: only a hash mismatch on a
// source that carried a fingerprint in both the previous and current
// state counts as a change. A source appearing for the first time, or
// one that vanished, produces no event — there is nothing to compare
// against, and flagging it would turn every first run into a false
// alarm.
package detect

import (
	"fmt"
	"os"
	"path/filepath"

	watcherrors "github.com/sirseerhq/sirseer-watch/internal/errors"
	"github.com/sirseerhq/sirseer-watch/internal/hash"
	"github.com/sirseerhq/sirseer-watch/internal/source"
	"github.com/sirseerhq/sirseer-watch/internal/state"
)

// changeType is the single event type currently produced.
const changeType = "Data content changed"

// Snapshot computes the current per-source records for the dataset
// directory and the change events relative to prev. The returned map
// holds exactly one record per configured source. Hashing failures on
// an existing file are local I/O errors and propagate — they mean the
// dataset directory itself cannot be trusted.
func Snapshot(prev *state.DatasetState, dataDir string, sources []source.Source) (map[string]state.SourceRecord, []state.ChangeEvent, error) {
	records := make(map[string]state.SourceRecord, len(sources))
	changes := []state.ChangeEvent{}

	for _, src := range sources {
		path := filepath.Join(dataDir, src.Filename)

		if _, err := os.Stat(path); err != nil {
			if !os.IsNotExist(err) {
				return nil, nil, fmt.Errorf("%w: failed to stat %s: %v", watcherrors.ErrIO, path, err)
			}
			records[src.Key] = state.SourceRecord{Exists: false}
			continue
		}

		contentHash, err := hash.FileHash(path)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", watcherrors.ErrIO, err)
		}

		records[src.Key] = state.SourceRecord{
			Exists:      true,
			ContentHash: contentHash,
			File:        src.Filename,
		}

		prevRecord := prev.Sources[src.Key]
		if prevRecord.ContentHash != "" && prevRecord.ContentHash != contentHash {
			changes = append(changes, state.ChangeEvent{
				Source:  src.Name,
				Type:    changeType,
				Details: fmt.Sprintf("File %s has been modified", src.Filename),
				File:    src.Filename,
			})
		}
	}

	return records, changes, nil
}
