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

// Package state provides atomic persistence of the per-run dataset state.
//
// The dataset state is the single authoritative record of the last
// monitoring run: one fingerprint record per configured source, the list
// of detected changes, and the fetch outcome. It lives as an indented
// JSON file inside the dataset directory so operators can inspect it
// directly.
//
// Writes are atomic, using a write-to-temp-and-rename pattern with an
// fsync, so a crash mid-save never leaves a half-written file behind.
// Every saved state carries a schema version and a SHA256 checksum;
// loading validates both and falls back to an empty state when anything
// is off. Load never fails hard — a missing or broken state file is
// simply the first-run case.
//
// Example usage:
//
//	prev := state.Load(filepath.Join(dataDir, "data-state.json"))
//	// ... run the pipeline, build the new state ...
//	err := state.Save(next, filepath.Join(dataDir, "data-state.json"))
package state
