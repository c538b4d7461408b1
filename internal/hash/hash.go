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

// Package hash computes content fingerprints for dataset files.
//
// A fingerprint is a SHA-256 hex digest of a file's full byte contents.
// Fingerprints are stored in the dataset state between runs and compared
// to detect content changes without keeping historical copies. Changing
// the digest algorithm invalidates every stored fingerprint, so it must
// stay stable across releases.
package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
)

// FileHash returns the SHA-256 hex digest of the file's contents.
// Callers are expected to have checked that the file exists; a read
// failure is reported, never swallowed.
func FileHash(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s for hashing: %w", path, err)
	}

	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Bytes returns the SHA-256 hex digest of the given bytes. It is the
// in-memory counterpart of FileHash and produces identical digests for
// identical contents.
func Bytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
