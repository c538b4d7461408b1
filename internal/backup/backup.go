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

// Package backup snapshots the dataset directory before a run mutates it.
//
// The snapshot gives the pipeline a two-phase-commit-like guarantee: fetch
// freely, then either confirm (Clear) or roll back (Restore) based on the
// aggregate outcome of all fetches, without requiring each fetcher to be
// individually transactional. One generation is retained; taking a new
// snapshot overwrites the previous one.
package backup

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	watcherrors "github.com/sirseerhq/sirseer-watch/internal/errors"
)

// Manager owns the backup directory for the duration of one run.
// It must not be shared across concurrent runs; the external scheduler
// is responsible for invoking the pipeline one run at a time.
type Manager struct {
	dataDir   string
	backupDir string
}

// NewManager returns a Manager snapshotting dataDir into backupDir.
func NewManager(dataDir, backupDir string) *Manager {
	return &Manager{dataDir: dataDir, backupDir: backupDir}
}

// Dir returns the backup directory path, for operator-facing messages.
func (m *Manager) Dir() string {
	return m.backupDir
}

// Exists reports whether a backup snapshot is currently present.
func (m *Manager) Exists() bool {
	info, err := os.Stat(m.backupDir)
	return err == nil && info.IsDir()
}

// Backup deletes any pre-existing snapshot, then deep-copies the dataset
// directory into the backup directory. A missing dataset directory is not
// an error; the run simply starts with nothing to roll back to.
func (m *Manager) Backup() error {
	if err := os.RemoveAll(m.backupDir); err != nil {
		return fmt.Errorf("%w: failed to remove previous backup %s: %v", watcherrors.ErrIO, m.backupDir, err)
	}

	if _, err := os.Stat(m.dataDir); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("%w: failed to stat dataset directory %s: %v", watcherrors.ErrIO, m.dataDir, err)
	}

	if err := copyTree(m.dataDir, m.backupDir); err != nil {
		return fmt.Errorf("%w: failed to snapshot %s to %s: %v", watcherrors.ErrIO, m.dataDir, m.backupDir, err)
	}
	return nil
}

// Restore overwrites each dataset-directory file with its counterpart from
// the backup. It is a file-level copy, not a destructive directory replace:
// files present in the live directory but absent from the backup are left
// untouched. No-op when no backup exists.
func (m *Manager) Restore() error {
	entries, err := os.ReadDir(m.backupDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("%w: failed to read backup %s: %v", watcherrors.ErrIO, m.backupDir, err)
	}

	if err := os.MkdirAll(m.dataDir, 0o755); err != nil {
		return fmt.Errorf("%w: failed to create dataset directory %s: %v", watcherrors.ErrIO, m.dataDir, err)
	}

	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		src := filepath.Join(m.backupDir, entry.Name())
		dst := filepath.Join(m.dataDir, entry.Name())
		if err := copyFile(src, dst); err != nil {
			return fmt.Errorf("%w: failed to restore %s: %v", watcherrors.ErrIO, entry.Name(), err)
		}
	}
	return nil
}

// Clear deletes the backup snapshot entirely. No-op when absent.
func (m *Manager) Clear() error {
	if err := os.RemoveAll(m.backupDir); err != nil {
		return fmt.Errorf("%w: failed to clear backup %s: %v", watcherrors.ErrIO, m.backupDir, err)
	}
	return nil
}

// copyTree deep-copies the directory rooted at src into dst, which must
// not yet exist.
func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		if !d.Type().IsRegular() {
			// Sockets, symlinks and the like have no business in the
			// dataset directory; skip rather than fail the snapshot.
			return nil
		}
		return copyFile(path, target)
	})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
