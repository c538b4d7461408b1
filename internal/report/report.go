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

// Package report renders the human-readable run narrative. Every
// outcome explicitly states whether the backup was kept or cleared, so
// an operator always knows whether the dataset directory reflects
// fully-verified data.
package report

import (
	"fmt"
	"io"
	"sync"

	"github.com/sirseerhq/sirseer-watch/internal/state"
)

// Reporter writes progress and summary lines for one run. It is safe
// for concurrent use, though the pipeline itself is strictly sequential.
type Reporter struct {
	mu sync.Mutex
	w  io.Writer
}

// New creates a Reporter writing to w.
func New(w io.Writer) *Reporter {
	return &Reporter{w: w}
}

func (r *Reporter) printf(format string, args ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.w, format, args...)
}

// BackingUp announces the pre-run snapshot.
func (r *Reporter) BackingUp() {
	r.printf("Backing up existing data...\n")
}

// Fetching announces one source fetch, numbered within the run.
func (r *Reporter) Fetching(index, total int, name string) {
	r.printf("[%d/%d] Fetching %s...\n", index, total, name)
}

// FetchFailed reports one source's failure as it happens.
func (r *Reporter) FetchFailed(err error) {
	r.printf("  failed: %v\n", err)
}

// Restoring announces the rollback after fetch failures. The backup is
// retained for inspection.
func (r *Reporter) Restoring(backupDir string) {
	r.printf("\nRestoring from backup (some fetches failed)...\n")
	r.printf("Backup kept at %s\n", backupDir)
}

// CheckingChanges announces the change-detection phase.
func (r *Reporter) CheckingChanges() {
	r.printf("\nChecking for data changes...\n")
}

// FetchFailures summarizes all failed sources at the end of the run.
func (r *Reporter) FetchFailures(fetchErrors []state.FetchError) {
	if len(fetchErrors) == 0 {
		return
	}
	r.printf("\nFETCH FAILURES: %d source(s) failed\n", len(fetchErrors))
	for _, fe := range fetchErrors {
		r.printf("  - %s: %s\n", fe.Name, fe.Error)
	}
}

// Changes summarizes detected changes. When all fetches succeeded the
// backup is deliberately retained so the pre-change contents stay
// available for review.
func (r *Reporter) Changes(changes []state.ChangeEvent, fetchOK bool, backupDir string) {
	r.printf("\nCHANGES DETECTED: %d update(s) found\n", len(changes))
	for i, change := range changes {
		r.printf("  [%d] %s: %s\n", i+1, change.Source, change.Details)
	}
	if fetchOK {
		r.printf("Backup kept at %s\n", backupDir)
	}
}

// NoChanges reports an uneventful run.
func (r *Reporter) NoChanges() {
	r.printf("No changes detected. All data sources unchanged.\n")
}

// BackupCleared confirms the snapshot was discarded.
func (r *Reporter) BackupCleared() {
	r.printf("Backup cleared.\n")
}
