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

// Package pipeline sequences one monitoring run:
//
//	backup → fetch all sources → restore on any failure,
//	or detect changes and clear the backup when nothing changed
//	→ persist state → report.
//
// The backup gives the run all-or-nothing dataset consistency: a fetch
// failure in any source rolls the dataset directory back to its pre-run
// contents, so downstream consumers never see a partially-updated mix
// of old and new files. Fetch errors accumulate per source and never
// abort the remaining fetches; backup and state-persistence failures
// are fatal — they mean the local environment is unusable.
//
// Runs are strictly sequential and must not be invoked concurrently;
// the dataset directory, backup directory, and state file carry no
// locks. That discipline belongs to the external scheduler.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/sirseerhq/sirseer-watch/internal/backup"
	"github.com/sirseerhq/sirseer-watch/internal/config"
	"github.com/sirseerhq/sirseer-watch/internal/detect"
	watcherrors "github.com/sirseerhq/sirseer-watch/internal/errors"
	"github.com/sirseerhq/sirseer-watch/internal/report"
	"github.com/sirseerhq/sirseer-watch/internal/source"
	"github.com/sirseerhq/sirseer-watch/internal/state"
)

// Pipeline wires the run's collaborators together. Construct one per
// run with New; it holds no cross-run state beyond what lives on disk.
type Pipeline struct {
	cfg      *config.Config
	sources  []source.Source
	client   *http.Client
	backups  *backup.Manager
	reporter *report.Reporter
	now      func() time.Time
}

// Option customizes a Pipeline. Used by tests to pin the clock.
type Option func(*Pipeline)

// WithClock substitutes the time source used for the state's LastCheck.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// WithHTTPClient substitutes the HTTP client shared by all fetchers.
func WithHTTPClient(client *http.Client) Option {
	return func(p *Pipeline) { p.client = client }
}

// New builds a Pipeline from configuration. All endpoints, paths, and
// timeouts come from cfg; nothing is read from globals.
func New(cfg *config.Config, out io.Writer, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:      cfg,
		sources:  source.Registry(cfg),
		client:   source.NewHTTPClient(cfg.Timeout(), cfg.UserAgent),
		backups:  backup.NewManager(cfg.DataDir, cfg.BackupDir),
		reporter: report.New(out),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes one monitoring run and returns the persisted state.
//
// The returned error is nil when every source fetched successfully,
// wraps ErrFetchFailed when at least one fetch failed (the dataset has
// been restored by then), and wraps ErrEnvironment when backup,
// restore, snapshotting, or state persistence failed.
func (p *Pipeline) Run(ctx context.Context) (*state.DatasetState, error) {
	if err := os.MkdirAll(p.cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: failed to create dataset directory %s: %v",
			watcherrors.ErrEnvironment, p.cfg.DataDir, err)
	}

	// Snapshot before any mutation. Without this there is no rollback
	// target and the run must not proceed.
	p.reporter.BackingUp()
	if err := p.backups.Backup(); err != nil {
		return nil, fmt.Errorf("%w: %v", watcherrors.ErrEnvironment, err)
	}

	fetchErrors := p.fetchAll(ctx)

	// Any failure rolls the dataset back to its pre-run contents. The
	// backup stays on disk for inspection.
	if len(fetchErrors) > 0 {
		p.reporter.Restoring(p.backups.Dir())
		if err := p.backups.Restore(); err != nil {
			return nil, fmt.Errorf("%w: %v", watcherrors.ErrEnvironment, err)
		}
	}

	p.reporter.CheckingChanges()
	prev := state.Load(p.cfg.StatePath())
	records, changes, err := detect.Snapshot(prev, p.cfg.DataDir, p.sources)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", watcherrors.ErrEnvironment, err)
	}

	next := &state.DatasetState{
		Sources:      records,
		LastCheck:    p.now(),
		Changes:      changes,
		ChangesCount: len(changes),
		FetchSuccess: len(fetchErrors) == 0,
		FetchErrors:  fetchErrors,
	}

	// The new state is persisted on every path, failed runs included.
	if err := state.Save(next, p.cfg.StatePath()); err != nil {
		return nil, fmt.Errorf("%w: %v", watcherrors.ErrEnvironment, err)
	}

	p.reporter.FetchFailures(fetchErrors)

	if len(changes) > 0 {
		p.reporter.Changes(changes, len(fetchErrors) == 0, p.backups.Dir())
	} else {
		p.reporter.NoChanges()
		if len(fetchErrors) == 0 {
			if err := p.backups.Clear(); err != nil {
				return nil, fmt.Errorf("%w: %v", watcherrors.ErrEnvironment, err)
			}
			p.reporter.BackupCleared()
		}
	}

	if len(fetchErrors) > 0 {
		return next, fmt.Errorf("%w: %d of %d source(s)",
			watcherrors.ErrFetchFailed, len(fetchErrors), len(p.sources))
	}
	return next, nil
}

// fetchAll invokes every configured fetcher in order. A failure is
// recorded and the remaining sources are still attempted.
func (p *Pipeline) fetchAll(ctx context.Context) []state.FetchError {
	fetchErrors := []state.FetchError{}

	for i, src := range p.sources {
		p.reporter.Fetching(i+1, len(p.sources), src.Name)

		destPath := filepath.Join(p.cfg.DataDir, src.Filename)
		if err := src.Fetcher.Fetch(ctx, p.client, destPath); err != nil {
			p.reporter.FetchFailed(err)
			fetchErrors = append(fetchErrors, state.FetchError{
				Source: src.Key,
				Name:   src.Name,
				Error:  err.Error(),
			})
		}
	}
	return fetchErrors
}
