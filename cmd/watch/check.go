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

package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/sirseerhq/sirseer-watch/internal/config"
	watcherrors "github.com/sirseerhq/sirseer-watch/internal/errors"
	"github.com/sirseerhq/sirseer-watch/internal/pipeline"
)

// newCheckCommand builds the check subcommand, which executes exactly
// one monitoring run. Scheduling is external; invocations must not
// overlap.
func newCheckCommand() *cobra.Command {
	var (
		configFile string
		dataDir    string
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run one fetch-and-compare pass over all data sources",
		Long: `Check fetches every configured data source in sequence, compares the
results against the previous run's fingerprints, and reports any
content changes.

Before fetching, the dataset directory is snapshotted. If any source
fails to fetch, the dataset is restored from that snapshot and the
snapshot is kept for inspection. When changes are detected the
snapshot is also kept, so the pre-change contents stay reviewable;
only an entirely uneventful run discards it.

The run's state (fingerprints, changes, fetch outcomes) is always
persisted, success or failure.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configFile)
			if err != nil {
				return err
			}
			if dataDir != "" {
				cfg.DataDir = dataDir
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			p := pipeline.New(cfg, cmd.OutOrStdout())
			_, err = p.Run(cmd.Context())
			return err
		},
	}

	cmd.Flags().StringVar(&configFile, "config", "", "Config file path (default: .sirseer-watch.yaml, then ~/.sirseer/watch.yaml)")
	cmd.Flags().StringVar(&dataDir, "data-dir", "", "Dataset directory (overrides config)")

	return cmd
}

// mapErrorToExitCode maps internal errors to appropriate exit codes
func mapErrorToExitCode(err error) int {
	if err == nil {
		return 0
	}

	if errors.Is(err, watcherrors.ErrFetchFailed) {
		return 1 // One or more sources failed; dataset was rolled back
	}
	if errors.Is(err, watcherrors.ErrEnvironment) {
		return 2 // Local environment unusable (backup/state failure)
	}

	return 1 // General error
}
