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

// Package main implements the sirseer-watch command-line interface.
// This tool monitors external data sources for content changes and
// maintains a rollback-safe local copy of the dataset directory.
//
// The CLI supports:
//   - Running one fetch-and-compare pass with the check subcommand
//   - YAML configuration files with environment variable overrides
//   - Graceful error handling with appropriate exit codes
//
// Usage:
//
//	sirseer-watch check [flags]
//
// Example:
//
//	sirseer-watch check --config /etc/sirseer/watch.yaml
//
// Exit codes:
//   - 0: All sources fetched successfully (changed or not)
//   - 1: At least one source failed to fetch; dataset rolled back
//   - 2: Local environment unusable (backup or state persistence failed)
package main
