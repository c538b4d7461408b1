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

// Package config types define the configuration structures used throughout
// sirseer-watch. These types represent settings that can be loaded from
// YAML configuration files, environment variables, or command-line flags.
package config

import "time"

// Config represents the complete configuration for sirseer-watch.
// It consolidates the dataset paths, network settings, and the
// source registry into a single structure that is passed to the
// pipeline at construction — there is no global state, so tests can
// substitute fake endpoints freely.
type Config struct {
	// DataDir is the dataset directory holding one file per source
	// plus the persisted state file.
	DataDir string `yaml:"data_dir"`

	// BackupDir is the rollback snapshot location. Owned exclusively
	// by the backup manager; never read by downstream consumers.
	BackupDir string `yaml:"backup_dir"`

	// StateFile is the state file name, resolved relative to DataDir
	// unless absolute.
	StateFile string `yaml:"state_file"`

	// TimeoutSeconds bounds every individual HTTP request.
	TimeoutSeconds int `yaml:"timeout_seconds"`

	// UserAgent identifies this monitor to upstream servers so they
	// can attribute the traffic.
	UserAgent string `yaml:"user_agent"`

	Sources SourcesConfig `yaml:"sources"`
}

// SourcesConfig holds the three monitored sources. The set is fixed:
// sources are defined at process start and never added or removed at
// runtime.
type SourcesConfig struct {
	Socrata SocrataConfig `yaml:"socrata"`
	DSMI    PageConfig    `yaml:"dsmi"`
	LSLR    PageConfig    `yaml:"lslr"`
}

// SocrataConfig configures the count-paginated REST API source.
type SocrataConfig struct {
	// Endpoint is the resource URL returning JSON arrays and accepting
	// $select=count(*) and $limit query parameters.
	Endpoint string `yaml:"endpoint"`

	// Filename is the target file inside the dataset directory.
	Filename string `yaml:"filename"`
}

// PageConfig configures an HTML-page-with-single-spreadsheet-link source.
type PageConfig struct {
	// PageURL is the landing page expected to carry exactly one
	// spreadsheet link.
	PageURL string `yaml:"page_url"`

	// Filename is the target file inside the dataset directory.
	Filename string `yaml:"filename"`
}

// DefaultConfig returns a Config with the production defaults: the
// Michigan EGLE drinking-water endpoints this monitor was built for.
// Every value can be overridden through the config file or environment.
func DefaultConfig() *Config {
	return &Config{
		DataDir:        "data",
		BackupDir:      "data-backup",
		StateFile:      "data-state.json",
		TimeoutSeconds: 30,
		UserAgent:      "Mozilla/5.0 (compatible; sirseer-watch/1.0; +https://sirseer.com)",
		Sources: SourcesConfig{
			Socrata: SocrataConfig{
				Endpoint: "https://data.michigan.gov/resource/39ya-9txc.json",
				Filename: "socrata-90th-percentile.json",
			},
			DSMI: PageConfig{
				PageURL:  "https://www.michigan.gov/egle/about/organization/drinking-water-and-environmental-health/community-water-supply/lead-and-copper-rule/dsmi-inventories",
				Filename: "DSMI-Service-Line-Materials-Estimates.xlsx",
			},
			LSLR: PageConfig{
				PageURL:  "https://www.michigan.gov/egle/about/organization/drinking-water-and-environmental-health/community-water-supply/lead-and-copper-rule/lslr-progress",
				Filename: "2024-2025-LSLR-Data.xlsx",
			},
		},
	}
}

// Timeout returns the per-request timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
