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

// Package config provides configuration management for sirseer-watch with
// support for multiple configuration sources and a well-defined precedence
// order.
//
// Configuration sources (in precedence order, highest to lowest):
//  1. Command-line flags
//  2. Environment variables
//  3. Configuration file
//  4. Built-in defaults
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from multiple sources and applies them in
// the correct precedence order. If configPath is provided, it loads from
// that specific file. Otherwise, it searches standard locations:
//   - .sirseer-watch.yaml (current directory)
//   - .sirseer-watch.yml (current directory)
//   - ~/.sirseer/watch.yaml
//   - ~/.sirseer/watch.yml
//
// Environment variables are applied after loading the config file, allowing
// runtime overrides. Path expansion (~ and environment variables) is
// performed on directory paths.
//
// Returns an error if the specified config file cannot be loaded, but will
// succeed with defaults if no config file is found in standard locations.
func LoadConfig(configPath string) (*Config, error) {
	// Start with defaults
	cfg := DefaultConfig()

	if configPath != "" {
		if err := loadConfigFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	} else {
		// Try default locations
		defaultPaths := []string{
			".sirseer-watch.yaml",
			".sirseer-watch.yml",
			filepath.Join(os.Getenv("HOME"), ".sirseer", "watch.yaml"),
			filepath.Join(os.Getenv("HOME"), ".sirseer", "watch.yml"),
		}

		for _, path := range defaultPaths {
			if _, err := os.Stat(path); err == nil {
				if err := loadConfigFile(path, cfg); err != nil {
					return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
				}
				break
			}
		}
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Expand paths
	cfg.DataDir = expandPath(cfg.DataDir)
	cfg.BackupDir = expandPath(cfg.BackupDir)

	return cfg, nil
}

// loadConfigFile reads and parses a YAML config file
func loadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(cfg *Config) {
	if dataDir := os.Getenv("SIRSEER_WATCH_DATA_DIR"); dataDir != "" {
		cfg.DataDir = dataDir
	}
	if backupDir := os.Getenv("SIRSEER_WATCH_BACKUP_DIR"); backupDir != "" {
		cfg.BackupDir = backupDir
	}
	if timeout := os.Getenv("SIRSEER_WATCH_TIMEOUT"); timeout != "" {
		if secs, err := parsePositiveInt(timeout); err == nil {
			cfg.TimeoutSeconds = secs
		}
	}
	if ua := os.Getenv("SIRSEER_WATCH_USER_AGENT"); ua != "" {
		cfg.UserAgent = ua
	}
}

// StatePath resolves the state file location. A relative StateFile lives
// inside the dataset directory, next to the files it describes.
func (c *Config) StatePath() string {
	if filepath.IsAbs(c.StateFile) {
		return c.StateFile
	}
	return filepath.Join(c.DataDir, c.StateFile)
}

// Validate checks if the configuration contains valid values. It ensures
// the dataset paths are set, the timeout is positive, and every source
// endpoint is a usable absolute URL. This should be called after loading
// configuration to catch invalid settings early.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data directory cannot be empty")
	}
	if c.BackupDir == "" {
		return fmt.Errorf("backup directory cannot be empty")
	}
	if c.BackupDir == c.DataDir {
		return fmt.Errorf("backup directory must differ from data directory")
	}
	if c.StateFile == "" {
		return fmt.Errorf("state file cannot be empty")
	}
	if c.TimeoutSeconds <= 0 {
		return fmt.Errorf("timeout must be positive, got: %d", c.TimeoutSeconds)
	}

	endpoints := map[string]string{
		"socrata endpoint": c.Sources.Socrata.Endpoint,
		"dsmi page_url":    c.Sources.DSMI.PageURL,
		"lslr page_url":    c.Sources.LSLR.PageURL,
	}
	for name, endpoint := range endpoints {
		if err := validateURL(name, endpoint); err != nil {
			return err
		}
	}

	filenames := map[string]string{
		"socrata filename": c.Sources.Socrata.Filename,
		"dsmi filename":    c.Sources.DSMI.Filename,
		"lslr filename":    c.Sources.LSLR.Filename,
	}
	for name, filename := range filenames {
		if filename == "" {
			return fmt.Errorf("%s cannot be empty", name)
		}
		if filepath.Base(filename) != filename {
			return fmt.Errorf("%s must be a bare filename, got: %s", name, filename)
		}
	}

	return nil
}

func validateURL(name, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s cannot be empty", name)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s is not a valid URL: %w", name, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("%s must be an absolute URL, got: %s", name, raw)
	}
	return nil
}

// expandPath expands ~ and environment variables in paths
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home := os.Getenv("HOME")
		if home == "" {
			home = os.Getenv("USERPROFILE") // Windows
		}
		path = filepath.Join(home, path[2:])
	}
	return os.ExpandEnv(path)
}

// parsePositiveInt parses a string to a positive integer
func parsePositiveInt(s string) (int, error) {
	var i int
	_, err := fmt.Sscanf(s, "%d", &i)
	if err != nil {
		return 0, fmt.Errorf("failed to parse integer from '%s': %w", s, err)
	}
	if i <= 0 {
		return 0, fmt.Errorf("value must be positive, got: %d", i)
	}
	return i, nil
}
