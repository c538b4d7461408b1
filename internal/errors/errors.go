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

// Package errors defines sentinel errors for consistent error handling across the application.
// These errors map to specific exit codes in the CLI for proper scripting support.
package errors

import "errors"

// Sentinel errors for consistent error handling and exit code mapping
var (
	// ErrNetwork indicates an HTTP request failed or returned a
	// non-success status. Converted to a per-source fetch error by the
	// pipeline; the run continues with the remaining sources.
	ErrNetwork = errors.New("network request failed")

	// ErrDecode indicates a response body could not be parsed as expected.
	ErrDecode = errors.New("response body could not be decoded")

	// ErrLinkNotFound indicates a landing page contained no download
	// link of the expected type.
	ErrLinkNotFound = errors.New("download link not found")

	// ErrAmbiguousLink indicates a landing page contained more than one
	// candidate download link. The fetcher refuses to guess which file
	// is authoritative rather than risk downloading the wrong one.
	ErrAmbiguousLink = errors.New("multiple candidate download links")

	// ErrIO indicates a local file read or write failed.
	ErrIO = errors.New("local file operation failed")

	// ErrFetchFailed is returned by the pipeline when at least one
	// source could not be fetched. The dataset directory has already
	// been restored from backup when this is returned.
	// Maps to exit code 1.
	ErrFetchFailed = errors.New("one or more sources failed to fetch")

	// ErrEnvironment indicates the local environment is unusable:
	// backup, restore, or state persistence failed. Nothing about the
	// run can be trusted after this.
	// Maps to exit code 2.
	ErrEnvironment = errors.New("local environment is unusable")
)
