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

// Package source defines the monitored data sources and their fetch
// strategies. Two strategies exist: a count-paginated REST API fetcher
// and an HTML-page scraper that locates a single spreadsheet link.
// Fetchers retrieve bytes for one source and write them into the
// dataset directory; they perform no retries and no caching — failure
// handling lives in the pipeline.
package source

import (
	"context"
	"net/http"
	"time"

	"github.com/sirseerhq/sirseer-watch/internal/config"
)

// Fetcher retrieves the current contents of one external source and
// writes them to destPath. On any error nothing is written for that
// source. Each underlying request is bounded by the shared client's
// timeout.
type Fetcher interface {
	Fetch(ctx context.Context, client *http.Client, destPath string) error
}

// Source binds a stable key and human-readable name to a target
// filename and a fetch strategy.
type Source struct {
	// Key identifies the source in state files and fetch-error records.
	Key string

	// Name is the human-readable source name used in reports.
	Name string

	// Filename is the target file inside the dataset directory.
	Filename string

	Fetcher Fetcher
}

// Registry builds the fixed, ordered source list from configuration.
// The order is the fetch order; it is stable across runs.
func Registry(cfg *config.Config) []Source {
	return []Source{
		{
			Key:      "socrata_90th",
			Name:     "Socrata 90th Percentile API",
			Filename: cfg.Sources.Socrata.Filename,
			Fetcher:  &SocrataFetcher{Endpoint: cfg.Sources.Socrata.Endpoint},
		},
		{
			Key:      "dsmi",
			Name:     "DSMI Service Line Materials",
			Filename: cfg.Sources.DSMI.Filename,
			Fetcher: &PageFetcher{
				PageURL:   cfg.Sources.DSMI.PageURL,
				PageName:  "DSMI inventories page",
				Extension: ".xlsx",
				UserAgent: cfg.UserAgent,
			},
		},
		{
			Key:      "lslr",
			Name:     "Lead & Copper Rule (LSLR)",
			Filename: cfg.Sources.LSLR.Filename,
			Fetcher: &PageFetcher{
				PageURL:   cfg.Sources.LSLR.PageURL,
				PageName:  "LSLR progress page",
				Extension: ".xlsx",
				UserAgent: cfg.UserAgent,
			},
		},
	}
}

// NewHTTPClient creates the HTTP client shared by all fetchers.
// The client is configured with:
//   - A per-request timeout covering connection, headers, and body
//   - A User-Agent header on every request so upstream servers can
//     attribute the traffic
//   - Connection pooling suitable for a handful of sequential requests
func NewHTTPClient(timeout time.Duration, userAgent string) *http.Client {
	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     90 * time.Second,
		ForceAttemptHTTP2:   true,
	}

	return &http.Client{
		Timeout: timeout,
		Transport: &userAgentTransport{
			userAgent: userAgent,
			base:      transport,
		},
	}
}

// userAgentTransport stamps a User-Agent header on every outgoing
// request unless the caller already set one.
type userAgentTransport struct {
	userAgent string
	base      http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" && t.userAgent != "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", t.userAgent)
	}
	return t.base.RoundTrip(req)
}
