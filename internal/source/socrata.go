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

package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"

	watcherrors "github.com/sirseerhq/sirseer-watch/internal/errors"
)

// SocrataFetcher fetches a complete Socrata (SODA2) resource. The API
// paginates by default, so the fetcher first issues a count query to
// learn the total record count, then requests exactly that many records
// in a single follow-up call.
type SocrataFetcher struct {
	// Endpoint is the resource URL, e.g.
	// https://data.michigan.gov/resource/39ya-9txc.json
	Endpoint string
}

// Fetch downloads all records and writes them to destPath as indented
// JSON. The two requests are sequential; either failing fails the source.
func (f *SocrataFetcher) Fetch(ctx context.Context, client *http.Client, destPath string) error {
	count, err := f.recordCount(ctx, client)
	if err != nil {
		return err
	}

	allURL := fmt.Sprintf("%s?$limit=%d", f.Endpoint, count)
	body, err := get(ctx, client, allURL)
	if err != nil {
		return err
	}

	// Decode to validate the payload before anything touches the
	// dataset directory.
	var records []interface{}
	if err := json.Unmarshal(body, &records); err != nil {
		return fmt.Errorf("%w: %s returned invalid JSON: %v", watcherrors.ErrDecode, allURL, err)
	}

	formatted, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: failed to format records: %v", watcherrors.ErrDecode, err)
	}
	formatted = append(formatted, '\n')

	if err := os.WriteFile(destPath, formatted, 0o644); err != nil {
		return fmt.Errorf("%w: failed to write %s: %v", watcherrors.ErrIO, destPath, err)
	}
	return nil
}

// recordCount issues the $select=count(*) query and parses the result.
// Socrata returns a one-element array whose count field may be a string
// or a number depending on the dataset.
func (f *SocrataFetcher) recordCount(ctx context.Context, client *http.Client) (int, error) {
	countURL := f.Endpoint + "?$select=count(*)"
	body, err := get(ctx, client, countURL)
	if err != nil {
		return 0, err
	}

	var rows []map[string]interface{}
	if err := json.Unmarshal(body, &rows); err != nil {
		return 0, fmt.Errorf("%w: %s returned invalid JSON: %v", watcherrors.ErrDecode, countURL, err)
	}
	if len(rows) == 0 {
		return 0, nil
	}

	switch v := rows[0]["count"].(type) {
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("%w: unparseable record count %q: %v", watcherrors.ErrDecode, v, err)
		}
		return n, nil
	case float64:
		return int(v), nil
	default:
		return 0, fmt.Errorf("%w: count query returned no usable count field", watcherrors.ErrDecode)
	}
}

// get performs one GET request and returns the response body. Request
// errors and non-success statuses both map to the network error class.
func get(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to build request for %s: %v", watcherrors.ErrNetwork, url, err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: GET %s: %v", watcherrors.ErrNetwork, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: GET %s returned status %d", watcherrors.ErrNetwork, url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response from %s: %v", watcherrors.ErrNetwork, url, err)
	}
	return body, nil
}
