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
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"

	watcherrors "github.com/sirseerhq/sirseer-watch/internal/errors"
)

// PageFetcher downloads the spreadsheet linked from an HTML landing page.
// The page must carry exactly one link whose URL path ends in the
// expected extension. The exactly-one rule is a validation gate, not a
// search heuristic: with zero or multiple candidates the fetcher fails
// rather than guess which file is authoritative.
type PageFetcher struct {
	// PageURL is the landing page to scrape.
	PageURL string

	// PageName names the page in error messages, e.g. "DSMI inventories page".
	PageName string

	// Extension is the expected spreadsheet extension including the
	// leading dot, matched case-insensitively against the link's URL
	// path with any query string ignored.
	Extension string

	// UserAgent identifies the monitor to the upstream server. The
	// shared client applies it too, but the page fetch sets it
	// explicitly since these pages are known to reject anonymous
	// clients.
	UserAgent string
}

// Fetch scrapes the landing page, resolves the single matching link
// against the page's own URL, downloads it, and writes the bytes
// verbatim to destPath.
func (f *PageFetcher) Fetch(ctx context.Context, client *http.Client, destPath string) error {
	page, err := f.fetchPage(ctx, client)
	if err != nil {
		return err
	}

	links, err := extractLinks(page, f.Extension)
	if err != nil {
		return err
	}

	switch len(links) {
	case 0:
		return fmt.Errorf("%w: no %s link found on %s", watcherrors.ErrLinkNotFound, f.Extension, f.PageName)
	case 1:
		// The one authoritative link
	default:
		return fmt.Errorf("%w: found %d %s links on %s, refusing to guess: %s",
			watcherrors.ErrAmbiguousLink, len(links), f.Extension, f.PageName, strings.Join(links, ", "))
	}

	fileURL, err := f.resolve(links[0])
	if err != nil {
		return err
	}

	data, err := get(ctx, client, fileURL)
	if err != nil {
		return err
	}

	if err := os.WriteFile(destPath, data, 0o644); err != nil {
		return fmt.Errorf("%w: failed to write %s: %v", watcherrors.ErrIO, destPath, err)
	}
	return nil
}

func (f *PageFetcher) fetchPage(ctx context.Context, client *http.Client) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.PageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to build request for %s: %v", watcherrors.ErrNetwork, f.PageURL, err)
	}
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: GET %s: %v", watcherrors.ErrNetwork, f.PageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: GET %s returned status %d", watcherrors.ErrNetwork, f.PageURL, resp.StatusCode)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, fmt.Errorf("%w: failed to read %s: %v", watcherrors.ErrNetwork, f.PageURL, err)
	}
	return buf.Bytes(), nil
}

// resolve turns the scraped href into an absolute URL against the
// page's own URL.
func (f *PageFetcher) resolve(href string) (string, error) {
	base, err := url.Parse(f.PageURL)
	if err != nil {
		return "", fmt.Errorf("%w: invalid page URL %s: %v", watcherrors.ErrDecode, f.PageURL, err)
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("%w: invalid link %s on %s: %v", watcherrors.ErrDecode, href, f.PageName, err)
	}
	return base.ResolveReference(ref).String(), nil
}

// extractLinks returns every hyperlink target on the page whose URL
// path (query string ignored) ends in the given extension.
func extractLinks(page []byte, extension string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse page HTML: %v", watcherrors.ErrDecode, err)
	}

	var links []string
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		if matchesExtension(href, extension) {
			links = append(links, href)
		}
	})
	return links, nil
}

// matchesExtension checks the href's URL path against the extension,
// ignoring query parameters like ?rev=... that the CMS appends.
func matchesExtension(href, extension string) bool {
	u, err := url.Parse(href)
	if err != nil {
		return false
	}
	return strings.HasSuffix(strings.ToLower(u.Path), strings.ToLower(extension))
}
