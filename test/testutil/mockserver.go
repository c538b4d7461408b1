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

// Package testutil provides common test helpers for sirseer-watch
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
)

// MockServer wraps an httptest server with a request counter
type MockServer struct {
	*httptest.Server
	requestCount int32
}

// RequestCount returns the number of requests the server has handled
func (s *MockServer) RequestCount() int {
	return int(atomic.LoadInt32(&s.requestCount))
}

func (s *MockServer) counted(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&s.requestCount, 1)
		handler.ServeHTTP(w, r)
	})
}

// NewSocrataServer creates a mock Socrata resource endpoint. It answers
// the count query with len(records) and the follow-up $limit query with
// the records themselves.
func NewSocrataServer(t *testing.T, records []map[string]interface{}) *MockServer {
	t.Helper()

	s := &MockServer{}
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("$select") == "count(*)" {
			_ = json.NewEncoder(w).Encode([]map[string]string{
				{"count": strconv.Itoa(len(records))},
			})
			return
		}
		_ = json.NewEncoder(w).Encode(records)
	})
	s.Server = httptest.NewServer(s.counted(handler))
	return s
}

// NewPageServer creates a mock landing page carrying the given links,
// and serves fileContent for any path ending in the given extension.
func NewPageServer(t *testing.T, links []string, extension string, fileContent []byte) *MockServer {
	t.Helper()

	s := &MockServer{}
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(strings.ToLower(r.URL.Path), extension) {
			_, _ = w.Write(fileContent)
			return
		}

		w.Header().Set("Content-Type", "text/html")
		var b strings.Builder
		b.WriteString("<html><body>\n")
		for i, link := range links {
			fmt.Fprintf(&b, `<a href="%s">Download %d</a>`+"\n", link, i+1)
		}
		b.WriteString("</body></html>\n")
		_, _ = w.Write([]byte(b.String()))
	})
	s.Server = httptest.NewServer(s.counted(handler))
	return s
}

// NewErrorServer creates a mock server that always returns the specified error
func NewErrorServer(t *testing.T, statusCode int) *MockServer {
	t.Helper()

	s := &MockServer{}
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(statusCode)
		_, _ = w.Write([]byte(http.StatusText(statusCode)))
	})
	s.Server = httptest.NewServer(s.counted(handler))
	return s
}
