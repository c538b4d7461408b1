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

package state

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"
)

func benchState(sources int) *DatasetState {
	s := Empty()
	s.LastCheck = time.Now()
	s.FetchSuccess = true
	for i := 0; i < sources; i++ {
		key := fmt.Sprintf("source_%d", i)
		s.Sources[key] = SourceRecord{
			Exists:      true,
			ContentHash: fmt.Sprintf("%064d", i),
			File:        key + ".json",
		}
	}
	return s
}

// BenchmarkSave measures the cost of one atomic state write.
func BenchmarkSave(b *testing.B) {
	for _, n := range []int{3, 30, 300} {
		b.Run(fmt.Sprintf("Sources_%d", n), func(b *testing.B) {
			tempDir := b.TempDir()
			stateFile := filepath.Join(tempDir, "data-state.json")
			s := benchState(n)

			b.ResetTimer()
			b.ReportAllocs()

			for i := 0; i < b.N; i++ {
				if err := Save(s, stateFile); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkLoad measures checksum-validated state reads.
func BenchmarkLoad(b *testing.B) {
	for _, n := range []int{3, 30, 300} {
		b.Run(fmt.Sprintf("Sources_%d", n), func(b *testing.B) {
			tempDir := b.TempDir()
			stateFile := filepath.Join(tempDir, "data-state.json")
			if err := Save(benchState(n), stateFile); err != nil {
				b.Fatal(err)
			}

			b.ResetTimer()
			b.ReportAllocs()

			for i := 0; i < b.N; i++ {
				if s := Load(stateFile); len(s.Sources) != n {
					b.Fatalf("expected %d sources, got %d", n, len(s.Sources))
				}
			}
		})
	}
}
