/*
Copyright 2026 The monoef Authors
Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
you may obtain a copy of the License at

                http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package ef

import (
	"math/rand"
	"testing"
)

func TestAdaptiveRoundTripAndNextGEQ(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	a, err := NewAdaptiveEFChunks(DefaultAdaptiveB0)

	if err != nil {
		t.Fatalf("NewAdaptiveEFChunks error: %v", err)
	}

	n := 300000
	values := make([]uint64, 0, n)
	cur := uint64(0)

	for i := 0; i < n; i++ {
		cur += uint64(rng.Intn(2000) + 1)
		values = append(values, cur)

		if err := a.Append(cur); err != nil {
			t.Fatalf("Append(%d) error: %v", cur, err)
		}
	}

	if a.Len() != n {
		t.Fatalf("Len() = %d, want %d", a.Len(), n)
	}

	for _, i := range []int{0, 1, n / 2, n - 1} {
		got, err := a.Get(i)

		if err != nil {
			t.Fatalf("Get(%d) error: %v", i, err)
		}

		if got != values[i] {
			t.Fatalf("Get(%d) = %d, want %d", i, got, values[i])
		}
	}

	last, _ := a.Last()

	for i := 0; i < 200; i++ {
		x := uint64(rng.Int63n(int64(last) + 1))
		geq := a.NextGEQ(x)

		if geq < 0 {
			t.Fatalf("NextGEQ(%d) returned -1, but x <= last", x)
		}

		idx := indexOfValue(values, uint64(geq))

		if idx < 0 {
			t.Fatalf("NextGEQ(%d) = %d is not a member of the sequence", x, geq)
		}

		if idx > 0 && values[idx-1] >= x {
			t.Fatalf("NextGEQ(%d) = %d is not the smallest value >= x (values[%d]=%d)", x, geq, idx-1, values[idx-1])
		}
	}
}

// indexOfValue returns the first index of v in a sorted slice, or -1.
func indexOfValue(values []uint64, v uint64) int {
	lo, hi := 0, len(values)

	for lo < hi {
		mid := (lo + hi) / 2

		if values[mid] < v {
			lo = mid + 1
		} else {
			hi = mid
		}
	}

	if lo < len(values) && values[lo] == v {
		return lo
	}

	return -1
}

func TestAdaptiveCloneIndependence(t *testing.T) {
	a, _ := NewAdaptiveEFChunks(16)

	for i := uint64(0); i < 500; i++ {
		a.Append(i)
	}

	clone := a.Clone()
	last, _ := a.Last()
	a.Append(last + 1)

	if clone.Len() != 500 {
		t.Fatalf("clone.Len() = %d, want 500", clone.Len())
	}

	if a.Len() != 501 {
		t.Fatalf("a.Len() = %d, want 501", a.Len())
	}
}

func TestAdaptiveClear(t *testing.T) {
	a, _ := NewAdaptiveEFChunks(16)

	for i := uint64(0); i < 1000; i++ {
		a.Append(i)
	}

	a.Clear()

	if a.Len() != 0 {
		t.Fatalf("Len() after Clear = %d, want 0", a.Len())
	}

	if err := a.Append(5); err != nil {
		t.Fatalf("Append after Clear error: %v", err)
	}

	if a.Len() != 1 {
		t.Fatalf("Len() after Clear+Append = %d, want 1", a.Len())
	}
}
