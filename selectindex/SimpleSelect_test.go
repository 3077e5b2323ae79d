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

package selectindex

import (
	"math/rand"
	"testing"

	"github.com/go-ef/monoef/bitvector"
)

func TestSelect1Basic(t *testing.T) {
	bv := bitvector.New(20)

	for _, i := range []int{1, 3, 4, 7, 19} {
		bv.Set(i)
	}

	idx := Build(bv)

	if idx.Popcount() != 5 {
		t.Fatalf("Popcount() = %d, want 5", idx.Popcount())
	}

	want := []int{1, 3, 4, 7, 19}

	for k, w := range want {
		if got := idx.Select1(k); got != w {
			t.Errorf("Select1(%d) = %d, want %d", k, got, w)
		}
	}
}

func TestSelect1Random(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	n := 5000
	bv := bitvector.New(n)
	var ones []int

	for i := 0; i < n; i++ {
		if rng.Intn(5) == 0 {
			bv.Set(i)
			ones = append(ones, i)
		}
	}

	idx := Build(bv)

	if idx.Popcount() != len(ones) {
		t.Fatalf("Popcount() = %d, want %d", idx.Popcount(), len(ones))
	}

	for k, want := range ones {
		if got := idx.Select1(k); got != want {
			t.Fatalf("Select1(%d) = %d, want %d", k, got, want)
		}
	}
}

func TestSelect1OutOfRangePanics(t *testing.T) {
	bv := bitvector.New(10)
	bv.Set(2)
	idx := Build(bv)

	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for out-of-range k")
		}
	}()

	idx.Select1(1)
}
