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

package vecutil

import "testing"

func assertSums(t *testing.T, p *PrefixSumVec, want []int64) {
	got := p.ToArray()

	if len(got) != len(want) {
		t.Fatalf("ToArray() len = %d, want %d (%v vs %v)", len(got), len(want), got, want)
	}

	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ToArray() = %v, want %v", got, want)
		}
	}
}

// TestScenarioSix reproduces spec.md §8 scenario 6 exactly.
func TestScenarioSix(t *testing.T) {
	p := NewPrefixSumVec(10, 5)
	assertSums(t, p, []int64{10, 20, 30, 40, 50})

	p.SetInt(0, 5)
	assertSums(t, p, []int64{5, 15, 25, 35, 45})

	p.SetInt(1, 17)
	assertSums(t, p, []int64{5, 22, 32, 42, 52})

	p.SetInt(4, 65)
	assertSums(t, p, []int64{5, 22, 32, 42, 107})

	p.SetInt(2, 28)
	assertSums(t, p, []int64{5, 22, 50, 60, 125})
}

func TestIncrDecr(t *testing.T) {
	p := NewPrefixSumVec(4, 3) // [4, 8, 12]
	p.Incr(1)                  // increment 1: 4 -> 5
	assertSums(t, p, []int64{4, 9, 13})
	p.Decr(0)
	assertSums(t, p, []int64{3, 8, 12})
}

func TestAddIntRemoveInt(t *testing.T) {
	p := NewPrefixSumVec(4, 3) // [4, 8, 12]
	p.AddInt(1, 6)             // increments become [4, 6, 4, 4]
	assertSums(t, p, []int64{4, 10, 14, 18})

	if got := p.GetInt(1); got != 6 {
		t.Fatalf("GetInt(1) = %d, want 6", got)
	}

	p.RemoveInt(1)
	assertSums(t, p, []int64{4, 8, 12})
}

func TestBucketOf(t *testing.T) {
	p := NewPrefixSumVec(1, 1)
	p.RemoveInt(0)

	for _, n := range []int64{4, 3, 5} {
		p.AddInt(p.Len(), n)
	}
	// sums: [4, 7, 12]; bucket boundaries at logical indices 0-3 -> 0, 4-6 -> 1, 7-11 -> 2
	cases := map[int64]int{0: 0, 3: 0, 4: 1, 6: 1, 7: 2, 11: 2}

	for i, want := range cases {
		if got := p.BucketOf(i); got != want {
			t.Fatalf("BucketOf(%d) = %d, want %d", i, got, want)
		}
	}
}
