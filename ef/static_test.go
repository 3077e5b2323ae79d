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

	"github.com/go-ef/monoef"
)

func mustStatic(t *testing.T, b int) *StaticEFBuckets {
	t.Helper()
	s, err := NewStaticEFBuckets(b)

	if err != nil {
		t.Fatalf("NewStaticEFBuckets(%d) error: %v", b, err)
	}

	return s
}

func appendAll(t *testing.T, s *StaticEFBuckets, values []uint64) {
	t.Helper()

	for _, v := range values {
		if err := s.Append(v); err != nil {
			t.Fatalf("Append(%d) error: %v", v, err)
		}
	}
}

// TestScenarioOne reproduces spec.md §8 scenario 1.
func TestScenarioOne(t *testing.T) {
	s := mustStatic(t, 4)
	appendAll(t, s, []uint64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9})

	sub := make([]uint64, 0, 5)

	for i := 2; i <= 6; i++ {
		v, err := s.Get(i)

		if err != nil {
			t.Fatalf("Get(%d) error: %v", i, err)
		}

		sub = append(sub, v)
	}

	want := []uint64{2, 3, 4, 5, 6}

	for i, w := range want {
		if sub[i] != w {
			t.Fatalf("subList(2,6) = %v, want %v", sub, want)
		}
	}

	cases := map[uint64]int64{3: 3, 4: 4, 10: -1}

	for x, want := range cases {
		if got := s.NextGEQ(x); got != want {
			t.Errorf("NextGEQ(%d) = %d, want %d", x, got, want)
		}
	}

	appendAll(t, s, []uint64{23, 34, 34, 36, 39})

	if got := s.NextGEQ(36); got != 36 {
		t.Errorf("NextGEQ(36) = %d, want 36", got)
	}
}

// TestScenarioTwo reproduces spec.md §8 scenario 2 (clone independence).
func TestScenarioTwo(t *testing.T) {
	s := mustStatic(t, 4)

	for i := uint64(0); i < 10; i++ {
		s.Append(i)
	}

	clone := s.Clone()
	last, _ := s.Last()

	if err := s.Append(last + 1); err != nil {
		t.Fatalf("Append error: %v", err)
	}

	if clone.Len() != 10 {
		t.Fatalf("clone.Len() = %d, want 10", clone.Len())
	}

	if s.Len() != 11 {
		t.Fatalf("s.Len() = %d, want 11", s.Len())
	}
}

func TestAppendNotMonotone(t *testing.T) {
	s := mustStatic(t, 4)
	s.Append(5)

	if err := s.Append(4); err != monoef.ErrNotMonotone {
		t.Fatalf("Append(4) after 5 error = %v, want ErrNotMonotone", err)
	}
}

func TestGetOutOfBounds(t *testing.T) {
	s := mustStatic(t, 4)
	s.Append(1)

	if _, err := s.Get(5); err != monoef.ErrIndexOutOfBounds {
		t.Fatalf("Get(5) error = %v, want ErrIndexOutOfBounds", err)
	}
}

func TestNonPositiveBucketSize(t *testing.T) {
	if _, err := NewStaticEFBuckets(0); err != monoef.ErrNonPositiveBucketSize {
		t.Fatalf("NewStaticEFBuckets(0) error = %v, want ErrNonPositiveBucketSize", err)
	}
}

func TestRoundTripAndMonotoneRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	n := 5000
	s := mustStatic(t, 37)
	values := make([]uint64, 0, n)
	cur := uint64(0)

	for i := 0; i < n; i++ {
		cur += uint64(rng.Intn(5))
		values = append(values, cur)
		s.Append(cur)
	}

	for i := 0; i < n; i++ {
		got, err := s.Get(i)

		if err != nil {
			t.Fatalf("Get(%d) error: %v", i, err)
		}

		if got != values[i] {
			t.Fatalf("Get(%d) = %d, want %d", i, got, values[i])
		}

		if i > 0 && values[i] < values[i-1] {
			t.Fatalf("input not monotone at %d", i)
		}
	}

	for i := 1; i < n; i++ {
		a, _ := s.Get(i - 1)
		b, _ := s.Get(i)

		if a > b {
			t.Fatalf("monotonicity violated at %d: %d > %d", i, a, b)
		}
	}
}

func TestNextGEQSearchCorrectnessRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(23))
	n := 3000
	s := mustStatic(t, 29)
	values := make([]uint64, 0, n)
	cur := uint64(0)

	for i := 0; i < n; i++ {
		cur += uint64(rng.Intn(7))
		values = append(values, cur)
		s.Append(cur)
	}

	last, _ := s.Last()

	for i := 0; i < 500; i++ {
		x := uint64(rng.Int63n(int64(last) + 2))
		want := int64(-1)

		for _, v := range values {
			if v >= x {
				want = int64(v)
				break
			}
		}

		if got := s.NextGEQ(x); got != want {
			t.Fatalf("NextGEQ(%d) = %d, want %d", x, got, want)
		}
	}

	if got := s.NextGEQ(last + 1); got != -1 {
		t.Fatalf("NextGEQ(last+1) = %d, want -1", got)
	}
}

func TestBucketInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	B := 17
	s := mustStatic(t, B)
	cur := uint64(0)

	for i := 0; i < B*40; i++ {
		cur += uint64(rng.Intn(50))
		s.Append(cur)
	}

	s.buckets.ForEach(func(i int, b *bucket) bool {
		if b.high.Popcount() != B {
			t.Fatalf("bucket popcount = %d, want %d", b.high.Popcount(), B)
		}

		u := b.last - b.prevUpper

		if u > 0 {
			maxL := bitWidthFloor(u, 1) // floor(log2(u))

			if b.l > maxL {
				t.Fatalf("bucket l=%d exceeds floor(log2(u))=%d", b.l, maxL)
			}
		}

		return true
	})
}

func TestTrimToSizeDoesNotIncreaseBits(t *testing.T) {
	s := mustStatic(t, 10)

	for i := uint64(0); i < 103; i++ {
		s.Append(i)
	}

	before := s.Bits()
	s.TrimToSize()

	if s.Bits() > before {
		t.Fatalf("TrimToSize increased Bits(): %d > %d", s.Bits(), before)
	}
}

func TestIterateYieldsInOrder(t *testing.T) {
	s := mustStatic(t, 6)
	var values []uint64

	for i := uint64(0); i < 41; i++ {
		v := i * 2
		values = append(values, v)
		s.Append(v)
	}

	next := s.Iterate()

	for i, want := range values {
		got, ok := next()

		if !ok {
			t.Fatalf("iterator exhausted early at %d", i)
		}

		if got != want {
			t.Fatalf("iterator[%d] = %d, want %d", i, got, want)
		}
	}

	if _, ok := next(); ok {
		t.Fatalf("iterator should be exhausted")
	}
}
