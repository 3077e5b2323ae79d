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
	"math"
	"sort"

	"github.com/go-ef/monoef"
)

// chunk is one segment of AdaptiveEFChunks's geometric schedule: a
// StaticEFBuckets holding values relative to prevUpper, the absolute
// value the chunk's elements are offset from.
type chunk struct {
	s         *StaticEFBuckets
	prevUpper uint64
}

func lastOf(s *StaticEFBuckets) uint64 {
	v, ok := s.Last()

	if !ok {
		return 0
	}

	return v
}

// AdaptiveEFChunks is the append-only sequence whose bucket size grows
// geometrically with the sequence length, per spec.md §4.2, removing the
// need for a caller to pre-tune a fixed B.
type AdaptiveEFChunks struct {
	b0      int
	curB    int
	nThresh int
	next    int
	n0      int64
	msbN0   int
	capHint int
	chunks  []*chunk
	n       int
	last    uint64
	hasLast bool
}

// DefaultAdaptiveB0 is the default initial bucket size (B0), per spec.md
// §4.2.
const DefaultAdaptiveB0 = 32

// NewAdaptiveEFChunks creates an empty adaptive sequence with initial
// bucket size b0. b0 must be >= 16.
func NewAdaptiveEFChunks(b0 int) (*AdaptiveEFChunks, error) {
	if b0 < 16 {
		return nil, monoef.ErrNonPositiveBucketSize
	}

	s, err := NewStaticEFBuckets(b0)

	if err != nil {
		return nil, err
	}

	n0 := int64(b0*128) * int64(b0*128) / 8

	a := &AdaptiveEFChunks{
		b0:      b0,
		curB:    b0,
		nThresh: b0 * b0 / 8,
		n0:      n0,
		msbN0:   floorLog2Int64(n0),
		capHint: b0,
		chunks:  []*chunk{{s: s, prevUpper: 0}},
	}
	return a, nil
}

func floorLog2Int64(x int64) int {
	if x <= 0 {
		return 0
	}

	n := 0

	for x > 1 {
		x >>= 1
		n++
	}

	return n
}

// Len returns the number of logical elements stored.
func (this *AdaptiveEFChunks) Len() int {
	return this.n
}

// Last returns the current last value and whether the sequence is
// non-empty.
func (this *AdaptiveEFChunks) Last() (uint64, bool) {
	return this.last, this.hasLast
}

// Append adds v to the end of the sequence, per spec.md §4.2's append
// policy: grow the current chunk's bucket size up to six times by
// doubling B before spilling into a new chunk with a doubled threshold.
func (this *AdaptiveEFChunks) Append(v uint64) error {
	if this.hasLast && v < this.last {
		return monoef.ErrNotMonotone
	}

	cur := this.chunks[len(this.chunks)-1]

	if err := cur.s.Append(v - cur.prevUpper); err != nil {
		return err
	}

	this.n++
	this.last = v
	this.hasLast = true

	if cur.s.Len() > this.nThresh {
		if this.next < 6 {
			this.growCurrentChunk(cur)
		} else {
			this.spillNewChunk()
		}

		this.next++
	}

	return nil
}

func (this *AdaptiveEFChunks) growCurrentChunk(cur *chunk) {
	values := make([]uint64, 0, cur.s.Len())
	next := cur.s.Iterate()

	for {
		v, ok := next()

		if !ok {
			break
		}

		values = append(values, v)
	}

	this.curB *= 2
	this.capHint *= 2

	rebuilt, _ := NewStaticEFBucketsWithCapacity(this.curB, this.capHint)

	for _, v := range values {
		rebuilt.Append(v)
	}

	cur.s = rebuilt
	this.nThresh = this.curB * this.curB / 8
}

func (this *AdaptiveEFChunks) spillNewChunk() {
	this.nThresh *= 2
	this.curB = int(math.Sqrt(4 * float64(this.nThresh)))
	newS, _ := NewStaticEFBuckets(this.curB)
	this.chunks = append(this.chunks, &chunk{s: newS, prevUpper: this.last})
}

// chunkOf returns the chunk index holding logical element i, and the
// cumulative element count of all chunks before it. Implemented as a
// linear scan over the (at most logarithmically many) chunks rather than
// the source's branch-free closed form - see DESIGN.md.
func (this *AdaptiveEFChunks) chunkOf(i int) (int, int) {
	cum := 0

	for k, c := range this.chunks {
		l := c.s.Len()

		if i < cum+l {
			return k, cum
		}

		cum += l
	}

	last := len(this.chunks) - 1
	return last, cum - this.chunks[last].s.Len()
}

// Get returns the element at index i.
func (this *AdaptiveEFChunks) Get(i int) (uint64, error) {
	if i < 0 || i >= this.n {
		return 0, monoef.ErrIndexOutOfBounds
	}

	k, offset := this.chunkOf(i)
	v, err := this.chunks[k].s.Get(i - offset)

	if err != nil {
		return 0, err
	}

	return v + this.chunks[k].prevUpper, nil
}

// NextGEQ returns the smallest stored value >= x, or monoef.NotFound.
func (this *AdaptiveEFChunks) NextGEQ(x uint64) int64 {
	if this.n == 0 {
		return -1
	}

	if x == 0 {
		v, _ := this.Get(0)
		return int64(v)
	}

	if x > this.last {
		return -1
	}

	nc := len(this.chunks)
	end := func(k int) uint64 { return this.chunks[k].prevUpper + lastOf(this.chunks[k].s) }
	k := sort.Search(nc, func(k int) bool { return end(k) >= x })

	rel := x - this.chunks[k].prevUpper
	r := this.chunks[k].s.NextGEQ(rel)

	if r < 0 {
		return -1
	}

	return r + int64(this.chunks[k].prevUpper)
}

// Iterate returns a pull iterator over every stored value in order.
func (this *AdaptiveEFChunks) Iterate() func() (uint64, bool) {
	ci := 0
	var next func() (uint64, bool)

	return func() (uint64, bool) {
		for ci < len(this.chunks) {
			if next == nil {
				next = this.chunks[ci].s.Iterate()
			}

			if v, ok := next(); ok {
				return v + this.chunks[ci].prevUpper, true
			}

			next = nil
			ci++
		}

		return 0, false
	}
}

// Clone returns a deep copy.
func (this *AdaptiveEFChunks) Clone() *AdaptiveEFChunks {
	clone := &AdaptiveEFChunks{
		b0:      this.b0,
		curB:    this.curB,
		nThresh: this.nThresh,
		next:    this.next,
		n0:      this.n0,
		msbN0:   this.msbN0,
		capHint: this.capHint,
		n:       this.n,
		last:    this.last,
		hasLast: this.hasLast,
	}

	for _, c := range this.chunks {
		clone.chunks = append(clone.chunks, &chunk{s: c.s.Clone(), prevUpper: c.prevUpper})
	}

	return clone
}

// Clear discards all elements, resetting to a single empty chunk at the
// original initial bucket size.
func (this *AdaptiveEFChunks) Clear() {
	fresh, _ := NewAdaptiveEFChunks(this.b0)
	*this = *fresh
}

// TrimToSize shrinks backing capacity across every owned chunk.
func (this *AdaptiveEFChunks) TrimToSize() {
	for _, c := range this.chunks {
		c.s.TrimToSize()
	}
}

// Bits returns the total number of bits of backing storage across every
// owned chunk.
func (this *AdaptiveEFChunks) Bits() uint64 {
	var total uint64

	for _, c := range this.chunks {
		total += c.s.Bits()
	}

	return total
}
