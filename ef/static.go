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
	"sort"

	"github.com/go-ef/monoef"
	"github.com/go-ef/monoef/vecutil"
)

// StaticEFBuckets is the append-only Elias-Fano sequence with a fixed
// bucket size B, per spec.md §4.1. The encoded buckets live in a
// ResizableVec rather than a bare slice, per SPEC_FULL.md §6's container
// contract.
type StaticEFBuckets struct {
	bucketSize int
	buckets    *vecutil.ResizableVec[*bucket]
	tail       []uint64
	n          int
	last       uint64
	hasLast    bool
}

// NewStaticEFBuckets creates an empty sequence with bucket size b.
func NewStaticEFBuckets(b int) (*StaticEFBuckets, error) {
	return NewStaticEFBucketsWithCapacity(b, 0)
}

// NewStaticEFBucketsWithCapacity creates an empty sequence with bucket
// size b. nHint, if positive, must be at least b; it is validated but
// otherwise unused, since ResizableVec already grows by doubling on its
// own.
func NewStaticEFBucketsWithCapacity(b int, nHint int) (*StaticEFBuckets, error) {
	if b <= 0 {
		return nil, monoef.ErrNonPositiveBucketSize
	}

	if nHint > 0 && nHint < b {
		return nil, monoef.ErrCapacityTooSmall
	}

	return &StaticEFBuckets{
		bucketSize: b,
		buckets:    vecutil.NewResizableVec[*bucket](0),
	}, nil
}

// BucketSize returns the fixed bucket size B.
func (this *StaticEFBuckets) BucketSize() int {
	return this.bucketSize
}

// Len returns the number of logical elements stored.
func (this *StaticEFBuckets) Len() int {
	return this.n
}

// Last returns the current last value and whether the sequence is
// non-empty.
func (this *StaticEFBuckets) Last() (uint64, bool) {
	return this.last, this.hasLast
}

// Append adds v to the end of the sequence, flushing a new compressed
// bucket once the tail buffer reaches size B.
func (this *StaticEFBuckets) Append(v uint64) error {
	if this.hasLast && v < this.last {
		return monoef.ErrNotMonotone
	}

	this.tail = append(this.tail, v)
	this.last = v
	this.hasLast = true
	this.n++

	if len(this.tail) == this.bucketSize {
		this.flushTail()
	}

	return nil
}

func (this *StaticEFBuckets) flushTail() {
	var prevUpper uint64

	if this.buckets.Len() > 0 {
		prevUpper = this.buckets.Get(this.buckets.Len() - 1).last
	}

	buk := encodeBucket(this.tail, prevUpper)
	this.buckets.Push(buk)
	this.tail = this.tail[:0]
}

// Get returns the element at index i.
func (this *StaticEFBuckets) Get(i int) (uint64, error) {
	if i < 0 || i >= this.n {
		return 0, monoef.ErrIndexOutOfBounds
	}

	nb := this.buckets.Len()
	flushedN := nb * this.bucketSize

	if i >= flushedN {
		return this.tail[i-flushedN], nil
	}

	b := i / this.bucketSize
	o := i % this.bucketSize
	return decodeAt(this.buckets.Get(b), o), nil
}

// NextGEQ returns the smallest stored value >= x, or monoef.NotFound.
//
// The logical bucket index space used for the search covers the real
// encoded buckets [0, nb) plus one extra index, nb, standing for the tail
// buffer; end(k) is the last value of logical bucket k (a real bucket's
// cached last value, or the sequence's global last for the tail). Because
// end(.) is non-decreasing, the smallest k with end(k) >= x both locates
// the bucket to scan and - since end(k-1) < x whenever k > 0 - realizes
// spec.md §4.1's tie-break ("when x equals a bucket boundary, return b-1
// so the scan sees that boundary value") for free.
func (this *StaticEFBuckets) NextGEQ(x uint64) int64 {
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

	nb := this.buckets.Len()

	end := func(k int) uint64 {
		if k < nb {
			return this.buckets.Get(k).last
		}

		return this.last
	}

	b := sort.Search(nb+1, func(k int) bool { return end(k) >= x })

	if b < nb {
		cur := newBucketCursor(this.buckets.Get(b))

		for {
			v, ok := cur.next()

			if !ok {
				return -1
			}

			if v >= x {
				return int64(v)
			}
		}
	}

	for _, v := range this.tail {
		if v >= x {
			return int64(v)
		}
	}

	return -1
}

// Iterate returns a pull iterator over every stored value in order.
func (this *StaticEFBuckets) Iterate() func() (uint64, bool) {
	bi := 0
	var cur *bucketCursor
	ti := 0

	return func() (uint64, bool) {
		for bi < this.buckets.Len() {
			if cur == nil {
				cur = newBucketCursor(this.buckets.Get(bi))
			}

			if v, ok := cur.next(); ok {
				return v, true
			}

			cur = nil
			bi++
		}

		if ti < len(this.tail) {
			v := this.tail[ti]
			ti++
			return v, true
		}

		return 0, false
	}
}

// Clone returns a deep copy. Encoded buckets are immutable once created
// (StaticEFBuckets never rewrites a bucket in place), so the copy shares
// bucket pointers safely; only the outer vector and the tail buffer -
// which future appends do mutate - are copied into fresh backing storage.
func (this *StaticEFBuckets) Clone() *StaticEFBuckets {
	clone := &StaticEFBuckets{
		bucketSize: this.bucketSize,
		buckets:    vecutil.NewResizableVec[*bucket](0),
		tail:       append([]uint64(nil), this.tail...),
		n:          this.n,
		last:       this.last,
		hasLast:    this.hasLast,
	}

	this.buckets.ForEach(func(i int, b *bucket) bool {
		clone.buckets.Push(b)
		return true
	})

	return clone
}

// Clear discards all elements and returns storage to minimum capacity.
func (this *StaticEFBuckets) Clear() {
	this.buckets.Clear()
	this.tail = nil
	this.n = 0
	this.last = 0
	this.hasLast = false
}

// TrimToSize shrinks backing capacity (the bucket vector and the tail
// buffer) to exactly fit the current length.
func (this *StaticEFBuckets) TrimToSize() {
	this.buckets.TrimToSize()

	if len(this.tail) < cap(this.tail) {
		trimmed := make([]uint64, len(this.tail))
		copy(trimmed, this.tail)
		this.tail = trimmed
	}
}

// Bits returns the total number of bits of backing storage across every
// owned bucket plus the unencoded tail buffer.
func (this *StaticEFBuckets) Bits() uint64 {
	var total uint64

	this.buckets.ForEach(func(i int, b *bucket) bool {
		total += bucketBits(b)
		return true
	})

	total += uint64(len(this.tail)) * 64
	return total
}
