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

// Package ef implements the Elias-Fano bucketed sequence core: the
// per-bucket encoder/decoder (this file), the fixed-bucket append-only
// container (StaticEFBuckets), the geometric chunk schedule
// (AdaptiveEFChunks) and the editable container (DynamicEF).
//
// The bit-packing arithmetic is grounded on
// bitstream.DefaultOutputBitStream.WriteBits / DefaultInputBitStream.ReadBits
// from the retrieval pack's teacher repository; the unary gap code shape of
// a bucket's upper-bits bitmap mirrors entropy.RiceGolombEncoder's quotient
// run, adapted from a streaming bit writer to a random-access packed
// vector plus select index (see packedvec and selectindex).
package ef

import (
	"math/bits"

	"github.com/go-ef/monoef/bitvector"
	"github.com/go-ef/monoef/packedvec"
	"github.com/go-ef/monoef/selectindex"
)

// bucket is an independently encoded group of values, anchored at
// prevUpper (the last value of the previous bucket, or 0 for the first).
type bucket struct {
	prevUpper uint64
	l         int // lower-bit width
	low       *packedvec.PackedLongVector
	high      *bitvector.BitVector
	sel       *selectindex.SimpleSelect
	n         int    // number of elements encoded in this bucket
	last      uint64 // values[n-1], cached to avoid a decode on lookups
}

// bitWidthFloor returns max(0, floor(log2(u/n))), the lower-bit width
// spec.md §4.4 assigns a bucket of n elements spanning universe [0, u].
// Adapted from internal.Log2NoCheck's fast rounded-log2 shape in the
// teacher repository, generalized from uint32 to uint64 and implemented
// with math/bits (unavailable when the teacher's lookup-table version was
// first written) instead of a byte table.
func bitWidthFloor(u uint64, n int) int {
	if n <= 0 {
		return 0
	}

	q := u / uint64(n)

	if q == 0 {
		return 0
	}

	return bits.Len64(q) - 1
}

// encodeBucket builds a compressed bucket from values (already known to
// be sorted and non-decreasing), anchored at prevUpper.
func encodeBucket(values []uint64, prevUpper uint64) *bucket {
	n := len(values)
	last := values[n-1]
	u := last - prevUpper
	l := bitWidthFloor(u, n)

	low := packedvec.New(l)
	low.SetSize(n)

	highLen := n + int(u>>uint(l)) + 1
	high := bitvector.New(highLen)

	for i, v := range values {
		d := v - prevUpper
		low.Set(i, d)
		pos := int(d>>uint(l)) + i
		high.Set(pos)
	}

	sel := selectindex.Build(high)

	return &bucket{
		prevUpper: prevUpper,
		l:         l,
		low:       low,
		high:      high,
		sel:       sel,
		n:         n,
		last:      last,
	}
}

// decodeAt returns the offset-th value (0-based) within the bucket via
// random-access select, per spec.md §4.1's get algorithm.
func decodeAt(b *bucket, offset int) uint64 {
	pos := b.sel.Select1(offset)
	upper := uint64(pos - offset)

	if b.l == 0 {
		return upper + b.prevUpper
	}

	return ((upper << uint(b.l)) | b.low.Get(offset)) + b.prevUpper
}

// infoWord packs (prevUpper<<6)|l the way spec.md §3 describes the info
// vector's on-disk shape. Not used for storage in this port - each bucket
// keeps prevUpper and l as ordinary struct fields, which a Go struct
// already packs at least as efficiently as the source's manual bit
// packing - but it is provided so Bits() accounting and any external
// inspection can reason about the spec's info-vector format directly.
func infoWord(b *bucket) uint64 {
	return (b.prevUpper << 6) | uint64(b.l)
}

// bucketBits returns the number of bits of backing storage a bucket owns:
// its low-bits vector, its upper-bits bitmap, its select index, and one
// info word (64 bits, matching spec.md §3's "one 64-bit word per bucket").
func bucketBits(b *bucket) uint64 {
	return b.low.BitsUsed() + b.high.BitsUsed() + b.sel.BitsUsed() + 64
}

// bucketCursor scans a bucket's values in order using a running
// next-one cursor over the upper-bits bitmap, per spec.md §4.1's
// bucket_iter: cheaper than calling decodeAt (and re-running select) for
// every element of a sequential scan.
type bucketCursor struct {
	b       *bucket
	offset  int
	highPos int
}

func newBucketCursor(b *bucket) *bucketCursor {
	return &bucketCursor{b: b, offset: 0, highPos: -1}
}

// next returns the next value in the bucket, or ok=false once exhausted.
func (this *bucketCursor) next() (uint64, bool) {
	if this.offset >= this.b.n {
		return 0, false
	}

	this.highPos = this.b.high.NextOne(this.highPos + 1)
	upper := uint64(this.highPos - this.offset)

	var v uint64

	if this.b.l == 0 {
		v = upper + this.b.prevUpper
	} else {
		v = ((upper << uint(this.b.l)) | this.b.low.Get(this.offset)) + this.b.prevUpper
	}

	this.offset++
	return v, true
}

// decodeAll decodes every value of a bucket into a freshly allocated
// slice, used when a bucket needs to be fed back through the encoder
// (split, merge, reconstruct, or three-way merge in DynamicEF).
func decodeAll(b *bucket) []uint64 {
	out := make([]uint64, b.n)
	cur := newBucketCursor(b)

	for i := 0; i < b.n; i++ {
		v, _ := cur.next()
		out[i] = v
	}

	return out
}
