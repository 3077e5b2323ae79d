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

// Package selectindex implements a select1 index over a bitvector.BitVector
// using 1-in-64 sampled hints followed by a bounded forward scan, per
// spec.md §9's guidance that a full succinct rank/select library is not
// required for this port.
package selectindex

import (
	"fmt"

	"github.com/go-ef/monoef/bitvector"
)

// sampleRate is the number of one-bits between consecutive samples. A
// Select1 call costs one sample lookup plus at most sampleRate-1 calls to
// BitVector.NextOne, giving O(1) amortized behavior for the bucket sizes
// this library targets (B up to a few thousand).
const sampleRate = 64

// SimpleSelect answers select1(k) over a BitVector that does not change
// after the index is built.
type SimpleSelect struct {
	bv      *bitvector.BitVector
	samples []int
	popcnt  int
}

// Build constructs a select index over bv. bv must not be mutated after
// this call; SimpleSelect caches no copy of its bits.
func Build(bv *bitvector.BitVector) *SimpleSelect {
	idx := &SimpleSelect{bv: bv}
	pos := -1
	count := 0

	for {
		pos = bv.NextOne(pos + 1)

		if pos < 0 {
			break
		}

		if count%sampleRate == 0 {
			idx.samples = append(idx.samples, pos)
		}

		count++
	}

	idx.popcnt = count
	return idx
}

// Select1 returns the position of the k-th (0-based) one-bit. k must be in
// [0, popcount); out-of-range k panics, mirroring the teacher's convention
// of panicking on programmer-error-class misuse of a low-level primitive
// rather than returning an error (see bitstream.ReadBits/WriteBits).
func (this *SimpleSelect) Select1(k int) int {
	if k < 0 || k >= this.popcnt {
		panic(fmt.Errorf("selectindex: k=%d out of range [0..%d)", k, this.popcnt))
	}

	sampleIdx := k / sampleRate
	remaining := k % sampleRate
	pos := this.samples[sampleIdx]

	for i := 0; i < remaining; i++ {
		pos = this.bv.NextOne(pos + 1)
	}

	return pos
}

// Popcount returns the number of one-bits the index was built over.
func (this *SimpleSelect) Popcount() int {
	return this.popcnt
}

// BitsUsed returns the backing storage of the sampled hint table, in bits.
func (this *SimpleSelect) BitsUsed() uint64 {
	return uint64(len(this.samples)) * 64
}
