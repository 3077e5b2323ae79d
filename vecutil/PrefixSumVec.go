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

// PrefixSumVec maintains the prefix sums of a sequence of integer
// increments, used by the ef package as the "sizes" vector: the prefix
// sum up through bucket b gives the logical start index of bucket b+1,
// and BucketOf lets DynamicEF locate the bucket containing a logical
// index by binary search without recomputing sums from scratch.
package vecutil

// PrefixSumVec stores cumulative sums sums[i] = increment[0] + ... +
// increment[i]. Mutating operations keep every later prefix sum
// consistent with the new increment in O(n) time, n being the number of
// increments (buckets), not the number of underlying sequence elements.
type PrefixSumVec struct {
	sums []int64
}

// NewPrefixSumVec populates a vector of n increments each equal to
// initValue, so Get(i) == initValue*(i+1).
func NewPrefixSumVec(initValue int64, n int) *PrefixSumVec {
	sums := make([]int64, n)
	running := int64(0)

	for i := 0; i < n; i++ {
		running += initValue
		sums[i] = running
	}

	return &PrefixSumVec{sums: sums}
}

// Len returns the number of increments.
func (this *PrefixSumVec) Len() int {
	return len(this.sums)
}

// Get returns the prefix sum through index i.
func (this *PrefixSumVec) Get(i int) int64 {
	return this.sums[i]
}

// GetInt returns the i-th increment (not the cumulative sum).
func (this *PrefixSumVec) GetInt(i int) int64 {
	if i == 0 {
		return this.sums[0]
	}

	return this.sums[i] - this.sums[i-1]
}

// SetInt replaces the i-th increment with v, shifting every later prefix
// sum by the resulting delta.
func (this *PrefixSumVec) SetInt(i int, v int64) {
	delta := v - this.GetInt(i)
	this.shiftFrom(i, delta)
}

// AddInt inserts a new increment v at position i, so what was increment i
// becomes increment i+1. All prefix sums at or after i grow by v, and a
// new prefix sum is inserted for position i.
func (this *PrefixSumVec) AddInt(i int, v int64) {
	before := int64(0)

	if i > 0 {
		before = this.sums[i-1]
	}

	this.sums = append(this.sums, 0)
	copy(this.sums[i+1:], this.sums[i:len(this.sums)-1])
	this.sums[i] = before + v

	for j := i + 1; j < len(this.sums); j++ {
		this.sums[j] += v
	}
}

// RemoveInt deletes the i-th increment, shifting all later prefix sums
// down by its value.
func (this *PrefixSumVec) RemoveInt(i int) {
	v := this.GetInt(i)
	copy(this.sums[i:], this.sums[i+1:])
	this.sums = this.sums[:len(this.sums)-1]

	for j := i; j < len(this.sums); j++ {
		this.sums[j] -= v
	}
}

// Incr increases the i-th increment by 1.
func (this *PrefixSumVec) Incr(i int) {
	this.shiftFrom(i, 1)
}

// Decr decreases the i-th increment by 1.
func (this *PrefixSumVec) Decr(i int) {
	this.shiftFrom(i, -1)
}

func (this *PrefixSumVec) shiftFrom(i int, delta int64) {
	for j := i; j < len(this.sums); j++ {
		this.sums[j] += delta
	}
}

// Clone returns a deep copy.
func (this *PrefixSumVec) Clone() *PrefixSumVec {
	return &PrefixSumVec{sums: append([]int64(nil), this.sums...)}
}

// ToArray returns a copy of the prefix sums.
func (this *PrefixSumVec) ToArray() []int64 {
	out := make([]int64, len(this.sums))
	copy(out, this.sums)
	return out
}

// BucketOf returns the smallest index b such that the cumulative sum
// through b is strictly greater than the logical index i - i.e. the
// bucket containing logical element i - via binary search over the
// prefix sums.
func (this *PrefixSumVec) BucketOf(i int64) int {
	lo, hi := 0, len(this.sums)-1

	for lo < hi {
		mid := (lo + hi) / 2

		if this.sums[mid] > i {
			hi = mid
		} else {
			lo = mid + 1
		}
	}

	return lo
}
