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

// Package packedvec implements a fixed-width packed integer vector: n
// values of at most 64 bits each, stored back to back across 64-bit words.
//
// The cross-word packing arithmetic is adapted from
// bitstream.DefaultOutputBitStream.WriteBits / DefaultInputBitStream.ReadBits
// in the retrieval pack's teacher repository, generalized from a streaming
// writer/reader cursor to direct index-addressed set/get.
package packedvec

import "github.com/go-ef/monoef/bitvector"

// PackedLongVector stores values of a fixed bit width, set once at
// construction and never resized wider - an Elias-Fano bucket's low-bits
// vector has one width per bucket, chosen when the bucket is encoded.
type PackedLongVector struct {
	width int
	mask  uint64
	words []uint64
	size  int
}

// New creates a packed vector with the given bit width in [0, 64].
// A width of 0 is legal (every value collapses to 0, as happens when a
// bucket's universe fits entirely in its upper bits).
func New(width int) *PackedLongVector {
	if width < 0 || width > 64 {
		panic("packedvec: width out of range [0..64]")
	}

	p := &PackedLongVector{width: width}

	if width == 64 {
		p.mask = ^uint64(0)
	} else {
		p.mask = (uint64(1) << width) - 1
	}

	return p
}

// SetSize reserves backing storage for at least n elements without
// disturbing values already stored below n.
func (this *PackedLongVector) SetSize(n int) {
	if n <= this.size {
		this.size = n
		return
	}

	needBits := n * this.width
	needWords := (needBits + 63) >> 6

	if needWords > len(this.words) {
		grown := make([]uint64, needWords)
		copy(grown, this.words)
		this.words = grown
	}

	this.size = n
}

// Set stores v, truncated to the vector's bit width, at index i.
func (this *PackedLongVector) Set(i int, v uint64) {
	if this.width == 0 {
		return
	}

	v &= this.mask
	bitPos := i * this.width
	wordIdx := bitPos >> 6
	bitOff := uint(bitPos & 63)

	this.words[wordIdx] &^= this.mask << bitOff
	this.words[wordIdx] |= v << bitOff

	if bitOff+uint(this.width) > 64 {
		spill := bitOff + uint(this.width) - 64
		this.words[wordIdx+1] &^= (uint64(1) << spill) - 1
		this.words[wordIdx+1] |= v >> (uint(this.width) - spill)
	}
}

// Get returns the value stored at index i.
func (this *PackedLongVector) Get(i int) uint64 {
	if this.width == 0 {
		return 0
	}

	bitPos := i * this.width
	wordIdx := bitPos >> 6
	bitOff := uint(bitPos & 63)
	val := this.words[wordIdx] >> bitOff

	if bitOff+uint(this.width) > 64 {
		spill := bitOff + uint(this.width) - 64
		val |= this.words[wordIdx+1] << (uint(this.width) - spill)
	}

	return val & this.mask
}

// Width returns the fixed bit width of every stored element.
func (this *PackedLongVector) Width() int {
	return this.width
}

// Len returns the number of elements the vector is currently sized for.
func (this *PackedLongVector) Len() int {
	return this.size
}

// AsBits exposes the packed storage as a raw BitVector, used by callers
// that account for total storage in bits.
func (this *PackedLongVector) AsBits() *bitvector.BitVector {
	bv := bitvector.New(len(this.words) * 64)

	for wi, w := range this.words {
		for b := 0; b < 64; b++ {
			if w&(uint64(1)<<uint(b)) != 0 {
				bv.Set(wi*64 + b)
			}
		}
	}

	return bv
}

// BitsUsed returns the total number of bits of backing storage.
func (this *PackedLongVector) BitsUsed() uint64 {
	return uint64(len(this.words)) * 64
}

// TrimToSize shrinks backing storage to exactly fit the current length.
func (this *PackedLongVector) TrimToSize() {
	needWords := (this.size*this.width + 63) >> 6

	if needWords < len(this.words) {
		trimmed := make([]uint64, needWords)
		copy(trimmed, this.words)
		this.words = trimmed
	}
}
