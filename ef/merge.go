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

// threeWayIter implements spec.md §4.3's three-way merge rule over a
// compressed source (a), a sorted addition log (alpha) and a sorted
// deletion log (delta):
//
//	if a < alpha and a < delta: emit a, advance a.
//	elif alpha <= a and alpha < delta: emit alpha, advance alpha.
//	elif alpha == delta: advance both (an addition cancels a deletion).
//	else (delta <= a): if delta == a advance both, else advance delta alone.
type threeWayIter struct {
	srcNext func() (uint64, bool)
	add     []uint64
	del     []uint64
	addIdx  int
	delIdx  int
	aVal    uint64
	aOk     bool
	primed  bool
}

func newThreeWayIter(src func() (uint64, bool), add, del []uint64) *threeWayIter {
	return &threeWayIter{srcNext: src, add: add, del: del}
}

const infinity = ^uint64(0)

func (this *threeWayIter) peekA() (uint64, bool) {
	if !this.primed {
		this.aVal, this.aOk = this.srcNext()
		this.primed = true
	}

	return this.aVal, this.aOk
}

func (this *threeWayIter) advanceA() {
	this.aVal, this.aOk = this.srcNext()
}

func (this *threeWayIter) peekAlpha() (uint64, bool) {
	if this.addIdx < len(this.add) {
		return this.add[this.addIdx], true
	}

	return 0, false
}

func (this *threeWayIter) advanceAlpha() {
	this.addIdx++
}

func (this *threeWayIter) peekDelta() (uint64, bool) {
	if this.delIdx < len(this.del) {
		return this.del[this.delIdx], true
	}

	return 0, false
}

func (this *threeWayIter) advanceDelta() {
	this.delIdx++
}

// next returns the next fused value in order, or ok=false once every
// source is exhausted.
func (this *threeWayIter) next() (uint64, bool) {
	for {
		a, aOk := this.peekA()
		alpha, alphaOk := this.peekAlpha()
		delta, deltaOk := this.peekDelta()

		if !aOk && !alphaOk && !deltaOk {
			return 0, false
		}

		av, alv, dv := infinity, infinity, infinity

		if aOk {
			av = a
		}

		if alphaOk {
			alv = alpha
		}

		if deltaOk {
			dv = delta
		}

		switch {
		case aOk && av < alv && av < dv:
			this.advanceA()
			return av, true
		case alphaOk && alv <= av && alv < dv:
			this.advanceAlpha()
			return alv, true
		case alphaOk && deltaOk && alv == dv:
			this.advanceAlpha()
			this.advanceDelta()
			continue
		case deltaOk:
			if dv == av {
				this.advanceA()
			}

			this.advanceDelta()
			continue
		default:
			// Only 'a' remains and none of the above matched it (can't
			// happen given av < infinity whenever aOk, but guards against
			// an infinite loop if it ever does).
			this.advanceA()
			return av, true
		}
	}
}

// sliceIterator returns a pull iterator over a fixed slice.
func sliceIterator(values []uint64) func() (uint64, bool) {
	i := 0
	return func() (uint64, bool) {
		if i >= len(values) {
			return 0, false
		}

		v := values[i]
		i++
		return v, true
	}
}

// threeWayMerge materializes the fused, sorted result of merging a
// compressed bucket's values with its pending additions and deletions.
func threeWayMerge(compressed, add, del []uint64) []uint64 {
	it := newThreeWayIter(sliceIterator(compressed), add, del)
	out := make([]uint64, 0, len(compressed)+len(add))

	for {
		v, ok := it.next()

		if !ok {
			break
		}

		out = append(out, v)
	}

	return out
}
