//               _
// __   __  ___ | |  ___    __ _   ___  _ __
// \ \ / / / _ \| | / _ \  / _` | / _ \| '_ \
//  \ V / |  __/| || (_) || (_| ||  __/| | | |
//   \_/   \___||_| \___/  \__, | \___||_| |_|
//                         |___/
//
//  Copyright © 2019 - 2026 Velogen Labs. All rights reserved.
//
//  CONTACT: hello@velogen.io
//

package bitvector

import "sync/atomic"

const bitsPerWord = 64

// Atomic is a fixed-size bit vector whose bits can be set, tested and
// cleared concurrently. A set bit doubles as a spin lock when paired
// with TrySet/Lock/Unlock.
type Atomic struct {
	words []uint64
	size  uint64
}

func NewAtomic(size uint64) *Atomic {
	v := &Atomic{}
	v.Reset(size)
	return v
}

// Reset resizes the vector to size bits and clears all of them. It must
// not race with any other method.
func (v *Atomic) Reset(size uint64) {
	n := (size + bitsPerWord - 1) / bitsPerWord
	if uint64(cap(v.words)) >= n {
		v.words = v.words[:n]
		for i := range v.words {
			v.words[i] = 0
		}
	} else {
		v.words = make([]uint64, n)
	}
	v.size = size
}

func (v *Atomic) Size() uint64 {
	return v.size
}

func (v *Atomic) IsSet(i uint64) bool {
	return atomic.LoadUint64(&v.words[i/bitsPerWord])&(1<<(i%bitsPerWord)) != 0
}

// TrySet sets bit i and reports whether this call was the one that set
// it. It returns false if the bit was already set.
func (v *Atomic) TrySet(i uint64) bool {
	w, mask := i/bitsPerWord, uint64(1)<<(i%bitsPerWord)
	for {
		old := atomic.LoadUint64(&v.words[w])
		if old&mask != 0 {
			return false
		}
		if atomic.CompareAndSwapUint64(&v.words[w], old, old|mask) {
			return true
		}
	}
}

// Lock spins until it sets bit i.
func (v *Atomic) Lock(i uint64) {
	for !v.TrySet(i) {
	}
}

// Unlock clears bit i.
func (v *Atomic) Unlock(i uint64) {
	w, mask := i/bitsPerWord, uint64(1)<<(i%bitsPerWord)
	for {
		old := atomic.LoadUint64(&v.words[w])
		if atomic.CompareAndSwapUint64(&v.words[w], old, old&^mask) {
			return
		}
	}
}
