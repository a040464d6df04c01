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

package assembly

import (
	"math"
	"sync/atomic"
)

const (
	// maxNumVertices keeps vertex ids inside the compact 32-bit id
	// space, reserving the top value as the null id.
	maxNumVertices uint64 = math.MaxUint32 - 1

	// unknownDegree marks an empty per-strand degree cache slot.
	unknownDegree int32 = -1
)

// Transient per-vertex marks consumed by Refresh.
const (
	flagDeleted uint32 = 1 << iota
	flagVisited
	flagToDelete
)

// Vertex is one maximal non-branching path of the underlying graph. It
// stores the first and last edge id of the path on both strands, so a
// single vertex represents the path and its reverse complement at once.
type Vertex struct {
	// strandInfo[strand] holds the {first, last} edge ids of the path
	// read on that strand. Accessed atomically: during a refresh the
	// head probe of one run can touch a neighbouring head whose extents
	// the opposing worker is rewriting at that moment.
	strandInfo      [2][2]uint64
	totalDepth      uint64
	cachedOutDegree [2]int32
	flags           uint32
	length          uint32
	isLooped        bool
	isPalindrome    bool
	isChanged       bool
}

func newVertex(begin, end, rcBegin, rcEnd, totalDepth uint64, length uint32, isLooped bool) Vertex {
	return Vertex{
		strandInfo:      [2][2]uint64{{begin, end}, {rcBegin, rcEnd}},
		totalDepth:      totalDepth,
		cachedOutDegree: [2]int32{unknownDegree, unknownDegree},
		length:          length,
		isLooped:        isLooped,
		isPalindrome:    begin == rcBegin,
	}
}

func (v *Vertex) loadFlags() uint32 {
	return atomic.LoadUint32(&v.flags)
}

func (v *Vertex) orFlags(mask uint32) {
	for {
		old := atomic.LoadUint32(&v.flags)
		if old&mask == mask || atomic.CompareAndSwapUint32(&v.flags, old, old|mask) {
			return
		}
	}
}

func (v *Vertex) resetDegreeCache() {
	atomic.StoreInt32(&v.cachedOutDegree[0], unknownDegree)
	atomic.StoreInt32(&v.cachedOutDegree[1], unknownDegree)
}
