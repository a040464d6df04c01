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

import "sync/atomic"

// Strand selectors for adapter construction.
const (
	StrandForward uint8 = 0
	StrandReverse uint8 = 1
)

// VertexAdapter binds a vertex to one of its two strands. It is a
// small value: copy it freely and pass it by value. Everything it
// reaches on the shared vertex is either immutable between refreshes
// or updated idempotently, so any number of goroutines may traverse
// through adapters of the same vertex.
type VertexAdapter struct {
	vertex *Vertex
	strand uint8
	id     uint32
}

// Valid reports whether the adapter is bound to a vertex. The zero
// adapter is not.
func (a *VertexAdapter) Valid() bool {
	return a.vertex != nil
}

// ID returns the compact id of the bound vertex.
func (a *VertexAdapter) ID() uint32 {
	return a.id
}

// Strand returns the orientation the vertex is read under.
func (a *VertexAdapter) Strand() uint8 {
	return a.strand
}

// Begin returns the first edge id of the path on the current strand.
func (a *VertexAdapter) Begin() uint64 {
	return atomic.LoadUint64(&a.vertex.strandInfo[a.strand][0])
}

// End returns the last edge id of the path on the current strand.
func (a *VertexAdapter) End() uint64 {
	return atomic.LoadUint64(&a.vertex.strandInfo[a.strand][1])
}

// RBegin returns the first edge id of the opposite strand.
func (a *VertexAdapter) RBegin() uint64 {
	return atomic.LoadUint64(&a.vertex.strandInfo[1-a.strand][0])
}

// REnd returns the last edge id of the opposite strand.
func (a *VertexAdapter) REnd() uint64 {
	return atomic.LoadUint64(&a.vertex.strandInfo[1-a.strand][1])
}

// ReverseComplement flips the adapter to the opposite strand in place.
// It touches the handle only, never the vertex.
func (a *VertexAdapter) ReverseComplement() {
	a.strand = 1 - a.strand
}

// Length returns the number of edges on the path.
func (a *VertexAdapter) Length() uint32 {
	return a.vertex.length
}

// TotalDepth returns the summed multiplicity of all path edges.
func (a *VertexAdapter) TotalDepth() uint64 {
	return a.vertex.totalDepth
}

// AvgDepth returns the mean multiplicity per path edge.
func (a *VertexAdapter) AvgDepth() float64 {
	return float64(a.vertex.totalDepth) / float64(a.vertex.length)
}

// IsLoop reports whether the path closes on itself.
func (a *VertexAdapter) IsLoop() bool {
	return a.vertex.isLooped
}

// IsPalindrome reports whether both strands begin at the same edge.
func (a *VertexAdapter) IsPalindrome() bool {
	return a.vertex.isPalindrome
}

// IsChanged reports whether the last Refresh rebuilt this vertex.
func (a *VertexAdapter) IsChanged() bool {
	return a.vertex.isChanged
}

// IsToDelete reports whether the vertex is marked for removal on the
// next Refresh.
func (a *VertexAdapter) IsToDelete() bool {
	return a.vertex.loadFlags()&flagToDelete != 0
}

func (a *VertexAdapter) cachedOutDegree() int32 {
	return atomic.LoadInt32(&a.vertex.cachedOutDegree[a.strand])
}

// setCachedOutDegree publishes a freshly computed out-degree. Racing
// writers always store the same value: between refreshes the cache
// only ever moves from unknown to one known degree.
func (a *VertexAdapter) setCachedOutDegree(degree int32) {
	atomic.StoreInt32(&a.vertex.cachedOutDegree[a.strand], degree)
}

// sudoVertexAdapter adds structural mutation rights on top of the
// public handle. Only the rebuild machinery holds one; mutating
// callers follow the locking rules laid out in Refresh.
type sudoVertexAdapter struct {
	VertexAdapter
}

// setBeginEnd rewrites the path extents relative to the adapter's
// current strand and drops the now stale degree cache.
func (a *sudoVertexAdapter) setBeginEnd(begin, end, rcBegin, rcEnd uint64) {
	atomic.StoreUint64(&a.vertex.strandInfo[a.strand][0], begin)
	atomic.StoreUint64(&a.vertex.strandInfo[a.strand][1], end)
	atomic.StoreUint64(&a.vertex.strandInfo[1-a.strand][0], rcBegin)
	atomic.StoreUint64(&a.vertex.strandInfo[1-a.strand][1], rcEnd)
	a.vertex.isPalindrome = begin == rcBegin
	a.vertex.resetDegreeCache()
}

func (a *sudoVertexAdapter) setLength(length uint32) {
	a.vertex.length = length
}

func (a *sudoVertexAdapter) setTotalDepth(depth uint64) {
	a.vertex.totalDepth = depth
}

func (a *sudoVertexAdapter) setChanged() {
	a.vertex.isChanged = true
}

func (a *sudoVertexAdapter) setLooped() {
	a.vertex.isLooped = true
}

func (a *sudoVertexAdapter) setPalindrome(p bool) {
	a.vertex.isPalindrome = p
}

func (a *sudoVertexAdapter) setFlag(mask uint32) {
	a.vertex.orFlags(mask)
}
