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
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/velogen/velogen/adapters/repos/assembly/sdbg"
)

// Refresh folds the structural changes made since the last refresh
// back into the vertex set: vertices marked for deletion are retired
// together with their underlying edges, neighbours that became
// mergeable are collapsed into single vertices, and rings that lost
// their last junction are closed by a dedicated pass, the generic
// merge walk never terminates on them. markChanged additionally flags
// every rebuilt vertex for downstream re-processing.
//
// Refresh is the one mutating phase of the graph. It must not overlap
// with any traversal, adapters from before the call are invalid
// afterwards.
func (g *UnitigGraph) Refresh(markChanged bool) error {
	start := time.Now()

	if err := g.retireMarked(); err != nil {
		return errors.Wrap(err, "retire marked vertices")
	}
	if err := g.mergeAdjacent(markChanged); err != nil {
		return errors.Wrap(err, "merge adjacent paths")
	}
	if err := g.refreshDisconnected(markChanged); err != nil {
		return errors.Wrap(err, "merge disconnected rings")
	}

	dropped := g.compact()
	took := time.Since(start)

	g.metrics.SetVertexCount(len(g.vertices))
	g.metrics.ObserveRefresh(took)

	g.logger.WithFields(logrus.Fields{
		"action":   "unitig_graph_refresh",
		"vertices": len(g.vertices),
		"dropped":  dropped,
		"took":     took,
	}).Debug("unitig graph refreshed")

	return nil
}

func (g *UnitigGraph) retireMarked() error {
	eg := errgroup.Group{}
	for _, shard := range shards(uint64(len(g.vertices)), g.workers) {
		first, last := shard[0], shard[1]
		eg.Go(func() error {
			for id := first; id < last; id++ {
				if g.vertices[id].loadFlags()&flagToDelete == 0 {
					continue
				}

				g.vertices[id].orFlags(flagDeleted)
				if err := g.retireVertex(uint32(id)); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return eg.Wait()
}

// retireVertex withdraws all edges of a vertex from the underlying
// graph, walking each strand from its end backwards. The predecessor
// must be fetched before the edge is invalidated, the pointer is gone
// afterwards. A palindromic vertex shares its edges between both
// strands and is walked once.
func (g *UnitigGraph) retireVertex(id uint32) error {
	a := g.makeSudo(id, StrandForward)

	for strand := uint8(0); strand < 2; strand++ {
		if strand == StrandReverse {
			a.ReverseComplement()
		}

		cur := a.End()
		for cur != a.Begin() {
			prev := g.sdbg.PrevSimplePathEdge(cur)
			if prev == sdbg.NullEdgeID {
				return errors.Errorf("simple path of vertex %d broke at edge %d", id, cur)
			}
			g.sdbg.SetInvalidEdge(cur)
			cur = prev
		}
		g.sdbg.SetInvalidEdge(a.Begin())

		if a.IsPalindrome() {
			break
		}
	}

	return nil
}

func (g *UnitigGraph) mergeAdjacent(markChanged bool) error {
	eg := errgroup.Group{}
	for _, shard := range shards(uint64(len(g.vertices)), g.workers) {
		first, last := shard[0], shard[1]
		eg.Go(func() error {
			var (
				scratch []sudoVertexAdapter
				err     error
			)

			for id := first; id < last; id++ {
				if g.vertices[id].loadFlags()&flagDeleted != 0 {
					continue
				}

				scratch, err = g.mergeRunFrom(uint32(id), scratch, markChanged)
				if err != nil {
					return err
				}
			}
			return nil
		})
	}
	return eg.Wait()
}

// mergeRunFrom merges the run of mergeable vertices headed by id, if
// id heads one on either strand. A run has exactly two heads, one per
// direction, and both walk it: whoever locks both ends first performs
// the merge. The walk itself happens under the walker's own head lock
// only and is read-only, mutation waits for the tail lock. Of two
// competing heads the one with the smaller id may spin for the tail,
// the other backs off and releases its end. Locks stay set after a
// merge, the survivor and the absorbed members are settled for the
// rest of the pass.
func (g *UnitigGraph) mergeRunFrom(id uint32, scratch []sudoVertexAdapter, markChanged bool) ([]sudoVertexAdapter, error) {
	a := g.makeSudo(id, StrandForward)

	for strand := uint8(0); strand < 2; strand++ {
		if strand == StrandReverse {
			a.ReverseComplement()
		}

		prev, ok, err := g.prevSimplePathAdapter(a)
		if err != nil {
			return scratch, err
		}
		if !ok {
			// the opposing head is absorbing this run right now
			break
		}
		if prev.Valid() {
			// not the head of a run on this strand
			continue
		}

		if !g.locks.TrySet(uint64(id)) {
			// the opposing head already owns this run
			break
		}

		scratch = scratch[:0]
		cur := a
		for {
			next, err := g.nextSimplePathAdapter(cur)
			if err != nil {
				return scratch, err
			}
			if !next.Valid() {
				break
			}

			scratch = append(scratch, next)
			// a folded run passes a vertex once per strand
			if len(scratch) > 2*len(g.vertices) {
				return scratch, errors.Errorf("vertex run from %d never terminates", id)
			}
			cur = next
		}

		if len(scratch) == 0 {
			a.setFlag(flagVisited)
			break
		}

		tail := scratch[len(scratch)-1]
		if tail.ID() != id {
			if id < tail.ID() {
				// the smaller head is entitled to the run and waits
				g.locks.Lock(uint64(tail.ID()))
			} else if !g.locks.TrySet(uint64(tail.ID())) {
				// the opposing head holds its end, let it merge
				g.locks.Unlock(uint64(id))
				break
			}
		}

		length := a.Length()
		depth := a.TotalDepth()
		for _, m := range scratch {
			length += m.Length()
			depth += m.TotalDepth()
			// a run folding onto its reverse complement ends in the
			// head itself, which must survive
			if m.ID() != id {
				m.setFlag(flagDeleted)
			}
		}

		a.setBeginEnd(a.Begin(), tail.End(), tail.RBegin(), a.REnd())
		a.setLength(length)
		a.setTotalDepth(depth)
		if markChanged {
			a.setChanged()
		}
		a.setFlag(flagVisited)
		break
	}

	return scratch, nil
}

func (g *UnitigGraph) refreshDisconnected(markChanged bool) error {
	var mu sync.Mutex

	eg := errgroup.Group{}
	for _, shard := range shards(uint64(len(g.vertices)), g.workers) {
		first, last := shard[0], shard[1]
		eg.Go(func() error {
			for id := first; id < last; id++ {
				if g.vertices[id].loadFlags()&(flagDeleted|flagVisited) != 0 {
					continue
				}

				if err := g.closeRing(&mu, uint32(id), markChanged); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return eg.Wait()
}

// closeRing folds the ring of vertices through id into a single
// looped vertex. Every vertex the merge pass left untouched sits on
// such a ring, no vertex of it is a head. Leftover rings are rare, a
// single mutex serializes the walks.
func (g *UnitigGraph) closeRing(mu *sync.Mutex, id uint32, markChanged bool) error {
	mu.Lock()
	defer mu.Unlock()

	if g.vertices[id].loadFlags()&(flagDeleted|flagVisited) != 0 {
		return nil
	}

	head := g.makeSudo(id, StrandForward)
	length := head.Length()
	depth := head.TotalDepth()
	tail := head

	for steps := 0; ; steps++ {
		next, err := g.nextSimplePathAdapter(tail)
		if err != nil {
			return err
		}
		if !next.Valid() {
			return errors.Errorf("vertex ring through %d is broken at vertex %d", id, tail.ID())
		}
		// the ring closes when the walk is back at the head on the
		// strand it started from. A ring folding onto its reverse
		// complement passes the head's opposite strand halfway around,
		// the fold continues the walk and, like the fold of
		// mergeRunFrom, must not absorb the head itself. A vertex whose
		// two strands both lie on the ring is passed once per strand
		// and counted twice, once per run of edges it covers.
		if next.ID() == id && next.Begin() == head.Begin() {
			break
		}

		length += next.Length()
		depth += next.TotalDepth()
		if next.ID() != id {
			next.setFlag(flagDeleted)
		}
		tail = next

		if steps > 2*len(g.vertices) {
			return errors.Errorf("vertex ring through %d never closes", id)
		}
	}

	if tail != head {
		head.setBeginEnd(head.Begin(), tail.End(), tail.RBegin(), head.REnd())
		head.setLength(length)
		head.setTotalDepth(depth)
		if markChanged {
			head.setChanged()
		}
	}

	// The begin comparison inside setBeginEnd misses rings that match
	// their reverse complement only up to a rotation, the minimum edge
	// id over the ring is rotation invariant.
	minID := head.Begin()
	rcMinID := g.sdbg.EdgeReverseComplement(head.Begin())
	cur := head.Begin()
	for i := uint32(1); i < length; i++ {
		cur = g.sdbg.NextSimplePathEdge(cur)
		if cur == sdbg.NullEdgeID {
			return errors.Errorf("vertex ring through %d broke after %d of %d edges", id, i, length)
		}
		minID = min(minID, cur)
		rcMinID = min(rcMinID, g.sdbg.EdgeReverseComplement(cur))
	}
	head.setPalindrome(minID == rcMinID)

	head.setLooped()
	head.setFlag(flagVisited)
	return nil
}

// compact drops the vertices deleted during this refresh and resets
// all transient state. Survivors keep their payload, their compact
// ids shift.
func (g *UnitigGraph) compact() int {
	kept := g.vertices[:0]
	for i := range g.vertices {
		if g.vertices[i].flags&flagDeleted != 0 {
			continue
		}

		v := g.vertices[i]
		v.flags = 0
		kept = append(kept, v)
	}

	dropped := len(g.vertices) - len(kept)
	g.vertices = kept
	g.rebuildIndex()
	return dropped
}
