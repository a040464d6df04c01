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
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/velogen/velogen/adapters/repos/assembly/sdbg"
)

var errUnboundAdapter = errors.New("adapter is not bound to a vertex")

// GetNextAdapters collects the vertices reachable through the outgoing
// edges of the adapter's last edge. Results are written into out in
// alphabet order and the number of successors is returned. The walk
// also fills the vertex's out-degree cache for this strand if it was
// still unknown.
func (g *UnitigGraph) GetNextAdapters(a VertexAdapter, out *[sdbg.AlphabetSize]VertexAdapter) (int, error) {
	return g.nextAdapters(a, out)
}

// GetPrevAdapters collects the vertices that reach the adapter through
// its first edge, i.e. the successors of the reverse complement,
// flipped back.
func (g *UnitigGraph) GetPrevAdapters(a VertexAdapter, out *[sdbg.AlphabetSize]VertexAdapter) (int, error) {
	return g.prevAdapters(a, out)
}

// OutDegree returns the number of successor vertices on the adapter's
// strand. It is answered from the per-strand cache when possible and
// falls back to a successor walk otherwise.
func (g *UnitigGraph) OutDegree(a VertexAdapter) (int, error) {
	if !a.Valid() {
		return 0, errUnboundAdapter
	}

	if d := a.cachedOutDegree(); d != unknownDegree {
		atomic.AddUint64(&degreeCacheHits, 1)
		g.metrics.DegreeCacheHit()
		return int(d), nil
	}

	atomic.AddUint64(&degreeCacheMisses, 1)
	g.metrics.DegreeCacheMiss()
	return g.nextAdapters(a, nil)
}

// InDegree returns the number of predecessor vertices on the adapter's
// strand. It equals the out-degree of the opposite strand, cache
// included.
func (g *UnitigGraph) InDegree(a VertexAdapter) (int, error) {
	if !a.Valid() {
		return 0, errUnboundAdapter
	}

	a.ReverseComplement()
	return g.OutDegree(a)
}

// nextAdapters is the one adjacency implementation everything else is
// phrased in terms of. out may be nil when only the count is wanted.
func (g *UnitigGraph) nextAdapters(a VertexAdapter, out *[sdbg.AlphabetSize]VertexAdapter) (int, error) {
	if !a.Valid() {
		return 0, errUnboundAdapter
	}

	var starts [sdbg.AlphabetSize]uint64
	degree := g.sdbg.OutgoingEdges(a.End(), &starts)

	for i := 0; i < degree; i++ {
		next, err := g.adapterFromEdgeID(starts[i])
		if err != nil {
			return 0, err
		}
		if out != nil {
			out[i] = next
		}
	}

	if a.cachedOutDegree() == unknownDegree {
		a.setCachedOutDegree(int32(degree))
	}

	return degree, nil
}

func (g *UnitigGraph) prevAdapters(a VertexAdapter, out *[sdbg.AlphabetSize]VertexAdapter) (int, error) {
	if !a.Valid() {
		return 0, errUnboundAdapter
	}

	a.ReverseComplement()
	degree, err := g.nextAdapters(a, out)
	if err != nil {
		return 0, err
	}

	if out != nil {
		for i := 0; i < degree; i++ {
			out[i].ReverseComplement()
		}
	}

	return degree, nil
}

// adapterFromEdgeID resolves an edge id to the adapter of the vertex
// beginning with that edge, oriented so that Begin() == edgeID.
func (g *UnitigGraph) adapterFromEdgeID(edgeID uint64) (VertexAdapter, error) {
	a, ok, err := g.orientedAdapter(edgeID)
	if err != nil {
		return VertexAdapter{}, err
	}
	if !ok {
		return VertexAdapter{}, errors.Errorf("vertex %d does not begin with edge %d on either strand",
			g.idMap[edgeID], edgeID)
	}

	return a, nil
}

// orientedAdapter is the lookup behind adapterFromEdgeID. ok is false
// when the registered vertex no longer begins with edgeID on either
// strand, which between refreshes cannot happen, but during a refresh
// means a merge is rewriting the extents right now.
func (g *UnitigGraph) orientedAdapter(edgeID uint64) (VertexAdapter, bool, error) {
	id, ok := g.idMap[edgeID]
	if !ok {
		return VertexAdapter{}, false, errors.Errorf("edge %d is not a registered vertex endpoint", edgeID)
	}

	a := g.makeAdapter(id, StrandForward)
	if a.Begin() == edgeID {
		return a, true, nil
	}
	a.ReverseComplement()
	if a.Begin() == edgeID {
		return a, true, nil
	}

	return VertexAdapter{}, false, nil
}

// nextSimplePathAdapter returns the unique simple-path successor, or
// an unbound adapter at a branch or dead end.
func (g *UnitigGraph) nextSimplePathAdapter(a sudoVertexAdapter) (sudoVertexAdapter, error) {
	next := g.sdbg.NextSimplePathEdge(a.End())
	if next == sdbg.NullEdgeID {
		return sudoVertexAdapter{}, nil
	}

	na, err := g.adapterFromEdgeID(next)
	if err != nil {
		return sudoVertexAdapter{}, err
	}
	return sudoVertexAdapter{na}, nil
}

// prevSimplePathAdapter mirrors nextSimplePathAdapter through the
// reverse complement. Unlike the forward walk it runs before the
// prober holds any lock bit, so it can observe a predecessor whose
// extents the opposing head of the run is rewriting at this very
// moment. ok is false in that case: the run is settled by the opposing
// head and the caller must back off, not treat itself as a head.
func (g *UnitigGraph) prevSimplePathAdapter(a sudoVertexAdapter) (sudoVertexAdapter, bool, error) {
	prev := g.sdbg.NextSimplePathEdge(a.REnd())
	if prev == sdbg.NullEdgeID {
		return sudoVertexAdapter{}, true, nil
	}

	pa, ok, err := g.orientedAdapter(prev)
	if err != nil || !ok {
		return sudoVertexAdapter{}, ok, err
	}

	pa.ReverseComplement()
	return sudoVertexAdapter{pa}, true, nil
}
