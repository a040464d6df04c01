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
	"io"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/velogen/velogen/adapters/repos/assembly/sdbg"
	"github.com/velogen/velogen/entities/bitvector"
	"github.com/velogen/velogen/usecases/monitoring"
)

type Config struct {
	Graph      sdbg.Graph
	Logger     logrus.FieldLogger
	Prometheus *monitoring.PrometheusMetrics

	// Workers caps the parallelism of construction and refresh
	// passes. Zero or negative means GOMAXPROCS.
	Workers int
}

func (c Config) Validate() error {
	if c.Graph == nil {
		return errors.New("config requires a succinct de Bruijn graph")
	}
	return nil
}

// UnitigGraph condenses the simple paths of a succinct de Bruijn graph
// into vertices, one per path and reverse-complement pair. Adapters
// pick the orientation a vertex is read under. All traversal methods
// are safe for concurrent use, structural changes go through
// MarkToDelete or the underlying graph's SetInvalidEdge followed by a
// single Refresh.
type UnitigGraph struct {
	sdbg     sdbg.Graph
	vertices []Vertex
	idMap    map[uint64]uint32
	locks    *bitvector.Atomic
	k        int
	workers  int
	logger   logrus.FieldLogger
	metrics  *Metrics
}

func NewUnitigGraph(cfg Config) (*UnitigGraph, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "init unitig graph")
	}

	logger := cfg.Logger
	if logger == nil {
		l := logrus.New()
		l.Out = io.Discard
		logger = l
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	g := &UnitigGraph{
		sdbg:    cfg.Graph,
		k:       cfg.Graph.K(),
		workers: workers,
		logger:  logger,
		metrics: newMetrics(cfg.Prometheus, cfg.Graph.K()),
	}

	start := time.Now()
	covered := bitvector.NewAtomic(g.sdbg.NumEdges())

	if err := g.buildPathVertices(covered); err != nil {
		return nil, errors.Wrap(err, "walk simple paths")
	}

	if err := g.buildLoopVertices(covered); err != nil {
		return nil, errors.Wrap(err, "walk cyclic paths")
	}

	if uint64(len(g.vertices)) > maxNumVertices {
		return nil, errors.Errorf("%d unitigs exceed the vertex id space", len(g.vertices))
	}

	g.rebuildIndex()
	g.metrics.SetVertexCount(len(g.vertices))

	palindromes := 0
	for i := range g.vertices {
		if g.vertices[i].isPalindrome {
			palindromes++
		}
	}

	g.logger.WithFields(logrus.Fields{
		"action":      "unitig_graph_build",
		"k":           g.k,
		"vertices":    len(g.vertices),
		"palindromes": palindromes,
		"took":        time.Since(start),
	}).Info("unitig graph built")

	return g, nil
}

// buildPathVertices turns every maximal simple path into a vertex.
// Both tails of a path pair walk it backwards, the one with the larger
// edge id keeps the pair. The walks are read-only, the coverage marks
// only spare the cycle pass the re-walk.
func (g *UnitigGraph) buildPathVertices(covered *bitvector.Atomic) error {
	var (
		mu       sync.Mutex
		numEdges = g.sdbg.NumEdges()
	)

	eg := errgroup.Group{}
	for _, shard := range shards(numEdges, g.workers) {
		first, last := shard[0], shard[1]
		eg.Go(func() error {
			var local []Vertex

			for e := first; e < last; e++ {
				if !g.sdbg.IsValidEdge(e) {
					continue
				}
				if g.sdbg.NextSimplePathEdge(e) != sdbg.NullEdgeID {
					continue
				}

				begin := e
				depth := uint64(g.sdbg.EdgeMultiplicity(e))
				length := uint32(1)
				covered.TrySet(e)

				for {
					prev := g.sdbg.PrevSimplePathEdge(begin)
					if prev == sdbg.NullEdgeID {
						break
					}
					begin = prev
					depth += uint64(g.sdbg.EdgeMultiplicity(prev))
					length++
					covered.TrySet(prev)
					if uint64(length) > numEdges {
						return errors.Errorf("simple path ending at edge %d is longer than the graph", e)
					}
				}

				rcEnd := g.sdbg.EdgeReverseComplement(begin)
				if e < rcEnd {
					// the opposing tail keeps this pair
					continue
				}

				rcBegin := g.sdbg.EdgeReverseComplement(e)
				local = append(local, newVertex(begin, e, rcBegin, rcEnd, depth, length, false))
			}

			mu.Lock()
			g.vertices = append(g.vertices, local...)
			mu.Unlock()
			return nil
		})
	}

	return eg.Wait()
}

// buildLoopVertices picks up the edges the path pass could not cover,
// which all lie on simple-path rings.
func (g *UnitigGraph) buildLoopVertices(covered *bitvector.Atomic) error {
	var mu sync.Mutex

	eg := errgroup.Group{}
	for _, shard := range shards(g.sdbg.NumEdges(), g.workers) {
		first, last := shard[0], shard[1]
		eg.Go(func() error {
			for e := first; e < last; e++ {
				if covered.IsSet(e) || !g.sdbg.IsValidEdge(e) {
					continue
				}
				if err := g.claimRing(covered, &mu, e); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return eg.Wait()
}

// claimRing walks the simple-path ring through e and records it as a
// looped vertex. Rings are rare once the chains are covered, a single
// mutex serializes the walks. A ring and its reverse complement are
// walked once each, the one holding the smaller minimum edge id keeps
// the vertex.
func (g *UnitigGraph) claimRing(covered *bitvector.Atomic, mu *sync.Mutex, e uint64) error {
	mu.Lock()
	defer mu.Unlock()

	if covered.IsSet(e) {
		return nil
	}

	var (
		numEdges = g.sdbg.NumEdges()
		depth    = uint64(g.sdbg.EdgeMultiplicity(e))
		length   = uint32(1)
		minID    = e
		rcMinID  = g.sdbg.EdgeReverseComplement(e)
	)
	covered.TrySet(e)

	cur := e
	for {
		next := g.sdbg.NextSimplePathEdge(cur)
		if next == sdbg.NullEdgeID {
			return errors.Errorf("edge %d escapes its cycle", cur)
		}
		if next == e {
			break
		}

		cur = next
		depth += uint64(g.sdbg.EdgeMultiplicity(cur))
		length++
		minID = min(minID, cur)
		rcMinID = min(rcMinID, g.sdbg.EdgeReverseComplement(cur))
		covered.TrySet(cur)
		if uint64(length) > numEdges {
			return errors.Errorf("cycle walk from edge %d never closed", e)
		}
	}

	if minID > rcMinID {
		// the reverse complement ring keeps this one
		return nil
	}

	begin := g.sdbg.NextSimplePathEdge(e)
	v := newVertex(begin, e,
		g.sdbg.EdgeReverseComplement(e), g.sdbg.EdgeReverseComplement(begin),
		depth, length, true)

	// A ring equal to its own reverse complement folds both strands
	// over the same edges, it must be retired with a single walk. The
	// begin comparison inside newVertex misses the rotated cases.
	v.isPalindrome = minID == rcMinID

	g.vertices = append(g.vertices, v)
	return nil
}

// rebuildIndex rewires edge ids to vertex ids and resizes the lock
// bits. Both strand heads are registered so adapterFromEdgeID can
// orient an adapter without probing the underlying graph.
func (g *UnitigGraph) rebuildIndex() {
	g.idMap = make(map[uint64]uint32, 2*len(g.vertices))
	for i := range g.vertices {
		g.idMap[g.vertices[i].strandInfo[0][0]] = uint32(i)
		g.idMap[g.vertices[i].strandInfo[1][0]] = uint32(i)
	}

	if g.locks == nil {
		g.locks = bitvector.NewAtomic(uint64(len(g.vertices)))
	} else {
		g.locks.Reset(uint64(len(g.vertices)))
	}
}

// Size returns the number of vertices currently held.
func (g *UnitigGraph) Size() uint32 {
	return uint32(len(g.vertices))
}

// K returns the k-mer size of the underlying graph.
func (g *UnitigGraph) K() int {
	return g.k
}

// MakeVertexAdapter binds a strand-aware handle to the vertex with the
// given id.
func (g *UnitigGraph) MakeVertexAdapter(id uint32, strand uint8) (VertexAdapter, error) {
	if uint64(id) >= uint64(len(g.vertices)) {
		return VertexAdapter{}, errors.Errorf("vertex %d out of range, graph holds %d vertices",
			id, len(g.vertices))
	}
	if strand != StrandForward && strand != StrandReverse {
		return VertexAdapter{}, errors.Errorf("strand %d out of range", strand)
	}

	return g.makeAdapter(id, strand), nil
}

func (g *UnitigGraph) makeAdapter(id uint32, strand uint8) VertexAdapter {
	return VertexAdapter{vertex: &g.vertices[id], strand: strand, id: id}
}

func (g *UnitigGraph) makeSudo(id uint32, strand uint8) sudoVertexAdapter {
	return sudoVertexAdapter{g.makeAdapter(id, strand)}
}

// MarkToDelete flags the vertex behind the adapter for removal on the
// next Refresh. Safe to call concurrently, including for the same
// vertex.
func (g *UnitigGraph) MarkToDelete(a VertexAdapter) error {
	if !a.Valid() {
		return errUnboundAdapter
	}

	a.vertex.orFlags(flagToDelete)
	return nil
}

// Shutdown reports the accumulated degree cache usage. The counters
// are process wide and keep their totals across graphs.
func (g *UnitigGraph) Shutdown() {
	g.logger.WithFields(logrus.Fields{
		"action":              "unitig_graph_shutdown",
		"degree_cache_hits":   atomic.LoadUint64(&degreeCacheHits),
		"degree_cache_misses": atomic.LoadUint64(&degreeCacheMisses),
	}).Info("degree cache usage")
}

// shards splits [0, total) into at most n contiguous chunks.
func shards(total uint64, n int) [][2]uint64 {
	if n < 1 {
		n = 1
	}

	step := (total + uint64(n) - 1) / uint64(n)
	if step == 0 {
		step = 1
	}

	out := make([][2]uint64, 0, n)
	for first := uint64(0); first < total; first += step {
		out = append(out, [2]uint64{first, min(first+step, total)})
	}
	return out
}
