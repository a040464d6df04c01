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
	"math/rand"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velogen/velogen/usecases/monitoring"
)

func TestRefresh_DropBranch(t *testing.T) {
	g, f := buildGraph(t, 3, "TACAGATT", "TACAGCCA")
	require.Equal(t, uint32(3), g.Size())

	doomed := findVertex(t, g, "CAGCCA")
	assert.False(t, doomed.IsToDelete())
	require.NoError(t, g.MarkToDelete(doomed))
	assert.True(t, doomed.IsToDelete())

	require.NoError(t, g.Refresh(true))

	// the stem and the surviving branch collapse into one path
	require.Equal(t, uint32(1), g.Size())
	a := findVertex(t, g, "TACAGATT")
	assert.True(t, a.IsChanged())
	assert.False(t, a.IsLoop())
	assert.Equal(t, uint32(5), a.Length())
	assert.Equal(t, uint64(7), a.TotalDepth())

	for _, w := range []string{"CAGC", "AGCC", "GCCA"} {
		assert.False(t, f.IsValidEdge(f.ids[w]), "edge %s should be invalid", w)
		assert.False(t, f.IsValidEdge(f.rc[f.ids[w]]), "edge rc(%s) should be invalid", w)
	}
	for _, w := range []string{"TACA", "ACAG", "CAGA", "AGAT", "GATT"} {
		assert.True(t, f.IsValidEdge(f.ids[w]), "edge %s should stay valid", w)
	}

	assertMaximal(t, g)
}

func TestRefresh_NoChanges(t *testing.T) {
	g, _ := buildGraph(t, 3, "TACAGATT", "TACAGCCA")

	require.NoError(t, g.Refresh(false))
	require.Equal(t, uint32(3), g.Size())

	require.NoError(t, g.Refresh(true))
	require.Equal(t, uint32(3), g.Size())

	// nothing was rebuilt, so nothing is flagged even with markChanged
	for _, dna := range []string{"TACAG", "CAGATT", "CAGCCA"} {
		a := findVertex(t, g, dna)
		assert.False(t, a.IsChanged(), "%s should be untouched", dna)
		assert.False(t, a.IsLoop())
	}

	assertMaximal(t, g)
}

func TestRefresh_TailOnCycle(t *testing.T) {
	// the tail's last edge feeds into the cycle, splitting it open
	g, _ := buildGraph(t, 3, "ACGGTCAACG", "TTACG")
	require.Equal(t, uint32(2), g.Size())

	opened := findVertex(t, g, "ACGGTCAACG")
	assert.False(t, opened.IsLoop())
	assert.Equal(t, uint32(7), opened.Length())
	tail := findVertex(t, g, "TTACG")
	assert.Equal(t, uint32(2), tail.Length())

	require.NoError(t, g.MarkToDelete(tail))
	require.NoError(t, g.Refresh(false))

	// with the junction gone the remaining path closes on itself
	require.Equal(t, uint32(1), g.Size())
	a, err := g.MakeVertexAdapter(0, StrandForward)
	require.NoError(t, err)
	assert.True(t, a.IsLoop())
	assert.False(t, a.IsChanged())
	assert.Equal(t, uint32(7), a.Length())
	assert.Equal(t, uint64(7), a.TotalDepth())

	s, err := g.VertexToDNAString(a)
	require.NoError(t, err)
	assertCycleRotation(t, "ACGGTCA", s)
}

func TestRefresh_RejoinSplitCycle(t *testing.T) {
	// two tails feed into the cycle at different nodes, splitting it
	// into two pieces
	g, _ := buildGraph(t, 3, "ACGGTCAACG", "TTACG", "CAGTC")
	require.Equal(t, uint32(4), g.Size())

	front := findVertex(t, g, "ACGGTC")
	assert.Equal(t, uint32(3), front.Length())
	back := findVertex(t, g, "GTCAACG")
	assert.Equal(t, uint32(4), back.Length())

	require.NoError(t, g.MarkToDelete(findVertex(t, g, "TTACG")))
	require.NoError(t, g.MarkToDelete(findVertex(t, g, "CAGTC")))
	require.NoError(t, g.Refresh(true))

	// both pieces fold back into a single ring
	require.Equal(t, uint32(1), g.Size())
	a, err := g.MakeVertexAdapter(0, StrandForward)
	require.NoError(t, err)
	assert.True(t, a.IsLoop())
	assert.True(t, a.IsChanged())
	assert.Equal(t, uint32(7), a.Length())
	assert.Equal(t, uint64(7), a.TotalDepth())

	s, err := g.VertexToDNAString(a)
	require.NoError(t, err)
	assert.Len(t, s, 10)
	assertCycleRotation(t, "ACGGTCA", s)
}

func TestRefresh_HairpinFold(t *testing.T) {
	// TACAGCTGTA is its own reverse complement; the extra read forks
	// the hairpin off its middle edge
	g, f := buildGraph(t, 3, "TACAGCTGTA", "CAGCA")
	require.Equal(t, uint32(3), g.Size())

	mid := findVertex(t, g, "AGCT")
	assert.True(t, mid.IsPalindrome())
	assert.Equal(t, uint32(1), mid.Length())

	require.NoError(t, g.MarkToDelete(findVertex(t, g, "AGCA")))
	require.NoError(t, g.Refresh(true))

	// the rebuilt run folds onto its own reverse complement: the walk
	// ends in its own head and every edge is shared between the strands
	require.Equal(t, uint32(1), g.Size())
	a := findVertex(t, g, "TACAGCTGTA")
	assert.True(t, a.IsPalindrome())
	assert.True(t, a.IsChanged())
	assert.False(t, a.IsLoop())
	assert.Equal(t, uint32(7), a.Length())
	assert.Equal(t, uint64(16), a.TotalDepth())

	a.ReverseComplement()
	s, err := g.VertexToDNAString(a)
	require.NoError(t, err)
	assert.Equal(t, "TACAGCTGTA", s)

	assertMaximal(t, g)
	assertEdgeConservation(t, g, f)
}

func TestRefresh_PalindromicRingRebuild(t *testing.T) {
	// the tail breaks the self-RC circle ACGCGT open; dropping it lets
	// the refresh close the ring again, which must rediscover that the
	// ring matches its own reverse complement under rotation
	g, f := buildGraph(t, 3, "ACGCGTACG", "TTACG")
	require.Equal(t, uint32(3), g.Size())

	opened := findVertex(t, g, "TACGCGTA")
	assert.True(t, opened.IsPalindrome())
	assert.False(t, opened.IsLoop())
	assert.Equal(t, uint32(5), opened.Length())

	require.NoError(t, g.MarkToDelete(findVertex(t, g, "TTAC")))
	require.NoError(t, g.Refresh(true))

	require.Equal(t, uint32(1), g.Size())
	a, err := g.MakeVertexAdapter(0, StrandForward)
	require.NoError(t, err)
	assert.True(t, a.IsLoop())
	assert.True(t, a.IsPalindrome())
	assert.True(t, a.IsChanged())
	assert.Equal(t, uint32(6), a.Length())
	assert.Equal(t, uint64(14), a.TotalDepth())
	assertEdgeConservation(t, g, f)

	s, err := g.VertexToDNAString(a)
	require.NoError(t, err)
	assertCycleRotation(t, "ACGCGT", s)

	// a ring mis-flagged as non-palindromic would walk its shared
	// edges once per strand here and break on the second walk
	require.NoError(t, g.MarkToDelete(a))
	require.NoError(t, g.Refresh(false))
	assert.Equal(t, uint32(0), g.Size())
	for e := uint64(0); e < f.NumEdges(); e++ {
		assert.False(t, f.IsValidEdge(e), "edge %d should be invalid", e)
	}
}

func TestRefresh_FoldedRingRebuild(t *testing.T) {
	// two junction pairs split the self-RC circle ACGCGT into chains
	// that swap with their reverse complements; after dropping both
	// branches the rebuilt ring walk passes the head's opposite strand
	// halfway around and must continue through the fold rather than
	// close there
	g, f := buildGraph(t, 3, "ACGCGTACG", "TTACG", "TCGCG")
	require.Equal(t, uint32(5), g.Size())

	folded := findVertex(t, g, "GCGTA")
	assert.False(t, folded.IsPalindrome())
	assert.Equal(t, uint32(2), folded.Length())

	require.NoError(t, g.MarkToDelete(findVertex(t, g, "TTAC")))
	require.NoError(t, g.MarkToDelete(findVertex(t, g, "TCGC")))
	require.NoError(t, g.Refresh(true))

	require.Equal(t, uint32(1), g.Size())
	a, err := g.MakeVertexAdapter(0, StrandForward)
	require.NoError(t, err)
	assert.True(t, a.IsLoop())
	assert.True(t, a.IsPalindrome())
	assert.True(t, a.IsChanged())
	assert.Equal(t, uint32(6), a.Length())
	assert.Equal(t, uint64(16), a.TotalDepth())
	assertEdgeConservation(t, g, f)

	s, err := g.VertexToDNAString(a)
	require.NoError(t, err)
	assertCycleRotation(t, "ACGCGT", s)

	require.NoError(t, g.MarkToDelete(a))
	require.NoError(t, g.Refresh(false))
	assert.Equal(t, uint32(0), g.Size())
	for e := uint64(0); e < f.NumEdges(); e++ {
		assert.False(t, f.IsValidEdge(e), "edge %d should be invalid", e)
	}
}

func TestRefresh_ConcurrentMerges(t *testing.T) {
	// hundreds of forked motifs refreshed at once: every dropped branch
	// leaves a run whose two heads race each other for the merge
	rng := rand.New(rand.NewSource(42))
	randSeq := func(n int) string {
		const bases = "ACGT"
		b := make([]byte, n)
		for i := range b {
			b[i] = bases[rng.Intn(len(bases))]
		}
		return string(b)
	}

	seqs := make([]string, 0, 600)
	for i := 0; i < 300; i++ {
		stem := randSeq(30)
		seqs = append(seqs, stem+randSeq(10), stem+randSeq(10))
	}

	f := newFakeSDBG(t, 11, seqs...)
	g, err := NewUnitigGraph(Config{Graph: f, Logger: testLogger(), Workers: 16})
	require.NoError(t, err)
	defer g.Shutdown()

	assertEdgeConservation(t, g, f)

	for id := uint32(0); id < g.Size(); id += 3 {
		a, err := g.MakeVertexAdapter(id, StrandForward)
		require.NoError(t, err)
		require.NoError(t, g.MarkToDelete(a))
	}
	require.NoError(t, g.Refresh(true))

	assertMaximal(t, g)
	assertEdgeConservation(t, g, f)

	// nothing marked, a second refresh must settle without rebuilding
	before := g.Size()
	require.NoError(t, g.Refresh(false))
	assert.Equal(t, before, g.Size())
	assertEdgeConservation(t, g, f)
}

func TestRefresh_DropEverything(t *testing.T) {
	g, f := buildGraph(t, 3, "TACAGATT", "TACAGCCA")

	for id := uint32(0); id < g.Size(); id++ {
		a, err := g.MakeVertexAdapter(id, StrandForward)
		require.NoError(t, err)
		require.NoError(t, g.MarkToDelete(a))
	}
	require.NoError(t, g.Refresh(true))

	assert.Equal(t, uint32(0), g.Size())
	for e := uint64(0); e < f.NumEdges(); e++ {
		assert.False(t, f.IsValidEdge(e), "edge %d should be invalid", e)
	}

	require.NoError(t, g.Refresh(false))
	assert.Equal(t, uint32(0), g.Size())
}

func TestUnitigGraph_Metrics(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	pm := monitoring.NewPrometheusMetrics(reg)

	f := newFakeSDBG(t, 3, "TACAGATT", "TACAGCCA")
	g, err := NewUnitigGraph(Config{Graph: f, Logger: testLogger(), Prometheus: pm, Workers: 2})
	require.NoError(t, err)

	gauge := pm.UnitigGraphVertices.With(prometheus.Labels{"k": "3"})
	assert.Equal(t, float64(3), testutil.ToFloat64(gauge))

	stem := findVertex(t, g, "TACAG")
	_, err = g.OutDegree(stem)
	require.NoError(t, err)
	_, err = g.OutDegree(stem)
	require.NoError(t, err)

	misses := pm.UnitigGraphDegreeCacheOps.With(prometheus.Labels{"result": "miss"})
	hits := pm.UnitigGraphDegreeCacheOps.With(prometheus.Labels{"result": "hit"})
	assert.Equal(t, float64(1), testutil.ToFloat64(misses))
	assert.Equal(t, float64(1), testutil.ToFloat64(hits))

	require.NoError(t, g.MarkToDelete(findVertex(t, g, "CAGCCA")))
	require.NoError(t, g.Refresh(true))

	assert.Equal(t, float64(1), testutil.ToFloat64(gauge))
	assert.Equal(t, 1, testutil.CollectAndCount(pm.UnitigGraphRefreshDuration))
}
