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
	"sort"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/velogen/velogen/adapters/repos/assembly/sdbg"
)

// fakeSDBG is a reference de Bruijn graph over explicit (k+1)-mer
// strings. Edge ids are the lexicographic ranks of the (k+1)-mers,
// which keeps them deterministic across runs. Every input sequence is
// indexed together with its reverse complement, as a real graph
// builder would.
type fakeSDBG struct {
	k     int
	edges []string
	ids   map[string]uint64
	mult  []int
	valid []int32
	rc    []uint64
}

var _ sdbg.Graph = (*fakeSDBG)(nil)

func newFakeSDBG(t *testing.T, k int, seqs ...string) *fakeSDBG {
	t.Helper()

	counts := map[string]int{}
	for _, seq := range seqs {
		require.GreaterOrEqual(t, len(seq), k+1, "sequence shorter than one edge")
		for i := 0; i+k+1 <= len(seq); i++ {
			w := seq[i : i+k+1]
			counts[w]++
			counts[revComp(t, w)]++
		}
	}

	edges := make([]string, 0, len(counts))
	for w := range counts {
		edges = append(edges, w)
	}
	sort.Strings(edges)

	f := &fakeSDBG{
		k:     k,
		edges: edges,
		ids:   make(map[string]uint64, len(edges)),
		mult:  make([]int, len(edges)),
		valid: make([]int32, len(edges)),
		rc:    make([]uint64, len(edges)),
	}
	for i, w := range edges {
		f.ids[w] = uint64(i)
	}
	for i, w := range edges {
		f.mult[i] = counts[w]
		f.valid[i] = 1
		f.rc[i] = f.ids[revComp(t, w)]
	}

	return f
}

func revComp(t *testing.T, s string) string {
	t.Helper()

	out := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		code, ok := sdbg.BaseCode(s[i])
		require.True(t, ok, "not a base: %c", s[i])
		out[len(s)-1-i] = sdbg.BaseChar(sdbg.ComplementCode(code))
	}
	return string(out)
}

func (f *fakeSDBG) K() int {
	return f.k
}

func (f *fakeSDBG) NumEdges() uint64 {
	return uint64(len(f.edges))
}

func (f *fakeSDBG) IsValidEdge(id uint64) bool {
	return atomic.LoadInt32(&f.valid[id]) == 1
}

func (f *fakeSDBG) SetInvalidEdge(id uint64) {
	atomic.StoreInt32(&f.valid[id], 0)
}

func (f *fakeSDBG) EdgeReverseComplement(id uint64) uint64 {
	return f.rc[id]
}

func (f *fakeSDBG) EdgeMultiplicity(id uint64) int {
	return f.mult[id]
}

func (f *fakeSDBG) OutgoingEdges(id uint64, out *[sdbg.AlphabetSize]uint64) int {
	node := f.edges[id][1:]
	n := 0
	for i := 0; i < sdbg.AlphabetSize; i++ {
		next, ok := f.ids[node+string(sdbg.Alphabet[i])]
		if !ok || atomic.LoadInt32(&f.valid[next]) == 0 {
			continue
		}
		out[n] = next
		n++
	}
	return n
}

func (f *fakeSDBG) incomingEdges(id uint64) []uint64 {
	node := f.edges[id][:f.k]
	var in []uint64
	for i := 0; i < sdbg.AlphabetSize; i++ {
		prev, ok := f.ids[string(sdbg.Alphabet[i])+node]
		if !ok || atomic.LoadInt32(&f.valid[prev]) == 0 {
			continue
		}
		in = append(in, prev)
	}
	return in
}

func (f *fakeSDBG) NextSimplePathEdge(id uint64) uint64 {
	if atomic.LoadInt32(&f.valid[id]) == 0 {
		return sdbg.NullEdgeID
	}

	var out [sdbg.AlphabetSize]uint64
	if f.OutgoingEdges(id, &out) != 1 {
		return sdbg.NullEdgeID
	}
	if len(f.incomingEdges(out[0])) != 1 {
		return sdbg.NullEdgeID
	}
	return out[0]
}

func (f *fakeSDBG) PrevSimplePathEdge(id uint64) uint64 {
	if atomic.LoadInt32(&f.valid[id]) == 0 {
		return sdbg.NullEdgeID
	}

	in := f.incomingEdges(id)
	if len(in) != 1 {
		return sdbg.NullEdgeID
	}
	var out [sdbg.AlphabetSize]uint64
	if f.OutgoingEdges(in[0], &out) != 1 {
		return sdbg.NullEdgeID
	}
	return in[0]
}

func (f *fakeSDBG) LastChar(id uint64) uint8 {
	code, _ := sdbg.BaseCode(f.edges[id][f.k])
	return code
}

func (f *fakeSDBG) Label(id uint64) []byte {
	label := make([]byte, f.k)
	for i := 0; i < f.k; i++ {
		code, _ := sdbg.BaseCode(f.edges[id][i])
		label[i] = code
	}
	return label
}
