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

// Package sdbg declares the query surface of a succinct de Bruijn
// graph. The representation itself lives outside this module; the
// traversal layer drives any implementation purely through forward
// adjacency, the simple-path queries and label decoding.
package sdbg

import "math"

const (
	// AlphabetSize bounds the fan-out of every node.
	AlphabetSize = 4

	// Alphabet maps base codes to nucleotide characters.
	Alphabet = "ACGT"
)

// NullEdgeID marks the absence of an edge. The simple-path queries
// return it at branches and dead ends.
const NullEdgeID uint64 = math.MaxUint64

// Graph is a succinct de Bruijn graph over (k+1)-sized edge labels.
// Edge ids are dense, running from 0 to NumEdges()-1. All methods must
// be safe for concurrent use; SetInvalidEdge may only overlap with
// queries that cannot observe the edge being retired.
type Graph interface {
	// K returns the k-mer size the graph was built with.
	K() int

	// NumEdges returns the number of edges, valid or not.
	NumEdges() uint64

	// IsValidEdge reports whether the edge still takes part in the
	// graph.
	IsValidEdge(id uint64) bool

	// SetInvalidEdge retires the edge from all subsequent adjacency
	// and simple-path queries.
	SetInvalidEdge(id uint64)

	// EdgeReverseComplement returns the edge spelling the reverse
	// complement of this edge's label.
	EdgeReverseComplement(id uint64) uint64

	// EdgeMultiplicity returns the read coverage of the edge.
	EdgeMultiplicity(id uint64) int

	// OutgoingEdges stores the valid successors of the edge into out
	// and returns their count. out must not be nil.
	OutgoingEdges(id uint64, out *[AlphabetSize]uint64) int

	// NextSimplePathEdge returns the unique valid successor, or
	// NullEdgeID when the edge branches, dead-ends, or its successor
	// has more than one predecessor.
	NextSimplePathEdge(id uint64) uint64

	// PrevSimplePathEdge returns the unique valid predecessor, or
	// NullEdgeID when the edge has more than one predecessor or its
	// predecessor more than one successor.
	PrevSimplePathEdge(id uint64) uint64

	// LastChar returns the base code of the final character of the
	// edge label.
	LastChar(id uint64) uint8

	// Label returns the base codes of the first K characters of the
	// edge label.
	Label(id uint64) []byte
}

// BaseChar converts a base code to its nucleotide character. Codes
// outside the alphabet decode to 'N'.
func BaseChar(code uint8) byte {
	if code >= AlphabetSize {
		return 'N'
	}
	return Alphabet[code]
}

// BaseCode converts a nucleotide character to its base code, accepting
// either case.
func BaseCode(c byte) (uint8, bool) {
	switch c {
	case 'A', 'a':
		return 0, true
	case 'C', 'c':
		return 1, true
	case 'G', 'g':
		return 2, true
	case 'T', 't':
		return 3, true
	}
	return 0, false
}

// ComplementCode returns the code of the complementary base.
func ComplementCode(code uint8) uint8 {
	return AlphabetSize - 1 - code
}
