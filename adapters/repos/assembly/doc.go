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

// Package assembly condenses a succinct de Bruijn graph into its
// unitig graph, the working representation of the assembler's contig
// stages.
//
// Every maximal non-branching path and its reverse complement become
// one vertex. A VertexAdapter binds a vertex to one of its strands,
// all traversal (successors, predecessors, degrees, sequence decoding)
// is phrased over adapters and safe for concurrent use.
//
// Structural change happens in two steps: mark vertices via
// MarkToDelete or withdraw edges through the underlying graph, then
// call Refresh once. Refresh is the only mutating phase and must not
// overlap with any traversal.
package assembly
