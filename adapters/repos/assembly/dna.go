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
	"strings"

	"github.com/pkg/errors"

	"github.com/velogen/velogen/adapters/repos/assembly/sdbg"
)

// VertexToDNAString spells out the sequence of the adapter's strand:
// the k-length label of the begin edge followed by the last character
// of every path edge. Flipping the adapter yields the reverse
// complement of the other strand's sequence.
func (g *UnitigGraph) VertexToDNAString(a VertexAdapter) (string, error) {
	if !a.Valid() {
		return "", errUnboundAdapter
	}

	label := g.sdbg.Label(a.Begin())
	if len(label) != g.k {
		return "", errors.Errorf("edge %d decodes to %d label characters, want %d",
			a.Begin(), len(label), g.k)
	}

	var sb strings.Builder
	sb.Grow(g.k + int(a.Length()))
	for _, code := range label {
		sb.WriteByte(sdbg.BaseChar(code))
	}

	cur := a.Begin()
	sb.WriteByte(sdbg.BaseChar(g.sdbg.LastChar(cur)))

	for i := uint32(1); i < a.Length(); i++ {
		next := g.sdbg.NextSimplePathEdge(cur)
		if next == sdbg.NullEdgeID {
			return "", errors.Errorf("simple path of vertex %d broke after %d of %d edges",
				a.ID(), i, a.Length())
		}
		cur = next
		sb.WriteByte(sdbg.BaseChar(g.sdbg.LastChar(cur)))
	}

	if cur != a.End() {
		return "", errors.Errorf("simple path of vertex %d ended at edge %d, expected %d",
			a.ID(), cur, a.End())
	}

	return sb.String(), nil
}
