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

// The edgestore package persists the (k+1)-mer edge multiset produced by
// the counting stage of the assembly pipeline. Each writer goroutine owns
// one append-only data file; records are fixed-width runs of uint32 words.
// In bucketed mode every record carries a bucket id, each bucket is claimed
// by the first goroutine that writes to it and stays contiguous inside that
// goroutine's file, so a later scan can return buckets in ascending order.
//
// A store is write-once: sealing it (Writer.Close) produces a text metadata
// file next to the data files, after which the Reader memory-maps the data
// for a single sequential pass. Data files are host byte order, they do not
// travel between architectures.
package edgestore
