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

package edgestore

import "fmt"

// NoOwner marks a bucket no goroutine has written to yet.
const NoOwner int32 = -1

// PartitionRecord locates one bucket's contiguous run of records inside
// the file of the goroutine that owns the bucket.
type PartitionRecord struct {
	ThreadID       int32 // NoOwner while unclaimed
	StartingOffset int64 // records from the start of the owner's file
	TotalNumber    int64
}

// WordsPerEdge returns the number of uint32 words a single record
// occupies for the given k-mer size: 2(k+1) bits of sequence plus a
// 16 bit multiplicity counter, rounded up to whole words.
func WordsPerEdge(k int) int {
	return (2*(k+1) + 16 + 31) / 32
}

func edgeFileName(prefix string, fileID int) string {
	return fmt.Sprintf("%s.edges.%d", prefix, fileID)
}

func infoFileName(prefix string) string {
	return prefix + ".edges.info"
}
