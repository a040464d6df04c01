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

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// StoreInfo is the metadata sealed next to the data files. The text
// layout is fixed: five "key value" header lines, one line per bucket,
// and, for unbucketed stores only, one record-count line per file.
type StoreInfo struct {
	K            int
	WordsPerEdge int
	NumThreads   int
	NumBuckets   int
	NumEdges     int64

	Partitions []PartitionRecord // len NumBuckets
	FileCounts []int64           // len NumThreads, unbucketed stores only
}

func (i *StoreInfo) Unsorted() bool {
	return i.NumBuckets == 0
}

// FileRecordCounts returns how many records each data file holds. For
// bucketed stores this is derived from the partition records, every
// record in a file belongs to a bucket owned by that file's goroutine.
func (i *StoreInfo) FileRecordCounts() []int64 {
	out := make([]int64, i.NumThreads)
	if i.Unsorted() {
		copy(out, i.FileCounts)
		return out
	}
	for _, rec := range i.Partitions {
		if rec.ThreadID >= 0 {
			out[rec.ThreadID] += rec.TotalNumber
		}
	}
	return out
}

// WriteTo emits the metadata in its on-disk text layout.
func (i *StoreInfo) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	bw := bufio.NewWriter(cw)

	fmt.Fprintf(bw, "kmer_size %d\n", i.K)
	fmt.Fprintf(bw, "words_per_edge %d\n", i.WordsPerEdge)
	fmt.Fprintf(bw, "num_threads %d\n", i.NumThreads)
	fmt.Fprintf(bw, "num_bucket %d\n", i.NumBuckets)
	fmt.Fprintf(bw, "num_edges %d\n", i.NumEdges)

	for b, rec := range i.Partitions {
		fmt.Fprintf(bw, "%d %d %d %d\n", b, rec.ThreadID,
			rec.StartingOffset, rec.TotalNumber)
	}

	if i.Unsorted() {
		for f, count := range i.FileCounts {
			fmt.Fprintf(bw, "%d %d\n", f, count)
		}
	}

	if err := bw.Flush(); err != nil {
		return cw.n, errors.Wrap(err, "write store info")
	}
	return cw.n, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}

// ParseStoreInfo reads the metadata layout produced by WriteTo. Any
// deviation, wrong key, wrong field count, out-of-range value, or a
// record sum that disagrees with the declared total, is an error.
func ParseStoreInfo(r io.Reader) (*StoreInfo, error) {
	sc := bufio.NewScanner(r)
	out := &StoreInfo{}

	header, err := parseHeaderLine(sc, "kmer_size")
	if err != nil {
		return nil, err
	}
	out.K = int(header)

	if header, err = parseHeaderLine(sc, "words_per_edge"); err != nil {
		return nil, err
	}
	out.WordsPerEdge = int(header)

	if header, err = parseHeaderLine(sc, "num_threads"); err != nil {
		return nil, err
	}
	out.NumThreads = int(header)

	if header, err = parseHeaderLine(sc, "num_bucket"); err != nil {
		return nil, err
	}
	out.NumBuckets = int(header)

	if header, err = parseHeaderLine(sc, "num_edges"); err != nil {
		return nil, err
	}
	out.NumEdges = header

	if out.K < 1 || out.WordsPerEdge < 1 || out.NumThreads < 1 ||
		out.NumBuckets < 0 || out.NumEdges < 0 {
		return nil, errors.Errorf("store info header out of range: "+
			"k=%d words_per_edge=%d num_threads=%d num_bucket=%d num_edges=%d",
			out.K, out.WordsPerEdge, out.NumThreads, out.NumBuckets, out.NumEdges)
	}

	sum := int64(0)
	out.Partitions = make([]PartitionRecord, out.NumBuckets)
	for b := range out.Partitions {
		fields, err := parseIntLine(sc, 4)
		if err != nil {
			return nil, errors.Wrapf(err, "bucket record %d", b)
		}
		if fields[0] != int64(b) {
			return nil, errors.Errorf("bucket record %d carries id %d", b, fields[0])
		}
		rec := PartitionRecord{
			ThreadID:       int32(fields[1]),
			StartingOffset: fields[2],
			TotalNumber:    fields[3],
		}
		if rec.ThreadID < NoOwner || int(rec.ThreadID) >= out.NumThreads {
			return nil, errors.Errorf("bucket %d owned by unknown thread %d", b, rec.ThreadID)
		}
		if rec.StartingOffset < 0 || rec.TotalNumber < 0 {
			return nil, errors.Errorf("bucket %d has negative extent", b)
		}
		out.Partitions[b] = rec
		sum += rec.TotalNumber
	}

	if out.Unsorted() {
		out.FileCounts = make([]int64, out.NumThreads)
		for f := range out.FileCounts {
			fields, err := parseIntLine(sc, 2)
			if err != nil {
				return nil, errors.Wrapf(err, "file count record %d", f)
			}
			if fields[0] != int64(f) {
				return nil, errors.Errorf("file count record %d carries id %d", f, fields[0])
			}
			if fields[1] < 0 {
				return nil, errors.Errorf("file %d has negative record count", f)
			}
			out.FileCounts[f] = fields[1]
			sum += fields[1]
		}
	}

	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "read store info")
	}
	if sum != out.NumEdges {
		return nil, errors.Errorf("store info declares %d edges but records sum to %d",
			out.NumEdges, sum)
	}

	if !out.Unsorted() {
		counts := out.FileRecordCounts()
		for b, rec := range out.Partitions {
			if rec.ThreadID >= 0 && rec.StartingOffset+rec.TotalNumber > counts[rec.ThreadID] {
				return nil, errors.Errorf("bucket %d extends past the end of file %d",
					b, rec.ThreadID)
			}
		}
	}
	return out, nil
}

func parseHeaderLine(sc *bufio.Scanner, key string) (int64, error) {
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return 0, errors.Wrapf(err, "read %s line", key)
		}
		return 0, errors.Errorf("store info ends before %s line", key)
	}
	fields := strings.Fields(sc.Text())
	if len(fields) != 2 || fields[0] != key {
		return 0, errors.Errorf("expected \"%s <value>\", got %q", key, sc.Text())
	}
	v, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "parse %s value", key)
	}
	return v, nil
}

func parseIntLine(sc *bufio.Scanner, want int) ([]int64, error) {
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, errors.Wrap(err, "read line")
		}
		return nil, errors.New("store info ends early")
	}
	fields := strings.Fields(sc.Text())
	if len(fields) != want {
		return nil, errors.Errorf("expected %d fields, got %q", want, sc.Text())
	}
	out := make([]int64, want)
	for i, f := range fields {
		v, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "parse field %d of %q", i, sc.Text())
		}
		out[i] = v
	}
	return out, nil
}
