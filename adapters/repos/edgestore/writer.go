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
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/velogen/velogen/entities/errorcompounder"
	"github.com/velogen/velogen/usecases/monitoring"
)

const writeBufferSize = 256 * 1024

// Config describes a store before any file exists.
type Config struct {
	// K is the k-mer size; records hold (k+1)-mers.
	K int

	// NumThreads is the number of writer goroutines, each owning one
	// data file.
	NumThreads int

	// NumBuckets partitions records for sorted consumption. Zero puts
	// the store in unsorted mode.
	NumBuckets int

	// Unsorted must be set exactly when NumBuckets is zero.
	Unsorted bool

	// PathPrefix locates the store: data files are <prefix>.edges.<i>,
	// metadata is <prefix>.edges.info.
	PathPrefix string
}

func (c Config) Validate() error {
	if c.K < 1 {
		return errors.Errorf("k-mer size must be positive, got %d", c.K)
	}
	if c.NumThreads < 1 {
		return errors.Errorf("need at least one writer thread, got %d", c.NumThreads)
	}
	if c.PathPrefix == "" {
		return errors.New("path prefix must not be empty")
	}
	if c.NumBuckets < 0 {
		return errors.Errorf("negative bucket count %d", c.NumBuckets)
	}
	if c.Unsorted != (c.NumBuckets == 0) {
		return errors.Errorf("exactly one of bucketed and unsorted: "+
			"num buckets %d, unsorted %v", c.NumBuckets, c.Unsorted)
	}
	return nil
}

// Writer appends fixed-width edge records across one data file per
// worker goroutine. Write and WriteUnsorted may run concurrently as
// long as no two goroutines share a thread id; all other methods are
// single-goroutine.
type Writer struct {
	k            int
	wordsPerEdge int
	numThreads   int
	numBuckets   int
	unsorted     bool
	prefix       string

	files   []*os.File
	bufs    []*bufio.Writer
	scratch [][]byte

	partitions []PartitionRecord
	curBucket  []int32
	edgeCounts []int64

	opened bool

	logger  logrus.FieldLogger
	prom    *monitoring.PrometheusMetrics
	metrics *Metrics
}

func NewWriter(cfg Config, opts ...WriterOption) (*Writer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid edge store config")
	}

	w := &Writer{
		k:            cfg.K,
		wordsPerEdge: WordsPerEdge(cfg.K),
		numThreads:   cfg.NumThreads,
		numBuckets:   cfg.NumBuckets,
		unsorted:     cfg.Unsorted,
		prefix:       cfg.PathPrefix,
	}

	for _, opt := range opts {
		if err := opt(w); err != nil {
			return nil, err
		}
	}

	if w.logger == nil {
		logger := logrus.New()
		logger.Out = io.Discard
		w.logger = logger
	}
	w.metrics = newWriterMetrics(w.prom, filepath.Base(cfg.PathPrefix))

	return w, nil
}

// Init creates the data files. It must complete before the first write.
func (w *Writer) Init() error {
	if w.opened {
		return errors.New("edge store writer already initialized")
	}

	w.files = make([]*os.File, w.numThreads)
	w.bufs = make([]*bufio.Writer, w.numThreads)
	w.scratch = make([][]byte, w.numThreads)
	for i := 0; i < w.numThreads; i++ {
		f, err := os.Create(edgeFileName(w.prefix, i))
		if err != nil {
			w.releaseFiles()
			return errors.Wrapf(err, "create edge file %d", i)
		}
		w.files[i] = f
		w.bufs[i] = bufio.NewWriterSize(f, writeBufferSize)
		w.scratch[i] = make([]byte, w.wordsPerEdge*4)
	}

	w.partitions = make([]PartitionRecord, w.numBuckets)
	for b := range w.partitions {
		w.partitions[b].ThreadID = NoOwner
	}
	w.curBucket = make([]int32, w.numThreads)
	for t := range w.curBucket {
		w.curBucket[t] = -1
	}
	w.edgeCounts = make([]int64, w.numThreads)

	w.opened = true
	w.logger.WithFields(logrus.Fields{
		"action":      "edge_store_init",
		"path_prefix": w.prefix,
		"num_threads": w.numThreads,
		"num_buckets": w.numBuckets,
	}).Debug("edge store files created")
	return nil
}

// Write appends one record to the file owned by goroutine tid. The
// first record written to a bucket claims the bucket for tid; a bucket
// can be claimed exactly once, so all of its records must arrive back
// to back from a single goroutine. Buckets themselves may be visited in
// any order.
func (w *Writer) Write(edge []uint32, bucket int32, tid int) error {
	if !w.opened {
		return errors.New("edge store writer not initialized")
	}
	if w.unsorted {
		return errors.New("bucketed write on an unsorted store")
	}
	if bucket < 0 || int(bucket) >= w.numBuckets {
		return errors.Errorf("bucket %d out of range [0, %d)", bucket, w.numBuckets)
	}
	if err := w.checkRecord(edge, tid); err != nil {
		return err
	}

	if bucket != w.curBucket[tid] {
		rec := &w.partitions[bucket]
		if !atomic.CompareAndSwapInt32(&rec.ThreadID, NoOwner, int32(tid)) {
			return errors.Errorf("bucket %d already claimed by thread %d, "+
				"cannot reopen for thread %d",
				bucket, atomic.LoadInt32(&rec.ThreadID), tid)
		}
		rec.StartingOffset = w.edgeCounts[tid]
		w.curBucket[tid] = bucket
	}

	if err := w.appendRecord(tid, edge); err != nil {
		return err
	}
	w.edgeCounts[tid]++
	w.partitions[bucket].TotalNumber++
	w.metrics.WroteEdge()
	return nil
}

// WriteUnsorted appends one record without bucket bookkeeping. The
// store must have been configured unsorted.
func (w *Writer) WriteUnsorted(edge []uint32, tid int) error {
	if !w.opened {
		return errors.New("edge store writer not initialized")
	}
	if !w.unsorted {
		return errors.New("unsorted write on a bucketed store")
	}
	if err := w.checkRecord(edge, tid); err != nil {
		return err
	}

	if err := w.appendRecord(tid, edge); err != nil {
		return err
	}
	w.edgeCounts[tid]++
	w.metrics.WroteEdge()
	return nil
}

func (w *Writer) checkRecord(edge []uint32, tid int) error {
	if tid < 0 || tid >= w.numThreads {
		return errors.Errorf("thread id %d out of range [0, %d)", tid, w.numThreads)
	}
	if len(edge) != w.wordsPerEdge {
		return errors.Errorf("record has %d words, store is %d words per edge",
			len(edge), w.wordsPerEdge)
	}
	return nil
}

func (w *Writer) appendRecord(tid int, edge []uint32) error {
	buf := w.scratch[tid]
	for i, word := range edge {
		binary.NativeEndian.PutUint32(buf[i*4:], word)
	}
	if _, err := w.bufs[tid].Write(buf); err != nil {
		return errors.Wrapf(err, "append to edge file %d", tid)
	}
	return nil
}

// Close flushes and closes the data files, then seals the store by
// writing the metadata file. All writer goroutines must have finished.
// A second Close is a no-op.
func (w *Writer) Close() error {
	if !w.opened {
		return nil
	}
	w.opened = false

	ec := errorcompounder.New()
	for i, buf := range w.bufs {
		ec.AddWrapf(buf.Flush(), "flush edge file %d", i)
	}
	for i, f := range w.files {
		ec.AddWrapf(f.Close(), "close edge file %d", i)
		w.files[i] = nil
	}

	total := int64(0)
	for _, n := range w.edgeCounts {
		total += n
	}

	info := &StoreInfo{
		K:            w.k,
		WordsPerEdge: w.wordsPerEdge,
		NumThreads:   w.numThreads,
		NumBuckets:   w.numBuckets,
		NumEdges:     total,
		Partitions:   w.partitions,
	}
	if w.unsorted {
		info.FileCounts = w.edgeCounts
	}
	ec.Add(w.writeInfo(info))

	w.logger.WithFields(logrus.Fields{
		"action":      "edge_store_seal",
		"path_prefix": w.prefix,
		"num_edges":   total,
	}).Info("edge store sealed")
	return ec.ToError()
}

func (w *Writer) writeInfo(info *StoreInfo) error {
	f, err := os.Create(infoFileName(w.prefix))
	if err != nil {
		return errors.Wrap(err, "create store info file")
	}
	if _, err := info.WriteTo(f); err != nil {
		f.Close()
		return errors.Wrap(err, "write store info file")
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(err, "close store info file")
	}
	return nil
}

func (w *Writer) releaseFiles() {
	for i, f := range w.files {
		if f != nil {
			f.Close()
			w.files[i] = nil
		}
	}
}
