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
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/velogen/velogen/entities/errorcompounder"
	"github.com/velogen/velogen/usecases/monitoring"
)

// Reader scans a sealed store front to back from a single goroutine.
// ReadInfo loads the metadata, Init opens the data files, then exactly
// one of NextSortedEdge and NextUnsortedEdge, matching IsUnsorted,
// pulls records until it returns nil. Check Err afterwards to tell
// exhaustion from a failed read.
//
// Returned slices alias the memory map and stay valid until Close; the
// pread mode hands out private copies instead.
type Reader struct {
	prefix string
	info   *StoreInfo

	files      []*os.File
	views      []edgeView
	fileCounts []int64

	curBucket int
	curFile   int
	pos       int64

	opened bool
	err    error

	pread   bool
	logger  logrus.FieldLogger
	prom    *monitoring.PrometheusMetrics
	metrics *Metrics
}

func NewReader(pathPrefix string, opts ...ReaderOption) (*Reader, error) {
	if pathPrefix == "" {
		return nil, errors.New("path prefix must not be empty")
	}

	r := &Reader{prefix: pathPrefix}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	if r.logger == nil {
		logger := logrus.New()
		logger.Out = io.Discard
		r.logger = logger
	}
	mode := "mmap"
	if r.pread {
		mode = "pread"
	}
	r.metrics = newReaderMetrics(r.prom, filepath.Base(pathPrefix), mode)

	return r, nil
}

// ReadInfo loads and validates the store metadata.
func (r *Reader) ReadInfo() error {
	f, err := os.Open(infoFileName(r.prefix))
	if err != nil {
		return errors.Wrap(err, "open store info")
	}
	defer f.Close()

	info, err := ParseStoreInfo(f)
	if err != nil {
		return errors.Wrapf(err, "parse %s", infoFileName(r.prefix))
	}
	r.info = info
	return nil
}

// Init opens the data files. Files without records are left untouched.
func (r *Reader) Init() error {
	if r.opened {
		return errors.New("edge store reader already initialized")
	}
	if r.info == nil {
		return errors.New("store info not loaded, call ReadInfo first")
	}

	r.fileCounts = r.info.FileRecordCounts()
	r.files = make([]*os.File, r.info.NumThreads)
	r.views = make([]edgeView, r.info.NumThreads)

	for t := 0; t < r.info.NumThreads; t++ {
		if r.fileCounts[t] == 0 {
			continue
		}
		if err := r.openFile(t); err != nil {
			r.release()
			return err
		}
	}

	r.curBucket = -1
	r.curFile = -1
	r.pos = 0
	r.opened = true

	r.logger.WithFields(logrus.Fields{
		"action":      "edge_store_open",
		"path_prefix": r.prefix,
		"num_edges":   r.info.NumEdges,
		"pread":       r.pread,
	}).Debug("edge store opened")
	return nil
}

func (r *Reader) openFile(t int) error {
	f, err := os.Open(edgeFileName(r.prefix, t))
	if err != nil {
		return errors.Wrapf(err, "open edge file %d", t)
	}
	r.files[t] = f

	fi, err := f.Stat()
	if err != nil {
		return errors.Wrapf(err, "stat edge file %d", t)
	}
	want := r.fileCounts[t] * int64(r.info.WordsPerEdge) * 4
	if fi.Size() != want {
		return errors.Errorf("edge file %d holds %d bytes, metadata requires %d",
			t, fi.Size(), want)
	}

	if r.pread {
		r.views[t] = newPreadView(f, int64(r.info.WordsPerEdge))
		return nil
	}
	view, err := newMmapView(f, r.fileCounts[t], int64(r.info.WordsPerEdge))
	if err != nil {
		return errors.Wrapf(err, "map edge file %d", t)
	}
	r.views[t] = view
	return nil
}

// NextSortedEdge returns the next record in ascending bucket order, nil
// once the store is exhausted or a read failed. Within a bucket records
// keep their write order; unclaimed buckets are skipped.
func (r *Reader) NextSortedEdge() []uint32 {
	if r.err != nil {
		return nil
	}
	if !r.opened {
		r.err = errors.New("edge store reader not initialized")
		return nil
	}
	if r.info.Unsorted() {
		r.err = errors.New("sorted scan on an unsorted store")
		return nil
	}

	for {
		if r.curBucket >= r.info.NumBuckets {
			return nil
		}
		if r.curBucket >= 0 {
			if rec := r.info.Partitions[r.curBucket]; r.pos < rec.TotalNumber {
				edge, err := r.views[rec.ThreadID].edge(rec.StartingOffset + r.pos)
				if err != nil {
					r.err = errors.Wrapf(err, "read bucket %d", r.curBucket)
					return nil
				}
				r.pos++
				r.metrics.ReadEdge()
				return edge
			}
		}

		r.curBucket++
		for r.curBucket < r.info.NumBuckets &&
			(r.info.Partitions[r.curBucket].ThreadID < 0 ||
				r.info.Partitions[r.curBucket].TotalNumber == 0) {
			r.curBucket++
		}
		if r.curBucket >= r.info.NumBuckets {
			return nil
		}
		rec := r.info.Partitions[r.curBucket]
		r.pos = 0
		r.views[rec.ThreadID].adviseSequential(rec.StartingOffset)
	}
}

// NextUnsortedEdge returns the next record in file order, nil once the
// store is exhausted or a read failed.
func (r *Reader) NextUnsortedEdge() []uint32 {
	if r.err != nil {
		return nil
	}
	if !r.opened {
		r.err = errors.New("edge store reader not initialized")
		return nil
	}
	if !r.info.Unsorted() {
		r.err = errors.New("unsorted scan on a bucketed store")
		return nil
	}

	for {
		if r.curFile >= r.info.NumThreads {
			return nil
		}
		if r.curFile >= 0 && r.pos < r.fileCounts[r.curFile] {
			edge, err := r.views[r.curFile].edge(r.pos)
			if err != nil {
				r.err = errors.Wrapf(err, "read edge file %d", r.curFile)
				return nil
			}
			r.pos++
			r.metrics.ReadEdge()
			return edge
		}

		r.curFile++
		for r.curFile < r.info.NumThreads && r.fileCounts[r.curFile] == 0 {
			r.curFile++
		}
		if r.curFile >= r.info.NumThreads {
			return nil
		}
		r.pos = 0
		r.views[r.curFile].adviseSequential(0)
	}
}

// Err reports the first failure observed by a Next call.
func (r *Reader) Err() error {
	return r.err
}

// The accessors below are valid once ReadInfo has succeeded.

func (r *Reader) K() int {
	if r.info == nil {
		return 0
	}
	return r.info.K
}

func (r *Reader) WordsPerEdge() int {
	if r.info == nil {
		return 0
	}
	return r.info.WordsPerEdge
}

func (r *Reader) NumEdges() int64 {
	if r.info == nil {
		return 0
	}
	return r.info.NumEdges
}

func (r *Reader) IsUnsorted() bool {
	if r.info == nil {
		return false
	}
	return r.info.Unsorted()
}

// Close unmaps and closes every open file. A second Close is a no-op.
func (r *Reader) Close() error {
	if !r.opened {
		return nil
	}
	r.opened = false

	err := r.release()
	r.logger.WithFields(logrus.Fields{
		"action":      "edge_store_close",
		"path_prefix": r.prefix,
	}).Debug("edge store closed")
	return err
}

func (r *Reader) release() error {
	ec := errorcompounder.New()
	for t, v := range r.views {
		if v != nil {
			v.release(t, ec)
			r.views[t] = nil
		}
	}
	for t, f := range r.files {
		if f != nil {
			ec.AddWrapf(f.Close(), "close edge file %d", t)
			r.files[t] = nil
		}
	}
	return ec.ToError()
}
