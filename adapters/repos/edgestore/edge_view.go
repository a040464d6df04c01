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
	"encoding/binary"
	"io"
	"os"
	"unsafe"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"

	"github.com/velogen/velogen/entities/errorcompounder"
	"github.com/velogen/velogen/usecases/mmap"
)

// edgeView is one data file's worth of records, either memory-mapped or
// read on demand through a page cache.
type edgeView interface {
	// edge returns record rec. Mapped views return slices into the map,
	// pread views return private copies.
	edge(rec int64) ([]uint32, error)
	// adviseSequential hints that a scan will proceed forward from rec.
	adviseSequential(rec int64)
	release(fileID int, ec *errorcompounder.ErrorCompounder)
}

type mmapView struct {
	m            mmap.MMap
	words        []uint32
	wordsPerEdge int64
}

func newMmapView(f *os.File, records, wordsPerEdge int64) (*mmapView, error) {
	m, err := mmap.MapRegion(f, int(records*wordsPerEdge*4), mmap.RDONLY, 0, 0)
	if err != nil {
		return nil, errors.Wrap(err, "mmap file")
	}
	return &mmapView{
		m:            m,
		words:        unsafe.Slice((*uint32)(unsafe.Pointer(&m[0])), len(m)/4),
		wordsPerEdge: wordsPerEdge,
	}, nil
}

func (v *mmapView) edge(rec int64) ([]uint32, error) {
	off := rec * v.wordsPerEdge
	return v.words[off : off+v.wordsPerEdge : off+v.wordsPerEdge], nil
}

func (v *mmapView) adviseSequential(rec int64) {
	mmap.MadviseSequential(v.m, int(rec*v.wordsPerEdge*4))
}

func (v *mmapView) release(fileID int, ec *errorcompounder.ErrorCompounder) {
	ec.AddWrapf(v.m.Unmap(), "unmap edge file %d", fileID)
}

const preadCachePages = 128

type preadView struct {
	f            *os.File
	cache        *lru.Cache[int64, []byte]
	pageSize     int64
	wordsPerEdge int64
}

func newPreadView(f *os.File, wordsPerEdge int64) *preadView {
	cache, _ := lru.New[int64, []byte](preadCachePages)
	return &preadView{
		f:            f,
		cache:        cache,
		pageSize:     int64(os.Getpagesize()),
		wordsPerEdge: wordsPerEdge,
	}
}

func (v *preadView) edge(rec int64) ([]uint32, error) {
	buf := make([]byte, v.wordsPerEdge*4)
	if err := v.readAt(buf, rec*v.wordsPerEdge*4); err != nil {
		return nil, err
	}
	out := make([]uint32, v.wordsPerEdge)
	for i := range out {
		out[i] = binary.NativeEndian.Uint32(buf[i*4:])
	}
	return out, nil
}

func (v *preadView) readAt(out []byte, off int64) error {
	for len(out) > 0 {
		mem, err := v.page(off / v.pageSize)
		if err != nil {
			return err
		}
		within := off % v.pageSize
		if within >= int64(len(mem)) {
			return errors.Errorf("read past end of file at offset %d", off)
		}
		n := copy(out, mem[within:])
		out = out[n:]
		off += int64(n)
	}
	return nil
}

func (v *preadView) page(page int64) ([]byte, error) {
	if mem, ok := v.cache.Get(page); ok {
		return mem, nil
	}
	mem := make([]byte, v.pageSize)
	n, err := v.f.ReadAt(mem, page*v.pageSize)
	if err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "pread page")
	}
	mem = mem[:n]
	v.cache.Add(page, mem)
	return mem, nil
}

func (v *preadView) adviseSequential(int64) {}

func (v *preadView) release(int, *errorcompounder.ErrorCompounder) {
	v.cache.Purge()
}
