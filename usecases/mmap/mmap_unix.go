//go:build darwin || linux

package mmap

import (
	"os"

	"github.com/edsrzf/mmap-go"
	"golang.org/x/sys/unix"
)

type MMap = mmap.MMap

const RDONLY = mmap.RDONLY

func MapRegion(f *os.File, length int, prot, flags int, offset int64) (MMap, error) {
	return mmap.MapRegion(f, length, prot, flags, offset)
}

// MadviseSequential hints that m[off:] is about to be scanned front to
// back. The hint is widened to the enclosing page boundary, errors are
// ignored.
func MadviseSequential(m MMap, off int) {
	if off < 0 || off >= len(m) {
		return
	}
	off -= off % os.Getpagesize()
	_ = unix.Madvise(m[off:], unix.MADV_SEQUENTIAL)
}
