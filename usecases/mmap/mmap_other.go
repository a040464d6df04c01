//go:build !(darwin || linux)

package mmap

import (
	"os"

	"github.com/edsrzf/mmap-go"
)

type MMap = mmap.MMap

const RDONLY = mmap.RDONLY

func MapRegion(f *os.File, length int, prot, flags int, offset int64) (MMap, error) {
	return mmap.MapRegion(f, length, prot, flags, offset)
}

// MadviseSequential is a no-op on platforms without madvise.
func MadviseSequential(MMap, int) {}
