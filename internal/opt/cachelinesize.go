package opt

import (
	"unsafe"

	"golang.org/x/sys/cpu"
)

// CacheLineSize_ pads buckets so that adjacent ones do not share a
// cache line. Derived from golang.org/x/sys/cpu for the
// build's GOARCH.
const CacheLineSize_ = unsafe.Sizeof(cpu.CacheLinePad{})
