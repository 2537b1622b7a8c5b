//go:build parkinglot_enable_padding

package opt

import (
	"unsafe"
)

// BucketPad_ is force-enabled via the parkinglot_enable_padding build tag.
// Use: go build -tags=parkinglot_enable_padding
type BucketPad_ struct {
	_ [(CacheLineSize_ - unsafe.Sizeof(uintptr(0))%CacheLineSize_) % CacheLineSize_]byte
}
