//go:build !(amd64 || 386 || arm || mips || mipsle || wasm) && !parkinglot_disable_padding && !parkinglot_enable_padding

package opt

import (
	"unsafe"
)

// BucketPad_ is the trailing padding a bucket carries to avoid false
// sharing with its neighbors in the hash table's bucket array.
// Padding is automatically enabled for architectures that are NOT:
//   - amd64 (x86_64): hardware prefetch/coherency usually makes it unnecessary
//   - 32-bit architectures (386, arm, mips, mipsle, wasm): smaller cache lines/memory constraints
//
// Enabled for: arm64, s390x, ppc64, ppc64le, riscv64, loong64, mips64, mips64le, etc.
type BucketPad_ struct {
	_ [(CacheLineSize_ - unsafe.Sizeof(uintptr(0))%CacheLineSize_) % CacheLineSize_]byte
}
