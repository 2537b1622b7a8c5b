//go:build (amd64 || 386 || arm || mips || mipsle || wasm) && !parkinglot_disable_padding && !parkinglot_enable_padding

package opt

// BucketPad_ is the trailing padding a bucket carries to avoid false
// sharing with its neighbors in the hash table's bucket array.
// Padding is disabled by default for:
//   - amd64
//   - 32-bit architectures (386, arm, mips, mipsle, wasm)
type BucketPad_ struct{}
