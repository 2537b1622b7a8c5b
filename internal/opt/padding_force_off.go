//go:build parkinglot_disable_padding

package opt

// BucketPad_ is force-disabled via the parkinglot_disable_padding build tag.
// Use: go build -tags=parkinglot_disable_padding
type BucketPad_ struct{}
