package reedsolomon

import (
	"runtime"

	"github.com/klauspost/cpuid/v2"
)

// Option overrides a processing parameter of an Encoder being built by
// New or WithParams.
type Option func(*options)

type options struct {
	maxGoroutines  int
	minSplitSize   int
	bytesPerEncode int
}

const defaultBytesPerEncode = 32768

var defaultOptions = options{
	maxGoroutines:  384,
	minSplitSize:   -1,
	bytesPerEncode: defaultBytesPerEncode,
}

func init() {
	if runtime.GOMAXPROCS(0) <= 1 {
		defaultOptions.maxGoroutines = 1
	}
}

// WithMaxGoroutines sets the maximum number of goroutines used to split
// a single encode/verify/reconstruct call. Jobs are split into this many
// parts, unless each goroutine would process less than the minimum split
// size (see WithMinSplitSize). If n <= 0, it is ignored.
func WithMaxGoroutines(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxGoroutines = n
		}
	}
}

// WithMinSplitSize sets the minimum number of bytes a single goroutine
// will process. By default this is derived from detected L1 cache size.
// If n <= 0, it is ignored.
func WithMinSplitSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.minSplitSize = n
		}
	}
}

// WithBytesPerEncode sets the chunk size the coding engine partitions
// shard bytes into before dispatching to the worker pool. Default is
// 32768; the minimum accepted value is 1.
func WithBytesPerEncode(n int) Option {
	return func(o *options) {
		if n < 1 {
			n = 1
		}
		o.bytesPerEncode = n
	}
}

// resolveMinSplitSize derives a default minimum split size from detected
// CPU cache characteristics, mirroring the teacher's cpuid-driven
// autotuning in its vendored options.go, but applied once at New() time
// rather than baked into a package-level default.
func resolveMinSplitSize(parityShards int) int {
	cacheSize := cpuid.CPU.Cache.L1D
	if cacheSize <= 0 {
		cacheSize = 32 << 10
	}
	size := cacheSize / (parityShards + 1)
	if size < 1024 {
		size = 1024
	}
	return size
}
