package reedsolomon

import "errors"

// Shard-count and dimension errors, returned by New/WithParams and by
// Encode/EncodeSep/Verify/VerifyWithBuffer/Reconstruct.
var (
	// ErrTooFewDataShards is returned by New/WithParams when dataShards <= 0.
	ErrTooFewDataShards = errors.New("reedsolomon: need at least one data shard")
	// ErrTooFewParityShards is returned by New/WithParams when parityShards <= 0.
	ErrTooFewParityShards = errors.New("reedsolomon: need at least one parity shard")
	// ErrTooManyShards is returned by New/WithParams when dataShards+parityShards > 256,
	// and by Encode/Verify/Reconstruct when the shard slice is longer than expected.
	ErrTooManyShards = errors.New("reedsolomon: too many total shards, maximum is 256")
	// ErrTooFewShards is returned by Encode/Verify/Reconstruct when the shard
	// slice is shorter than DataShards+ParityShards.
	ErrTooFewShards = errors.New("reedsolomon: too few shards given")
	// ErrTooFewDataShardsGiven is returned by EncodeSep when the data slice
	// has fewer than DataShards entries.
	ErrTooFewDataShardsGiven = errors.New("reedsolomon: data shard slice has wrong length")
	// ErrTooManyDataShardsGiven mirrors ErrTooFewDataShardsGiven for the
	// over-long case; both conditions are length mismatches against N.
	ErrTooManyDataShardsGiven = errors.New("reedsolomon: data shard slice has wrong length")
	// ErrTooFewParityShardsGiven is returned by EncodeSep/EncodeSingleSep
	// when the parity slice has fewer than ParityShards entries.
	ErrTooFewParityShardsGiven = errors.New("reedsolomon: parity shard slice has wrong length")
	// ErrTooManyParityShardsGiven mirrors ErrTooFewParityShardsGiven.
	ErrTooManyParityShardsGiven = errors.New("reedsolomon: parity shard slice has wrong length")
	// ErrTooFewBufferShards is returned by VerifyWithBuffer when len(buf) < ParityShards.
	ErrTooFewBufferShards = errors.New("reedsolomon: verify buffer has wrong shard count")
	// ErrTooManyBufferShards mirrors ErrTooFewBufferShards.
	ErrTooManyBufferShards = errors.New("reedsolomon: verify buffer has wrong shard count")
	// ErrTooFewShardsPresent is returned by Reconstruct/ReconstructData
	// when fewer than DataShards shards are present.
	ErrTooFewShardsPresent = errors.New("reedsolomon: too few shards present to reconstruct")
	// ErrEmptyShard is returned when a shard has length 0.
	ErrEmptyShard = errors.New("reedsolomon: shard must not be empty")
	// ErrIncorrectShardSize is returned when shards disagree on length, or
	// a fixed-size shard target can't be resized to the required length.
	ErrIncorrectShardSize = errors.New("reedsolomon: shards are of incorrect or inconsistent size")
	// ErrInvalidIndex is returned by EncodeSingle/EncodeSingleSep when
	// iData >= DataShards.
	ErrInvalidIndex = errors.New("reedsolomon: invalid data shard index")
	// ErrSingularMatrix is returned when a decode submatrix could not be
	// inverted; this cannot happen with a correctly-built generator matrix
	// and only surfaces if invariants are violated.
	ErrSingularMatrix = errors.New("reedsolomon: submatrix is singular, cannot reconstruct")

	// ErrTooManyCalls is returned by Bookkeeper.Encode/EncodeSep once the
	// cursor has reached DataShards and the parity set is already complete.
	ErrTooManyCalls = errors.New("reedsolomon: bookkeeper already has a complete parity set")
	// ErrLeftoverShards is returned by Bookkeeper.Reset when 0 < cursor < DataShards.
	ErrLeftoverShards = errors.New("reedsolomon: bookkeeper has a partially-built parity set, use ResetForce")
)
