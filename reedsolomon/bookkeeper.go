package reedsolomon

// RSError wraps an error returned by the Encoder a Bookkeeper drives, so
// callers can still reach the underlying sentinel via errors.Is/errors.As
// while knowing the failure happened mid-sequence.
type RSError struct {
	Err error
}

// Error implements error.
func (e *RSError) Error() string {
	return "reedsolomon: bookkeeper: " + e.Err.Error()
}

// Unwrap allows errors.Is/errors.As to reach the wrapped codec error.
func (e *RSError) Unwrap() error {
	return e.Err
}

// Bookkeeper drives a sequence of single-data-shard EncodeSingle calls
// in the strict ascending order the codec requires, so callers can build
// a parity set incrementally - one data shard at a time - without having
// to track the index themselves.
//
// A Bookkeeper has two states: Accepting (cursor < DataShards), in which
// Encode/EncodeSep are legal and advance the cursor, and Ready (cursor ==
// DataShards), in which the parity set is complete and further Encode
// calls are rejected.
type Bookkeeper struct {
	enc    *Encoder
	cursor int
}

// NewBookkeeper creates a Bookkeeper wrapping enc, starting in the
// Accepting state with cursor 0.
func NewBookkeeper(enc *Encoder) *Bookkeeper {
	return &Bookkeeper{enc: enc}
}

// Encode feeds shards[b.CurInputIndex()] into the parity shards
// shards[DataShards:], then advances the cursor. It fails with
// ErrTooManyCalls once the bookkeeper is Ready; any error from the
// wrapped Encoder is returned as *RSError.
func (b *Bookkeeper) Encode(shards [][]byte) error {
	if b.cursor >= b.enc.dataShards {
		return ErrTooManyCalls
	}
	if err := b.enc.EncodeSingle(b.cursor, shards); err != nil {
		return &RSError{Err: err}
	}
	b.cursor++
	return nil
}

// EncodeSep is Encode, but with the one data shard and the parity sink
// passed directly, mirroring Encoder.EncodeSingleSep.
func (b *Bookkeeper) EncodeSep(dataShard []byte, parity [][]byte) error {
	if b.cursor >= b.enc.dataShards {
		return ErrTooManyCalls
	}
	if err := b.enc.EncodeSingleSep(b.cursor, dataShard, parity); err != nil {
		return &RSError{Err: err}
	}
	b.cursor++
	return nil
}

// ParityReady reports whether the bookkeeper has consumed all
// DataShards data shards and the parity set is complete.
func (b *Bookkeeper) ParityReady() bool {
	return b.cursor == b.enc.dataShards
}

// CurInputIndex returns the index of the next data shard Encode/EncodeSep
// expects.
func (b *Bookkeeper) CurInputIndex() int {
	return b.cursor
}

// Reset returns the bookkeeper to cursor 0, ready to build a new parity
// set. It fails with ErrLeftoverShards if the current parity set is only
// partially built (0 < cursor < DataShards); use ResetForce to discard a
// partial set unconditionally.
func (b *Bookkeeper) Reset() error {
	if b.cursor > 0 && b.cursor < b.enc.dataShards {
		return ErrLeftoverShards
	}
	b.cursor = 0
	return nil
}

// ResetForce unconditionally returns the bookkeeper to cursor 0,
// discarding any partially-built parity set.
func (b *Bookkeeper) ResetForce() {
	b.cursor = 0
}
