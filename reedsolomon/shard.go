package reedsolomon

// Shard is the MaybePresent capability a ReconstructShards caller must
// provide for each of the N+K logical positions: a shard that may or
// may not currently hold data, and that reconstruction can initialize
// in place when it doesn't.
type Shard interface {
	// Len returns the shard's length and true if it is present, or
	// (0, false) if it is absent.
	Len() (int, bool)
	// Get returns the shard's bytes and true if present, or (nil, false)
	// if absent. The returned slice is a live, mutable view.
	Get() ([]byte, bool)
	// GetOrInitialize returns the shard's bytes if already present. If
	// absent, it attempts to initialize a buffer of the given length and
	// returns it along with initialized=true. It fails with
	// ErrIncorrectShardSize if the underlying representation cannot be
	// resized to length (e.g. a fixed-capacity buffer of the wrong size).
	GetOrInitialize(length int) (buf []byte, initialized bool, err error)
	// CanInitialize reports whether GetOrInitialize(length) would succeed,
	// without mutating any state. Callers that must initialize several
	// shards as a single all-or-nothing step use this to validate every
	// shard first, so a later failure can't leave an earlier shard already
	// mutated. Always nil for an already-present shard.
	CanInitialize(length int) error
}

// OptionalShard is a Shard backed by a plain []byte that is nil when
// absent. GetOrInitialize always succeeds for an absent shard, since the
// backing slice can be allocated to any length.
type OptionalShard struct {
	Buf []byte
}

// NewOptionalShard wraps buf (nil for an absent shard) as a Shard.
func NewOptionalShard(buf []byte) *OptionalShard {
	return &OptionalShard{Buf: buf}
}

// Len implements Shard.
func (s *OptionalShard) Len() (int, bool) {
	if s.Buf == nil {
		return 0, false
	}
	return len(s.Buf), true
}

// Get implements Shard.
func (s *OptionalShard) Get() ([]byte, bool) {
	if s.Buf == nil {
		return nil, false
	}
	return s.Buf, true
}

// GetOrInitialize implements Shard.
func (s *OptionalShard) GetOrInitialize(length int) ([]byte, bool, error) {
	if s.Buf != nil {
		return s.Buf, false, nil
	}
	s.Buf = make([]byte, length)
	return s.Buf, true, nil
}

// CanInitialize implements Shard. A nil backing slice can always be
// allocated to any length.
func (s *OptionalShard) CanInitialize(length int) error {
	return nil
}

// FlagShard is a Shard backed by a fixed-capacity buffer and an explicit
// Valid flag. GetOrInitialize fails with ErrIncorrectShardSize if the
// fixed buffer's length doesn't match the requested length, since it
// cannot be resized.
type FlagShard struct {
	Buf   []byte
	Valid bool
}

// NewFlagShard wraps a pre-allocated, fixed-size buf as a Shard, marked
// present iff valid.
func NewFlagShard(buf []byte, valid bool) *FlagShard {
	return &FlagShard{Buf: buf, Valid: valid}
}

// Len implements Shard.
func (s *FlagShard) Len() (int, bool) {
	if !s.Valid {
		return 0, false
	}
	return len(s.Buf), true
}

// Get implements Shard.
func (s *FlagShard) Get() ([]byte, bool) {
	if !s.Valid {
		return nil, false
	}
	return s.Buf, true
}

// GetOrInitialize implements Shard.
func (s *FlagShard) GetOrInitialize(length int) ([]byte, bool, error) {
	if s.Valid {
		return s.Buf, false, nil
	}
	if len(s.Buf) != length {
		return nil, false, ErrIncorrectShardSize
	}
	for i := range s.Buf {
		s.Buf[i] = 0
	}
	s.Valid = true
	return s.Buf, true, nil
}

// CanInitialize implements Shard: the fixed buffer can only be
// initialized to its own existing length.
func (s *FlagShard) CanInitialize(length int) error {
	if s.Valid {
		return nil
	}
	if len(s.Buf) != length {
		return ErrIncorrectShardSize
	}
	return nil
}
