// Package invtree caches inverted decode matrices keyed by the set of
// shard indices that were missing when the matrix was built, so that a
// repeated failure pattern (the same drives/nodes dropping out) never
// pays for a second Gauss-Jordan inversion.
package invtree

import (
	"errors"
	"sort"
	"sync"

	"github.com/luckyturtle/reed-solomon-erasure/matrix"
)

var (
	// ErrTooManyErrors is returned when more indices are marked invalid
	// than there are parity shards to reconstruct them.
	ErrTooManyErrors = errors.New("invtree: too many invalid shards to reconstruct")
	// ErrBadInput is returned when an index list is malformed: out of
	// range, or containing a duplicate.
	ErrBadInput = errors.New("invtree: invalid or duplicate shard index")
)

// Tree caches decode-matrix inverses keyed by the sorted set of invalid
// (missing) shard indices. It is safe for concurrent readers; an insert
// takes the exclusive lock, so while it runs it briefly blocks all other
// readers and writers.
//
// Grounded on the usage surface in reedsolomon.go (newInversionTree,
// getInvertedMatrix, insertInvertedMatrix) from the vendored library.
// A prefix-tree keyed on successive shard indices is the upstream
// structure; this implementation uses a flat map keyed by the encoded
// index set instead, which the spec explicitly allows as an equivalent
// cache as long as identical invalid-shard sets hit the cache.
type Tree struct {
	mu         sync.RWMutex
	dataShards int
	totalShards int
	cache      map[string]matrix.Matrix
}

// New creates a Tree for a coding scheme with the given data and total
// shard counts. The root entry - no shards invalid - is pre-seeded with
// the identity matrix, matching the invariant that decoding with no
// erasures is a no-op.
func New(dataShards, totalShards int) *Tree {
	id, _ := matrix.Identity(dataShards)
	t := &Tree{
		dataShards:  dataShards,
		totalShards: totalShards,
		cache:       make(map[string]matrix.Matrix),
	}
	t.cache[""] = id
	return t
}

// key canonicalizes an invalid-index list into a lookup key: sorted,
// validated for range and duplicates.
func (t *Tree) key(invalidIndices []int) (string, error) {
	if len(invalidIndices) > t.totalShards-t.dataShards {
		return "", ErrTooManyErrors
	}
	sorted := make([]int, len(invalidIndices))
	copy(sorted, invalidIndices)
	sort.Ints(sorted)
	buf := make([]byte, 0, len(sorted)*2)
	prev := -1
	for _, idx := range sorted {
		if idx < 0 || idx >= t.totalShards || idx == prev {
			return "", ErrBadInput
		}
		prev = idx
		buf = append(buf, byte(idx>>8), byte(idx))
	}
	return string(buf), nil
}

// GetInvertedMatrix returns the cached inverse for this invalid-index
// set, or nil if no matching entry has been inserted yet.
func (t *Tree) GetInvertedMatrix(invalidIndices []int) matrix.Matrix {
	key, err := t.key(invalidIndices)
	if err != nil {
		return nil
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.cache[key]
}

// InsertInvertedMatrix stores m as the cached inverse for this
// invalid-index set. If an entry already exists for the same set, the
// existing entry wins and m is discarded - first writer takes it,
// matching the upstream tree's behavior under concurrent decodes of the
// same erasure pattern.
func (t *Tree) InsertInvertedMatrix(invalidIndices []int, m matrix.Matrix, shards int) error {
	if !m.IsSquare() {
		return matrix.ErrNotSquare
	}
	key, err := t.key(invalidIndices)
	if err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.cache[key]; ok {
		return nil
	}
	t.cache[key] = m
	return nil
}
