// Package reedsolomon implements Reed-Solomon erasure coding over
// GF(2^8): a systematic generator matrix maps N data shards to N+K
// total shards such that any N of the N+K suffice to recover the rest.
package reedsolomon

import (
	"github.com/luckyturtle/reed-solomon-erasure/invtree"
	"github.com/luckyturtle/reed-solomon-erasure/matrix"
)

// Encoder holds the generator matrix, inversion cache, and tuning
// parameters for one (DataShards, ParityShards) coding scheme. An
// Encoder is immutable after construction and safe for concurrent use:
// its only mutable state is the inversion cache, which is internally
// synchronized.
type Encoder struct {
	dataShards   int
	parityShards int
	totalShards  int

	gen        matrix.Matrix // (N+K) x N generator matrix, identity on top
	parityRows matrix.Matrix // the bottom K rows of gen, sliced out for reuse

	tree *invtree.Tree
	opts options
}

// New creates an Encoder for dataShards data shards and parityShards
// parity shards, using default tuning parameters. It fails with
// ErrTooFewDataShards, ErrTooFewParityShards, or ErrTooManyShards.
func New(dataShards, parityShards int) (*Encoder, error) {
	return WithParams(dataShards, parityShards)
}

// WithParams creates an Encoder as New does, but accepts Options to
// override goroutine count, minimum split size, or chunk size.
func WithParams(dataShards, parityShards int, opts ...Option) (*Encoder, error) {
	if dataShards <= 0 {
		return nil, ErrTooFewDataShards
	}
	if parityShards <= 0 {
		return nil, ErrTooFewParityShards
	}
	total := dataShards + parityShards
	if total > 256 {
		return nil, ErrTooManyShards
	}

	o := defaultOptions
	if o.minSplitSize <= 0 {
		o.minSplitSize = resolveMinSplitSize(parityShards)
	}
	for _, opt := range opts {
		opt(&o)
	}

	gen, err := buildGenerator(dataShards, total)
	if err != nil {
		return nil, err
	}

	parityRows, err := gen.SubMatrix(dataShards, 0, total, dataShards)
	if err != nil {
		return nil, err
	}

	return &Encoder{
		dataShards:   dataShards,
		parityShards: parityShards,
		totalShards:  total,
		gen:          gen,
		parityRows:   parityRows,
		tree:         invtree.New(dataShards, total),
		opts:         o,
	}, nil
}

// buildGenerator constructs the (totalShards x dataShards) systematic
// generator matrix: a Vandermonde matrix multiplied by the inverse of
// its own top dataShards x dataShards block, per spec.md §4.3.
func buildGenerator(dataShards, totalShards int) (matrix.Matrix, error) {
	vm, err := matrix.Vandermonde(totalShards, dataShards)
	if err != nil {
		return nil, err
	}
	top, err := vm.SubMatrix(0, 0, dataShards, dataShards)
	if err != nil {
		return nil, err
	}
	topInv, err := top.Invert()
	if err != nil {
		if err == matrix.ErrSingular {
			return nil, ErrSingularMatrix
		}
		return nil, err
	}
	return vm.Multiply(topInv)
}

// DataShards returns N, the number of data shards.
func (e *Encoder) DataShards() int { return e.dataShards }

// ParityShards returns K, the number of parity shards.
func (e *Encoder) ParityShards() int { return e.parityShards }

// TotalShards returns N+K.
func (e *Encoder) TotalShards() int { return e.totalShards }

// Equal reports whether e and other are codecs with equal (N, K). Two
// codecs with equal (N, K) compute identical generator matrices and are
// therefore interchangeable.
func (e *Encoder) Equal(other *Encoder) bool {
	if other == nil {
		return false
	}
	return e.dataShards == other.dataShards && e.parityShards == other.parityShards
}

// checkShards verifies that all shards share one common non-zero
// length. If nilOK is true, zero-length shards are tolerated as
// "absent" and excluded from the length check.
func checkShards(shards [][]byte, nilOK bool) error {
	size := shardSize(shards)
	if size == 0 {
		return ErrEmptyShard
	}
	for _, s := range shards {
		if len(s) == 0 {
			if nilOK {
				continue
			}
			return ErrEmptyShard
		}
		if len(s) != size {
			return ErrIncorrectShardSize
		}
	}
	return nil
}

// shardSize returns the length of the first non-zero-length shard, or 0
// if every shard is zero-length.
func shardSize(shards [][]byte) int {
	for _, s := range shards {
		if len(s) != 0 {
			return len(s)
		}
	}
	return 0
}

// Encode computes parity for shards, a slice of exactly
// DataShards+ParityShards equal-length buffers holding data shards
// followed by parity shards. Only the parity positions are mutated.
func (e *Encoder) Encode(shards [][]byte) error {
	if len(shards) < e.totalShards {
		return ErrTooFewShards
	}
	if len(shards) > e.totalShards {
		return ErrTooManyShards
	}
	if err := checkShards(shards, false); err != nil {
		return err
	}
	output := shards[e.dataShards:]
	e.codeSomeShards(e.parityRows, shards[:e.dataShards], output, e.parityShards, len(shards[0]))
	return nil
}

// EncodeSep is Encode, but with data (read-only) and parity (the
// mutable sink, length exactly ParityShards) passed separately.
func (e *Encoder) EncodeSep(data, parity [][]byte) error {
	if len(data) < e.dataShards {
		return ErrTooFewDataShardsGiven
	}
	if len(data) > e.dataShards {
		return ErrTooManyDataShardsGiven
	}
	if len(parity) < e.parityShards {
		return ErrTooFewParityShardsGiven
	}
	if len(parity) > e.parityShards {
		return ErrTooManyParityShardsGiven
	}
	combined := make([][]byte, 0, len(data)+len(parity))
	combined = append(combined, data...)
	combined = append(combined, parity...)
	if err := checkShards(combined, false); err != nil {
		return err
	}
	e.codeSomeShards(e.parityRows, data, parity, e.parityShards, len(data[0]))
	return nil
}

// EncodeSingle applies the contribution of exactly one data shard,
// shards[iData], to the parity shards in shards[DataShards:]. Callers
// must invoke this with iData in strict ascending order 0..DataShards-1
// to build a correct parity set; see Bookkeeper for an enforced wrapper.
func (e *Encoder) EncodeSingle(iData int, shards [][]byte) error {
	if iData < 0 || iData >= e.dataShards {
		return ErrInvalidIndex
	}
	if len(shards) < e.totalShards {
		return ErrTooFewShards
	}
	if len(shards) > e.totalShards {
		return ErrTooManyShards
	}
	if err := checkShards(shards, false); err != nil {
		return err
	}
	outputs := shards[e.dataShards:]
	e.codeSingleSlice(e.parityRows, iData, shards[iData], outputs)
	return nil
}

// EncodeSingleSep is EncodeSingle, but with the one data shard and the
// parity sink passed directly instead of indexing into a combined slice.
func (e *Encoder) EncodeSingleSep(iData int, dataShard []byte, parity [][]byte) error {
	if iData < 0 || iData >= e.dataShards {
		return ErrInvalidIndex
	}
	if len(parity) < e.parityShards {
		return ErrTooFewParityShardsGiven
	}
	if len(parity) > e.parityShards {
		return ErrTooManyParityShardsGiven
	}
	combined := make([][]byte, 0, len(parity)+1)
	combined = append(combined, dataShard)
	combined = append(combined, parity...)
	if err := checkShards(combined, false); err != nil {
		return err
	}
	e.codeSingleSlice(e.parityRows, iData, dataShard, parity)
	return nil
}

// Verify recomputes parity into a scratch buffer and compares it
// against the parity shards present in shards. It returns true iff the
// parity exactly matches; shards is never mutated.
func (e *Encoder) Verify(shards [][]byte) (bool, error) {
	if len(shards) < e.totalShards {
		return false, ErrTooFewShards
	}
	if len(shards) > e.totalShards {
		return false, ErrTooManyShards
	}
	if err := checkShards(shards, false); err != nil {
		return false, err
	}
	shardLen := len(shards[0])
	buf := make([][]byte, e.parityShards)
	for i := range buf {
		buf[i] = make([]byte, shardLen)
	}
	toCheck := shards[e.dataShards:]
	return e.checkSomeShardsWithBuffer(e.parityRows, shards[:e.dataShards], toCheck, buf, e.parityShards, shardLen), nil
}

// VerifyWithBuffer is Verify, but writes the recomputed parity into the
// caller-supplied buf (length exactly ParityShards, each entry already
// sized to match shards) instead of allocating scratch buffers. On any
// non-error return, buf holds the freshly computed parity.
func (e *Encoder) VerifyWithBuffer(shards [][]byte, buf [][]byte) (bool, error) {
	if len(shards) < e.totalShards {
		return false, ErrTooFewShards
	}
	if len(shards) > e.totalShards {
		return false, ErrTooManyShards
	}
	if len(buf) < e.parityShards {
		return false, ErrTooFewBufferShards
	}
	if len(buf) > e.parityShards {
		return false, ErrTooManyBufferShards
	}
	if err := checkShards(shards, false); err != nil {
		return false, err
	}
	shardLen := len(shards[0])
	for _, b := range buf {
		if len(b) != shardLen {
			return false, ErrIncorrectShardSize
		}
	}
	toCheck := shards[e.dataShards:]
	return e.checkSomeShardsWithBuffer(e.parityRows, shards[:e.dataShards], toCheck, buf, e.parityShards, shardLen), nil
}

// Reconstruct recreates any missing shards (data or parity) in place,
// given a slice of exactly DataShards+ParityShards entries where a
// missing shard is represented by a nil or zero-length slice. If a
// zero-length slice has sufficient capacity, that backing array is
// reused; otherwise a new one is allocated. Fails with
// ErrTooFewShardsPresent if fewer than DataShards shards are present,
// in which case no shard is mutated.
func (e *Encoder) Reconstruct(shards [][]byte) error {
	return e.reconstruct(shards, false)
}

// ReconstructData is Reconstruct, but only recreates missing data
// shards; missing parity shards, if any, are left absent.
func (e *Encoder) ReconstructData(shards [][]byte) error {
	return e.reconstruct(shards, true)
}

func (e *Encoder) reconstruct(shards [][]byte, dataOnly bool) error {
	if len(shards) < e.totalShards {
		return ErrTooFewShards
	}
	if len(shards) > e.totalShards {
		return ErrTooManyShards
	}
	if err := checkShards(shards, true); err != nil {
		return err
	}

	shardLen := shardSize(shards)

	numberPresent := 0
	dataPresent := 0
	for i := 0; i < e.totalShards; i++ {
		if len(shards[i]) != 0 {
			numberPresent++
			if i < e.dataShards {
				dataPresent++
			}
		}
	}
	if numberPresent == e.totalShards || (dataOnly && dataPresent == e.dataShards) {
		return nil
	}
	if numberPresent < e.dataShards {
		return ErrTooFewShardsPresent
	}

	subShards := make([][]byte, e.dataShards)
	validIndices := make([]int, e.dataShards)
	invalidIndices := make([]int, 0, e.totalShards-e.dataShards)
	subRow := 0
	for row := 0; row < e.totalShards && subRow < e.dataShards; row++ {
		if len(shards[row]) != 0 {
			subShards[subRow] = shards[row]
			validIndices[subRow] = row
			subRow++
		} else {
			invalidIndices = append(invalidIndices, row)
		}
	}

	decodeMatrix, err := e.getDecodeMatrix(validIndices, invalidIndices)
	if err != nil {
		return err
	}

	outputs := make([][]byte, e.parityShards)
	matrixRows := make([][]byte, e.parityShards)
	outputCount := 0
	for i := 0; i < e.dataShards; i++ {
		if len(shards[i]) == 0 {
			if cap(shards[i]) >= shardLen {
				shards[i] = shards[i][:shardLen]
			} else {
				shards[i] = make([]byte, shardLen)
			}
			outputs[outputCount] = shards[i]
			matrixRows[outputCount] = decodeMatrix[i]
			outputCount++
		}
	}
	e.codeSomeShards(matrixRows, subShards, outputs[:outputCount], outputCount, shardLen)

	if dataOnly {
		return nil
	}

	outputCount = 0
	for i := e.dataShards; i < e.totalShards; i++ {
		if len(shards[i]) == 0 {
			if cap(shards[i]) >= shardLen {
				shards[i] = shards[i][:shardLen]
			} else {
				shards[i] = make([]byte, shardLen)
			}
			outputs[outputCount] = shards[i]
			matrixRows[outputCount] = e.parityRows[i-e.dataShards]
			outputCount++
		}
	}
	e.codeSomeShards(matrixRows, shards[:e.dataShards], outputs[:outputCount], outputCount, shardLen)
	return nil
}

// getDecodeMatrix returns the cached (or freshly computed and cached)
// decode matrix D(validIndices) for the given present/missing row split.
func (e *Encoder) getDecodeMatrix(validIndices, invalidIndices []int) (matrix.Matrix, error) {
	if m := e.tree.GetInvertedMatrix(invalidIndices); m != nil {
		return m, nil
	}

	sub, err := matrix.New(e.dataShards, e.dataShards)
	if err != nil {
		return nil, err
	}
	for subRow, validRow := range validIndices {
		for c := 0; c < e.dataShards; c++ {
			sub.Set(subRow, c, e.gen.Get(validRow, c))
		}
	}
	inv, err := sub.Invert()
	if err != nil {
		if err == matrix.ErrSingular {
			return nil, ErrSingularMatrix
		}
		return nil, err
	}
	if err := e.tree.InsertInvertedMatrix(invalidIndices, inv, e.totalShards); err != nil {
		return nil, err
	}
	return inv, nil
}

// ReconstructShards is Reconstruct expressed over the MaybePresent Shard
// capability (§4.8) instead of raw byte slices, for callers - like
// netfec - that already hold buffer-plus-flag or optional-buffer shards
// and don't want a conversion copy.
func (e *Encoder) ReconstructShards(shards []Shard) error {
	return e.reconstructShards(shards, false)
}

// ReconstructDataShards is ReconstructData over the Shard capability.
func (e *Encoder) ReconstructDataShards(shards []Shard) error {
	return e.reconstructShards(shards, true)
}

func (e *Encoder) reconstructShards(shards []Shard, dataOnly bool) error {
	if len(shards) < e.totalShards {
		return ErrTooFewShards
	}
	if len(shards) > e.totalShards {
		return ErrTooManyShards
	}

	shardLen := 0
	numberPresent := 0
	dataPresent := 0
	for i, s := range shards {
		l, present := s.Len()
		if !present {
			continue
		}
		if l == 0 {
			return ErrEmptyShard
		}
		if shardLen == 0 {
			shardLen = l
		} else if l != shardLen {
			return ErrIncorrectShardSize
		}
		numberPresent++
		if i < e.dataShards {
			dataPresent++
		}
	}
	if numberPresent == e.totalShards || (dataOnly && dataPresent == e.dataShards) {
		return nil
	}
	if numberPresent < e.dataShards {
		return ErrTooFewShardsPresent
	}

	subShards := make([][]byte, e.dataShards)
	validIndices := make([]int, e.dataShards)
	invalidIndices := make([]int, 0, e.totalShards-e.dataShards)
	subRow := 0
	for row := 0; row < e.totalShards && subRow < e.dataShards; row++ {
		if buf, present := shards[row].Get(); present {
			subShards[subRow] = buf
			validIndices[subRow] = row
			subRow++
		} else {
			invalidIndices = append(invalidIndices, row)
		}
	}

	decodeMatrix, err := e.getDecodeMatrix(validIndices, invalidIndices)
	if err != nil {
		return err
	}

	// Validate every absent shard can be initialized to shardLen before
	// initializing (and thereby mutating) any of them, so a size mismatch
	// discovered partway through can't leave an earlier shard already
	// flipped present.
	for i := 0; i < e.totalShards; i++ {
		if dataOnly && i >= e.dataShards {
			continue
		}
		if _, present := shards[i].Get(); !present {
			if err := shards[i].CanInitialize(shardLen); err != nil {
				return err
			}
		}
	}

	outputs := make([][]byte, e.parityShards)
	matrixRows := make([][]byte, e.parityShards)
	outputCount := 0
	for i := 0; i < e.dataShards; i++ {
		if _, present := shards[i].Get(); !present {
			buf, _, err := shards[i].GetOrInitialize(shardLen)
			if err != nil {
				return err
			}
			outputs[outputCount] = buf
			matrixRows[outputCount] = decodeMatrix[i]
			outputCount++
		}
	}
	e.codeSomeShards(matrixRows, subShards, outputs[:outputCount], outputCount, shardLen)

	if dataOnly {
		return nil
	}

	dataBufs := make([][]byte, e.dataShards)
	for i := 0; i < e.dataShards; i++ {
		buf, _ := shards[i].Get()
		dataBufs[i] = buf
	}

	outputCount = 0
	for i := e.dataShards; i < e.totalShards; i++ {
		if _, present := shards[i].Get(); !present {
			buf, _, err := shards[i].GetOrInitialize(shardLen)
			if err != nil {
				return err
			}
			outputs[outputCount] = buf
			matrixRows[outputCount] = e.parityRows[i-e.dataShards]
			outputCount++
		}
	}
	e.codeSomeShards(matrixRows, dataBufs, outputs[:outputCount], outputCount, shardLen)
	return nil
}
