package reedsolomon

import (
	"bytes"
	"sync"

	"github.com/luckyturtle/reed-solomon-erasure/galois"
)

// codeSomeShards multiplies a subset of rows from the generator/decode
// matrix by a full set of input shards, producing outputCount output
// shards. matrixRows[i] is the row used to compute outputs[i]; each row
// has one coefficient per input column. byteCount is the number of
// bytes to process per shard (usually len(inputs[0])).
//
// Grounded on the teacher's vendored reedsolomon.go codeSomeShards: the
// first input column overwrites each output with mul_slice, every
// subsequent column accumulates with mul_slice_xor, so parity
// destinations need not be pre-zeroed.
func (r *Encoder) codeSomeShards(matrixRows, inputs, outputs [][]byte, outputCount, byteCount int) {
	if outputCount == 0 {
		return
	}
	if r.opts.maxGoroutines > 1 && byteCount > r.opts.minSplitSize {
		r.codeSomeShardsP(matrixRows, inputs, outputs, outputCount, byteCount)
		return
	}

	start, end := 0, r.opts.bytesPerEncode
	if end > byteCount {
		end = byteCount
	}
	for start < byteCount {
		for c := 0; c < len(inputs); c++ {
			in := inputs[c][start:end]
			for iRow := 0; iRow < outputCount; iRow++ {
				if c == 0 {
					galois.MulSlice(matrixRows[iRow][c], in, outputs[iRow][start:end])
				} else {
					galois.MulSliceXor(matrixRows[iRow][c], in, outputs[iRow][start:end])
				}
			}
		}
		start = end
		end += r.opts.bytesPerEncode
		if end > byteCount {
			end = byteCount
		}
	}
}

// codeSomeShardsP is codeSomeShards, dispatched across a worker pool of
// goroutines; each goroutine owns a disjoint byte range and iterates the
// same chunked overwrite-then-XOR pattern within it.
func (r *Encoder) codeSomeShardsP(matrixRows, inputs, outputs [][]byte, outputCount, byteCount int) {
	var wg sync.WaitGroup
	do := byteCount / r.opts.maxGoroutines
	if do < r.opts.minSplitSize {
		do = r.opts.minSplitSize
	}
	start := 0
	for start < byteCount {
		if start+do > byteCount {
			do = byteCount - start
		}
		wg.Add(1)
		go func(start, stop int) {
			defer wg.Done()
			lstart, lstop := start, start+r.opts.bytesPerEncode
			if lstop > stop {
				lstop = stop
			}
			for lstart < stop {
				for c := 0; c < len(inputs); c++ {
					in := inputs[c][lstart:lstop]
					for iRow := 0; iRow < outputCount; iRow++ {
						if c == 0 {
							galois.MulSlice(matrixRows[iRow][c], in, outputs[iRow][lstart:lstop])
						} else {
							galois.MulSliceXor(matrixRows[iRow][c], in, outputs[iRow][lstart:lstop])
						}
					}
				}
				lstart = lstop
				lstop += r.opts.bytesPerEncode
				if lstop > stop {
					lstop = stop
				}
			}
		}(start, start+do)
		start += do
	}
	wg.Wait()
}

// codeSingleSlice updates outputs using only the single input column at
// iInput: if iInput == 0 it overwrites (mul_slice), otherwise it
// accumulates (mul_slice_xor). This is the kernel behind EncodeSingle
// and the shard-by-shard Bookkeeper.
func (r *Encoder) codeSingleSlice(matrixRows [][]byte, iInput int, input []byte, outputs [][]byte) {
	byteCount := len(input)
	if r.opts.maxGoroutines > 1 && byteCount > r.opts.minSplitSize {
		r.codeSingleSliceP(matrixRows, iInput, input, outputs)
		return
	}
	start, end := 0, r.opts.bytesPerEncode
	if end > byteCount {
		end = byteCount
	}
	for start < byteCount {
		in := input[start:end]
		for iRow := range outputs {
			if iInput == 0 {
				galois.MulSlice(matrixRows[iRow][iInput], in, outputs[iRow][start:end])
			} else {
				galois.MulSliceXor(matrixRows[iRow][iInput], in, outputs[iRow][start:end])
			}
		}
		start = end
		end += r.opts.bytesPerEncode
		if end > byteCount {
			end = byteCount
		}
	}
}

func (r *Encoder) codeSingleSliceP(matrixRows [][]byte, iInput int, input []byte, outputs [][]byte) {
	var wg sync.WaitGroup
	byteCount := len(input)
	do := byteCount / r.opts.maxGoroutines
	if do < r.opts.minSplitSize {
		do = r.opts.minSplitSize
	}
	start := 0
	for start < byteCount {
		if start+do > byteCount {
			do = byteCount - start
		}
		wg.Add(1)
		go func(start, stop int) {
			defer wg.Done()
			lstart, lstop := start, start+r.opts.bytesPerEncode
			if lstop > stop {
				lstop = stop
			}
			for lstart < stop {
				in := input[lstart:lstop]
				for iRow := range outputs {
					if iInput == 0 {
						galois.MulSlice(matrixRows[iRow][iInput], in, outputs[iRow][lstart:lstop])
					} else {
						galois.MulSliceXor(matrixRows[iRow][iInput], in, outputs[iRow][lstart:lstop])
					}
				}
				lstart = lstop
				lstop += r.opts.bytesPerEncode
				if lstop > stop {
					lstop = stop
				}
			}
		}(start, start+do)
		start += do
	}
	wg.Wait()
}

// checkSomeShardsWithBuffer encodes matrixRows against inputs into
// buffer, then compares the result against toCheck, short-circuiting on
// the first mismatch. The serial path encodes whole shards and then
// compares shard by shard; the parallel path splits the byte range as
// codeSomeShardsP does (byteCount/maxGoroutines, at least minSplitSize),
// and each goroutine encodes its whole range before comparing it, so
// buffer always ends up fully encoded. Neither path splits the work into
// bytesPerEncode-sized chunks.
func (r *Encoder) checkSomeShardsWithBuffer(matrixRows, inputs [][]byte, toCheck [][]byte, buffer [][]byte, outputCount, byteCount int) bool {
	if r.opts.maxGoroutines > 1 && byteCount > r.opts.minSplitSize {
		return r.checkSomeShardsWithBufferP(matrixRows, inputs, toCheck, buffer, outputCount, byteCount)
	}
	for c := 0; c < len(inputs); c++ {
		in := inputs[c]
		for iRow := 0; iRow < outputCount; iRow++ {
			if c == 0 {
				galois.MulSlice(matrixRows[iRow][c], in, buffer[iRow])
			} else {
				galois.MulSliceXor(matrixRows[iRow][c], in, buffer[iRow])
			}
		}
	}
	for i := 0; i < outputCount; i++ {
		if !bytes.Equal(buffer[i], toCheck[i]) {
			return false
		}
	}
	return true
}

func (r *Encoder) checkSomeShardsWithBufferP(matrixRows, inputs [][]byte, toCheck [][]byte, buffer [][]byte, outputCount, byteCount int) bool {
	same := true
	var mu sync.RWMutex
	var wg sync.WaitGroup

	do := byteCount / r.opts.maxGoroutines
	if do < r.opts.minSplitSize {
		do = r.opts.minSplitSize
	}
	start := 0
	for start < byteCount {
		if start+do > byteCount {
			do = byteCount - start
		}
		wg.Add(1)
		go func(start, stop int) {
			defer wg.Done()
			for c := 0; c < len(inputs); c++ {
				in := inputs[c][start:stop]
				for iRow := 0; iRow < outputCount; iRow++ {
					if c == 0 {
						galois.MulSlice(matrixRows[iRow][c], in, buffer[iRow][start:stop])
					} else {
						galois.MulSliceXor(matrixRows[iRow][c], in, buffer[iRow][start:stop])
					}
				}
			}
			mu.RLock()
			stillSame := same
			mu.RUnlock()
			if !stillSame {
				return
			}
			for i := 0; i < outputCount; i++ {
				if !bytes.Equal(buffer[i][start:stop], toCheck[i][start:stop]) {
					mu.Lock()
					same = false
					mu.Unlock()
					return
				}
			}
		}(start, start+do)
		start += do
	}
	wg.Wait()
	return same
}
