package reedsolomon

import (
	"bytes"
	"math/rand"
	"testing"
)

func randomShards(n, l int, seed int64) [][]byte {
	r := rand.New(rand.NewSource(seed))
	shards := make([][]byte, n)
	for i := range shards {
		shards[i] = make([]byte, l)
		r.Read(shards[i])
	}
	return shards
}

func TestNewRejectsBadShardCounts(t *testing.T) {
	if _, err := New(0, 1); err != ErrTooFewDataShards {
		t.Fatalf("expected ErrTooFewDataShards, got %v", err)
	}
	if _, err := New(1, 0); err != ErrTooFewParityShards {
		t.Fatalf("expected ErrTooFewParityShards, got %v", err)
	}
	if _, err := New(128, 129); err != ErrTooManyShards {
		t.Fatalf("expected ErrTooManyShards, got %v", err)
	}
}

func TestEncodeThenVerify(t *testing.T) {
	enc, err := New(8, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data := randomShards(8, 1024, 1)
	shards := append(data, make([][]byte, 5)...)
	for i := 8; i < 13; i++ {
		shards[i] = make([]byte, 1024)
	}
	if err := enc.Encode(shards); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ok, err := enc.Verify(shards)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatalf("expected verify to succeed")
	}
}

func TestVerifyDetectsCorruption(t *testing.T) {
	enc, _ := New(5, 5)
	data := randomShards(5, 64, 2)
	shards := append(data, make([][]byte, 5)...)
	for i := 5; i < 10; i++ {
		shards[i] = make([]byte, 64)
	}
	if err := enc.Encode(shards); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	shards[7][0] ^= 0xFF
	ok, err := enc.Verify(shards)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatalf("expected verify to detect corruption")
	}
}

func TestReconstructSingleErasure(t *testing.T) {
	enc, _ := New(3, 2)
	data := [][]byte{
		{0, 1, 2, 3},
		{4, 5, 6, 7},
		{8, 9, 10, 11},
	}
	shards := append(append([][]byte{}, data...), make([]byte, 4), make([]byte, 4))
	if err := enc.Encode(shards); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := make([]byte, 4)
	copy(want, shards[0])
	shards[0] = nil
	if err := enc.ReconstructData(shards); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(shards[0], want) {
		t.Fatalf("reconstruct mismatch: got %v want %v", shards[0], want)
	}
}

func TestReconstructNErasures(t *testing.T) {
	enc, err := New(8, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data := randomShards(8, 2048, 3)
	shards := append(data, make([][]byte, 5)...)
	for i := 8; i < 13; i++ {
		shards[i] = make([]byte, 2048)
	}
	if err := enc.Encode(shards); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	original := make([][]byte, 13)
	for i, s := range shards {
		original[i] = append([]byte(nil), s...)
	}

	erase := []int{1, 3, 6, 9, 12}
	for _, i := range erase {
		shards[i] = nil
	}
	if err := enc.Reconstruct(shards); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range shards {
		if !bytes.Equal(shards[i], original[i]) {
			t.Fatalf("shard %d mismatch after reconstruct", i)
		}
	}
	ok, err := enc.Verify(shards)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatalf("expected verify to succeed after full reconstruct")
	}
}

func TestReconstructOverCapacityFails(t *testing.T) {
	enc, _ := New(8, 5)
	data := randomShards(8, 128, 4)
	shards := append(data, make([][]byte, 5)...)
	for i := 8; i < 13; i++ {
		shards[i] = make([]byte, 128)
	}
	if err := enc.Encode(shards); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	original := make([][]byte, 13)
	for i, s := range shards {
		original[i] = append([]byte(nil), s...)
	}
	for _, i := range []int{0, 1, 2, 3, 5, 9} {
		shards[i] = nil
	}
	if err := enc.Reconstruct(shards); err != ErrTooFewShardsPresent {
		t.Fatalf("expected ErrTooFewShardsPresent, got %v", err)
	}
	for i := range shards {
		if shards[i] == nil {
			continue
		}
		if !bytes.Equal(shards[i], original[i]) {
			t.Fatalf("shard %d mutated despite failed reconstruct", i)
		}
	}
}

func TestEncodeSingleMatchesEncode(t *testing.T) {
	enc, _ := New(10, 3)
	data := randomShards(10, 512, 5)

	viaEncode := append(append([][]byte{}, data...), make([][]byte, 3)...)
	for i := 10; i < 13; i++ {
		viaEncode[i] = make([]byte, 512)
	}
	if err := enc.Encode(viaEncode); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	viaSingle := append(append([][]byte{}, data...), make([][]byte, 3)...)
	for i := 10; i < 13; i++ {
		viaSingle[i] = make([]byte, 512)
	}
	for i := 0; i < 10; i++ {
		if err := enc.EncodeSingle(i, viaSingle); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	for i := 10; i < 13; i++ {
		if !bytes.Equal(viaEncode[i], viaSingle[i]) {
			t.Fatalf("parity shard %d differs between Encode and EncodeSingle sequence", i)
		}
	}
}

func TestEncodingIsLinear(t *testing.T) {
	enc, _ := New(4, 3)
	a := randomShards(4, 256, 6)
	b := randomShards(4, 256, 7)
	aXorB := make([][]byte, 4)
	for i := range aXorB {
		aXorB[i] = make([]byte, 256)
		for j := range aXorB[i] {
			aXorB[i][j] = a[i][j] ^ b[i][j]
		}
	}

	encode := func(data [][]byte) [][]byte {
		shards := append(append([][]byte{}, data...), make([][]byte, 3)...)
		for i := 4; i < 7; i++ {
			shards[i] = make([]byte, 256)
		}
		if err := enc.Encode(shards); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return shards[4:]
	}

	pa := encode(a)
	pb := encode(b)
	pab := encode(aXorB)

	for i := 0; i < 3; i++ {
		for j := 0; j < 256; j++ {
			if pab[i][j] != pa[i][j]^pb[i][j] {
				t.Fatalf("linearity violated at parity %d byte %d", i, j)
			}
		}
	}
}

func TestCacheHitAndMissAgree(t *testing.T) {
	enc, _ := New(6, 4)
	data := randomShards(6, 300, 8)
	shards := append(data, make([][]byte, 4)...)
	for i := 6; i < 10; i++ {
		shards[i] = make([]byte, 300)
	}
	if err := enc.Encode(shards); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	original := make([][]byte, 10)
	for i, s := range shards {
		original[i] = append([]byte(nil), s...)
	}

	run := func() [][]byte {
		cp := make([][]byte, 10)
		for i, s := range original {
			cp[i] = append([]byte(nil), s...)
		}
		cp[1], cp[7] = nil, nil
		if err := enc.Reconstruct(cp); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return cp
	}

	first := run()  // cache miss, computes and inserts
	second := run() // cache hit, same erasure pattern
	for i := range first {
		if !bytes.Equal(first[i], second[i]) {
			t.Fatalf("cache-hit and cache-miss reconstructions disagree at shard %d", i)
		}
	}
}

func TestEqual(t *testing.T) {
	a, _ := New(4, 3)
	b, _ := New(4, 3)
	c, _ := New(4, 4)
	if !a.Equal(b) {
		t.Fatalf("expected equal codecs with same (N,K)")
	}
	if a.Equal(c) {
		t.Fatalf("expected unequal codecs with different K")
	}
}

func TestEmptyShardRejected(t *testing.T) {
	enc, _ := New(3, 2)
	shards := [][]byte{{}, {1}, {2}, make([]byte, 1), make([]byte, 1)}
	if err := enc.Encode(shards); err != ErrEmptyShard {
		t.Fatalf("expected ErrEmptyShard, got %v", err)
	}
}

func TestMixedLengthsRejected(t *testing.T) {
	enc, _ := New(3, 2)
	shards := [][]byte{{1, 2}, {1}, {1, 2}, make([]byte, 2), make([]byte, 2)}
	if err := enc.Encode(shards); err != ErrIncorrectShardSize {
		t.Fatalf("expected ErrIncorrectShardSize, got %v", err)
	}
}

func TestKnownVectorS1(t *testing.T) {
	enc, err := New(5, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	shards := [][]byte{
		{0, 1}, {4, 5}, {2, 3}, {6, 7}, {8, 9},
		make([]byte, 2), make([]byte, 2), make([]byte, 2), make([]byte, 2), make([]byte, 2),
	}
	if err := enc.Encode(shards); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := [][]byte{{12, 13}, {10, 11}, {14, 15}, {90, 91}, {94, 95}}
	for i, w := range want {
		if !bytes.Equal(shards[5+i], w) {
			t.Fatalf("parity shard %d: got %v want %v", i, shards[5+i], w)
		}
	}

	for i := 5; i < 10; i++ {
		mutated := make([][]byte, 10)
		for j, s := range shards {
			mutated[j] = append([]byte(nil), s...)
		}
		mutated[i][0] ^= 0xFF
		ok, err := enc.Verify(mutated)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ok {
			t.Fatalf("expected verify to fail after mutating byte 0 of parity shard %d", i-5)
		}
	}
}

func TestReconstructShardsMatchesByteSliceForm(t *testing.T) {
	enc, _ := New(5, 3)
	data := randomShards(5, 128, 9)
	byteShards := append(data, make([][]byte, 3)...)
	for i := 5; i < 8; i++ {
		byteShards[i] = make([]byte, 128)
	}
	if err := enc.Encode(byteShards); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	shardIface := make([]Shard, 8)
	for i, s := range byteShards {
		buf := append([]byte(nil), s...)
		shardIface[i] = NewOptionalShard(buf)
	}
	byteShards[2] = nil
	shardIface[2] = NewOptionalShard(nil)

	if err := enc.Reconstruct(byteShards); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := enc.ReconstructShards(shardIface); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := shardIface[2].Get()
	if !bytes.Equal(got, byteShards[2]) {
		t.Fatalf("ReconstructShards disagrees with byte-slice Reconstruct")
	}
}

func TestReconstructShardsFailsWithoutPartialMutation(t *testing.T) {
	enc, _ := New(4, 3)
	data := randomShards(4, 32, 10)
	byteShards := append(data, make([][]byte, 3)...)
	for i := 4; i < 7; i++ {
		byteShards[i] = make([]byte, 32)
	}
	if err := enc.Encode(byteShards); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	shardIface := make([]Shard, 7)
	for i, s := range byteShards {
		shardIface[i] = NewFlagShard(append([]byte(nil), s...), true)
	}

	// Shard 0 is absent with a correctly-sized fixed buffer; shard 1 is
	// absent with a wrongly-sized one. Validation for shard 1 must fail
	// before shard 0 is ever touched.
	sentinel := make([]byte, 32)
	for i := range sentinel {
		sentinel[i] = 0xAA
	}
	shardIface[0] = NewFlagShard(sentinel, false)
	shardIface[1] = NewFlagShard(make([]byte, 31), false)

	err := enc.ReconstructShards(shardIface)
	if err != ErrIncorrectShardSize {
		t.Fatalf("expected ErrIncorrectShardSize, got %v", err)
	}

	f0 := shardIface[0].(*FlagShard)
	if f0.Valid {
		t.Fatalf("shard 0 was mutated to present despite the overall call failing")
	}
	for _, b := range f0.Buf {
		if b != 0xAA {
			t.Fatalf("shard 0's buffer was zeroed despite the overall call failing")
		}
	}
}
