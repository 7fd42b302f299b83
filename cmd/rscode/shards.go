package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// shardMeta records what's needed to reassemble the original file from
// its shards: the exact byte length before zero-padding to perShard.
// Stored alongside the shard files since the padding itself is lossy.
type shardMeta struct {
	Size int `json:"size"`
}

func metaFileName(dir string) string {
	return filepath.Join(dir, "shards.json")
}

func writeMeta(dir string, size int) error {
	f, err := os.Create(metaFileName(dir))
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(shardMeta{Size: size})
}

func readMeta(dir string) (shardMeta, error) {
	var meta shardMeta
	f, err := os.Open(metaFileName(dir))
	if err != nil {
		return meta, err
	}
	defer f.Close()
	err = json.NewDecoder(f).Decode(&meta)
	return meta, err
}

// ErrShortData is returned by splitData when data is empty, and by
// joinData when the data shards hold fewer bytes than requested.
var ErrShortData = errors.New("rscode: not enough data to fill the requested number of shards")

// splitData partitions data into count equally-sized shards, zero-padding
// the tail to make the sizes divide evenly.
//
// Grounded on the vendored klauspost/reedsolomon Split(): per-shard size
// is ceil(len(data)/count), and a final shard short of that size is
// padded with zeros rather than left ragged, since every operation on
// the coding engine requires equal-length shards.
func splitData(data []byte, count int) ([][]byte, error) {
	if len(data) == 0 {
		return nil, ErrShortData
	}
	perShard := (len(data) + count - 1) / count
	padded := make([]byte, count*perShard)
	copy(padded, data)

	shards := make([][]byte, count)
	for i := 0; i < count; i++ {
		shards[i] = padded[i*perShard : (i+1)*perShard]
	}
	return shards, nil
}

// joinData concatenates the first dataShards shards and trims the result
// to outSize bytes.
func joinData(shards [][]byte, dataShards, outSize int) ([]byte, error) {
	total := 0
	for i := 0; i < dataShards; i++ {
		if shards[i] == nil {
			return nil, fmt.Errorf("rscode: data shard %d missing, reconstruct before joining", i)
		}
		total += len(shards[i])
	}
	if total < outSize {
		return nil, ErrShortData
	}
	out := make([]byte, 0, outSize)
	for i := 0; i < dataShards && len(out) < outSize; i++ {
		out = append(out, shards[i]...)
	}
	return out[:outSize], nil
}

func shardFileName(dir string, i int) string {
	return filepath.Join(dir, fmt.Sprintf("shard-%04d", i))
}

// writeShards writes each non-nil shard to its own file under dir.
func writeShards(dir string, shards [][]byte) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	for i, s := range shards {
		if s == nil {
			continue
		}
		if err := os.WriteFile(shardFileName(dir, i), s, 0644); err != nil {
			return err
		}
	}
	return nil
}

// readShards loads up to total shard files from dir; a missing file is
// represented as a nil entry (absent), matching the byte-slice
// MaybePresent convention the coding engine expects for reconstruction.
func readShards(dir string, total int) ([][]byte, error) {
	shards := make([][]byte, total)
	for i := 0; i < total; i++ {
		buf, err := os.ReadFile(shardFileName(dir, i))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
		shards[i] = buf
	}
	return shards, nil
}
