// Package netfec frames a reedsolomon.Encoder into a packet-oriented
// forward error correction layer for unreliable transports (UDP and
// similar): it groups outgoing payloads into (N+K)-packet shard sets,
// prefixes each with a small sequence/type header, and on the receiving
// side reassembles a shard set and reconstructs any missing data
// packets once enough of the set has arrived.
//
// Grounded on the teacher's vendored kcp-go/v5/fec.go, the production
// consumer of klauspost/reedsolomon inside the KCP protocol. This
// package reimplements the shape of that framing (sequence id, data/
// parity flag, shard-set collection, ReconstructData) without importing
// kcp-go itself or its autotuning/heap/SNMP machinery.
package netfec

import (
	"encoding/binary"
	"errors"

	"github.com/luckyturtle/reed-solomon-erasure/reedsolomon"
)

const (
	headerSize = 6

	// TypeData marks a packet carrying one of the N data shards.
	TypeData uint16 = 0xf1
	// TypeParity marks a packet carrying one of the K parity shards.
	TypeParity uint16 = 0xf2

	// defaultMaxShardSets is the default eviction window: shard sets
	// older than the newest shard set seen by more than this many
	// positions are dropped, mirroring kcp-go's maxShardSets constant.
	defaultMaxShardSets = 3
)

// ErrShortPacket is returned when a packet is too small to carry the
// framing header.
var ErrShortPacket = errors.New("netfec: packet shorter than header")

// Packet is a framed FEC packet: a 6-byte header (4-byte little-endian
// sequence id, 2-byte type flag) followed by payload bytes.
type Packet []byte

// SeqID returns the packet's sequence id.
func (p Packet) SeqID() uint32 { return binary.LittleEndian.Uint32(p) }

// Type returns TypeData or TypeParity.
func (p Packet) Type() uint16 { return binary.LittleEndian.Uint16(p[4:]) }

// Payload returns the packet's payload, excluding the header.
func (p Packet) Payload() []byte { return p[headerSize:] }

// itimediff computes a wraparound-safe difference between two sequence
// ids, positive when later is ahead of earlier. Grounded on kcp-go's
// _itimediff idiom for comparing wrapping uint32 sequence numbers.
func itimediff(later, earlier uint32) int32 {
	return int32(later - earlier)
}

// Encoder frames outgoing payloads for one reedsolomon.Encoder: every
// DataShards payloads collected, it emits ParityShards parity packets
// alongside the DataShards data packets, all tagged with ascending
// sequence ids.
type Encoder struct {
	codec        *reedsolomon.Encoder
	dataShards   int
	parityShards int
	shardSize    int
	next         uint32

	shardCount int
	maxSize    int
	shardCache [][]byte
}

// NewEncoder creates a packet framer around codec.
func NewEncoder(codec *reedsolomon.Encoder) *Encoder {
	e := &Encoder{
		codec:        codec,
		dataShards:   codec.DataShards(),
		parityShards: codec.ParityShards(),
		shardSize:    codec.TotalShards(),
	}
	e.shardCache = make([][]byte, e.shardSize)
	return e
}

// Encode frames payload as the next data packet of the current shard
// set. It always returns the framed data packet; once DataShards
// payloads have been collected, it also returns the ParityShards framed
// parity packets for the completed set.
func (e *Encoder) Encode(payload []byte) (dataPacket Packet, parity []Packet, err error) {
	pkt := make(Packet, headerSize+len(payload))
	binary.LittleEndian.PutUint32(pkt, e.next)
	binary.LittleEndian.PutUint16(pkt[4:], TypeData)
	copy(pkt[headerSize:], payload)
	e.next++

	e.shardCache[e.shardCount] = pkt
	if len(payload) > e.maxSize {
		e.maxSize = len(payload)
	}
	e.shardCount++

	if e.shardCount < e.dataShards {
		return pkt, nil, nil
	}

	cache := make([][]byte, e.shardSize)
	for i := 0; i < e.dataShards; i++ {
		shard := e.shardCache[i]
		body := shard[headerSize:]
		if len(body) < e.maxSize {
			padded := make([]byte, e.maxSize)
			copy(padded, body)
			body = padded
		}
		cache[i] = body
	}
	for i := e.dataShards; i < e.shardSize; i++ {
		cache[i] = make([]byte, e.maxSize)
	}

	if encErr := e.codec.Encode(cache); encErr != nil {
		e.shardCount = 0
		e.maxSize = 0
		return pkt, nil, encErr
	}

	parity = make([]Packet, e.parityShards)
	for i := 0; i < e.parityShards; i++ {
		p := make(Packet, headerSize+e.maxSize)
		binary.LittleEndian.PutUint32(p, e.next)
		binary.LittleEndian.PutUint16(p[4:], TypeParity)
		copy(p[headerSize:], cache[e.dataShards+i])
		e.next++
		parity[i] = p
	}

	e.shardCount = 0
	e.maxSize = 0
	return pkt, parity, nil
}

// shardSet accumulates packets belonging to one (N+K)-sized erasure
// group, keyed by seqid/(N+K). Once the set has been handed to
// reconstruction it is kept with done set, so later packets of the same
// set are ignored until it is evicted.
type shardSet struct {
	shards  [][]byte
	present []bool
	seen    map[uint32]struct{}
	count   int
	done    bool
}

// Decoder reassembles shard sets from received packets and reconstructs
// missing data packets once enough of a set has arrived.
type Decoder struct {
	codec        *reedsolomon.Encoder
	dataShards   int
	parityShards int
	shardSize    int
	maxShardSets int32

	minShardID uint32
	haveMin    bool
	sets       map[uint32]*shardSet
}

// NewDecoder creates a packet reassembler around codec. maxShardSets
// bounds how many shard-set-ids behind the newest one seen are kept
// before being evicted; packets for sets further behind are dropped. If
// maxShardSets <= 0, defaultMaxShardSets is used.
func NewDecoder(codec *reedsolomon.Encoder, maxShardSets int) *Decoder {
	if maxShardSets <= 0 {
		maxShardSets = defaultMaxShardSets
	}
	return &Decoder{
		codec:        codec,
		dataShards:   codec.DataShards(),
		parityShards: codec.ParityShards(),
		shardSize:    codec.TotalShards(),
		maxShardSets: int32(maxShardSets),
		sets:         make(map[uint32]*shardSet),
	}
}

// Decode ingests one packet and, once its shard set has accumulated at
// least DataShards distinct packets, attempts reconstruction. It returns
// the recovered data payloads (those positions that were missing before
// this call completed the set), if any.
func (d *Decoder) Decode(pkt Packet) (recovered [][]byte, err error) {
	if len(pkt) < headerSize {
		return nil, ErrShortPacket
	}

	shardID := pkt.SeqID() / uint32(d.shardSize)
	if d.haveMin && itimediff(d.minShardID, shardID) > d.maxShardSets {
		return nil, nil
	}

	set, ok := d.sets[shardID]
	if !ok {
		set = &shardSet{
			shards:  make([][]byte, d.shardSize),
			present: make([]bool, d.shardSize),
			seen:    make(map[uint32]struct{}),
		}
		d.sets[shardID] = set
	}
	if set.done {
		return nil, nil
	}

	if _, dup := set.seen[pkt.SeqID()]; dup {
		return nil, nil
	}
	set.seen[pkt.SeqID()] = struct{}{}

	idx := pkt.SeqID() % uint32(d.shardSize)
	set.shards[idx] = pkt.Payload()
	set.present[idx] = true
	set.count++

	if set.count >= d.dataShards {
		recovered, err = d.reconstruct(set)
		*set = shardSet{done: true}
	}

	if !d.haveMin || itimediff(shardID, d.minShardID) > 0 {
		d.minShardID = shardID
		d.haveMin = true
	}
	d.evictStale()

	return recovered, err
}

// reconstruct runs ReconstructData over a completed shard set and
// returns the data payloads that had been missing.
func (d *Decoder) reconstruct(set *shardSet) ([][]byte, error) {
	dataPresent := 0
	maxLen := 0
	for i := 0; i < d.shardSize; i++ {
		if set.present[i] {
			if len(set.shards[i]) > maxLen {
				maxLen = len(set.shards[i])
			}
			if i < d.dataShards {
				dataPresent++
			}
		}
	}
	if dataPresent == d.dataShards {
		return nil, nil
	}

	shards := make([][]byte, d.shardSize)
	for i := 0; i < d.shardSize; i++ {
		if set.present[i] {
			if len(set.shards[i]) < maxLen {
				padded := make([]byte, maxLen)
				copy(padded, set.shards[i])
				shards[i] = padded
			} else {
				shards[i] = set.shards[i]
			}
		}
	}

	if err := d.codec.ReconstructData(shards); err != nil {
		return nil, err
	}

	var recovered [][]byte
	for i := 0; i < d.dataShards; i++ {
		if !set.present[i] {
			recovered = append(recovered, shards[i])
		}
	}
	return recovered, nil
}

// evictStale drops shard sets older than maxShardSets positions behind
// the newest shard set seen, mirroring kcp-go's flushShards.
func (d *Decoder) evictStale() {
	for id := range d.sets {
		if itimediff(d.minShardID, id) > d.maxShardSets {
			delete(d.sets, id)
		}
	}
}
