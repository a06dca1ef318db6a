// Copyright 2020 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package profilecache caches built query profiles keyed by the query
// sequence and scoring parameters that produced them, so a CLI or service
// re-aligning the same query against many database shards doesn't pay
// align.Init's profile-construction cost on every shard.
package profilecache

import (
	"encoding/binary"
	"sync"

	farm "github.com/dgryski/go-farm"
	"github.com/minio/highwayhash"
)

// Key identifies one cached profile: Fast is a cheap hash used to pick a
// bucket, Integrity is a keyed digest checked on load to detect corruption
// (a bit-flipped disk cache entry silently producing wrong alignments
// would be worse than a cache miss).
type Key struct {
	Fast      uint64
	Integrity [highwayhash.Size]uint8
}

var integritySeed [highwayhash.Size]byte

// NewKey derives a Key from a query sequence, the scoring matrix's name and
// the bias-correction setting, so two Init calls that differ in any of them
// get different keys. Gap costs are not part of the key.
func NewKey(query []byte, matrixName string, aaBiasCorrection bool) Key {
	buf := make([]byte, 0, len(query)+len(matrixName)+1)
	buf = append(buf, query...)
	buf = append(buf, matrixName...)
	if aaBiasCorrection {
		buf = append(buf, 1)
	} else {
		buf = append(buf, 0)
	}
	return Key{
		Fast:      farm.Hash64(buf),
		Integrity: highwayhash.Sum(buf, integritySeed[:]),
	}
}

// Entry is one cached profile, opaque to this package: callers store
// whatever serialized form align.StripedProfile/align.LinearProfile takes.
type Entry struct {
	Key  Key
	Data []byte
}

// Store is the collaborator profilecache needs from its backing storage:
// an in-memory shard map for process-local reuse, or a disk/object-store
// layer for reuse across processes.
type Store interface {
	Get(key Key) (Entry, bool)
	Put(entry Entry)
}

const numShards = 256

// MemStore is a sharded, mutex-protected in-memory Store. Sharding by the
// low byte of Key.Fast follows the same bucket-by-hash-byte layout as
// fusion's kmer index, trading a little memory for lock contention that
// scales with core count rather than a single global mutex.
type MemStore struct {
	shards [numShards]memShard
}

type memShard struct {
	mu      sync.RWMutex
	entries map[uint64]Entry
}

// NewMemStore constructs an empty MemStore.
func NewMemStore() *MemStore {
	s := &MemStore{}
	for i := range s.shards {
		s.shards[i].entries = make(map[uint64]Entry)
	}
	return s
}

func (s *MemStore) shardFor(key Key) *memShard {
	return &s.shards[byte(key.Fast)]
}

// Get returns the cached entry for key, verifying its integrity digest
// before returning it; a corrupted or colliding entry is treated as a
// cache miss rather than silently returned.
func (s *MemStore) Get(key Key) (Entry, bool) {
	shard := s.shardFor(key)
	shard.mu.RLock()
	defer shard.mu.RUnlock()
	e, ok := s.shards[byte(key.Fast)].entries[key.Fast]
	if !ok || e.Key.Integrity != key.Integrity {
		return Entry{}, false
	}
	return e, true
}

// Put stores entry, overwriting any existing entry with the same Fast
// hash (a 64-bit farm hash collision between two different queries is
// astronomically unlikely, but Get's integrity check still catches it).
func (s *MemStore) Put(entry Entry) {
	shard := s.shardFor(entry.Key)
	shard.mu.Lock()
	defer shard.mu.Unlock()
	shard.entries[entry.Key.Fast] = entry
}

// EncodeKey serializes a Key to a fixed-width byte slice, for Stores that
// persist entries keyed by bytes (e.g. a disk or KV-backed Store).
func EncodeKey(k Key) []byte {
	buf := make([]byte, 8+highwayhash.Size)
	binary.LittleEndian.PutUint64(buf, k.Fast)
	copy(buf[8:], k.Integrity[:])
	return buf
}
