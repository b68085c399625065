package dict

import (
	"math"
	"sort"
	"strconv"
	"sync"

	xxhash "github.com/cespare/xxhash/v2"
)

const minShardCount = 16

// ShardDict implements Dict with a fixed number of independently locked
// shards. A key's shard is xxhash(key) masked by the shard count, which is
// rounded up to a power of two. Multi-key operations visit shards one at a
// time in ascending index order and take each shard's lock at most once, so
// two concurrent multi-key calls cannot deadlock.
type ShardDict struct {
	shards []*shard
	mask   uint64
}

type shard struct {
	mu sync.RWMutex
	m  map[string]Value
}

// MakeShardDict creates a ShardDict with at least shardCount shards
func MakeShardDict(shardCount int) *ShardDict {
	if shardCount < minShardCount {
		shardCount = minShardCount
	}
	n := 1
	for n < shardCount {
		n <<= 1
	}
	shards := make([]*shard, n)
	for i := range shards {
		shards[i] = &shard{
			m: make(map[string]Value),
		}
	}
	return &ShardDict{
		shards: shards,
		mask:   uint64(n - 1),
	}
}

func (d *ShardDict) index(key []byte) int {
	return int(xxhash.Sum64(key) & d.mask)
}

// Get returns the value stored under key. The returned Value may alias stored
// bytes; callers must not modify it.
func (d *ShardDict) Get(key []byte) (Value, bool) {
	s := d.shards[d.index(key)]
	s.mu.RLock()
	v, ok := s.m[string(key)]
	s.mu.RUnlock()
	return v, ok
}

// Set stores an owned copy of val under key and reports prior presence
func (d *ShardDict) Set(key []byte, val []byte) bool {
	s := d.shards[d.index(key)]
	owned := copyBytes(val)
	s.mu.Lock()
	_, existed := s.m[string(key)]
	s.m[string(key)] = StringOf(owned)
	s.mu.Unlock()
	return existed
}

// Del removes keys grouped by shard, locking each shard once
func (d *ShardDict) Del(keys ...[]byte) int {
	removed := 0
	for _, idx := range d.groupByShard(keys) {
		s := d.shards[idx.shard]
		s.mu.Lock()
		for _, ki := range idx.keys {
			k := string(keys[ki])
			if _, ok := s.m[k]; ok {
				delete(s.m, k)
				removed++
			}
		}
		s.mu.Unlock()
	}
	return removed
}

// Exists counts present keys, grouped by shard. Duplicate keys count each
// time they appear, matching redis EXISTS semantics.
func (d *ShardDict) Exists(keys ...[]byte) int {
	count := 0
	for _, idx := range d.groupByShard(keys) {
		s := d.shards[idx.shard]
		s.mu.RLock()
		for _, ki := range idx.keys {
			if _, ok := s.m[string(keys[ki])]; ok {
				count++
			}
		}
		s.mu.RUnlock()
	}
	return count
}

// Incr increments the integer stored under key within a single shard lock.
// An absent key is initialized to 0 and incremented to 1. A string value must
// parse as a base-10 signed 64-bit integer. The stored value becomes
// integer-kind.
func (d *ShardDict) Incr(key []byte) (int64, error) {
	s := d.shards[d.index(key)]
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.m[string(key)]
	if !ok {
		s.m[string(key)] = IntOf(1)
		return 1, nil
	}
	var n int64
	switch v.Kind {
	case IntValue:
		n = v.Int
	case StringValue:
		parsed, err := strconv.ParseInt(string(v.Str), 10, 64)
		if err != nil {
			return 0, ErrNotInteger
		}
		n = parsed
	}
	if n == math.MaxInt64 {
		return 0, ErrOverflow
	}
	n++
	s.m[string(key)] = IntOf(n)
	return n, nil
}

// Rename moves the value of src to dst, unconditionally overwriting dst.
// Both shard locks are taken in ascending index order; a shared shard is
// locked once. Readers observe either the pre-state or the post-state.
func (d *ShardDict) Rename(src, dst []byte) error {
	si, di := d.index(src), d.index(dst)
	if si == di {
		s := d.shards[si]
		s.mu.Lock()
		defer s.mu.Unlock()
		v, ok := s.m[string(src)]
		if !ok {
			return ErrNoSuchKey
		}
		delete(s.m, string(src))
		s.m[string(dst)] = v
		return nil
	}
	lo, hi := d.shards[si], d.shards[di]
	if si > di {
		lo, hi = hi, lo
	}
	lo.mu.Lock()
	defer lo.mu.Unlock()
	hi.mu.Lock()
	defer hi.mu.Unlock()
	v, ok := d.shards[si].m[string(src)]
	if !ok {
		return ErrNoSuchKey
	}
	delete(d.shards[si].m, string(src))
	d.shards[di].m[string(dst)] = v
	return nil
}

// MGet looks keys up grouped by shard but returns results in input order
func (d *ShardDict) MGet(keys ...[]byte) []*Value {
	result := make([]*Value, len(keys))
	for _, idx := range d.groupByShard(keys) {
		s := d.shards[idx.shard]
		s.mu.RLock()
		for _, ki := range idx.keys {
			if v, ok := s.m[string(keys[ki])]; ok {
				held := v
				result[ki] = &held
			}
		}
		s.mu.RUnlock()
	}
	return result
}

// MSet stores the flat k1 v1 k2 v2 ... list. Pairs are grouped by the key's
// shard and each shard's writes happen under one lock acquisition; atomicity
// is per shard, not across shards.
func (d *ShardDict) MSet(pairs ...[]byte) {
	keys := make([][]byte, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		keys = append(keys, pairs[i])
	}
	for _, idx := range d.groupByShard(keys) {
		s := d.shards[idx.shard]
		// Copies are taken before the lock so the critical section stays
		// free of allocations of unrelated data.
		owned := make([][]byte, len(idx.keys))
		for j, ki := range idx.keys {
			owned[j] = copyBytes(pairs[ki*2+1])
		}
		s.mu.Lock()
		for j, ki := range idx.keys {
			s.m[string(keys[ki])] = StringOf(owned[j])
		}
		s.mu.Unlock()
	}
}

// Len returns the total number of keys
func (d *ShardDict) Len() int {
	total := 0
	for _, s := range d.shards {
		s.mu.RLock()
		total += len(s.m)
		s.mu.RUnlock()
	}
	return total
}

type shardGroup struct {
	shard int
	keys  []int
}

// groupByShard buckets key positions by shard index, ascending, so callers
// lock each shard at most once and always in the same order.
func (d *ShardDict) groupByShard(keys [][]byte) []shardGroup {
	buckets := make(map[int][]int)
	for i, k := range keys {
		idx := d.index(k)
		buckets[idx] = append(buckets[idx], i)
	}
	groups := make([]shardGroup, 0, len(buckets))
	for idx, ks := range buckets {
		groups = append(groups, shardGroup{shard: idx, keys: ks})
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].shard < groups[j].shard
	})
	return groups
}

func copyBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
