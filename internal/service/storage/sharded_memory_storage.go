package storage

import (
	"fmt"
	"sync"
)

// ShardedMemoryStorage - sharded object storage for hot, per-key updates
type ShardedMemoryStorage[K comparable, V any] struct {
	shards     []*shardData[K, V]
	keyToShard func(K) int // Shard distribution function
	trackDirty bool
}

// shardData - single shard data
type shardData[K comparable, V any] struct {
	data  map[K]V
	mutex sync.RWMutex
	dirty map[K]bool
}

// NewShardedMemoryStorage creates a new sharded storage; shardCount is rounded up to a power of two
func NewShardedMemoryStorage[K comparable, V any](shardCount int, keyToShardFunc func(K) int) *ShardedMemoryStorage[K, V] {
	realShardCount := 1
	for realShardCount < shardCount {
		realShardCount *= 2
	}

	shards := make([]*shardData[K, V], realShardCount)
	for i := range shards {
		shards[i] = &shardData[K, V]{
			data:  make(map[K]V),
			dirty: make(map[K]bool),
		}
	}

	mask := realShardCount - 1
	if keyToShardFunc == nil {
		keyToShardFunc = func(key K) int {
			switch k := any(key).(type) {
			case string:
				return int(fnv1a(k)) & mask
			case int:
				return k & mask
			default:
				return int(fnv1a(fmt.Sprintf("%v", key))) & mask
			}
		}
	}

	return &ShardedMemoryStorage[K, V]{
		shards:     shards,
		keyToShard: keyToShardFunc,
		trackDirty: true,
	}
}

// WithoutDirtyTracking turns off dirty flags for storages that are never flushed
func (s *ShardedMemoryStorage[K, V]) WithoutDirtyTracking() *ShardedMemoryStorage[K, V] {
	s.trackDirty = false
	return s
}

// FNV-1a hash function
func fnv1a(s string) uint32 {
	var h uint32 = 2166136261
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= 16777619
	}
	return h
}

func (s *ShardedMemoryStorage[K, V]) getShard(key K) *shardData[K, V] {
	return s.shards[s.keyToShard(key)]
}

// Set adds or updates an object
func (s *ShardedMemoryStorage[K, V]) Set(key K, value V) {
	shard := s.getShard(key)

	shard.mutex.Lock()
	defer shard.mutex.Unlock()

	shard.data[key] = value
	if s.trackDirty {
		shard.dirty[key] = true
	}
}

// Restore stores a value without marking it dirty
func (s *ShardedMemoryStorage[K, V]) Restore(key K, value V) {
	shard := s.getShard(key)

	shard.mutex.Lock()
	defer shard.mutex.Unlock()

	shard.data[key] = value
}

// SetIf atomically replaces the value for key when fn approves. fn receives the
// current value and whether it exists, and returns the new value and true to store it.
func (s *ShardedMemoryStorage[K, V]) SetIf(key K, fn func(current V, exists bool) (V, bool)) bool {
	shard := s.getShard(key)

	shard.mutex.Lock()
	defer shard.mutex.Unlock()

	current, exists := shard.data[key]
	next, ok := fn(current, exists)
	if !ok {
		return false
	}
	shard.data[key] = next
	if s.trackDirty {
		shard.dirty[key] = true
	}
	return true
}

// Get returns object by key
func (s *ShardedMemoryStorage[K, V]) Get(key K) (V, bool) {
	shard := s.getShard(key)

	shard.mutex.RLock()
	defer shard.mutex.RUnlock()

	value, exists := shard.data[key]
	return value, exists
}

// Delete removes an object
func (s *ShardedMemoryStorage[K, V]) Delete(key K) bool {
	shard := s.getShard(key)

	shard.mutex.Lock()
	defer shard.mutex.Unlock()

	if _, exists := shard.data[key]; !exists {
		return false
	}

	delete(shard.data, key)
	delete(shard.dirty, key)
	return true
}

// GetDirty returns all dirty objects from all shards without clearing flags
func (s *ShardedMemoryStorage[K, V]) GetDirty() map[K]V {
	result := make(map[K]V)

	for _, shard := range s.shards {
		shard.mutex.RLock()
		for k := range shard.dirty {
			if v, exists := shard.data[k]; exists {
				result[k] = v
			}
		}
		shard.mutex.RUnlock()
	}

	return result
}

// ClearDirty clears dirty flags for provided keys
func (s *ShardedMemoryStorage[K, V]) ClearDirty(keys []K) {
	for _, k := range keys {
		shard := s.getShard(k)
		shard.mutex.Lock()
		delete(shard.dirty, k)
		shard.mutex.Unlock()
	}
}

// ClearDirtyIf clears the dirty flag of each flushed key whose current value
// still matches the flushed one
func (s *ShardedMemoryStorage[K, V]) ClearDirtyIf(flushed map[K]V, same func(current, flushed V) bool) {
	for k, v := range flushed {
		shard := s.getShard(k)
		shard.mutex.Lock()
		if current, exists := shard.data[k]; !exists || same(current, v) {
			delete(shard.dirty, k)
		}
		shard.mutex.Unlock()
	}
}

// ForEach executes a function for each object
func (s *ShardedMemoryStorage[K, V]) ForEach(fn func(key K, value V) bool) {
	for _, shard := range s.shards {
		shard.mutex.RLock()
		items := make(map[K]V, len(shard.data))
		for k, v := range shard.data {
			items[k] = v
		}
		shard.mutex.RUnlock()

		for k, v := range items {
			if !fn(k, v) {
				return
			}
		}
	}
}

// Count returns total number of objects
func (s *ShardedMemoryStorage[K, V]) Count() int {
	count := 0
	for _, shard := range s.shards {
		shard.mutex.RLock()
		count += len(shard.data)
		shard.mutex.RUnlock()
	}
	return count
}
