package storage

// Storage defines interface for any object storage
type Storage[K comparable, V any] interface {
	Set(key K, value V)
	SetIf(key K, fn func(current V, exists bool) (V, bool)) bool
	Get(key K) (V, bool)
	Delete(key K) bool
	GetDirty() map[K]V
	ClearDirty(keys []K)
	ClearDirtyIf(flushed map[K]V, same func(current, flushed V) bool)
	Restore(key K, value V)
	ForEach(fn func(key K, value V) bool)
	Count() int
}
