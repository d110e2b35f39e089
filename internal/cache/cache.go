package cache

// Cache maps string keys to values of T.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
	Purge()
	Len() int
}

var _ Cache[int] = (*LRU[int])(nil)
