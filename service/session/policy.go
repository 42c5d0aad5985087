package session

// Policy picks the entry to evict when the store is over capacity.
// keys are ordered from least to most recently used.
type Policy interface {
	Victim(keys []Key, pinned func(Key) bool) (Key, bool)
}

// PolicyFunc adapts a function to Policy
type PolicyFunc func(keys []Key, pinned func(Key) bool) (Key, bool)

func (f PolicyFunc) Victim(keys []Key, pinned func(Key) bool) (Key, bool) {
	return f(keys, pinned)
}

// LRU evicts the least recently used unpinned entry
var LRU Policy = PolicyFunc(func(keys []Key, pinned func(Key) bool) (Key, bool) {
	for _, key := range keys {
		if !pinned(key) {
			return key, true
		}
	}
	return Key{}, false
})
