package store

import "sync"

// Key prefixes for node storage.
const (
	nodePrefix         = "node:"
	nodeByModelPrefix  = "idx:node:model:"  // model:nodeID -> empty
	nodeBySlugPrefix   = "idx:node:slug:"   // model:fullSlug -> nodeID
	nodeByParentPrefix = "idx:node:parent:" // parentID:nodeID -> empty
)

// rootParent stands in for the empty parent ID in parent index keys.
const rootParent = "root"

// keyPool provides reusable byte slices for building database keys.
var keyPool = sync.Pool{
	New: func() any {
		// Prefix + model + slug paths usually fit in 256 bytes.
		return make([]byte, 0, 256)
	},
}

// buildKey joins a prefix and parts separated by ':' using a pooled buffer.
// Callers MUST call releaseKey when done with the key.
//
// Usage:
//
//	key := buildKey(nodeBySlugPrefix, model, slug)
//	defer releaseKey(key)
//	item, err := txn.Get(key)
func buildKey(prefix string, parts ...string) []byte {
	buf, _ := keyPool.Get().([]byte)
	buf = buf[:0]
	buf = append(buf, prefix...)
	for i, p := range parts {
		if i > 0 {
			buf = append(buf, ':')
		}
		buf = append(buf, p...)
	}
	return buf
}

// releaseKey returns a key buffer to the pool for reuse.
// Only pooled keys used for reads may be released: a transaction keeps
// references to keys passed to Set and Delete until it commits.
func releaseKey(key []byte) {
	if cap(key) <= 512 {
		keyPool.Put(key[:0])
	}
}

// ownedKey builds a key that is never returned to the pool, for writes.
func ownedKey(prefix string, parts ...string) []byte {
	key := buildKey(prefix, parts...)
	owned := make([]byte, len(key))
	copy(owned, key)
	releaseKey(key)
	return owned
}

func parentSegment(parentID string) string {
	if parentID == "" {
		return rootParent
	}
	return parentID
}
