package store

import (
	"bytes"

	"github.com/google/btree"
)

// DefaultFreeListSize is the size of the btree node free list.
const DefaultFreeListSize = btree.DefaultFreeListSize

// BTreeCacheable adds a btree based CacheWrap to any KVStore.
type BTreeCacheable struct {
	KVStore
}

var _ CacheableKVStore = BTreeCacheable{}

// CacheWrap returns a cache that can be written to this store, or
// discarded.
func (b BTreeCacheable) CacheWrap() KVCacheWrap {
	return NewBTreeCacheWrap(b.KVStore, b.NewBatch(), nil)
}

// MemStore returns an in memory store without persistence.
func MemStore() CacheableKVStore {
	e := EmptyKVStore{}
	return NewBTreeCacheWrap(e, e.NewBatch(), nil)
}

// BTreeCacheWrap keeps all changes in a btree, on top of a read only
// store. Reads are served from the btree first. Write flushes the changes
// through the batch.
type BTreeCacheWrap struct {
	bt    *btree.BTree
	free  *btree.FreeList
	back  ReadOnlyKVStore
	batch Batch
}

var _ KVCacheWrap = (*BTreeCacheWrap)(nil)

// NewBTreeCacheWrap initializes a cache around given store. All writes
// must go through the batch.
//
// free may be nil, but set to an existing list to reuse it
// for memory savings
func NewBTreeCacheWrap(kv ReadOnlyKVStore, batch Batch, free *btree.FreeList) *BTreeCacheWrap {
	if free == nil {
		free = btree.NewFreeList(DefaultFreeListSize)
	}
	return &BTreeCacheWrap{
		bt:    btree.NewWithFreeList(2, free),
		free:  free,
		back:  kv,
		batch: batch,
	}
}

// CacheWrap layers another cache on top of this one.
func (b *BTreeCacheWrap) CacheWrap() KVCacheWrap {
	return NewBTreeCacheWrap(b, b.NewBatch(), b.free)
}

// NewBatch returns a batch writing into this cache.
func (b *BTreeCacheWrap) NewBatch() Batch {
	return NewNonAtomicBatch(b)
}

// Write flushes all changes to the underlying store and clears the cache.
func (b *BTreeCacheWrap) Write() error {
	err := b.batch.Write()
	b.Discard()
	return err
}

// Discard drops all changes.
func (b *BTreeCacheWrap) Discard() {
	b.bt.Clear(true)
	if nb, ok := b.batch.(*NonAtomicBatch); ok {
		nb.ops = nil
	}
}

// Set stores the value in the cache.
func (b *BTreeCacheWrap) Set(key, value []byte) error {
	b.bt.ReplaceOrInsert(entry{key: key, value: value})
	return b.batch.Set(key, value)
}

// Delete marks the key removed in the cache.
func (b *BTreeCacheWrap) Delete(key []byte) error {
	b.bt.ReplaceOrInsert(entry{key: key, deleted: true})
	return b.batch.Delete(key)
}

// Get reads from the cache, falling back to the underlying store.
func (b *BTreeCacheWrap) Get(key []byte) ([]byte, error) {
	if item := b.bt.Get(entry{key: key}); item != nil {
		e := item.(entry)
		if e.deleted {
			return nil, nil
		}
		return e.value, nil
	}
	return b.back.Get(key)
}

// Has checks the cache, falling back to the underlying store.
func (b *BTreeCacheWrap) Has(key []byte) (bool, error) {
	if item := b.bt.Get(entry{key: key}); item != nil {
		return !item.(entry).deleted, nil
	}
	return b.back.Has(key)
}

// Iterator over a domain of keys in ascending order, merging the cache
// with the underlying store.
func (b *BTreeCacheWrap) Iterator(start, end []byte) (Iterator, error) {
	parent, err := b.back.Iterator(start, end)
	if err != nil {
		return nil, err
	}
	return newMergeIterator(ascend(b.bt, start, end), parent, true)
}

// ReverseIterator over a domain of keys in descending order, merging the
// cache with the underlying store.
func (b *BTreeCacheWrap) ReverseIterator(start, end []byte) (Iterator, error) {
	parent, err := b.back.ReverseIterator(start, end)
	if err != nil {
		return nil, err
	}
	return newMergeIterator(descend(b.bt, start, end), parent, false)
}

// entry is a btree item. Deleted entries hide the key of the underlying
// store.
type entry struct {
	key     []byte
	value   []byte
	deleted bool
}

var _ btree.Item = entry{}

func (e entry) Less(than btree.Item) bool {
	return bytes.Compare(e.key, than.(entry).key) < 0
}
