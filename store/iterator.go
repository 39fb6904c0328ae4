package store

import (
	"bytes"

	"github.com/google/btree"
	"github.com/iov-one/ledger/errors"
)

// ascend returns cached entries within [start, end) in ascending order.
// A nil bound is open.
func ascend(bt *btree.BTree, start, end []byte) []entry {
	var res []entry
	collect := func(i btree.Item) bool {
		res = append(res, i.(entry))
		return true
	}
	switch {
	case start == nil && end == nil:
		bt.Ascend(collect)
	case start == nil:
		bt.AscendLessThan(entry{key: end}, collect)
	case end == nil:
		bt.AscendGreaterOrEqual(entry{key: start}, collect)
	default:
		bt.AscendRange(entry{key: start}, entry{key: end}, collect)
	}
	return res
}

// descend returns cached entries within [start, end) in descending order.
func descend(bt *btree.BTree, start, end []byte) []entry {
	res := ascend(bt, start, end)
	for i, j := 0, len(res)-1; i < j; i, j = i+1, j-1 {
		res[i], res[j] = res[j], res[i]
	}
	return res
}

// mergeIterator combines a snapshot of cached entries with the iterator of
// the underlying store. Cached entries shadow parent values with the same
// key and deleted entries hide them.
type mergeIterator struct {
	cache     []entry
	parent    Iterator
	ascending bool
}

var _ Iterator = (*mergeIterator)(nil)

func newMergeIterator(cache []entry, parent Iterator, ascending bool) (*mergeIterator, error) {
	it := &mergeIterator{cache: cache, parent: parent, ascending: ascending}
	if err := it.skipDeleted(); err != nil {
		it.Close()
		return nil, err
	}
	return it, nil
}

// Valid returns true if the iterator points at a key.
func (it *mergeIterator) Valid() bool {
	return len(it.cache) > 0 || it.parent.Valid()
}

// Next moves to the next key.
func (it *mergeIterator) Next() error {
	switch it.head() {
	case fromCache:
		it.cache = it.cache[1:]
	case fromBoth:
		it.cache = it.cache[1:]
		if err := it.parent.Next(); err != nil {
			return err
		}
	case fromParent:
		if err := it.parent.Next(); err != nil {
			return err
		}
	default:
		return errors.Wrap(errors.ErrDatabase, "iterator exhausted")
	}
	return it.skipDeleted()
}

// Key returns the current key. Panics if not valid.
func (it *mergeIterator) Key() []byte {
	if it.head() == fromParent {
		return it.parent.Key()
	}
	return it.cache[0].key
}

// Value returns the current value. Panics if not valid.
func (it *mergeIterator) Value() []byte {
	if it.head() == fromParent {
		return it.parent.Value()
	}
	return it.cache[0].value
}

// Close releases the underlying iterator.
func (it *mergeIterator) Close() {
	it.cache = nil
	it.parent.Close()
}

// skipDeleted advances past all deleted cache entries at the head.
func (it *mergeIterator) skipDeleted() error {
	for {
		src := it.head()
		if src != fromCache && src != fromBoth {
			return nil
		}
		if !it.cache[0].deleted {
			return nil
		}
		it.cache = it.cache[1:]
		if src == fromBoth {
			if err := it.parent.Next(); err != nil {
				return err
			}
		}
	}
}

type source int

const (
	fromNone source = iota
	fromCache
	fromParent
	fromBoth
)

// head tells which side holds the next key in iteration order.
func (it *mergeIterator) head() source {
	hasCache, hasParent := len(it.cache) > 0, it.parent.Valid()
	switch {
	case !hasCache && !hasParent:
		return fromNone
	case !hasParent:
		return fromCache
	case !hasCache:
		return fromParent
	}

	cmp := bytes.Compare(it.cache[0].key, it.parent.Key())
	if !it.ascending {
		cmp = -cmp
	}
	switch {
	case cmp < 0:
		return fromCache
	case cmp > 0:
		return fromParent
	default:
		return fromBoth
	}
}
