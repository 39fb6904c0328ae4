package store

import (
	"github.com/iov-one/ledger/errors"
)

// Model is a key value pair.
type Model struct {
	Key   []byte
	Value []byte
}

// SliceIterator iterates over an in memory list of models.
type SliceIterator struct {
	data []Model
	idx  int
}

var _ Iterator = (*SliceIterator)(nil)

// NewSliceIterator creates a new Iterator over this slice. Models must be
// ordered as expected by the caller.
func NewSliceIterator(data []Model) *SliceIterator {
	return &SliceIterator{data: data}
}

// Valid returns true if the iterator points at a model.
func (s *SliceIterator) Valid() bool {
	return s.idx < len(s.data)
}

// Next moves to the next model.
func (s *SliceIterator) Next() error {
	if !s.Valid() {
		return errors.Wrap(errors.ErrDatabase, "iterator exhausted")
	}
	s.idx++
	return nil
}

// Key returns the key of the current model. Panics if not valid.
func (s *SliceIterator) Key() []byte {
	return s.data[s.idx].Key
}

// Value returns the value of the current model. Panics if not valid.
func (s *SliceIterator) Value() []byte {
	return s.data[s.idx].Value
}

// Close releases the iterator.
func (s *SliceIterator) Close() {
	s.data = nil
}

// EmptyKVStore never holds any data. It is the base layer of in memory
// stores.
type EmptyKVStore struct{}

var _ KVStore = EmptyKVStore{}

// Get always returns nil.
func (EmptyKVStore) Get(key []byte) ([]byte, error) { return nil, nil }

// Has always returns false.
func (EmptyKVStore) Has(key []byte) (bool, error) { return false, nil }

// Set is a noop.
func (EmptyKVStore) Set(key, value []byte) error { return nil }

// Delete is a noop.
func (EmptyKVStore) Delete(key []byte) error { return nil }

// Iterator is always empty.
func (EmptyKVStore) Iterator(start, end []byte) (Iterator, error) {
	return NewSliceIterator(nil), nil
}

// ReverseIterator is always empty.
func (EmptyKVStore) ReverseIterator(start, end []byte) (Iterator, error) {
	return NewSliceIterator(nil), nil
}

// NewBatch returns a batch that writes to this store.
func (e EmptyKVStore) NewBatch() Batch {
	return NewNonAtomicBatch(e)
}

// Op is a single set or delete operation.
type Op struct {
	key   []byte
	value []byte
	del   bool
}

// SetOp returns an operation that sets the value of a key.
func SetOp(key, value []byte) Op {
	return Op{key: key, value: value}
}

// DelOp returns an operation that deletes a key.
func DelOp(key []byte) Op {
	return Op{key: key, del: true}
}

// Apply executes the operation on given store.
func (o Op) Apply(out SetDeleter) error {
	if o.del {
		return out.Delete(o.key)
	}
	return out.Set(o.key, o.value)
}

// NonAtomicBatch piles up operations and executes them in order on Write.
// It gives no atomicity guarantee if the underlying store fails in the
// middle, so use it only on top of in memory stores.
type NonAtomicBatch struct {
	out SetDeleter
	ops []Op
}

var _ Batch = (*NonAtomicBatch)(nil)

// NewNonAtomicBatch creates an empty batch writing to out.
func NewNonAtomicBatch(out SetDeleter) *NonAtomicBatch {
	return &NonAtomicBatch{out: out}
}

// Set queues a set operation.
func (b *NonAtomicBatch) Set(key, value []byte) error {
	b.ops = append(b.ops, SetOp(key, value))
	return nil
}

// Delete queues a delete operation.
func (b *NonAtomicBatch) Delete(key []byte) error {
	b.ops = append(b.ops, DelOp(key))
	return nil
}

// ShowOps returns all queued operations.
func (b *NonAtomicBatch) ShowOps() []Op {
	return b.ops
}

// Write applies all queued operations and resets the batch.
func (b *NonAtomicBatch) Write() error {
	for _, op := range b.ops {
		if err := op.Apply(b.out); err != nil {
			return errors.Wrap(err, "apply batch")
		}
	}
	b.ops = nil
	return nil
}
