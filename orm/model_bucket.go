package orm

import (
	"regexp"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
)

// Model is implemented by any entity that can be stored using ModelBucket.
type Model interface {
	Marshal() ([]byte, error)
	Unmarshal([]byte) error
	Validate() error
}

var isBucketName = regexp.MustCompile(`^[a-z_]{3,10}$`).MatchString

// ModelBucket stores models under a common key prefix.
type ModelBucket struct {
	prefix []byte
}

// NewModelBucket returns a bucket for given name. It panics if the name
// is not valid, so call it only during program initialization.
func NewModelBucket(name string) ModelBucket {
	if !isBucketName(name) {
		panic(errors.Wrapf(errors.ErrInput, "invalid bucket name %q", name))
	}
	return ModelBucket{prefix: []byte(name + ":")}
}

// DBKey returns the store key of the model with given key.
func (b ModelBucket) DBKey(key []byte) []byte {
	return append(append([]byte(nil), b.prefix...), key...)
}

// One loads the model stored under given key into dest.
// ErrNotFound is returned if the model does not exist.
func (b ModelBucket) One(db ledger.ReadOnlyKVStore, key []byte, dest Model) error {
	raw, err := db.Get(b.DBKey(key))
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	if raw == nil {
		return errors.Wrapf(errors.ErrNotFound, "%T not in the store", dest)
	}
	if err := dest.Unmarshal(raw); err != nil {
		return errors.Wrapf(errors.ErrModel, "unmarshal %T: %s", dest, err)
	}
	return nil
}

// Has returns true if a model with given key exists.
func (b ModelBucket) Has(db ledger.ReadOnlyKVStore, key []byte) (bool, error) {
	ok, err := db.Has(b.DBKey(key))
	if err != nil {
		return false, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return ok, nil
}

// Put validates and stores given model.
func (b ModelBucket) Put(db ledger.KVStore, key []byte, m Model) error {
	if err := m.Validate(); err != nil {
		return errors.Wrap(err, "invalid model")
	}
	raw, err := m.Marshal()
	if err != nil {
		return errors.Wrapf(errors.ErrModel, "marshal %T: %s", m, err)
	}
	if err := db.Set(b.DBKey(key), raw); err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return nil
}

// Delete removes the model with given key.
// ErrNotFound is returned if the model does not exist.
func (b ModelBucket) Delete(db ledger.KVStore, key []byte) error {
	ok, err := b.Has(db, key)
	if err != nil {
		return err
	}
	if !ok {
		return errors.Wrap(errors.ErrNotFound, "cannot delete")
	}
	if err := db.Delete(b.DBKey(key)); err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return nil
}

// Iterate calls fn for every model of the bucket in key order, passing
// the key without the bucket prefix. Iteration stops at the first error.
func (b ModelBucket) Iterate(db ledger.ReadOnlyKVStore, fn func(key, raw []byte) error) error {
	it, err := db.Iterator(b.prefix, prefixEnd(b.prefix))
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	defer it.Close()

	for it.Valid() {
		if err := fn(it.Key()[len(b.prefix):], it.Value()); err != nil {
			return err
		}
		if err := it.Next(); err != nil {
			return errors.Wrap(errors.ErrDatabase, err.Error())
		}
	}
	return nil
}

// prefixEnd returns the first key that does not start with prefix.
func prefixEnd(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}
