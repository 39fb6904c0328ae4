package iavl

import (
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/store"
	"github.com/tendermint/iavl"
	dbm "github.com/tendermint/tendermint/libs/db"
)

// cacheSize is the number of tree nodes kept in memory.
const cacheSize = 10000

// CommitStore keeps the ledger state in a versioned merkle tree. Every
// Commit saves a new version that can be loaded after a restart.
type CommitStore struct {
	db   dbm.DB
	tree *iavl.MutableTree
}

var _ store.CommitKVStore = (*CommitStore)(nil)

// NewCommitStore creates a store persisted with leveldb at dir/name.db.
func NewCommitStore(dir, name string) (*CommitStore, error) {
	db, err := dbm.NewGoLevelDB(name, dir)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrDatabase, "open %s in %s: %s", name, dir, err)
	}
	return NewCommitStoreFromDB(db), nil
}

// MockCommitStore creates a store kept in memory only.
func MockCommitStore() *CommitStore {
	return NewCommitStoreFromDB(dbm.NewMemDB())
}

// NewCommitStoreFromDB creates a store backed by given database.
func NewCommitStoreFromDB(db dbm.DB) *CommitStore {
	return &CommitStore{db: db, tree: iavl.NewMutableTree(db, cacheSize)}
}

// Close releases the underlying database. Uncommitted changes are lost.
func (s *CommitStore) Close() {
	s.db.Close()
}

// Get returns the value at the last committed state.
func (s *CommitStore) Get(key []byte) ([]byte, error) {
	_, val := s.tree.GetVersioned(key, s.tree.Version())
	return val, nil
}

// Commit saves all changes written so far as the next version.
func (s *CommitStore) Commit() (store.CommitID, error) {
	hash, version, err := s.tree.SaveVersion()
	if err != nil {
		return store.CommitID{}, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return store.CommitID{Version: version, Hash: hash}, nil
}

// LoadLatestVersion loads the latest persisted version.
func (s *CommitStore) LoadLatestVersion() error {
	if _, err := s.tree.Load(); err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return nil
}

// LatestVersion returns the id of the latest saved version.
func (s *CommitStore) LatestVersion() (store.CommitID, error) {
	return store.CommitID{
		Version: s.tree.Version(),
		Hash:    s.tree.Hash(),
	}, nil
}

// CacheWrap returns a cache over the working tree. Writing the cache
// updates the working tree, which is persisted by the next Commit.
func (s *CommitStore) CacheWrap() store.KVCacheWrap {
	return s.Adapter().CacheWrap()
}

// Adapter exposes the working tree as a store.
func (s *CommitStore) Adapter() store.CacheableKVStore {
	return store.BTreeCacheable{KVStore: adapter{tree: s.tree}}
}

// adapter reads and writes the working tree directly.
type adapter struct {
	tree *iavl.MutableTree
}

var _ store.KVStore = adapter{}

func (a adapter) Get(key []byte) ([]byte, error) {
	_, val := a.tree.Get(key)
	return val, nil
}

func (a adapter) Has(key []byte) (bool, error) {
	return a.tree.Has(key), nil
}

func (a adapter) Set(key, value []byte) error {
	if value == nil {
		return errors.Wrap(errors.ErrDatabase, "nil value")
	}
	a.tree.Set(key, value)
	return nil
}

func (a adapter) Delete(key []byte) error {
	a.tree.Remove(key)
	return nil
}

func (a adapter) NewBatch() store.Batch {
	return store.NewNonAtomicBatch(a)
}

func (a adapter) Iterator(start, end []byte) (store.Iterator, error) {
	return a.iterate(start, end, true), nil
}

func (a adapter) ReverseIterator(start, end []byte) (store.Iterator, error) {
	return a.iterate(start, end, false), nil
}

// iterate loads all models of the range. The tree cannot be modified while
// the iavl callback runs, so the result is a snapshot.
func (a adapter) iterate(start, end []byte, ascending bool) store.Iterator {
	var res []store.Model
	a.tree.IterateRange(start, end, ascending, func(key, value []byte) bool {
		res = append(res, store.Model{Key: key, Value: value})
		return false
	})
	return store.NewSliceIterator(res)
}
