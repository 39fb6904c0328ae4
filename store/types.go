package store

import "github.com/iov-one/ledger"

// Aliases of the storage interfaces so that implementations in this package
// read naturally.

type (
	ReadOnlyKVStore  = ledger.ReadOnlyKVStore
	SetDeleter       = ledger.SetDeleter
	KVStore          = ledger.KVStore
	Batch            = ledger.Batch
	Iterator         = ledger.Iterator
	CacheableKVStore = ledger.CacheableKVStore
	KVCacheWrap      = ledger.KVCacheWrap
	CommitKVStore    = ledger.CommitKVStore
	CommitID         = ledger.CommitID
)
