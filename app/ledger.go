package app

import (
	"sync"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/orm"
	"github.com/tendermint/tendermint/libs/log"
)

var chainIDKey = []byte("_ledger:chain_id")

// Ledger owns the committed state and executes transactions against it
// one at a time. Each transaction runs on its own cache that is written
// only if the transaction succeeded.
type Ledger struct {
	mu       sync.Mutex
	store    ledger.CommitKVStore
	executor ledger.Executor
	init     ledger.Initializer
	logger   log.Logger
	accounts orm.AccountBucket

	chainID string
	slot    uint64
}

// NewLedger returns a ledger over given store. Call LoadState or InitChain
// before executing transactions.
func NewLedger(store ledger.CommitKVStore, executor ledger.Executor, init ledger.Initializer, logger log.Logger) *Ledger {
	if logger == nil {
		logger = ledger.DefaultLogger
	}
	return &Ledger{
		store:    store,
		executor: executor,
		init:     init,
		logger:   logger,
		accounts: orm.NewAccountBucket(),
	}
}

// LoadState loads the latest committed state. It returns ErrEmpty if the
// chain was never initialized.
func (l *Ledger) LoadState() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.store.LoadLatestVersion(); err != nil {
		return err
	}
	id, err := l.store.LatestVersion()
	if err != nil {
		return err
	}
	chainID, err := l.store.Get(chainIDKey)
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	if chainID == nil {
		return errors.Wrap(errors.ErrEmpty, "chain not initialized")
	}
	l.chainID = string(chainID)
	l.slot = uint64(id.Version)
	return nil
}

// InitChain creates the genesis state and commits it as the first slot.
func (l *Ledger) InitChain(gen Genesis) (ledger.CommitID, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.chainID != "" {
		return ledger.CommitID{}, errors.Wrapf(errors.ErrState, "chain %q already initialized", l.chainID)
	}
	if !ledger.IsValidChainID(gen.ChainID) {
		return ledger.CommitID{}, errors.Wrapf(errors.ErrInput, "invalid chain id %q", gen.ChainID)
	}

	cache := l.store.CacheWrap()
	if err := cache.Set(chainIDKey, []byte(gen.ChainID)); err != nil {
		cache.Discard()
		return ledger.CommitID{}, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	if l.init != nil {
		if err := l.init.FromGenesis(gen.AppOptions, cache); err != nil {
			cache.Discard()
			return ledger.CommitID{}, errors.Wrap(err, "genesis")
		}
	}
	if err := cache.Write(); err != nil {
		return ledger.CommitID{}, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	l.chainID = gen.ChainID
	return l.commit()
}

// ChainID returns the id of the chain.
func (l *Ledger) ChainID() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.chainID
}

// Execute runs the transaction. Its changes become visible to following
// transactions immediately and are persisted by the next Commit.
func (l *Ledger) Execute(ctx ledger.Context, tx *ledger.Tx) (*ledger.Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.chainID == "" {
		return nil, errors.Wrap(errors.ErrState, "chain not initialized")
	}
	ctx = ledger.WithLogger(ctx, l.logger)
	ctx = ledger.WithChainID(ctx, l.chainID)
	ctx = ledger.WithSlot(ctx, l.slot)

	cache := l.store.CacheWrap()
	res, err := l.executor.Execute(ctx, cache, tx)
	if err != nil {
		cache.Discard()
		return nil, err
	}
	if err := cache.Write(); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return res, nil
}

// Commit persists all executed transactions and starts a new slot.
func (l *Ledger) Commit() (ledger.CommitID, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.commit()
}

func (l *Ledger) commit() (ledger.CommitID, error) {
	id, err := l.store.Commit()
	if err != nil {
		return id, err
	}
	l.slot = uint64(id.Version)
	l.logger.Info("commit", "slot", l.slot, "hash", id.Hash)
	return id, nil
}

// Account returns the current state of an account. Missing accounts are
// returned empty and owned by the system program.
func (l *Ledger) Account(key ledger.Pubkey) (*ledger.Account, error) {
	var acc *ledger.Account
	err := l.View(func(db ledger.ReadOnlyKVStore) error {
		var err error
		acc, err = l.accounts.Get(db, key)
		return err
	})
	return acc, err
}

// View calls fn with a read only view of the current state.
func (l *Ledger) View(fn func(db ledger.ReadOnlyKVStore) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	cache := l.store.CacheWrap()
	defer cache.Discard()
	return fn(cache)
}
