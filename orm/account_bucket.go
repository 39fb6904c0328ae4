package orm

import (
	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
)

// AccountBucket stores ledger accounts by address.
//
// An account holding no lamports does not exist: saving it removes it from
// the store and loading a missing address returns an empty account owned by
// the system program.
type AccountBucket struct {
	b ModelBucket
}

// NewAccountBucket returns the bucket of all ledger accounts.
func NewAccountBucket() AccountBucket {
	return AccountBucket{b: NewModelBucket("acct")}
}

// One loads an existing account. ErrNotFound is returned if it does not
// exist.
func (ab AccountBucket) One(db ledger.ReadOnlyKVStore, key ledger.Pubkey) (*ledger.Account, error) {
	var acc ledger.Account
	if err := ab.b.One(db, key[:], &acc); err != nil {
		return nil, errors.Wrapf(err, "account %s", key)
	}
	return &acc, nil
}

// Get loads an account, returning an empty system owned account if it does
// not exist.
func (ab AccountBucket) Get(db ledger.ReadOnlyKVStore, key ledger.Pubkey) (*ledger.Account, error) {
	acc, err := ab.One(db, key)
	switch {
	case err == nil:
		return acc, nil
	case errors.ErrNotFound.Is(err):
		return &ledger.Account{Owner: ledger.SystemProgramID}, nil
	default:
		return nil, err
	}
}

// Has returns true if the account exists.
func (ab AccountBucket) Has(db ledger.ReadOnlyKVStore, key ledger.Pubkey) (bool, error) {
	return ab.b.Has(db, key[:])
}

// Save stores the account, or removes it if it holds no lamports.
func (ab AccountBucket) Save(db ledger.KVStore, key ledger.Pubkey, acc *ledger.Account) error {
	if acc.Lamports == 0 {
		return ab.Delete(db, key)
	}
	return ab.b.Put(db, key[:], acc)
}

// Delete removes the account. Deleting a missing account is a noop.
func (ab AccountBucket) Delete(db ledger.KVStore, key ledger.Pubkey) error {
	err := ab.b.Delete(db, key[:])
	if errors.ErrNotFound.Is(err) {
		return nil
	}
	return err
}

// Iterate calls fn for every existing account in address order.
func (ab AccountBucket) Iterate(db ledger.ReadOnlyKVStore, fn func(ledger.Pubkey, *ledger.Account) error) error {
	return ab.b.Iterate(db, func(key, raw []byte) error {
		if len(key) != ledger.PubkeyLength {
			return errors.Wrapf(errors.ErrModel, "invalid account key %X", key)
		}
		var acc ledger.Account
		if err := acc.Unmarshal(raw); err != nil {
			return errors.Wrap(errors.ErrModel, err.Error())
		}
		return fn(ledger.PubkeyFromBytes(key), &acc)
	})
}
