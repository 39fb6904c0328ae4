package orm

import (
	"testing"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/ledgertest"
	"github.com/iov-one/ledger/ledgertest/assert"
	"github.com/iov-one/ledger/store"
)

func TestAccountBucket(t *testing.T) {
	db := store.MemStore()
	b := NewAccountBucket()

	alice := ledgertest.NewKey()
	bob := ledgertest.NewKey()

	// missing accounts are empty and system owned
	acc, err := b.Get(db, alice)
	assert.Nil(t, err)
	assert.Equal(t, &ledger.Account{Owner: ledger.SystemProgramID}, acc)
	_, err = b.One(db, alice)
	assert.IsErr(t, errors.ErrNotFound, err)

	acc.Lamports = 100
	acc.Data = []byte{1, 2}
	assert.Nil(t, b.Save(db, alice, acc))
	assert.Nil(t, b.Save(db, bob, &ledger.Account{Lamports: 5, Owner: ledger.TokenProgramID}))

	got, err := b.One(db, alice)
	assert.Nil(t, err)
	assert.Equal(t, acc, got)

	var seen []ledger.Pubkey
	err = b.Iterate(db, func(key ledger.Pubkey, a *ledger.Account) error {
		seen = append(seen, key)
		return nil
	})
	assert.Nil(t, err)
	assert.Equal(t, 2, len(seen))

	// draining all lamports removes the account
	got.Lamports = 0
	assert.Nil(t, b.Save(db, alice, got))
	ok, err := b.Has(db, alice)
	assert.Nil(t, err)
	assert.Equal(t, false, ok)

	// deleting twice is fine
	assert.Nil(t, b.Delete(db, alice))
}
