package ledgertest

import (
	"context"
	"testing"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/ledgertest/assert"
	"github.com/iov-one/ledger/store"
)

func TestDecorator(t *testing.T) {
	var (
		ctx = context.Background()
		db  = store.MemStore()
		tx  = ledger.NewTx(nil)
		ex  = &Executor{Result: ledger.Result{Log: []string{"ok"}}}
	)

	d := &Decorator{}
	res, err := d.Execute(ctx, db, tx, ex)
	assert.Nil(t, err)
	assert.Equal(t, []string{"ok"}, res.Log)
	assert.Equal(t, 1, d.CallCount())
	assert.Equal(t, 1, ex.CallCount())

	d.Err = errors.ErrUnauthorized
	_, err = d.Execute(ctx, db, tx, ex)
	assert.IsErr(t, errors.ErrUnauthorized, err)
	assert.Equal(t, 2, d.CallCount())
	assert.Equal(t, 1, ex.CallCount())
}

func TestExecutorFn(t *testing.T) {
	db := store.MemStore()
	ex := &Executor{Fn: func(db ledger.KVStore) error {
		return db.Set([]byte("k"), []byte("v"))
	}}
	_, err := ex.Execute(context.Background(), db, ledger.NewTx(nil))
	assert.Nil(t, err)

	v, err := db.Get([]byte("k"))
	assert.Nil(t, err)
	assert.Equal(t, []byte("v"), v)
}

func TestNewKeys(t *testing.T) {
	keys := NewKeys(3)
	assert.Equal(t, 3, len(keys))
	if keys[0] == keys[1] || keys[1] == keys[2] {
		t.Fatal("keys must be unique")
	}
}
