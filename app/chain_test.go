package app

import (
	"context"
	"testing"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/ledgertest"
	"github.com/iov-one/ledger/ledgertest/assert"
	"github.com/iov-one/ledger/store"
)

func TestChain(t *testing.T) {
	var (
		d1 = &ledgertest.Decorator{}
		d2 = &ledgertest.Decorator{}
		d3 = &ledgertest.Decorator{}
		ex = &ledgertest.Executor{}
	)

	var nilDecorator *ledgertest.Decorator
	stack := ChainDecorators(d1, nil, nilDecorator, d2).Chain(d3).WithExecutor(ex)

	ctx := context.Background()
	_, err := stack.Execute(ctx, store.MemStore(), ledger.NewTx(nil))
	assert.Nil(t, err)
	assert.Equal(t, 1, d1.CallCount())
	assert.Equal(t, 1, d2.CallCount())
	assert.Equal(t, 1, d3.CallCount())
	assert.Equal(t, 1, ex.CallCount())

	// an error stops the chain
	d2.Err = errors.ErrUnauthorized
	_, err = stack.Execute(ctx, store.MemStore(), ledger.NewTx(nil))
	assert.IsErr(t, errors.ErrUnauthorized, err)
	assert.Equal(t, 2, d1.CallCount())
	assert.Equal(t, 2, d2.CallCount())
	assert.Equal(t, 1, d3.CallCount())
	assert.Equal(t, 1, ex.CallCount())
}
