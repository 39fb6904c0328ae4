package utils

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/ledgertest"
	"github.com/iov-one/ledger/ledgertest/assert"
	"github.com/iov-one/ledger/store"
	"github.com/tendermint/tendermint/libs/log"
)

func TestRecovery(t *testing.T) {
	panicking := &ledgertest.Executor{Fn: func(ledger.KVStore) error {
		panic("boom")
	}}
	_, err := NewRecovery().Execute(context.Background(), store.MemStore(), ledger.NewTx(nil), panicking)
	assert.IsErr(t, errors.ErrPanic, err)

	ok := &ledgertest.Executor{}
	_, err = NewRecovery().Execute(context.Background(), store.MemStore(), ledger.NewTx(nil), ok)
	assert.Nil(t, err)
}

func TestLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewTMLogger(log.NewSyncWriter(&buf))
	ctx := ledger.WithLogger(context.Background(), logger)
	ctx = ledger.WithChainID(ctx, "escrow-test")

	ok := &ledgertest.Executor{Result: ledger.Result{Log: []string{"Program log: Instruction: Exchange"}}}
	_, err := NewLogging().Execute(ctx, store.MemStore(), ledger.NewTx(nil), ok)
	assert.Nil(t, err)
	if !strings.Contains(buf.String(), "transaction executed") {
		t.Fatalf("missing success entry: %s", buf.String())
	}
	if !strings.Contains(buf.String(), "chain=escrow-test") {
		t.Fatalf("missing chain id: %s", buf.String())
	}
	if !strings.Contains(buf.String(), "Instruction: Exchange") {
		t.Fatalf("missing program log: %s", buf.String())
	}

	buf.Reset()
	failing := &ledgertest.Executor{Err: errors.ErrTermsMismatch}
	_, err = NewLogging().Execute(ctx, store.MemStore(), ledger.NewTx(nil), failing)
	assert.IsErr(t, errors.ErrTermsMismatch, err)
	if !strings.Contains(buf.String(), "transaction failed") {
		t.Fatalf("missing failure entry: %s", buf.String())
	}
}
