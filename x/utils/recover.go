package utils

import (
	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
)

// Recovery is a decorator to recover from panics in transactions,
// so we can log them as errors
type Recovery struct{}

var _ ledger.Decorator = Recovery{}

// NewRecovery creates a Recovery decorator
func NewRecovery() Recovery {
	return Recovery{}
}

// Execute turns panics into ErrPanic errors.
func (Recovery) Execute(ctx ledger.Context, db ledger.KVStore, tx *ledger.Tx, next ledger.Executor) (_ *ledger.Result, err error) {
	defer errors.Recover(&err)
	return next.Execute(ctx, db, tx)
}
