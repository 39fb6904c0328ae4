package utils

import (
	"time"

	"github.com/iov-one/ledger"
)

// Logging is a decorator logging every transaction as it passes through.
// The context must carry the chain id.
// Failures are logged as errors, successes at info level and program
// logs at debug level.
type Logging struct{}

var _ ledger.Decorator = Logging{}

// NewLogging creates a Logging decorator
func NewLogging() Logging {
	return Logging{}
}

// Execute logs the result of the transaction.
func (Logging) Execute(ctx ledger.Context, db ledger.KVStore, tx *ledger.Tx, next ledger.Executor) (*ledger.Result, error) {
	start := time.Now()
	res, err := next.Execute(ctx, db, tx)

	logger := ledger.GetLogger(ctx).With(
		"chain", ledger.GetChainID(ctx),
		"duration", time.Since(start)/time.Microsecond,
		"instructions", len(tx.Instructions),
	)
	if err != nil {
		logger.Error("transaction failed", "err", err)
		return res, err
	}
	for _, line := range res.Log {
		logger.Debug(line)
	}
	logger.Info("transaction executed", "touched", len(res.Touched))
	return res, nil
}
