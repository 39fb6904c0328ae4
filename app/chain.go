package app

import (
	"reflect"

	"github.com/iov-one/ledger"
)

// Decorators holds a chain of decorators, not yet resolved by an Executor.
type Decorators struct {
	chain []ledger.Decorator
}

/*
ChainDecorators takes a chain of decorators,
and upon adding a final Executor (often a Runtime),
returns an Executor that will execute this whole stack.

	app.ChainDecorators(
	  utils.NewLogging(),
	  utils.NewRecovery(),
	).WithExecutor(
	  app.NewRuntime(router),
	)
*/
func ChainDecorators(chain ...ledger.Decorator) Decorators {
	return Decorators{}.Chain(chain...)
}

// Chain allows us to keep adding more Decorators to the chain.
func (d Decorators) Chain(chain ...ledger.Decorator) Decorators {
	next := make([]ledger.Decorator, 0, len(d.chain)+len(chain))
	next = append(next, d.chain...)
	for _, dc := range chain {
		if isNil(dc) {
			continue
		}
		next = append(next, dc)
	}
	return Decorators{chain: next}
}

func isNil(d ledger.Decorator) bool {
	if d == nil {
		return true
	}
	v := reflect.ValueOf(d)
	return v.Kind() == reflect.Ptr && v.IsNil()
}

// WithExecutor resolves the stack and returns an Executor that passes
// through the chain of decorators before calling the final Executor.
func (d Decorators) WithExecutor(ex ledger.Executor) ledger.Executor {
	// the top of the chain is executed first
	for i := len(d.chain) - 1; i >= 0; i-- {
		ex = step{d: d.chain[i], next: ex}
	}
	return ex
}

// step executes one decorator around the rest of the chain.
type step struct {
	d    ledger.Decorator
	next ledger.Executor
}

var _ ledger.Executor = step{}

func (s step) Execute(ctx ledger.Context, db ledger.KVStore, tx *ledger.Tx) (*ledger.Result, error) {
	return s.d.Execute(ctx, db, tx, s.next)
}
