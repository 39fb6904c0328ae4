package ledgertest

import "github.com/iov-one/ledger"

// Decorator is a mock implementation of the ledger.Decorator interface.
//
// Set Err to force an error response. If Err is not set then the wrapped
// executor is called and its result returned. Each call is counted,
// regardless of the result.
type Decorator struct {
	calls int
	// Err if set is returned before calling the wrapped executor.
	Err error
}

var _ ledger.Decorator = (*Decorator)(nil)

func (d *Decorator) Execute(ctx ledger.Context, db ledger.KVStore, tx *ledger.Tx, next ledger.Executor) (*ledger.Result, error) {
	d.calls++
	if d.Err != nil {
		return nil, d.Err
	}
	return next.Execute(ctx, db, tx)
}

// CallCount returns the number of Execute calls.
func (d *Decorator) CallCount() int {
	return d.calls
}

// Executor is a mock implementation of the ledger.Executor interface.
type Executor struct {
	calls int
	// Result is returned when Err is not set.
	Result ledger.Result
	// Err if set is returned by Execute.
	Err error
	// Fn if set is called with the store before returning.
	Fn func(db ledger.KVStore) error
}

var _ ledger.Executor = (*Executor)(nil)

func (e *Executor) Execute(ctx ledger.Context, db ledger.KVStore, tx *ledger.Tx) (*ledger.Result, error) {
	e.calls++
	if e.Fn != nil {
		if err := e.Fn(db); err != nil {
			return nil, err
		}
	}
	if e.Err != nil {
		return nil, e.Err
	}
	res := e.Result
	return &res, nil
}

// CallCount returns the number of Execute calls.
func (e *Executor) CallCount() int {
	return e.calls
}

// Program is a mock implementation of the ledger.Program interface.
type Program struct {
	calls int
	// Err if set is returned by Process.
	Err error
	// Fn if set is called instead of returning Err.
	Fn func(ctx ledger.Context, ic ledger.InvokeContext) error
}

var _ ledger.Program = (*Program)(nil)

func (p *Program) Process(ctx ledger.Context, ic ledger.InvokeContext) error {
	p.calls++
	if p.Fn != nil {
		return p.Fn(ctx, ic)
	}
	return p.Err
}

// CallCount returns the number of Process calls.
func (p *Program) CallCount() int {
	return p.calls
}
