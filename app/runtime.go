package app

import (
	"fmt"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/orm"
)

// MaxInvokeDepth limits nested cross program invocations.
const MaxInvokeDepth = 4

// NativeLoaderID owns the accounts of built in programs.
var NativeLoaderID = ledger.MustParsePubkey("NativeLoader1111111111111111111111111111111")

// Runtime executes transactions by calling the programs of a router.
//
// All account changes are kept in memory until every instruction of the
// transaction succeeded. Only then are they written to the store, so a
// failed transaction leaves the store untouched. Runtime does not
// serialize access to the store, see Ledger.
type Runtime struct {
	router   *Router
	accounts orm.AccountBucket
}

var _ ledger.Executor = (*Runtime)(nil)

// NewRuntime returns a runtime executing programs of given router.
func NewRuntime(r *Router) *Runtime {
	return &Runtime{
		router:   r,
		accounts: orm.NewAccountBucket(),
	}
}

// Execute runs all instructions of the transaction in order.
func (rt *Runtime) Execute(ctx ledger.Context, db ledger.KVStore, tx *ledger.Tx) (*ledger.Result, error) {
	if err := tx.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid transaction")
	}
	rent, err := LoadRent(db)
	if err != nil {
		return nil, err
	}

	st := newTxState(db, rt.accounts, rent)
	for i, ix := range tx.Instructions {
		privs := make([]privilege, len(ix.Accounts))
		for j, m := range ix.Accounts {
			if m.IsSigner && !tx.IsSigner(m.Pubkey) {
				return nil, errors.Wrapf(errors.ErrMissingSignature, "instruction %d: account %d (%s)", i, j, m.Pubkey)
			}
			privs[j] = privilege{signer: m.IsSigner, writable: m.IsWritable}
		}
		if err := rt.process(ctx, st, ix, privs, 0); err != nil {
			return nil, errors.Wrapf(err, "instruction %d", i)
		}
	}

	touched, err := st.commit()
	if err != nil {
		return nil, errors.Wrap(err, "commit accounts")
	}
	return &ledger.Result{Log: st.logs, Touched: touched}, nil
}

// process executes a single instruction at given invocation depth.
func (rt *Runtime) process(ctx ledger.Context, st *txState, ix ledger.Instruction, privs []privilege, depth int) error {
	program, err := rt.router.Route(ix.ProgramID)
	if err != nil {
		return err
	}
	if err := st.enter(ix.ProgramID); err != nil {
		return err
	}
	defer st.leave()

	ic := &invokeContext{
		rt:        rt,
		st:        st,
		programID: ix.ProgramID,
		data:      ix.Data,
		depth:     depth,
		writable:  make(map[ledger.Pubkey]bool),
		signer:    make(map[ledger.Pubkey]bool),
	}
	ic.infos = make([]*ledger.AccountInfo, len(ix.Accounts))
	for i, m := range ix.Accounts {
		acc, err := st.load(m.Pubkey)
		if err != nil {
			return err
		}
		ic.infos[i] = &ledger.AccountInfo{
			Key:        m.Pubkey,
			IsSigner:   privs[i].signer,
			IsWritable: privs[i].writable,
			Account:    acc,
		}
		if _, ok := ic.writable[m.Pubkey]; !ok {
			ic.keys = append(ic.keys, m.Pubkey)
		}
		ic.writable[m.Pubkey] = ic.writable[m.Pubkey] || privs[i].writable
		ic.signer[m.Pubkey] = ic.signer[m.Pubkey] || privs[i].signer
	}
	ic.snapshot()

	ctx = ledger.WithLogInfo(ctx, "program", ix.ProgramID.String(), "depth", depth)
	st.log("Program %s invoke [%d]", ix.ProgramID, depth+1)
	if err := program.Process(ctx, ic); err != nil {
		st.log("Program %s failed: %s", ix.ProgramID, err)
		return err
	}
	if err := ic.verify(); err != nil {
		st.log("Program %s failed: %s", ix.ProgramID, err)
		return err
	}
	st.log("Program %s success", ix.ProgramID)
	return nil
}

type privilege struct {
	signer   bool
	writable bool
}

// txState holds the accounts of a transaction while it executes.
type txState struct {
	db     ledger.KVStore
	bucket orm.AccountBucket
	rent   ledger.Rent

	accounts map[ledger.Pubkey]*ledger.Account
	// orig is the state of accounts as loaded from the store
	orig  map[ledger.Pubkey]*ledger.Account
	order []ledger.Pubkey

	// stack of executing programs
	stack []ledger.Pubkey
	logs  []string
}

func newTxState(db ledger.KVStore, bucket orm.AccountBucket, rent ledger.Rent) *txState {
	return &txState{
		db:       db,
		bucket:   bucket,
		rent:     rent,
		accounts: make(map[ledger.Pubkey]*ledger.Account),
		orig:     make(map[ledger.Pubkey]*ledger.Account),
	}
}

// load returns the shared in memory instance of an account.
func (st *txState) load(key ledger.Pubkey) (*ledger.Account, error) {
	if acc, ok := st.accounts[key]; ok {
		return acc, nil
	}
	acc, err := st.bucket.Get(st.db, key)
	if err != nil {
		return nil, err
	}
	st.accounts[key] = acc
	st.orig[key] = acc.Clone()
	st.order = append(st.order, key)
	return acc, nil
}

// commit writes all modified accounts and returns their addresses.
func (st *txState) commit() ([]ledger.Pubkey, error) {
	var touched []ledger.Pubkey
	for _, key := range st.order {
		acc := st.accounts[key]
		if acc.Equal(st.orig[key]) {
			continue
		}
		if err := st.bucket.Save(st.db, key, acc); err != nil {
			return nil, err
		}
		touched = append(touched, key)
	}
	return touched, nil
}

// enter pushes a program on the call stack. A program may call itself
// directly but cannot be reentered through another program.
func (st *txState) enter(id ledger.Pubkey) error {
	if n := len(st.stack); n == 0 || st.stack[n-1] != id {
		for _, p := range st.stack {
			if p == id {
				return errors.Wrapf(errors.ErrUnauthorized, "reentrant call to %s", id)
			}
		}
	}
	st.stack = append(st.stack, id)
	return nil
}

func (st *txState) leave() {
	st.stack = st.stack[:len(st.stack)-1]
}

func (st *txState) log(format string, args ...interface{}) {
	st.logs = append(st.logs, fmt.Sprintf(format, args...))
}
