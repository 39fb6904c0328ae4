package app

import (
	"context"
	"testing"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/ledgertest"
	"github.com/iov-one/ledger/ledgertest/assert"
	"github.com/iov-one/ledger/orm"
	"github.com/iov-one/ledger/store"
)

// transferProgram moves Data[0] lamports from the first to the second
// account.
func transferProgram() *ledgertest.Program {
	return &ledgertest.Program{Fn: func(ctx ledger.Context, ic ledger.InvokeContext) error {
		accs := ic.Accounts()
		if len(accs) < 2 || len(ic.Data()) != 1 {
			return errors.ErrInput
		}
		amount := uint64(ic.Data()[0])
		if accs[0].Lamports < amount {
			return errors.ErrInsufficientBalance
		}
		accs[0].Lamports -= amount
		accs[1].Lamports += amount
		ic.Log("moved %d", amount)
		return nil
	}}
}

func setAccount(t testing.TB, db ledger.KVStore, key ledger.Pubkey, acc *ledger.Account) {
	t.Helper()
	assert.Nil(t, orm.NewAccountBucket().Save(db, key, acc))
}

func getAccount(t testing.TB, db ledger.ReadOnlyKVStore, key ledger.Pubkey) *ledger.Account {
	t.Helper()
	acc, err := orm.NewAccountBucket().Get(db, key)
	assert.Nil(t, err)
	return acc
}

func TestRuntimeAccountRules(t *testing.T) {
	programID := ledgertest.NewKey()
	owned := ledgertest.NewKey()
	wallet := ledgertest.NewKey()
	other := ledgertest.NewKey()

	cases := map[string]struct {
		program     ledger.Program
		accounts    []ledger.AccountMeta
		signers     []ledger.Pubkey
		data        []byte
		wantErr     *errors.Error
		wantOwned   uint64
		wantWallet  uint64
		wantDeleted bool
	}{
		"owner debits its account": {
			program:    transferProgram(),
			accounts:   []ledger.AccountMeta{ledger.Meta(owned).WRITE(), ledger.Meta(wallet).WRITE()},
			data:       []byte{10},
			wantOwned:  90,
			wantWallet: 60,
		},
		"draining an account removes it": {
			program:     transferProgram(),
			accounts:    []ledger.AccountMeta{ledger.Meta(owned).WRITE(), ledger.Meta(wallet).WRITE()},
			data:        []byte{100},
			wantOwned:   0,
			wantWallet:  150,
			wantDeleted: true,
		},
		"debit of a foreign account": {
			program:    transferProgram(),
			accounts:   []ledger.AccountMeta{ledger.Meta(wallet).WRITE(), ledger.Meta(owned).WRITE()},
			data:       []byte{10},
			wantErr:    errors.ErrInvalidAccountOwner,
			wantOwned:  100,
			wantWallet: 50,
		},
		"credit of a read only account": {
			program:    transferProgram(),
			accounts:   []ledger.AccountMeta{ledger.Meta(owned).WRITE(), ledger.Meta(wallet)},
			data:       []byte{10},
			wantErr:    errors.ErrReadonlyAccount,
			wantOwned:  100,
			wantWallet: 50,
		},
		"lamports created out of thin air": {
			program: &ledgertest.Program{Fn: func(ctx ledger.Context, ic ledger.InvokeContext) error {
				ic.Accounts()[1].Lamports += 5
				return nil
			}},
			accounts:   []ledger.AccountMeta{ledger.Meta(owned).WRITE(), ledger.Meta(wallet).WRITE()},
			wantErr:    errors.ErrUnbalancedInstruction,
			wantOwned:  100,
			wantWallet: 50,
		},
		"data change of a foreign account": {
			program: &ledgertest.Program{Fn: func(ctx ledger.Context, ic ledger.InvokeContext) error {
				ic.Accounts()[0].Data = []byte{1}
				return nil
			}},
			accounts:   []ledger.AccountMeta{ledger.Meta(wallet).WRITE()},
			wantErr:    errors.ErrInvalidAccountOwner,
			wantOwned:  100,
			wantWallet: 50,
		},
		"data without rent": {
			program: &ledgertest.Program{Fn: func(ctx ledger.Context, ic ledger.InvokeContext) error {
				ic.Accounts()[0].Data = make([]byte, 10)
				return nil
			}},
			accounts:   []ledger.AccountMeta{ledger.Meta(owned).WRITE()},
			wantErr:    errors.ErrNotRentExempt,
			wantOwned:  100,
			wantWallet: 50,
		},
		"missing signature": {
			program:    transferProgram(),
			accounts:   []ledger.AccountMeta{ledger.Meta(owned).WRITE().SIGNER(), ledger.Meta(wallet).WRITE()},
			data:       []byte{10},
			wantErr:    errors.ErrMissingSignature,
			wantOwned:  100,
			wantWallet: 50,
		},
		"signed": {
			program:    transferProgram(),
			accounts:   []ledger.AccountMeta{ledger.Meta(owned).WRITE().SIGNER(), ledger.Meta(wallet).WRITE()},
			signers:    []ledger.Pubkey{owned},
			data:       []byte{1},
			wantOwned:  99,
			wantWallet: 51,
		},
		"program failure": {
			program:    transferProgram(),
			accounts:   []ledger.AccountMeta{ledger.Meta(owned).WRITE(), ledger.Meta(wallet).WRITE()},
			data:       []byte{200},
			wantErr:    errors.ErrInsufficientBalance,
			wantOwned:  100,
			wantWallet: 50,
		},
		"same account twice": {
			program:    transferProgram(),
			accounts:   []ledger.AccountMeta{ledger.Meta(owned).WRITE(), ledger.Meta(owned)},
			data:       []byte{10},
			wantOwned:  100,
			wantWallet: 50,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			setAccount(t, db, owned, &ledger.Account{Lamports: 100, Owner: programID})
			setAccount(t, db, wallet, &ledger.Account{Lamports: 50, Owner: ledger.SystemProgramID})
			setAccount(t, db, other, &ledger.Account{Lamports: 1, Owner: ledger.SystemProgramID})

			router := NewRouter()
			router.Register(programID, tc.program)
			rt := NewRuntime(router)

			tx := ledger.NewTx(tc.signers, ledger.Instruction{
				ProgramID: programID,
				Accounts:  tc.accounts,
				Data:      tc.data,
			})
			cache := db.CacheWrap()
			_, err := rt.Execute(context.Background(), cache, tx)
			assert.IsErr(t, tc.wantErr, err)
			if err == nil {
				assert.Nil(t, cache.Write())
			} else {
				cache.Discard()
			}

			assert.Equal(t, tc.wantOwned, getAccount(t, db, owned).Lamports)
			assert.Equal(t, tc.wantWallet, getAccount(t, db, wallet).Lamports)
			ok, err := orm.NewAccountBucket().Has(db, owned)
			assert.Nil(t, err)
			assert.Equal(t, !tc.wantDeleted, ok)
		})
	}
}

func TestRuntimeTransactionIsAtomic(t *testing.T) {
	programID := ledgertest.NewKey()
	owned := ledgertest.NewKey()
	wallet := ledgertest.NewKey()

	db := store.MemStore()
	setAccount(t, db, owned, &ledger.Account{Lamports: 100, Owner: programID})

	router := NewRouter()
	router.Register(programID, transferProgram())
	rt := NewRuntime(router)

	metas := []ledger.AccountMeta{ledger.Meta(owned).WRITE(), ledger.Meta(wallet).WRITE()}
	tx := ledger.NewTx(nil,
		ledger.Instruction{ProgramID: programID, Accounts: metas, Data: []byte{60}},
		// not enough funds left
		ledger.Instruction{ProgramID: programID, Accounts: metas, Data: []byte{60}},
	)
	_, err := rt.Execute(context.Background(), db, tx)
	assert.IsErr(t, errors.ErrInsufficientBalance, err)

	assert.Equal(t, uint64(100), getAccount(t, db, owned).Lamports)
	assert.Equal(t, uint64(0), getAccount(t, db, wallet).Lamports)
}

func TestRuntimeResult(t *testing.T) {
	programID := ledgertest.NewKey()
	owned := ledgertest.NewKey()
	wallet := ledgertest.NewKey()

	db := store.MemStore()
	setAccount(t, db, owned, &ledger.Account{Lamports: 100, Owner: programID})

	router := NewRouter()
	router.Register(programID, transferProgram())
	rt := NewRuntime(router)

	tx := ledger.NewTx(nil, ledger.Instruction{
		ProgramID: programID,
		Accounts:  []ledger.AccountMeta{ledger.Meta(owned).WRITE(), ledger.Meta(wallet).WRITE()},
		Data:      []byte{7},
	})
	res, err := rt.Execute(context.Background(), db, tx)
	assert.Nil(t, err)
	assert.Equal(t, []ledger.Pubkey{owned, wallet}, res.Touched)
	assert.Equal(t, []string{
		"Program " + programID.String() + " invoke [1]",
		"Program log: moved 7",
		"Program " + programID.String() + " success",
	}, res.Log)
}

func TestRuntimeUnknownProgram(t *testing.T) {
	rt := NewRuntime(NewRouter())
	tx := ledger.NewTx(nil, ledger.Instruction{ProgramID: ledgertest.NewKey()})
	_, err := rt.Execute(context.Background(), store.MemStore(), tx)
	assert.IsErr(t, errors.ErrUnknownProgram, err)
}

func TestRuntimeInvoke(t *testing.T) {
	callerID := ledgertest.NewKey()
	calleeID := ledgertest.NewKey()
	owned := ledgertest.NewKey()
	wallet := ledgertest.NewKey()

	vault, bump, err := ledger.FindProgramAddress([][]byte{[]byte("vault")}, callerID)
	assert.Nil(t, err)
	vaultSeeds := [][]byte{[]byte("vault"), {bump}}

	// requireSigner fails unless the first account signed
	requireSigner := &ledgertest.Program{Fn: func(ctx ledger.Context, ic ledger.InvokeContext) error {
		if !ic.Accounts()[0].IsSigner {
			return errors.ErrMissingSignature
		}
		return nil
	}}

	cases := map[string]struct {
		callee     ledger.Program
		callerMeta []ledger.AccountMeta
		invoke     func(ctx ledger.Context, ic ledger.InvokeContext) error
		wantErr    *errors.Error
		wantOwned  uint64
	}{
		"callee debits its own account": {
			callee:     transferProgram(),
			callerMeta: []ledger.AccountMeta{ledger.Meta(owned).WRITE(), ledger.Meta(wallet).WRITE()},
			invoke: func(ctx ledger.Context, ic ledger.InvokeContext) error {
				return ic.Invoke(ctx, ledger.Instruction{
					ProgramID: calleeID,
					Accounts:  []ledger.AccountMeta{ledger.Meta(owned).WRITE(), ledger.Meta(wallet).WRITE()},
					Data:      []byte{30},
				})
			},
			wantOwned: 70,
		},
		"writable privilege escalation": {
			callee:     transferProgram(),
			callerMeta: []ledger.AccountMeta{ledger.Meta(owned), ledger.Meta(wallet).WRITE()},
			invoke: func(ctx ledger.Context, ic ledger.InvokeContext) error {
				return ic.Invoke(ctx, ledger.Instruction{
					ProgramID: calleeID,
					Accounts:  []ledger.AccountMeta{ledger.Meta(owned).WRITE(), ledger.Meta(wallet).WRITE()},
					Data:      []byte{30},
				})
			},
			wantErr:   errors.ErrReadonlyAccount,
			wantOwned: 100,
		},
		"account not given to the caller": {
			callee:     transferProgram(),
			callerMeta: []ledger.AccountMeta{ledger.Meta(owned).WRITE()},
			invoke: func(ctx ledger.Context, ic ledger.InvokeContext) error {
				return ic.Invoke(ctx, ledger.Instruction{
					ProgramID: calleeID,
					Accounts:  []ledger.AccountMeta{ledger.Meta(owned).WRITE(), ledger.Meta(wallet).WRITE()},
					Data:      []byte{30},
				})
			},
			wantErr:   errors.ErrNotEnoughAccounts,
			wantOwned: 100,
		},
		"caller signs for its derived address": {
			callee:     requireSigner,
			callerMeta: []ledger.AccountMeta{ledger.Meta(vault)},
			invoke: func(ctx ledger.Context, ic ledger.InvokeContext) error {
				return ic.Invoke(ctx, ledger.Instruction{
					ProgramID: calleeID,
					Accounts:  []ledger.AccountMeta{ledger.Meta(vault).SIGNER()},
				}, vaultSeeds)
			},
			wantOwned: 100,
		},
		"derived address without seeds": {
			callee:     requireSigner,
			callerMeta: []ledger.AccountMeta{ledger.Meta(vault)},
			invoke: func(ctx ledger.Context, ic ledger.InvokeContext) error {
				return ic.Invoke(ctx, ledger.Instruction{
					ProgramID: calleeID,
					Accounts:  []ledger.AccountMeta{ledger.Meta(vault).SIGNER()},
				})
			},
			wantErr:   errors.ErrMissingSignature,
			wantOwned: 100,
		},
		"derived address with wrong seeds": {
			callee:     requireSigner,
			callerMeta: []ledger.AccountMeta{ledger.Meta(vault)},
			invoke: func(ctx ledger.Context, ic ledger.InvokeContext) error {
				return ic.Invoke(ctx, ledger.Instruction{
					ProgramID: calleeID,
					Accounts:  []ledger.AccountMeta{ledger.Meta(vault).SIGNER()},
				}, [][]byte{[]byte("other"), {bump}})
			},
			wantErr:   errors.ErrMissingSignature,
			wantOwned: 100,
		},
		"reentrancy": {
			callee: &ledgertest.Program{Fn: func(ctx ledger.Context, ic ledger.InvokeContext) error {
				return ic.Invoke(ctx, ledger.Instruction{ProgramID: callerID})
			}},
			invoke: func(ctx ledger.Context, ic ledger.InvokeContext) error {
				return ic.Invoke(ctx, ledger.Instruction{ProgramID: calleeID})
			},
			wantErr:   errors.ErrUnauthorized,
			wantOwned: 100,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			setAccount(t, db, owned, &ledger.Account{Lamports: 100, Owner: calleeID})

			router := NewRouter()
			router.Register(callerID, &ledgertest.Program{Fn: tc.invoke})
			router.Register(calleeID, tc.callee)
			rt := NewRuntime(router)

			tx := ledger.NewTx(nil, ledger.Instruction{ProgramID: callerID, Accounts: tc.callerMeta})
			_, err := rt.Execute(context.Background(), db, tx)
			assert.IsErr(t, tc.wantErr, err)
			assert.Equal(t, tc.wantOwned, getAccount(t, db, owned).Lamports)
		})
	}
}

func TestRuntimeMaxInvokeDepth(t *testing.T) {
	programID := ledgertest.NewKey()
	var calls int
	router := NewRouter()
	router.Register(programID, &ledgertest.Program{Fn: func(ctx ledger.Context, ic ledger.InvokeContext) error {
		calls++
		// a program may call itself
		return ic.Invoke(ctx, ledger.Instruction{ProgramID: programID})
	}})
	rt := NewRuntime(router)

	_, err := rt.Execute(context.Background(), store.MemStore(), ledger.NewTx(nil, ledger.Instruction{ProgramID: programID}))
	assert.IsErr(t, errors.ErrState, err)
	assert.Equal(t, MaxInvokeDepth+1, calls)
}
