package app

import (
	"context"
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/ledgertest"
	"github.com/iov-one/ledger/ledgertest/assert"
	"github.com/iov-one/ledger/store/iavl"
)

func newTestLedger(t testing.TB, programID ledger.Pubkey, p ledger.Program, genesis string) *Ledger {
	t.Helper()
	router := NewRouter()
	router.Register(programID, p)

	l := NewLedger(iavl.MockCommitStore(), NewRuntime(router), NewInitializer(router), nil)
	var opts ledger.Options
	assert.Nil(t, json.Unmarshal([]byte(genesis), &opts))
	_, err := l.InitChain(Genesis{ChainID: "test-chain", AppOptions: opts})
	assert.Nil(t, err)
	return l
}

func TestLedgerGenesis(t *testing.T) {
	programID := ledgertest.NewKey()
	alice := ledgertest.NewKey()

	genesis := `{
		"conf": {"rent": {"lamports_per_byte_year": 10, "exemption_threshold": 2}},
		"accounts": [
			{"address": "` + alice.String() + `", "lamports": 5000}
		]
	}`
	l := newTestLedger(t, programID, &ledgertest.Program{}, genesis)
	assert.Equal(t, "test-chain", l.ChainID())

	acc, err := l.Account(alice)
	assert.Nil(t, err)
	assert.Equal(t, uint64(5000), acc.Lamports)
	assert.Equal(t, ledger.SystemProgramID, acc.Owner)

	program, err := l.Account(programID)
	assert.Nil(t, err)
	assert.Equal(t, true, program.Executable)

	sysvar, err := l.Account(ledger.RentSysvarID)
	assert.Nil(t, err)
	var rent ledger.Rent
	assert.Nil(t, rent.Unmarshal(sysvar.Data))
	assert.Equal(t, ledger.Rent{LamportsPerByteYear: 10, ExemptionThreshold: 2}, rent)

	_, err = l.InitChain(Genesis{ChainID: "test-chain"})
	assert.IsErr(t, errors.ErrState, err)
}

func TestLedgerGenesisErrors(t *testing.T) {
	alice := ledgertest.NewKey()
	cases := map[string]struct {
		chainID string
		genesis string
		wantErr *errors.Error
	}{
		"invalid chain id": {
			chainID: "x",
			genesis: `{}`,
			wantErr: errors.ErrInput,
		},
		"duplicated account": {
			chainID: "test-chain",
			genesis: `{"accounts": [
				{"address": "` + alice.String() + `", "lamports": 1},
				{"address": "` + alice.String() + `", "lamports": 2}
			]}`,
			wantErr: errors.ErrDuplicate,
		},
		"account data without rent": {
			chainID: "test-chain",
			genesis: `{"accounts": [
				{"address": "` + alice.String() + `", "lamports": 1, "data": "AAAA"}
			]}`,
			wantErr: errors.ErrNotRentExempt,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			router := NewRouter()
			l := NewLedger(iavl.MockCommitStore(), NewRuntime(router), NewInitializer(router), nil)
			var opts ledger.Options
			assert.Nil(t, json.Unmarshal([]byte(tc.genesis), &opts))
			_, err := l.InitChain(Genesis{ChainID: tc.chainID, AppOptions: opts})
			assert.IsErr(t, tc.wantErr, err)
		})
	}
}

func TestLedgerExecute(t *testing.T) {
	programID := ledgertest.NewKey()
	vault := ledgertest.NewKey()
	alice := ledgertest.NewKey()

	owner := programID.String()
	genesis := `{"accounts": [{"address": "` + vault.String() + `", "lamports": 100, "owner": "` + owner + `"}]}`
	l := newTestLedger(t, programID, transferProgram(), genesis)

	withdraw := func(amount byte) *ledger.Tx {
		return ledger.NewTx(nil, ledger.Instruction{
			ProgramID: programID,
			Accounts:  []ledger.AccountMeta{ledger.Meta(vault).WRITE(), ledger.Meta(alice).WRITE()},
			Data:      []byte{amount},
		})
	}

	_, err := l.Execute(context.Background(), withdraw(60))
	assert.Nil(t, err)
	_, err = l.Execute(context.Background(), withdraw(60))
	assert.IsErr(t, errors.ErrInsufficientBalance, err)

	acc, err := l.Account(alice)
	assert.Nil(t, err)
	assert.Equal(t, uint64(60), acc.Lamports)

	id, err := l.Commit()
	assert.Nil(t, err)
	assert.Equal(t, int64(2), id.Version)
}

func TestLedgerSerializesTransactions(t *testing.T) {
	programID := ledgertest.NewKey()
	vault := ledgertest.NewKey()

	owner := programID.String()
	genesis := `{"accounts": [{"address": "` + vault.String() + `", "lamports": 100, "owner": "` + owner + `"}]}`
	l := newTestLedger(t, programID, transferProgram(), genesis)

	const workers = 8
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		oks  int
		errs int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tx := ledger.NewTx(nil, ledger.Instruction{
				ProgramID: programID,
				Accounts:  []ledger.AccountMeta{ledger.Meta(vault).WRITE(), ledger.Meta(ledgertest.NewKey()).WRITE()},
				Data:      []byte{30},
			})
			_, err := l.Execute(context.Background(), tx)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				oks++
			} else if errors.ErrInsufficientBalance.Is(err) {
				errs++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, oks)
	assert.Equal(t, workers-3, errs)
	acc, err := l.Account(vault)
	assert.Nil(t, err)
	assert.Equal(t, uint64(10), acc.Lamports)
}

func TestLoadGenesis(t *testing.T) {
	dir, err := ioutil.TempDir("", "genesis-")
	assert.Nil(t, err)
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "genesis.json")
	raw := `{"chain_id": "local-chain", "app_options": {"conf": {"rent": {"lamports_per_byte_year": 1, "exemption_threshold": 2}}}}`
	assert.Nil(t, ioutil.WriteFile(path, []byte(raw), 0600))

	gen, err := LoadGenesis(path)
	assert.Nil(t, err)
	assert.Equal(t, "local-chain", gen.ChainID)

	_, err = LoadGenesis(filepath.Join(dir, "missing.json"))
	assert.IsErr(t, errors.ErrInput, err)
}
