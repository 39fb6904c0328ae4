package escrow

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/app"
	"github.com/iov-one/ledger/ledgertest"
	"github.com/iov-one/ledger/ledgertest/assert"
	"github.com/iov-one/ledger/store/iavl"
	"github.com/iov-one/ledger/x/ata"
	"github.com/iov-one/ledger/x/system"
	"github.com/iov-one/ledger/x/token"
)

const walletLamports = 100_000_000

// env is a ledger with two mints, an authority holding 1_000_000 of the
// sell mint and a taker holding 600_000 of the buy mint.
type env struct {
	ledger    *app.Ledger
	programID ledger.Pubkey

	sellMint  ledger.Pubkey
	buyMint   ledger.Pubkey
	authority ledger.Pubkey
	taker     ledger.Pubkey

	// token accounts, named after the owner and the mint
	authoritySell ledger.Pubkey
	authorityBuy  ledger.Pubkey
	takerSell     ledger.Pubkey
	takerBuy      ledger.Pubkey
}

func mustJSON(t testing.TB, v interface{}) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(v)
	assert.Nil(t, err)
	return raw
}

func ataOf(t testing.TB, wallet, mint ledger.Pubkey) ledger.Pubkey {
	t.Helper()
	addr, err := ata.Address(wallet, mint)
	assert.Nil(t, err)
	return addr
}

func newEnv(t testing.TB) *env {
	t.Helper()
	keys := ledgertest.NewKeys(4)
	e := &env{
		programID: DefaultProgramID,
		sellMint:  keys[0],
		buyMint:   keys[1],
		authority: keys[2],
		taker:     keys[3],
	}
	e.authoritySell = ataOf(t, e.authority, e.sellMint)
	e.authorityBuy = ataOf(t, e.authority, e.buyMint)
	e.takerSell = ataOf(t, e.taker, e.sellMint)
	e.takerBuy = ataOf(t, e.taker, e.buyMint)

	router := app.NewRouter()
	system.RegisterRoutes(router)
	token.RegisterRoutes(router)
	ata.RegisterRoutes(router)
	RegisterRoutes(router, e.programID)

	opts := ledger.Options{
		"accounts": mustJSON(t, []app.GenesisAccount{
			{Address: e.authority, Lamports: walletLamports},
			{Address: e.taker, Lamports: walletLamports},
		}),
		"token": mustJSON(t, token.Genesis{
			Mints: []token.GenesisMint{
				{Address: e.sellMint, Decimals: 6},
				{Address: e.buyMint, Decimals: 0},
			},
			Accounts: []token.GenesisAccount{
				{Address: e.authoritySell, Mint: e.sellMint, Owner: e.authority, Amount: 1_000_000},
				{Address: e.authorityBuy, Mint: e.buyMint, Owner: e.authority},
				{Address: e.takerSell, Mint: e.sellMint, Owner: e.taker},
				{Address: e.takerBuy, Mint: e.buyMint, Owner: e.taker, Amount: 600_000},
			},
		}),
	}
	inits := app.ChainInitializers(app.NewInitializer(router), token.NewInitializer())
	e.ledger = app.NewLedger(iavl.MockCommitStore(), app.NewRuntime(router), inits, nil)
	_, err := e.ledger.InitChain(app.Genesis{ChainID: "escrow-test", AppOptions: opts})
	assert.Nil(t, err)
	return e
}

func (e *env) execute(signers []ledger.Pubkey, ixs ...ledger.Instruction) (*ledger.Result, error) {
	return e.ledger.Execute(context.Background(), ledger.NewTx(signers, ixs...))
}

func (e *env) initEscrow(t testing.TB, sell, buy uint64) ledger.Instruction {
	t.Helper()
	ix, err := NewInitEscrowInstruction(e.programID, InitEscrowKeys{
		Authority:            e.authority,
		SellMint:             e.sellMint,
		BuyMint:              e.buyMint,
		AuthoritySellAccount: e.authoritySell,
		AuthorityBuyAccount:  e.authorityBuy,
	}, sell, buy)
	assert.Nil(t, err)
	return ix
}

func (e *env) exchange(t testing.TB, sell, buy uint64) ledger.Instruction {
	t.Helper()
	ix, err := NewExchangeInstruction(e.programID, ExchangeKeys{
		Authority:           e.authority,
		Taker:               e.taker,
		SellMint:            e.sellMint,
		BuyMint:             e.buyMint,
		TakerSellAccount:    e.takerBuy,
		TakerBuyAccount:     e.takerSell,
		AuthorityBuyAccount: e.authorityBuy,
	}, sell, buy)
	assert.Nil(t, err)
	return ix
}

func (e *env) cancel(t testing.TB, sell, buy uint64) ledger.Instruction {
	t.Helper()
	ix, err := NewCancelInstruction(e.programID, CancelKeys{
		Authority:            e.authority,
		SellMint:             e.sellMint,
		AuthoritySellAccount: e.authoritySell,
	}, sell, buy)
	assert.Nil(t, err)
	return ix
}

func (e *env) addresses(t testing.TB) (record, vault ledger.Pubkey) {
	t.Helper()
	record, vault, err := addresses(e.programID, e.authority, e.sellMint)
	assert.Nil(t, err)
	return record, vault
}

func (e *env) account(t testing.TB, key ledger.Pubkey) *ledger.Account {
	t.Helper()
	acc, err := e.ledger.Account(key)
	assert.Nil(t, err)
	return acc
}

// exists returns true if the account holds lamports.
func (e *env) exists(t testing.TB, key ledger.Pubkey) bool {
	t.Helper()
	return e.account(t, key).Lamports > 0
}

// balance returns the token balance of an account, zero if it does not
// exist.
func (e *env) balance(t testing.TB, key ledger.Pubkey) uint64 {
	t.Helper()
	acc := e.account(t, key)
	if acc.Lamports == 0 {
		return 0
	}
	var ta token.TokenAccount
	assert.Nil(t, ta.Unmarshal(acc.Data))
	return ta.Amount
}

type balances struct {
	authoritySell, authorityBuy, takerSell, takerBuy, vault uint64
}

func (e *env) balances(t testing.TB) balances {
	t.Helper()
	_, vault := e.addresses(t)
	return balances{
		authoritySell: e.balance(t, e.authoritySell),
		authorityBuy:  e.balance(t, e.authorityBuy),
		takerSell:     e.balance(t, e.takerSell),
		takerBuy:      e.balance(t, e.takerBuy),
		vault:         e.balance(t, vault),
	}
}
