package token

import (
	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/app"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/orm"
)

// Genesis lists the token state created with the chain, read from the
// "token" key of the app options.
type Genesis struct {
	Mints    []GenesisMint    `json:"mints"`
	Accounts []GenesisAccount `json:"accounts"`
}

// GenesisMint is a mint created at genesis. Its supply is the sum of all
// genesis accounts of the mint.
type GenesisMint struct {
	Address   ledger.Pubkey  `json:"address"`
	Authority *ledger.Pubkey `json:"authority,omitempty"`
	Decimals  uint8          `json:"decimals"`
}

// GenesisAccount is a token account created at genesis.
type GenesisAccount struct {
	Address ledger.Pubkey `json:"address"`
	Mint    ledger.Pubkey `json:"mint"`
	Owner   ledger.Pubkey `json:"owner"`
	Amount  uint64        `json:"amount"`
}

// Initializer creates genesis mints and token accounts. It must run after
// the app initializer, which stores the rent configuration.
type Initializer struct {
	accounts orm.AccountBucket
}

var _ ledger.Initializer = (*Initializer)(nil)

// NewInitializer returns the token genesis initializer.
func NewInitializer() *Initializer {
	return &Initializer{accounts: orm.NewAccountBucket()}
}

// FromGenesis implements ledger.Initializer.
func (i *Initializer) FromGenesis(opts ledger.Options, db ledger.KVStore) error {
	var gen Genesis
	if err := opts.ReadOptions("token", &gen); err != nil {
		return errors.Wrapf(errors.ErrInput, "token: %s", err)
	}
	rent, err := app.LoadRent(db)
	if err != nil {
		return err
	}

	mints := make(map[ledger.Pubkey]*Mint, len(gen.Mints))
	for _, gm := range gen.Mints {
		if _, ok := mints[gm.Address]; ok {
			return errors.Wrapf(errors.ErrDuplicate, "mint %s", gm.Address)
		}
		mints[gm.Address] = &Mint{
			MintAuthority: gm.Authority,
			Decimals:      gm.Decimals,
			IsInitialized: true,
		}
	}

	for _, ga := range gen.Accounts {
		m, ok := mints[ga.Mint]
		if !ok {
			return errors.Wrapf(errors.ErrNotFound, "mint %s of account %s", ga.Mint, ga.Address)
		}
		if m.Supply+ga.Amount < m.Supply {
			return errors.Wrapf(errors.ErrOverflow, "supply of %s", ga.Mint)
		}
		m.Supply += ga.Amount
		acc := &TokenAccount{Mint: ga.Mint, Owner: ga.Owner, Amount: ga.Amount, State: Initialized}
		if err := i.create(db, rent, ga.Address, acc); err != nil {
			return err
		}
	}
	for _, gm := range gen.Mints {
		if err := i.create(db, rent, gm.Address, mints[gm.Address]); err != nil {
			return err
		}
	}
	return nil
}

type encoder interface {
	Marshal() ([]byte, error)
}

func (i *Initializer) create(db ledger.KVStore, rent ledger.Rent, key ledger.Pubkey, state encoder) error {
	if ok, err := i.accounts.Has(db, key); err != nil {
		return err
	} else if ok {
		return errors.Wrapf(errors.ErrDuplicate, "account %s", key)
	}
	data, err := state.Marshal()
	if err != nil {
		return errors.Wrapf(err, "account %s", key)
	}
	acc := &ledger.Account{
		Lamports: rent.MinimumBalance(len(data)),
		Owner:    ledger.TokenProgramID,
		Data:     data,
	}
	return i.accounts.Save(db, key, acc)
}
