package app

import (
	"encoding/json"
	"io/ioutil"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/gconf"
	"github.com/iov-one/ledger/orm"
)

// Genesis is the initial state of a ledger.
type Genesis struct {
	ChainID    string         `json:"chain_id"`
	AppOptions ledger.Options `json:"app_options"`
}

// LoadGenesis reads a genesis file.
func LoadGenesis(filePath string) (Genesis, error) {
	var gen Genesis
	raw, err := ioutil.ReadFile(filePath)
	if err != nil {
		return gen, errors.Wrapf(errors.ErrInput, "read genesis: %s", err)
	}
	if err := json.Unmarshal(raw, &gen); err != nil {
		return gen, errors.Wrapf(errors.ErrInput, "unmarshal genesis: %s", err)
	}
	return gen, nil
}

// ChainInitializers lets you initialize many extensions with one function.
func ChainInitializers(inits ...ledger.Initializer) ledger.Initializer {
	return chainInitializer(inits)
}

type chainInitializer []ledger.Initializer

// FromGenesis passes opts to all initializers in the list, aborting at
// the first error.
func (c chainInitializer) FromGenesis(opts ledger.Options, db ledger.KVStore) error {
	for _, init := range c {
		if err := init.FromGenesis(opts, db); err != nil {
			return err
		}
	}
	return nil
}

// GenesisAccount is an account created at genesis.
type GenesisAccount struct {
	Address  ledger.Pubkey  `json:"address"`
	Lamports uint64         `json:"lamports"`
	Owner    *ledger.Pubkey `json:"owner,omitempty"`
	Data     []byte         `json:"data,omitempty"`
}

// Initializer creates the base state of a ledger: the rent configuration
// and its sysvar, the accounts of all routed programs and the genesis
// accounts listed under the "accounts" key.
type Initializer struct {
	router   *Router
	accounts orm.AccountBucket
}

var _ ledger.Initializer = (*Initializer)(nil)

// NewInitializer returns an initializer creating accounts for the programs
// of given router.
func NewInitializer(r *Router) *Initializer {
	return &Initializer{router: r, accounts: orm.NewAccountBucket()}
}

// FromGenesis implements ledger.Initializer.
func (i *Initializer) FromGenesis(opts ledger.Options, db ledger.KVStore) error {
	rent := ledger.DefaultRent
	switch err := gconf.InitConfig(db, opts, rentConfKey, &rent); {
	case err == nil:
	case errors.ErrNotFound.Is(err):
		if err := gconf.Save(db, rentConfKey, &rent); err != nil {
			return err
		}
	default:
		return err
	}
	if err := i.createRentSysvar(db, rent); err != nil {
		return err
	}

	for _, id := range i.router.ProgramIDs() {
		program := &ledger.Account{Lamports: 1, Owner: NativeLoaderID, Executable: true}
		if err := i.accounts.Save(db, id, program); err != nil {
			return errors.Wrapf(err, "program %s", id)
		}
	}

	var accounts []GenesisAccount
	if err := opts.ReadOptions("accounts", &accounts); err != nil {
		return errors.Wrapf(errors.ErrInput, "accounts: %s", err)
	}
	for _, ga := range accounts {
		if ok, err := i.accounts.Has(db, ga.Address); err != nil {
			return err
		} else if ok {
			return errors.Wrapf(errors.ErrDuplicate, "account %s", ga.Address)
		}
		acc := &ledger.Account{
			Lamports: ga.Lamports,
			Owner:    ledger.SystemProgramID,
			Data:     ga.Data,
		}
		if ga.Owner != nil {
			acc.Owner = *ga.Owner
		}
		if len(acc.Data) > 0 && !rent.IsExempt(acc.Lamports, len(acc.Data)) {
			return errors.Wrapf(errors.ErrNotRentExempt, "account %s", ga.Address)
		}
		if err := i.accounts.Save(db, ga.Address, acc); err != nil {
			return errors.Wrapf(err, "account %s", ga.Address)
		}
	}
	return nil
}

func (i *Initializer) createRentSysvar(db ledger.KVStore, rent ledger.Rent) error {
	data, err := rent.Marshal()
	if err != nil {
		return errors.Wrap(err, "rent sysvar")
	}
	sysvar := &ledger.Account{
		Lamports: rent.MinimumBalance(len(data)),
		Owner:    ledger.SysvarOwnerID,
		Data:     data,
	}
	if sysvar.Lamports == 0 {
		// free storage would remove the sysvar
		sysvar.Lamports = 1
	}
	return i.accounts.Save(db, ledger.RentSysvarID, sysvar)
}
