package app

import (
	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/gconf"
)

// rentConfKey is the gconf package name of the rent configuration.
const rentConfKey = "rent"

// LoadRent returns the configured rent, or the default one if the ledger
// was never configured.
func LoadRent(db gconf.ReadStore) (ledger.Rent, error) {
	var r ledger.Rent
	switch err := gconf.Load(db, rentConfKey, &r); {
	case err == nil:
		return r, nil
	case errors.ErrNotFound.Is(err):
		return ledger.DefaultRent, nil
	default:
		return r, errors.Wrap(err, "load rent")
	}
}
