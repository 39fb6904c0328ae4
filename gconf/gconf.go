package gconf

import (
	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
)

// ReadStore is a subset of ledger.ReadOnlyKVStore.
type ReadStore interface {
	Get([]byte) ([]byte, error)
}

// Store is a subset of ledger.KVStore.
type Store interface {
	ReadStore
	Set([]byte, []byte) error
}

// ValidMarshaler is implemented by objects that can validate and serialize
// themselves.
type ValidMarshaler interface {
	Marshal() ([]byte, error)
	Validate() error
}

// Unmarshaler is implemented by objects that can load their state from
// given binary representation.
type Unmarshaler interface {
	Unmarshal([]byte) error
}

// Configuration is implemented by all configuration objects.
type Configuration interface {
	ValidMarshaler
	Unmarshaler
}

func key(pkg string) []byte {
	return []byte("_c:" + pkg)
}

// Save validates the object and writes it as the configuration of given
// package.
func Save(db Store, pkg string, src ValidMarshaler) error {
	k := key(pkg)
	if err := src.Validate(); err != nil {
		return errors.Wrapf(err, "validation: key %q", k)
	}
	raw, err := src.Marshal()
	if err != nil {
		return errors.Wrapf(err, "marshal: key %q", k)
	}
	if err := db.Set(k, raw); err != nil {
		return errors.Wrapf(errors.ErrDatabase, "set %q: %s", k, err)
	}
	return nil
}

// Load reads the configuration of given package into dst. ErrNotFound is
// returned if the package was never configured.
func Load(db ReadStore, pkg string, dst Unmarshaler) error {
	k := key(pkg)
	raw, err := db.Get(k)
	if err != nil {
		return errors.Wrapf(errors.ErrDatabase, "get %q: %s", k, err)
	}
	if raw == nil {
		return errors.Wrapf(errors.ErrNotFound, "key %q", k)
	}
	if err := dst.Unmarshal(raw); err != nil {
		return errors.Wrapf(err, "unmarshal: key %q", k)
	}
	return nil
}

// InitConfig takes opts["conf"][pkg], parses it into the given
// configuration object, validates it and stores it.
func InitConfig(db Store, opts ledger.Options, pkg string, conf Configuration) error {
	var confOptions ledger.Options
	if err := opts.ReadOptions("conf", &confOptions); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	if confOptions[pkg] == nil {
		return errors.Wrapf(errors.ErrNotFound, "no configuration in genesis for %q package", pkg)
	}
	if err := confOptions.ReadOptions(pkg, conf); err != nil {
		return errors.Wrapf(errors.ErrInput, "read configuration for %s: %s", pkg, err)
	}
	if err := Save(db, pkg, conf); err != nil {
		return errors.Wrapf(err, "save configuration for %s", pkg)
	}
	return nil
}
