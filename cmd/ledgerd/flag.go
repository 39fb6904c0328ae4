package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/mr-tron/base58"
)

// pubkeyValue is a flag.Value reading a base58 encoded address.
type pubkeyValue ledger.Pubkey

var _ flag.Value = (*pubkeyValue)(nil)

func (p *pubkeyValue) String() string {
	if p == nil {
		return ""
	}
	return ledger.Pubkey(*p).String()
}

func (p *pubkeyValue) Set(raw string) error {
	key, err := parsePubkey(raw)
	if err != nil {
		return err
	}
	*p = pubkeyValue(key)
	return nil
}

func parsePubkey(raw string) (ledger.Pubkey, error) {
	b, err := base58.Decode(raw)
	if err != nil {
		return ledger.Pubkey{}, errors.Wrapf(errors.ErrInput, "address %q: %s", raw, err)
	}
	if len(b) != ledger.PubkeyLength {
		return ledger.Pubkey{}, errors.Wrapf(errors.ErrInput, "address %q: %d bytes, want %d", raw, len(b), ledger.PubkeyLength)
	}
	return ledger.PubkeyFromBytes(b), nil
}

// flPubkey returns a value that is being initialized with given default value
// and optionally overwritten by a command line argument if provided. This
// function follows Go's flag package convention.
// If given value cannot be deserialized to required type, process is
// terminated.
func flPubkey(fl *flag.FlagSet, name, defaultVal, usage string) *ledger.Pubkey {
	var p ledger.Pubkey
	if defaultVal != "" {
		var err error
		p, err = parsePubkey(defaultVal)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Cannot parse %q address flag value. %s", name, err)
			os.Exit(2)
		}
	}
	fl.Var((*pubkeyValue)(&p), name, usage)
	return &p
}

// requirePubkeys fails unless all named flags were set to a non zero
// address.
func requirePubkeys(keys map[string]*ledger.Pubkey) error {
	for name, key := range keys {
		if key.IsZero() {
			return errors.Wrapf(errors.ErrEmpty, "-%s is required", name)
		}
	}
	return nil
}
