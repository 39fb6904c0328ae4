package app

import (
	"testing"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/ledgertest"
	"github.com/iov-one/ledger/ledgertest/assert"
)

func TestRouter(t *testing.T) {
	var (
		r  = NewRouter()
		id = ledgertest.NewKey()
		p  = &ledgertest.Program{}
	)

	r.Register(id, p)
	got, err := r.Route(id)
	assert.Nil(t, err)
	assert.Equal(t, ledger.Program(p), got)

	_, err = r.Route(ledgertest.NewKey())
	assert.IsErr(t, errors.ErrUnknownProgram, err)

	assert.Panics(t, func() { r.Register(id, p) })
	assert.Equal(t, []ledger.Pubkey{id}, r.ProgramIDs())
}
