package app

import (
	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
)

// Router maps program addresses to their implementation.
type Router struct {
	programs map[ledger.Pubkey]ledger.Program
	order    []ledger.Pubkey
}

var _ ledger.Registry = (*Router)(nil)

// NewRouter returns a router without any program.
func NewRouter() *Router {
	return &Router{programs: make(map[ledger.Pubkey]ledger.Program)}
}

// Register binds a program to given address. It panics if the address is
// already taken, so call it only during program initialization.
func (r *Router) Register(id ledger.Pubkey, p ledger.Program) {
	if _, ok := r.programs[id]; ok {
		panic(errors.Wrapf(errors.ErrDuplicate, "program %s already registered", id))
	}
	r.programs[id] = p
	r.order = append(r.order, id)
}

// Route returns the program registered at given address.
func (r *Router) Route(id ledger.Pubkey) (ledger.Program, error) {
	p, ok := r.programs[id]
	if !ok {
		return nil, errors.Wrapf(errors.ErrUnknownProgram, "program %s", id)
	}
	return p, nil
}

// ProgramIDs returns the addresses of all registered programs in
// registration order.
func (r *Router) ProgramIDs() []ledger.Pubkey {
	return append([]ledger.Pubkey(nil), r.order...)
}
