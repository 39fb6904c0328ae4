package ata

import (
	"github.com/iov-one/ledger"
)

func seeds(wallet, mint ledger.Pubkey) [][]byte {
	return [][]byte{wallet[:], ledger.TokenProgramID[:], mint[:]}
}

// Address returns the associated token account of wallet for mint.
func Address(wallet, mint ledger.Pubkey) (ledger.Pubkey, error) {
	addr, _, err := AddressWithBump(wallet, mint)
	return addr, err
}

// AddressWithBump returns the associated token account of wallet for mint
// together with the bump seed of the derivation.
func AddressWithBump(wallet, mint ledger.Pubkey) (ledger.Pubkey, uint8, error) {
	return ledger.FindProgramAddress(seeds(wallet, mint), ledger.AssociatedTokenProgramID)
}
