package ledgertest

import (
	solana "github.com/gagliardetto/solana-go"
	"github.com/iov-one/ledger"
)

// NewKey returns the public key of a freshly generated ed25519 key pair.
func NewKey() ledger.Pubkey {
	return solana.NewWallet().PublicKey()
}

// NewKeys returns n new public keys.
func NewKeys(n int) []ledger.Pubkey {
	keys := make([]ledger.Pubkey, n)
	for i := range keys {
		keys[i] = NewKey()
	}
	return keys
}
