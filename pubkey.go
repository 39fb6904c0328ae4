package ledger

import (
	solana "github.com/gagliardetto/solana-go"
)

// Pubkey identifies an account. It is a 32 byte ed25519 public key for
// accounts held by a human, or a program derived address for accounts that
// are controlled by a program.
//
// The text form (String, JSON) is base58.
type Pubkey = solana.PublicKey

// PubkeyLength is the length of all account addresses.
const PubkeyLength = solana.PublicKeyLength

// Well known native program and sysvar addresses.
var (
	SystemProgramID          = solana.SystemProgramID
	TokenProgramID           = solana.TokenProgramID
	AssociatedTokenProgramID = solana.SPLAssociatedTokenAccountProgramID
	RentSysvarID             = solana.SysVarRentPubkey
	SysvarOwnerID            = solana.MustPublicKeyFromBase58("Sysvar1111111111111111111111111111111111111")
)

// PubkeyFromBytes copies given bytes into a Pubkey.
func PubkeyFromBytes(b []byte) Pubkey {
	return solana.PublicKeyFromBytes(b)
}

// ParsePubkey decodes a base58 encoded address.
func ParsePubkey(s string) (Pubkey, error) {
	return solana.PublicKeyFromBase58(s)
}

// MustParsePubkey is ParsePubkey that panics on error. Use it only for
// constants.
func MustParsePubkey(s string) Pubkey {
	return solana.MustPublicKeyFromBase58(s)
}
