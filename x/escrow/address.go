package escrow

import (
	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/x/ata"
)

// recordPrefix namespaces record addresses.
var recordPrefix = []byte("escrow")

func recordSeeds(authority, sellMint ledger.Pubkey) [][]byte {
	return [][]byte{recordPrefix, authority[:], sellMint[:]}
}

func signerSeeds(authority, sellMint ledger.Pubkey, bump uint8) [][]byte {
	return append(recordSeeds(authority, sellMint), []byte{bump})
}

// RecordAddress returns the address of the escrow record of authority for
// sellMint together with the bump of the derivation.
func RecordAddress(programID, authority, sellMint ledger.Pubkey) (ledger.Pubkey, uint8, error) {
	return ledger.FindProgramAddress(recordSeeds(authority, sellMint), programID)
}

// VerifyRecordAddress ensures that addr is the record address of authority
// for sellMint derived with given bump.
func VerifyRecordAddress(programID, authority, sellMint ledger.Pubkey, bump uint8, addr ledger.Pubkey) error {
	want, err := ledger.CreateProgramAddress(signerSeeds(authority, sellMint, bump), programID)
	if err != nil {
		return errors.Wrap(errors.ErrInvalidAccountAddress, err.Error())
	}
	if want != addr {
		return errors.Wrapf(errors.ErrInvalidAccountAddress, "record is %s, got %s", want, addr)
	}
	return nil
}

// VaultAddress returns the vault of the escrow stored at record.
func VaultAddress(record, sellMint ledger.Pubkey) (ledger.Pubkey, error) {
	return ata.Address(record, sellMint)
}
