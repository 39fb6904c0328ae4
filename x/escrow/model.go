package escrow

import (
	"bytes"

	bin "github.com/gagliardetto/binary"
	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
)

// RecordSize is the encoded length of an EscrowRecord.
const RecordSize = 1 + 32 + 32 + 32 + 8 + 8 + 32 + 1

// EscrowRecord holds the terms of an open escrow. It is stored in the data
// of the account at the record address and never changes until closed.
type EscrowRecord struct {
	IsInitialized bool
	Authority     ledger.Pubkey
	SellMint      ledger.Pubkey
	BuyMint       ledger.Pubkey
	SellAmount    uint64
	BuyAmount     uint64
	// ReceiveAccount is the token account of the authority paid by the
	// taker.
	ReceiveAccount ledger.Pubkey
	// Bump of the record address derivation.
	Bump uint8
}

// Validate ensures the record describes an open escrow.
func (r *EscrowRecord) Validate() error {
	var errs error
	if !r.IsInitialized {
		errs = errors.AppendField(errs, "IsInitialized", errors.ErrState)
	}
	if r.Authority.IsZero() {
		errs = errors.AppendField(errs, "Authority", errors.ErrEmpty)
	}
	if r.SellMint == r.BuyMint {
		errs = errors.Append(errs, errors.Field("BuyMint", errors.ErrMintMismatch, "equal to sell mint"))
	}
	if r.SellAmount == 0 {
		errs = errors.AppendField(errs, "SellAmount", errors.ErrAmount)
	}
	if r.BuyAmount == 0 {
		errs = errors.AppendField(errs, "BuyAmount", errors.ErrAmount)
	}
	return errs
}

// Marshal returns the RecordSize long encoding.
func (r *EscrowRecord) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	if err := bin.NewBorshEncoder(&buf).Encode(*r); err != nil {
		return nil, errors.Wrap(err, "encode record")
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a record. The input must be exactly RecordSize long.
func (r *EscrowRecord) Unmarshal(raw []byte) error {
	if len(raw) != RecordSize {
		return errors.Wrapf(errors.ErrInput, "record of %d bytes", len(raw))
	}
	if err := bin.NewBorshDecoder(raw).Decode(r); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	return nil
}
