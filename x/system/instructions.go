package system

import (
	"bytes"

	bin "github.com/gagliardetto/binary"
	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
)

// Instruction discriminants.
const (
	InstrCreateAccount uint32 = 0
	InstrAssign        uint32 = 1
	InstrTransfer      uint32 = 2
	InstrAllocate      uint32 = 8
)

// CreateAccount funds a new account, allocates its data and assigns it to
// a program.
//
// Accounts: [funder (signer, writable), new account (signer, writable)]
type CreateAccount struct {
	Lamports uint64
	Space    uint64
	Owner    ledger.Pubkey
}

// Assign changes the owner of an account.
//
// Accounts: [account (signer, writable)]
type Assign struct {
	Owner ledger.Pubkey
}

// Transfer moves lamports between system owned accounts.
//
// Accounts: [from (signer, writable), to (writable)]
type Transfer struct {
	Lamports uint64
}

// Allocate sets the data length of an account.
//
// Accounts: [account (signer, writable)]
type Allocate struct {
	Space uint64
}

func (ix *CreateAccount) MarshalWithEncoder(enc *bin.Encoder) error {
	if err := enc.WriteUint32(InstrCreateAccount, bin.LE); err != nil {
		return err
	}
	if err := enc.WriteUint64(ix.Lamports, bin.LE); err != nil {
		return err
	}
	if err := enc.WriteUint64(ix.Space, bin.LE); err != nil {
		return err
	}
	return enc.WriteBytes(ix.Owner[:], false)
}

func (ix *CreateAccount) UnmarshalWithDecoder(dec *bin.Decoder) (err error) {
	if ix.Lamports, err = dec.ReadUint64(bin.LE); err != nil {
		return err
	}
	if ix.Space, err = dec.ReadUint64(bin.LE); err != nil {
		return err
	}
	ix.Owner, err = readPubkey(dec)
	return err
}

func (ix *Assign) MarshalWithEncoder(enc *bin.Encoder) error {
	if err := enc.WriteUint32(InstrAssign, bin.LE); err != nil {
		return err
	}
	return enc.WriteBytes(ix.Owner[:], false)
}

func (ix *Assign) UnmarshalWithDecoder(dec *bin.Decoder) (err error) {
	ix.Owner, err = readPubkey(dec)
	return err
}

func (ix *Transfer) MarshalWithEncoder(enc *bin.Encoder) error {
	if err := enc.WriteUint32(InstrTransfer, bin.LE); err != nil {
		return err
	}
	return enc.WriteUint64(ix.Lamports, bin.LE)
}

func (ix *Transfer) UnmarshalWithDecoder(dec *bin.Decoder) (err error) {
	ix.Lamports, err = dec.ReadUint64(bin.LE)
	return err
}

func (ix *Allocate) MarshalWithEncoder(enc *bin.Encoder) error {
	if err := enc.WriteUint32(InstrAllocate, bin.LE); err != nil {
		return err
	}
	return enc.WriteUint64(ix.Space, bin.LE)
}

func (ix *Allocate) UnmarshalWithDecoder(dec *bin.Decoder) (err error) {
	ix.Space, err = dec.ReadUint64(bin.LE)
	return err
}

func readPubkey(dec *bin.Decoder) (ledger.Pubkey, error) {
	b, err := dec.ReadBytes(ledger.PubkeyLength)
	if err != nil {
		return ledger.Pubkey{}, err
	}
	return ledger.PubkeyFromBytes(b), nil
}

type encodable interface {
	MarshalWithEncoder(*bin.Encoder) error
}

func encode(ix encodable) []byte {
	var buf bytes.Buffer
	if err := ix.MarshalWithEncoder(bin.NewBinEncoder(&buf)); err != nil {
		// writing to a buffer cannot fail
		panic(err)
	}
	return buf.Bytes()
}

// decode reads the discriminant and the matching instruction.
func decode(data []byte) (interface{}, error) {
	dec := bin.NewBinDecoder(data)
	kind, err := dec.ReadUint32(bin.LE)
	if err != nil {
		return nil, errors.Wrap(errors.ErrMalformedInstruction, "discriminant")
	}

	var ix interface {
		UnmarshalWithDecoder(*bin.Decoder) error
	}
	switch kind {
	case InstrCreateAccount:
		ix = &CreateAccount{}
	case InstrAssign:
		ix = &Assign{}
	case InstrTransfer:
		ix = &Transfer{}
	case InstrAllocate:
		ix = &Allocate{}
	default:
		return nil, errors.Wrapf(errors.ErrMalformedInstruction, "unknown system instruction %d", kind)
	}
	if err := ix.UnmarshalWithDecoder(dec); err != nil {
		return nil, errors.Wrapf(errors.ErrMalformedInstruction, "%T: %s", ix, err)
	}
	if dec.Remaining() != 0 {
		return nil, errors.Wrapf(errors.ErrMalformedInstruction, "%T: %d trailing bytes", ix, dec.Remaining())
	}
	return ix, nil
}

// NewCreateAccountInstruction returns an instruction creating newAccount,
// funded by funder.
func NewCreateAccountInstruction(funder, newAccount ledger.Pubkey, lamports, space uint64, owner ledger.Pubkey) ledger.Instruction {
	return ledger.Instruction{
		ProgramID: ledger.SystemProgramID,
		Accounts: []ledger.AccountMeta{
			ledger.Meta(funder).WRITE().SIGNER(),
			ledger.Meta(newAccount).WRITE().SIGNER(),
		},
		Data: encode(&CreateAccount{Lamports: lamports, Space: space, Owner: owner}),
	}
}

// NewAssignInstruction returns an instruction assigning the account to
// owner.
func NewAssignInstruction(account, owner ledger.Pubkey) ledger.Instruction {
	return ledger.Instruction{
		ProgramID: ledger.SystemProgramID,
		Accounts:  []ledger.AccountMeta{ledger.Meta(account).WRITE().SIGNER()},
		Data:      encode(&Assign{Owner: owner}),
	}
}

// NewTransferInstruction returns an instruction moving lamports.
func NewTransferInstruction(from, to ledger.Pubkey, lamports uint64) ledger.Instruction {
	return ledger.Instruction{
		ProgramID: ledger.SystemProgramID,
		Accounts: []ledger.AccountMeta{
			ledger.Meta(from).WRITE().SIGNER(),
			ledger.Meta(to).WRITE(),
		},
		Data: encode(&Transfer{Lamports: lamports}),
	}
}

// NewAllocateInstruction returns an instruction allocating space bytes of
// account data.
func NewAllocateInstruction(account ledger.Pubkey, space uint64) ledger.Instruction {
	return ledger.Instruction{
		ProgramID: ledger.SystemProgramID,
		Accounts:  []ledger.AccountMeta{ledger.Meta(account).WRITE().SIGNER()},
		Data:      encode(&Allocate{Space: space}),
	}
}
