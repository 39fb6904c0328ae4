package token

import (
	bin "github.com/gagliardetto/binary"
	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
)

// Instruction discriminants, a single leading byte.
const (
	InstrTransfer           uint8 = 3
	InstrMintTo             uint8 = 7
	InstrCloseAccount       uint8 = 9
	InstrTransferChecked    uint8 = 12
	InstrInitializeAccount3 uint8 = 18
	InstrInitializeMint2    uint8 = 20
)

// Transfer moves tokens between accounts of the same mint.
//
// Accounts: [source (writable), destination (writable), owner (signer)]
type Transfer struct {
	Amount uint64
}

// MintTo creates new tokens.
//
// Accounts: [mint (writable), destination (writable), mint authority (signer)]
type MintTo struct {
	Amount uint64
}

// CloseAccount removes an empty token account and returns its lamports.
//
// Accounts: [account (writable), destination (writable), owner (signer)]
type CloseAccount struct{}

// TransferChecked is Transfer that also asserts the mint and its decimals.
//
// Accounts: [source (writable), mint, destination (writable), owner (signer)]
type TransferChecked struct {
	Amount   uint64
	Decimals uint8
}

// InitializeAccount3 initializes an allocated token account.
//
// Accounts: [account (writable), mint]
type InitializeAccount3 struct {
	Owner ledger.Pubkey
}

// InitializeMint2 initializes an allocated mint.
//
// Accounts: [mint (writable)]
type InitializeMint2 struct {
	Decimals        uint8
	MintAuthority   ledger.Pubkey
	FreezeAuthority *ledger.Pubkey
}

func (ix *Transfer) MarshalWithEncoder(enc *bin.Encoder) error {
	if err := enc.WriteUint8(InstrTransfer); err != nil {
		return err
	}
	return enc.WriteUint64(ix.Amount, bin.LE)
}

func (ix *Transfer) UnmarshalWithDecoder(dec *bin.Decoder) (err error) {
	ix.Amount, err = dec.ReadUint64(bin.LE)
	return err
}

func (ix *MintTo) MarshalWithEncoder(enc *bin.Encoder) error {
	if err := enc.WriteUint8(InstrMintTo); err != nil {
		return err
	}
	return enc.WriteUint64(ix.Amount, bin.LE)
}

func (ix *MintTo) UnmarshalWithDecoder(dec *bin.Decoder) (err error) {
	ix.Amount, err = dec.ReadUint64(bin.LE)
	return err
}

func (ix *CloseAccount) MarshalWithEncoder(enc *bin.Encoder) error {
	return enc.WriteUint8(InstrCloseAccount)
}

func (ix *CloseAccount) UnmarshalWithDecoder(dec *bin.Decoder) error {
	return nil
}

func (ix *TransferChecked) MarshalWithEncoder(enc *bin.Encoder) error {
	if err := enc.WriteUint8(InstrTransferChecked); err != nil {
		return err
	}
	if err := enc.WriteUint64(ix.Amount, bin.LE); err != nil {
		return err
	}
	return enc.WriteUint8(ix.Decimals)
}

func (ix *TransferChecked) UnmarshalWithDecoder(dec *bin.Decoder) (err error) {
	if ix.Amount, err = dec.ReadUint64(bin.LE); err != nil {
		return err
	}
	ix.Decimals, err = dec.ReadUint8()
	return err
}

func (ix *InitializeAccount3) MarshalWithEncoder(enc *bin.Encoder) error {
	if err := enc.WriteUint8(InstrInitializeAccount3); err != nil {
		return err
	}
	return enc.WriteBytes(ix.Owner[:], false)
}

func (ix *InitializeAccount3) UnmarshalWithDecoder(dec *bin.Decoder) (err error) {
	ix.Owner, err = readPubkey(dec)
	return err
}

func (ix *InitializeMint2) MarshalWithEncoder(enc *bin.Encoder) error {
	if err := enc.WriteUint8(InstrInitializeMint2); err != nil {
		return err
	}
	if err := enc.WriteUint8(ix.Decimals); err != nil {
		return err
	}
	if err := enc.WriteBytes(ix.MintAuthority[:], false); err != nil {
		return err
	}
	// instruction options carry a single byte tag
	if ix.FreezeAuthority == nil {
		return enc.WriteUint8(0)
	}
	if err := enc.WriteUint8(1); err != nil {
		return err
	}
	return enc.WriteBytes(ix.FreezeAuthority[:], false)
}

func (ix *InitializeMint2) UnmarshalWithDecoder(dec *bin.Decoder) (err error) {
	if ix.Decimals, err = dec.ReadUint8(); err != nil {
		return err
	}
	if ix.MintAuthority, err = readPubkey(dec); err != nil {
		return err
	}
	tag, err := dec.ReadUint8()
	if err != nil {
		return err
	}
	switch tag {
	case 0:
		ix.FreezeAuthority = nil
	case 1:
		key, err := readPubkey(dec)
		if err != nil {
			return err
		}
		ix.FreezeAuthority = &key
	default:
		return errors.Wrapf(errors.ErrInput, "option tag %d", tag)
	}
	return nil
}

func decode(data []byte) (interface{}, error) {
	if len(data) == 0 {
		return nil, errors.Wrap(errors.ErrMalformedInstruction, "missing discriminant")
	}
	var ix bin.BinaryUnmarshaler
	switch data[0] {
	case InstrTransfer:
		ix = &Transfer{}
	case InstrMintTo:
		ix = &MintTo{}
	case InstrCloseAccount:
		ix = &CloseAccount{}
	case InstrTransferChecked:
		ix = &TransferChecked{}
	case InstrInitializeAccount3:
		ix = &InitializeAccount3{}
	case InstrInitializeMint2:
		ix = &InitializeMint2{}
	default:
		return nil, errors.Wrapf(errors.ErrMalformedInstruction, "unknown token instruction %d", data[0])
	}
	dec := bin.NewBinDecoder(data[1:])
	if err := ix.UnmarshalWithDecoder(dec); err != nil {
		return nil, errors.Wrapf(errors.ErrMalformedInstruction, "%T: %s", ix, err)
	}
	if dec.Remaining() != 0 {
		return nil, errors.Wrapf(errors.ErrMalformedInstruction, "%T: %d trailing bytes", ix, dec.Remaining())
	}
	return ix, nil
}

func instruction(ix bin.BinaryMarshaler, accounts ...ledger.AccountMeta) ledger.Instruction {
	data, err := marshal(ix)
	if err != nil {
		// writing to a buffer cannot fail
		panic(err)
	}
	return ledger.Instruction{
		ProgramID: ledger.TokenProgramID,
		Accounts:  accounts,
		Data:      data,
	}
}

// NewTransferInstruction returns a Transfer instruction.
func NewTransferInstruction(source, dest, owner ledger.Pubkey, amount uint64) ledger.Instruction {
	return instruction(&Transfer{Amount: amount},
		ledger.Meta(source).WRITE(),
		ledger.Meta(dest).WRITE(),
		ledger.Meta(owner).SIGNER())
}

// NewTransferCheckedInstruction returns a TransferChecked instruction.
func NewTransferCheckedInstruction(source, mint, dest, owner ledger.Pubkey, amount uint64, decimals uint8) ledger.Instruction {
	return instruction(&TransferChecked{Amount: amount, Decimals: decimals},
		ledger.Meta(source).WRITE(),
		ledger.Meta(mint),
		ledger.Meta(dest).WRITE(),
		ledger.Meta(owner).SIGNER())
}

// NewMintToInstruction returns a MintTo instruction.
func NewMintToInstruction(mint, dest, authority ledger.Pubkey, amount uint64) ledger.Instruction {
	return instruction(&MintTo{Amount: amount},
		ledger.Meta(mint).WRITE(),
		ledger.Meta(dest).WRITE(),
		ledger.Meta(authority).SIGNER())
}

// NewCloseAccountInstruction returns a CloseAccount instruction.
func NewCloseAccountInstruction(account, dest, owner ledger.Pubkey) ledger.Instruction {
	return instruction(&CloseAccount{},
		ledger.Meta(account).WRITE(),
		ledger.Meta(dest).WRITE(),
		ledger.Meta(owner).SIGNER())
}

// NewInitializeAccount3Instruction returns an InitializeAccount3
// instruction.
func NewInitializeAccount3Instruction(account, mint, owner ledger.Pubkey) ledger.Instruction {
	return instruction(&InitializeAccount3{Owner: owner},
		ledger.Meta(account).WRITE(),
		ledger.Meta(mint))
}

// NewInitializeMint2Instruction returns an InitializeMint2 instruction
// without a freeze authority.
func NewInitializeMint2Instruction(mint, authority ledger.Pubkey, decimals uint8) ledger.Instruction {
	return instruction(&InitializeMint2{Decimals: decimals, MintAuthority: authority},
		ledger.Meta(mint).WRITE())
}
