package escrow

import (
	"bytes"

	bin "github.com/gagliardetto/binary"
	"github.com/iov-one/ledger/errors"
)

// InstructionSize is the encoded length of every escrow instruction.
const InstructionSize = 1 + 8 + 8

// Kind selects the escrow instruction.
type Kind uint8

const (
	InitEscrow Kind = iota
	Exchange
	Cancel
)

func (k Kind) String() string {
	switch k {
	case InitEscrow:
		return "InitEscrow"
	case Exchange:
		return "Exchange"
	case Cancel:
		return "Cancel"
	default:
		return "Unknown"
	}
}

// Instruction is a decoded escrow instruction. For InitEscrow the amounts
// declare the terms, for Exchange and Cancel they confirm the stored terms.
type Instruction struct {
	Kind       Kind
	SellAmount uint64
	BuyAmount  uint64
}

type wireInstruction struct {
	Kind       uint8
	SellAmount uint64
	BuyAmount  uint64
}

// Encode returns the wire form of the instruction.
func (ix *Instruction) Encode() ([]byte, error) {
	if ix.Kind > Cancel {
		return nil, errors.Wrapf(errors.ErrMalformedInstruction, "unknown instruction %d", ix.Kind)
	}
	var buf bytes.Buffer
	w := wireInstruction{Kind: uint8(ix.Kind), SellAmount: ix.SellAmount, BuyAmount: ix.BuyAmount}
	if err := bin.NewBorshEncoder(&buf).Encode(w); err != nil {
		return nil, errors.Wrap(err, "encode instruction")
	}
	return buf.Bytes(), nil
}

// Decode parses the wire form of an instruction. The input must be exactly
// InstructionSize long.
func Decode(data []byte) (*Instruction, error) {
	if len(data) != InstructionSize {
		return nil, errors.Wrapf(errors.ErrMalformedInstruction, "%d bytes, requires %d", len(data), InstructionSize)
	}
	var w wireInstruction
	if err := bin.NewBorshDecoder(data).Decode(&w); err != nil {
		return nil, errors.Wrap(errors.ErrMalformedInstruction, err.Error())
	}
	if Kind(w.Kind) > Cancel {
		return nil, errors.Wrapf(errors.ErrMalformedInstruction, "unknown instruction %d", w.Kind)
	}
	return &Instruction{Kind: Kind(w.Kind), SellAmount: w.SellAmount, BuyAmount: w.BuyAmount}, nil
}
