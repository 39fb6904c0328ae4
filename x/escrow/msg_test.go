package escrow

import (
	"math"
	"testing"

	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/ledgertest/assert"
)

func TestInstructionRoundTrip(t *testing.T) {
	cases := map[string]Instruction{
		"init":          {Kind: InitEscrow, SellAmount: 1_000_000, BuyAmount: 500_000},
		"exchange":      {Kind: Exchange, SellAmount: 1_000_000, BuyAmount: 500_000},
		"cancel":        {Kind: Cancel, SellAmount: 1, BuyAmount: 2},
		"zero amounts":  {Kind: InitEscrow},
		"max amounts":   {Kind: Exchange, SellAmount: math.MaxUint64, BuyAmount: math.MaxUint64},
		"mixed amounts": {Kind: Cancel, SellAmount: math.MaxUint64, BuyAmount: 0},
	}
	for testName, ix := range cases {
		t.Run(testName, func(t *testing.T) {
			raw, err := ix.Encode()
			assert.Nil(t, err)
			assert.Equal(t, InstructionSize, len(raw))
			got, err := Decode(raw)
			assert.Nil(t, err)
			assert.Equal(t, ix, *got)
		})
	}
}

func TestInstructionLayout(t *testing.T) {
	ix := Instruction{Kind: Exchange, SellAmount: 1_000_000, BuyAmount: 500_000}
	raw, err := ix.Encode()
	assert.Nil(t, err)
	want := []byte{
		1,
		0x40, 0x42, 0x0f, 0, 0, 0, 0, 0,
		0x20, 0xa1, 0x07, 0, 0, 0, 0, 0,
	}
	assert.Equal(t, want, raw)
}

func TestDecodeErrors(t *testing.T) {
	valid, err := (&Instruction{Kind: InitEscrow, SellAmount: 5, BuyAmount: 6}).Encode()
	assert.Nil(t, err)

	cases := map[string][]byte{
		"empty":          nil,
		"discriminant":   {0},
		"one byte short": valid[:InstructionSize-1],
		"trailing byte":  append(append([]byte{}, valid...), 0),
		"unknown kind":   append([]byte{3}, valid[1:]...),
		"max kind":       append([]byte{255}, valid[1:]...),
	}
	for testName, data := range cases {
		t.Run(testName, func(t *testing.T) {
			_, err := Decode(data)
			assert.IsErr(t, errors.ErrMalformedInstruction, err)
		})
	}

	_, err = (&Instruction{Kind: 9}).Encode()
	assert.IsErr(t, errors.ErrMalformedInstruction, err)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "InitEscrow", InitEscrow.String())
	assert.Equal(t, "Exchange", Exchange.String())
	assert.Equal(t, "Cancel", Cancel.String())
	assert.Equal(t, "Unknown", Kind(42).String())
}
