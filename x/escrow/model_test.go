package escrow

import (
	"testing"

	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/ledgertest"
	"github.com/iov-one/ledger/ledgertest/assert"
)

func TestRecordLayout(t *testing.T) {
	keys := ledgertest.NewKeys(4)
	rec := EscrowRecord{
		IsInitialized:  true,
		Authority:      keys[0],
		SellMint:       keys[1],
		BuyMint:        keys[2],
		SellAmount:     1_000_000,
		BuyAmount:      500_000,
		ReceiveAccount: keys[3],
		Bump:           254,
	}
	raw, err := rec.Marshal()
	assert.Nil(t, err)
	assert.Equal(t, RecordSize, len(raw))
	assert.Equal(t, 146, len(raw))

	assert.Equal(t, byte(1), raw[0])
	assert.Equal(t, keys[0][:], raw[1:33])
	assert.Equal(t, keys[1][:], raw[33:65])
	assert.Equal(t, keys[2][:], raw[65:97])
	assert.Equal(t, []byte{0x40, 0x42, 0x0f, 0, 0, 0, 0, 0}, raw[97:105])
	assert.Equal(t, []byte{0x20, 0xa1, 0x07, 0, 0, 0, 0, 0}, raw[105:113])
	assert.Equal(t, keys[3][:], raw[113:145])
	assert.Equal(t, byte(254), raw[145])

	var got EscrowRecord
	assert.Nil(t, got.Unmarshal(raw))
	assert.Equal(t, rec, got)

	assert.IsErr(t, errors.ErrInput, got.Unmarshal(raw[:RecordSize-1]))
	assert.IsErr(t, errors.ErrInput, got.Unmarshal(append(raw, 0)))
}

func TestRecordValidate(t *testing.T) {
	keys := ledgertest.NewKeys(3)
	valid := func() EscrowRecord {
		return EscrowRecord{
			IsInitialized: true,
			Authority:     keys[0],
			SellMint:      keys[1],
			BuyMint:       keys[2],
			SellAmount:    10,
			BuyAmount:     20,
		}
	}
	cases := map[string]struct {
		mutate    func(r *EscrowRecord)
		wantField string
		wantErr   *errors.Error
	}{
		"valid": {
			mutate: func(r *EscrowRecord) {},
		},
		"not initialized": {
			mutate:    func(r *EscrowRecord) { r.IsInitialized = false },
			wantField: "IsInitialized",
			wantErr:   errors.ErrState,
		},
		"same mints": {
			mutate:    func(r *EscrowRecord) { r.BuyMint = r.SellMint },
			wantField: "BuyMint",
			wantErr:   errors.ErrMintMismatch,
		},
		"zero sell amount": {
			mutate:    func(r *EscrowRecord) { r.SellAmount = 0 },
			wantField: "SellAmount",
			wantErr:   errors.ErrAmount,
		},
		"zero buy amount": {
			mutate:    func(r *EscrowRecord) { r.BuyAmount = 0 },
			wantField: "BuyAmount",
			wantErr:   errors.ErrAmount,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			rec := valid()
			tc.mutate(&rec)
			err := rec.Validate()
			assert.IsErr(t, tc.wantErr, err)
			if tc.wantField != "" {
				assert.FieldError(t, err, tc.wantField, tc.wantErr)
			}
		})
	}
}
