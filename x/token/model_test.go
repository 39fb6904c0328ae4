package token

import (
	"testing"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/ledgertest"
	"github.com/iov-one/ledger/ledgertest/assert"
)

func TestMintLayout(t *testing.T) {
	authority := ledgertest.NewKey()
	m := Mint{MintAuthority: &authority, Supply: 1 << 40, Decimals: 6, IsInitialized: true}
	raw, err := m.Marshal()
	assert.Nil(t, err)
	assert.Equal(t, MintSize, len(raw))
	assert.Equal(t, []byte{1, 0, 0, 0}, raw[:4])
	assert.Equal(t, authority[:], raw[4:36])
	assert.Equal(t, byte(6), raw[44])
	assert.Equal(t, byte(1), raw[45])

	var got Mint
	assert.Nil(t, got.Unmarshal(raw))
	assert.Equal(t, m, got)

	assert.IsErr(t, errors.ErrInput, got.Unmarshal(raw[:MintSize-1]))
	raw[0] = 2
	assert.IsErr(t, errors.ErrInput, got.Unmarshal(raw))
}

func TestTokenAccountLayout(t *testing.T) {
	keys := ledgertest.NewKeys(2)
	a := TokenAccount{Mint: keys[0], Owner: keys[1], Amount: 500_000, State: Initialized}
	raw, err := a.Marshal()
	assert.Nil(t, err)
	assert.Equal(t, AccountSize, len(raw))
	assert.Equal(t, keys[0][:], raw[:32])
	assert.Equal(t, keys[1][:], raw[32:64])
	assert.Equal(t, []byte{0x20, 0xa1, 0x07, 0, 0, 0, 0, 0}, raw[64:72])
	assert.Equal(t, byte(Initialized), raw[108])

	var got TokenAccount
	assert.Nil(t, got.Unmarshal(raw))
	assert.Equal(t, a, got)

	// a zeroed buffer is an uninitialized account
	assert.Nil(t, got.Unmarshal(make([]byte, AccountSize)))
	assert.Equal(t, Uninitialized, got.State)

	raw[108] = 7
	assert.IsErr(t, errors.ErrInput, got.Unmarshal(raw))
}

func TestLoadAccountOwner(t *testing.T) {
	raw, err := (&TokenAccount{State: Initialized}).Marshal()
	assert.Nil(t, err)
	info := &ledger.AccountInfo{
		Key:     ledgertest.NewKey(),
		Account: &ledger.Account{Lamports: 1, Owner: ledgertest.NewKey(), Data: raw},
	}
	_, err = LoadAccount(info)
	assert.IsErr(t, errors.ErrInvalidAccountOwner, err)

	info.Owner = ledger.TokenProgramID
	_, err = LoadAccount(info)
	assert.Nil(t, err)

	info.Data = make([]byte, AccountSize)
	_, err = LoadAccount(info)
	assert.IsErr(t, errors.ErrState, err)
}
