package token

import (
	"bytes"

	bin "github.com/gagliardetto/binary"
	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
)

const (
	// MintSize is the encoded length of a Mint.
	MintSize = 82
	// AccountSize is the encoded length of a TokenAccount.
	AccountSize = 165
)

// AccountState of a token account.
type AccountState uint8

const (
	Uninitialized AccountState = iota
	Initialized
	Frozen
)

// Mint describes a token type.
type Mint struct {
	// MintAuthority may mint new tokens. Nil if the supply is fixed.
	MintAuthority   *ledger.Pubkey
	Supply          uint64
	Decimals        uint8
	IsInitialized   bool
	FreezeAuthority *ledger.Pubkey
}

// TokenAccount holds a balance of a single mint.
type TokenAccount struct {
	Mint   ledger.Pubkey
	Owner  ledger.Pubkey
	Amount uint64
	State  AccountState
	// CloseAuthority may close the account instead of the owner.
	CloseAuthority *ledger.Pubkey
}

func (m *Mint) MarshalWithEncoder(enc *bin.Encoder) error {
	if err := writeOption(enc, m.MintAuthority); err != nil {
		return err
	}
	if err := enc.WriteUint64(m.Supply, bin.LE); err != nil {
		return err
	}
	if err := enc.WriteUint8(m.Decimals); err != nil {
		return err
	}
	if err := enc.WriteBool(m.IsInitialized); err != nil {
		return err
	}
	return writeOption(enc, m.FreezeAuthority)
}

func (m *Mint) UnmarshalWithDecoder(dec *bin.Decoder) (err error) {
	if m.MintAuthority, err = readOption(dec); err != nil {
		return err
	}
	if m.Supply, err = dec.ReadUint64(bin.LE); err != nil {
		return err
	}
	if m.Decimals, err = dec.ReadUint8(); err != nil {
		return err
	}
	if m.IsInitialized, err = dec.ReadBool(); err != nil {
		return err
	}
	m.FreezeAuthority, err = readOption(dec)
	return err
}

// Marshal returns the MintSize long encoding.
func (m *Mint) Marshal() ([]byte, error) {
	return marshal(m)
}

// Unmarshal decodes a mint. The input must be exactly MintSize long.
func (m *Mint) Unmarshal(raw []byte) error {
	if len(raw) != MintSize {
		return errors.Wrapf(errors.ErrInput, "mint of %d bytes", len(raw))
	}
	if err := m.UnmarshalWithDecoder(bin.NewBinDecoder(raw)); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	return nil
}

func (a *TokenAccount) MarshalWithEncoder(enc *bin.Encoder) error {
	if err := enc.WriteBytes(a.Mint[:], false); err != nil {
		return err
	}
	if err := enc.WriteBytes(a.Owner[:], false); err != nil {
		return err
	}
	if err := enc.WriteUint64(a.Amount, bin.LE); err != nil {
		return err
	}
	// delegate
	if err := writeOption(enc, nil); err != nil {
		return err
	}
	if err := enc.WriteUint8(uint8(a.State)); err != nil {
		return err
	}
	// is_native option and delegated amount
	if err := enc.WriteBytes(make([]byte, 4+8+8), false); err != nil {
		return err
	}
	return writeOption(enc, a.CloseAuthority)
}

func (a *TokenAccount) UnmarshalWithDecoder(dec *bin.Decoder) (err error) {
	if a.Mint, err = readPubkey(dec); err != nil {
		return err
	}
	if a.Owner, err = readPubkey(dec); err != nil {
		return err
	}
	if a.Amount, err = dec.ReadUint64(bin.LE); err != nil {
		return err
	}
	delegate, err := readOption(dec)
	if err != nil {
		return err
	}
	if delegate != nil {
		return errors.Wrap(errors.ErrInput, "delegated accounts are not supported")
	}
	state, err := dec.ReadUint8()
	if err != nil {
		return err
	}
	if state > uint8(Frozen) {
		return errors.Wrapf(errors.ErrInput, "account state %d", state)
	}
	a.State = AccountState(state)
	native, err := dec.ReadBytes(4 + 8 + 8)
	if err != nil {
		return err
	}
	if !bytes.Equal(native, make([]byte, len(native))) {
		return errors.Wrap(errors.ErrInput, "native accounts are not supported")
	}
	a.CloseAuthority, err = readOption(dec)
	return err
}

// Marshal returns the AccountSize long encoding.
func (a *TokenAccount) Marshal() ([]byte, error) {
	return marshal(a)
}

// Unmarshal decodes a token account. The input must be exactly AccountSize
// long.
func (a *TokenAccount) Unmarshal(raw []byte) error {
	if len(raw) != AccountSize {
		return errors.Wrapf(errors.ErrInput, "token account of %d bytes", len(raw))
	}
	if err := a.UnmarshalWithDecoder(bin.NewBinDecoder(raw)); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	return nil
}

func marshal(m bin.BinaryMarshaler) ([]byte, error) {
	var buf bytes.Buffer
	if err := m.MarshalWithEncoder(bin.NewBinEncoder(&buf)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeOption writes a C style optional key: a u32 tag followed by the key,
// zeroed when absent.
func writeOption(enc *bin.Encoder, key *ledger.Pubkey) error {
	var tag uint32
	var raw ledger.Pubkey
	if key != nil {
		tag, raw = 1, *key
	}
	if err := enc.WriteUint32(tag, bin.LE); err != nil {
		return err
	}
	return enc.WriteBytes(raw[:], false)
}

func readOption(dec *bin.Decoder) (*ledger.Pubkey, error) {
	tag, err := dec.ReadUint32(bin.LE)
	if err != nil {
		return nil, err
	}
	key, err := readPubkey(dec)
	if err != nil {
		return nil, err
	}
	switch tag {
	case 0:
		return nil, nil
	case 1:
		return &key, nil
	default:
		return nil, errors.Wrapf(errors.ErrInput, "option tag %d", tag)
	}
}

func readPubkey(dec *bin.Decoder) (ledger.Pubkey, error) {
	b, err := dec.ReadBytes(ledger.PubkeyLength)
	if err != nil {
		return ledger.Pubkey{}, err
	}
	return ledger.PubkeyFromBytes(b), nil
}

// LoadMint decodes a mint account owned by the token program.
func LoadMint(info *ledger.AccountInfo) (*Mint, error) {
	if info.Owner != ledger.TokenProgramID {
		return nil, errors.Wrapf(errors.ErrInvalidAccountOwner, "mint %s owned by %s", info.Key, info.Owner)
	}
	var m Mint
	if err := m.Unmarshal(info.Data); err != nil {
		return nil, errors.Wrapf(err, "mint %s", info.Key)
	}
	if !m.IsInitialized {
		return nil, errors.Wrapf(errors.ErrState, "mint %s not initialized", info.Key)
	}
	return &m, nil
}

// LoadAccount decodes an initialized token account owned by the token
// program.
func LoadAccount(info *ledger.AccountInfo) (*TokenAccount, error) {
	if info.Owner != ledger.TokenProgramID {
		return nil, errors.Wrapf(errors.ErrInvalidAccountOwner, "token account %s owned by %s", info.Key, info.Owner)
	}
	var a TokenAccount
	if err := a.Unmarshal(info.Data); err != nil {
		return nil, errors.Wrapf(err, "token account %s", info.Key)
	}
	if a.State == Uninitialized {
		return nil, errors.Wrapf(errors.ErrState, "token account %s not initialized", info.Key)
	}
	return &a, nil
}

// save encodes m into the data of info, which must already be allocated.
func save(info *ledger.AccountInfo, m bin.BinaryMarshaler) error {
	raw, err := marshal(m)
	if err != nil {
		return err
	}
	if len(raw) != len(info.Data) {
		return errors.Wrapf(errors.ErrState, "account %s holds %d bytes, requires %d", info.Key, len(info.Data), len(raw))
	}
	copy(info.Data, raw)
	return nil
}
