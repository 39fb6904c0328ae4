package ledger

import (
	"bytes"

	bin "github.com/gagliardetto/binary"
	"github.com/iov-one/ledger/errors"
)

// MaxAccountDataLength limits the size of data a single account can hold.
const MaxAccountDataLength = 10 * 1024 * 1024

// Account is the state kept under a single address.
type Account struct {
	// Lamports is the native balance. An account without lamports does not
	// exist and is removed from the store.
	Lamports uint64
	// Owner is the program that is allowed to modify Data and to debit
	// Lamports.
	Owner Pubkey
	// Executable marks accounts holding a program.
	Executable bool
	// Data is opaque to everyone except the owner program.
	Data []byte
}

// Marshal serializes the account using borsh encoding.
func (a *Account) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := bin.NewBorshEncoder(&buf)
	if err := enc.WriteUint64(a.Lamports, bin.LE); err != nil {
		return nil, errors.Wrap(err, "lamports")
	}
	if err := enc.WriteBytes(a.Owner[:], false); err != nil {
		return nil, errors.Wrap(err, "owner")
	}
	if err := enc.WriteBool(a.Executable); err != nil {
		return nil, errors.Wrap(err, "executable")
	}
	if err := enc.WriteUint32(uint32(len(a.Data)), bin.LE); err != nil {
		return nil, errors.Wrap(err, "data length")
	}
	if err := enc.WriteBytes(a.Data, false); err != nil {
		return nil, errors.Wrap(err, "data")
	}
	return buf.Bytes(), nil
}

// Unmarshal loads the account from its borsh serialized form.
func (a *Account) Unmarshal(raw []byte) error {
	dec := bin.NewBorshDecoder(raw)

	lamports, err := dec.ReadUint64(bin.LE)
	if err != nil {
		return errors.Wrap(errors.ErrInput, "lamports")
	}
	owner, err := dec.ReadBytes(PubkeyLength)
	if err != nil {
		return errors.Wrap(errors.ErrInput, "owner")
	}
	executable, err := dec.ReadBool()
	if err != nil {
		return errors.Wrap(errors.ErrInput, "executable")
	}
	size, err := dec.ReadUint32(bin.LE)
	if err != nil {
		return errors.Wrap(errors.ErrInput, "data length")
	}
	if size > MaxAccountDataLength {
		return errors.Wrapf(errors.ErrInput, "data length %d", size)
	}
	data, err := dec.ReadBytes(int(size))
	if err != nil {
		return errors.Wrap(errors.ErrInput, "data")
	}
	if dec.Remaining() != 0 {
		return errors.Wrapf(errors.ErrInput, "%d trailing bytes", dec.Remaining())
	}

	a.Lamports = lamports
	a.Owner = PubkeyFromBytes(owner)
	a.Executable = executable
	a.Data = append([]byte(nil), data...)
	return nil
}

// Validate returns an error if the account cannot be stored.
func (a *Account) Validate() error {
	if len(a.Data) > MaxAccountDataLength {
		return errors.Wrapf(errors.ErrInput, "data length %d", len(a.Data))
	}
	return nil
}

// Clone returns a deep copy of the account.
func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	c := *a
	c.Data = append([]byte(nil), a.Data...)
	return &c
}

// Equal returns true if both accounts hold the same state.
func (a *Account) Equal(b *Account) bool {
	return a.Lamports == b.Lamports &&
		a.Owner == b.Owner &&
		a.Executable == b.Executable &&
		bytes.Equal(a.Data, b.Data)
}

// AccountInfo is an account as seen by a program during an instruction
// execution. Changes made through Account are visible to all programs
// taking part in the same transaction.
type AccountInfo struct {
	Key        Pubkey
	IsSigner   bool
	IsWritable bool
	*Account
}

// IsSystemOwned returns true if the account is not claimed by any program.
func (a *AccountInfo) IsSystemOwned() bool {
	return a.Owner == SystemProgramID
}

// IsUninitialized returns true if the account holds no lamports and no data.
func (a *AccountInfo) IsUninitialized() bool {
	return a.Lamports == 0 && len(a.Data) == 0 && a.IsSystemOwned()
}
