package ledger

import (
	"encoding/json"

	"github.com/iov-one/ledger/errors"
)

// MaxInstructionAccounts is the maximum number of accounts a single
// instruction can reference.
const MaxInstructionAccounts = 255

// AccountMeta references an account used by an instruction together with
// the privileges requested for it.
type AccountMeta struct {
	Pubkey     Pubkey `json:"pubkey"`
	IsWritable bool   `json:"is_writable"`
	IsSigner   bool   `json:"is_signer"`
}

// NewAccountMeta returns an account reference with given privileges.
func NewAccountMeta(key Pubkey, writable, signer bool) AccountMeta {
	return AccountMeta{Pubkey: key, IsWritable: writable, IsSigner: signer}
}

// Meta returns a read only, non signer reference to given account. Use
// WRITE and SIGNER to request more privileges.
func Meta(key Pubkey) AccountMeta {
	return AccountMeta{Pubkey: key}
}

// WRITE marks the account writable.
func (m AccountMeta) WRITE() AccountMeta {
	m.IsWritable = true
	return m
}

// SIGNER marks the account as a signer.
func (m AccountMeta) SIGNER() AccountMeta {
	m.IsSigner = true
	return m
}

// Instruction is a single call to a program.
type Instruction struct {
	ProgramID Pubkey        `json:"program_id"`
	Accounts  []AccountMeta `json:"accounts"`
	Data      []byte        `json:"data"`
}

// Validate returns an error if the instruction is malformed.
func (ix *Instruction) Validate() error {
	if n := len(ix.Accounts); n > MaxInstructionAccounts {
		return errors.Field("Accounts", errors.ErrInput, "%d accounts, max %d", n, MaxInstructionAccounts)
	}
	return nil
}

// Tx is a list of instructions executed atomically. Either all
// instructions succeed and their changes are applied or none of them is.
type Tx struct {
	// Signers lists accounts that authorized this transaction.
	Signers      []Pubkey      `json:"signers"`
	Instructions []Instruction `json:"instructions"`
}

// NewTx returns a transaction signed by given keys.
func NewTx(signers []Pubkey, instructions ...Instruction) *Tx {
	return &Tx{Signers: signers, Instructions: instructions}
}

// IsSigner returns true if given key authorized the transaction.
func (tx *Tx) IsSigner(key Pubkey) bool {
	for _, s := range tx.Signers {
		if s == key {
			return true
		}
	}
	return false
}

// Validate returns an error if the transaction cannot be executed.
func (tx *Tx) Validate() error {
	var errs error
	if len(tx.Instructions) == 0 {
		errs = errors.AppendField(errs, "Instructions", errors.ErrEmpty)
	}
	seen := make(map[Pubkey]struct{}, len(tx.Signers))
	for _, s := range tx.Signers {
		if _, ok := seen[s]; ok {
			errs = errors.Append(errs, errors.Field("Signers", errors.ErrDuplicate, "signer %s", s))
		}
		seen[s] = struct{}{}
	}
	for i := range tx.Instructions {
		errs = errors.Append(errs, tx.Instructions[i].Validate())
	}
	return errs
}

// Marshal serializes the transaction. JSON is used so that transactions
// can be written and inspected by hand.
func (tx *Tx) Marshal() ([]byte, error) {
	return json.Marshal(tx)
}

// Unmarshal loads a transaction serialized with Marshal.
func (tx *Tx) Unmarshal(raw []byte) error {
	if err := json.Unmarshal(raw, tx); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	return nil
}
