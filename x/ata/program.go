package ata

import (
	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/x/system"
	"github.com/iov-one/ledger/x/token"
)

// Instruction discriminants. Empty instruction data is a Create.
const (
	InstrCreate           uint8 = 0
	InstrCreateIdempotent uint8 = 1
)

// Program implements the associated token account program.
type Program struct{}

var _ ledger.Program = Program{}

// RegisterRoutes registers the associated token account program.
func RegisterRoutes(r ledger.Registry) {
	r.Register(ledger.AssociatedTokenProgramID, Program{})
}

// NewCreateInstruction returns an instruction creating the associated
// token account of wallet for mint, paid by payer.
func NewCreateInstruction(payer, wallet, mint ledger.Pubkey) (ledger.Instruction, error) {
	return newInstruction(InstrCreate, payer, wallet, mint)
}

// NewCreateIdempotentInstruction is NewCreateInstruction that succeeds
// when the account already exists.
func NewCreateIdempotentInstruction(payer, wallet, mint ledger.Pubkey) (ledger.Instruction, error) {
	return newInstruction(InstrCreateIdempotent, payer, wallet, mint)
}

func newInstruction(kind uint8, payer, wallet, mint ledger.Pubkey) (ledger.Instruction, error) {
	addr, err := Address(wallet, mint)
	if err != nil {
		return ledger.Instruction{}, err
	}
	return ledger.Instruction{
		ProgramID: ledger.AssociatedTokenProgramID,
		Accounts: []ledger.AccountMeta{
			ledger.Meta(payer).WRITE().SIGNER(),
			ledger.Meta(addr).WRITE(),
			ledger.Meta(wallet),
			ledger.Meta(mint),
			ledger.Meta(ledger.SystemProgramID),
			ledger.Meta(ledger.TokenProgramID),
		},
		Data: []byte{kind},
	}, nil
}

// Process creates an associated token account.
//
// Accounts: [payer (signer, writable), account (writable), wallet, mint,
// system program, token program]
func (Program) Process(ctx ledger.Context, ic ledger.InvokeContext) error {
	kind := InstrCreate
	switch data := ic.Data(); len(data) {
	case 0:
	case 1:
		kind = data[0]
	default:
		return errors.Wrapf(errors.ErrMalformedInstruction, "%d bytes of instruction data", len(data))
	}
	if kind != InstrCreate && kind != InstrCreateIdempotent {
		return errors.Wrapf(errors.ErrMalformedInstruction, "unknown instruction %d", kind)
	}

	accs := ic.Accounts()
	if len(accs) < 6 {
		return errors.Wrap(errors.ErrNotEnoughAccounts, "create")
	}
	payer, account, wallet, mint := accs[0], accs[1], accs[2], accs[3]
	if accs[4].Key != ledger.SystemProgramID || accs[5].Key != ledger.TokenProgramID {
		return errors.Wrapf(errors.ErrUnknownProgram, "got %s and %s", accs[4].Key, accs[5].Key)
	}

	addr, bump, err := AddressWithBump(wallet.Key, mint.Key)
	if err != nil {
		return err
	}
	if addr != account.Key {
		return errors.Wrapf(errors.ErrInvalidAccountAddress, "associated account is %s, got %s", addr, account.Key)
	}

	if kind == InstrCreateIdempotent && account.Owner == ledger.TokenProgramID {
		ic.Log("Create idempotent")
		existing, err := token.LoadAccount(account)
		if err != nil {
			return err
		}
		if existing.Owner != wallet.Key {
			return errors.Wrapf(errors.ErrInvalidAccountOwner, "token account %s owned by %s", account.Key, existing.Owner)
		}
		if existing.Mint != mint.Key {
			return errors.Wrapf(errors.ErrMintMismatch, "token account %s of mint %s", account.Key, existing.Mint)
		}
		return nil
	}

	ic.Log("Create")
	if !account.IsSystemOwned() {
		return errors.Wrapf(errors.ErrAccountAlreadyInUse, "account %s owned by %s", account.Key, account.Owner)
	}
	signer := append(seeds(wallet.Key, mint.Key), []byte{bump})
	if err := allocate(ctx, ic, payer, account, signer); err != nil {
		return err
	}
	return ic.Invoke(ctx, token.NewInitializeAccount3Instruction(account.Key, mint.Key, wallet.Key))
}

// allocate turns the derived address into a rent exempt account of the
// token program. Lamports sent to the address beforehand are kept.
func allocate(ctx ledger.Context, ic ledger.InvokeContext, payer, account *ledger.AccountInfo, signer [][]byte) error {
	required := ic.Rent().MinimumBalance(token.AccountSize)
	if account.IsUninitialized() {
		ix := system.NewCreateAccountInstruction(payer.Key, account.Key, required, token.AccountSize, ledger.TokenProgramID)
		return ic.Invoke(ctx, ix, signer)
	}

	if account.Lamports < required {
		ix := system.NewTransferInstruction(payer.Key, account.Key, required-account.Lamports)
		if err := ic.Invoke(ctx, ix); err != nil {
			return err
		}
	}
	if err := ic.Invoke(ctx, system.NewAllocateInstruction(account.Key, token.AccountSize), signer); err != nil {
		return err
	}
	return ic.Invoke(ctx, system.NewAssignInstruction(account.Key, ledger.TokenProgramID), signer)
}
