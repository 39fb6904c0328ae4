package system

import (
	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
)

// Program implements the system program.
type Program struct{}

var _ ledger.Program = Program{}

// RegisterRoutes registers the system program.
func RegisterRoutes(r ledger.Registry) {
	r.Register(ledger.SystemProgramID, Program{})
}

// Process executes a system instruction.
func (p Program) Process(ctx ledger.Context, ic ledger.InvokeContext) error {
	ix, err := decode(ic.Data())
	if err != nil {
		return err
	}
	accs := ic.Accounts()

	switch ix := ix.(type) {
	case *CreateAccount:
		if len(accs) < 2 {
			return errors.Wrap(errors.ErrNotEnoughAccounts, "create account")
		}
		return createAccount(accs[0], accs[1], ix)
	case *Assign:
		if len(accs) < 1 {
			return errors.Wrap(errors.ErrNotEnoughAccounts, "assign")
		}
		return assign(accs[0], ix.Owner)
	case *Transfer:
		if len(accs) < 2 {
			return errors.Wrap(errors.ErrNotEnoughAccounts, "transfer")
		}
		return transfer(accs[0], accs[1], ix.Lamports)
	case *Allocate:
		if len(accs) < 1 {
			return errors.Wrap(errors.ErrNotEnoughAccounts, "allocate")
		}
		return allocate(accs[0], ix.Space)
	default:
		return errors.Wrapf(errors.ErrMalformedInstruction, "%T", ix)
	}
}

func createAccount(funder, account *ledger.AccountInfo, ix *CreateAccount) error {
	if account.Lamports > 0 {
		return errors.Wrapf(errors.ErrAccountAlreadyInUse, "account %s holds lamports", account.Key)
	}
	if err := allocate(account, ix.Space); err != nil {
		return err
	}
	if err := assign(account, ix.Owner); err != nil {
		return err
	}
	return transfer(funder, account, ix.Lamports)
}

func assign(account *ledger.AccountInfo, owner ledger.Pubkey) error {
	if account.Owner == owner {
		return nil
	}
	if !account.IsSigner {
		return errors.Wrapf(errors.ErrMissingSignature, "assign %s", account.Key)
	}
	if !account.IsSystemOwned() {
		return errors.Wrapf(errors.ErrInvalidAccountOwner, "account %s owned by %s", account.Key, account.Owner)
	}
	account.Owner = owner
	return nil
}

func allocate(account *ledger.AccountInfo, space uint64) error {
	if !account.IsSigner {
		return errors.Wrapf(errors.ErrMissingSignature, "allocate %s", account.Key)
	}
	if len(account.Data) > 0 || !account.IsSystemOwned() {
		return errors.Wrapf(errors.ErrAccountAlreadyInUse, "account %s already in use", account.Key)
	}
	if space > ledger.MaxAccountDataLength {
		return errors.Wrapf(errors.ErrInput, "space %d exceeds %d", space, ledger.MaxAccountDataLength)
	}
	account.Data = make([]byte, space)
	return nil
}

func transfer(from, to *ledger.AccountInfo, lamports uint64) error {
	if !from.IsSigner {
		return errors.Wrapf(errors.ErrMissingSignature, "transfer from %s", from.Key)
	}
	if len(from.Data) > 0 {
		return errors.Wrapf(errors.ErrInput, "transfer from %s: account carries data", from.Key)
	}
	if from.Lamports < lamports {
		return errors.Wrapf(errors.ErrInsufficientBalance, "%s holds %d, requires %d", from.Key, from.Lamports, lamports)
	}
	if to.Lamports+lamports < to.Lamports {
		return errors.Wrapf(errors.ErrOverflow, "credit %s", to.Key)
	}
	from.Lamports -= lamports
	to.Lamports += lamports
	return nil
}
