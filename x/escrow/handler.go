package escrow

import (
	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/x/token"
)

// DefaultProgramID is the address the escrow program is registered at
// unless configured otherwise.
var DefaultProgramID = ledger.MustParsePubkey("E2foSfEqmY3aJnofMzBHTWqZApVuYU4FDzo88umderTG")

// RegisterRoutes registers the escrow program at programID.
func RegisterRoutes(r ledger.Registry, programID ledger.Pubkey) {
	r.Register(programID, NewProcessor(programID))
}

// Processor executes escrow instructions.
type Processor struct {
	programID ledger.Pubkey
	store     Store
}

var _ ledger.Program = Processor{}

// NewProcessor returns the escrow program deployed at programID.
func NewProcessor(programID ledger.Pubkey) Processor {
	return Processor{programID: programID, store: NewStore(programID)}
}

// Process decodes and executes a single escrow instruction.
func (p Processor) Process(ctx ledger.Context, ic ledger.InvokeContext) error {
	if ic.ProgramID() != p.programID {
		return errors.Wrapf(errors.ErrUnknownProgram, "escrow program is %s, called as %s", p.programID, ic.ProgramID())
	}
	ix, err := Decode(ic.Data())
	if err != nil {
		return err
	}
	ic.Log("Instruction: %s", ix.Kind)

	switch ix.Kind {
	case InitEscrow:
		a, err := parseInitEscrowAccounts(ic.Accounts())
		if err != nil {
			return err
		}
		return p.initEscrow(ctx, ic, a, ix)
	case Exchange:
		a, err := parseExchangeAccounts(ic.Accounts())
		if err != nil {
			return err
		}
		return p.exchange(ctx, ic, a, ix)
	case Cancel:
		a, err := parseCancelAccounts(ic.Accounts())
		if err != nil {
			return err
		}
		return p.cancel(ctx, ic, a, ix)
	default:
		return errors.Wrapf(errors.ErrMalformedInstruction, "unknown instruction %d", ix.Kind)
	}
}

func (p Processor) initEscrow(ctx ledger.Context, ic ledger.InvokeContext, a *InitEscrowAccounts, ix *Instruction) error {
	rec, err := p.validateInitEscrow(a, ix)
	if err != nil {
		return err
	}

	ic.Log("Calling the system program to create the escrow record")
	if err := p.store.Create(ctx, ic, a.Authority, a.Record, rec); err != nil {
		return err
	}

	v, err := newVault(a.Vault, a.SellMint, a.Record.Key, rec)
	if err != nil {
		return err
	}
	ic.Log("Calling the associated token program to open the vault")
	if err := v.Open(ctx, ic, a.Authority); err != nil {
		return err
	}
	ic.Log("Calling the token program to lock %d tokens", ix.SellAmount)
	if err := v.Fund(ctx, ic, a.AuthoritySellAccount, a.Authority, ix.SellAmount); err != nil {
		return err
	}

	ledger.GetLogger(ctx).Debug("escrow opened",
		"record", a.Record.Key.String(),
		"authority", rec.Authority.String(),
		"sell", ix.SellAmount,
		"buy", ix.BuyAmount)
	return nil
}

func (p Processor) exchange(ctx ledger.Context, ic ledger.InvokeContext, a *ExchangeAccounts, ix *Instruction) error {
	rec, locked, err := p.validateExchange(a, ix)
	if err != nil {
		return err
	}
	buyMint, err := token.LoadMint(a.BuyMint)
	if err != nil {
		return err
	}
	v, err := newVault(a.Vault, a.SellMint, a.Record.Key, rec)
	if err != nil {
		return err
	}

	ic.Log("Calling the token program to pay the authority")
	pay := token.NewTransferCheckedInstruction(a.TakerSellAccount.Key, a.BuyMint.Key, a.AuthorityBuyAccount.Key,
		a.Taker.Key, rec.BuyAmount, buyMint.Decimals)
	if err := ic.Invoke(ctx, pay); err != nil {
		return errors.Wrap(err, "pay authority")
	}
	ic.Log("Calling the token program to release the vault to the taker")
	if err := v.Release(ctx, ic, a.TakerBuyAccount, locked.Amount); err != nil {
		return err
	}
	if err := p.closeEscrow(ctx, ic, v, a.Record, a.Authority); err != nil {
		return err
	}

	ledger.GetLogger(ctx).Debug("escrow settled",
		"record", a.Record.Key.String(),
		"taker", a.Taker.Key.String(),
		"released", locked.Amount)
	return nil
}

func (p Processor) cancel(ctx ledger.Context, ic ledger.InvokeContext, a *CancelAccounts, ix *Instruction) error {
	rec, locked, err := p.validateCancel(a, ix)
	if err != nil {
		return err
	}
	v, err := newVault(a.Vault, a.SellMint, a.Record.Key, rec)
	if err != nil {
		return err
	}

	ic.Log("Calling the token program to refund the authority")
	if err := v.Release(ctx, ic, a.AuthoritySellAccount, locked.Amount); err != nil {
		return err
	}
	if err := p.closeEscrow(ctx, ic, v, a.Record, a.Authority); err != nil {
		return err
	}

	ledger.GetLogger(ctx).Debug("escrow cancelled",
		"record", a.Record.Key.String(),
		"refunded", locked.Amount)
	return nil
}

// closeEscrow closes the vault and then the record, both deposits going to
// the authority.
func (p Processor) closeEscrow(ctx ledger.Context, ic ledger.InvokeContext, v *vault, record, authority *ledger.AccountInfo) error {
	ic.Log("Calling the token program to close the vault")
	if _, err := v.Close(ctx, ic, authority); err != nil {
		return err
	}
	ic.Log("Closing the escrow record")
	if _, err := p.store.Close(record, authority); err != nil {
		return err
	}
	return nil
}
