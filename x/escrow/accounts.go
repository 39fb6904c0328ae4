package escrow

import (
	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
)

// InitEscrowAccounts are the accounts of an InitEscrow instruction, in
// order.
type InitEscrowAccounts struct {
	SellMint *ledger.AccountInfo
	BuyMint  *ledger.AccountInfo
	// Authority signs and pays for the record and the vault.
	Authority            *ledger.AccountInfo
	AuthoritySellAccount *ledger.AccountInfo
	AuthorityBuyAccount  *ledger.AccountInfo
	Record               *ledger.AccountInfo
	Vault                *ledger.AccountInfo
	RentSysvar           *ledger.AccountInfo
	SystemProgram        *ledger.AccountInfo
	TokenProgram         *ledger.AccountInfo
	AssociatedProgram    *ledger.AccountInfo
}

// ExchangeAccounts are the accounts of an Exchange instruction, in order.
type ExchangeAccounts struct {
	Authority *ledger.AccountInfo
	Taker     *ledger.AccountInfo
	BuyMint   *ledger.AccountInfo
	SellMint  *ledger.AccountInfo
	// TakerSellAccount pays the buy amount, it holds the buy mint.
	TakerSellAccount *ledger.AccountInfo
	// TakerBuyAccount receives the vault, it holds the sell mint.
	TakerBuyAccount     *ledger.AccountInfo
	AuthorityBuyAccount *ledger.AccountInfo
	Record              *ledger.AccountInfo
	Vault               *ledger.AccountInfo
	TokenProgram        *ledger.AccountInfo
}

// CancelAccounts are the accounts of a Cancel instruction, in order.
type CancelAccounts struct {
	Authority            *ledger.AccountInfo
	SellMint             *ledger.AccountInfo
	AuthoritySellAccount *ledger.AccountInfo
	Record               *ledger.AccountInfo
	Vault                *ledger.AccountInfo
	TokenProgram         *ledger.AccountInfo
}

// accountList fills the given pointers in order, failing if fewer
// accounts were provided.
func accountList(accs []*ledger.AccountInfo, kind Kind, dst ...**ledger.AccountInfo) error {
	if len(accs) < len(dst) {
		return errors.Wrapf(errors.ErrNotEnoughAccounts, "%s requires %d accounts, got %d", kind, len(dst), len(accs))
	}
	for i, d := range dst {
		*d = accs[i]
	}
	return nil
}

func parseInitEscrowAccounts(accs []*ledger.AccountInfo) (*InitEscrowAccounts, error) {
	var a InitEscrowAccounts
	err := accountList(accs, InitEscrow,
		&a.SellMint, &a.BuyMint, &a.Authority, &a.AuthoritySellAccount, &a.AuthorityBuyAccount,
		&a.Record, &a.Vault, &a.RentSysvar, &a.SystemProgram, &a.TokenProgram, &a.AssociatedProgram)
	return &a, err
}

func parseExchangeAccounts(accs []*ledger.AccountInfo) (*ExchangeAccounts, error) {
	var a ExchangeAccounts
	err := accountList(accs, Exchange,
		&a.Authority, &a.Taker, &a.BuyMint, &a.SellMint, &a.TakerSellAccount, &a.TakerBuyAccount,
		&a.AuthorityBuyAccount, &a.Record, &a.Vault, &a.TokenProgram)
	return &a, err
}

func parseCancelAccounts(accs []*ledger.AccountInfo) (*CancelAccounts, error) {
	var a CancelAccounts
	err := accountList(accs, Cancel,
		&a.Authority, &a.SellMint, &a.AuthoritySellAccount, &a.Record, &a.Vault, &a.TokenProgram)
	return &a, err
}
