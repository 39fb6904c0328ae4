package escrow

import (
	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/x/token"
)

func checkProgram(info *ledger.AccountInfo, id ledger.Pubkey) error {
	if info.Key != id {
		return errors.Wrapf(errors.ErrUnknownProgram, "expected %s, got %s", id, info.Key)
	}
	return nil
}

// checkTokenAccount loads a token account of mint. Owner is checked when
// not nil.
func checkTokenAccount(info *ledger.AccountInfo, mint ledger.Pubkey, owner *ledger.Pubkey) (*token.TokenAccount, error) {
	acc, err := token.LoadAccount(info)
	if err != nil {
		return nil, err
	}
	if acc.Mint != mint {
		return nil, errors.Wrapf(errors.ErrMintMismatch, "token account %s holds %s, expected %s", info.Key, acc.Mint, mint)
	}
	if owner != nil && acc.Owner != *owner {
		return nil, errors.Wrapf(errors.ErrInvalidAccountOwner, "token account %s belongs to %s, expected %s", info.Key, acc.Owner, *owner)
	}
	return acc, nil
}

// validateVault ensures info is the vault of the record for sellMint.
func validateVault(info *ledger.AccountInfo, record, sellMint ledger.Pubkey) (*token.TokenAccount, error) {
	want, err := VaultAddress(record, sellMint)
	if err != nil {
		return nil, err
	}
	if info.Key != want {
		return nil, errors.Wrapf(errors.ErrInvalidAccountAddress, "vault is %s, got %s", want, info.Key)
	}
	acc, err := token.LoadAccount(info)
	if err != nil {
		return nil, err
	}
	if acc.Owner != record {
		return nil, errors.Wrapf(errors.ErrInvalidVaultAuthority, "vault %s belongs to %s", info.Key, acc.Owner)
	}
	if acc.CloseAuthority != nil && *acc.CloseAuthority != record {
		return nil, errors.Wrapf(errors.ErrInvalidVaultAuthority, "vault %s closable by %s", info.Key, *acc.CloseAuthority)
	}
	if acc.Mint != sellMint {
		return nil, errors.Wrapf(errors.ErrMintMismatch, "vault %s holds %s", info.Key, acc.Mint)
	}
	return acc, nil
}

// validateInitEscrow checks the accounts of a new escrow and returns the
// record to create.
func (p Processor) validateInitEscrow(a *InitEscrowAccounts, ix *Instruction) (*EscrowRecord, error) {
	if !a.Authority.IsSigner {
		return nil, errors.Wrapf(errors.ErrMissingSignature, "authority %s", a.Authority.Key)
	}
	if a.RentSysvar.Key != ledger.RentSysvarID {
		return nil, errors.Wrapf(errors.ErrInvalidAccountAddress, "rent sysvar is %s, got %s", ledger.RentSysvarID, a.RentSysvar.Key)
	}
	if err := checkProgram(a.SystemProgram, ledger.SystemProgramID); err != nil {
		return nil, err
	}
	if err := checkProgram(a.TokenProgram, ledger.TokenProgramID); err != nil {
		return nil, err
	}
	if err := checkProgram(a.AssociatedProgram, ledger.AssociatedTokenProgramID); err != nil {
		return nil, err
	}
	if _, err := token.LoadMint(a.SellMint); err != nil {
		return nil, errors.Wrap(err, "sell mint")
	}
	if _, err := token.LoadMint(a.BuyMint); err != nil {
		return nil, errors.Wrap(err, "buy mint")
	}

	addr, bump, err := RecordAddress(p.programID, a.Authority.Key, a.SellMint.Key)
	if err != nil {
		return nil, err
	}
	if addr != a.Record.Key {
		return nil, errors.Wrapf(errors.ErrInvalidAccountAddress, "record is %s, got %s", addr, a.Record.Key)
	}
	if a.Record.Owner == p.programID {
		return nil, errors.Wrapf(errors.ErrRecordAlreadyExists, "record %s", addr)
	}
	vaultAddr, err := VaultAddress(addr, a.SellMint.Key)
	if err != nil {
		return nil, err
	}
	if vaultAddr != a.Vault.Key {
		return nil, errors.Wrapf(errors.ErrInvalidAccountAddress, "vault is %s, got %s", vaultAddr, a.Vault.Key)
	}

	if _, err := checkTokenAccount(a.AuthoritySellAccount, a.SellMint.Key, &a.Authority.Key); err != nil {
		return nil, errors.Wrap(err, "authority sell account")
	}
	if _, err := checkTokenAccount(a.AuthorityBuyAccount, a.BuyMint.Key, &a.Authority.Key); err != nil {
		return nil, errors.Wrap(err, "authority buy account")
	}

	rec := &EscrowRecord{
		IsInitialized:  true,
		Authority:      a.Authority.Key,
		SellMint:       a.SellMint.Key,
		BuyMint:        a.BuyMint.Key,
		SellAmount:     ix.SellAmount,
		BuyAmount:      ix.BuyAmount,
		ReceiveAccount: a.AuthorityBuyAccount.Key,
		Bump:           bump,
	}
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	return rec, nil
}

// validateOpen loads the record of an open escrow and checks that the
// supplied accounts and terms match it. It returns the record and the
// vault state.
func (p Processor) validateOpen(authority, sellMint, record, vaultInfo *ledger.AccountInfo, ix *Instruction) (*EscrowRecord, *token.TokenAccount, error) {
	rec, err := p.store.Load(record)
	if err != nil {
		return nil, nil, err
	}
	if rec.Authority != authority.Key {
		return nil, nil, errors.Wrapf(errors.ErrInvalidAccountAddress, "escrow authority is %s, got %s", rec.Authority, authority.Key)
	}
	if err := VerifyRecordAddress(p.programID, rec.Authority, rec.SellMint, rec.Bump, record.Key); err != nil {
		return nil, nil, err
	}
	if rec.SellMint != sellMint.Key {
		return nil, nil, errors.Wrapf(errors.ErrMintMismatch, "escrow sells %s, got %s", rec.SellMint, sellMint.Key)
	}
	if ix.SellAmount != rec.SellAmount || ix.BuyAmount != rec.BuyAmount {
		return nil, nil, errors.Wrapf(errors.ErrTermsMismatch, "escrow terms are %d for %d, got %d for %d",
			rec.SellAmount, rec.BuyAmount, ix.SellAmount, ix.BuyAmount)
	}
	locked, err := validateVault(vaultInfo, record.Key, rec.SellMint)
	if err != nil {
		return nil, nil, err
	}
	return rec, locked, nil
}

func (p Processor) validateExchange(a *ExchangeAccounts, ix *Instruction) (*EscrowRecord, *token.TokenAccount, error) {
	if !a.Taker.IsSigner {
		return nil, nil, errors.Wrapf(errors.ErrMissingSignature, "taker %s", a.Taker.Key)
	}
	if err := checkProgram(a.TokenProgram, ledger.TokenProgramID); err != nil {
		return nil, nil, err
	}
	rec, locked, err := p.validateOpen(a.Authority, a.SellMint, a.Record, a.Vault, ix)
	if err != nil {
		return nil, nil, err
	}
	if rec.BuyMint != a.BuyMint.Key {
		return nil, nil, errors.Wrapf(errors.ErrMintMismatch, "escrow buys %s, got %s", rec.BuyMint, a.BuyMint.Key)
	}
	if rec.ReceiveAccount != a.AuthorityBuyAccount.Key {
		return nil, nil, errors.Wrapf(errors.ErrInvalidAccountAddress, "escrow pays %s, got %s", rec.ReceiveAccount, a.AuthorityBuyAccount.Key)
	}
	if _, err := checkTokenAccount(a.AuthorityBuyAccount, rec.BuyMint, &rec.Authority); err != nil {
		return nil, nil, errors.Wrap(err, "authority buy account")
	}
	pay, err := checkTokenAccount(a.TakerSellAccount, rec.BuyMint, &a.Taker.Key)
	if err != nil {
		return nil, nil, errors.Wrap(err, "taker sell account")
	}
	if a.TakerBuyAccount.Key == a.Vault.Key {
		return nil, nil, errors.Wrapf(errors.ErrInvalidAccountAddress, "taker buy account %s is the vault", a.Vault.Key)
	}
	if _, err := checkTokenAccount(a.TakerBuyAccount, rec.SellMint, nil); err != nil {
		return nil, nil, errors.Wrap(err, "taker buy account")
	}
	if pay.Amount < rec.BuyAmount {
		return nil, nil, errors.Wrapf(errors.ErrInsufficientBalance, "taker holds %d, requires %d", pay.Amount, rec.BuyAmount)
	}
	return rec, locked, nil
}

func (p Processor) validateCancel(a *CancelAccounts, ix *Instruction) (*EscrowRecord, *token.TokenAccount, error) {
	if !a.Authority.IsSigner {
		return nil, nil, errors.Wrapf(errors.ErrMissingSignature, "authority %s", a.Authority.Key)
	}
	if err := checkProgram(a.TokenProgram, ledger.TokenProgramID); err != nil {
		return nil, nil, err
	}
	rec, locked, err := p.validateOpen(a.Authority, a.SellMint, a.Record, a.Vault, ix)
	if err != nil {
		return nil, nil, err
	}
	if _, err := checkTokenAccount(a.AuthoritySellAccount, rec.SellMint, &rec.Authority); err != nil {
		return nil, nil, errors.Wrap(err, "authority sell account")
	}
	return rec, locked, nil
}
