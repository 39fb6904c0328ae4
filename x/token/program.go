package token

import (
	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
)

// Program implements the token program.
type Program struct{}

var _ ledger.Program = Program{}

// RegisterRoutes registers the token program.
func RegisterRoutes(r ledger.Registry) {
	r.Register(ledger.TokenProgramID, Program{})
}

// Process executes a token instruction.
func (Program) Process(ctx ledger.Context, ic ledger.InvokeContext) error {
	ix, err := decode(ic.Data())
	if err != nil {
		return err
	}
	accs := ic.Accounts()

	switch ix := ix.(type) {
	case *Transfer:
		ic.Log("Instruction: Transfer")
		if len(accs) < 3 {
			return errors.Wrap(errors.ErrNotEnoughAccounts, "transfer")
		}
		return transfer(accs[0], nil, accs[1], accs[2], ix.Amount, 0)
	case *TransferChecked:
		ic.Log("Instruction: TransferChecked")
		if len(accs) < 4 {
			return errors.Wrap(errors.ErrNotEnoughAccounts, "transfer checked")
		}
		return transfer(accs[0], accs[1], accs[2], accs[3], ix.Amount, ix.Decimals)
	case *MintTo:
		ic.Log("Instruction: MintTo")
		if len(accs) < 3 {
			return errors.Wrap(errors.ErrNotEnoughAccounts, "mint to")
		}
		return mintTo(accs[0], accs[1], accs[2], ix.Amount)
	case *CloseAccount:
		ic.Log("Instruction: CloseAccount")
		if len(accs) < 3 {
			return errors.Wrap(errors.ErrNotEnoughAccounts, "close account")
		}
		return closeAccount(accs[0], accs[1], accs[2])
	case *InitializeAccount3:
		ic.Log("Instruction: InitializeAccount3")
		if len(accs) < 2 {
			return errors.Wrap(errors.ErrNotEnoughAccounts, "initialize account")
		}
		return initializeAccount(ic.Rent(), accs[0], accs[1], ix.Owner)
	case *InitializeMint2:
		ic.Log("Instruction: InitializeMint2")
		if len(accs) < 1 {
			return errors.Wrap(errors.ErrNotEnoughAccounts, "initialize mint")
		}
		return initializeMint(ic.Rent(), accs[0], ix)
	default:
		return errors.Wrapf(errors.ErrMalformedInstruction, "%T", ix)
	}
}

// authorize ensures that the expected key signed the instruction.
func authorize(expected ledger.Pubkey, authority *ledger.AccountInfo) error {
	if authority.Key != expected {
		return errors.Wrapf(errors.ErrUnauthorized, "%s is not %s", authority.Key, expected)
	}
	if !authority.IsSigner {
		return errors.Wrapf(errors.ErrMissingSignature, "authority %s", authority.Key)
	}
	return nil
}

// transfer moves tokens. Mint is checked only when given.
func transfer(source, mint, dest, owner *ledger.AccountInfo, amount uint64, decimals uint8) error {
	src, err := LoadAccount(source)
	if err != nil {
		return err
	}
	dst, err := LoadAccount(dest)
	if err != nil {
		return err
	}
	if src.State == Frozen || dst.State == Frozen {
		return errors.Wrap(errors.ErrState, "account frozen")
	}
	if src.Mint != dst.Mint {
		return errors.Wrapf(errors.ErrMintMismatch, "source mint %s, destination mint %s", src.Mint, dst.Mint)
	}
	if mint != nil {
		if mint.Key != src.Mint {
			return errors.Wrapf(errors.ErrMintMismatch, "mint %s, account mint %s", mint.Key, src.Mint)
		}
		m, err := LoadMint(mint)
		if err != nil {
			return err
		}
		if m.Decimals != decimals {
			return errors.Wrapf(errors.ErrInput, "mint decimals %d, got %d", m.Decimals, decimals)
		}
	}
	if err := authorize(src.Owner, owner); err != nil {
		return err
	}
	if src.Amount < amount {
		return errors.Wrapf(errors.ErrInsufficientBalance, "%s holds %d, requires %d", source.Key, src.Amount, amount)
	}
	if source.Key == dest.Key {
		return nil
	}
	if dst.Amount+amount < dst.Amount {
		return errors.Wrapf(errors.ErrOverflow, "credit %s", dest.Key)
	}

	src.Amount -= amount
	dst.Amount += amount
	if err := save(source, src); err != nil {
		return err
	}
	return save(dest, dst)
}

func mintTo(mint, dest, authority *ledger.AccountInfo, amount uint64) error {
	m, err := LoadMint(mint)
	if err != nil {
		return err
	}
	if m.MintAuthority == nil {
		return errors.Wrapf(errors.ErrUnauthorized, "mint %s has a fixed supply", mint.Key)
	}
	if err := authorize(*m.MintAuthority, authority); err != nil {
		return err
	}
	dst, err := LoadAccount(dest)
	if err != nil {
		return err
	}
	if dst.Mint != mint.Key {
		return errors.Wrapf(errors.ErrMintMismatch, "account mint %s, mint %s", dst.Mint, mint.Key)
	}
	if dst.State == Frozen {
		return errors.Wrap(errors.ErrState, "account frozen")
	}
	if m.Supply+amount < m.Supply {
		return errors.Wrapf(errors.ErrOverflow, "supply of %s", mint.Key)
	}

	m.Supply += amount
	dst.Amount += amount
	if err := save(mint, m); err != nil {
		return err
	}
	return save(dest, dst)
}

func closeAccount(account, dest, owner *ledger.AccountInfo) error {
	acc, err := LoadAccount(account)
	if err != nil {
		return err
	}
	if account.Key == dest.Key {
		return errors.Wrap(errors.ErrInput, "account cannot be closed into itself")
	}
	if acc.Amount != 0 {
		return errors.Wrapf(errors.ErrState, "account %s holds %d tokens", account.Key, acc.Amount)
	}
	closer := acc.Owner
	if acc.CloseAuthority != nil {
		closer = *acc.CloseAuthority
	}
	if err := authorize(closer, owner); err != nil {
		return err
	}
	if dest.Lamports+account.Lamports < dest.Lamports {
		return errors.Wrapf(errors.ErrOverflow, "credit %s", dest.Key)
	}

	dest.Lamports += account.Lamports
	account.Lamports = 0
	for i := range account.Data {
		account.Data[i] = 0
	}
	return nil
}

// allocated ensures the account was assigned to the token program with
// given data size.
func allocated(info *ledger.AccountInfo, size int, rent ledger.Rent) error {
	if info.Owner != ledger.TokenProgramID {
		return errors.Wrapf(errors.ErrInvalidAccountOwner, "account %s owned by %s", info.Key, info.Owner)
	}
	if len(info.Data) != size {
		return errors.Wrapf(errors.ErrInput, "account %s holds %d bytes, requires %d", info.Key, len(info.Data), size)
	}
	if !rent.IsExempt(info.Lamports, size) {
		return errors.Wrapf(errors.ErrNotRentExempt, "account %s holds %d lamports", info.Key, info.Lamports)
	}
	return nil
}

func initializeAccount(rent ledger.Rent, account, mint *ledger.AccountInfo, owner ledger.Pubkey) error {
	if err := allocated(account, AccountSize, rent); err != nil {
		return err
	}
	var acc TokenAccount
	if err := acc.Unmarshal(account.Data); err != nil {
		return err
	}
	if acc.State != Uninitialized {
		return errors.Wrapf(errors.ErrAccountAlreadyInUse, "token account %s", account.Key)
	}
	if _, err := LoadMint(mint); err != nil {
		return err
	}
	acc = TokenAccount{Mint: mint.Key, Owner: owner, State: Initialized}
	return save(account, &acc)
}

func initializeMint(rent ledger.Rent, mint *ledger.AccountInfo, ix *InitializeMint2) error {
	if err := allocated(mint, MintSize, rent); err != nil {
		return err
	}
	var m Mint
	if err := m.Unmarshal(mint.Data); err != nil {
		return err
	}
	if m.IsInitialized {
		return errors.Wrapf(errors.ErrAccountAlreadyInUse, "mint %s", mint.Key)
	}
	authority := ix.MintAuthority
	m = Mint{
		MintAuthority:   &authority,
		Decimals:        ix.Decimals,
		IsInitialized:   true,
		FreezeAuthority: ix.FreezeAuthority,
	}
	return save(mint, &m)
}
