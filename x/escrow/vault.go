package escrow

import (
	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/x/ata"
	"github.com/iov-one/ledger/x/token"
)

// vault is the token account holding the locked sell amount. It belongs
// to the record address, so only the escrow program can sign for it.
type vault struct {
	info     *ledger.AccountInfo
	mint     *ledger.AccountInfo
	decimals uint8
	record   ledger.Pubkey
	seeds    [][]byte
}

func newVault(info, mint *ledger.AccountInfo, recordKey ledger.Pubkey, rec *EscrowRecord) (*vault, error) {
	m, err := token.LoadMint(mint)
	if err != nil {
		return nil, err
	}
	return &vault{
		info:     info,
		mint:     mint,
		decimals: m.Decimals,
		record:   recordKey,
		seeds:    signerSeeds(rec.Authority, rec.SellMint, rec.Bump),
	}, nil
}

// Open creates the vault as the associated token account of the record,
// paid by payer. An existing, empty associated account is reused.
func (v *vault) Open(ctx ledger.Context, ic ledger.InvokeContext, payer *ledger.AccountInfo) error {
	ix, err := ata.NewCreateIdempotentInstruction(payer.Key, v.record, v.mint.Key)
	if err != nil {
		return err
	}
	if err := ic.Invoke(ctx, ix); err != nil {
		return errors.Wrap(err, "open vault")
	}
	_, err = validateVault(v.info, v.record, v.mint.Key)
	return err
}

// Fund moves amount from the token account of owner into the vault.
func (v *vault) Fund(ctx ledger.Context, ic ledger.InvokeContext, from, owner *ledger.AccountInfo, amount uint64) error {
	ix := token.NewTransferCheckedInstruction(from.Key, v.mint.Key, v.info.Key, owner.Key, amount, v.decimals)
	if err := ic.Invoke(ctx, ix); err != nil {
		return errors.Wrap(err, "fund vault")
	}
	return nil
}

// Release moves amount out of the vault, signed by the record.
func (v *vault) Release(ctx ledger.Context, ic ledger.InvokeContext, dest *ledger.AccountInfo, amount uint64) error {
	ix := token.NewTransferCheckedInstruction(v.info.Key, v.mint.Key, dest.Key, v.record, amount, v.decimals)
	if err := ic.Invoke(ctx, ix, v.seeds); err != nil {
		return errors.Wrap(err, "release vault")
	}
	return nil
}

// Close removes the emptied vault and returns the reclaimed deposit, which
// is paid to dest.
func (v *vault) Close(ctx ledger.Context, ic ledger.InvokeContext, dest *ledger.AccountInfo) (uint64, error) {
	deposit := v.info.Lamports
	ix := token.NewCloseAccountInstruction(v.info.Key, dest.Key, v.record)
	if err := ic.Invoke(ctx, ix, v.seeds); err != nil {
		return 0, errors.Wrap(err, "close vault")
	}
	return deposit, nil
}
