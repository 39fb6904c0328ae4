package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/x/ata"
	"github.com/iov-one/ledger/x/escrow"
)

func cmdInitEscrow(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(fl.Output(), `
Create a transaction locking -sell tokens of the sell mint until someone pays
-buy tokens of the buy mint. Token accounts default to the associated token
accounts of the authority.
`)
		fl.PrintDefaults()
	}
	var (
		programFl   = flPubkey(fl, "program", escrow.DefaultProgramID.String(), "escrow program address")
		authorityFl = flPubkey(fl, "authority", "", "wallet selling its tokens")
		sellMintFl  = flPubkey(fl, "sell-mint", "", "mint of the locked tokens")
		buyMintFl   = flPubkey(fl, "buy-mint", "", "mint of the requested tokens")
		sellFromFl  = flPubkey(fl, "sell-account", "", "token account funding the vault")
		receiveFl   = flPubkey(fl, "receive-account", "", "token account receiving the payment")
		sellFl      = fl.Uint64("sell", 0, "amount of the sell mint to lock")
		buyFl       = fl.Uint64("buy", 0, "amount of the buy mint to receive")
	)
	fl.Parse(args)

	if err := requirePubkeys(map[string]*ledger.Pubkey{
		"authority": authorityFl,
		"sell-mint": sellMintFl,
		"buy-mint":  buyMintFl,
	}); err != nil {
		return err
	}
	keys := escrow.InitEscrowKeys{
		Authority:            *authorityFl,
		SellMint:             *sellMintFl,
		BuyMint:              *buyMintFl,
		AuthoritySellAccount: *sellFromFl,
		AuthorityBuyAccount:  *receiveFl,
	}
	var err error
	if keys.AuthoritySellAccount, err = orATA(keys.AuthoritySellAccount, keys.Authority, keys.SellMint); err != nil {
		return err
	}
	if keys.AuthorityBuyAccount, err = orATA(keys.AuthorityBuyAccount, keys.Authority, keys.BuyMint); err != nil {
		return err
	}
	ix, err := escrow.NewInitEscrowInstruction(*programFl, keys, *sellFl, *buyFl)
	if err != nil {
		return err
	}
	return writeJSON(output, ledger.NewTx([]ledger.Pubkey{keys.Authority}, ix))
}

func cmdExchange(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(fl.Output(), `
Create a transaction taking an open escrow. -sell and -buy must repeat the
terms the escrow was opened with. Token accounts default to associated token
accounts.
`)
		fl.PrintDefaults()
	}
	var (
		programFl   = flPubkey(fl, "program", escrow.DefaultProgramID.String(), "escrow program address")
		authorityFl = flPubkey(fl, "authority", "", "wallet that opened the escrow")
		takerFl     = flPubkey(fl, "taker", "", "wallet taking the escrow")
		sellMintFl  = flPubkey(fl, "sell-mint", "", "mint of the locked tokens")
		buyMintFl   = flPubkey(fl, "buy-mint", "", "mint of the requested tokens")
		sellFl      = fl.Uint64("sell", 0, "expected amount of the sell mint")
		buyFl       = fl.Uint64("buy", 0, "expected amount of the buy mint")
	)
	fl.Parse(args)

	if err := requirePubkeys(map[string]*ledger.Pubkey{
		"authority": authorityFl,
		"taker":     takerFl,
		"sell-mint": sellMintFl,
		"buy-mint":  buyMintFl,
	}); err != nil {
		return err
	}
	keys := escrow.ExchangeKeys{
		Authority: *authorityFl,
		Taker:     *takerFl,
		SellMint:  *sellMintFl,
		BuyMint:   *buyMintFl,
	}
	var err error
	// the taker pays from its buy mint account and receives into its
	// sell mint account
	if keys.TakerSellAccount, err = ata.Address(keys.Taker, keys.BuyMint); err != nil {
		return err
	}
	if keys.TakerBuyAccount, err = ata.Address(keys.Taker, keys.SellMint); err != nil {
		return err
	}
	if keys.AuthorityBuyAccount, err = ata.Address(keys.Authority, keys.BuyMint); err != nil {
		return err
	}
	ix, err := escrow.NewExchangeInstruction(*programFl, keys, *sellFl, *buyFl)
	if err != nil {
		return err
	}
	return writeJSON(output, ledger.NewTx([]ledger.Pubkey{keys.Taker}, ix))
}

func cmdCancel(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(fl.Output(), `
Create a transaction closing an open escrow and returning the locked tokens
to the authority.
`)
		fl.PrintDefaults()
	}
	var (
		programFl   = flPubkey(fl, "program", escrow.DefaultProgramID.String(), "escrow program address")
		authorityFl = flPubkey(fl, "authority", "", "wallet that opened the escrow")
		sellMintFl  = flPubkey(fl, "sell-mint", "", "mint of the locked tokens")
		refundFl    = flPubkey(fl, "refund-account", "", "token account receiving the locked tokens")
		sellFl      = fl.Uint64("sell", 0, "expected amount of the sell mint")
		buyFl       = fl.Uint64("buy", 0, "expected amount of the buy mint")
	)
	fl.Parse(args)

	if err := requirePubkeys(map[string]*ledger.Pubkey{
		"authority": authorityFl,
		"sell-mint": sellMintFl,
	}); err != nil {
		return err
	}
	refund, err := orATA(*refundFl, *authorityFl, *sellMintFl)
	if err != nil {
		return err
	}
	ix, err := escrow.NewCancelInstruction(*programFl, escrow.CancelKeys{
		Authority:            *authorityFl,
		SellMint:             *sellMintFl,
		AuthoritySellAccount: refund,
	}, *sellFl, *buyFl)
	if err != nil {
		return err
	}
	return writeJSON(output, ledger.NewTx([]ledger.Pubkey{*authorityFl}, ix))
}

func orATA(key, wallet, mint ledger.Pubkey) (ledger.Pubkey, error) {
	if !key.IsZero() {
		return key, nil
	}
	return ata.Address(wallet, mint)
}

type escrowAddressView struct {
	Record ledger.Pubkey `json:"record"`
	Bump   uint8         `json:"bump"`
	Vault  ledger.Pubkey `json:"vault"`
}

func cmdEscrowAddress(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(fl.Output(), `
Print the record and vault addresses of the escrow an authority opens for a
sell mint.
`)
		fl.PrintDefaults()
	}
	var (
		programFl   = flPubkey(fl, "program", escrow.DefaultProgramID.String(), "escrow program address")
		authorityFl = flPubkey(fl, "authority", "", "wallet that opens the escrow")
		sellMintFl  = flPubkey(fl, "sell-mint", "", "mint of the locked tokens")
	)
	fl.Parse(args)

	if err := requirePubkeys(map[string]*ledger.Pubkey{
		"authority": authorityFl,
		"sell-mint": sellMintFl,
	}); err != nil {
		return err
	}
	record, bump, err := escrow.RecordAddress(*programFl, *authorityFl, *sellMintFl)
	if err != nil {
		return err
	}
	vault, err := escrow.VaultAddress(record, *sellMintFl)
	if err != nil {
		return err
	}
	return writeJSON(output, escrowAddressView{Record: record, Bump: bump, Vault: vault})
}

type escrowView struct {
	Address ledger.Pubkey        `json:"address"`
	Record  *escrow.EscrowRecord `json:"record"`
}

func cmdEscrow(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(fl.Output(), `
Print the open escrow of an authority for a sell mint.
`)
		fl.PrintDefaults()
	}
	nf := registerNodeFlags(fl)
	var (
		authorityFl = flPubkey(fl, "authority", "", "wallet that opened the escrow")
		sellMintFl  = flPubkey(fl, "sell-mint", "", "mint of the locked tokens")
	)
	fl.Parse(args)

	if err := requirePubkeys(map[string]*ledger.Pubkey{
		"authority": authorityFl,
		"sell-mint": sellMintFl,
	}); err != nil {
		return err
	}

	n, err := openNode(nf, newLogger(os.Stderr, *nf.debug))
	if err != nil {
		return err
	}
	defer n.Close()
	if err := n.LoadState(); err != nil {
		return err
	}

	var view escrowView
	err = n.View(func(db ledger.ReadOnlyKVStore) error {
		var err error
		view.Address, view.Record, err = escrow.LoadRecord(db, *nf.programID, *authorityFl, *sellMintFl)
		return err
	})
	if err != nil {
		return err
	}
	return writeJSON(output, view)
}
