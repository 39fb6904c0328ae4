package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/app"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/x/token"
	"github.com/mr-tron/base58"
)

func cmdInit(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(fl.Output(), `
Create the genesis state of a new ledger from a JSON file.
`)
		fl.PrintDefaults()
	}
	nf := registerNodeFlags(fl)
	genesisFl := fl.String("genesis", "", "genesis file, defaults to genesis.json in the home directory")
	fl.Parse(args)

	path := *genesisFl
	if path == "" {
		path = filepath.Join(*nf.home, "genesis.json")
	}
	gen, err := app.LoadGenesis(path)
	if err != nil {
		return err
	}

	n, err := openNode(nf, newLogger(os.Stderr, *nf.debug))
	if err != nil {
		return err
	}
	defer n.Close()

	switch err := n.LoadState(); {
	case err == nil:
		return errors.Wrapf(errors.ErrState, "chain %q already initialized in %s", n.ChainID(), *nf.home)
	case !errors.ErrEmpty.Is(err):
		return err
	}
	id, err := n.InitChain(gen)
	if err != nil {
		return err
	}
	return writeJSON(output, commitView{ChainID: gen.ChainID, Slot: id.Version, Hash: id.Hash})
}

type commitView struct {
	ChainID string `json:"chain_id"`
	Slot    int64  `json:"slot"`
	Hash    []byte `json:"hash"`
}

type resultView struct {
	Slot    int64           `json:"slot"`
	Log     []string        `json:"log"`
	Touched []ledger.Pubkey `json:"touched"`
}

func cmdExec(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(fl.Output(), `
Execute a transaction read from the input and commit the result. Nothing is
committed if the transaction fails.
`)
		fl.PrintDefaults()
	}
	nf := registerNodeFlags(fl)
	fl.Parse(args)

	tx, err := readTx(input)
	if err != nil {
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

	res, err := n.Execute(context.Background(), tx)
	if err != nil {
		return err
	}
	id, err := n.Commit()
	if err != nil {
		return err
	}
	return writeJSON(output, resultView{Slot: id.Version, Log: res.Log, Touched: res.Touched})
}

type stater interface {
	Stat() (os.FileInfo, error)
}

func readTx(input io.Reader) (*ledger.Tx, error) {
	// If the given reader is providing a stat information (ie os.Stdin)
	// then check if the data is being piped. That should prevent us from
	// waiting for a data on a reader that no one ever writes to.
	if s, ok := input.(stater); ok {
		if info, err := s.Stat(); err == nil {
			if info.Mode()&os.ModeCharDevice != 0 {
				return nil, errors.Wrap(errors.ErrInput, "transaction must be piped in")
			}
		}
	}
	raw, err := ioutil.ReadAll(input)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "read: %s", err)
	}
	var tx ledger.Tx
	if err := json.Unmarshal(raw, &tx); err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "decode transaction: %s", err)
	}
	if len(tx.Instructions) == 0 {
		return nil, errors.Wrap(errors.ErrEmpty, "no instructions")
	}
	for i := range tx.Instructions {
		if err := tx.Instructions[i].Validate(); err != nil {
			return nil, errors.Wrapf(err, "instruction %d", i)
		}
	}
	return &tx, nil
}

// accountView presents an account with its data base58 encoded. Token
// program accounts are decoded as well.
type accountView struct {
	Address    ledger.Pubkey       `json:"address"`
	Lamports   uint64              `json:"lamports"`
	Owner      ledger.Pubkey       `json:"owner"`
	Executable bool                `json:"executable,omitempty"`
	Data       string              `json:"data,omitempty"`
	Mint       *token.Mint         `json:"mint,omitempty"`
	Token      *token.TokenAccount `json:"token,omitempty"`
}

func newAccountView(key ledger.Pubkey, acc *ledger.Account) accountView {
	view := accountView{
		Address:    key,
		Lamports:   acc.Lamports,
		Owner:      acc.Owner,
		Executable: acc.Executable,
	}
	if len(acc.Data) > 0 {
		view.Data = base58.Encode(acc.Data)
	}
	if acc.Owner != ledger.TokenProgramID {
		return view
	}
	switch len(acc.Data) {
	case token.MintSize:
		var m token.Mint
		if m.Unmarshal(acc.Data) == nil {
			view.Mint = &m
		}
	case token.AccountSize:
		var a token.TokenAccount
		if a.Unmarshal(acc.Data) == nil {
			view.Token = &a
		}
	}
	return view
}

func cmdAccount(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(fl.Output(), `
Print the committed state of an account.
`)
		fl.PrintDefaults()
	}
	nf := registerNodeFlags(fl)
	addrFl := flPubkey(fl, "address", "", "account address")
	fl.Parse(args)

	if err := requirePubkeys(map[string]*ledger.Pubkey{"address": addrFl}); err != nil {
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
	acc, err := n.Account(*addrFl)
	if err != nil {
		return err
	}
	return writeJSON(output, newAccountView(*addrFl, acc))
}

func cmdVersion(input io.Reader, output io.Writer, args []string) error {
	_, err := fmt.Fprintln(output, ledger.Version())
	return err
}

func writeJSON(output io.Writer, v interface{}) error {
	raw, err := json.MarshalIndent(v, "", "\t")
	if err != nil {
		return errors.Wrapf(errors.ErrInput, "encode: %s", err)
	}
	_, err = fmt.Fprintln(output, string(raw))
	return err
}
