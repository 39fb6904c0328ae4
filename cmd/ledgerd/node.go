package main

import (
	"flag"
	"io"
	"os"
	"path/filepath"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/app"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/store/iavl"
	"github.com/iov-one/ledger/x/ata"
	"github.com/iov-one/ledger/x/escrow"
	"github.com/iov-one/ledger/x/system"
	"github.com/iov-one/ledger/x/token"
	"github.com/iov-one/ledger/x/utils"
	"github.com/tendermint/tendermint/libs/log"
)

const dbName = "ledger"

// nodeFlags are the flags shared by all commands that open the ledger.
type nodeFlags struct {
	home      *string
	debug     *bool
	programID *ledger.Pubkey
}

func registerNodeFlags(fl *flag.FlagSet) nodeFlags {
	return nodeFlags{
		home:      fl.String("home", env("LEDGER_HOME", filepath.Join(os.ExpandEnv("$HOME"), ".ledger")), "directory to store the ledger state under"),
		debug:     fl.Bool("debug", false, "log program messages"),
		programID: flPubkey(fl, "program", escrow.DefaultProgramID.String(), "escrow program address"),
	}
}

func env(name, fallback string) string {
	if v, ok := os.LookupEnv(name); ok {
		return v
	}
	return fallback
}

// newLogger returns a logger writing to w. Debug messages, which include
// all program logs, are dropped unless debug is set.
func newLogger(w io.Writer, debug bool) log.Logger {
	logger := log.NewTMLogger(log.NewSyncWriter(w)).With("module", "ledger")
	if debug {
		return log.NewFilter(logger, log.AllowDebug())
	}
	return log.NewFilter(logger, log.AllowInfo())
}

// node is an opened ledger together with its persistent store.
type node struct {
	*app.Ledger
	store *iavl.CommitStore
}

// openNode opens the ledger persisted under the home directory. Call
// Close when done.
func openNode(nf nodeFlags, logger log.Logger) (*node, error) {
	if err := os.MkdirAll(*nf.home, 0o755); err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "home directory: %s", err)
	}
	db, err := iavl.NewCommitStore(*nf.home, dbName)
	if err != nil {
		return nil, err
	}

	router := app.NewRouter()
	system.RegisterRoutes(router)
	token.RegisterRoutes(router)
	ata.RegisterRoutes(router)
	escrow.RegisterRoutes(router, *nf.programID)

	executor := app.ChainDecorators(
		utils.NewLogging(),
		utils.NewRecovery(),
	).WithExecutor(app.NewRuntime(router))
	inits := app.ChainInitializers(app.NewInitializer(router), token.NewInitializer())

	return &node{
		Ledger: app.NewLedger(db, executor, inits, logger),
		store:  db,
	}, nil
}

// Close releases the store. State that was not committed is lost.
func (n *node) Close() {
	n.store.Close()
}
