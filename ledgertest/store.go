package ledgertest

import (
	"io/ioutil"
	"os"
	"testing"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/store/iavl"
)

// CommitKVStore returns a store instance that is using a filesystem backend
// engine to store the data.
// This implementation should be used instead of MemStore when you want the
// exact same storage implementation as the production instance is using.
func CommitKVStore(t testing.TB) (db ledger.CommitKVStore, cleanup func()) {
	dbpath, err := ioutil.TempDir("", "ledgertest-")
	if err != nil {
		t.Fatalf("cannot create a temporary directory: %s", err)
	}
	s, err := iavl.NewCommitStore(dbpath, "db")
	if err != nil {
		os.RemoveAll(dbpath)
		t.Fatalf("cannot create a store: %s", err)
	}
	return s, func() { os.RemoveAll(dbpath) }
}
