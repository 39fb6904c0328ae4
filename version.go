package ledger

import "fmt"

// Release numbers of the ledger host and its native programs.
const (
	Maj    = 0
	Min    = 1
	Fix    = 0
	Suffix = "-dev"
)

// GitCommit is set at build time with
// -ldflags "-X github.com/iov-one/ledger.GitCommit=<hash>".
var GitCommit = ""

// Version returns the release string, followed by the commit hash when
// one was provided during the build.
func Version() string {
	v := fmt.Sprintf("v%d.%d.%d%s", Maj, Min, Fix, Suffix)
	if GitCommit != "" {
		v += " " + GitCommit
	}
	return v
}
