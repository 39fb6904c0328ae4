package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// commands is a register of all available commands. The name is matched
// with the first argument given.
//
// A command function reads from input, writes to output and parses the
// remaining command line arguments with its own flag set. Commands that
// build transactions write them as JSON so that they can be piped into
// exec:
//
//	$ ledgerd init-escrow -authority <key> -sell-mint <key> -buy-mint <key> \
//	    -sell 1000000 -buy 500000 \
//	    | ledgerd exec -home ~/.ledger
var commands = map[string]func(input io.Reader, output io.Writer, args []string) error{
	"account":        cmdAccount,
	"cancel":         cmdCancel,
	"escrow":         cmdEscrow,
	"escrow-address": cmdEscrowAddress,
	"exchange":       cmdExchange,
	"exec":           cmdExec,
	"init":           cmdInit,
	"init-escrow":    cmdInitEscrow,
	"version":        cmdVersion,
}

func main() {
	if len(os.Args) == 1 {
		fmt.Fprintf(os.Stderr, "%s runs a token swap escrow ledger.\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Usage: %s <command> [<flags>]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nAvailable commands are:\n\t%s\n", strings.Join(availableCmds(), "\n\t"))
		fmt.Fprintf(os.Stderr, "Run '%s <command> -help' to learn more about each command.\n", os.Args[0])
		os.Exit(2)
	}
	run, ok := commands[os.Args[1]]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "\nAvailable commands are:\n\t%s\n", strings.Join(availableCmds(), "\n\t"))
		os.Exit(2)
	}

	if err := run(os.Stdin, os.Stdout, os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %+v\n", err)
		os.Exit(1)
	}
}

func availableCmds() []string {
	available := make([]string, 0, len(commands))
	for name := range commands {
		available = append(available, name)
	}
	sort.Strings(available)
	return available
}
