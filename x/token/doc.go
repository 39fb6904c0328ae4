/*
Package token implements a subset of the fungible token program.

Mints and token accounts use the byte layouts of the SPL token program so
that state produced here can be inspected with the usual client tooling.
Only plain (non native, non delegated) balances are supported.
*/
package token
