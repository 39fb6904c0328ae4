/*

Package ledger defines interfaces used throughout the ledger host, such as:
storage, accounts, instructions, programs and the runtime middleware.
Look into this package to get a brief overview of design decisions made
around interfaces and extension building blocks.

The host keeps every piece of state in an account addressed by a 32 byte
public key. Programs own accounts, and only the owning program may change
an account's data or debit its lamports. Addresses of program controlled
accounts are derived from seeds (see FindProgramAddress) so that anyone can
recompute and verify them.

*/

package ledger
