/*
Package escrow implements a two party token swap.

A seller (the authority) locks an amount of one token in a vault and states
the amount of another token required in return. Any taker paying that
amount receives the whole vault in the same instruction, and both the vault
and the escrow record are closed with their deposits returned to the
authority. The authority may cancel an open escrow and get the locked
tokens back.

There is at most one open escrow for every authority and sell mint pair:
the record lives at an address derived from both, and the vault is the
associated token account of the record address.

Instructions are a single discriminant byte followed by two little endian
u64 amounts:

	InitEscrow (0)  sell amount, buy amount
	Exchange   (1)  expected sell amount, expected buy amount
	Cancel     (2)  expected sell amount, expected buy amount
*/
package escrow
