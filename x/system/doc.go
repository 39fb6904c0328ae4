/*
Package system implements the program owning all accounts that are not
claimed by any other program.

It creates accounts, assigns them to programs, allocates their data and
transfers lamports between wallets. Instruction data starts with a little
endian uint32 discriminant.
*/
package system
