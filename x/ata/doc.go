/*
Package ata implements the associated token account program.

An associated token account is the token account of a wallet for a mint
living at an address derived from both. Anyone may pay for its creation.
*/
package ata
