// Package ledgertest provides helpers for testing code that runs on the
// ledger: key generation, stores and mock executors.
package ledgertest
