// Package utils provides decorators shared by all ledger executors.
package utils
