/*
Package errors implements the error kinds used across the ledger host and
its programs.

Reuse the root errors declared in this package whenever possible. A program
that needs its own kind should register it with Register(code, description)
during package initialization; codes are unique for the lifetime of the
process and a duplicate registration panics.

Create instances with ErrXyz.New("...") or errors.Wrap(err, "...") at the
point of failure so that a stack trace is attached. Only the innermost wrap
records the trace.

	%s   prints the error message
	%+v  prints the message and the full stack trace

Every error returned by an instruction is fatal to the enclosing
transaction. Info converts an error into the (code, log) pair reported to
the client, hiding internal errors unless debug mode is enabled.
*/
package errors
