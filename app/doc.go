/*
Package app assembles programs into a running ledger.

A Router maps program addresses to programs. The Runtime executes
transactions against a store: it resolves account privileges, calls the
programs, enforces the ownership and balance rules after every
instruction and writes the changed accounts back. Ledger owns the
committed state and serializes all transactions.

	router := app.NewRouter()
	system.RegisterRoutes(router)
	token.RegisterRoutes(router)
	ata.RegisterRoutes(router)
	escrow.RegisterRoutes(router)

	executor := app.ChainDecorators(
	  utils.NewLogging(),
	  utils.NewRecovery(),
	).WithExecutor(app.NewRuntime(router))
*/
package app
