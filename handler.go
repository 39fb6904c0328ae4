package ledger

import (
	"encoding/json"
)

// Program is the executable logic bound to a program address. Process is
// called once for every instruction addressed to the program, including
// instructions issued by other programs.
type Program interface {
	Process(ctx Context, ic InvokeContext) error
}

// ProgramFunc adapts a function to the Program interface.
type ProgramFunc func(ctx Context, ic InvokeContext) error

// Process calls fn.
func (fn ProgramFunc) Process(ctx Context, ic InvokeContext) error {
	return fn(ctx, ic)
}

// InvokeContext is the view of the ledger available to a program while it
// processes a single instruction.
type InvokeContext interface {
	// ProgramID returns the address of the executing program.
	ProgramID() Pubkey
	// Data returns the instruction data.
	Data() []byte
	// Accounts returns the accounts referenced by the instruction, in
	// order. Modifications of the returned accounts are validated and
	// committed by the runtime once the instruction returns.
	Accounts() []*AccountInfo
	// Invoke executes an instruction of another program. Signer seeds
	// allow the calling program to sign for addresses derived from its
	// own address.
	Invoke(ctx Context, ix Instruction, signerSeeds ...[][]byte) error
	// Rent returns the current rent configuration.
	Rent() Rent
	// Log appends a message to the transaction log.
	Log(format string, args ...interface{})
}

// Executor executes a whole transaction against given store.
type Executor interface {
	Execute(ctx Context, db KVStore, tx *Tx) (*Result, error)
}

// Decorator wraps an Executor to provide common functionality
// like logging or panic recovery to all transactions.
type Decorator interface {
	Execute(ctx Context, db KVStore, tx *Tx, next Executor) (*Result, error)
}

// Result is returned by a successful transaction execution.
type Result struct {
	// Log lists program log messages, in emission order.
	Log []string
	// Touched lists writable accounts of the transaction.
	Touched []Pubkey
}

// Registry is an interface to register your program,
// the setup side of a Router.
type Registry interface {
	Register(id Pubkey, p Program)
}

// Options are the app options
// Each extension can look up it's key and parse the json as desired
type Options map[string]json.RawMessage

// ReadOptions reads the values stored under a given key,
// and parses the json into the given obj.
// Returns an error if it cannot parse.
// Noop and no error if key is missing
func (o Options) ReadOptions(key string, obj interface{}) error {
	msg := o[key]
	if len(msg) == 0 {
		return nil
	}
	return json.Unmarshal(msg, obj)
}

// Initializer implementations are used to initialize
// extensions from genesis file contents
type Initializer interface {
	FromGenesis(Options, KVStore) error
}
