package errors

import (
	"fmt"
	"reflect"

	"github.com/pkg/errors"
)

// Generic root errors.
var (
	// ErrUnauthorized is used whenever a request without sufficient
	// authorization is handled.
	ErrUnauthorized = Register(2, "unauthorized")

	// ErrNotFound is used when a requested operation cannot be completed
	// due to missing data.
	ErrNotFound = Register(3, "not found")

	// ErrModel is returned whenever a stored entity is invalid and cannot
	// be used (ie. persisted).
	ErrModel = Register(5, "invalid model")

	// ErrDuplicate is returned when there is a record already that has the
	// same unique key.
	ErrDuplicate = Register(6, "duplicate")

	// ErrHuman is returned when application reaches a code path which
	// should not ever be reached if the code was written as expected.
	ErrHuman = Register(7, "coding error")

	// ErrEmpty is returned when a value fails a not empty assertion.
	ErrEmpty = Register(9, "value is empty")

	// ErrState is returned when an object is in invalid state.
	ErrState = Register(10, "invalid state")

	// ErrType is returned whenever the type is not what was expected.
	ErrType = Register(11, "invalid type")

	// ErrAmount stands for invalid amount of whatever.
	ErrAmount = Register(13, "invalid amount")

	// ErrInput stands for general input problems indication.
	ErrInput = Register(14, "invalid input")

	// ErrOverflow is returned when a computation cannot be completed
	// because the result value exceeds the type.
	ErrOverflow = Register(16, "an operation cannot be completed due to value overflow")

	// ErrDatabase is returned when the underlying store fails.
	ErrDatabase = Register(17, "database error")

	// ErrPanic is only set when we recover from a panic, so we know to
	// redact potentially sensitive system info.
	ErrPanic = Register(111222, "panic")
)

// Ledger host errors. Returned by the runtime and the native programs.
var (
	// ErrMissingSignature is returned when an account that must sign an
	// instruction did not.
	ErrMissingSignature = Register(30, "missing required signature")

	// ErrReadonlyAccount is returned when an instruction modifies an
	// account that was not passed as writable.
	ErrReadonlyAccount = Register(31, "readonly account modified")

	// ErrInvalidAccountOwner is returned when an account is not owned by
	// the program that expects to read or modify it.
	ErrInvalidAccountOwner = Register(32, "invalid account owner")

	// ErrUnknownProgram is returned when an instruction targets a program
	// that is not registered with the runtime.
	ErrUnknownProgram = Register(33, "unknown program")

	// ErrNotEnoughAccounts is returned when an instruction does not carry
	// every account its variant requires.
	ErrNotEnoughAccounts = Register(34, "not enough account keys")

	// ErrAccountAlreadyInUse is returned when an account that must be
	// created already holds lamports or data.
	ErrAccountAlreadyInUse = Register(35, "account already in use")

	// ErrUnbalancedInstruction is returned when an instruction changes the
	// total amount of lamports held by its accounts.
	ErrUnbalancedInstruction = Register(36, "sum of account balances before and after instruction do not match")

	// ErrNotRentExempt is returned when an account would be left holding
	// less than the minimum balance for its size.
	ErrNotRentExempt = Register(37, "account not rent exempt")
)

// Escrow errors.
var (
	// ErrMalformedInstruction is returned when instruction data is too
	// short or carries an unknown discriminant.
	ErrMalformedInstruction = Register(50, "malformed instruction")

	// ErrInvalidAccountAddress is returned when a supplied account does not
	// match the address derived for it.
	ErrInvalidAccountAddress = Register(51, "invalid account address")

	// ErrMintMismatch is returned when a token account holds a different
	// mint than expected.
	ErrMintMismatch = Register(52, "mint mismatch")

	// ErrInvalidVaultAuthority is returned when the vault is not owned by
	// the escrow record address.
	ErrInvalidVaultAuthority = Register(53, "invalid vault authority")

	// ErrTermsMismatch is returned when the amounts declared by a taker do
	// not equal the stored escrow terms.
	ErrTermsMismatch = Register(54, "terms mismatch")

	// ErrInsufficientBalance is returned when a payer does not hold the
	// amount it has to move.
	ErrInsufficientBalance = Register(55, "insufficient balance")

	// ErrRecordAlreadyExists is returned when an escrow is initialized at
	// an address that is already occupied.
	ErrRecordAlreadyExists = Register(56, "escrow record already exists")

	// ErrRecordNotFound is returned when an escrow record is absent, for
	// example after it was settled.
	ErrRecordNotFound = Register(57, "escrow record not found")

	// ErrDerivationExhausted is returned when no bump produces a valid
	// program address.
	ErrDerivationExhausted = Register(58, "address derivation exhausted")
)

// Register returns an error instance that should be used as the base for
// creating error instances during runtime.
//
// Popular root errors are declared in this package, but extensions may want to
// declare custom codes. This function ensures that no error code is used
// twice. Attempt to reuse an error code results in panic.
//
// Use this function only during a program startup phase.
func Register(code uint32, description string) *Error {
	if e, ok := usedCodes[code]; ok {
		panic(fmt.Sprintf("error with code %d is already registered: %q", code, e.desc))
	}
	err := &Error{
		code: code,
		desc: description,
	}
	usedCodes[err.code] = err
	return err
}

// usedCodes is keeping track of used codes to ensure their uniqueness. No two
// error instances should share the same error code.
var usedCodes = map[uint32]*Error{
	1: nil, // Error code 1 is restricted for unregistered errors and must not be used.
}

// Error represents a root error.
//
// Each instance created during the runtime should wrap one of the declared
// root errors. This allows error tests and returning all errors to the
// client in a safe manner.
type Error struct {
	code uint32
	desc string
}

func (e Error) Error() string {
	return e.desc
}

// Code returns the numeric code reported to the client.
func (e Error) Code() uint32 {
	return e.code
}

// New returns a new error. Returned instance is having the root cause set to
// this error. Below two lines are equal
//
//	e.New("my description")
//	Wrap(e, "my description")
func (e *Error) New(description string) error {
	return Wrap(e, description)
}

// Newf is basically New with formatting capabilities.
func (e *Error) Newf(description string, args ...interface{}) error {
	return e.New(fmt.Sprintf(description, args...))
}

// Is check if given error instance is of a given kind/type. This involves
// unwrapping given error using the Cause method if available.
func (kind *Error) Is(err error) bool {
	// Reflect usage is necessary to correctly compare with
	// a nil implementation of an error.
	if kind == nil {
		if err == nil {
			return true
		}
		return reflect.ValueOf(err).IsNil()
	}

	for {
		if err == kind {
			return true
		}

		if u, ok := err.(unpacker); ok {
			for _, e := range u.Unpack() {
				if kind.Is(e) {
					return true
				}
			}
			return false
		}

		if c, ok := err.(causer); ok {
			err = c.Cause()
		} else {
			return false
		}
	}
}

// Wrap extends given error with an additional information.
//
// If the wrapped error does not provide Code method (ie. stdlib errors),
// it will be labeled as internal error.
//
// If err is nil, this returns nil, avoiding the need for an if statement when
// wrapping a error returned at the end of a function
func Wrap(err error, description string) error {
	if err == nil {
		return nil
	}

	// If this error does not carry the stacktrace information yet, attach
	// one. This should be done only once per error at the lowest frame
	// possible (most inner wrap).
	if stackTrace(err) == nil {
		err = errors.WithStack(err)
	}

	return &wrappedError{
		parent: err,
		msg:    description,
	}
}

// Wrapf extends given error with an additional information.
//
// This function works like Wrap function with additional funtionality of
// formatting the input as specified.
func Wrapf(err error, format string, args ...interface{}) error {
	desc := fmt.Sprintf(format, args...)
	return Wrap(err, desc)
}

type wrappedError struct {
	// This error layer description.
	msg string
	// The underlying error that triggered this one.
	parent error
}

func (e *wrappedError) Error() string {
	return fmt.Sprintf("%s: %s", e.msg, e.parent.Error())
}

func (e *wrappedError) Cause() error {
	return e.parent
}

// Format prints the stack trace of the innermost wrap when %+v is used.
func (e *wrappedError) Format(s fmt.State, verb rune) {
	if verb == 'v' && s.Flag('+') {
		fmt.Fprintf(s, "%s: %+v", e.msg, e.parent)
		return
	}
	fmt.Fprint(s, e.Error())
}

// Recover captures a panic and stop its propagation. If panic happens it is
// transformed into a ErrPanic instance and assigned to given error. Call this
// function using defer in order to work as expected.
func Recover(err *error) {
	if r := recover(); r != nil {
		*err = Wrapf(ErrPanic, "%v", r)
	}
}

// WithType is a helper to augment an error with a corresponding type message
func WithType(err error, obj interface{}) error {
	return Wrap(err, fmt.Sprintf("%T", obj))
}

// causer is an interface implemented by an error that supports wrapping. Use
// it to test if an error wraps another error instance.
type causer interface {
	Cause() error
}

type stackTracer interface {
	error
	StackTrace() errors.StackTrace
}

// stackTrace returns the first found stack trace frame carried by given error
// or any wrapped error. It returns nil if no stack trace is found.
func stackTrace(err error) errors.StackTrace {
	for {
		if st, ok := err.(stackTracer); ok {
			return st.StackTrace()
		}

		if c, ok := err.(causer); ok {
			err = c.Cause()
		} else {
			return nil
		}
	}
}
