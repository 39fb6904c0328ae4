// Package assert provides the small set of test assertions used across the
// ledger packages. Every failing assertion stops the test.
package assert

import (
	"reflect"
	"testing"

	"github.com/iov-one/ledger/errors"
)

// Tester is the minimal subset of testing.TB needed to run most assert commands
type Tester interface {
	Helper()
	Fatal(...interface{})
	Fatalf(string, ...interface{})
}

// Nil fails the test if given value is not nil.
func Nil(t Tester, value interface{}) {
	t.Helper()
	if !isNil(value) {
		// %+v prints the stack trace of errors that carry one.
		t.Fatalf("want a nil value, got %+v", value)
	}
}

func isNil(value interface{}) (isnil bool) {
	if value == nil {
		return true
	}
	defer func() {
		if recover() != nil {
			isnil = false
		}
	}()
	// IsNil panics for non nillable kinds.
	return reflect.ValueOf(value).IsNil()
}

// Equal fails the test if two values are not equal.
func Equal(t Tester, want, got interface{}) {
	t.Helper()
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("values not equal \nwant %T %v\n got %T %v", want, want, got, got)
	}
}

// Panics runs given function and fails the test if it did not panic.
func Panics(t Tester, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatal("panic expected")
		}
	}()
	fn()
}

// IsErr fails the test unless got is of the want kind. A nil want expects
// no error.
func IsErr(t Tester, want *errors.Error, got error) {
	t.Helper()
	if want == nil {
		if got != nil {
			t.Fatalf("want no error, got %+v", got)
		}
		return
	}
	if !want.Is(got) {
		t.Fatalf("want %q, got %+v", want, got)
	}
}

// FieldError ensures that given error contains the exact match of a single
// field error, tested by its type (.Is method call).
// To test that no error was found for a given field name, use `nil` as the
// match value.
func FieldError(t testing.TB, err error, fieldName string, want *errors.Error) {
	t.Helper()

	errs := errors.FieldErrors(err, fieldName)
	if want == nil {
		if len(errs) != 0 {
			for i, e := range errs {
				t.Logf("\terror %d: %q", i+1, e)
			}
			t.Fatalf("expected no %q error, got %d", fieldName, len(errs))
		}
		return
	}

	for _, e := range errs {
		if want.Is(e) {
			return
		}
	}
	if len(errs) == 0 {
		t.Fatalf("no %q error found", fieldName)
	}
	for i, e := range errs {
		t.Logf("\terror %d: %q", i+1, e)
	}
	t.Fatalf("no %q error of kind %q", fieldName, want)
}
