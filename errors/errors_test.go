package errors

import (
	stdlib "errors"
	"fmt"
	"strings"
	"testing"

	"github.com/pkg/errors"
)

func TestCause(t *testing.T) {
	std := stdlib.New("this is a stdlib error")

	cases := map[string]struct {
		err  error
		root error
	}{
		"Errors are self-causing": {
			err:  ErrNotFound,
			root: ErrNotFound,
		},
		"Wrap reveals root cause": {
			err:  Wrap(ErrNotFound, "foo"),
			root: ErrNotFound,
		},
		"Cause works for stderr as root": {
			err:  Wrap(std, "Some helpful text"),
			root: std,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			if got := errors.Cause(tc.err); got != tc.root {
				t.Fatal("unexpected result")
			}
		})
	}
}

func TestErrorIs(t *testing.T) {
	cases := map[string]struct {
		a      *Error
		b      error
		wantIs bool
	}{
		"instance of the same error": {
			a:      ErrNotFound,
			b:      ErrNotFound,
			wantIs: true,
		},
		"two different coded errors": {
			a:      ErrRecordNotFound,
			b:      ErrRecordAlreadyExists,
			wantIs: false,
		},
		"successful comparison to a wrapped error": {
			a:      ErrTermsMismatch,
			b:      Wrap(ErrTermsMismatch, "buy amount"),
			wantIs: true,
		},
		"successful comparison to a doubly wrapped error": {
			a:      ErrTermsMismatch,
			b:      Wrap(Wrapf(ErrTermsMismatch, "want %d", 500000), "exchange"),
			wantIs: true,
		},
		"unsuccessful comparison to a wrapped error": {
			a:      ErrNotFound,
			b:      errors.Wrap(ErrOverflow, "too big"),
			wantIs: false,
		},
		"not equal to stdlib error": {
			a:      ErrNotFound,
			b:      fmt.Errorf("stdlib error"),
			wantIs: false,
		},
		"not equal to a wrapped stdlib error": {
			a:      ErrNotFound,
			b:      errors.Wrap(fmt.Errorf("stdlib error"), "wrapped"),
			wantIs: false,
		},
		"nil is nil": {
			a:      nil,
			b:      nil,
			wantIs: true,
		},
		"nil is any error nil": {
			a:      nil,
			b:      (*customError)(nil),
			wantIs: true,
		},
		"nil is not not-nil": {
			a:      nil,
			b:      ErrNotFound,
			wantIs: false,
		},
		"not-nil is not nil": {
			a:      ErrNotFound,
			b:      nil,
			wantIs: false,
		},
		"multierr with the same error": {
			a:      ErrNotFound,
			b:      Append(ErrNotFound, ErrState),
			wantIs: true,
		},
		"multierr with random order": {
			a:      ErrNotFound,
			b:      Append(ErrState, ErrNotFound),
			wantIs: true,
		},
		"multierr with wrapped err": {
			a:      ErrNotFound,
			b:      Append(ErrState, Wrap(ErrNotFound, "test")),
			wantIs: true,
		},
		"multierr with different error": {
			a:      ErrNotFound,
			b:      Append(ErrState, ErrEmpty),
			wantIs: false,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			if got := tc.a.Is(tc.b); got != tc.wantIs {
				t.Fatalf("unexpected result - got:%v want: %v", got, tc.wantIs)
			}
		})
	}
}

type customError struct {
}

func (customError) Error() string {
	return "custom error"
}

func TestWrapEmpty(t *testing.T) {
	if err := Wrap(nil, "wrapping <nil>"); err != nil {
		t.Fatal(err)
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("want panic")
		}
	}()
	Register(ErrTermsMismatch.Code(), "another terms mismatch")
}

func TestRecover(t *testing.T) {
	fn := func() (err error) {
		defer Recover(&err)
		panic("boom")
	}
	err := fn()
	if !ErrPanic.Is(err) {
		t.Fatalf("want panic error, got %+v", err)
	}
}

func TestInfo(t *testing.T) {
	cases := map[string]struct {
		err      error
		debug    bool
		wantCode uint32
		wantLog  string
	}{
		"nil error": {
			err:      nil,
			wantCode: SuccessCode,
			wantLog:  "",
		},
		"registered error": {
			err:      ErrRecordNotFound,
			wantCode: ErrRecordNotFound.Code(),
			wantLog:  ErrRecordNotFound.Error(),
		},
		"wrapped registered error": {
			err:      Wrap(ErrInsufficientBalance, "fund vault"),
			wantCode: ErrInsufficientBalance.Code(),
			wantLog:  "fund vault: insufficient balance",
		},
		"stdlib error is redacted": {
			err:      fmt.Errorf("disk is on fire"),
			wantCode: 1,
			wantLog:  "internal error",
		},
		"multi error reports first code": {
			err:      Append(ErrMintMismatch, ErrTermsMismatch),
			wantCode: ErrMintMismatch.Code(),
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			code, log := Info(tc.err, tc.debug)
			if code != tc.wantCode {
				t.Errorf("want %d code, got %d", tc.wantCode, code)
			}
			if tc.wantLog != "" && log != tc.wantLog {
				t.Errorf("want %q log, got %q", tc.wantLog, log)
			}
		})
	}
}

func TestInfoDebugIncludesStack(t *testing.T) {
	_, log := Info(Wrap(ErrMalformedInstruction, "too short"), true)
	if !strings.Contains(log, "too short") || !strings.Contains(log, "errors_test.go") {
		t.Fatalf("want a stack trace, got %q", log)
	}
}
