package domainerrors

import (
	"errors"
	"fmt"
	"testing"
)

func TestHasCode(t *testing.T) {
	err := New(CodeInsufficientFunds, "balance too low")
	if !HasCode(err, CodeInsufficientFunds) {
		t.Fatalf("expected code insufficient_funds")
	}
	if HasCode(err, CodeAccountNotFound) {
		t.Fatalf("did not expect code account_not_found")
	}
	if HasCode(errors.New("plain"), CodeInternal) {
		t.Fatalf("plain errors carry no code")
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, CodeUnavailable, "account store unreachable")

	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to stay reachable via errors.Is")
	}
	if CodeOf(err) != CodeUnavailable {
		t.Fatalf("expected unavailable, got %s", CodeOf(err))
	}
}

func TestCodeSurvivesFmtWrapping(t *testing.T) {
	err := fmt.Errorf("execute transfer: %w", New(CodeConcurrencyConflict, "retries exhausted"))
	if CodeOf(err) != CodeConcurrencyConflict {
		t.Fatalf("expected code to survive fmt.Errorf wrapping, got %s", CodeOf(err))
	}
}

func TestRetryable(t *testing.T) {
	cases := []struct {
		code Code
		want bool
	}{
		{CodeConcurrencyConflict, true},
		{CodeUnavailable, true},
		{CodeInsufficientFunds, false},
		{CodeUnauthorized, false},
		{CodeInvalidAmount, false},
	}
	for _, tc := range cases {
		if got := Retryable(New(tc.code, "x")); got != tc.want {
			t.Fatalf("Retryable(%s) = %v, want %v", tc.code, got, tc.want)
		}
	}
}
