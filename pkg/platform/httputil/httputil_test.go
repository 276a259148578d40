package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	dErrors "mintbank/pkg/domain-errors"
)

func TestWriteError(t *testing.T) {
	t.Run("internal error omits description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeInternal, "db failed"))

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
		}

		var body map[string]string
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body["error"] != "internal_error" {
			t.Fatalf("expected error code internal_error, got %q", body["error"])
		}
		if _, ok := body["error_description"]; ok {
			t.Fatalf("expected error_description to be omitted for internal errors")
		}
	})

	t.Run("rejection includes description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeInsufficientFunds, "balance too low"))

		if w.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected status %d, got %d", http.StatusUnprocessableEntity, w.Code)
		}

		var body map[string]string
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body["error"] != "insufficient_funds" {
			t.Fatalf("expected error code insufficient_funds, got %q", body["error"])
		}
		if body["error_description"] != "balance too low" {
			t.Fatalf("expected error_description for a rejection, got %q", body["error_description"])
		}
	})

	t.Run("uncoded errors map to internal", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, errors.New("surprise"))

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
		}
	})
}

func TestToHTTPStatus(t *testing.T) {
	cases := []struct {
		code dErrors.Code
		want int
	}{
		{dErrors.CodeInvalidAmount, http.StatusBadRequest},
		{dErrors.CodeAccountNotFound, http.StatusNotFound},
		{dErrors.CodeAccountExists, http.StatusConflict},
		{dErrors.CodeConcurrencyConflict, http.StatusConflict},
		{dErrors.CodeInsufficientFunds, http.StatusUnprocessableEntity},
		{dErrors.CodeUnauthorized, http.StatusForbidden},
		{dErrors.CodeUnavailable, http.StatusServiceUnavailable},
		{dErrors.CodeInternal, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := ToHTTPStatus(tc.code); got != tc.want {
			t.Fatalf("ToHTTPStatus(%s) = %d, want %d", tc.code, got, tc.want)
		}
	}
}
