package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/lacanteen/canteen-system/internal/core/domain"
)

func renderError(t *testing.T, err error) (*httptest.ResponseRecorder, map[string]string) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	NewHTTPErrorHandler(zerolog.Nop())(err, c)

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json body: %v", err)
	}
	return rec, body
}

func TestHTTPErrorHandler_DomainErrors(t *testing.T) {
	cases := []struct {
		err      error
		wantCode int
		wantMsg  string
	}{
		{domain.ErrStudentNotFound, http.StatusNotFound, "student not found"},
		{domain.ErrProductNotFound, http.StatusNotFound, "product not found"},
		{domain.ErrInsufficientBalance, http.StatusBadRequest, "insufficient balance"},
		{domain.ErrDuplicateCheckout, http.StatusConflict, "duplicate checkout request"},
		{domain.ErrStudentExists, http.StatusConflict, "student already exists"},
		{domain.ErrUserExists, http.StatusConflict, "user already exists"},
		{domain.ErrInvalidCredentials, http.StatusUnauthorized, "invalid credentials"},
	}
	for _, tc := range cases {
		t.Run(tc.wantMsg, func(t *testing.T) {
			rec, body := renderError(t, tc.err)
			if rec.Code != tc.wantCode {
				t.Fatalf("expected %d, got %d", tc.wantCode, rec.Code)
			}
			if body["error"] != tc.wantMsg {
				t.Fatalf("expected message %q, got %q", tc.wantMsg, body["error"])
			}
		})
	}
}

// Wrapped validation errors keep their descriptive message.
func TestHTTPErrorHandler_WrappedValidationError(t *testing.T) {
	err := fmt.Errorf("%w: empty cart", domain.ErrInvalidCheckout)
	rec, body := renderError(t, err)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if body["error"] != "invalid checkout request: empty cart" {
		t.Fatalf("unexpected message: %q", body["error"])
	}
}

func TestHTTPErrorHandler_EchoError(t *testing.T) {
	rec, body := renderError(t, echo.NewHTTPError(http.StatusForbidden, "forbidden"))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	if body["error"] != "forbidden" {
		t.Fatalf("unexpected message: %q", body["error"])
	}
}

// Unexpected errors never leak their cause to the client.
func TestHTTPErrorHandler_UnexpectedError(t *testing.T) {
	rec, body := renderError(t, errors.New("mongo: connection reset"))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if body["error"] != "internal server error" {
		t.Fatalf("internal detail leaked: %q", body["error"])
	}
}
