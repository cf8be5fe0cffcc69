package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/akuzmenko/adsmith/internal/googleads"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", &ErrValidation{Field: "url", Message: "required"}, http.StatusBadRequest},
		{"unroutable question", &googleads.UnroutableError{Question: "weather"}, http.StatusBadRequest},
		{"invalid credentials", &ErrInvalidCredentials{}, http.StatusUnauthorized},
		{"not found", &ErrNotFound{Resource: "report", Name: "x.xlsx"}, http.StatusNotFound},
		{"ads not configured", &ErrAdsNotConfigured{}, http.StatusServiceUnavailable},
		{"upstream API error", &googleads.APIError{StatusCode: 400, Message: "bad GAQL"}, http.StatusBadGateway},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatus(tt.err); got != tt.want {
				t.Errorf("expected status %d, got %d", tt.want, got)
			}
		})
	}
}

func TestErrValidation_Message(t *testing.T) {
	err := &ErrValidation{Field: "url", Message: "required"}
	want := "validation error: url - required"
	if err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}
}

func TestErrAdsNotConfigured_Unwrap(t *testing.T) {
	cause := fmt.Errorf("missing credentials")
	err := &ErrAdsNotConfigured{Cause: cause}

	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
	if err.Error() != "google ads is not configured: missing credentials" {
		t.Errorf("unexpected message %q", err.Error())
	}

	bare := &ErrAdsNotConfigured{}
	if bare.Error() != "google ads is not configured" {
		t.Errorf("unexpected message %q", bare.Error())
	}
}
