// Package server provides the HTTP REST API for the ad copy generator.
package server

import (
	"fmt"
	"net/http"

	"github.com/akuzmenko/adsmith/internal/googleads"
)

// ErrInvalidCredentials indicates failed authentication
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid username or password"
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrNotFound indicates a requested resource does not exist
type ErrNotFound struct {
	Resource string
	Name     string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.Name)
}

// ErrAdsNotConfigured indicates Google Ads credentials are missing or invalid
type ErrAdsNotConfigured struct {
	Cause error
}

func (e *ErrAdsNotConfigured) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("google ads is not configured: %v", e.Cause)
	}
	return "google ads is not configured"
}

func (e *ErrAdsNotConfigured) Unwrap() error {
	return e.Cause
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	switch err.(type) {
	case *ErrValidation, *googleads.UnroutableError:
		return http.StatusBadRequest
	case *ErrInvalidCredentials:
		return http.StatusUnauthorized
	case *ErrNotFound:
		return http.StatusNotFound
	case *ErrAdsNotConfigured:
		return http.StatusServiceUnavailable
	case *googleads.APIError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
