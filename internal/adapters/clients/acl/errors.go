package acl

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/aqwal-app/aqwal/internal/adapters/clients"
	"github.com/aqwal-app/aqwal/internal/domain"
)

// tableError is the error payload a PostgREST-style server returns.
// All fields are optional in practice.
type tableError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

// parseTableError attempts to decode an error body. Returns nil when
// the body is empty or not the expected shape.
func parseTableError(body io.Reader) *tableError {
	if body == nil {
		return nil
	}

	var te tableError
	if err := json.NewDecoder(body).Decode(&te); err != nil {
		return nil
	}

	if te.Code == "" && te.Message == "" {
		return nil
	}

	return &te
}

// mapTableError maps a failed request against the quote table to a
// domain error. Either resp or clientErr is non-nil.
func mapTableError(resp *http.Response, clientErr error, operation string) error {
	if clientErr != nil {
		return mapClientError(clientErr, operation)
	}

	if resp == nil {
		return domain.NewUnavailableError(serviceName, "no response received")
	}

	message := fmt.Sprintf("%s failed with status %d", operation, resp.StatusCode)
	if te := parseTableError(resp.Body); te != nil && te.Message != "" {
		message = te.Message
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return domain.NewNotFoundError(serviceName, "")

	case resp.StatusCode == http.StatusConflict:
		return domain.NewConflictError(serviceName, message)

	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		// Bad or missing API key. The table is unusable until the
		// operator fixes configuration, so surface it as unavailable.
		return domain.NewUnavailableError(serviceName, "authentication rejected")

	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity:
		return domain.NewValidationError("", message)

	case resp.StatusCode >= http.StatusInternalServerError,
		resp.StatusCode == http.StatusTooManyRequests:
		return domain.NewUnavailableError(serviceName, message)

	default:
		return domain.NewUnavailableError(serviceName, message)
	}
}

// mapClientError translates transport-level failures to domain errors.
func mapClientError(err error, operation string) error {
	switch {
	case errors.Is(err, clients.ErrCircuitOpen):
		return domain.NewUnavailableError(serviceName,
			fmt.Sprintf("circuit breaker open during %s", operation))

	case errors.Is(err, clients.ErrMaxRetriesExceeded):
		return domain.NewUnavailableError(serviceName,
			fmt.Sprintf("max retries exceeded during %s", operation))

	default:
		return domain.NewUnavailableError(serviceName,
			fmt.Sprintf("%s failed: %v", operation, err))
	}
}
