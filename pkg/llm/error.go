package llm

import (
	"errors"
	"fmt"
)

// ErrorResponse is the JSON body returned for failed HTTP requests.
type ErrorResponse struct {
	Error string `json:"error"`
}

// WarningResponse is the JSON body returned when required inputs are missing.
type WarningResponse struct {
	Warnings []string `json:"warnings"`
}

// TransportError is the single terminal error of a streaming call: bad
// credentials, unreachable network, malformed request or a non-success status.
type TransportError struct {
	Provider string

	// StatusCode is the HTTP status returned by the service, 0 if none was received.
	StatusCode int

	Err error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// AsTransportError wraps err unless it already is a TransportError.
func AsTransportError(provider string, statusCode int, err error) *TransportError {
	if err == nil {
		return nil
	}
	var te *TransportError
	if errors.As(err, &te) {
		return te
	}
	return &TransportError{Provider: provider, StatusCode: statusCode, Err: err}
}
