package errors

import (
	"fmt"
	"net/http"
)

// IPC

func EndpointUnreachable(endpoint string, cause error) *AppError {
	return Transport(fmt.Sprintf("endpoint unreachable: %s", endpoint), cause)
}

func UnexpectedStatus(status int) *AppError {
	return Transport(fmt.Sprintf("unexpected http status: %d", status), nil)
}

func ReadBodyFailed(cause error) *AppError {
	return Transport("failed to read response body", cause)
}

func InvalidEnvelope(cause error) *AppError {
	return Decode("response body is not a JSON-RPC envelope", cause)
}

func CallPanicked(label string, recovered error) *AppError {
	return Transport(fmt.Sprintf("call %s panicked", label), recovered)
}

// Calculation

func CalculationFailed(cause error) *AppError {
	return New(ErrTypeInternal, "calculation failed", cause, http.StatusInternalServerError).WithStack()
}

func MissingParameters(want, got int) *AppError {
	return Validation(fmt.Sprintf("product system needs %d parameters, has %d", want, got), nil)
}

func EntityNotFound(entityType, key string) *AppError {
	return NotFound(fmt.Sprintf("%s %s", entityType, key), nil)
}

// Config

func InvalidEndpoint(endpoint string, cause error) *AppError {
	return Config(fmt.Sprintf("invalid endpoint: %s", endpoint), cause)
}

func InvalidQuery(query string, cause error) *AppError {
	return Config(fmt.Sprintf("invalid query: %s", query), cause)
}
