package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Error codes. The set is closed; anything else is reported as CodeInternal.
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"
	CodeInternal     = "INTERNAL_ERROR"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeUpstream     = "UPSTREAM_ERROR"
)

type codeMapping struct {
	http int
	grpc codes.Code
}

var mappings = map[string]codeMapping{
	CodeValidation:   {http.StatusBadRequest, codes.InvalidArgument},
	CodeNotFound:     {http.StatusNotFound, codes.NotFound},
	CodeConflict:     {http.StatusConflict, codes.FailedPrecondition},
	CodeUnauthorized: {http.StatusUnauthorized, codes.Unauthenticated},
	CodeForbidden:    {http.StatusForbidden, codes.PermissionDenied},
	CodeUpstream:     {http.StatusBadGateway, codes.Unavailable},
	CodeInternal:     {http.StatusInternalServerError, codes.Internal},
}

// AppError is the single error type crossing layer boundaries.
type AppError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Err     error       `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// ErrorResponse is the JSON response structure for errors
type ErrorResponse struct {
	Error   ErrorBody `json:"error"`
	TraceID string    `json:"trace_id,omitempty"`
}

// ErrorBody contains error details
type ErrorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// As extracts the AppError from err. Errors of any other type come back as a
// generic internal error so their message never reaches a client.
func As(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		if _, known := mappings[appErr.Code]; known {
			return appErr
		}
	}
	return &AppError{
		Code:    CodeInternal,
		Message: "An internal error occurred",
		Err:     err,
	}
}

// ToJSON converts an error to the standard JSON response
func ToJSON(err error, traceID string) (int, []byte) {
	appErr := As(err)
	message := appErr.Message
	if appErr.Code == CodeInternal {
		message = "An internal error occurred"
	}

	data, _ := json.Marshal(ErrorResponse{
		Error: ErrorBody{
			Code:    appErr.Code,
			Message: message,
			Details: appErr.Details,
		},
		TraceID: traceID,
	})
	return HTTPStatus(appErr), data
}

// HTTPStatus returns the HTTP status code for an error
func HTTPStatus(err error) int {
	return mappings[As(err).Code].http
}

// GRPCStatus converts an error to a gRPC status
func GRPCStatus(err error) error {
	appErr := As(err)
	if appErr.Code == CodeInternal {
		return status.Error(codes.Internal, "internal error")
	}
	return status.Error(mappings[appErr.Code].grpc, appErr.Message)
}

// FromGRPCStatus converts a gRPC status to an AppError
func FromGRPCStatus(err error) *AppError {
	st, ok := status.FromError(err)
	if !ok {
		return NewUpstream("rpc call failed", err)
	}

	code := CodeUpstream
	for c, m := range mappings {
		if m.grpc == st.Code() && c != CodeInternal {
			code = c
			break
		}
	}

	return &AppError{
		Code:    code,
		Message: st.Message(),
		Err:     err,
	}
}

// NewValidation creates a validation error
func NewValidation(message string, details interface{}) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
		Details: details,
	}
}

// NewNotFound creates a not found error
func NewNotFound(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with id '%v' not found", resource, id),
	}
}

// NewConflict creates a conflict error
func NewConflict(message string) *AppError {
	return &AppError{
		Code:    CodeConflict,
		Message: message,
	}
}

// NewInternal creates an internal error
func NewInternal(message string, err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: message,
		Err:     err,
	}
}

// NewUnauthorized creates an unauthorized error
func NewUnauthorized(message string) *AppError {
	return &AppError{
		Code:    CodeUnauthorized,
		Message: message,
	}
}

// NewForbidden creates a forbidden error
func NewForbidden(message string, details interface{}) *AppError {
	return &AppError{
		Code:    CodeForbidden,
		Message: message,
		Details: details,
	}
}

// NewUpstream reports a failure of an external dependency such as the payment gateway.
func NewUpstream(message string, err error) *AppError {
	return &AppError{
		Code:    CodeUpstream,
		Message: message,
		Err:     err,
	}
}

// Is checks if an error matches a specific code
func Is(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// Wrap wraps an error with additional context, keeping the code of an AppError.
func Wrap(err error, message string) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return &AppError{
			Code:    appErr.Code,
			Message: message + ": " + appErr.Message,
			Details: appErr.Details,
			Err:     err,
		}
	}
	return NewInternal(message, err)
}
