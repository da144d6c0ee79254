package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/containerd/errdefs"
	"github.com/labstack/echo/v4"

	"evalgo.org/assetd/internal/validation"
)

// APIError represents a structured API error with HTTP status code.
type APIError struct {
	Code       int                    `json:"code"`
	Message    string                 `json:"message"`
	Details    string                 `json:"details,omitempty"`
	FieldError map[string]string      `json:"field_errors,omitempty"`
	Context    map[string]interface{} `json:"context,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Details)
	}
	return e.Message
}

// StatusCode returns the HTTP status of the error.
func (e *APIError) StatusCode() int {
	return e.Code
}

// NewAPIError creates a new API error.
func NewAPIError(code int, message string, details string) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// Common error constructors
func BadRequestError(message, details string) *APIError {
	return NewAPIError(http.StatusBadRequest, message, details)
}

func NotFoundError(resource, id string) *APIError {
	return &APIError{
		Code:    http.StatusNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Context: map[string]interface{}{"id": id},
	}
}

func ValidationError(message string, fieldErrors map[string]string) *APIError {
	return &APIError{
		Code:       http.StatusBadRequest,
		Message:    message,
		FieldError: fieldErrors,
	}
}

func InternalError(message, details string) *APIError {
	return NewAPIError(http.StatusInternalServerError, message, details)
}

func ConflictError(message, details string) *APIError {
	return NewAPIError(http.StatusConflict, message, details)
}

// fromDomainError maps errors returned by the domain packages onto API
// errors by their errdefs kind.
func fromDomainError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	var verr *validation.Errors
	if errors.As(err, &verr) {
		return ValidationError("Validation failed", verr.Fields())
	}

	switch {
	case errdefs.IsInvalidArgument(err):
		return BadRequestError(getHTTPMessage(http.StatusBadRequest), err.Error())
	case errdefs.IsNotFound(err):
		return NewAPIError(http.StatusNotFound, getHTTPMessage(http.StatusNotFound), err.Error())
	case errdefs.IsConflict(err):
		return ConflictError(getHTTPMessage(http.StatusConflict), err.Error())
	}
	return InternalError("Internal server error", err.Error())
}

// HTTPErrorHandler is a custom error handler for Echo.
func HTTPErrorHandler(err error, c echo.Context) {
	// Don't send response if already sent
	if c.Response().Committed {
		return
	}

	var apiErr *APIError
	var he *echo.HTTPError
	if errors.As(err, &he) {
		apiErr = &APIError{
			Code:    he.Code,
			Message: getHTTPMessage(he.Code),
			Details: fmt.Sprintf("%v", he.Message),
		}
	} else {
		apiErr = fromDomainError(err)
	}

	// Don't expose internal errors in production
	if apiErr.Code == http.StatusInternalServerError && !c.Echo().Debug {
		apiErr = &APIError{
			Code:    apiErr.Code,
			Message: apiErr.Message,
			Details: "An internal error occurred. Please try again later.",
		}
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(apiErr.Code)
	} else {
		err = c.JSON(apiErr.Code, apiErr)
	}
	if err != nil {
		c.Logger().Error(err)
	}
}

// getHTTPMessage returns a user-friendly message for HTTP status codes.
func getHTTPMessage(code int) string {
	messages := map[int]string{
		http.StatusBadRequest:            "Bad request",
		http.StatusUnauthorized:          "Unauthorized",
		http.StatusForbidden:             "Forbidden",
		http.StatusNotFound:              "Resource not found",
		http.StatusMethodNotAllowed:      "Method not allowed",
		http.StatusConflict:              "Conflict",
		http.StatusRequestEntityTooLarge: "Request entity too large",
		http.StatusUnprocessableEntity:   "Unprocessable entity",
		http.StatusTooManyRequests:       "Too many requests",
		http.StatusInternalServerError:   "Internal server error",
		http.StatusBadGateway:            "Bad gateway",
		http.StatusServiceUnavailable:    "Service unavailable",
	}

	if msg, ok := messages[code]; ok {
		return msg
	}
	return http.StatusText(code)
}
