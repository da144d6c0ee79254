package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/containerd/errdefs"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evalgo.org/assetd/internal/validation"
)

func TestAPIError_Error(t *testing.T) {
	tests := []struct {
		name     string
		apiError *APIError
		want     string
	}{
		{
			name:     "error with details",
			apiError: &APIError{Code: 400, Message: "Bad Request", Details: "Invalid JSON format"},
			want:     "Bad Request: Invalid JSON format",
		},
		{
			name:     "error without details",
			apiError: &APIError{Code: 404, Message: "Not Found"},
			want:     "Not Found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.apiError.Error())
			assert.Equal(t, tt.apiError.Code, tt.apiError.StatusCode())
		})
	}
}

func TestErrorConstructors(t *testing.T) {
	nf := NotFoundError("Asset", "42")
	assert.Equal(t, http.StatusNotFound, nf.Code)
	assert.Equal(t, "Asset not found", nf.Message)
	assert.Equal(t, "42", nf.Context["id"])

	v := ValidationError("Validation failed", map[string]string{"newAssetCode": "is required"})
	assert.Equal(t, http.StatusBadRequest, v.Code)
	assert.Equal(t, "is required", v.FieldError["newAssetCode"])

	assert.Equal(t, http.StatusConflict, ConflictError("Conflict", "taken").Code)
	assert.Equal(t, http.StatusInternalServerError, InternalError("boom", "").Code)
}

func TestFromDomainError(t *testing.T) {
	verr := validation.Errors{{Field: "name", Message: "is required"}}
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid argument", fmt.Errorf("bad code: %w", errdefs.ErrInvalidArgument), http.StatusBadRequest},
		{"not found", fmt.Errorf("asset 3: %w", errdefs.ErrNotFound), http.StatusNotFound},
		{"conflict", fmt.Errorf("code taken: %w", errdefs.ErrConflict), http.StatusConflict},
		{"validation", &verr, http.StatusBadRequest},
		{"api error", ConflictError("x", "y"), http.StatusConflict},
		{"other", errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, fromDomainError(tt.err).Code)
		})
	}

	got := fromDomainError(fmt.Errorf("asset 3: %w", errdefs.ErrNotFound))
	assert.Equal(t, "asset 3: not found", got.Details)
	assert.Equal(t, map[string]string{"name": "is required"}, fromDomainError(&verr).FieldError)
}

func TestHTTPErrorHandlerHidesInternalDetails(t *testing.T) {
	for _, debug := range []bool{false, true} {
		e := echo.New()
		e.Debug = debug
		e.HTTPErrorHandler = HTTPErrorHandler
		e.GET("/", func(c echo.Context) error { return errors.New("pq: connection refused") })

		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusInternalServerError, rec.Code)

		var body APIError
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "Internal server error", body.Message)
		if debug {
			assert.Equal(t, "pq: connection refused", body.Details)
		} else {
			assert.NotContains(t, body.Details, "pq:")
		}
	}
}

func TestHTTPErrorHandlerEchoErrors(t *testing.T) {
	e := echo.New()
	e.HTTPErrorHandler = HTTPErrorHandler

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body APIError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Resource not found", body.Message)
}

func TestGetHTTPMessage(t *testing.T) {
	tests := []struct {
		name string
		code int
		want string
	}{
		{"Bad Request", http.StatusBadRequest, "Bad request"},
		{"Not Found", http.StatusNotFound, "Resource not found"},
		{"Internal Server Error", http.StatusInternalServerError, "Internal server error"},
		{"Unknown Code", 999, http.StatusText(999)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, getHTTPMessage(tt.code))
		})
	}
}
