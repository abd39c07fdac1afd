package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors(t *testing.T) {
	cause := fmt.Errorf("connection refused")

	tests := []struct {
		name       string
		err        *Error
		wantType   ErrorType
		wantStatus int
		wantCause  error
	}{
		{"validation", ValidationError("price must not be negative"), TypeValidation, http.StatusBadRequest, nil},
		{"not found", NotFoundError("Menu item not found"), TypeNotFound, http.StatusNotFound, nil},
		{"conflict", ConflictError("already exists"), TypeConflict, http.StatusConflict, nil},
		{"internal", InternalError("failed to save menu item", cause), TypeInternal, http.StatusInternalServerError, cause},
		{"external", ExternalError("places api failed", cause), TypeExternal, http.StatusBadGateway, cause},
		{"unavailable", UnavailableError("reviews are not configured", nil), TypeUnavailable, http.StatusServiceUnavailable, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantType, tt.err.Type)
			assert.Equal(t, tt.wantStatus, tt.err.HTTPStatus())
			assert.Equal(t, tt.wantCause, tt.err.Cause)
			assert.NotNil(t, tt.err.Context)
			assert.Contains(t, tt.err.Error(), string(tt.wantType))
			assert.NotContains(t, tt.err.Error(), "<nil>")
		})
	}
}

func TestHTTPStatusUnknownType(t *testing.T) {
	err := &Error{Type: ErrorType("unknown")}
	assert.Equal(t, http.StatusInternalServerError, err.HTTPStatus())
}

func TestErrorStringWithCause(t *testing.T) {
	err := InternalError("wrapper message", fmt.Errorf("underlying issue"))

	assert.Equal(t, "internal: wrapper message: underlying issue", err.Error())
}

func TestWithContextChaining(t *testing.T) {
	err := ValidationError("invalid menu item").
		WithContext("field", "price").
		WithField("value", -1)

	assert.Len(t, err.Context, 2)
	assert.Equal(t, "price", err.Context["field"])
	assert.Equal(t, -1, err.Context["value"])
}

func TestWithContextNilMap(t *testing.T) {
	err := &Error{Type: TypeValidation, Message: "test"}

	err = err.WithContext("key", "value")

	assert.Equal(t, "value", err.Context["key"])
}

func TestToResponse(t *testing.T) {
	resp := ValidationError("name is required").WithContext("field", "name").ToResponse()

	assert.Equal(t, "name is required", resp.Error)
	assert.Equal(t, TypeValidation, resp.Type)
	assert.Equal(t, "name", resp.Context["field"])
}

func TestUnwrap(t *testing.T) {
	rootCause := fmt.Errorf("root")
	wrapped := ExternalError("wrapped", rootCause)

	assert.Equal(t, rootCause, errors.Unwrap(wrapped))
	assert.True(t, errors.Is(wrapped, rootCause))
	assert.Nil(t, errors.Unwrap(ValidationError("test")))
}

func TestAsStructuredError(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		assert.Nil(t, AsStructuredError(nil))
	})

	t.Run("structured error returned unchanged", func(t *testing.T) {
		original := ValidationError("original")
		assert.Same(t, original, AsStructuredError(original))
	})

	t.Run("wrapped structured error is found", func(t *testing.T) {
		original := NotFoundError("Menu item not found")
		result := AsStructuredError(fmt.Errorf("handler: %w", original))

		require.NotNil(t, result)
		assert.Equal(t, TypeNotFound, result.Type)
		assert.Equal(t, "Menu item not found", result.Message)
	})

	t.Run("plain error becomes internal", func(t *testing.T) {
		original := fmt.Errorf("standard error")
		result := AsStructuredError(original)

		assert.Equal(t, TypeInternal, result.Type)
		assert.Equal(t, "internal server error", result.Message)
		assert.Equal(t, original, result.Cause)
	})
}
