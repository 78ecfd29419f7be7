package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotFound(t *testing.T) {
	err := NotFound("listing", "0xabc")

	assert.Equal(t, "NOT_FOUND", err.Code)
	assert.Equal(t, http.StatusNotFound, err.Status)
	assert.Contains(t, err.Message, "listing")
	assert.Contains(t, err.Message, "0xabc")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestInvalidInput(t *testing.T) {
	err := InvalidInput("quantity must be positive")

	assert.Equal(t, "INVALID_INPUT", err.Code)
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestConfiguration(t *testing.T) {
	err := Configuration("marketplace API key is not set")

	assert.Equal(t, "CONFIGURATION_ERROR", err.Code)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.True(t, errors.Is(err, ErrConfiguration))
}

func TestUpstream(t *testing.T) {
	cause := fmt.Errorf("status 503")
	err := Upstream("marketplace returned an error", cause)

	assert.Equal(t, "UPSTREAM_ERROR", err.Code)
	assert.Equal(t, http.StatusBadGateway, err.Status)
	assert.True(t, errors.Is(err, ErrUpstream))
	assert.True(t, errors.Is(err, cause))
}

func TestUpstream_NilCause(t *testing.T) {
	err := Upstream("orders field missing", nil)

	assert.True(t, errors.Is(err, ErrUpstream))
}

func TestAppError_ErrorString(t *testing.T) {
	err := &AppError{Code: "X", Message: "boom"}
	assert.Equal(t, "X: boom", err.Error())

	wrapped := &AppError{Code: "X", Message: "boom", Err: errors.New("cause")}
	assert.Equal(t, "X: boom: cause", wrapped.Error())
}

func TestHTTPStatus_AppError(t *testing.T) {
	assert.Equal(t, http.StatusBadGateway, HTTPStatus(Upstream("x", nil)))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(NotFound("cart", "s1")))
}

func TestHTTPStatus_WrappedSentinels(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, HTTPStatus(fmt.Errorf("ctx: %w", ErrNotFound)))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(fmt.Errorf("ctx: %w", ErrInvalidInput)))
	assert.Equal(t, http.StatusBadGateway, HTTPStatus(fmt.Errorf("ctx: %w", ErrUpstream)))
	assert.Equal(t, http.StatusServiceUnavailable, HTTPStatus(fmt.Errorf("ctx: %w", ErrUnavailable)))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("unknown")))
}
