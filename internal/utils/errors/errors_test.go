package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uniedit/fintoc-gateway/internal/model"
)

func TestAppError(t *testing.T) {
	t.Run("sentinel cause", func(t *testing.T) {
		err := BadRequest("invalid_input", "bad payload")
		assert.Equal(t, "bad payload: bad request", err.Error())
		assert.ErrorIs(t, err, ErrBadRequest)
	})

	t.Run("wraps cause", func(t *testing.T) {
		cause := errors.New("redis down")
		err := Internal("cache failure", cause)
		assert.Equal(t, "cache failure: redis down", err.Error())
		assert.ErrorIs(t, err, cause)
	})

	t.Run("message only", func(t *testing.T) {
		err := &AppError{Code: "x", Message: "plain", StatusCode: http.StatusTeapot}
		assert.Equal(t, "plain", err.Error())
	})
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		status int
		code   string
		msg    string
	}{
		{"unauthorized default", Unauthorized("unauthorized", ""), http.StatusUnauthorized, "unauthorized", "authentication required"},
		{"forbidden default", Forbidden(""), http.StatusForbidden, "forbidden", "access denied"},
		{"conflict", Conflict("request_in_progress", "busy"), http.StatusConflict, "request_in_progress", "busy"},
		{"unprocessable", Unprocessable("idempotency_key_reused", "reused"), http.StatusUnprocessableEntity, "idempotency_key_reused", "reused"},
		{"rate limited default", RateLimited(""), http.StatusTooManyRequests, "rate_limit_exceeded", "too many requests"},
		{"payload too large", PayloadTooLarge(1024), http.StatusRequestEntityTooLarge, "payload_too_large", "request body exceeds 1024 bytes"},
		{"invalid input", InvalidInput(errors.New("Key: 'Reference' failed")), http.StatusBadRequest, "invalid_input", "invalid request"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.StatusCode)
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.msg, tt.err.Message)
		})
	}
}

func TestAbort(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Abort(c, Forbidden("admin scope required"))

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusForbidden, w.Code)
	var resp model.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "forbidden", resp.Code)
	assert.Equal(t, "admin scope required", resp.Message)
	assert.Empty(t, resp.Details)
}

func TestInvalidInputDetails(t *testing.T) {
	err := InvalidInput(errors.New("Key: 'CreateTransactionRequest.Reference' failed on the 'required' tag"))

	resp := err.ToResponse()
	assert.Equal(t, "invalid_input", resp.Code)
	assert.Equal(t, "Key: 'CreateTransactionRequest.Reference' failed on the 'required' tag", resp.Details)
	assert.ErrorIs(t, err, ErrBadRequest)

	assert.Empty(t, InvalidInput(nil).Details)
}

func TestGetStatusCode(t *testing.T) {
	tests := []struct {
		err      error
		expected int
	}{
		{Conflict("c", "m"), http.StatusConflict},
		{fmt.Errorf("wrapped: %w", RateLimited("")), http.StatusTooManyRequests},
		{ErrUnauthorized, http.StatusUnauthorized},
		{fmt.Errorf("x: %w", ErrForbidden), http.StatusForbidden},
		{ErrUnprocessable, http.StatusUnprocessableEntity},
		{fmt.Errorf("read body: %w", ErrTooLarge), http.StatusRequestEntityTooLarge},
		{errors.New("unknown"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, GetStatusCode(tt.err), tt.err.Error())
	}
}
