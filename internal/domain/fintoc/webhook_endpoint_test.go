package fintoc

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/uniedit/fintoc-gateway/internal/model"
)

func TestFintocDomain_SyncWebhookEndpoint(t *testing.T) {
	ctx := context.Background()
	expectedPayload := map[string]any{
		"url":            "https://shop.example.com/payment/fintoc/webhook",
		"enabled_events": SupportedWebhookEvents,
	}

	t.Run("registers a new endpoint", func(t *testing.T) {
		d, deps := newTestDomain(testConfig())
		deps.endpointDB.On("Get", mock.Anything, ProviderCode).Return(nil, nil)
		deps.api.On("SendOrFail", mock.Anything, http.MethodPost, "/v1/webhook_endpoints", expectedPayload, "").
			Return(map[string]any{"id": "we_1"}, nil)
		deps.endpointDB.On("Save", mock.Anything, mock.AnythingOfType("*model.FintocWebhookEndpoint")).Return(nil)

		endpoint, err := d.SyncWebhookEndpoint(ctx)

		require.NoError(t, err)
		assert.Equal(t, "we_1", endpoint.EndpointID)
		assert.Equal(t, testNow, *endpoint.LastSyncAt)
		deps.api.AssertExpectations(t)
	})

	t.Run("updates a known endpoint", func(t *testing.T) {
		d, deps := newTestDomain(testConfig())
		deps.endpointDB.On("Get", mock.Anything, ProviderCode).Return(&model.FintocWebhookEndpoint{EndpointID: "we_1"}, nil)
		deps.api.On("Send", mock.Anything, http.MethodPut, "/v1/webhook_endpoints/we_1", expectedPayload, "").
			Return(http.StatusOK, map[string]any{"data": map[string]any{"id": "we_1"}}, nil)
		deps.endpointDB.On("Save", mock.Anything, mock.Anything).Return(nil)

		endpoint, err := d.SyncWebhookEndpoint(ctx)

		require.NoError(t, err)
		assert.Equal(t, "we_1", endpoint.EndpointID)
	})

	t.Run("recreates a vanished endpoint", func(t *testing.T) {
		d, deps := newTestDomain(testConfig())
		deps.endpointDB.On("Get", mock.Anything, ProviderCode).Return(&model.FintocWebhookEndpoint{EndpointID: "we_old"}, nil)
		deps.api.On("Send", mock.Anything, http.MethodPut, "/v1/webhook_endpoints/we_old", mock.Anything, "").
			Return(http.StatusNotFound, map[string]any{"error": "not found"}, nil)
		deps.api.On("SendOrFail", mock.Anything, http.MethodPost, "/v1/webhook_endpoints", expectedPayload, "").
			Return(map[string]any{"id": "we_new"}, nil)
		deps.endpointDB.On("Save", mock.Anything, mock.Anything).Return(nil)

		endpoint, err := d.SyncWebhookEndpoint(ctx)

		require.NoError(t, err)
		assert.Equal(t, "we_new", endpoint.EndpointID)
	})

	t.Run("update failure", func(t *testing.T) {
		d, deps := newTestDomain(testConfig())
		deps.endpointDB.On("Get", mock.Anything, ProviderCode).Return(&model.FintocWebhookEndpoint{EndpointID: "we_1"}, nil)
		deps.api.On("Send", mock.Anything, http.MethodPut, mock.Anything, mock.Anything, "").
			Return(http.StatusUnauthorized, map[string]any{"message": "invalid api key"}, nil)

		_, err := d.SyncWebhookEndpoint(ctx)

		assert.ErrorIs(t, err, ErrProviderRequestFailed)
		assert.Contains(t, err.Error(), "invalid api key")
	})

	t.Run("requires credentials", func(t *testing.T) {
		cfg := testConfig()
		cfg.WebhookSecret = ""
		d, _ := newTestDomain(cfg)

		_, err := d.SyncWebhookEndpoint(ctx)

		assert.ErrorIs(t, err, ErrConfiguration)
	})

	t.Run("requires https", func(t *testing.T) {
		cfg := testConfig()
		cfg.PublicBaseURL = "http://localhost:8080"
		d, _ := newTestDomain(cfg)

		_, err := d.SyncWebhookEndpoint(ctx)

		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("missing endpoint id", func(t *testing.T) {
		d, deps := newTestDomain(testConfig())
		deps.endpointDB.On("Get", mock.Anything, ProviderCode).Return(nil, nil)
		deps.api.On("SendOrFail", mock.Anything, http.MethodPost, "/v1/webhook_endpoints", mock.Anything, "").
			Return(map[string]any{}, nil)

		_, err := d.SyncWebhookEndpoint(ctx)

		assert.ErrorIs(t, err, ErrValidation)
	})
}
