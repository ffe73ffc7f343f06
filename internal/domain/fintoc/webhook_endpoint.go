package fintoc

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/uniedit/fintoc-gateway/internal/model"
	"go.uber.org/zap"
)

// SyncWebhookEndpoint creates or updates the webhook endpoint registered at Fintoc.
func (d *fintocDomain) SyncWebhookEndpoint(ctx context.Context) (*model.FintocWebhookEndpoint, error) {
	if d.cfg.SecretKey == "" {
		return nil, fmt.Errorf("%w: set the secret key before registering the webhook", ErrConfiguration)
	}
	if d.cfg.WebhookSecret == "" {
		return nil, fmt.Errorf("%w: set the webhook secret before registering the webhook", ErrConfiguration)
	}

	webhookURL := d.cfg.WebhookURL()
	if !strings.HasPrefix(webhookURL, "https://") {
		return nil, validationErrorf("Webhook Endpoint URL must start with https://")
	}

	payload := map[string]any{
		"url":            webhookURL,
		"enabled_events": SupportedWebhookEvents,
	}

	current, err := d.endpointDB.Get(ctx, ProviderCode)
	if err != nil {
		return nil, fmt.Errorf("load webhook endpoint: %w", err)
	}

	var response map[string]any
	if current != nil && current.EndpointID != "" {
		response, err = d.updateWebhookEndpoint(ctx, current.EndpointID, payload)
	} else {
		response, err = d.api.SendOrFail(ctx, http.MethodPost, "/v1/webhook_endpoints", payload, "")
	}
	if err != nil {
		return nil, err
	}

	endpointID := stringField(response, "id")
	if endpointID == "" {
		endpointID = stringField(mapField(response, "data"), "id")
	}
	if endpointID == "" {
		return nil, validationErrorf("Fintoc did not return a webhook endpoint ID. Please verify your credentials.")
	}

	now := d.now()
	endpoint := &model.FintocWebhookEndpoint{
		Provider:   ProviderCode,
		EndpointID: endpointID,
		URL:        webhookURL,
		LastSyncAt: &now,
	}
	if err := d.endpointDB.Save(ctx, endpoint); err != nil {
		return nil, fmt.Errorf("save webhook endpoint: %w", err)
	}

	d.logger.Info("fintoc webhook endpoint synchronized",
		zap.String("endpoint_id", endpointID),
		zap.String("url", webhookURL),
	)
	return endpoint, nil
}

// updateWebhookEndpoint updates a known endpoint, recreating it when Fintoc no longer has it.
func (d *fintocDomain) updateWebhookEndpoint(ctx context.Context, endpointID string, payload map[string]any) (map[string]any, error) {
	status, body, err := d.api.Send(ctx, http.MethodPut, "/v1/webhook_endpoints/"+endpointID, payload, "")
	if err != nil {
		return nil, err
	}
	if status < http.StatusBadRequest {
		return body, nil
	}
	if status == http.StatusNotFound {
		d.logger.Info("fintoc webhook endpoint not found, registering a new one",
			zap.String("endpoint_id", endpointID),
		)
		return d.api.SendOrFail(ctx, http.MethodPost, "/v1/webhook_endpoints", payload, "")
	}
	return nil, NewProviderRequestError(status, body)
}
