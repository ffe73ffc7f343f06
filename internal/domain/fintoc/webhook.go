package fintoc

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/uniedit/fintoc-gateway/internal/utils/requestctx"
	"go.uber.org/zap"
)

// WebhookStatus is the acknowledgement returned to Fintoc.
type WebhookStatus string

const (
	WebhookStatusOK        WebhookStatus = "ok"
	WebhookStatusDuplicate WebhookStatus = "duplicate"
	WebhookStatusIgnored   WebhookStatus = "ignored"
)

// HandleWebhook authenticates, deduplicates and processes one webhook delivery.
// Processing failures are recorded on the stored event and reported as ignored.
func (d *fintocDomain) HandleWebhook(ctx context.Context, signatureHeader string, rawBody []byte) (WebhookStatus, error) {
	log := requestctx.Logger(ctx, d.logger)
	if signatureHeader == "" {
		log.Warn("received fintoc webhook without signature header")
		return "", ErrInvalidSignature
	}
	if !VerifySignature(d.cfg.WebhookSecret, signatureHeader, rawBody, d.cfg.WebhookTolerance, d.now()) {
		log.Warn("received fintoc webhook with invalid signature")
		return "", ErrInvalidSignature
	}

	var payload map[string]any
	if err := json.Unmarshal(rawBody, &payload); err != nil || payload == nil {
		return "", ErrMalformedPayload
	}
	eventID := stringField(payload, "id")
	eventType := stringField(payload, "type")
	if eventID == "" || eventType == "" {
		return "", ErrMalformedPayload
	}

	event, duplicate, err := d.eventStore.RecordIfNew(ctx, eventID, eventType, ProviderCode, rawBody)
	if err != nil {
		return "", err
	}
	if duplicate {
		log.Info("fintoc webhook event already received", zap.String("event_id", eventID))
		return WebhookStatusDuplicate, nil
	}

	notification := Normalize(payload)
	txID, processErr := d.processNotification(ctx, notification)
	if processErr != nil {
		log.Error("unable to process fintoc webhook event",
			zap.String("event_id", eventID),
			zap.String("event_type", eventType),
			zap.Error(processErr),
		)
		if err := d.eventStore.MarkError(ctx, event, processErr); err != nil {
			log.Error("failed to record webhook event error", zap.String("event_id", eventID), zap.Error(err))
		}
		return WebhookStatusIgnored, nil
	}

	if err := d.eventStore.MarkProcessed(ctx, event, txID); err != nil {
		log.Error("failed to mark webhook event processed", zap.String("event_id", eventID), zap.Error(err))
	}
	return WebhookStatusOK, nil
}

func (d *fintocDomain) processNotification(ctx context.Context, n Notification) (int64, error) {
	tx, err := d.matcher.Match(ctx, n)
	if err != nil {
		return 0, err
	}
	if err := d.stateMachine.Apply(ctx, tx, n); err != nil {
		return 0, fmt.Errorf("apply %s to %s: %w", n.EventType, tx.Reference, err)
	}
	return tx.ID, nil
}
