package fintoc

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/uniedit/fintoc-gateway/internal/model"
	"go.uber.org/zap"
)

// RequestRefund creates a refund transaction for a paid transaction and submits it to Fintoc.
// amount is in minor units; zero (or the full amount) refunds everything.
func (d *fintocDomain) RequestRefund(ctx context.Context, reference string, amount int64) (*model.Transaction, error) {
	source, err := d.getTransaction(ctx, reference)
	if err != nil {
		return nil, err
	}
	if source.IsRefund() {
		return nil, validationErrorf("A refund transaction cannot be refunded.")
	}
	if source.FintocPaymentIntentID == "" {
		return nil, validationErrorf(
			"Cannot create Fintoc refund because payment_intent_id is missing on the source transaction.")
	}
	if amount < 0 || amount > source.Amount {
		return nil, validationErrorf("Refund amount must be between 0 and %d.", source.Amount)
	}
	if amount == 0 {
		amount = source.Amount
	}

	refundReference, err := d.nextRefundReference(ctx, source)
	if err != nil {
		return nil, err
	}

	sourceID := source.ID
	refundTx := &model.Transaction{
		Reference:           refundReference,
		ProviderCode:        ProviderCode,
		Operation:           model.TransactionOperationRefund,
		State:               model.TransactionStateDraft,
		Amount:              amount,
		Currency:            source.Currency,
		CustomerEmail:       source.CustomerEmail,
		PartnerID:           source.PartnerID,
		PaymentMethodCode:   source.PaymentMethodCode,
		SourceTransactionID: &sourceID,
	}
	if err := d.txDB.Create(ctx, refundTx); err != nil {
		return nil, fmt.Errorf("create refund transaction: %w", err)
	}

	payload := map[string]any{
		"resource_id":   source.FintocPaymentIntentID,
		"resource_type": MethodPaymentIntent,
	}
	if amount != source.Amount {
		payload["amount"] = amount
	}

	response, err := d.api.SendOrFail(ctx, http.MethodPost, "/v1/refunds", payload,
		BuildIdempotencyKey(refundTx.ID, IdempotencySuffixRefund))
	if err != nil {
		d.failRefund(ctx, refundTx, err.Error())
		return nil, err
	}

	refundID := stringField(response, "id")
	if refundID == "" {
		err := validationErrorf("Fintoc did not return a refund ID.")
		d.failRefund(ctx, refundTx, err.Error())
		return nil, err
	}

	refundTx.FintocRefundID = refundID
	refundTx.FintocPaymentIntentID = source.FintocPaymentIntentID
	refundTx.ProviderReference = refundID

	status := strings.ToLower(stringField(response, "status"))
	switch status {
	case "succeeded", "done", "success":
		refundTx.TransitionTo(model.TransactionStateDone, "")
	case "failed", "rejected", "error":
		refundTx.TransitionTo(model.TransactionStateError, "Fintoc reported an immediate refund failure.")
	default:
		refundTx.TransitionTo(model.TransactionStatePending, "")
	}

	if err := d.txDB.Update(ctx, refundTx); err != nil {
		return nil, fmt.Errorf("update refund transaction: %w", err)
	}

	d.logger.Info("fintoc refund requested",
		zap.String("reference", refundTx.Reference),
		zap.String("source_reference", source.Reference),
		zap.String("refund_id", refundID),
		zap.String("status", status),
	)

	if refundTx.State == model.TransactionStateDone {
		d.stateMachine.signalPostProcess(ctx, refundTx)
	}
	return refundTx, nil
}

// CancelRefund asks Fintoc to cancel a pending refund and cancels it locally.
func (d *fintocDomain) CancelRefund(ctx context.Context, reference string) (*model.Transaction, error) {
	tx, err := d.getTransaction(ctx, reference)
	if err != nil {
		return nil, err
	}
	if !tx.IsRefund() {
		return nil, validationErrorf("This action is only available for Fintoc refund transactions.")
	}
	if tx.State.IsTerminal() {
		return nil, validationErrorf("Only draft/pending refunds can be cancelled.")
	}
	if tx.FintocRefundID == "" {
		return nil, validationErrorf("No Fintoc refund ID found on this transaction.")
	}

	endpoint := fmt.Sprintf("/v1/refunds/%s/cancel", tx.FintocRefundID)
	if _, err := d.api.SendOrFail(ctx, http.MethodPost, endpoint, map[string]any{},
		BuildIdempotencyKey(tx.ID, IdempotencySuffixCancel)); err != nil {
		return nil, err
	}

	tx.TransitionTo(model.TransactionStateCanceled, "Refund cancellation requested in Fintoc.")
	if err := d.txDB.Update(ctx, tx); err != nil {
		return nil, fmt.Errorf("update refund transaction: %w", err)
	}

	d.logger.Info("fintoc refund cancellation requested",
		zap.String("reference", tx.Reference),
		zap.String("refund_id", tx.FintocRefundID),
	)
	return tx, nil
}

// nextRefundReference returns R-<reference>, suffixed with a counter for later refunds.
func (d *fintocDomain) nextRefundReference(ctx context.Context, source *model.Transaction) (string, error) {
	count, err := d.txDB.CountRefunds(ctx, source.ID)
	if err != nil {
		return "", fmt.Errorf("count refunds: %w", err)
	}
	if count == 0 {
		return "R-" + source.Reference, nil
	}
	return fmt.Sprintf("R-%s-%d", source.Reference, count), nil
}

// failRefund moves a refund that never reached Fintoc's books to error.
func (d *fintocDomain) failRefund(ctx context.Context, refundTx *model.Transaction, message string) {
	refundTx.TransitionTo(model.TransactionStateError, message)
	if err := d.txDB.Update(ctx, refundTx); err != nil {
		d.logger.Error("failed to record refund request failure",
			zap.String("reference", refundTx.Reference),
			zap.Error(err),
		)
	}
}
