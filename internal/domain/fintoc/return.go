package fintoc

import (
	"context"
	"fmt"

	"github.com/uniedit/fintoc-gateway/internal/model"
	"go.uber.org/zap"
)

// HandleReturn processes a customer coming back from the Fintoc checkout page.
// It never finalizes a transaction: only draft moves to pending.
func (d *fintocDomain) HandleReturn(ctx context.Context, reference, accessToken, checkoutSessionID string, canceled bool) (string, error) {
	if reference == "" || !CheckAccessToken(d.cfg.AccessTokenSecret, accessToken, reference) {
		return "", ErrForbidden
	}

	tx, err := d.txDB.FindByReference(ctx, ProviderCode, reference)
	if err != nil {
		return "", fmt.Errorf("find transaction: %w", err)
	}
	if tx == nil {
		return "", ErrForbidden
	}

	if checkoutSessionID != "" {
		tx.FintocCheckoutSessionID = checkoutSessionID
		if err := d.txDB.UpdateFields(ctx, tx.ID, map[string]any{
			"fintoc_checkout_session_id": checkoutSessionID,
		}); err != nil {
			return "", fmt.Errorf("store checkout session: %w", err)
		}
	}

	if tx.State == model.TransactionStateDraft {
		message := "Returned from Fintoc checkout. Waiting final webhook confirmation."
		if canceled {
			message = "Checkout was canceled on Fintoc. Waiting webhook confirmation."
		}
		tx.TransitionTo(model.TransactionStatePending, message)
		if err := d.txDB.Update(ctx, tx); err != nil {
			return "", fmt.Errorf("update transaction: %w", err)
		}
		d.logger.Info("transaction pending after fintoc return",
			zap.String("reference", reference),
			zap.Bool("canceled", canceled),
		)
	}

	return d.cfg.StatusPagePath, nil
}
