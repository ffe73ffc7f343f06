package fintoc

import (
	"context"
	"fmt"

	"github.com/uniedit/fintoc-gateway/internal/model"
	"github.com/uniedit/fintoc-gateway/internal/port/outbound"
	"go.uber.org/zap"
)

// transition describes the effect of one event type on a transaction.
type transition struct {
	target       model.TransactionState
	extraAllowed []model.TransactionState
	message      string
	// useReason prefers the notification reason over message.
	useReason   bool
	postProcess bool
}

var transitions = map[string]transition{
	EventCheckoutSessionFinished: {
		target:  model.TransactionStatePending,
		message: "Checkout session finished. Waiting final payment intent status from webhook.",
	},
	EventPaymentIntentSucceeded: {
		target:       model.TransactionStateDone,
		extraAllowed: []model.TransactionState{model.TransactionStateCanceled},
	},
	EventPaymentIntentFailed: {
		target:    model.TransactionStateError,
		message:   "The payment intent failed in Fintoc.",
		useReason: true,
	},
	EventPaymentIntentRejected: {
		target:    model.TransactionStateCanceled,
		message:   "The payment intent failed in Fintoc.",
		useReason: true,
	},
	EventRefundInProgress: {
		target:       model.TransactionStatePending,
		extraAllowed: []model.TransactionState{model.TransactionStateDraft},
	},
	EventRefundSucceeded: {
		target:       model.TransactionStateDone,
		extraAllowed: []model.TransactionState{model.TransactionStatePending, model.TransactionStateDraft},
		postProcess:  true,
	},
	EventRefundFailed: {
		target:    model.TransactionStateError,
		message:   "Fintoc reported a failed refund.",
		useReason: true,
	},
}

// StateMachine applies notification driven transitions to transactions.
type StateMachine struct {
	txDB   outbound.TransactionDatabasePort
	signal outbound.PostProcessSignalPort
	logger *zap.Logger
}

// NewStateMachine creates a state machine. signal may be nil.
func NewStateMachine(txDB outbound.TransactionDatabasePort, signal outbound.PostProcessSignalPort, logger *zap.Logger) *StateMachine {
	return &StateMachine{txDB: txDB, signal: signal, logger: logger}
}

// Apply persists the identifiers carried by n on tx and then applies the
// transition registered for n.EventType. Unknown event types are ignored.
func (s *StateMachine) Apply(ctx context.Context, tx *model.Transaction, n Notification) error {
	if n.EventType == "" {
		return validationErrorf("Fintoc notification is missing event type.")
	}

	if err := s.persistIdentifiers(ctx, tx, n); err != nil {
		return err
	}

	t, ok := transitions[n.EventType]
	if !ok {
		s.logger.Info("ignoring unsupported fintoc event type",
			zap.String("event_type", n.EventType),
			zap.String("reference", tx.Reference),
		)
		return nil
	}

	message := t.message
	if t.useReason && n.Reason != "" {
		message = n.Reason
	}

	from := tx.State
	if !tx.TransitionTo(t.target, message, t.extraAllowed...) {
		s.logger.Info("transition not allowed from current state",
			zap.String("reference", tx.Reference),
			zap.String("event_type", n.EventType),
			zap.String("from", string(from)),
			zap.String("to", string(t.target)),
		)
		return nil
	}

	if err := s.txDB.Update(ctx, tx); err != nil {
		return fmt.Errorf("update transaction state: %w", err)
	}

	s.logger.Info("transaction state updated",
		zap.String("reference", tx.Reference),
		zap.String("event_type", n.EventType),
		zap.String("from", string(from)),
		zap.String("to", string(tx.State)),
	)

	if t.postProcess {
		s.signalPostProcess(ctx, tx)
	}
	return nil
}

// persistIdentifiers writes the Fintoc ids carried by n before any transition.
func (s *StateMachine) persistIdentifiers(ctx context.Context, tx *model.Transaction, n Notification) error {
	updates := map[string]any{}
	if n.PaymentIntentID != "" {
		updates["fintoc_payment_intent_id"] = n.PaymentIntentID
		tx.FintocPaymentIntentID = n.PaymentIntentID
		if !tx.IsRefund() {
			updates["provider_reference"] = n.PaymentIntentID
			tx.ProviderReference = n.PaymentIntentID
		}
	}
	if n.CheckoutSessionID != "" {
		updates["fintoc_checkout_session_id"] = n.CheckoutSessionID
		tx.FintocCheckoutSessionID = n.CheckoutSessionID
	}
	if n.RefundID != "" && tx.IsRefund() {
		updates["fintoc_refund_id"] = n.RefundID
		updates["provider_reference"] = n.RefundID
		tx.FintocRefundID = n.RefundID
		tx.ProviderReference = n.RefundID
	}
	if len(updates) == 0 {
		return nil
	}
	if err := s.txDB.UpdateFields(ctx, tx.ID, updates); err != nil {
		return fmt.Errorf("persist fintoc identifiers: %w", err)
	}
	return nil
}

// signalPostProcess is fire-and-forget: failures are logged only.
func (s *StateMachine) signalPostProcess(ctx context.Context, tx *model.Transaction) {
	if s.signal == nil {
		return
	}
	if err := s.signal.Signal(ctx, tx); err != nil {
		s.logger.Warn("failed to signal transaction post-processing",
			zap.String("reference", tx.Reference),
			zap.Error(err),
		)
	}
}
