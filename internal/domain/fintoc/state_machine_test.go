package fintoc

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/uniedit/fintoc-gateway/internal/model"
	"go.uber.org/zap"
)

func TestTransactionState_CanTransitionTo(t *testing.T) {
	assert.True(t, model.TransactionStateDraft.CanTransitionTo(model.TransactionStatePending))
	assert.False(t, model.TransactionStatePending.CanTransitionTo(model.TransactionStatePending))
	assert.True(t, model.TransactionStateError.CanTransitionTo(model.TransactionStateDone))
	assert.False(t, model.TransactionStateCanceled.CanTransitionTo(model.TransactionStateDone))
	assert.True(t, model.TransactionStateCanceled.CanTransitionTo(model.TransactionStateDone, model.TransactionStateCanceled))
	assert.False(t, model.TransactionStateDone.CanTransitionTo(model.TransactionStateError))
}

func TestStateMachine_Apply(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()

	t.Run("draft to pending to done", func(t *testing.T) {
		txDB := new(MockTransactionDatabasePort)
		sm := NewStateMachine(txDB, nil, logger)
		tx := &model.Transaction{ID: 1, Reference: "S0001", State: model.TransactionStateDraft}

		txDB.On("UpdateFields", mock.Anything, int64(1), map[string]any{
			"fintoc_checkout_session_id": "cs_1",
		}).Return(nil).Once()
		txDB.On("UpdateFields", mock.Anything, int64(1), map[string]any{
			"fintoc_payment_intent_id": "pi_1",
			"provider_reference":       "pi_1",
		}).Return(nil).Once()
		txDB.On("Update", mock.Anything, tx).Return(nil).Twice()

		err := sm.Apply(ctx, tx, Notification{EventType: EventCheckoutSessionFinished, CheckoutSessionID: "cs_1"})
		assert.NoError(t, err)
		assert.Equal(t, model.TransactionStatePending, tx.State)
		assert.Equal(t, "cs_1", tx.FintocCheckoutSessionID)

		err = sm.Apply(ctx, tx, Notification{EventType: EventPaymentIntentSucceeded, PaymentIntentID: "pi_1"})
		assert.NoError(t, err)
		assert.Equal(t, model.TransactionStateDone, tx.State)
		assert.Equal(t, "pi_1", tx.ProviderReference)
		assert.NotNil(t, tx.LastStateChange)
		txDB.AssertExpectations(t)
	})

	t.Run("rejected cancels with reason", func(t *testing.T) {
		txDB := new(MockTransactionDatabasePort)
		sm := NewStateMachine(txDB, nil, logger)
		tx := &model.Transaction{ID: 2, Reference: "S0002", State: model.TransactionStatePending}

		txDB.On("Update", mock.Anything, tx).Return(nil).Once()

		err := sm.Apply(ctx, tx, Notification{EventType: EventPaymentIntentRejected, Reason: "bank_rejected"})

		assert.NoError(t, err)
		assert.Equal(t, model.TransactionStateCanceled, tx.State)
		assert.Equal(t, "bank_rejected", tx.StateMessage)
	})

	t.Run("failed without reason uses default message", func(t *testing.T) {
		txDB := new(MockTransactionDatabasePort)
		sm := NewStateMachine(txDB, nil, logger)
		tx := &model.Transaction{ID: 3, State: model.TransactionStatePending}

		txDB.On("Update", mock.Anything, tx).Return(nil).Once()

		assert.NoError(t, sm.Apply(ctx, tx, Notification{EventType: EventPaymentIntentFailed}))
		assert.Equal(t, model.TransactionStateError, tx.State)
		assert.Equal(t, "The payment intent failed in Fintoc.", tx.StateMessage)
	})

	t.Run("succeeded recovers a canceled payment", func(t *testing.T) {
		txDB := new(MockTransactionDatabasePort)
		sm := NewStateMachine(txDB, nil, logger)
		tx := &model.Transaction{ID: 4, State: model.TransactionStateCanceled}

		txDB.On("Update", mock.Anything, tx).Return(nil).Once()

		assert.NoError(t, sm.Apply(ctx, tx, Notification{EventType: EventPaymentIntentSucceeded}))
		assert.Equal(t, model.TransactionStateDone, tx.State)
	})

	t.Run("refund succeeded signals post processing", func(t *testing.T) {
		txDB := new(MockTransactionDatabasePort)
		signal := new(MockPostProcessSignalPort)
		sm := NewStateMachine(txDB, signal, logger)
		tx := &model.Transaction{
			ID:        5,
			Reference: "R-S0001",
			Operation: model.TransactionOperationRefund,
			State:     model.TransactionStatePending,
		}

		txDB.On("UpdateFields", mock.Anything, int64(5), map[string]any{
			"fintoc_payment_intent_id": "pi_1",
			"fintoc_refund_id":         "re_1",
			"provider_reference":       "re_1",
		}).Return(nil).Once()
		txDB.On("Update", mock.Anything, tx).Return(nil).Once()
		signal.On("Signal", mock.Anything, tx).Return(errors.New("queue down")).Once()

		err := sm.Apply(ctx, tx, Notification{EventType: EventRefundSucceeded, RefundID: "re_1", PaymentIntentID: "pi_1"})

		assert.NoError(t, err)
		assert.Equal(t, model.TransactionStateDone, tx.State)
		assert.Equal(t, "re_1", tx.ProviderReference)
		signal.AssertExpectations(t)
	})

	t.Run("disallowed transition is a no-op", func(t *testing.T) {
		txDB := new(MockTransactionDatabasePort)
		sm := NewStateMachine(txDB, nil, logger)
		tx := &model.Transaction{ID: 6, State: model.TransactionStateDone}

		assert.NoError(t, sm.Apply(ctx, tx, Notification{EventType: EventPaymentIntentFailed}))
		assert.Equal(t, model.TransactionStateDone, tx.State)
		txDB.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("unknown event type still stores identifiers", func(t *testing.T) {
		txDB := new(MockTransactionDatabasePort)
		sm := NewStateMachine(txDB, nil, logger)
		tx := &model.Transaction{ID: 7, State: model.TransactionStateDraft}

		txDB.On("UpdateFields", mock.Anything, int64(7), map[string]any{
			"fintoc_checkout_session_id": "cs_7",
		}).Return(nil).Once()

		assert.NoError(t, sm.Apply(ctx, tx, Notification{EventType: "checkout_session.expired", CheckoutSessionID: "cs_7"}))
		assert.Equal(t, model.TransactionStateDraft, tx.State)
		txDB.AssertExpectations(t)
		txDB.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("missing event type", func(t *testing.T) {
		sm := NewStateMachine(new(MockTransactionDatabasePort), nil, logger)
		err := sm.Apply(ctx, &model.Transaction{}, Notification{})
		assert.ErrorIs(t, err, ErrValidation)
	})
}
