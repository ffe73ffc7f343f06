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

func paidTransaction() *model.Transaction {
	tx := draftTransaction()
	tx.State = model.TransactionStateDone
	tx.FintocPaymentIntentID = "pi_42"
	tx.ProviderReference = "pi_42"
	return tx
}

func TestFintocDomain_RequestRefund(t *testing.T) {
	ctx := context.Background()

	t.Run("full refund succeeded immediately", func(t *testing.T) {
		d, deps := newTestDomain(testConfig())
		source := paidTransaction()

		deps.txDB.On("FindByReference", mock.Anything, ProviderCode, "S0042").Return(source, nil)
		deps.txDB.On("CountRefunds", mock.Anything, int64(42)).Return(int64(0), nil)
		deps.txDB.On("Create", mock.Anything, mock.AnythingOfType("*model.Transaction")).
			Run(func(args mock.Arguments) { args.Get(1).(*model.Transaction).ID = 100 }).
			Return(nil)
		deps.api.On("SendOrFail", mock.Anything, http.MethodPost, "/v1/refunds", map[string]any{
			"resource_id":   "pi_42",
			"resource_type": MethodPaymentIntent,
		}, "fintoc-tx-100-refund").Return(map[string]any{"id": "re_1", "status": "succeeded"}, nil)
		deps.txDB.On("Update", mock.Anything, mock.AnythingOfType("*model.Transaction")).Return(nil)
		deps.signal.On("Signal", mock.Anything, mock.AnythingOfType("*model.Transaction")).Return(nil)

		refund, err := d.RequestRefund(ctx, "S0042", 0)

		require.NoError(t, err)
		assert.Equal(t, "R-S0042", refund.Reference)
		assert.Equal(t, model.TransactionStateDone, refund.State)
		assert.Equal(t, "re_1", refund.FintocRefundID)
		assert.Equal(t, "re_1", refund.ProviderReference)
		assert.Equal(t, int64(15000), refund.Amount)
		assert.Equal(t, int64(42), *refund.SourceTransactionID)
		assert.True(t, refund.IsRefund())
		deps.api.AssertExpectations(t)
		deps.signal.AssertExpectations(t)
	})

	t.Run("partial refund in progress", func(t *testing.T) {
		d, deps := newTestDomain(testConfig())
		source := paidTransaction()

		deps.txDB.On("FindByReference", mock.Anything, ProviderCode, "S0042").Return(source, nil)
		deps.txDB.On("CountRefunds", mock.Anything, int64(42)).Return(int64(1), nil)
		deps.txDB.On("Create", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) { args.Get(1).(*model.Transaction).ID = 101 }).
			Return(nil)
		deps.api.On("SendOrFail", mock.Anything, http.MethodPost, "/v1/refunds", map[string]any{
			"resource_id":   "pi_42",
			"resource_type": MethodPaymentIntent,
			"amount":        int64(5000),
		}, "fintoc-tx-101-refund").Return(map[string]any{"id": "re_2", "status": "in_progress"}, nil)
		deps.txDB.On("Update", mock.Anything, mock.Anything).Return(nil)

		refund, err := d.RequestRefund(ctx, "S0042", 5000)

		require.NoError(t, err)
		assert.Equal(t, "R-S0042-1", refund.Reference)
		assert.Equal(t, model.TransactionStatePending, refund.State)
		deps.signal.AssertNotCalled(t, "Signal", mock.Anything, mock.Anything)
	})

	t.Run("immediate failure", func(t *testing.T) {
		d, deps := newTestDomain(testConfig())
		deps.txDB.On("FindByReference", mock.Anything, ProviderCode, "S0042").Return(paidTransaction(), nil)
		deps.txDB.On("CountRefunds", mock.Anything, int64(42)).Return(int64(0), nil)
		deps.txDB.On("Create", mock.Anything, mock.Anything).Return(nil)
		deps.api.On("SendOrFail", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(map[string]any{"id": "re_3", "status": "failed"}, nil)
		deps.txDB.On("Update", mock.Anything, mock.Anything).Return(nil)

		refund, err := d.RequestRefund(ctx, "S0042", 0)

		require.NoError(t, err)
		assert.Equal(t, model.TransactionStateError, refund.State)
		assert.Equal(t, "Fintoc reported an immediate refund failure.", refund.StateMessage)
	})

	t.Run("api error marks refund as error", func(t *testing.T) {
		d, deps := newTestDomain(testConfig())
		var created *model.Transaction
		deps.txDB.On("FindByReference", mock.Anything, ProviderCode, "S0042").Return(paidTransaction(), nil)
		deps.txDB.On("CountRefunds", mock.Anything, int64(42)).Return(int64(0), nil)
		deps.txDB.On("Create", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) { created = args.Get(1).(*model.Transaction) }).
			Return(nil)
		deps.api.On("SendOrFail", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, NewProviderRequestError(http.StatusBadRequest, map[string]any{"message": "already refunded"}))
		deps.txDB.On("Update", mock.Anything, mock.Anything).Return(nil)

		_, err := d.RequestRefund(ctx, "S0042", 0)

		assert.ErrorIs(t, err, ErrProviderRequestFailed)
		require.NotNil(t, created)
		assert.Equal(t, model.TransactionStateError, created.State)
	})

	t.Run("response without id marks refund as error", func(t *testing.T) {
		d, deps := newTestDomain(testConfig())
		var created *model.Transaction
		deps.txDB.On("FindByReference", mock.Anything, ProviderCode, "S0042").Return(paidTransaction(), nil)
		deps.txDB.On("CountRefunds", mock.Anything, int64(42)).Return(int64(0), nil)
		deps.txDB.On("Create", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) { created = args.Get(1).(*model.Transaction) }).
			Return(nil)
		deps.api.On("SendOrFail", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(map[string]any{"status": "in_progress"}, nil)
		deps.txDB.On("Update", mock.Anything, mock.AnythingOfType("*model.Transaction")).Return(nil).Once()

		_, err := d.RequestRefund(ctx, "S0042", 0)

		assert.ErrorIs(t, err, ErrValidation)
		require.NotNil(t, created)
		assert.Equal(t, model.TransactionStateError, created.State)
		assert.Equal(t, "Fintoc did not return a refund ID.", created.StateMessage)
		assert.Empty(t, created.FintocRefundID)
		deps.txDB.AssertNumberOfCalls(t, "Update", 1)
		deps.signal.AssertNotCalled(t, "Signal", mock.Anything, mock.Anything)
	})

	t.Run("missing payment intent", func(t *testing.T) {
		d, deps := newTestDomain(testConfig())
		source := paidTransaction()
		source.FintocPaymentIntentID = ""
		deps.txDB.On("FindByReference", mock.Anything, ProviderCode, "S0042").Return(source, nil)

		_, err := d.RequestRefund(ctx, "S0042", 0)

		assert.ErrorIs(t, err, ErrValidation)
		assert.Contains(t, err.Error(), "payment_intent_id is missing")
		deps.txDB.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("amount above source", func(t *testing.T) {
		d, deps := newTestDomain(testConfig())
		deps.txDB.On("FindByReference", mock.Anything, ProviderCode, "S0042").Return(paidTransaction(), nil)

		_, err := d.RequestRefund(ctx, "S0042", 20000)

		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("refund of a refund", func(t *testing.T) {
		d, deps := newTestDomain(testConfig())
		refund := paidTransaction()
		refund.Operation = model.TransactionOperationRefund
		deps.txDB.On("FindByReference", mock.Anything, ProviderCode, "R-S0042").Return(refund, nil)

		_, err := d.RequestRefund(ctx, "R-S0042", 0)

		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestFintocDomain_CancelRefund(t *testing.T) {
	ctx := context.Background()

	pendingRefund := func() *model.Transaction {
		return &model.Transaction{
			ID:             100,
			Reference:      "R-S0042",
			Operation:      model.TransactionOperationRefund,
			State:          model.TransactionStatePending,
			FintocRefundID: "re_1",
		}
	}

	t.Run("success", func(t *testing.T) {
		d, deps := newTestDomain(testConfig())
		tx := pendingRefund()
		deps.txDB.On("FindByReference", mock.Anything, ProviderCode, "R-S0042").Return(tx, nil)
		deps.api.On("SendOrFail", mock.Anything, http.MethodPost, "/v1/refunds/re_1/cancel", map[string]any{}, "fintoc-tx-100-cancel").
			Return(map[string]any{"id": "re_1", "status": "canceled"}, nil)
		deps.txDB.On("Update", mock.Anything, tx).Return(nil)

		got, err := d.CancelRefund(ctx, "R-S0042")

		require.NoError(t, err)
		assert.Equal(t, model.TransactionStateCanceled, got.State)
		assert.Equal(t, "Refund cancellation requested in Fintoc.", got.StateMessage)
		deps.api.AssertExpectations(t)
	})

	t.Run("not a refund", func(t *testing.T) {
		d, deps := newTestDomain(testConfig())
		deps.txDB.On("FindByReference", mock.Anything, ProviderCode, "S0042").Return(draftTransaction(), nil)

		_, err := d.CancelRefund(ctx, "S0042")

		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("already done", func(t *testing.T) {
		d, deps := newTestDomain(testConfig())
		tx := pendingRefund()
		tx.State = model.TransactionStateDone
		deps.txDB.On("FindByReference", mock.Anything, ProviderCode, "R-S0042").Return(tx, nil)

		_, err := d.CancelRefund(ctx, "R-S0042")

		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("terminal states rejected", func(t *testing.T) {
		for _, state := range []model.TransactionState{
			model.TransactionStateCanceled,
			model.TransactionStateError,
		} {
			d, deps := newTestDomain(testConfig())
			tx := pendingRefund()
			tx.State = state
			deps.txDB.On("FindByReference", mock.Anything, ProviderCode, "R-S0042").Return(tx, nil)

			_, err := d.CancelRefund(ctx, "R-S0042")

			assert.ErrorIs(t, err, ErrValidation, string(state))
			deps.api.AssertNotCalled(t, "SendOrFail", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		}
	})

	t.Run("draft refund can be cancelled", func(t *testing.T) {
		d, deps := newTestDomain(testConfig())
		tx := pendingRefund()
		tx.State = model.TransactionStateDraft
		deps.txDB.On("FindByReference", mock.Anything, ProviderCode, "R-S0042").Return(tx, nil)
		deps.api.On("SendOrFail", mock.Anything, http.MethodPost, "/v1/refunds/re_1/cancel", map[string]any{}, "fintoc-tx-100-cancel").
			Return(map[string]any{"id": "re_1"}, nil)
		deps.txDB.On("Update", mock.Anything, tx).Return(nil)

		got, err := d.CancelRefund(ctx, "R-S0042")

		require.NoError(t, err)
		assert.Equal(t, model.TransactionStateCanceled, got.State)
	})

	t.Run("missing refund id", func(t *testing.T) {
		d, deps := newTestDomain(testConfig())
		tx := pendingRefund()
		tx.FintocRefundID = ""
		deps.txDB.On("FindByReference", mock.Anything, ProviderCode, "R-S0042").Return(tx, nil)

		_, err := d.CancelRefund(ctx, "R-S0042")

		assert.ErrorIs(t, err, ErrValidation)
		deps.api.AssertNotCalled(t, "SendOrFail", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}
