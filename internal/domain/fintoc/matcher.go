package fintoc

import (
	"context"
	"fmt"

	"github.com/uniedit/fintoc-gateway/internal/model"
	"github.com/uniedit/fintoc-gateway/internal/port/outbound"
)

// matchStrategy looks up a transaction for a notification. It returns (nil, nil)
// when it does not apply or finds nothing.
type matchStrategy struct {
	name   string
	lookup func(ctx context.Context, n Notification) (*model.Transaction, error)
}

// Matcher resolves a notification to exactly one transaction. Strategies run in
// a fixed order and the first hit wins.
type Matcher struct {
	strategies []matchStrategy
}

// NewMatcher creates a matcher over the transaction store.
func NewMatcher(txDB outbound.TransactionDatabasePort) *Matcher {
	return &Matcher{
		strategies: []matchStrategy{
			{name: "provider_reference", lookup: func(ctx context.Context, n Notification) (*model.Transaction, error) {
				resourceID := n.ResourceID()
				if resourceID == "" {
					return nil, nil
				}
				candidates, err := txDB.FindAllByProviderReference(ctx, ProviderCode, resourceID)
				if err != nil || len(candidates) != 1 {
					return nil, err
				}
				return candidates[0], nil
			}},
			{name: "refund_id", lookup: func(ctx context.Context, n Notification) (*model.Transaction, error) {
				if n.RefundID == "" {
					return nil, nil
				}
				return txDB.FindRefundByRefundID(ctx, ProviderCode, n.RefundID)
			}},
			{name: "reference", lookup: func(ctx context.Context, n Notification) (*model.Transaction, error) {
				reference := n.TxReference()
				if reference == "" {
					return nil, nil
				}
				return txDB.FindByReference(ctx, ProviderCode, reference)
			}},
			{name: "payment_intent_id", lookup: func(ctx context.Context, n Notification) (*model.Transaction, error) {
				if n.PaymentIntentID == "" {
					return nil, nil
				}
				return txDB.FindPaymentByIntentID(ctx, ProviderCode, n.PaymentIntentID)
			}},
			{name: "checkout_session_id", lookup: func(ctx context.Context, n Notification) (*model.Transaction, error) {
				if n.CheckoutSessionID == "" {
					return nil, nil
				}
				return txDB.FindByCheckoutSessionID(ctx, ProviderCode, n.CheckoutSessionID)
			}},
		},
	}
}

// Match returns the transaction targeted by n, or ErrNoMatchingTransaction.
func (m *Matcher) Match(ctx context.Context, n Notification) (*model.Transaction, error) {
	for _, s := range m.strategies {
		tx, err := s.lookup(ctx, n)
		if err != nil {
			return nil, fmt.Errorf("match by %s: %w", s.name, err)
		}
		if tx != nil {
			return tx, nil
		}
	}
	return nil, ErrNoMatchingTransaction
}
