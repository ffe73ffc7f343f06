package model

import (
	"time"
)

// TransactionState represents the lifecycle state of a payment transaction.
type TransactionState string

const (
	TransactionStateDraft    TransactionState = "draft"
	TransactionStatePending  TransactionState = "pending"
	TransactionStateDone     TransactionState = "done"
	TransactionStateCanceled TransactionState = "canceled"
	TransactionStateError    TransactionState = "error"
)

// IsTerminal returns true if the state is a terminal state.
func (s TransactionState) IsTerminal() bool {
	return s == TransactionStateDone || s == TransactionStateCanceled || s == TransactionStateError
}

// CanTransitionTo returns true if the state can transition to the target state.
// extraAllowed widens the default set of source states for the target.
func (s TransactionState) CanTransitionTo(target TransactionState, extraAllowed ...TransactionState) bool {
	for _, extra := range extraAllowed {
		if s == extra {
			return true
		}
	}

	switch target {
	case TransactionStatePending:
		return s == TransactionStateDraft
	case TransactionStateDone:
		return s == TransactionStateDraft || s == TransactionStatePending || s == TransactionStateError
	case TransactionStateCanceled, TransactionStateError:
		return s == TransactionStateDraft || s == TransactionStatePending
	default:
		return false
	}
}

// TransactionOperation represents what a transaction does.
type TransactionOperation string

const (
	TransactionOperationOnlineRedirect TransactionOperation = "online_redirect"
	TransactionOperationRefund         TransactionOperation = "refund"
)

// Transaction represents a payment or refund transaction handled through Fintoc.
type Transaction struct {
	ID                      int64                `json:"id" gorm:"primaryKey;autoIncrement"`
	Reference               string               `json:"reference" gorm:"uniqueIndex;not null"`
	ProviderCode            string               `json:"provider_code" gorm:"not null;default:fintoc;index"`
	ProviderReference       string               `json:"provider_reference,omitempty" gorm:"index"`
	Operation               TransactionOperation `json:"operation" gorm:"not null;default:online_redirect"`
	State                   TransactionState     `json:"state" gorm:"not null;default:draft"`
	StateMessage            string               `json:"state_message,omitempty"`
	Amount                  int64                `json:"amount"`
	Currency                string               `json:"currency"`
	CustomerEmail           string               `json:"customer_email,omitempty"`
	PartnerID               string               `json:"partner_id,omitempty"`
	PaymentMethodCode       string               `json:"payment_method_code,omitempty"`
	SourceTransactionID     *int64               `json:"source_transaction_id,omitempty" gorm:"index"`
	FintocCheckoutSessionID string               `json:"fintoc_checkout_session_id,omitempty" gorm:"index"`
	FintocRedirectURL       string               `json:"fintoc_redirect_url,omitempty"`
	FintocPaymentIntentID   string               `json:"fintoc_payment_intent_id,omitempty" gorm:"index"`
	FintocRefundID          string               `json:"fintoc_refund_id,omitempty" gorm:"index"`
	LastStateChange         *time.Time           `json:"last_state_change,omitempty"`
	CreatedAt               time.Time            `json:"created_at"`
	UpdatedAt               time.Time            `json:"updated_at"`
}

// TableName returns the table name for GORM.
func (Transaction) TableName() string {
	return "payment_transactions"
}

// IsRefund returns true if the transaction is a refund.
func (t *Transaction) IsRefund() bool {
	return t.Operation == TransactionOperationRefund
}

// TransitionTo moves the transaction to target if the current state allows it.
// It returns false and leaves the transaction untouched otherwise.
func (t *Transaction) TransitionTo(target TransactionState, message string, extraAllowed ...TransactionState) bool {
	if !t.State.CanTransitionTo(target, extraAllowed...) {
		return false
	}
	now := time.Now()
	t.State = target
	t.StateMessage = message
	t.LastStateChange = &now
	return true
}

// --- Request/Response DTOs ---

// CreateTransactionRequest represents a request to create a draft transaction.
type CreateTransactionRequest struct {
	Reference         string `json:"reference" binding:"required"`
	Amount            int64  `json:"amount" binding:"required,gt=0"`
	Currency          string `json:"currency" binding:"required"`
	CustomerEmail     string `json:"customer_email"`
	PartnerID         string `json:"partner_id"`
	PaymentMethodCode string `json:"payment_method_code"`
}

// CheckoutSessionResponse represents a created (or reused) Fintoc checkout session.
type CheckoutSessionResponse struct {
	Reference         string `json:"reference"`
	CheckoutSessionID string `json:"checkout_session_id"`
	RedirectURL       string `json:"redirect_url"`
}

// CreateRefundRequest represents a refund request. Amount is in minor units, 0 means full refund.
type CreateRefundRequest struct {
	Amount int64 `json:"amount" binding:"gte=0"`
}
