package model

import (
	"time"

	"github.com/google/uuid"
)

// FintocEventState represents the processing state of a stored webhook event.
type FintocEventState string

const (
	FintocEventStateReceived  FintocEventState = "received"
	FintocEventStateProcessed FintocEventState = "processed"
	FintocEventStateError     FintocEventState = "error"
)

// FintocEvent represents a stored Fintoc webhook event.
// EventID is unique: the insert is the deduplication gate.
type FintocEvent struct {
	ID            uuid.UUID        `json:"id" gorm:"type:uuid;primaryKey"`
	EventID       string           `json:"event_id" gorm:"uniqueIndex:idx_fintoc_events_event_id;not null"`
	EventType     string           `json:"event_type" gorm:"not null;index"`
	Provider      string           `json:"provider" gorm:"not null"`
	Payload       string           `json:"payload" gorm:"type:jsonb"`
	State         FintocEventState `json:"state" gorm:"not null;default:received;index"`
	TransactionID *int64           `json:"transaction_id,omitempty"`
	ErrorMessage  *string          `json:"error_message,omitempty"`
	ProcessedAt   *time.Time       `json:"processed_at,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
}

// TableName returns the table name for GORM.
func (FintocEvent) TableName() string {
	return "fintoc_events"
}

// FintocEventFilter represents event query filters.
type FintocEventFilter struct {
	State     *FintocEventState `json:"state" form:"state"`
	EventType *string           `json:"event_type" form:"event_type"`
	PaginationRequest
}

// FintocWebhookEndpoint records the webhook endpoint registered at Fintoc.
type FintocWebhookEndpoint struct {
	Provider   string     `json:"provider" gorm:"primaryKey"`
	EndpointID string     `json:"endpoint_id" gorm:"not null"`
	URL        string     `json:"url" gorm:"not null"`
	LastSyncAt *time.Time `json:"last_sync_at,omitempty"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// TableName returns the table name for GORM.
func (FintocWebhookEndpoint) TableName() string {
	return "fintoc_webhook_endpoints"
}

// WebhookAckResponse is the body returned to Fintoc for accepted deliveries.
type WebhookAckResponse struct {
	Status string `json:"status"`
}

// PostProcessSignal is published when a transaction needs host-side post-processing.
type PostProcessSignal struct {
	TransactionID       int64                `json:"transaction_id"`
	Reference           string               `json:"reference"`
	Operation           TransactionOperation `json:"operation"`
	State               TransactionState     `json:"state"`
	Amount              int64                `json:"amount"`
	Currency            string               `json:"currency"`
	SourceTransactionID *int64               `json:"source_transaction_id,omitempty"`
	FintocRefundID      string               `json:"fintoc_refund_id,omitempty"`
	SignaledAt          time.Time            `json:"signaled_at"`
}

// NewPostProcessSignal builds the signal payload of a transaction.
func NewPostProcessSignal(tx *Transaction, at time.Time) PostProcessSignal {
	return PostProcessSignal{
		TransactionID:       tx.ID,
		Reference:           tx.Reference,
		Operation:           tx.Operation,
		State:               tx.State,
		Amount:              tx.Amount,
		Currency:            tx.Currency,
		SourceTransactionID: tx.SourceTransactionID,
		FintocRefundID:      tx.FintocRefundID,
		SignaledAt:          at,
	}
}
