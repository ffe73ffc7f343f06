package outbound

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uniedit/fintoc-gateway/internal/model"
)

// TransactionDatabasePort defines transaction persistence operations.
// Find methods return (nil, nil) when nothing matches.
type TransactionDatabasePort interface {
	// Create creates a new transaction record.
	Create(ctx context.Context, tx *model.Transaction) error

	// FindByID finds a transaction by ID.
	FindByID(ctx context.Context, id int64) (*model.Transaction, error)

	// FindByReference finds a transaction by reference scoped to a provider.
	FindByReference(ctx context.Context, provider, reference string) (*model.Transaction, error)

	// FindAllByProviderReference lists transactions of a provider sharing a provider reference.
	FindAllByProviderReference(ctx context.Context, provider, providerReference string) ([]*model.Transaction, error)

	// FindRefundByRefundID finds a refund transaction by Fintoc refund ID or provider reference.
	FindRefundByRefundID(ctx context.Context, provider, refundID string) (*model.Transaction, error)

	// FindPaymentByIntentID finds a non-refund transaction by Fintoc payment intent ID or provider reference.
	FindPaymentByIntentID(ctx context.Context, provider, paymentIntentID string) (*model.Transaction, error)

	// FindByCheckoutSessionID finds a transaction by Fintoc checkout session ID.
	FindByCheckoutSessionID(ctx context.Context, provider, checkoutSessionID string) (*model.Transaction, error)

	// CountRefunds counts refund transactions created from a source transaction.
	CountRefunds(ctx context.Context, sourceID int64) (int64, error)

	// UpdateFields writes only the given columns of a transaction.
	UpdateFields(ctx context.Context, id int64, fields map[string]any) error

	// Update updates a transaction record.
	Update(ctx context.Context, tx *model.Transaction) error
}

// FintocEventDatabasePort defines webhook event persistence operations.
type FintocEventDatabasePort interface {
	// CreateIfAbsent inserts the event unless its event ID already exists.
	// It returns false when the event ID was already recorded.
	CreateIfAbsent(ctx context.Context, event *model.FintocEvent) (bool, error)

	// FindByEventID finds an event by provider-assigned event ID.
	FindByEventID(ctx context.Context, eventID string) (*model.FintocEvent, error)

	// FindByFilter lists events by filter.
	FindByFilter(ctx context.Context, filter model.FintocEventFilter) ([]*model.FintocEvent, int64, error)

	// MarkProcessed applies the processed terminal update if the event is still received.
	MarkProcessed(ctx context.Context, id uuid.UUID, transactionID int64, at time.Time) error

	// MarkError applies the error terminal update if the event is still received.
	MarkError(ctx context.Context, id uuid.UUID, message string, at time.Time) error
}

// FintocWebhookEndpointDatabasePort persists the registered webhook endpoint.
type FintocWebhookEndpointDatabasePort interface {
	// Get returns the endpoint registered for a provider, or nil.
	Get(ctx context.Context, provider string) (*model.FintocWebhookEndpoint, error)

	// Save creates or replaces the endpoint record.
	Save(ctx context.Context, endpoint *model.FintocWebhookEndpoint) error
}

// FintocAPIPort defines the Fintoc REST API client.
type FintocAPIPort interface {
	// Send executes a request and returns the status code and parsed body.
	// Only transport failures are returned as errors.
	Send(ctx context.Context, method, endpoint string, payload any, idempotencyKey string) (int, map[string]any, error)

	// SendOrFail executes a request and fails on any status >= 400.
	SendOrFail(ctx context.Context, method, endpoint string, payload any, idempotencyKey string) (map[string]any, error)
}

// PostProcessSignalPort notifies the host scheduler that a transaction needs post-processing.
type PostProcessSignalPort interface {
	Signal(ctx context.Context, tx *model.Transaction) error
}

// EventArchivePort stores raw webhook payloads outside the database.
type EventArchivePort interface {
	Archive(ctx context.Context, event *model.FintocEvent) error
}
