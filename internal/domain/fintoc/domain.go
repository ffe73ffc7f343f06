package fintoc

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/uniedit/fintoc-gateway/internal/model"
	"github.com/uniedit/fintoc-gateway/internal/port/outbound"
	"go.uber.org/zap"
)

// FintocDomain defines the Fintoc payment domain service interface.
type FintocDomain interface {
	// HandleWebhook authenticates, deduplicates and processes a webhook delivery.
	HandleWebhook(ctx context.Context, signatureHeader string, rawBody []byte) (WebhookStatus, error)

	// HandleReturn processes a checkout return and returns the status page path to redirect to.
	HandleReturn(ctx context.Context, reference, accessToken, checkoutSessionID string, canceled bool) (string, error)

	// CreateTransaction creates a draft Fintoc transaction.
	CreateTransaction(ctx context.Context, req *model.CreateTransactionRequest) (*model.Transaction, error)

	// GetTransaction returns a transaction by reference.
	GetTransaction(ctx context.Context, reference string) (*model.Transaction, error)

	// CreateCheckoutSession creates or reuses the checkout session of a transaction.
	CreateCheckoutSession(ctx context.Context, reference string) (*model.CheckoutSessionResponse, error)

	// RequestRefund refunds a paid transaction, fully when amount is zero.
	RequestRefund(ctx context.Context, reference string, amount int64) (*model.Transaction, error)

	// CancelRefund cancels a pending refund transaction.
	CancelRefund(ctx context.Context, reference string) (*model.Transaction, error)

	// SyncWebhookEndpoint registers or updates the webhook endpoint at Fintoc.
	SyncWebhookEndpoint(ctx context.Context) (*model.FintocWebhookEndpoint, error)

	// GetEvent returns a stored webhook event by provider event ID.
	GetEvent(ctx context.Context, eventID string) (*model.FintocEvent, error)

	// ListEvents lists stored webhook events.
	ListEvents(ctx context.Context, filter model.FintocEventFilter) ([]*model.FintocEvent, int64, error)
}

// fintocDomain implements FintocDomain.
type fintocDomain struct {
	cfg          Config
	txDB         outbound.TransactionDatabasePort
	eventDB      outbound.FintocEventDatabasePort
	endpointDB   outbound.FintocWebhookEndpointDatabasePort
	api          outbound.FintocAPIPort
	eventStore   *EventStore
	matcher      *Matcher
	stateMachine *StateMachine
	now          func() time.Time
	logger       *zap.Logger
}

// NewFintocDomain creates a new Fintoc domain service. signal and archive may be nil.
func NewFintocDomain(
	cfg Config,
	txDB outbound.TransactionDatabasePort,
	eventDB outbound.FintocEventDatabasePort,
	endpointDB outbound.FintocWebhookEndpointDatabasePort,
	api outbound.FintocAPIPort,
	signal outbound.PostProcessSignalPort,
	archive outbound.EventArchivePort,
	logger *zap.Logger,
) FintocDomain {
	return &fintocDomain{
		cfg:          cfg.withDefaults(),
		txDB:         txDB,
		eventDB:      eventDB,
		endpointDB:   endpointDB,
		api:          api,
		eventStore:   NewEventStore(eventDB, archive, logger),
		matcher:      NewMatcher(txDB),
		stateMachine: NewStateMachine(txDB, signal, logger),
		now:          time.Now,
		logger:       logger,
	}
}

func (d *fintocDomain) CreateTransaction(ctx context.Context, req *model.CreateTransactionRequest) (*model.Transaction, error) {
	reference := strings.TrimSpace(req.Reference)
	if reference == "" {
		return nil, validationErrorf("Transaction reference is required.")
	}
	if req.Amount <= 0 {
		return nil, validationErrorf("Transaction amount must be positive.")
	}
	if req.PaymentMethodCode != "" {
		if _, ok := PaymentMethodMapping[req.PaymentMethodCode]; !ok {
			return nil, validationErrorf("Unknown payment method %q.", req.PaymentMethodCode)
		}
	}

	tx := &model.Transaction{
		Reference:         reference,
		ProviderCode:      ProviderCode,
		Operation:         model.TransactionOperationOnlineRedirect,
		State:             model.TransactionStateDraft,
		Amount:            req.Amount,
		Currency:          strings.ToUpper(req.Currency),
		CustomerEmail:     strings.TrimSpace(req.CustomerEmail),
		PartnerID:         req.PartnerID,
		PaymentMethodCode: req.PaymentMethodCode,
	}
	if err := d.txDB.Create(ctx, tx); err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}
	return tx, nil
}

func (d *fintocDomain) GetTransaction(ctx context.Context, reference string) (*model.Transaction, error) {
	return d.getTransaction(ctx, reference)
}

func (d *fintocDomain) GetEvent(ctx context.Context, eventID string) (*model.FintocEvent, error) {
	event, err := d.eventDB.FindByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("find webhook event: %w", err)
	}
	if event == nil {
		return nil, ErrEventNotFound
	}
	return event, nil
}

func (d *fintocDomain) ListEvents(ctx context.Context, filter model.FintocEventFilter) ([]*model.FintocEvent, int64, error) {
	filter.DefaultPagination()
	return d.eventDB.FindByFilter(ctx, filter)
}

func (d *fintocDomain) getTransaction(ctx context.Context, reference string) (*model.Transaction, error) {
	tx, err := d.txDB.FindByReference(ctx, ProviderCode, reference)
	if err != nil {
		return nil, fmt.Errorf("find transaction: %w", err)
	}
	if tx == nil {
		return nil, ErrTransactionNotFound
	}
	return tx, nil
}
