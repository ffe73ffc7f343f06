package fintoc

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/uniedit/fintoc-gateway/internal/model"
	"go.uber.org/zap"
)

// --- Mock Implementations ---

type MockTransactionDatabasePort struct {
	mock.Mock
}

func (m *MockTransactionDatabasePort) Create(ctx context.Context, tx *model.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockTransactionDatabasePort) FindByID(ctx context.Context, id int64) (*model.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Transaction), args.Error(1)
}

func (m *MockTransactionDatabasePort) FindByReference(ctx context.Context, provider, reference string) (*model.Transaction, error) {
	args := m.Called(ctx, provider, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Transaction), args.Error(1)
}

func (m *MockTransactionDatabasePort) FindAllByProviderReference(ctx context.Context, provider, providerReference string) ([]*model.Transaction, error) {
	args := m.Called(ctx, provider, providerReference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Transaction), args.Error(1)
}

func (m *MockTransactionDatabasePort) FindRefundByRefundID(ctx context.Context, provider, refundID string) (*model.Transaction, error) {
	args := m.Called(ctx, provider, refundID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Transaction), args.Error(1)
}

func (m *MockTransactionDatabasePort) FindPaymentByIntentID(ctx context.Context, provider, paymentIntentID string) (*model.Transaction, error) {
	args := m.Called(ctx, provider, paymentIntentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Transaction), args.Error(1)
}

func (m *MockTransactionDatabasePort) FindByCheckoutSessionID(ctx context.Context, provider, checkoutSessionID string) (*model.Transaction, error) {
	args := m.Called(ctx, provider, checkoutSessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Transaction), args.Error(1)
}

func (m *MockTransactionDatabasePort) CountRefunds(ctx context.Context, sourceID int64) (int64, error) {
	args := m.Called(ctx, sourceID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTransactionDatabasePort) UpdateFields(ctx context.Context, id int64, fields map[string]any) error {
	args := m.Called(ctx, id, fields)
	return args.Error(0)
}

func (m *MockTransactionDatabasePort) Update(ctx context.Context, tx *model.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

type MockFintocEventDatabasePort struct {
	mock.Mock
}

func (m *MockFintocEventDatabasePort) CreateIfAbsent(ctx context.Context, event *model.FintocEvent) (bool, error) {
	args := m.Called(ctx, event)
	return args.Bool(0), args.Error(1)
}

func (m *MockFintocEventDatabasePort) FindByEventID(ctx context.Context, eventID string) (*model.FintocEvent, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FintocEvent), args.Error(1)
}

func (m *MockFintocEventDatabasePort) FindByFilter(ctx context.Context, filter model.FintocEventFilter) ([]*model.FintocEvent, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*model.FintocEvent), args.Get(1).(int64), args.Error(2)
}

func (m *MockFintocEventDatabasePort) MarkProcessed(ctx context.Context, id uuid.UUID, transactionID int64, at time.Time) error {
	args := m.Called(ctx, id, transactionID, at)
	return args.Error(0)
}

func (m *MockFintocEventDatabasePort) MarkError(ctx context.Context, id uuid.UUID, message string, at time.Time) error {
	args := m.Called(ctx, id, message, at)
	return args.Error(0)
}

type MockWebhookEndpointDatabasePort struct {
	mock.Mock
}

func (m *MockWebhookEndpointDatabasePort) Get(ctx context.Context, provider string) (*model.FintocWebhookEndpoint, error) {
	args := m.Called(ctx, provider)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FintocWebhookEndpoint), args.Error(1)
}

func (m *MockWebhookEndpointDatabasePort) Save(ctx context.Context, endpoint *model.FintocWebhookEndpoint) error {
	args := m.Called(ctx, endpoint)
	return args.Error(0)
}

type MockFintocAPIPort struct {
	mock.Mock
}

func (m *MockFintocAPIPort) Send(ctx context.Context, method, endpoint string, payload any, idempotencyKey string) (int, map[string]any, error) {
	args := m.Called(ctx, method, endpoint, payload, idempotencyKey)
	var body map[string]any
	if args.Get(1) != nil {
		body = args.Get(1).(map[string]any)
	}
	return args.Int(0), body, args.Error(2)
}

func (m *MockFintocAPIPort) SendOrFail(ctx context.Context, method, endpoint string, payload any, idempotencyKey string) (map[string]any, error) {
	args := m.Called(ctx, method, endpoint, payload, idempotencyKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]any), args.Error(1)
}

type MockPostProcessSignalPort struct {
	mock.Mock
}

func (m *MockPostProcessSignalPort) Signal(ctx context.Context, tx *model.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

type MockEventArchivePort struct {
	mock.Mock
}

func (m *MockEventArchivePort) Archive(ctx context.Context, event *model.FintocEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// --- Helpers ---

type testDeps struct {
	txDB       *MockTransactionDatabasePort
	eventDB    *MockFintocEventDatabasePort
	endpointDB *MockWebhookEndpointDatabasePort
	api        *MockFintocAPIPort
	signal     *MockPostProcessSignalPort
}

var testNow = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

func testConfig() Config {
	return Config{
		SecretKey:          "sk_test_123",
		WebhookSecret:      "whsec_test",
		EnableBankTransfer: true,
		EnableCard:         true,
		PublicBaseURL:      "https://shop.example.com/",
		AccessTokenSecret:  "return-secret",
	}
}

func newTestDomain(cfg Config) (*fintocDomain, *testDeps) {
	deps := &testDeps{
		txDB:       new(MockTransactionDatabasePort),
		eventDB:    new(MockFintocEventDatabasePort),
		endpointDB: new(MockWebhookEndpointDatabasePort),
		api:        new(MockFintocAPIPort),
		signal:     new(MockPostProcessSignalPort),
	}
	d := NewFintocDomain(cfg, deps.txDB, deps.eventDB, deps.endpointDB, deps.api, deps.signal, nil, zap.NewNop()).(*fintocDomain)
	d.now = func() time.Time { return testNow }
	d.eventStore.now = d.now
	return d, deps
}
