package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/uniedit/fintoc-gateway/internal/domain/fintoc"
	"github.com/uniedit/fintoc-gateway/internal/model"
	"github.com/uniedit/fintoc-gateway/internal/port/outbound"
	"gorm.io/gorm"
)

const uniqueViolationCode = "23505"

// transactionAdapter implements outbound.TransactionDatabasePort.
type transactionAdapter struct {
	db *gorm.DB
}

// NewTransactionAdapter creates a new transaction database adapter.
func NewTransactionAdapter(db *gorm.DB) outbound.TransactionDatabasePort {
	return &transactionAdapter{db: db}
}

func (a *transactionAdapter) Create(ctx context.Context, tx *model.Transaction) error {
	if err := a.db.WithContext(ctx).Create(tx).Error; err != nil {
		if isUniqueViolation(err) {
			return fintoc.ErrDuplicateReference
		}
		return fmt.Errorf("create transaction: %w", err)
	}
	return nil
}

func (a *transactionAdapter) FindByID(ctx context.Context, id int64) (*model.Transaction, error) {
	return a.first(ctx, "find transaction by id", "id = ?", id)
}

func (a *transactionAdapter) FindByReference(ctx context.Context, provider, reference string) (*model.Transaction, error) {
	return a.first(ctx, "find transaction by reference",
		"provider_code = ? AND reference = ?", provider, reference)
}

func (a *transactionAdapter) FindAllByProviderReference(ctx context.Context, provider, providerReference string) ([]*model.Transaction, error) {
	var txs []*model.Transaction
	err := a.db.WithContext(ctx).
		Where("provider_code = ? AND provider_reference = ?", provider, providerReference).
		Limit(2).
		Find(&txs).Error
	if err != nil {
		return nil, fmt.Errorf("find transactions by provider reference: %w", err)
	}
	return txs, nil
}

func (a *transactionAdapter) FindRefundByRefundID(ctx context.Context, provider, refundID string) (*model.Transaction, error) {
	return a.first(ctx, "find refund by refund id",
		"provider_code = ? AND operation = ? AND (fintoc_refund_id = ? OR provider_reference = ?)",
		provider, model.TransactionOperationRefund, refundID, refundID)
}

func (a *transactionAdapter) FindPaymentByIntentID(ctx context.Context, provider, paymentIntentID string) (*model.Transaction, error) {
	return a.first(ctx, "find payment by payment intent id",
		"provider_code = ? AND operation <> ? AND (fintoc_payment_intent_id = ? OR provider_reference = ?)",
		provider, model.TransactionOperationRefund, paymentIntentID, paymentIntentID)
}

func (a *transactionAdapter) FindByCheckoutSessionID(ctx context.Context, provider, checkoutSessionID string) (*model.Transaction, error) {
	return a.first(ctx, "find transaction by checkout session id",
		"provider_code = ? AND fintoc_checkout_session_id = ?", provider, checkoutSessionID)
}

func (a *transactionAdapter) CountRefunds(ctx context.Context, sourceID int64) (int64, error) {
	var count int64
	err := a.db.WithContext(ctx).
		Model(&model.Transaction{}).
		Where("source_transaction_id = ? AND operation = ?", sourceID, model.TransactionOperationRefund).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count refunds: %w", err)
	}
	return count, nil
}

func (a *transactionAdapter) UpdateFields(ctx context.Context, id int64, fields map[string]any) error {
	err := a.db.WithContext(ctx).
		Model(&model.Transaction{}).
		Where("id = ?", id).
		Updates(fields).Error
	if err != nil {
		return fmt.Errorf("update transaction fields: %w", err)
	}
	return nil
}

func (a *transactionAdapter) Update(ctx context.Context, tx *model.Transaction) error {
	if err := a.db.WithContext(ctx).Save(tx).Error; err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return nil
}

func (a *transactionAdapter) first(ctx context.Context, op string, query string, args ...any) (*model.Transaction, error) {
	var tx model.Transaction
	err := a.db.WithContext(ctx).Where(query, args...).Order("id DESC").First(&tx).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &tx, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

// Compile-time check
var _ outbound.TransactionDatabasePort = (*transactionAdapter)(nil)
