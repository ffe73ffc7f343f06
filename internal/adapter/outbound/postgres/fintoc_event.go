package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uniedit/fintoc-gateway/internal/model"
	"github.com/uniedit/fintoc-gateway/internal/port/outbound"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// fintocEventAdapter implements outbound.FintocEventDatabasePort.
type fintocEventAdapter struct {
	db *gorm.DB
}

// NewFintocEventAdapter creates a new webhook event database adapter.
func NewFintocEventAdapter(db *gorm.DB) outbound.FintocEventDatabasePort {
	return &fintocEventAdapter{db: db}
}

// CreateIfAbsent relies on the unique event_id index so concurrent
// deliveries of the same event insert at most one row.
func (a *fintocEventAdapter) CreateIfAbsent(ctx context.Context, event *model.FintocEvent) (bool, error) {
	result := a.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "event_id"}},
			DoNothing: true,
		}).
		Create(event)
	if result.Error != nil {
		return false, fmt.Errorf("create webhook event: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (a *fintocEventAdapter) FindByEventID(ctx context.Context, eventID string) (*model.FintocEvent, error) {
	var event model.FintocEvent
	err := a.db.WithContext(ctx).First(&event, "event_id = ?", eventID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find webhook event: %w", err)
	}
	return &event, nil
}

func (a *fintocEventAdapter) FindByFilter(ctx context.Context, filter model.FintocEventFilter) ([]*model.FintocEvent, int64, error) {
	var events []*model.FintocEvent
	var total int64

	query := a.db.WithContext(ctx).Model(&model.FintocEvent{})

	if filter.State != nil {
		query = query.Where("state = ?", *filter.State)
	}
	if filter.EventType != nil {
		query = query.Where("event_type = ?", *filter.EventType)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count webhook events: %w", err)
	}

	filter.DefaultPagination()
	if err := query.Offset(filter.Offset()).Limit(filter.PageSize).Order("created_at DESC").Find(&events).Error; err != nil {
		return nil, 0, fmt.Errorf("find webhook events: %w", err)
	}

	return events, total, nil
}

func (a *fintocEventAdapter) MarkProcessed(ctx context.Context, id uuid.UUID, transactionID int64, at time.Time) error {
	return a.finish(ctx, id, map[string]any{
		"state":          model.FintocEventStateProcessed,
		"transaction_id": transactionID,
		"processed_at":   at,
	})
}

func (a *fintocEventAdapter) MarkError(ctx context.Context, id uuid.UUID, message string, at time.Time) error {
	return a.finish(ctx, id, map[string]any{
		"state":         model.FintocEventStateError,
		"error_message": message,
		"processed_at":  at,
	})
}

// finish applies a terminal update only while the event is still received.
func (a *fintocEventAdapter) finish(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	err := a.db.WithContext(ctx).
		Model(&model.FintocEvent{}).
		Where("id = ? AND state = ?", id, model.FintocEventStateReceived).
		Updates(updates).Error
	if err != nil {
		return fmt.Errorf("finish webhook event: %w", err)
	}
	return nil
}

// Compile-time check
var _ outbound.FintocEventDatabasePort = (*fintocEventAdapter)(nil)
