package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/uniedit/fintoc-gateway/internal/model"
	"github.com/uniedit/fintoc-gateway/internal/port/outbound"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// webhookEndpointAdapter implements outbound.FintocWebhookEndpointDatabasePort.
type webhookEndpointAdapter struct {
	db *gorm.DB
}

// NewWebhookEndpointAdapter creates a new webhook endpoint database adapter.
func NewWebhookEndpointAdapter(db *gorm.DB) outbound.FintocWebhookEndpointDatabasePort {
	return &webhookEndpointAdapter{db: db}
}

func (a *webhookEndpointAdapter) Get(ctx context.Context, provider string) (*model.FintocWebhookEndpoint, error) {
	var endpoint model.FintocWebhookEndpoint
	err := a.db.WithContext(ctx).First(&endpoint, "provider = ?", provider).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get webhook endpoint: %w", err)
	}
	return &endpoint, nil
}

func (a *webhookEndpointAdapter) Save(ctx context.Context, endpoint *model.FintocWebhookEndpoint) error {
	err := a.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "provider"}},
			UpdateAll: true,
		}).
		Create(endpoint).Error
	if err != nil {
		return fmt.Errorf("save webhook endpoint: %w", err)
	}
	return nil
}

// Compile-time check
var _ outbound.FintocWebhookEndpointDatabasePort = (*webhookEndpointAdapter)(nil)
