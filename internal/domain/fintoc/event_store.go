package fintoc

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uniedit/fintoc-gateway/internal/model"
	"github.com/uniedit/fintoc-gateway/internal/port/outbound"
	"go.uber.org/zap"
)

// EventStore deduplicates webhook events and records their outcome.
type EventStore struct {
	eventDB outbound.FintocEventDatabasePort
	archive outbound.EventArchivePort
	now     func() time.Time
	logger  *zap.Logger
}

// NewEventStore creates an event store. archive may be nil.
func NewEventStore(eventDB outbound.FintocEventDatabasePort, archive outbound.EventArchivePort, logger *zap.Logger) *EventStore {
	return &EventStore{
		eventDB: eventDB,
		archive: archive,
		now:     time.Now,
		logger:  logger,
	}
}

// RecordIfNew stores the event unless its ID was already seen.
// When duplicate is true the returned event is the one stored earlier, if still present.
func (s *EventStore) RecordIfNew(ctx context.Context, eventID, eventType, provider string, rawPayload []byte) (*model.FintocEvent, bool, error) {
	event := &model.FintocEvent{
		ID:        uuid.New(),
		EventID:   eventID,
		EventType: eventType,
		Provider:  provider,
		Payload:   string(rawPayload),
		State:     model.FintocEventStateReceived,
		CreatedAt: s.now(),
	}

	created, err := s.eventDB.CreateIfAbsent(ctx, event)
	if err != nil {
		return nil, false, fmt.Errorf("record webhook event: %w", err)
	}
	if !created {
		existing, err := s.eventDB.FindByEventID(ctx, eventID)
		if err != nil {
			return nil, true, fmt.Errorf("load duplicate webhook event: %w", err)
		}
		return existing, true, nil
	}

	if s.archive != nil {
		if err := s.archive.Archive(ctx, event); err != nil {
			s.logger.Warn("failed to archive webhook payload",
				zap.String("event_id", eventID),
				zap.Error(err),
			)
		}
	}

	return event, false, nil
}

// MarkProcessed records a successful outcome.
func (s *EventStore) MarkProcessed(ctx context.Context, event *model.FintocEvent, transactionID int64) error {
	now := s.now()
	if err := s.eventDB.MarkProcessed(ctx, event.ID, transactionID, now); err != nil {
		return fmt.Errorf("mark webhook event processed: %w", err)
	}
	event.State = model.FintocEventStateProcessed
	event.TransactionID = &transactionID
	event.ProcessedAt = &now
	return nil
}

// MarkError records a failed outcome.
func (s *EventStore) MarkError(ctx context.Context, event *model.FintocEvent, processErr error) error {
	now := s.now()
	message := processErr.Error()
	if err := s.eventDB.MarkError(ctx, event.ID, message, now); err != nil {
		return fmt.Errorf("mark webhook event error: %w", err)
	}
	event.State = model.FintocEventStateError
	event.ErrorMessage = &message
	event.ProcessedAt = &now
	return nil
}
