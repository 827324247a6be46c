// Package services orchestrates writes across the record store and the
// message bus.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fintrack/internal/bus"
	"fintrack/internal/core"
	"fintrack/internal/store"
)

// EventPublisher is satisfied by the bus client. Nil is allowed; the service
// then skips publishing.
type EventPublisher interface {
	PublishTransactionEvent(ctx context.Context, event *bus.TransactionEvent) error
}

// TransactionService validates and persists transactions, then announces
// changes on the bus. Store writes are authoritative; publish failures are
// logged and swallowed.
type TransactionService struct {
	records   store.RecordStore
	publisher EventPublisher
	now       func() time.Time
}

func NewTransactionService(records store.RecordStore, publisher EventPublisher) *TransactionService {
	return &TransactionService{
		records:   records,
		publisher: publisher,
		now:       time.Now,
	}
}

// Create validates tx, fills the fallback category when none was picked,
// stamps the creation time, and saves. The returned id is the store key.
func (s *TransactionService) Create(ctx context.Context, uid string, tx core.Transaction) (string, error) {
	if err := tx.Validate(); err != nil {
		return "", err
	}
	if tx.Category == "" {
		tx.Category = core.FallbackCategory(tx.Type)
	}
	tx.Timestamp = s.now().UnixMilli()

	id, err := s.records.Create(ctx, store.TransactionsPath(uid), tx)
	if err != nil {
		return "", fmt.Errorf("save transaction: %w", err)
	}

	s.publish(ctx, bus.NewTransactionEvent(uid, id, bus.ActionCreated))
	return id, nil
}

// Delete removes a transaction by its store key.
func (s *TransactionService) Delete(ctx context.Context, uid, id string) error {
	if err := s.records.Delete(ctx, store.TransactionsPath(uid), id); err != nil {
		return err
	}

	s.publish(ctx, bus.NewTransactionEvent(uid, id, bus.ActionDeleted))
	return nil
}

func (s *TransactionService) publish(ctx context.Context, event *bus.TransactionEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishTransactionEvent(ctx, event); err != nil {
		slog.ErrorContext(ctx, "Failed to publish transaction event",
			"uid", event.UID, "id", event.ID, "action", event.Action, "error", err)
	}
}
