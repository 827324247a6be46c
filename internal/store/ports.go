// Package store defines the record-store contract the rest of the application
// consumes: a keyed per-user transaction collection with create, delete,
// one-shot read, and full-snapshot subscriptions.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fintrack/internal/core"
)

var (
	ErrNotFound    = errors.New("record not found")
	ErrInvalidPath = errors.New("invalid store path")
	ErrEmailTaken  = errors.New("email already registered")
)

// Handle identifies an active subscription. Zero is never a valid handle.
type Handle int64

// Snapshot is a full point-in-time copy of a collection. Keys preserves the
// store's iteration order (creation order); Records maps key to record.
type Snapshot struct {
	Keys    []string
	Records map[string]core.Transaction
}

// List returns the records in key order, each with its ID populated.
func (s Snapshot) List() []core.Transaction {
	out := make([]core.Transaction, 0, len(s.Keys))
	for _, k := range s.Keys {
		tx := s.Records[k]
		tx.ID = k
		out = append(out, tx)
	}
	return out
}

// Len is the record count.
func (s Snapshot) Len() int {
	return len(s.Keys)
}

// SnapshotFunc receives the full current collection on every change.
// Callbacks must not call back into the store.
type SnapshotFunc func(Snapshot)

// RecordStore is the persistence and real-time sync contract.
//
// Subscribe delivers a snapshot immediately and again after every change to
// the path. Unsubscribe is idempotent; once it returns, no further callbacks
// fire for that handle. Create assigns and returns the record id. Callers get
// no optimistic echo: the created record arrives via the subscription.
type RecordStore interface {
	Subscribe(path string, fn SnapshotFunc) Handle
	Unsubscribe(h Handle)
	Create(ctx context.Context, path string, tx core.Transaction) (string, error)
	Delete(ctx context.Context, path, id string) error
	ReadOnce(ctx context.Context, path string) (Snapshot, error)
}

// TransactionsPath is the collection path for a user's transactions.
func TransactionsPath(uid string) string {
	return fmt.Sprintf("users/%s/transactions", uid)
}

// UserFromPath extracts the uid from a transactions path.
func UserFromPath(path string) (string, error) {
	parts := strings.Split(path, "/")
	if len(parts) != 3 || parts[0] != "users" || parts[1] == "" || parts[2] != "transactions" {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}
	return parts[1], nil
}
