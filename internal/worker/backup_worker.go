// Package worker mirrors transaction changes from the record store into the
// spreadsheet backup, driven by bus events plus a periodic sweep for anything
// the events missed.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"fintrack/internal/bus"
	"fintrack/internal/sheets"
	"fintrack/internal/store"
)

// UserLister enumerates the users whose collections get synced. The store
// backends implement it.
type UserLister interface {
	UserIDs(ctx context.Context) ([]string, error)
}

// BackupWorker consumes transaction events and writes backup rows. The store
// is the source of truth; event payloads carry only identifiers. The backup
// is an append-only journal, so the worker remembers which records it already
// wrote this run and the periodic sweep only appends the rest.
type BackupWorker struct {
	records   store.RecordStore
	backup    sheets.BackupWriter
	users     UserLister
	batchSize int

	mu     sync.Mutex
	synced map[string]struct{}
}

func NewBackupWorker(records store.RecordStore, backup sheets.BackupWriter, users UserLister, batchSize int) *BackupWorker {
	if batchSize < 1 {
		batchSize = 1
	}
	return &BackupWorker{
		records:   records,
		backup:    backup,
		users:     users,
		batchSize: batchSize,
		synced:    make(map[string]struct{}),
	}
}

// HandleEvent processes one transaction event.
func (w *BackupWorker) HandleEvent(ctx context.Context, event *bus.TransactionEvent) error {
	switch event.Action {
	case bus.ActionCreated:
		return w.handleCreated(ctx, event)
	case bus.ActionDeleted:
		return w.handleDeleted(ctx, event)
	default:
		// Unknown actions are dropped, not requeued.
		slog.WarnContext(ctx, "Ignoring event with unknown action",
			"action", event.Action, "uid", event.UID, "id", event.ID)
		return nil
	}
}

func (w *BackupWorker) handleCreated(ctx context.Context, event *bus.TransactionEvent) error {
	snap, err := w.records.ReadOnce(ctx, store.TransactionsPath(event.UID))
	if err != nil {
		return fmt.Errorf("read collection: %w", err)
	}

	tx, ok := snap.Records[event.ID]
	if !ok {
		// Deleted between publish and consume. Nothing to back up.
		slog.WarnContext(ctx, "Transaction vanished before backup",
			"uid", event.UID, "id", event.ID)
		return nil
	}

	ref, err := w.backup.AppendTransaction(ctx, event.UID, event.ID, tx)
	if err != nil {
		return fmt.Errorf("append to backup: %w", err)
	}
	w.markSynced(event.UID, event.ID)

	slog.InfoContext(ctx, "Transaction backed up",
		"uid", event.UID, "id", event.ID, "ref", ref)
	return nil
}

func (w *BackupWorker) handleDeleted(ctx context.Context, event *bus.TransactionEvent) error {
	if err := w.backup.MarkDeleted(ctx, event.UID, event.ID); err != nil {
		return fmt.Errorf("mark deleted in backup: %w", err)
	}
	w.clearSynced(event.UID, event.ID)

	slog.InfoContext(ctx, "Transaction deletion backed up",
		"uid", event.UID, "id", event.ID)
	return nil
}

// StartupSyncCheck journals every record currently in every user's collection.
// Run once at boot to recover from events missed while the worker was down.
func (w *BackupWorker) StartupSyncCheck(ctx context.Context) error {
	return w.syncPending(ctx, 0)
}

// SyncPending journals records the event stream has not delivered yet, at most
// batchSize appends per call. Leftovers are picked up on the next sweep.
func (w *BackupWorker) SyncPending(ctx context.Context) error {
	return w.syncPending(ctx, w.batchSize)
}

func (w *BackupWorker) syncPending(ctx context.Context, limit int) error {
	if w.users == nil {
		slog.WarnContext(ctx, "No user lister configured, skipping sync")
		return nil
	}
	uids, err := w.users.UserIDs(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	var appended, failed int
	for _, uid := range uids {
		snap, err := w.records.ReadOnce(ctx, store.TransactionsPath(uid))
		if err != nil {
			slog.ErrorContext(ctx, "Sync read failed", "uid", uid, "error", err)
			failed++
			continue
		}
		for _, key := range snap.Keys {
			if limit > 0 && appended >= limit {
				slog.InfoContext(ctx, "Sync batch limit reached", "appended", appended)
				return nil
			}
			if w.alreadySynced(uid, key) {
				continue
			}
			if _, err := w.backup.AppendTransaction(ctx, uid, key, snap.Records[key]); err != nil {
				slog.ErrorContext(ctx, "Sync append failed",
					"uid", uid, "id", key, "error", err)
				failed++
				continue
			}
			w.markSynced(uid, key)
			appended++
		}
	}
	if failed > 0 {
		return errors.New("sync completed with errors")
	}

	slog.InfoContext(ctx, "Sync completed", "users", len(uids), "appended", appended)
	return nil
}

func (w *BackupWorker) alreadySynced(uid, id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.synced[uid+"/"+id]
	return ok
}

func (w *BackupWorker) markSynced(uid, id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.synced[uid+"/"+id] = struct{}{}
}

func (w *BackupWorker) clearSynced(uid, id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.synced, uid+"/"+id)
}
