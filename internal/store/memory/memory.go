// Package memory is the in-process record store backend: collections live in
// maps, subscriptions fan out synchronously. It is the default backend and
// the one the tests run against.
package memory

import (
	"context"
	"fmt"
	"sync"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

type collection struct {
	keys    []string
	records map[string]core.Transaction
}

type subscriber struct {
	path string
	fn   store.SnapshotFunc
}

type Store struct {
	mu         sync.Mutex
	colls      map[string]*collection
	subs       map[store.Handle]subscriber
	nextHandle store.Handle
	nextKey    int64
}

var _ store.RecordStore = (*Store)(nil)

func New() *Store {
	return &Store{
		colls: make(map[string]*collection),
		subs:  make(map[store.Handle]subscriber),
	}
}

// Subscribe registers fn for the path and delivers the current snapshot
// before returning.
func (s *Store) Subscribe(path string, fn store.SnapshotFunc) store.Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextHandle++
	h := s.nextHandle
	s.subs[h] = subscriber{path: path, fn: fn}
	fn(s.snapshotLocked(path))
	return h
}

// Unsubscribe stops delivery for h. Safe to call with an unknown or already
// removed handle; no callback fires after it returns.
func (s *Store) Unsubscribe(h store.Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, h)
}

// Create stores tx under a fresh key and notifies the path's subscribers.
func (s *Store) Create(_ context.Context, path string, tx core.Transaction) (string, error) {
	if _, err := store.UserFromPath(path); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	coll, ok := s.colls[path]
	if !ok {
		coll = &collection{records: make(map[string]core.Transaction)}
		s.colls[path] = coll
	}
	s.nextKey++
	key := fmt.Sprintf("tx%08d", s.nextKey)
	tx.ID = ""
	coll.keys = append(coll.keys, key)
	coll.records[key] = tx

	s.notifyLocked(path)
	return key, nil
}

// Delete removes the record with the given id and notifies subscribers.
func (s *Store) Delete(_ context.Context, path, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	coll, ok := s.colls[path]
	if !ok {
		return store.ErrNotFound
	}
	if _, ok := coll.records[id]; !ok {
		return store.ErrNotFound
	}
	delete(coll.records, id)
	for i, k := range coll.keys {
		if k == id {
			coll.keys = append(coll.keys[:i], coll.keys[i+1:]...)
			break
		}
	}

	s.notifyLocked(path)
	return nil
}

// ReadOnce returns the current snapshot without touching subscriptions.
func (s *Store) ReadOnce(_ context.Context, path string) (store.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(path), nil
}

func (s *Store) snapshotLocked(path string) store.Snapshot {
	snap := store.Snapshot{Records: make(map[string]core.Transaction)}
	coll, ok := s.colls[path]
	if !ok {
		return snap
	}
	snap.Keys = append([]string(nil), coll.keys...)
	for k, v := range coll.records {
		snap.Records[k] = v
	}
	return snap
}

func (s *Store) notifyLocked(path string) {
	snap := s.snapshotLocked(path)
	for _, sub := range s.subs {
		if sub.path == path {
			sub.fn(snap)
		}
	}
}
