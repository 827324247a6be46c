package memory

import (
	"context"
	"testing"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

func TestSubscribeDeliversImmediately(t *testing.T) {
	s := New()
	path := store.TransactionsPath("u1")

	var got []store.Snapshot
	h := s.Subscribe(path, func(snap store.Snapshot) { got = append(got, snap) })
	defer s.Unsubscribe(h)

	if len(got) != 1 {
		t.Fatalf("expected immediate snapshot, got %d deliveries", len(got))
	}
	if got[0].Len() != 0 {
		t.Fatalf("expected empty snapshot, got %d records", got[0].Len())
	}
}

func TestCreateNotifiesAndAssignsIDs(t *testing.T) {
	s := New()
	ctx := context.Background()
	path := store.TransactionsPath("u1")

	var last store.Snapshot
	h := s.Subscribe(path, func(snap store.Snapshot) { last = snap })
	defer s.Unsubscribe(h)

	id1, err := s.Create(ctx, path, core.Transaction{Type: core.Income, Amount: 10, Date: "2024-03-01", Timestamp: 1})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	id2, err := s.Create(ctx, path, core.Transaction{Type: core.Expense, Amount: 5, Date: "2024-03-02", Timestamp: 2})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id1 == "" || id1 == id2 {
		t.Fatalf("ids must be unique and non-empty: %q, %q", id1, id2)
	}

	if last.Len() != 2 {
		t.Fatalf("snapshot has %d records, want 2", last.Len())
	}
	// Key order is creation order.
	if last.Keys[0] != id1 || last.Keys[1] != id2 {
		t.Fatalf("key order = %v", last.Keys)
	}
	list := last.List()
	if list[0].ID != id1 || list[0].Amount != 10 {
		t.Fatalf("list[0] = %+v", list[0])
	}
}

func TestDeleteAndNotFound(t *testing.T) {
	s := New()
	ctx := context.Background()
	path := store.TransactionsPath("u1")

	id, _ := s.Create(ctx, path, core.Transaction{Type: core.Saving, Amount: 1, Date: "2024-01-01"})
	if err := s.Delete(ctx, path, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.Delete(ctx, path, id); err != store.ErrNotFound {
		t.Fatalf("second delete = %v, want ErrNotFound", err)
	}

	snap, err := s.ReadOnce(ctx, path)
	if err != nil {
		t.Fatalf("read once: %v", err)
	}
	if snap.Len() != 0 {
		t.Fatalf("expected empty collection, got %d", snap.Len())
	}
}

func TestUnsubscribeStopsDeliveryAndIsIdempotent(t *testing.T) {
	s := New()
	ctx := context.Background()
	path := store.TransactionsPath("u1")

	calls := 0
	h := s.Subscribe(path, func(store.Snapshot) { calls++ })
	s.Unsubscribe(h)
	s.Unsubscribe(h) // idempotent

	if _, err := s.Create(ctx, path, core.Transaction{Type: core.Income, Amount: 1, Date: "2024-01-01"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if calls != 1 {
		t.Fatalf("callback fired %d times, want 1 (initial only)", calls)
	}
}

func TestPathsAreIsolated(t *testing.T) {
	s := New()
	ctx := context.Background()

	var forU2 int
	h := s.Subscribe(store.TransactionsPath("u2"), func(store.Snapshot) { forU2++ })
	defer s.Unsubscribe(h)

	if _, err := s.Create(ctx, store.TransactionsPath("u1"), core.Transaction{Type: core.Income, Amount: 1, Date: "2024-01-01"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if forU2 != 1 {
		t.Fatalf("u2 subscriber saw u1's change (%d calls)", forU2)
	}
}

func TestCreateRejectsBadPath(t *testing.T) {
	s := New()
	if _, err := s.Create(context.Background(), "nonsense", core.Transaction{}); err == nil {
		t.Fatal("expected path error")
	}
}
