package services

import (
	"context"
	"errors"
	"testing"

	"fintrack/internal/bus"
	"fintrack/internal/core"
	"fintrack/internal/store"
	"fintrack/internal/store/memory"
)

type capturingPublisher struct {
	events []*bus.TransactionEvent
	err    error
}

func (p *capturingPublisher) PublishTransactionEvent(_ context.Context, e *bus.TransactionEvent) error {
	p.events = append(p.events, e)
	return p.err
}

func TestCreateValidatesAndFillsDefaults(t *testing.T) {
	ctx := context.Background()
	mem := memory.New()
	pub := &capturingPublisher{}
	svc := NewTransactionService(mem, pub)

	id, err := svc.Create(ctx, "u1", core.Transaction{
		Type: core.Income, Amount: 1000, Date: "2024-03-05",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	snap, err := mem.ReadOnce(ctx, store.TransactionsPath("u1"))
	if err != nil {
		t.Fatalf("read once: %v", err)
	}
	got := snap.Records[id]
	if got.Category != "Salary" {
		t.Fatalf("income fallback category = %q, want Salary", got.Category)
	}
	if got.Timestamp == 0 {
		t.Fatal("timestamp not stamped")
	}

	if len(pub.events) != 1 || pub.events[0].Action != bus.ActionCreated || pub.events[0].ID != id {
		t.Fatalf("published events = %+v", pub.events)
	}
}

func TestCreateRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	svc := NewTransactionService(memory.New(), nil)

	tests := []struct {
		name string
		tx   core.Transaction
		want error
	}{
		{"bad type", core.Transaction{Type: "loan", Amount: 1, Date: "2024-03-05"}, core.ErrInvalidType},
		{"zero amount", core.Transaction{Type: core.Expense, Amount: 0, Date: "2024-03-05"}, core.ErrInvalidAmount},
		{"negative amount", core.Transaction{Type: core.Expense, Amount: -5, Date: "2024-03-05"}, core.ErrInvalidAmount},
		{"bad date", core.Transaction{Type: core.Expense, Amount: 5, Date: "05/03/2024"}, core.ErrInvalidDate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Create(ctx, "u1", tt.tx); !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCreateSurvivesPublishFailure(t *testing.T) {
	ctx := context.Background()
	pub := &capturingPublisher{err: errors.New("broker down")}
	svc := NewTransactionService(memory.New(), pub)

	if _, err := svc.Create(ctx, "u1", core.Transaction{
		Type: core.Expense, Amount: 10, Date: "2024-03-05",
	}); err != nil {
		t.Fatalf("create should ignore publish failure, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	mem := memory.New()
	pub := &capturingPublisher{}
	svc := NewTransactionService(mem, pub)

	id, err := svc.Create(ctx, "u1", core.Transaction{
		Type: core.Saving, Amount: 100, Date: "2024-03-05",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Delete(ctx, "u1", id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.Delete(ctx, "u1", id); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("second delete err = %v, want ErrNotFound", err)
	}
	if len(pub.events) != 2 || pub.events[1].Action != bus.ActionDeleted {
		t.Fatalf("events = %+v", pub.events)
	}
}
