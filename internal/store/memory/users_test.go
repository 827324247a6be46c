package memory

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"fintrack/internal/store"
)

func TestUserStore(t *testing.T) {
	ctx := context.Background()
	users := NewUserStore()

	if _, _, err := users.UserByEmail(ctx, "a@example.com"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("missing user err = %v, want ErrNotFound", err)
	}

	uid, err := users.CreateUser(ctx, "a@example.com", "hash-a")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if _, err := users.CreateUser(ctx, "a@example.com", "hash-b"); !errors.Is(err, store.ErrEmailTaken) {
		t.Fatalf("duplicate email err = %v, want ErrEmailTaken", err)
	}

	gotUID, hash, err := users.UserByEmail(ctx, "a@example.com")
	if err != nil {
		t.Fatalf("user by email: %v", err)
	}
	if gotUID != uid || hash != "hash-a" {
		t.Fatalf("lookup = %q/%q", gotUID, hash)
	}
}

func TestUserIDs(t *testing.T) {
	ctx := context.Background()
	users := NewUserStore()

	uidA, _ := users.CreateUser(ctx, "a@example.com", "x")
	uidB, _ := users.CreateUser(ctx, "b@example.com", "x")

	uids, err := users.UserIDs(ctx)
	if err != nil {
		t.Fatalf("user ids: %v", err)
	}
	if !reflect.DeepEqual(uids, []string{uidA, uidB}) {
		t.Fatalf("uids = %v, want [%s %s]", uids, uidA, uidB)
	}
}
