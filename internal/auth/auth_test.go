package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"fintrack/internal/store"
	"fintrack/internal/store/memory"
)

func newTestService() *Service {
	return NewService(memory.NewUserStore(), "test-secret", time.Hour)
}

func TestSignUpAndSignIn(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	if err := svc.SignUp(ctx, "a@example.com", "hunter2"); err != nil {
		t.Fatalf("sign up: %v", err)
	}
	if err := svc.SignUp(ctx, "a@example.com", "other"); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("duplicate sign up err = %v, want ErrEmailTaken", err)
	}

	token, err := svc.SignIn(ctx, "a@example.com", "hunter2")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if token == "" {
		t.Fatal("empty token")
	}

	user, err := svc.VerifyToken(token)
	if err != nil {
		t.Fatalf("verify token: %v", err)
	}
	if user.UID == "" || user.Email != "a@example.com" {
		t.Fatalf("token user = %+v", user)
	}
}

// racingUserStore reports the email as free on lookup but taken on create,
// like a concurrent signup landing between the two calls.
type racingUserStore struct{}

func (racingUserStore) CreateUser(context.Context, string, string) (string, error) {
	return "", store.ErrEmailTaken
}

func (racingUserStore) UserByEmail(context.Context, string) (string, string, error) {
	return "", "", store.ErrNotFound
}

func TestSignUpRaceMapsToEmailTaken(t *testing.T) {
	svc := NewService(racingUserStore{}, "test-secret", time.Hour)
	err := svc.SignUp(context.Background(), "a@example.com", "hunter2")
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("err = %v, want ErrEmailTaken", err)
	}
}

func TestSignInRejections(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	if err := svc.SignUp(ctx, "a@example.com", "hunter2"); err != nil {
		t.Fatalf("sign up: %v", err)
	}

	tests := []struct {
		name     string
		email    string
		password string
		want     error
	}{
		{"empty email", "", "x", ErrMissingCredentials},
		{"empty password", "a@example.com", "", ErrMissingCredentials},
		{"unknown user", "b@example.com", "x", ErrInvalidCredentials},
		{"wrong password", "a@example.com", "nope", ErrInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.SignIn(ctx, tt.email, tt.password); !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestVerifyTokenRejectsGarbage(t *testing.T) {
	svc := newTestService()
	for _, tok := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := svc.VerifyToken(tok); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("VerifyToken(%q) err = %v, want ErrInvalidToken", tok, err)
		}
	}
}

func TestVerifyTokenRejectsExpired(t *testing.T) {
	ctx := context.Background()
	svc := NewService(memory.NewUserStore(), "test-secret", -time.Hour)
	svc.tokenTTL = -time.Hour // NewService floors non-positive TTLs
	if err := svc.SignUp(ctx, "a@example.com", "hunter2"); err != nil {
		t.Fatalf("sign up: %v", err)
	}
	token, err := svc.SignIn(ctx, "a@example.com", "hunter2")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if _, err := svc.VerifyToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expired token err = %v, want ErrInvalidToken", err)
	}
}
