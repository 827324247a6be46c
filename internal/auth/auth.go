// Package auth provides email/password authentication for the tracker:
// sign-up, and sign-in with a signed session token the API verifies per
// request. Session state itself lives in the session controllers, keyed by
// uid; the service is stateless.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"fintrack/internal/store"
)

var (
	ErrMissingCredentials = errors.New("fill email & password")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = store.ErrEmailTaken
	ErrInvalidToken       = errors.New("invalid token")
)

// User is a verified identity.
type User struct {
	UID   string
	Email string
}

// UserStore persists registered users.
type UserStore interface {
	CreateUser(ctx context.Context, email, passwordHash string) (uid string, err error)
	UserByEmail(ctx context.Context, email string) (uid, passwordHash string, err error)
}

// Service authenticates users and issues session tokens.
type Service struct {
	users    UserStore
	secret   []byte
	tokenTTL time.Duration
}

func NewService(users UserStore, secret string, tokenTTL time.Duration) *Service {
	if tokenTTL <= 0 {
		tokenTTL = 168 * time.Hour
	}
	return &Service{
		users:    users,
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
	}
}

// SignUp registers a new account. It does not sign the user in.
func (s *Service) SignUp(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return ErrMissingCredentials
	}

	if _, _, err := s.users.UserByEmail(ctx, email); err == nil {
		return ErrEmailTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("look up user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	uid, err := s.users.CreateUser(ctx, email, string(hash))
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	slog.InfoContext(ctx, "Sign-up successful", "uid", uid, "email", email)
	return nil
}

// SignIn verifies credentials and issues a session token.
func (s *Service) SignIn(ctx context.Context, email, password string) (string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return "", ErrMissingCredentials
	}

	uid, hash, err := s.users.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("look up user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"uid":   uid,
		"email": email,
		"exp":   time.Now().Add(s.tokenTTL).Unix(),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	slog.InfoContext(ctx, "Sign-in successful", "uid", uid, "email", email)
	return signed, nil
}

// VerifyToken parses a session token back into its user.
func (s *Service) VerifyToken(tokenString string) (*User, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	uid, _ := claims["uid"].(string)
	email, _ := claims["email"].(string)
	if uid == "" {
		return nil, ErrInvalidToken
	}
	return &User{UID: uid, Email: email}, nil
}
