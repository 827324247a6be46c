// Package sqlite is the durable record store backend. Records persist in a
// local SQLite database; subscriptions fan out in-process after each commit,
// so subscribers see the same full-snapshot contract as the memory backend.
package sqlite

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/store"

	_ "modernc.org/sqlite"
)

type subscriber struct {
	path string
	fn   store.SnapshotFunc
}

type Store struct {
	db *sql.DB

	mu         sync.Mutex
	subs       map[store.Handle]subscriber
	nextHandle store.Handle
}

var _ store.RecordStore = (*Store)(nil)

func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{
		db:   db,
		subs: make(map[store.Handle]subscriber),
	}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Subscribe delivers the current snapshot immediately, then again after every
// committed change to the path.
func (s *Store) Subscribe(path string, fn store.SnapshotFunc) store.Handle {
	snap, err := s.ReadOnce(context.Background(), path)
	if err != nil {
		slog.Error("Initial snapshot read failed", "path", path, "error", err)
		snap = store.Snapshot{Records: map[string]core.Transaction{}}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextHandle++
	h := s.nextHandle
	s.subs[h] = subscriber{path: path, fn: fn}
	fn(snap)
	return h
}

// Unsubscribe is idempotent; no callback fires for h after it returns.
func (s *Store) Unsubscribe(h store.Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, h)
}

// Create inserts the record and returns the row id as the record key.
func (s *Store) Create(ctx context.Context, path string, tx core.Transaction) (string, error) {
	uid, err := store.UserFromPath(path)
	if err != nil {
		return "", err
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO transactions (uid, type, amount, date, category, description, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		uid, string(tx.Type), tx.Amount, tx.Date, tx.Category, tx.Desc, tx.Timestamp)
	if err != nil {
		return "", fmt.Errorf("insert transaction: %w", err)
	}
	rowID, err := res.LastInsertId()
	if err != nil {
		return "", fmt.Errorf("last insert id: %w", err)
	}
	id := strconv.FormatInt(rowID, 10)

	slog.InfoContext(ctx, "Transaction saved",
		"id", id, "uid", uid, "type", tx.Type, "amount", tx.Amount, "date", tx.Date)

	s.notify(ctx, path)
	return id, nil
}

// Delete removes one record by id.
func (s *Store) Delete(ctx context.Context, path, id string) error {
	uid, err := store.UserFromPath(path)
	if err != nil {
		return err
	}
	rowID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return store.ErrNotFound
	}

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE uid = ? AND id = ?`, uid, rowID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}

	slog.InfoContext(ctx, "Transaction deleted", "id", id, "uid", uid)

	s.notify(ctx, path)
	return nil
}

// ReadOnce loads the full collection in insertion (row id) order.
func (s *Store) ReadOnce(ctx context.Context, path string) (store.Snapshot, error) {
	uid, err := store.UserFromPath(path)
	if err != nil {
		return store.Snapshot{}, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, type, amount, date, category, description, timestamp
		 FROM transactions WHERE uid = ? ORDER BY id`, uid)
	if err != nil {
		return store.Snapshot{}, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	snap := store.Snapshot{Records: make(map[string]core.Transaction)}
	for rows.Next() {
		var (
			rowID int64
			typ   string
			tx    core.Transaction
		)
		if err := rows.Scan(&rowID, &typ, &tx.Amount, &tx.Date, &tx.Category, &tx.Desc, &tx.Timestamp); err != nil {
			return store.Snapshot{}, fmt.Errorf("scan transaction: %w", err)
		}
		tx.Type = core.Type(typ)
		key := strconv.FormatInt(rowID, 10)
		snap.Keys = append(snap.Keys, key)
		snap.Records[key] = tx
	}
	if err := rows.Err(); err != nil {
		return store.Snapshot{}, fmt.Errorf("iterate transactions: %w", err)
	}
	return snap, nil
}

func (s *Store) notify(ctx context.Context, path string) {
	snap, err := s.ReadOnce(ctx, path)
	if err != nil {
		slog.ErrorContext(ctx, "Snapshot rebuild after change failed", "path", path, "error", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sub := range s.subs {
		if sub.path == path {
			sub.fn(snap)
		}
	}
}

// CreateUser registers a new user and returns its generated uid.
// Implements the auth user store.
func (s *Store) CreateUser(ctx context.Context, email, passwordHash string) (string, error) {
	var existing string
	err := s.db.QueryRowContext(ctx, `SELECT uid FROM users WHERE email = ?`, email).Scan(&existing)
	if err == nil {
		return "", store.ErrEmailTaken
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("check email: %w", err)
	}

	uid := newUID()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO users (uid, email, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		uid, email, passwordHash, time.Now().UnixMilli())
	if err != nil {
		return "", fmt.Errorf("insert user: %w", err)
	}
	slog.InfoContext(ctx, "User registered", "uid", uid, "email", email)
	return uid, nil
}

// UserByEmail looks up a user's uid and password hash.
func (s *Store) UserByEmail(ctx context.Context, email string) (uid, passwordHash string, err error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT uid, password_hash FROM users WHERE email = ?`, email)
	if err := row.Scan(&uid, &passwordHash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", "", store.ErrNotFound
		}
		return "", "", fmt.Errorf("query user: %w", err)
	}
	return uid, passwordHash, nil
}

// UserIDs lists every registered uid, oldest registration first.
func (s *Store) UserIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT uid FROM users ORDER BY created_at, uid`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var uids []string
	for rows.Next() {
		var uid string
		if err := rows.Scan(&uid); err != nil {
			return nil, fmt.Errorf("scan uid: %w", err)
		}
		uids = append(uids, uid)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return uids, nil
}

func newUID() string {
	b := make([]byte, 12)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("u%d", time.Now().UnixNano())
	}
	return "u" + hex.EncodeToString(b)
}
