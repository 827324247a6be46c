package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"fintrack/internal/store"
)

type userRecord struct {
	uid  string
	hash string
}

// UserStore keeps registered users in a map. Pairs with Store when the
// in-process backend is selected.
type UserStore struct {
	mu      sync.Mutex
	byEmail map[string]userRecord
	nextUID int64
}

func NewUserStore() *UserStore {
	return &UserStore{byEmail: make(map[string]userRecord)}
}

func (u *UserStore) CreateUser(_ context.Context, email, passwordHash string) (string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if _, ok := u.byEmail[email]; ok {
		return "", store.ErrEmailTaken
	}
	u.nextUID++
	uid := fmt.Sprintf("u%08d", u.nextUID)
	u.byEmail[email] = userRecord{uid: uid, hash: passwordHash}
	return uid, nil
}

func (u *UserStore) UserByEmail(_ context.Context, email string) (string, string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	rec, ok := u.byEmail[email]
	if !ok {
		return "", "", store.ErrNotFound
	}
	return rec.uid, rec.hash, nil
}

// UserIDs lists every registered uid in a stable order.
func (u *UserStore) UserIDs(_ context.Context) ([]string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	uids := make([]string, 0, len(u.byEmail))
	for _, rec := range u.byEmail {
		uids = append(uids, rec.uid)
	}
	sort.Strings(uids)
	return uids, nil
}
