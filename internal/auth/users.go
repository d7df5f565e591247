package auth

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a credential-store account. Email is the natural key, stored
// lowercase. PassHash is the argon2id encoded string and never leaves the
// server; responses go through Public().
type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	Name       string             `bson:"name"`
	Email      string             `bson:"email"`
	PassHash   string             `bson:"pass_hash"`
	Role       Role               `bson:"role"`
	Approved   bool               `bson:"approved"`
	ApprovedAt *time.Time         `bson:"approved_at,omitempty"`
	ApprovedBy string             `bson:"approved_by,omitempty"`
	CreatedAt  time.Time          `bson:"created_at"`
	UpdatedAt  time.Time          `bson:"updated_at"`
}

// PublicUser is the client-facing view of an account, without the hash.
type PublicUser struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Role       Role       `json:"role"`
	Approved   bool       `json:"approved"`
	ApprovedAt *time.Time `json:"approvedAt,omitempty"`
	ApprovedBy string     `json:"approvedBy,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

func (u *User) Public() *PublicUser {
	return &PublicUser{
		ID:         u.ID.Hex(),
		Name:       u.Name,
		Email:      u.Email,
		Role:       u.Role,
		Approved:   u.Approved,
		ApprovedAt: u.ApprovedAt,
		ApprovedBy: u.ApprovedBy,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

// UserUpdate carries a partial admin update; nil fields are left untouched.
type UserUpdate struct {
	Name     *string
	Email    *string
	Role     *Role
	Approved *bool
}

type UserStore interface {
	Add(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]User, error)
	ListPending(ctx context.Context) ([]User, error)
	Update(ctx context.Context, id string, upd UserUpdate) (*User, error)
	Delete(ctx context.Context, id string) error
	Approve(ctx context.Context, id, approvedBy string) (*User, error)
	BulkApprove(ctx context.Context, ids []string, approvedBy string) (int64, error)
	Count(ctx context.Context) (int64, error)
}

// MemoryUserStore is an in-process UserStore used by tests and the degraded
// dev mode. Safe for concurrent use.
type MemoryUserStore struct {
	mu      sync.RWMutex
	byID    map[string]*User
	byEmail map[string]string // email -> id
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{
		byID:    map[string]*User{},
		byEmail: map[string]string{},
	}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *MemoryUserStore) Add(_ context.Context, u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := NormalizeEmail(u.Email)
	if _, exists := s.byEmail[email]; exists {
		return ErrEmailTaken
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	u.Email = email
	u.CreatedAt = now
	u.UpdatedAt = now

	clone := *u
	s.byID[u.ID.Hex()] = &clone
	s.byEmail[email] = u.ID.Hex()
	return nil
}

func (s *MemoryUserStore) FindByID(_ context.Context, id string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.byID[id]; ok {
		clone := *u
		return &clone, nil
	}
	return nil, ErrUserNotFound
}

func (s *MemoryUserStore) FindByEmail(_ context.Context, email string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if id, ok := s.byEmail[NormalizeEmail(email)]; ok {
		clone := *s.byID[id]
		return &clone, nil
	}
	return nil, ErrUserNotFound
}

func (s *MemoryUserStore) List(_ context.Context) ([]User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]User, 0, len(s.byID))
	for _, u := range s.byID {
		out = append(out, *u)
	}
	sortUsersNewestFirst(out)
	return out, nil
}

func (s *MemoryUserStore) ListPending(_ context.Context) ([]User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []User
	for _, u := range s.byID {
		if !u.Approved {
			out = append(out, *u)
		}
	}
	sortUsersNewestFirst(out)
	return out, nil
}

func (s *MemoryUserStore) Update(_ context.Context, id string, upd UserUpdate) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	if upd.Email != nil {
		email := NormalizeEmail(*upd.Email)
		if other, exists := s.byEmail[email]; exists && other != id {
			return nil, ErrEmailTaken
		}
		delete(s.byEmail, u.Email)
		u.Email = email
		s.byEmail[email] = id
	}
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.Role != nil {
		u.Role = *upd.Role
	}
	if upd.Approved != nil {
		u.Approved = *upd.Approved
	}
	u.UpdatedAt = time.Now().UTC()
	clone := *u
	return &clone, nil
}

func (s *MemoryUserStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return ErrUserNotFound
	}
	delete(s.byEmail, u.Email)
	delete(s.byID, id)
	return nil
}

func (s *MemoryUserStore) Approve(_ context.Context, id, approvedBy string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	now := time.Now().UTC()
	u.Approved = true
	u.ApprovedAt = &now
	u.ApprovedBy = approvedBy
	u.UpdatedAt = now
	clone := *u
	return &clone, nil
}

func (s *MemoryUserStore) BulkApprove(_ context.Context, ids []string, approvedBy string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	var n int64
	for _, id := range ids {
		u, ok := s.byID[id]
		if !ok || u.Approved {
			continue
		}
		u.Approved = true
		u.ApprovedAt = &now
		u.ApprovedBy = approvedBy
		u.UpdatedAt = now
		n++
	}
	return n, nil
}

func (s *MemoryUserStore) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.byID)), nil
}

func sortUsersNewestFirst(users []User) {
	sort.Slice(users, func(i, j int) bool {
		if users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].ID.Hex() > users[j].ID.Hex()
		}
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})
}
