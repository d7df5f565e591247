package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory stores backing the handler tests and the seeder's dry-run mode.
// Both mirror the Mongo implementations' uniqueness and sorting behavior.

type MemoryStudentStore struct {
	mu   sync.RWMutex
	byID map[string]*Student
}

func NewMemoryStudentStore() *MemoryStudentStore {
	return &MemoryStudentStore{byID: map[string]*Student{}}
}

func (m *MemoryStudentStore) Insert(_ context.Context, s *Student) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	email := strings.ToLower(strings.TrimSpace(s.Email))
	for _, other := range m.byID {
		if other.Email == email {
			return ErrDuplicate
		}
	}
	if s.ID.IsZero() {
		s.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	s.Email = email
	s.CreatedAt = now
	s.UpdatedAt = now
	clone := *s
	m.byID[s.ID.Hex()] = &clone
	return nil
}

func (m *MemoryStudentStore) FindByID(_ context.Context, id string) (*Student, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.byID[id]; ok {
		clone := *s
		return &clone, nil
	}
	return nil, ErrNotFound
}

func (m *MemoryStudentStore) FindByEmail(_ context.Context, email string) (*Student, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, s := range m.byID {
		if s.Email == email {
			clone := *s
			return &clone, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStudentStore) List(_ context.Context) ([]Student, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Student, 0, len(m.byID))
	for _, s := range m.byID {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.Hex() > out[j].ID.Hex()
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *MemoryStudentStore) Update(_ context.Context, id string, s *Student) (*Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	email := strings.ToLower(strings.TrimSpace(s.Email))
	for otherID, other := range m.byID {
		if otherID != id && other.Email == email {
			return nil, ErrDuplicate
		}
	}
	cur.Name = s.Name
	cur.Email = email
	cur.Phone = s.Phone
	cur.Course = s.Course
	cur.GPA = s.GPA
	cur.Status = s.Status
	cur.UpdatedAt = time.Now().UTC()
	clone := *cur
	return &clone, nil
}

func (m *MemoryStudentStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *MemoryStudentStore) Count(_ context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.byID)), nil
}

type MemoryCourseStore struct {
	mu   sync.RWMutex
	byID map[string]*Course
}

func NewMemoryCourseStore() *MemoryCourseStore {
	return &MemoryCourseStore{byID: map[string]*Course{}}
}

func (m *MemoryCourseStore) Insert(_ context.Context, c *Course) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	code := NormalizeCourseCode(c.Code)
	for _, other := range m.byID {
		if other.Code == code {
			return ErrDuplicate
		}
	}
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	c.Code = code
	c.CreatedAt = now
	c.UpdatedAt = now
	clone := *c
	m.byID[c.ID.Hex()] = &clone
	return nil
}

func (m *MemoryCourseStore) FindByID(_ context.Context, id string) (*Course, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if c, ok := m.byID[id]; ok {
		clone := *c
		return &clone, nil
	}
	return nil, ErrNotFound
}

func (m *MemoryCourseStore) FindByCode(_ context.Context, code string) (*Course, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	code = NormalizeCourseCode(code)
	for _, c := range m.byID {
		if c.Code == code {
			clone := *c
			return &clone, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryCourseStore) List(_ context.Context) ([]Course, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Course, 0, len(m.byID))
	for _, c := range m.byID {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.Hex() > out[j].ID.Hex()
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *MemoryCourseStore) Update(_ context.Context, id string, c *Course) (*Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	code := NormalizeCourseCode(c.Code)
	for otherID, other := range m.byID {
		if otherID != id && other.Code == code {
			return nil, ErrDuplicate
		}
	}
	cur.Name = c.Name
	cur.Code = code
	cur.Description = c.Description
	cur.Instructor = c.Instructor
	cur.Credits = c.Credits
	cur.Duration = c.Duration
	cur.Status = c.Status
	cur.UpdatedAt = time.Now().UTC()
	clone := *cur
	return &clone, nil
}

func (m *MemoryCourseStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *MemoryCourseStore) Count(_ context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.byID)), nil
}
