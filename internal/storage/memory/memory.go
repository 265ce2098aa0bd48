package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"spentify/internal/core"
)

// Store keeps users and records in process memory.
type Store struct {
	mu      sync.Mutex
	users   map[string]core.User // by id
	records []core.Record
	now     func() time.Time
}

func New() *Store {
	return &Store{
		users: make(map[string]core.User),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// CreateRecord stores a copy of the record. Missing id and created_at are filled in.
func (s *Store) CreateRecord(_ context.Context, r core.Record) error {
	if err := r.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[r.UserID]; !ok {
		return core.ErrNotFound
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = s.now()
	}
	s.records = append(s.records, r)
	return nil
}

func (s *Store) DeleteRecord(_ context.Context, userID, recordID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, r := range s.records {
		if r.ID == recordID && r.UserID == userID {
			s.records = append(s.records[:i], s.records[i+1:]...)
			return nil
		}
	}
	return core.ErrNotFound
}

func (s *Store) ListRecords(_ context.Context, userID string, limit int) ([]core.Record, error) {
	out := s.owned(userID)
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) AllRecords(_ context.Context, userID string) ([]core.Record, error) {
	return s.owned(userID), nil
}

func (s *Store) SumAndCount(_ context.Context, userID string) (float64, int, error) {
	owned := s.owned(userID)
	return core.Sum(owned), core.CountPositive(owned), nil
}

func (s *Store) MinMax(_ context.Context, userID string) (float64, float64, error) {
	min, max := core.MinMax(s.owned(userID))
	return min, max, nil
}

// owned returns the user's records newest first.
func (s *Store) owned(userID string) []core.Record {
	s.mu.Lock()
	out := make([]core.Record, 0, len(s.records))
	for _, r := range s.records {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	s.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[i].Date.After(out[j].Date.Time)
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *Store) UserBySubject(_ context.Context, subjectID string) (core.User, error) {
	return s.findUser(func(u core.User) bool { return subjectID != "" && u.SubjectID == subjectID })
}

func (s *Store) UserByEmail(_ context.Context, email string) (core.User, error) {
	return s.findUser(func(u core.User) bool { return u.Email == email })
}

func (s *Store) AttachSubject(_ context.Context, email string, p core.Principal) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, u := range s.users {
		if u.Email != email {
			continue
		}
		u.SubjectID = p.SubjectID
		u.Name = p.DisplayName()
		u.ImageURL = p.ImageURL
		u.UpdatedAt = s.now()
		s.users[id] = u
		return u, nil
	}
	return core.User{}, core.ErrNotFound
}

// CreateUser enforces the same uniqueness as the relational schema.
func (s *Store) CreateUser(_ context.Context, u core.User) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == u.Email {
			return core.User{}, errDuplicate("email")
		}
		if u.SubjectID != "" && existing.SubjectID == u.SubjectID {
			return core.User{}, errDuplicate("subject_id")
		}
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := s.now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	s.users[u.ID] = u
	return u, nil
}

// Ping implements ports.HealthChecker
func (s *Store) Ping(context.Context) error {
	return nil
}

func (s *Store) findUser(match func(core.User) bool) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if match(u) {
			return u, nil
		}
	}
	return core.User{}, core.ErrNotFound
}

type errDuplicate string

func (e errDuplicate) Error() string {
	return "unique constraint failed: users." + string(e)
}
