package userstore

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/hexfray/credauth"
)

// Memory is an in-memory credauth.UserStore for tests and examples. It is
// safe for concurrent use.
type Memory struct {
	mu      sync.Mutex
	byID    map[string]credauth.UserRecord
	byEmail map[string]string
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		byID:    make(map[string]credauth.UserRecord),
		byEmail: make(map[string]string),
	}
}

// Seed inserts a record with a fixed id, bypassing id assignment. Test
// helper; last write wins.
func (s *Memory) Seed(record credauth.UserRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[record.ID] = record
	s.byEmail[record.Email] = record.ID
}

func (s *Memory) FindByEmail(_ context.Context, email string) (*credauth.UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byEmail[email]
	if !ok {
		return nil, nil
	}
	record := s.byID[id]
	return &record, nil
}

func (s *Memory) FindByID(_ context.Context, id string) (*credauth.UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	return &record, nil
}

func (s *Memory) Insert(_ context.Context, record credauth.UserRecord) (*credauth.UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[record.Email]; exists {
		return nil, ErrEmailTaken
	}

	record.ID = uuid.NewString()
	s.byID[record.ID] = record
	s.byEmail[record.Email] = record.ID
	return &record, nil
}

func (s *Memory) UpdateFields(_ context.Context, id string, fields credauth.UserFields) (*credauth.UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	if fields.Name != nil {
		record.Name = *fields.Name
	}
	if fields.PasswordHash != nil {
		record.PasswordHash = *fields.PasswordHash
	}
	s.byID[id] = record
	return &record, nil
}
