package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zhouzirui/onboard/internal/model/onboarding"
)

// MemoryStore keeps everything in process memory. Suitable for development
// and tests; nothing survives a restart.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]onboarding.Session
	records  map[string][]onboarding.Record
	vehicles map[string][]onboarding.Vehicle
}

// NewMemory bootstraps an empty in-memory repository.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]onboarding.Session),
		records:  make(map[string][]onboarding.Record),
		vehicles: make(map[string][]onboarding.Vehicle),
	}
}

func (s *MemoryStore) CreateSession(_ context.Context) (onboarding.Session, error) {
	session := onboarding.Session{
		ID:          uuid.NewString(),
		StartedAt:   time.Now().UTC(),
		CurrentStep: onboarding.StepZip,
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.records[session.ID] = make([]onboarding.Record, 0, 16)
	s.mu.Unlock()

	return session, nil
}

func (s *MemoryStore) GetSession(_ context.Context, sessionID string) (onboarding.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return onboarding.Session{}, ErrSessionNotFound
	}
	return session, nil
}

func (s *MemoryStore) UpdateSession(_ context.Context, session onboarding.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.sessions[session.ID]
	if !ok {
		return ErrSessionNotFound
	}
	session.StartedAt = existing.StartedAt
	s.sessions[session.ID] = session
	return nil
}

func (s *MemoryStore) ListSessions(_ context.Context, filter ListFilter) ([]onboarding.Session, error) {
	s.mu.RLock()
	out := make([]onboarding.Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		if filter.match(session) {
			out = append(out, session)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].StartedAt.Before(out[j].StartedAt)
	})
	return out, nil
}

func (s *MemoryStore) SaveRecord(_ context.Context, record onboarding.Record) error {
	if record.SessionID == "" {
		return ErrSessionNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[record.SessionID]; !ok {
		return ErrSessionNotFound
	}

	record.ID = uuid.NewString()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	s.records[record.SessionID] = append(s.records[record.SessionID], record)
	return nil
}

func (s *MemoryStore) LoadTranscript(_ context.Context, sessionID string) ([]onboarding.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records, ok := s.records[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}

	copied := make([]onboarding.Record, len(records))
	copy(copied, records)
	return copied, nil
}

func (s *MemoryStore) SaveVehicle(_ context.Context, sessionID string, vehicle onboarding.Vehicle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sessionID]; !ok {
		return ErrSessionNotFound
	}
	if vehicle.CreatedAt.IsZero() {
		vehicle.CreatedAt = time.Now().UTC()
	}
	s.vehicles[sessionID] = append(s.vehicles[sessionID], vehicle)
	return nil
}

func (s *MemoryStore) ListVehicles(_ context.Context, sessionID string) ([]onboarding.Vehicle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.sessions[sessionID]; !ok {
		return nil, ErrSessionNotFound
	}
	vehicles := s.vehicles[sessionID]
	copied := make([]onboarding.Vehicle, len(vehicles))
	copy(copied, vehicles)
	return copied, nil
}

func (s *MemoryStore) Close() error { return nil }
