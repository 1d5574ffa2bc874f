package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/a01041072831-pixel/Jisan-Platform/internal/models"
	"github.com/a01041072831-pixel/Jisan-Platform/internal/transcript"
)

// MemoryStore keeps sessions in process memory. The default backend for
// single-instance deployments and tests; sessions do not survive a restart.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]models.ReportSession
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]models.ReportSession)}
}

func (m *MemoryStore) Create(_ context.Context, s *models.ReportSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.sessions[s.ID]; exists {
		return fmt.Errorf("session %s already exists", s.ID)
	}
	m.sessions[s.ID] = clone(s)
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*models.ReportSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := cloneValue(s)
	return &out, nil
}

func (m *MemoryStore) Save(_ context.Context, s *models.ReportSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.sessions[s.ID]; !exists {
		return ErrNotFound
	}
	m.sessions[s.ID] = clone(s)
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.sessions[id]; !exists {
		return ErrNotFound
	}
	delete(m.sessions, id)
	return nil
}

// clone copies a session so callers cannot mutate stored state through
// shared slices.
func clone(s *models.ReportSession) models.ReportSession {
	return cloneValue(*s)
}

func cloneValue(s models.ReportSession) models.ReportSession {
	out := s
	out.UploadedTexts = append([]string(nil), s.UploadedTexts...)
	out.Conversation = append([]transcript.Message(nil), s.Conversation...)
	out.Intake.Contracts = append([]models.InsuranceContract(nil), s.Intake.Contracts...)
	return out
}
