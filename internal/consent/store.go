package consent

import (
	"context"
	"errors"
	"sync"

	"github.com/nao1215/sitenav/internal/model"
)

// ErrNoConsent is returned by a Store holding no choice for a session.
var ErrNoConsent = errors.New("no consent stored")

// Store persists consent choices by session.
type Store interface {
	LoadConsent(ctx context.Context, sessionID string) (*model.ConsentRecord, error)
	SaveConsent(ctx context.Context, record *model.ConsentRecord) error
	DeleteConsent(ctx context.Context, sessionID string) error
}

// MemoryStore is a Store kept in memory.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]model.ConsentRecord
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]model.ConsentRecord)}
}

// LoadConsent returns the record of sessionID or ErrNoConsent.
func (s *MemoryStore) LoadConsent(_ context.Context, sessionID string) (*model.ConsentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[sessionID]
	if !ok {
		return nil, ErrNoConsent
	}
	return &rec, nil
}

// SaveConsent stores record, replacing any previous choice.
func (s *MemoryStore) SaveConsent(_ context.Context, record *model.ConsentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.SessionID] = *record
	return nil
}

// DeleteConsent forgets the choice of sessionID.
func (s *MemoryStore) DeleteConsent(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, sessionID)
	return nil
}
