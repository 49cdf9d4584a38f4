package archive

import (
	"context"
	"sync"

	"github.com/ethanbaker/mitra/pkg/chat"
	"github.com/google/uuid"
)

// InMemoryStore provides an in-memory archive for development and tests
type InMemoryStore struct {
	messages map[uuid.UUID][]chat.Message
	mutex    sync.RWMutex
}

// NewInMemoryStore creates a new in-memory archive
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		messages: make(map[uuid.UUID][]chat.Message),
	}
}

// SaveMessage appends a message to the view's transcript
func (s *InMemoryStore) SaveMessage(ctx context.Context, viewID uuid.UUID, msg chat.Message) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.messages[viewID] = append(s.messages[viewID], msg)
	return nil
}

// GetMessages returns a copy of the view's transcript
func (s *InMemoryStore) GetMessages(ctx context.Context, viewID uuid.UUID) ([]chat.Message, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return append([]chat.Message(nil), s.messages[viewID]...), nil
}

// DeleteMessages forgets the view's transcript
func (s *InMemoryStore) DeleteMessages(ctx context.Context, viewID uuid.UUID) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	delete(s.messages, viewID)
	return nil
}

// Close is a no-op for the in-memory store
func (s *InMemoryStore) Close() error {
	return nil
}
