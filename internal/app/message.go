package app

import (
	"fmt"
	"sync"

	"golang-wa-broadcast/internal/domain"
)

// MessageStore holds the current outgoing text.
type MessageStore struct {
	mu   sync.RWMutex
	text string
	set  bool
}

// Set overwrites the stored text. Empty text is rejected.
func (m *MessageStore) Set(text string) error {
	if text == "" {
		return fmt.Errorf("%w: message is empty", domain.ErrInvalidInput)
	}
	m.mu.Lock()
	m.text, m.set = text, true
	m.mu.Unlock()
	return nil
}

// Get returns the stored text and whether one has been set.
func (m *MessageStore) Get() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.text, m.set
}
