package app

import (
	"sync"

	"golang-wa-broadcast/internal/domain"
)

// Registry is the ordered, deduplicated, append-only set of recipients.
type Registry struct {
	mu      sync.RWMutex
	numbers []domain.PhoneNumber
	index   map[domain.PhoneNumber]struct{}
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{index: make(map[domain.PhoneNumber]struct{})}
}

// AddOne normalizes raw and appends it. added is false when the number was
// already registered; that case is not an error.
func (r *Registry) AddOne(raw string) (number domain.PhoneNumber, added bool, err error) {
	number, err = domain.NormalizePhoneNumber(raw)
	if err != nil {
		return "", false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.index[number]; ok {
		return number, false, nil
	}
	r.appendLocked(number)
	return number, true, nil
}

// AddMany normalizes every entry and appends the valid, unseen ones in
// order. Invalid entries and duplicates are dropped silently.
func (r *Registry) AddMany(raw []string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	added := 0
	for _, s := range raw {
		number, err := domain.NormalizePhoneNumber(s)
		if err != nil {
			continue
		}
		if _, ok := r.index[number]; ok {
			continue
		}
		r.appendLocked(number)
		added++
	}
	return added
}

func (r *Registry) appendLocked(number domain.PhoneNumber) {
	r.numbers = append(r.numbers, number)
	r.index[number] = struct{}{}
}

// Count returns the current number of recipients.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.numbers)
}

// At returns the recipient at position i of the live list.
func (r *Registry) At(i int) (domain.PhoneNumber, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i < 0 || i >= len(r.numbers) {
		return "", false
	}
	return r.numbers[i], true
}

// List returns a snapshot of the recipients in insertion order.
func (r *Registry) List() []domain.PhoneNumber {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.PhoneNumber, len(r.numbers))
	copy(out, r.numbers)
	return out
}
