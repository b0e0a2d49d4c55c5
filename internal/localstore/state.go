package localstore

import (
	"errors"

	"example.com/volunteer/internal/domain"
)

// State adapts the keyed store to the reconciliation engine's
// collections. Absent entries come back as empty collections.
type State struct {
	store *Store
}

// NewState wraps a Store.
func NewState(store *Store) *State {
	return &State{store: store}
}

func (s *State) LoadJoined() ([]string, error) {
	var ids []string
	if err := s.store.Load(KeyJoined, &ids); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return ids, nil
}

func (s *State) SaveJoined(ids []string) error {
	return s.store.Save(KeyJoined, ids)
}

func (s *State) LoadPayments() ([]domain.Payment, error) {
	var payments []domain.Payment
	if err := s.store.Load(KeyPayments, &payments); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return payments, nil
}

func (s *State) SavePayments(payments []domain.Payment) error {
	return s.store.Save(KeyPayments, payments)
}
