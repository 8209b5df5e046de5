package selection

import (
	"errors"
	"fmt"
	"sort"

	"meal-survey/internal/catalog"
)

var ErrInvalidKey = errors.New("invalid option key")

// Reader is the read side of a Store.
type Reader interface {
	Count(slot catalog.Slot) int
	SelectedKeys(slot catalog.Slot) []catalog.OrdinalKey
	IsSelected(slot catalog.Slot, key catalog.OrdinalKey) bool
}

// Store tracks which options are selected for each meal slot.
// An absent key means the option is not selected.
type Store struct {
	slots map[catalog.Slot]map[catalog.OrdinalKey]struct{}
}

// NewStore returns an empty store.
func NewStore() *Store {
	s := &Store{}
	s.Reset()
	return s
}

// Toggle selects or deselects key within slot. Repeating the same call has no
// further effect.
func (s *Store) Toggle(slot catalog.Slot, key catalog.OrdinalKey, selected bool) error {
	if !slot.Valid() {
		return fmt.Errorf("%w: %q", catalog.ErrUnknownSlot, slot)
	}
	if key < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidKey, key)
	}
	if selected {
		s.slots[slot][key] = struct{}{}
	} else {
		delete(s.slots[slot], key)
	}
	return nil
}

// Count returns the number of selected options in slot.
func (s *Store) Count(slot catalog.Slot) int {
	return len(s.slots[slot])
}

// SelectedKeys returns the selected keys of slot in ascending order.
func (s *Store) SelectedKeys(slot catalog.Slot) []catalog.OrdinalKey {
	keys := make([]catalog.OrdinalKey, 0, len(s.slots[slot]))
	for k := range s.slots[slot] {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func (s *Store) IsSelected(slot catalog.Slot, key catalog.OrdinalKey) bool {
	_, ok := s.slots[slot][key]
	return ok
}

// Clone returns an independent copy of the store.
func (s *Store) Clone() *Store {
	out := NewStore()
	for slot, keys := range s.slots {
		for k := range keys {
			out.slots[slot][k] = struct{}{}
		}
	}
	return out
}

// Clear empties the given slots.
func (s *Store) Clear(slots ...catalog.Slot) {
	for _, slot := range slots {
		if slot.Valid() {
			s.slots[slot] = make(map[catalog.OrdinalKey]struct{})
		}
	}
}

// Reset empties every slot.
func (s *Store) Reset() {
	s.slots = make(map[catalog.Slot]map[catalog.OrdinalKey]struct{}, 3)
	for _, slot := range catalog.Slots() {
		s.slots[slot] = make(map[catalog.OrdinalKey]struct{})
	}
}
