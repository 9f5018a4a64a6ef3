package script

import (
	"errors"
	"fmt"
	"sync"
)

var ErrIndexOutOfRange = errors.New("action index out of range")

// Sequence is the ordered list of actions being composed. It is safe for
// concurrent use by the web builder and the tray.
type Sequence struct {
	mu      sync.RWMutex
	actions []Action
}

// NewSequence creates a sequence holding the given actions
func NewSequence(actions ...Action) *Sequence {
	s := &Sequence{}
	s.actions = append(s.actions, actions...)
	return s
}

// Append adds an action to the end of the sequence
func (s *Sequence) Append(a Action) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actions = append(s.actions, a)
}

// RemoveAt deletes the action at index i; later actions shift down by one
func (s *Sequence) RemoveAt(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkIndex(i); err != nil {
		return err
	}
	s.actions = append(s.actions[:i], s.actions[i+1:]...)
	return nil
}

// MoveUp swaps the action at i with its predecessor. It returns false
// without changes when i is already first.
func (s *Sequence) MoveUp(i int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkIndex(i); err != nil {
		return false, err
	}
	if i == 0 {
		return false, nil
	}
	s.actions[i], s.actions[i-1] = s.actions[i-1], s.actions[i]
	return true, nil
}

// MoveDown swaps the action at i with its successor. It returns false
// without changes when i is already last.
func (s *Sequence) MoveDown(i int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkIndex(i); err != nil {
		return false, err
	}
	if i == len(s.actions)-1 {
		return false, nil
	}
	s.actions[i], s.actions[i+1] = s.actions[i+1], s.actions[i]
	return true, nil
}

// Actions returns a copy of the current actions
func (s *Sequence) Actions() []Action {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Action, len(s.actions))
	copy(out, s.actions)
	return out
}

// Len returns the number of actions
func (s *Sequence) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.actions)
}

// Clear removes every action
func (s *Sequence) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actions = nil
}

func (s *Sequence) checkIndex(i int) error {
	if i < 0 || i >= len(s.actions) {
		return fmt.Errorf("%w: %d (len %d)", ErrIndexOutOfRange, i, len(s.actions))
	}
	return nil
}
