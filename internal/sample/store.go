package sample

import "sync"

// Store is a thread-safe, append-only time series for one run.
//
// The link reader is expected to be the only writer; any number of readers may
// call Snapshot and Count concurrently. All columns are updated under one lock,
// so a snapshot never observes columns of different lengths.
type Store struct {
	mu  sync.RWMutex
	run Run
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{}
}

// Append adds one sample atomically across all columns.
func (s *Store) Append(p Sample) {
	s.mu.Lock()
	s.run.append(p)
	s.mu.Unlock()
}

// Clear atomically resets the store to empty.
func (s *Store) Clear() {
	s.mu.Lock()
	s.run = Run{}
	s.mu.Unlock()
}

// Snapshot returns a deep copy of the run as of a single instant.
func (s *Store) Snapshot() Run {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.run.Clone()
}

// Count returns the current number of samples.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.run.Len()
}

// Last returns the most recent sample and true, or a zero sample and false
// when the store is empty.
func (s *Store) Last() (Sample, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := s.run.Len()
	if n == 0 {
		return Sample{}, false
	}
	return s.run.At(n - 1), true
}
