package random

import "sync"

// Sequence replays a fixed list of draws, cycling when exhausted.
// It lets callers pin the exact value of every roll.
type Sequence struct {
	mu     sync.Mutex
	values []float64
	next   int
}

// NewSequence returns a source that yields values in order. An empty list
// always yields 0.
func NewSequence(values ...float64) *Sequence {
	return &Sequence{values: append([]float64(nil), values...)}
}

func (s *Sequence) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.values) == 0 {
		return 0
	}
	v := s.values[s.next%len(s.values)]
	s.next++
	return v
}

// Consumed reports how many draws have been taken.
func (s *Sequence) Consumed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next
}
