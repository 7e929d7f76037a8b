package model

import "sync/atomic"

// Sequence hands out monotonically increasing identifiers starting at 1.
// It is safe for concurrent use.
type Sequence struct {
	last atomic.Int64
}

// NewSequence returns a sequence whose next value is start+1.
func NewSequence(start int) *Sequence {
	s := &Sequence{}
	s.Seed(start)
	return s
}

// Next increments the counter and returns the new value.
func (s *Sequence) Next() int {
	return int(s.last.Add(1))
}

// Last returns the most recently issued value, or the seed if none was issued.
func (s *Sequence) Last() int {
	return int(s.last.Load())
}

// Seed sets the last issued value. Negative seeds are clamped to zero.
func (s *Sequence) Seed(last int) {
	if last < 0 {
		last = 0
	}
	s.last.Store(int64(last))
}

// Reset is Seed(0).
func (s *Sequence) Reset() {
	s.Seed(0)
}

// resolveID keeps a supplied id >= 1 and otherwise draws the next value.
// The second return value reports whether a value was drawn.
func (s *Sequence) resolveID(supplied int) (int, bool) {
	if supplied >= 1 {
		return supplied, false
	}
	return s.Next(), true
}
