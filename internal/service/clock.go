package service

import (
	"sync"
	"time"
)

// Clock is the current-time source used to stamp messages.
type Clock func() time.Time

// stamper hands out strictly increasing timestamps. Resolution is capped at
// microseconds so stamps survive a round trip through Postgres.
type stamper struct {
	mu    sync.Mutex
	clock Clock
	last  time.Time
}

func newStamper(clock Clock) *stamper {
	if clock == nil {
		clock = time.Now
	}
	return &stamper{clock: clock}
}

func (s *stamper) next() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.clock().UTC().Truncate(time.Microsecond)
	if !t.After(s.last) {
		t = s.last.Add(time.Microsecond)
	}
	s.last = t
	return t
}
