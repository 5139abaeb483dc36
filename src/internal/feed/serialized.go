package feed

import (
	"context"
	"sync"
)

// Serialized runs refresh cycles of one Coordinator strictly one at a time
// and remembers the most recent result. It is shared by the service loop and
// the HTTP API.
type Serialized struct {
	run sync.Mutex
	c   *Coordinator

	mu       sync.RWMutex
	last     Result
	hasLast  bool
	onResult []func(Result)
}

func NewSerialized(c *Coordinator) *Serialized {
	return &Serialized{c: c}
}

// OnResult registers a callback invoked after every cycle, in registration order.
func (s *Serialized) OnResult(fn func(Result)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onResult = append(s.onResult, fn)
}

func (s *Serialized) Refresh(ctx context.Context, periodInput any) Result {
	s.run.Lock()
	defer s.run.Unlock()

	res := s.c.RefreshDetailed(ctx, periodInput)

	s.mu.Lock()
	s.last = res
	s.hasLast = true
	callbacks := append([]func(Result){}, s.onResult...)
	s.mu.Unlock()

	for _, fn := range callbacks {
		fn(res)
	}
	return res
}

// Last returns the result of the most recent cycle, if any.
func (s *Serialized) Last() (Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last, s.hasLast
}

func (s *Serialized) State() PersistedState {
	return s.c.State()
}
