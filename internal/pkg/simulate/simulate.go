// Package simulate gives the dummy remote services their unreliable
// behaviour: a random processing delay and a random failure rate.
package simulate

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"
)

// Behavior describes how a simulated service misbehaves.
type Behavior struct {
	MinDelay    time.Duration
	MaxDelay    time.Duration
	FailureRate float64
}

// Simulator draws delays and failures from a Behavior.
type Simulator struct {
	behavior Behavior

	mu  sync.Mutex
	rnd *rand.Rand
}

// New returns a Simulator. A nil rnd uses a randomly seeded source.
func New(b Behavior, rnd *rand.Rand) *Simulator {
	if b.MaxDelay < b.MinDelay {
		b.MaxDelay = b.MinDelay
	}
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Simulator{behavior: b, rnd: rnd}
}

// Delay returns the next processing delay in [MinDelay, MaxDelay].
func (s *Simulator) Delay() time.Duration {
	span := s.behavior.MaxDelay - s.behavior.MinDelay
	if span <= 0 {
		return s.behavior.MinDelay
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.behavior.MinDelay + time.Duration(s.rnd.Int64N(int64(span)+1))
}

// ShouldFail reports whether the current call should fail.
func (s *Simulator) ShouldFail() bool {
	if s.behavior.FailureRate <= 0 {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rnd.Float64() < s.behavior.FailureRate
}

// Wait sleeps for the next delay or until ctx is done.
func (s *Simulator) Wait(ctx context.Context) error {
	d := s.Delay()
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
