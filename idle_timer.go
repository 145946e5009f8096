package session

import (
	"sync"
	"time"
)

// DefaultIdleTimeout is the inactivity window after which the session is
// forcibly ended.
const DefaultIdleTimeout = 30 * time.Minute

// IdleSupervisor is a single-timer watchdog. Arm schedules a deadline,
// Reset pushes it out, Disarm cancels it. At most one deadline is
// outstanding: re-arming supersedes, it never stacks. When the deadline
// expires the registered callback fires exactly once.
type IdleSupervisor struct {
	mu       sync.Mutex
	window   time.Duration
	onExpire func(gen uint64)
	now      func() time.Time

	timer    *time.Timer
	deadline time.Time
	armed    bool
	gen      uint64
}

// IdleOption customizes supervisor construction.
type IdleOption func(*IdleSupervisor)

// WithIdleClock injects a clock for deadline bookkeeping (useful in tests).
// The expiry schedule itself still runs on the runtime timer.
func WithIdleClock(clock func() time.Time) IdleOption {
	return func(s *IdleSupervisor) {
		if clock != nil {
			s.now = clock
		}
	}
}

// NewIdleSupervisor creates a disarmed supervisor. onExpire is invoked
// from the timer goroutine with the generation of the deadline that
// fired; callers funnel it into their own serialized sign-out path and
// must re-check the generation there, since Disarm or a new Arm can
// supersede a fire that is already in flight.
func NewIdleSupervisor(window time.Duration, onExpire func(gen uint64), opts ...IdleOption) *IdleSupervisor {
	if window <= 0 {
		window = DefaultIdleTimeout
	}

	s := &IdleSupervisor{
		window:   window,
		onExpire: onExpire,
		now:      time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	return s
}

// Arm cancels any outstanding deadline and schedules a new one a full
// window in the future.
func (s *IdleSupervisor) Arm() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()
	s.gen++
	s.armed = true
	s.deadline = s.now().Add(s.window)

	gen := s.gen
	s.timer = time.AfterFunc(s.window, func() {
		s.expire(gen)
	})
}

// Reset is activity observed: push the deadline out a full window.
func (s *IdleSupervisor) Reset() {
	s.Arm()
}

// Disarm cancels the pending deadline. Safe to call when not armed.
func (s *IdleSupervisor) Disarm() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
	s.gen++
}

// Armed reports whether a deadline is outstanding.
func (s *IdleSupervisor) Armed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.armed
}

// Deadline returns the pending deadline, if any.
func (s *IdleSupervisor) Deadline() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deadline, s.armed
}

// generation reports the current deadline generation. A fired
// generation that no longer matches has been superseded.
func (s *IdleSupervisor) generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// stopLocked cancels the runtime timer; the generation counter guards
// against a callback that already fired but has not yet run.
func (s *IdleSupervisor) stopLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.armed = false
	s.deadline = time.Time{}
}

func (s *IdleSupervisor) expire(gen uint64) {
	s.mu.Lock()
	if gen != s.gen || !s.armed {
		s.mu.Unlock()
		return
	}
	s.armed = false
	s.timer = nil
	s.deadline = time.Time{}
	cb := s.onExpire
	s.mu.Unlock()

	if cb != nil {
		cb(gen)
	}
}
