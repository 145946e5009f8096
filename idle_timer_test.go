package session_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	session "github.com/Crzzy98/BTG"
)

func TestIdleSupervisorFiresOnce(t *testing.T) {
	var fired atomic.Int32
	s := session.NewIdleSupervisor(50*time.Millisecond, func(uint64) {
		fired.Add(1)
	})

	start := time.Now()
	s.Arm()
	require.True(t, s.Armed())

	require.Eventually(t, func() bool {
		return fired.Load() == 1
	}, 2*time.Second, 5*time.Millisecond)

	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond, "never fires before the window elapses")
	assert.False(t, s.Armed())

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), fired.Load())
}

func TestIdleSupervisorResetSupersedes(t *testing.T) {
	var fired atomic.Int32
	s := session.NewIdleSupervisor(60*time.Millisecond, func(uint64) {
		fired.Add(1)
	})

	s.Arm()
	first, armed := s.Deadline()
	require.True(t, armed)

	time.Sleep(20 * time.Millisecond)
	s.Reset()
	second, armed := s.Deadline()
	require.True(t, armed)
	assert.True(t, second.After(first))

	// the superseded deadline must not fire on its own schedule, and the
	// live one fires exactly once
	require.Eventually(t, func() bool {
		return fired.Load() > 0
	}, 2*time.Second, 5*time.Millisecond)

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), fired.Load())
}

func TestIdleSupervisorDisarm(t *testing.T) {
	var fired atomic.Int32
	s := session.NewIdleSupervisor(30*time.Millisecond, func(uint64) {
		fired.Add(1)
	})

	s.Arm()
	s.Disarm()
	assert.False(t, s.Armed())

	_, armed := s.Deadline()
	assert.False(t, armed)

	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())
}

func TestIdleSupervisorDisarmWhenIdle(t *testing.T) {
	s := session.NewIdleSupervisor(time.Minute, func(uint64) {})
	s.Disarm()
	assert.False(t, s.Armed())
}

func TestIdleSupervisorDefaultWindow(t *testing.T) {
	s := session.NewIdleSupervisor(0, func(uint64) {}, session.WithIdleClock(func() time.Time {
		return time.Unix(1000, 0)
	}))
	s.Arm()
	defer s.Disarm()

	deadline, armed := s.Deadline()
	require.True(t, armed)
	assert.Equal(t, time.Unix(1000, 0).Add(session.DefaultIdleTimeout), deadline)
}
