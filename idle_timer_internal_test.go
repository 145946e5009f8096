package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIdleSupervisorExpireStaleGeneration(t *testing.T) {
	fired := 0
	s := NewIdleSupervisor(time.Hour, func(uint64) { fired++ })

	s.Arm()
	stale := s.generation()
	s.Arm()

	s.expire(stale)
	assert.Zero(t, fired, "a superseded deadline never reaches the callback")

	s.expire(s.generation())
	assert.Equal(t, 1, fired)
	assert.False(t, s.Armed())
}
