package reminder

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newScheduler() *Scheduler {
	logger := zerolog.Nop()
	return New(&logger)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestScheduleFires(t *testing.T) {
	s := newScheduler()
	defer s.Stop()

	var fired atomic.Bool
	s.Schedule(1, time.Now().Add(20*time.Millisecond), func() { fired.Store(true) })
	require.Equal(t, 1, s.Pending())

	waitFor(t, fired.Load)
	waitFor(t, func() bool { return s.Pending() == 0 })
}

func TestScheduleInPastFiresImmediately(t *testing.T) {
	s := newScheduler()
	defer s.Stop()

	var fired atomic.Bool
	s.Schedule(1, time.Now().Add(-time.Hour), func() { fired.Store(true) })
	waitFor(t, fired.Load)
}

func TestCancel(t *testing.T) {
	s := newScheduler()
	defer s.Stop()

	var fired atomic.Bool
	s.Schedule(1, time.Now().Add(30*time.Millisecond), func() { fired.Store(true) })

	assert.True(t, s.Cancel(1))
	assert.Equal(t, 0, s.Pending())
	assert.False(t, s.Cancel(1))

	time.Sleep(60 * time.Millisecond)
	assert.False(t, fired.Load())
}

func TestScheduleReplacesExistingTimer(t *testing.T) {
	s := newScheduler()
	defer s.Stop()

	var first, second atomic.Bool
	s.Schedule(1, time.Now().Add(30*time.Millisecond), func() { first.Store(true) })
	s.Schedule(1, time.Now().Add(40*time.Millisecond), func() { second.Store(true) })
	require.Equal(t, 1, s.Pending())

	waitFor(t, second.Load)
	assert.False(t, first.Load())
}

func TestStopCancelsEverything(t *testing.T) {
	s := newScheduler()

	var fired atomic.Bool
	s.Schedule(1, time.Now().Add(30*time.Millisecond), func() { fired.Store(true) })
	s.Schedule(2, time.Now().Add(30*time.Millisecond), func() { fired.Store(true) })

	s.Stop()
	assert.Equal(t, 0, s.Pending())

	time.Sleep(60 * time.Millisecond)
	assert.False(t, fired.Load())
}
