package scheduler

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestStart_RunsRegisteredJobs(t *testing.T) {
	s := New(zap.NewNop())
	defer s.Stop()

	var sweeps, refreshes int32
	s.Register("streak_sweep", 20*time.Millisecond, func() { atomic.AddInt32(&sweeps, 1) })
	s.Register("leaderboard_refresh", 20*time.Millisecond, func() { atomic.AddInt32(&refreshes, 1) })
	s.Start()

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&sweeps) >= 2 && atomic.LoadInt32(&refreshes) >= 2
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRegister_BeforeStartOnly(t *testing.T) {
	s := New(nil)
	defer s.Stop()

	var ran int32
	s.Register("job", 20*time.Millisecond, func() { atomic.AddInt32(&ran, 1) })
	s.Start()
	s.Start() // second Start must not double-launch the job set

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&ran) >= 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRegister_RejectsNonPositiveInterval(t *testing.T) {
	s := New(nil)
	defer s.Stop()

	var ran int32
	s.Register("bad", 0, func() { atomic.AddInt32(&ran, 1) })
	s.Start()

	time.Sleep(50 * time.Millisecond)
	require.Zero(t, atomic.LoadInt32(&ran))
}

func TestStop_HaltsJobs(t *testing.T) {
	s := New(nil)

	var ran int32
	s.Register("job", 20*time.Millisecond, func() { atomic.AddInt32(&ran, 1) })
	s.Start()

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&ran) >= 1
	}, 2*time.Second, 10*time.Millisecond)

	s.Stop()
	snap := atomic.LoadInt32(&ran)
	time.Sleep(80 * time.Millisecond)
	require.Equal(t, snap, atomic.LoadInt32(&ran), "no runs after Stop")
}

func TestStop_IdempotentAndPreStart(t *testing.T) {
	s := New(nil)
	s.Stop()
	s.Stop()
}

func TestJobPanicKeepsSchedule(t *testing.T) {
	s := New(zap.NewNop())
	defer s.Stop()

	var runs int32
	s.Register("flaky", 20*time.Millisecond, func() {
		atomic.AddInt32(&runs, 1)
		panic("boom")
	})
	s.Start()

	// The panic is swallowed per run; later ticks still fire.
	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&runs) >= 2
	}, 2*time.Second, 10*time.Millisecond)
}
