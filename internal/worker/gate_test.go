package worker_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"agro_desk/internal/worker"
)

func TestGateSuspendResume(t *testing.T) {
	rq := require.New(t)

	gate := worker.NewGate()
	rq.False(gate.IsSuspended())

	gate.Suspend()
	rq.True(gate.IsSuspended())

	gate.Resume()
	rq.False(gate.IsSuspended())
}

func TestGateResumeAfter(t *testing.T) {
	rq := require.New(t)

	gate := worker.NewGate()
	gate.ResumeAfter(20 * time.Millisecond)
	rq.True(gate.IsSuspended())

	rq.Eventually(func() bool {
		return !gate.IsSuspended()
	}, time.Second, 5*time.Millisecond)
}

func TestGateResumeCancelsTimer(t *testing.T) {
	rq := require.New(t)

	gate := worker.NewGate()
	gate.ResumeAfter(10 * time.Millisecond)

	// Ручная приостановка переживает отложенное возобновление
	gate.Suspend()
	time.Sleep(50 * time.Millisecond)
	rq.True(gate.IsSuspended())
}
