package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"distro-backend/internal/models"
	"distro-backend/internal/timeutil"

	"github.com/stretchr/testify/require"
)

func TestNextFireTimePastDay(t *testing.T) {
	now := time.Date(2025, 1, 12, 14, 30, 0, 0, timeutil.IST)
	date := mustDate(t, "2025-01-10")

	fireAt, ok := NextFireTime(date, now)
	require.True(t, ok)
	require.Equal(t, now, fireAt)
}

func TestNextFireTimeToday(t *testing.T) {
	now := time.Date(2025, 1, 10, 14, 30, 0, 0, timeutil.IST)
	date := mustDate(t, "2025-01-10")

	fireAt, ok := NextFireTime(date, now)
	require.True(t, ok)
	require.Equal(t, time.Date(2025, 1, 11, 0, 0, 0, 0, timeutil.IST), fireAt)
}

func TestNextFireTimeFutureDay(t *testing.T) {
	now := time.Date(2025, 1, 10, 14, 30, 0, 0, timeutil.IST)
	date := mustDate(t, "2025-01-11")

	_, ok := NextFireTime(date, now)
	require.False(t, ok)
}

type recordingRunner struct {
	mu    sync.Mutex
	calls int
	done  chan struct{}
}

func (r *recordingRunner) Execute(ctx context.Context, routeID int, driverID *int, date time.Time, trigger string, closedBy *int) (*models.DayClose, error) {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()
	select {
	case r.done <- struct{}{}:
	default:
	}
	return &models.DayClose{RouteID: routeID, Status: models.CloseStatusComplete, Trigger: trigger}, nil
}

func TestArmWithoutStockDisarms(t *testing.T) {
	closer := NewAutoCloser(&recordingRunner{done: make(chan struct{}, 1)})
	defer closer.Stop()
	date := timeutil.StartOfDay(timeutil.Now())

	closer.Arm(1, nil, date, true)
	closer.mu.Lock()
	require.Len(t, closer.timers, 1)
	closer.mu.Unlock()

	// Rebuilding a drained summary disarms the same scope.
	closer.Arm(1, nil, date, false)
	closer.mu.Lock()
	require.Empty(t, closer.timers)
	closer.mu.Unlock()
}

func TestArmPastDayFiresImmediately(t *testing.T) {
	runner := &recordingRunner{done: make(chan struct{}, 1)}
	closer := NewAutoCloser(runner)
	defer closer.Stop()

	yesterday := timeutil.StartOfDay(timeutil.Now()).AddDate(0, 0, -1)
	closer.Arm(1, intPtr(7), yesterday, true)

	select {
	case <-runner.done:
	case <-time.After(2 * time.Second):
		t.Fatal("timer did not fire for a past day")
	}

	runner.mu.Lock()
	defer runner.mu.Unlock()
	require.Equal(t, 1, runner.calls)
}

func TestArmReplacesExistingTimer(t *testing.T) {
	closer := NewAutoCloser(&recordingRunner{done: make(chan struct{}, 1)})
	defer closer.Stop()
	date := timeutil.StartOfDay(timeutil.Now())

	closer.Arm(1, nil, date, true)
	closer.Arm(1, nil, date, true)
	closer.Arm(2, nil, date, true)

	closer.mu.Lock()
	require.Len(t, closer.timers, 2)
	closer.mu.Unlock()
}

func TestDisarm(t *testing.T) {
	closer := NewAutoCloser(&recordingRunner{done: make(chan struct{}, 1)})
	defer closer.Stop()
	date := timeutil.StartOfDay(timeutil.Now())

	closer.Arm(1, nil, date, true)
	closer.Disarm(1, nil, date)

	closer.mu.Lock()
	require.Empty(t, closer.timers)
	closer.mu.Unlock()
}

func TestScopeKeySeparatesDrivers(t *testing.T) {
	date := mustDate(t, "2025-01-10")
	require.NotEqual(t, scopeKey(1, nil, date), scopeKey(1, intPtr(7), date))
	require.NotEqual(t, scopeKey(1, intPtr(7), date), scopeKey(1, intPtr(8), date))
	require.Equal(t, scopeKey(1, intPtr(7), date), scopeKey(1, intPtr(7), date))
}
