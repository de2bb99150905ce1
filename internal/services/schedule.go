package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"distro-backend/internal/models"
	"distro-backend/internal/timeutil"
)

// NextFireTime decides when an unfinalized route day should auto-close.
// A past day fires immediately, today fires at the next IST midnight,
// a future day never arms. Pure so the temporal logic is testable
// without wall-clock waits.
func NextFireTime(date, now time.Time) (time.Time, bool) {
	day := timeutil.StartOfDay(date)
	today := timeutil.StartOfDay(now)
	switch {
	case day.Before(today):
		return now, true
	case day.Equal(today):
		return timeutil.NextMidnight(now), true
	default:
		return time.Time{}, false
	}
}

type loadOutRunner interface {
	Execute(ctx context.Context, routeID int, driverID *int, date time.Time, trigger string, closedBy *int) (*models.DayClose, error)
}

// AutoCloser holds at most one pending timer per (route, driver, date)
// scope. Arm cancels and replaces any previous timer for the same
// scope; it is called again whenever the scope's summary is rebuilt, so
// a scope that no longer has assigned stock gets disarmed.
type AutoCloser struct {
	LoadOut loadOutRunner

	mu     sync.Mutex
	timers map[string]*time.Timer
}

func NewAutoCloser(loadOut loadOutRunner) *AutoCloser {
	return &AutoCloser{
		LoadOut: loadOut,
		timers:  make(map[string]*time.Timer),
	}
}

func scopeKey(routeID int, driverID *int, date time.Time) string {
	scope := "route"
	if driverID != nil {
		scope = fmt.Sprintf("d%d", *driverID)
	}
	return fmt.Sprintf("%d:%s:%s", routeID, scope, date.Format(timeutil.DateLayout))
}

// Arm schedules (or reschedules) the auto-close for one scope.
// hasAssignedStock false disarms it.
func (a *AutoCloser) Arm(routeID int, driverID *int, date time.Time, hasAssignedStock bool) {
	key := scopeKey(routeID, driverID, date)

	a.mu.Lock()
	defer a.mu.Unlock()

	if t, ok := a.timers[key]; ok {
		t.Stop()
		delete(a.timers, key)
	}
	if !hasAssignedStock {
		return
	}

	fireAt, ok := NextFireTime(date, timeutil.Now())
	if !ok {
		return
	}
	delay := time.Until(fireAt)
	if delay < 0 {
		delay = 0
	}
	log.Printf("[AutoClose] armed %s in %s", key, delay.Round(time.Second))

	a.timers[key] = time.AfterFunc(delay, func() {
		a.fire(key, routeID, driverID, date)
	})
}

func (a *AutoCloser) fire(key string, routeID int, driverID *int, date time.Time) {
	a.mu.Lock()
	delete(a.timers, key)
	a.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if _, err := a.LoadOut.Execute(ctx, routeID, driverID, date, models.CloseTriggerTimer, nil); err != nil {
		// Not rearmed: a failed close needs a human, not a retry loop.
		log.Printf("[AutoClose] %s failed: %v", key, err)
	}
}

// Disarm cancels the pending timer for one scope, if any.
func (a *AutoCloser) Disarm(routeID int, driverID *int, date time.Time) {
	key := scopeKey(routeID, driverID, date)
	a.mu.Lock()
	defer a.mu.Unlock()
	if t, ok := a.timers[key]; ok {
		t.Stop()
		delete(a.timers, key)
	}
}

// Stop cancels every pending timer. Called on shutdown.
func (a *AutoCloser) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for key, t := range a.timers {
		t.Stop()
		delete(a.timers, key)
	}
}
