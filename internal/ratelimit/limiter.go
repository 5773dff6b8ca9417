// Package ratelimit bounds each client to a fixed number of chat requests
// per calendar day. State is in-process only: a restart resets all quotas,
// and multiple gateway instances each enforce their own budget.
package ratelimit

import (
	"sync"
	"time"
)

// Result is the outcome of a quota check.
type Result struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

type record struct {
	count   int
	resetAt time.Time
}

// Limiter tracks per-client daily usage behind a single mutex. Operations
// are in-memory and never block on I/O, so one lock is enough even under
// high request fan-out.
type Limiter struct {
	mu      sync.Mutex
	limit   int
	records map[string]*record

	// now is swappable in tests.
	now func() time.Time
}

func New(limit int) *Limiter {
	return &Limiter{
		limit:   limit,
		records: make(map[string]*record),
		now:     time.Now,
	}
}

// nextReset returns local midnight of the calendar day following now.
// Every unseen client on the same day shares this boundary.
func nextReset(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, now.Location())
}

// Allow performs the check-and-consume step for clientID. The read of the
// current count and the increment happen under one lock, so concurrent
// requests from the same client can never overshoot the limit.
func (l *Limiter) Allow(clientID string) Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweepExpired(now)

	rec, ok := l.records[clientID]
	if !ok || !now.Before(rec.resetAt) {
		resetAt := nextReset(now)
		l.records[clientID] = &record{count: 1, resetAt: resetAt}
		return Result{Allowed: true, Remaining: l.limit - 1, ResetAt: resetAt}
	}

	if rec.count >= l.limit {
		return Result{Allowed: false, Remaining: 0, ResetAt: rec.resetAt}
	}

	rec.count++
	return Result{Allowed: true, Remaining: l.limit - rec.count, ResetAt: rec.resetAt}
}

// Peek reports the client's standing without consuming quota. Unseen and
// expired clients get a full-limit placeholder; no record is allocated.
func (l *Limiter) Peek(clientID string) Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	rec, ok := l.records[clientID]
	if !ok || !now.Before(rec.resetAt) {
		return Result{Allowed: true, Remaining: l.limit, ResetAt: nextReset(now)}
	}

	remaining := l.limit - rec.count
	if remaining < 0 {
		remaining = 0
	}
	return Result{Allowed: remaining > 0, Remaining: remaining, ResetAt: rec.resetAt}
}

// sweepExpired drops stale records. Best-effort: a record the sweep misses
// is still detected and replaced by the resetAt comparison in Allow.
// Caller holds l.mu.
func (l *Limiter) sweepExpired(now time.Time) {
	for id, rec := range l.records {
		if !now.Before(rec.resetAt) {
			delete(l.records, id)
		}
	}
}
