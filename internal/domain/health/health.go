// Package health holds the stuck-ship detection policy: pure functions over
// a ship snapshot and recovery bookkeeping, with no I/O of its own. The
// adapter in internal/adapters/health drives the loop and calls the API
// client, repositories, and lock manager this package only describes ports
// for.
package health

import (
	"time"

	"github.com/fleetgrid/fleetd/internal/domain/ship"
)

// Defaults per spec; overridable from configuration.
const (
	DefaultCheckInterval    = 30 * time.Second
	DefaultArrivalGrace     = 60 * time.Second
	DefaultIdleThreshold    = 15 * time.Minute
	DefaultRecoveryCooldown = 60 * time.Second
	DefaultMaxAttempts      = 3
)

// Observation is the last known (location, nav_status, observed_at) for a
// ship, used to detect "no progress" independent of arrival_at.
type Observation struct {
	Location   string
	NavStatus  ship.NavStatus
	ObservedAt time.Time
}

// IsStuck reports whether the snapshot should be flagged, given the prior
// observation for the same ship (nil if this is the first time it's seen).
func IsStuck(s *ship.Ship, prior *Observation, now time.Time, grace, idleThreshold time.Duration) bool {
	if s.NavStatus == ship.NavStatusInTransit && s.ArrivalAt != nil {
		if !s.ArrivalAt.Add(grace).After(now) {
			return true
		}
	}
	if prior == nil {
		return false
	}
	if prior.Location == s.Location && prior.NavStatus == s.NavStatus {
		return now.Sub(prior.ObservedAt) > idleThreshold
	}
	return false
}

// RecoveryState tracks per-ship recovery bookkeeping held by the adapter.
type RecoveryState struct {
	Attempts     int
	LastAttempt  *time.Time
	LastObserved *Observation
}

// CanAttempt reports whether a recovery attempt is due: under the max and
// past the cooldown since the last attempt.
func (r *RecoveryState) CanAttempt(now time.Time, cooldown time.Duration, maxAttempts int) bool {
	if r.Attempts >= maxAttempts {
		return false
	}
	if r.LastAttempt == nil {
		return true
	}
	return now.Sub(*r.LastAttempt) >= cooldown
}

// RecordAttempt marks an attempt taken at now.
func (r *RecoveryState) RecordAttempt(now time.Time) {
	r.Attempts++
	r.LastAttempt = &now
}

// Exhausted reports whether the per-ship attempt budget is spent; the
// caller should mark the owning container FAILED("health-abandoned") and
// release the assignment.
func (r *RecoveryState) Exhausted(maxAttempts int) bool {
	return r.Attempts >= maxAttempts
}

// Clear resets bookkeeping once a ship is observed healthy again.
func (r *RecoveryState) Clear() {
	r.Attempts = 0
	r.LastAttempt = nil
}
