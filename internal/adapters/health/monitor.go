// Package health drives the stuck-ship detection loop: it polls active
// assignments, fetches live ship snapshots, and applies the pure policy in
// internal/domain/health to decide when to nudge a ship back into motion
// or give up on its owning container.
package health

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/fleetgrid/fleetd/internal/adapters/api"
	"github.com/fleetgrid/fleetd/internal/adapters/lock"
	"github.com/fleetgrid/fleetd/internal/domain/assignment"
	"github.com/fleetgrid/fleetd/internal/domain/container"
	"github.com/fleetgrid/fleetd/internal/domain/health"
	"github.com/fleetgrid/fleetd/internal/domain/shared"
	"github.com/fleetgrid/fleetd/internal/domain/ship"
)

// LogRepository is the subset of supervisor.LogRepository the monitor needs;
// declared again here so this package doesn't import supervisor.
type LogRepository interface {
	Log(ctx context.Context, containerID string, playerID int, level, message string) error
}

// TokenProvider resolves a player's current API bearer token.
type TokenProvider func(playerID int) (string, error)

// Config holds the monitor's tunables, overridable from configuration.
type Config struct {
	Interval         time.Duration
	ArrivalGrace     time.Duration
	IdleThreshold    time.Duration
	RecoveryCooldown time.Duration
	MaxAttempts      int
	StaleTimeout     time.Duration // assignment age clean_stale releases at
}

func (c Config) withDefaults() Config {
	if c.Interval <= 0 {
		c.Interval = health.DefaultCheckInterval
	}
	if c.ArrivalGrace <= 0 {
		c.ArrivalGrace = health.DefaultArrivalGrace
	}
	if c.IdleThreshold <= 0 {
		c.IdleThreshold = health.DefaultIdleThreshold
	}
	if c.RecoveryCooldown <= 0 {
		c.RecoveryCooldown = health.DefaultRecoveryCooldown
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = health.DefaultMaxAttempts
	}
	if c.StaleTimeout <= 0 {
		c.StaleTimeout = lock.DefaultStaleTimeout
	}
	return c
}

// Monitor is the I/O-driving adapter around the pure health policy.
type Monitor struct {
	api        *api.Client
	locks      *lock.Manager
	containers container.Repository
	logs       LogRepository
	clock      shared.Clock
	tokenFor   TokenProvider
	cfg        Config
	logger     *log.Logger

	mu    sync.Mutex
	state map[string]*health.RecoveryState // keyed by ship symbol
}

func NewMonitor(apiClient *api.Client, locks *lock.Manager, containers container.Repository, logs LogRepository, clock shared.Clock, tokenFor TokenProvider, cfg Config, logger *log.Logger) *Monitor {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &Monitor{
		api:        apiClient,
		locks:      locks,
		containers: containers,
		logs:       logs,
		clock:      clock,
		tokenFor:   tokenFor,
		cfg:        cfg.withDefaults(),
		logger:     logger,
		state:      make(map[string]*health.RecoveryState),
	}
}

// Run drives the periodic scan loop until ctx is cancelled. The interval is
// read only through m.clock, per shared.Clock's no-direct-time-reads
// invariant, so MockClock can drive this loop deterministically in tests.
func (m *Monitor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-m.clock.After(m.cfg.Interval):
			m.scanOnce(ctx)
		}
	}
}

func (m *Monitor) scanOnce(ctx context.Context) {
	m.cleanOrphansAndStale(ctx)

	assignments, err := m.locks.ListActive(ctx)
	if err != nil {
		m.logger.Printf("health: failed to list active assignments: %v", err)
		return
	}
	for _, a := range assignments {
		m.checkAssignment(ctx, a)
	}
}

// cleanOrphansAndStale runs clean_orphans and clean_stale on every pass, per
// spec.md §4.8. "Container no longer exists" is read from the container
// repository's own non-terminal set (the monitor has no view into the
// supervisor's in-memory goroutines), scoped to the players with an active
// assignment right now.
func (m *Monitor) cleanOrphansAndStale(ctx context.Context) {
	assignments, err := m.locks.ListActive(ctx)
	if err != nil {
		m.logger.Printf("health: failed to list active assignments for cleanup: %v", err)
		return
	}

	players := make(map[int]bool)
	for _, a := range assignments {
		players[a.PlayerID] = true
	}
	live := make(map[string]bool)
	for playerID := range players {
		nonTerminal, err := m.containers.ListNonTerminal(ctx, playerID)
		if err != nil {
			m.logger.Printf("health: failed to list containers for player %d: %v", playerID, err)
			continue
		}
		for _, c := range nonTerminal {
			live[c.ID()] = true
		}
	}

	if n, err := m.locks.CleanOrphans(ctx, live, "health-orphan-cleanup"); err != nil {
		m.logger.Printf("health: clean orphans: %v", err)
	} else if n > 0 {
		m.logger.Printf("health: released %d orphaned assignment(s)", n)
	}

	if n, err := m.locks.CleanStale(ctx, m.cfg.StaleTimeout, "health-stale-cleanup"); err != nil {
		m.logger.Printf("health: clean stale: %v", err)
	} else if n > 0 {
		m.logger.Printf("health: released %d stale assignment(s)", n)
	}
}

func (m *Monitor) checkAssignment(ctx context.Context, a *assignment.ShipAssignment) {
	token, err := m.tokenFor(a.PlayerID)
	if err != nil {
		m.logger.Printf("health: no token for player %d: %v", a.PlayerID, err)
		return
	}

	s, err := m.api.GetShip(ctx, a.PlayerID, token, a.ShipSymbol)
	if err != nil {
		m.logger.Printf("health: failed to fetch ship %s: %v", a.ShipSymbol, err)
		return
	}

	now := m.clock.Now()
	m.mu.Lock()
	rs, ok := m.state[a.ShipSymbol]
	if !ok {
		rs = &health.RecoveryState{}
		m.state[a.ShipSymbol] = rs
	}
	prior := rs.LastObserved
	m.mu.Unlock()

	stuck := health.IsStuck(s, prior, now, m.cfg.ArrivalGrace, m.cfg.IdleThreshold)

	m.mu.Lock()
	rs.LastObserved = &health.Observation{Location: s.Location, NavStatus: s.NavStatus, ObservedAt: now}
	m.mu.Unlock()

	if !stuck {
		m.mu.Lock()
		rs.Clear()
		m.mu.Unlock()
		return
	}

	if !rs.CanAttempt(now, m.cfg.RecoveryCooldown, m.cfg.MaxAttempts) {
		if rs.Exhausted(m.cfg.MaxAttempts) {
			m.abandon(ctx, a, rs)
		}
		return
	}

	m.attemptRecovery(ctx, a, s, token, rs, now)
}

const (
	arrivalPollInitialDelay = 2 * time.Second
	arrivalPollMaxDelay     = 15 * time.Second
	arrivalPollMaxAttempts  = 10
)

// attemptRecovery nudges a stuck ship: a ship idling in orbit or docked is
// cycled through dock/orbit to force a fresh nav state from the API; a ship
// whose transit has overrun its arrival grace is awaited to arrival, then
// docked, per the §4.8 recovery procedure.
func (m *Monitor) attemptRecovery(ctx context.Context, a *assignment.ShipAssignment, s *ship.Ship, token string, rs *health.RecoveryState, now time.Time) {
	rs.RecordAttempt(now)
	m.logLine(ctx, a.ContainerID, a.PlayerID, "WARN", fmt.Sprintf("ship %s flagged stuck at %s (%s), recovery attempt %d/%d", a.ShipSymbol, s.Location, s.NavStatus, rs.Attempts, m.cfg.MaxAttempts))

	switch s.NavStatus {
	case ship.NavStatusDocked:
		if err := m.api.OrbitShip(ctx, a.PlayerID, token, a.ShipSymbol); err != nil {
			m.logger.Printf("health: recovery orbit failed for %s: %v", a.ShipSymbol, err)
		}
	case ship.NavStatusInOrbit:
		if err := m.api.DockShip(ctx, a.PlayerID, token, a.ShipSymbol); err != nil {
			m.logger.Printf("health: recovery dock failed for %s: %v", a.ShipSymbol, err)
		}
	case ship.NavStatusInTransit:
		if err := m.awaitArrival(ctx, a, token); err != nil {
			m.logger.Printf("health: await arrival failed for %s: %v", a.ShipSymbol, err)
			return
		}
		if err := m.api.DockShip(ctx, a.PlayerID, token, a.ShipSymbol); err != nil {
			m.logger.Printf("health: recovery dock failed for %s: %v", a.ShipSymbol, err)
			return
		}
		m.logLine(ctx, a.ContainerID, a.PlayerID, "INFO", fmt.Sprintf("ship %s recovered: arrived and docked", a.ShipSymbol))
	}
}

// awaitArrival polls the ship snapshot with bounded exponential backoff
// until its transit completes, honoring cancellation and a hard attempt
// budget, per the "ensure arrival" step of the §4.8 recovery procedure.
func (m *Monitor) awaitArrival(ctx context.Context, a *assignment.ShipAssignment, token string) error {
	delay := arrivalPollInitialDelay
	for attempt := 0; attempt < arrivalPollMaxAttempts; attempt++ {
		s, err := m.api.GetShip(ctx, a.PlayerID, token, a.ShipSymbol)
		if err != nil {
			return err
		}
		if s.NavStatus != ship.NavStatusInTransit || s.IsArrived(m.clock.Now()) {
			return nil
		}
		if err := m.clock.Sleep(ctx, delay); err != nil {
			return shared.NewCancelledError("await arrival for ship " + a.ShipSymbol + " cancelled")
		}
		delay *= 2
		if delay > arrivalPollMaxDelay {
			delay = arrivalPollMaxDelay
		}
	}
	return shared.NewTimeoutError("ship " + a.ShipSymbol + " did not arrive within recovery budget")
}

// abandon marks the owning container failed and releases the assignment
// once a ship's recovery attempts are exhausted.
func (m *Monitor) abandon(ctx context.Context, a *assignment.ShipAssignment, rs *health.RecoveryState) {
	m.logLine(ctx, a.ContainerID, a.PlayerID, "ERROR", fmt.Sprintf("ship %s unrecoverable after %d attempts, abandoning", a.ShipSymbol, rs.Attempts))

	c, err := m.containers.FindByID(ctx, a.PlayerID, a.ContainerID)
	if err == nil && c != nil && !c.IsFinished() {
		_ = c.Fail(shared.NewInternalError("health-abandoned: ship "+a.ShipSymbol+" stuck past recovery budget", nil))
		_ = m.containers.Update(ctx, c)
	}

	if err := m.locks.ForceRelease(ctx, a.ShipSymbol, "health-abandoned"); err != nil {
		m.logger.Printf("health: failed to release assignment for %s: %v", a.ShipSymbol, err)
	}

	m.mu.Lock()
	delete(m.state, a.ShipSymbol)
	m.mu.Unlock()
}

func (m *Monitor) logLine(ctx context.Context, containerID string, playerID int, level, message string) {
	if m.logs == nil {
		return
	}
	if err := m.logs.Log(ctx, containerID, playerID, level, message); err != nil {
		m.logger.Printf("health: failed to persist log for %s: %v", containerID, err)
	}
}
