// Package workflow registers one supervisor.Step per container.Type: the
// substrate-dispatch contract spec.md §4.11 names (acquire locks before any
// mutating call, route every HTTP request through the rate-limited client,
// read waypoints from cache, wait for eventual nav state with bounded
// backoff, honor cancellation). Domain semantics beyond that contract
// (contract profitability, mining extraction, arbitrage scoring,
// manufacturing pipelines) are out of scope and not implemented here.
package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/fleetgrid/fleetd/internal/adapters/supervisor"
	"github.com/fleetgrid/fleetd/internal/domain/shared"
	"github.com/fleetgrid/fleetd/internal/domain/ship"
)

const (
	initialPollDelay = 500 * time.Millisecond
	maxPollDelay     = 10 * time.Second
)

// metadataString reads a required string field from a container's metadata.
func metadataString(rc *supervisor.RunContext, key string) (string, error) {
	v, ok := rc.Container.MetadataValue(key)
	if !ok {
		return "", shared.NewBadRequestError(fmt.Sprintf("metadata missing required field %q", key))
	}
	s, ok := v.(string)
	if !ok {
		return "", shared.NewBadRequestError(fmt.Sprintf("metadata field %q is not a string", key))
	}
	return s, nil
}

// metadataInt reads an optional int field, falling back to def. JSON
// round-tripped metadata decodes numbers as float64.
func metadataInt(rc *supervisor.RunContext, key string, def int) int {
	v, ok := rc.Container.MetadataValue(key)
	if !ok {
		return def
	}
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	default:
		return def
	}
}

// withShipLock acquires the ship lock for the lifetime of fn, releasing it
// on every exit path.
func withShipLock(rc *supervisor.RunContext, shipSymbol string, fn func() error) error {
	if rc.Deps.Locks == nil {
		return fn()
	}
	if _, err := rc.Deps.Locks.Acquire(rc.Ctx, shipSymbol, rc.Container.PlayerID(), rc.Container.ID()); err != nil {
		return err
	}
	defer func() {
		_ = rc.Deps.Locks.Release(context.Background(), shipSymbol, "workflow-complete")
	}()
	return fn()
}

// waitForNavStatus polls the ship snapshot with bounded exponential backoff
// until status matches want, honoring cancellation and a hard attempt
// budget (the "wait for eventual state" pattern spec.md §4.11 requires for
// dock/orbit/refuel).
func waitForNavStatus(rc *supervisor.RunContext, shipSymbol string, want ship.NavStatus, maxAttempts int) error {
	delay := initialPollDelay
	for attempt := 0; attempt < maxAttempts; attempt++ {
		s, err := rc.Deps.API.GetShip(rc.Ctx, rc.Container.PlayerID(), rc.Token, shipSymbol)
		if err != nil {
			return err
		}
		if s.NavStatus == want {
			return nil
		}
		if err := rc.Deps.Clock.Sleep(rc.Ctx, delay); err != nil {
			return shared.NewCancelledError("wait for nav status " + string(want) + " cancelled")
		}
		delay *= 2
		if delay > maxPollDelay {
			delay = maxPollDelay
		}
	}
	return shared.NewTimeoutError(fmt.Sprintf("ship %s did not reach nav status %s within %d attempts", shipSymbol, want, maxAttempts))
}
