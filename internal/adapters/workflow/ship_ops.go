package workflow

import (
	"github.com/fleetgrid/fleetd/internal/adapters/supervisor"
	"github.com/fleetgrid/fleetd/internal/domain/ship"
)

const navPollAttempts = 20

// Navigate commands a ship to a destination, records the reported arrival
// time in metadata as arrival_at, and polls (up to 3 times) until the ship
// reports IN_TRANSIT; it does not wait for arrival. A single-iteration
// container (max_iterations = 1).
func Navigate(rc *supervisor.RunContext) error {
	shipSymbol, err := metadataString(rc, "ship_symbol")
	if err != nil {
		return err
	}
	destination, err := metadataString(rc, "destination")
	if err != nil {
		return err
	}

	return withShipLock(rc, shipSymbol, func() error {
		rc.Log("INFO", "navigating "+shipSymbol+" to "+destination)
		arrival, err := rc.Deps.API.NavigateShip(rc.Ctx, rc.Container.PlayerID(), rc.Token, shipSymbol, destination)
		if err != nil {
			return err
		}
		rc.Container.UpdateMetadata(map[string]interface{}{"arrival_at": arrival})
		return waitForNavStatus(rc, shipSymbol, ship.NavStatusInTransit, 3)
	})
}

// Dock commands a ship to dock, waiting for the DOCKED nav status to settle.
func Dock(rc *supervisor.RunContext) error {
	shipSymbol, err := metadataString(rc, "ship_symbol")
	if err != nil {
		return err
	}
	return withShipLock(rc, shipSymbol, func() error {
		rc.Log("INFO", "docking "+shipSymbol)
		if err := rc.Deps.API.DockShip(rc.Ctx, rc.Container.PlayerID(), rc.Token, shipSymbol); err != nil {
			return err
		}
		return waitForNavStatus(rc, shipSymbol, ship.NavStatusDocked, navPollAttempts)
	})
}

// Orbit commands a ship to enter orbit, waiting for the IN_ORBIT nav status.
func Orbit(rc *supervisor.RunContext) error {
	shipSymbol, err := metadataString(rc, "ship_symbol")
	if err != nil {
		return err
	}
	return withShipLock(rc, shipSymbol, func() error {
		rc.Log("INFO", "orbiting "+shipSymbol)
		if err := rc.Deps.API.OrbitShip(rc.Ctx, rc.Container.PlayerID(), rc.Token, shipSymbol); err != nil {
			return err
		}
		return waitForNavStatus(rc, shipSymbol, ship.NavStatusInOrbit, navPollAttempts)
	})
}

// Refuel tops off a ship's tank, optionally to a bounded number of units.
func Refuel(rc *supervisor.RunContext) error {
	shipSymbol, err := metadataString(rc, "ship_symbol")
	if err != nil {
		return err
	}
	var units *int
	if u := metadataInt(rc, "units", 0); u > 0 {
		units = &u
	}
	return withShipLock(rc, shipSymbol, func() error {
		rc.Log("INFO", "refueling "+shipSymbol)
		return rc.Deps.API.RefuelShip(rc.Ctx, rc.Container.PlayerID(), rc.Token, shipSymbol, units)
	})
}
