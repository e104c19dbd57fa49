package workflow

import (
	"fmt"

	"github.com/fleetgrid/fleetd/internal/adapters/supervisor"
)

// PurchaseShip buys one ship of a given type at a waypoint, a
// single-iteration container. The purchased ship's symbol is recorded in
// metadata for the caller to read back via GetContainer.
func PurchaseShip(rc *supervisor.RunContext) error {
	shipType, err := metadataString(rc, "ship_type")
	if err != nil {
		return err
	}
	waypointSymbol, err := metadataString(rc, "waypoint_symbol")
	if err != nil {
		return err
	}

	rc.Log("INFO", fmt.Sprintf("purchasing %s at %s", shipType, waypointSymbol))
	symbol, err := rc.Deps.API.PurchaseShip(rc.Ctx, rc.Container.PlayerID(), rc.Token, shipType, waypointSymbol)
	if err != nil {
		return err
	}
	rc.Container.UpdateMetadata(map[string]interface{}{"purchased_ship_symbol": symbol})
	rc.Log("INFO", "purchased "+symbol)
	return nil
}

// BatchPurchaseShips repeats PurchaseShip's call up to "count" times, one
// purchase per iteration, tracking progress in metadata so a restart
// resumes where it left off rather than over-buying.
func BatchPurchaseShips(rc *supervisor.RunContext) error {
	shipType, err := metadataString(rc, "ship_type")
	if err != nil {
		return err
	}
	waypointSymbol, err := metadataString(rc, "waypoint_symbol")
	if err != nil {
		return err
	}
	count := metadataInt(rc, "count", 1)
	purchased := metadataInt(rc, "purchased", 0)

	if purchased >= count {
		return supervisor.ErrDone
	}

	rc.Log("INFO", fmt.Sprintf("purchasing %s at %s (%d/%d)", shipType, waypointSymbol, purchased+1, count))
	symbol, err := rc.Deps.API.PurchaseShip(rc.Ctx, rc.Container.PlayerID(), rc.Token, shipType, waypointSymbol)
	if err != nil {
		return err
	}
	purchased++
	rc.Container.UpdateMetadata(map[string]interface{}{"purchased": purchased})
	rc.Log("INFO", fmt.Sprintf("purchased %s (%d/%d)", symbol, purchased, count))

	if purchased >= count {
		return supervisor.ErrDone
	}
	return nil
}
