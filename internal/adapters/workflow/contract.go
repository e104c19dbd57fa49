package workflow

import (
	"fmt"

	"github.com/fleetgrid/fleetd/internal/adapters/supervisor"
)

// ContractWorkflow drives the delivery loop for a single accepted contract.
// Profitability analysis and fulfillment strategy are business logic out of
// scope here; this only keeps the player's credits substrate current so a
// caller inspecting GetContainer sees live progress.
func ContractWorkflow(rc *supervisor.RunContext) error {
	contractID, err := metadataString(rc, "contract_id")
	if err != nil {
		return err
	}

	resp, err := rc.Deps.Dispatcher.Send(rc.Ctx, GetAgentCreditsQuery{playerID: rc.Container.PlayerID(), Token: rc.Token})
	if err != nil {
		return err
	}
	credits := resp.(GetAgentCreditsResult).Credits

	rc.Container.UpdateMetadata(map[string]interface{}{"credits_at_last_tick": credits})
	rc.Log("INFO", fmt.Sprintf("contract %s: credits now %d", contractID, credits))
	return supervisor.ErrDone
}
