package workflow

import (
	"context"

	"github.com/fleetgrid/fleetd/internal/adapters/api"
	"github.com/fleetgrid/fleetd/internal/domain/command"
)

// GetAgentCreditsQuery asks for a player's current credit balance. It
// exists to give the command dispatcher a real request to route from
// inside a workflow Step, instead of every Step reaching past it straight
// into the API client.
type GetAgentCreditsQuery struct {
	playerID int
	Token    string
}

func (q GetAgentCreditsQuery) PlayerID() int { return q.playerID }

type GetAgentCreditsResult struct {
	Credits int
}

// GetAgentCreditsHandler is registered against GetAgentCreditsQuery.
type GetAgentCreditsHandler struct {
	API *api.Client
}

func (h *GetAgentCreditsHandler) Handle(ctx context.Context, request command.Request) (command.Response, error) {
	q := request.(GetAgentCreditsQuery)
	credits, _, err := h.API.GetAgent(ctx, q.playerID, q.Token)
	if err != nil {
		return nil, err
	}
	return GetAgentCreditsResult{Credits: credits}, nil
}
