package player

import "context"

// Repository persists players. Every other repository scopes its reads and
// writes by player_id; this is the one repository that owns the id itself.
type Repository interface {
	FindByID(ctx context.Context, playerID int) (*Player, error)
	FindByAgentSymbol(ctx context.Context, agentSymbol string) (*Player, error)
	Add(ctx context.Context, p *Player) error
	Update(ctx context.Context, p *Player) error
	List(ctx context.Context) ([]*Player, error)
}
