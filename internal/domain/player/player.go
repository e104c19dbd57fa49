// Package player holds the Player entity: the authenticated agent whose
// token every outbound API call and whose player_id every persisted row is
// scoped by.
package player

import "time"

// Player is a registered agent. AgentSymbol is globally unique; Token is an
// opaque bearer credential never logged. Credits is persisted and refreshed
// in the background rather than fetched fresh on every read.
type Player struct {
	ID              int
	AgentSymbol     string
	Token           string
	Credits         int
	StartingFaction string
	Metadata        map[string]interface{}
	LastActive      time.Time
}

// New creates a player with zero credits, to be filled in by a subsequent
// refresh against the game API.
func New(id int, agentSymbol, token, startingFaction string, now time.Time) *Player {
	return &Player{
		ID:              id,
		AgentSymbol:     agentSymbol,
		Token:           token,
		StartingFaction: startingFaction,
		Metadata:        make(map[string]interface{}),
		LastActive:      now,
	}
}

// Touch updates LastActive, called whenever a container runs on the player's behalf.
func (p *Player) Touch(now time.Time) {
	p.LastActive = now
}

// UpdateCredits records the balance last observed from the game API. Credits
// can never go negative.
func (p *Player) UpdateCredits(credits int) {
	if credits < 0 {
		credits = 0
	}
	p.Credits = credits
}

func (p *Player) String() string {
	return "Player(" + p.AgentSymbol + ")"
}
