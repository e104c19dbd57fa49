package api

import (
	"context"
	"fmt"
	"time"

	"github.com/fleetgrid/fleetd/internal/domain/shared"
	"github.com/fleetgrid/fleetd/internal/domain/ship"
)

type shipNavDTO struct {
	SystemSymbol   string `json:"systemSymbol"`
	WaypointSymbol string `json:"waypointSymbol"`
	Status         string `json:"status"`
	Route          *struct {
		Arrival string `json:"arrival"`
	} `json:"route,omitempty"`
}

type shipDTO struct {
	Symbol string     `json:"symbol"`
	Nav    shipNavDTO `json:"nav"`
	Fuel   struct {
		Current  int `json:"current"`
		Capacity int `json:"capacity"`
	} `json:"fuel"`
	Cargo struct {
		Capacity  int `json:"capacity"`
		Units     int `json:"units"`
		Inventory []struct {
			Symbol string `json:"symbol"`
			Units  int    `json:"units"`
		} `json:"inventory"`
	} `json:"cargo"`
	Engine struct {
		Speed int `json:"speed"`
	} `json:"engine"`
}

func (d *shipDTO) toSnapshot(playerID int) (*ship.Ship, error) {
	units := 0
	for _, item := range d.Cargo.Inventory {
		units += item.Units
	}
	var arrival *time.Time
	if d.Nav.Route != nil && d.Nav.Route.Arrival != "" {
		t, err := time.Parse(time.RFC3339, d.Nav.Route.Arrival)
		if err == nil {
			arrival = &t
		}
	}
	return &ship.Ship{
		Symbol:      d.Symbol,
		PlayerID:    playerID,
		Location:    d.Nav.WaypointSymbol,
		NavStatus:   ship.NavStatus(d.Nav.Status),
		Fuel:        shared.Fuel{Current: d.Fuel.Current, Capacity: d.Fuel.Capacity},
		Cargo:       shared.Cargo{Capacity: d.Cargo.Capacity, Units: units},
		EngineSpeed: d.Engine.Speed,
		ArrivalAt:   arrival,
	}, nil
}

// GetShip fetches the authoritative ship snapshot, used by workflow
// handlers and the health monitor.
func (c *Client) GetShip(ctx context.Context, playerID int, token, symbol string) (*ship.Ship, error) {
	var resp struct {
		Data shipDTO `json:"data"`
	}
	if err := c.Do(ctx, playerID, "GET", "/my/ships/"+symbol, token, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data.toSnapshot(playerID)
}

// ListShips fetches every ship owned by the player.
func (c *Client) ListShips(ctx context.Context, playerID int, token string) ([]*ship.Ship, error) {
	var resp struct {
		Data []shipDTO `json:"data"`
	}
	if err := c.Do(ctx, playerID, "GET", "/my/ships", token, nil, &resp); err != nil {
		return nil, err
	}
	ships := make([]*ship.Ship, 0, len(resp.Data))
	for _, d := range resp.Data {
		s, err := d.toSnapshot(playerID)
		if err != nil {
			return nil, err
		}
		ships = append(ships, s)
	}
	return ships, nil
}

// NavigateShip commands travel to destination; returns the arrival time.
func (c *Client) NavigateShip(ctx context.Context, playerID int, token, symbol, destination string) (time.Time, error) {
	var resp struct {
		Data struct {
			Nav shipNavDTO `json:"nav"`
		} `json:"data"`
	}
	body := map[string]string{"waypointSymbol": destination}
	if err := c.Do(ctx, playerID, "POST", fmt.Sprintf("/my/ships/%s/navigate", symbol), token, body, &resp); err != nil {
		return time.Time{}, err
	}
	if resp.Data.Nav.Route == nil {
		return time.Time{}, shared.NewInternalError("navigate response missing route", nil)
	}
	return time.Parse(time.RFC3339, resp.Data.Nav.Route.Arrival)
}

func (c *Client) OrbitShip(ctx context.Context, playerID int, token, symbol string) error {
	return c.Do(ctx, playerID, "POST", fmt.Sprintf("/my/ships/%s/orbit", symbol), token, nil, nil)
}

func (c *Client) DockShip(ctx context.Context, playerID int, token, symbol string) error {
	return c.Do(ctx, playerID, "POST", fmt.Sprintf("/my/ships/%s/dock", symbol), token, nil, nil)
}

func (c *Client) RefuelShip(ctx context.Context, playerID int, token, symbol string, units *int) error {
	var body interface{}
	if units != nil {
		body = map[string]int{"units": *units}
	}
	return c.Do(ctx, playerID, "POST", fmt.Sprintf("/my/ships/%s/refuel", symbol), token, body, nil)
}

func (c *Client) SetFlightMode(ctx context.Context, playerID int, token, symbol, mode string) error {
	body := map[string]string{"flightMode": mode}
	return c.Do(ctx, playerID, "PATCH", fmt.Sprintf("/my/ships/%s/nav", symbol), token, body, nil)
}

// GetAgent fetches the player's agent record (credits, faction).
func (c *Client) GetAgent(ctx context.Context, playerID int, token string) (credits int, startingFaction string, err error) {
	var resp struct {
		Data struct {
			Credits         int    `json:"credits"`
			StartingFaction string `json:"startingFaction"`
		} `json:"data"`
	}
	if err := c.Do(ctx, playerID, "GET", "/my/agent", token, nil, &resp); err != nil {
		return 0, "", err
	}
	return resp.Data.Credits, resp.Data.StartingFaction, nil
}

type waypointDTO struct {
	Symbol string `json:"symbol"`
	Type   string `json:"type"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Traits []struct {
		Symbol string `json:"symbol"`
	} `json:"traits"`
	Orbitals []struct {
		Symbol string `json:"symbol"`
	} `json:"orbitals"`
}

// ListWaypoints fetches one page of a system's waypoints.
func (c *Client) ListWaypoints(ctx context.Context, playerID int, token, systemSymbol string, page, limit int) ([]*shared.Waypoint, int, error) {
	var resp struct {
		Data []waypointDTO `json:"data"`
		Meta struct {
			Total int `json:"total"`
		} `json:"meta"`
	}
	path := fmt.Sprintf("/systems/%s/waypoints?page=%d&limit=%d", systemSymbol, page, limit)
	if err := c.Do(ctx, playerID, "GET", path, token, nil, &resp); err != nil {
		return nil, 0, err
	}
	out := make([]*shared.Waypoint, 0, len(resp.Data))
	for _, d := range resp.Data {
		traits := make([]string, 0, len(d.Traits))
		for _, t := range d.Traits {
			traits = append(traits, t.Symbol)
		}
		orbitals := make([]string, 0, len(d.Orbitals))
		for _, o := range d.Orbitals {
			orbitals = append(orbitals, o.Symbol)
		}
		out = append(out, &shared.Waypoint{
			Symbol:       d.Symbol,
			X:            d.X,
			Y:            d.Y,
			SystemSymbol: shared.ExtractSystemSymbol(d.Symbol),
			Type:         d.Type,
			Traits:       traits,
			HasFuel:      shared.DeriveHasFuel(traits),
			Orbitals:     orbitals,
		})
	}
	return out, resp.Meta.Total, nil
}

// PurchaseShip buys a ship of shipType at waypointSymbol's shipyard.
func (c *Client) PurchaseShip(ctx context.Context, playerID int, token, shipType, waypointSymbol string) (string, error) {
	var resp struct {
		Data struct {
			Ship shipDTO `json:"ship"`
		} `json:"data"`
	}
	body := map[string]string{"shipType": shipType, "waypointSymbol": waypointSymbol}
	if err := c.Do(ctx, playerID, "POST", "/my/ships", token, body, &resp); err != nil {
		return "", err
	}
	return resp.Data.Ship.Symbol, nil
}
