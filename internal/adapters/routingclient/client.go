// Package routingclient implements routing.Client over HTTP+JSON against
// the external route-optimization service. The service itself (graph
// search, fuel-aware leg costing) is someone else's process; this package
// only owns the wire contract and failure handling for reaching it.
package routingclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/fleetgrid/fleetd/internal/adapters/api"
	"github.com/fleetgrid/fleetd/internal/domain/routing"
	"github.com/fleetgrid/fleetd/internal/domain/shared"
	"github.com/fleetgrid/fleetd/internal/infrastructure/config"
)

// Client is an HTTP-backed routing.Client. A circuit breaker guards the
// route-optimization service the same way api.Client guards the game API:
// a misbehaving planner degrades workflow handlers gracefully instead of
// hanging every caller on a dead dependency.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *api.CircuitBreaker
}

func New(cfg config.RoutingConfig, clock shared.Clock) *Client {
	return &Client{
		baseURL:    cfg.Address,
		httpClient: &http.Client{Timeout: cfg.Timeout.Connect},
		breaker:    api.NewCircuitBreaker(cfg.Circuit.Threshold, cfg.Circuit.Cooldown, clock),
	}
}

type planRouteWireRequest struct {
	SystemSymbol  string          `json:"system_symbol"`
	StartWaypoint string          `json:"start_waypoint"`
	GoalWaypoint  string          `json:"goal_waypoint"`
	FuelCapacity  int             `json:"fuel_capacity"`
	CurrentFuel   int             `json:"current_fuel"`
	EngineSpeed   int             `json:"engine_speed"`
	Waypoints     []wireWaypoint  `json:"waypoints"`
}

type wireWaypoint struct {
	Symbol  string  `json:"symbol"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	HasFuel bool    `json:"has_fuel"`
}

type planRouteWireResponse struct {
	Success          bool           `json:"success"`
	ErrorMessage     string         `json:"error_message"`
	Steps            []wireStep     `json:"steps"`
	TotalFuelCost    int            `json:"total_fuel_cost"`
	TotalTimeSeconds int            `json:"total_time_seconds"`
}

type wireStep struct {
	Waypoint    string `json:"waypoint"`
	Mode        string `json:"mode"`
	FuelCost    int    `json:"fuel_cost"`
	TimeSeconds int    `json:"time_seconds"`
	Refuel      bool   `json:"refuel"`
}

// PlanRoute implements routing.Client.
func (c *Client) PlanRoute(ctx context.Context, req routing.PlanRequest) (*routing.Plan, error) {
	wireReq := planRouteWireRequest{
		SystemSymbol:  req.SystemSymbol,
		StartWaypoint: req.StartWaypoint,
		GoalWaypoint:  req.GoalWaypoint,
		FuelCapacity:  req.FuelCapacity,
		CurrentFuel:   req.CurrentFuel,
		EngineSpeed:   req.EngineSpeed,
		Waypoints:     make([]wireWaypoint, len(req.Waypoints)),
	}
	for i, w := range req.Waypoints {
		wireReq.Waypoints[i] = wireWaypoint{Symbol: w.Symbol, X: w.X, Y: w.Y, HasFuel: w.HasFuel}
	}

	body, err := json.Marshal(wireReq)
	if err != nil {
		return nil, shared.NewInternalError(fmt.Sprintf("encode plan-route request: %v", err), err)
	}

	var wireResp planRouteWireResponse
	callErr := c.breaker.Call(func() error {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/plan-route", bytes.NewReader(body))
		if err != nil {
			return shared.NewInternalError(fmt.Sprintf("build plan-route request: %v", err), err)
		}
		httpReq.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			return shared.NewTransientError(fmt.Sprintf("plan-route request failed: %v", err), err)
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return shared.NewTransientError(fmt.Sprintf("read plan-route response: %v", err), err)
		}

		if resp.StatusCode >= 500 {
			return shared.NewTransientError(fmt.Sprintf("routing service returned %d: %s", resp.StatusCode, raw), nil)
		}
		if resp.StatusCode >= 400 {
			return shared.NewBadRequestError(fmt.Sprintf("routing service rejected request: %s", raw))
		}

		if err := json.Unmarshal(raw, &wireResp); err != nil {
			return shared.NewInternalError(fmt.Sprintf("decode plan-route response: %v", err), err)
		}
		if !wireResp.Success {
			msg := wireResp.ErrorMessage
			if msg == "" {
				msg = "unknown routing failure"
			}
			return shared.NewInternalError("routing service: "+msg, nil)
		}
		return nil
	})
	if callErr != nil {
		return nil, callErr
	}

	plan := &routing.Plan{
		Steps:            make([]routing.PlanStep, len(wireResp.Steps)),
		TotalFuelCost:    wireResp.TotalFuelCost,
		TotalTimeSeconds: wireResp.TotalTimeSeconds,
	}
	for i, s := range wireResp.Steps {
		plan.Steps[i] = routing.PlanStep{
			Waypoint:    s.Waypoint,
			Mode:        s.Mode,
			FuelCost:    s.FuelCost,
			TimeSeconds: s.TimeSeconds,
			Refuel:      s.Refuel,
		}
	}
	return plan, nil
}
