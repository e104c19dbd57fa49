// Package api implements the rate-limited, retrying, circuit-breaking HTTP
// client every workflow handler must go through to reach the remote game
// API. No caller is permitted to build its own *http.Client against that
// API; this is the one front door.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/fleetgrid/fleetd/internal/domain/shared"
)

const defaultBaseURL = "https://api.spacetraders.io/v2"

// Config controls the client's resilience parameters; zero-value fields
// fall back to spec defaults (see infrastructure/config).
type Config struct {
	BaseURL          string
	RateLimit        float64 // requests/sec per player
	Burst            int
	MaxRetries       int
	BackoffBase      time.Duration
	CircuitThreshold int
	CircuitCooldown  time.Duration
	Timeout          time.Duration
}

func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = defaultBaseURL
	}
	if c.RateLimit == 0 {
		c.RateLimit = 2
	}
	if c.Burst == 0 {
		c.Burst = 2
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 5
	}
	if c.BackoffBase == 0 {
		c.BackoffBase = time.Second
	}
	if c.CircuitThreshold == 0 {
		c.CircuitThreshold = 5
	}
	if c.CircuitCooldown == 0 {
		c.CircuitCooldown = 60 * time.Second
	}
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
	return c
}

// Client is a per-player gated front door to the remote game API: one
// token-bucket limiter and one circuit breaker per player, shared HTTP
// transport.
type Client struct {
	httpClient *http.Client
	baseURL    string
	cfg        Config
	clock      shared.Clock

	mu     sync.Mutex
	states map[int]*playerState
}

type playerState struct {
	limiter *rate.Limiter
	breaker *CircuitBreaker
}

// New creates a client. If clock is nil, RealClock is used.
func New(cfg Config, clock shared.Clock) *Client {
	cfg = cfg.withDefaults()
	if clock == nil {
		clock = shared.NewRealClock()
	}
	c := &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		cfg:        cfg,
		clock:      clock,
		states:     make(map[int]*playerState),
	}
	return c
}

func (c *Client) stateFor(playerID int) *playerState {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.states[playerID]; ok {
		return s
	}
	s := &playerState{
		limiter: rate.NewLimiter(rate.Limit(c.cfg.RateLimit), c.cfg.Burst),
		breaker: NewCircuitBreaker(c.cfg.CircuitThreshold, c.cfg.CircuitCooldown, c.clock),
	}
	c.states[playerID] = s
	return s
}

// retryableError marks a failure that the retry loop should attempt again.
type retryableError struct {
	message    string
	retryAfter time.Duration
}

func (e *retryableError) Error() string { return e.message }

// Do issues one logical operation: rate-limited, retried with exponential
// backoff (honoring Retry-After on 429), and circuit-breaker gated per
// player. result may be nil for operations with no response body.
func (c *Client) Do(ctx context.Context, playerID int, method, path, token string, body, result interface{}) error {
	state := c.stateFor(playerID)
	url := c.baseURL + path

	var lastErr error
	err := state.breaker.Call(func() error {
		for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
			if err := state.limiter.Wait(ctx); err != nil {
				return shared.NewCancelledError("rate limiter wait: " + err.Error())
			}

			var reqBody io.Reader
			if body != nil {
				jsonData, err := json.Marshal(body)
				if err != nil {
					return shared.NewBadRequestError("marshal request body: " + err.Error())
				}
				reqBody = bytes.NewBuffer(jsonData)
			}

			req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
			if err != nil {
				return shared.NewInternalError("build request", err)
			}
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", "Bearer "+token)

			resp, err := c.httpClient.Do(req)
			if err != nil {
				lastErr = &retryableError{message: "network error: " + err.Error()}
				if attempt >= c.cfg.MaxRetries {
					break
				}
				if err := c.backoffSleep(ctx, attempt, 0); err != nil {
					return err
				}
				continue
			}

			respBody, readErr := io.ReadAll(resp.Body)
			resp.Body.Close()
			if readErr != nil {
				return shared.NewInternalError("read response", readErr)
			}

			switch {
			case resp.StatusCode == http.StatusTooManyRequests:
				retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"))
				lastErr = &retryableError{message: "rate limited (429)", retryAfter: retryAfter}
				if attempt >= c.cfg.MaxRetries {
					return shared.NewTransientError("max retries exceeded", lastErr)
				}
				if err := c.backoffSleep(ctx, attempt, retryAfter); err != nil {
					return err
				}
				continue

			case resp.StatusCode == http.StatusServiceUnavailable || resp.StatusCode >= 500:
				lastErr = &retryableError{message: fmt.Sprintf("server error (%d)", resp.StatusCode)}
				if attempt >= c.cfg.MaxRetries {
					return shared.NewTransientError("max retries exceeded", lastErr)
				}
				if err := c.backoffSleep(ctx, attempt, 0); err != nil {
					return err
				}
				continue

			case resp.StatusCode >= 400:
				return shared.NewBadRequestError(fmt.Sprintf("API error (status %d): %s", resp.StatusCode, string(respBody)))

			case resp.StatusCode < 200 || resp.StatusCode >= 300:
				return shared.NewTransientError(fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
			}

			if result != nil {
				if err := json.Unmarshal(respBody, result); err != nil {
					return shared.NewInternalError("unmarshal response", err)
				}
			}
			return nil
		}

		if lastErr != nil {
			return shared.NewTransientError("max retries exceeded", lastErr)
		}
		return shared.NewTransientError("max retries exceeded", nil)
	})

	if errors.Is(err, ErrCircuitOpen) {
		return err
	}
	return err
}

func (c *Client) backoffSleep(ctx context.Context, attempt int, retryAfter time.Duration) error {
	if ctx.Err() != nil {
		return shared.NewCancelledError("context cancelled during backoff")
	}
	delay := c.cfg.BackoffBase * time.Duration(1<<uint(attempt))
	if retryAfter > 0 {
		delay = retryAfter
	}
	return c.clock.Sleep(ctx, delay)
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(header); err == nil {
		return time.Duration(seconds) * time.Second
	}
	return 0
}

// CircuitState exposes the breaker's state for the player, polled by the
// daemon's metrics loop.
func (c *Client) CircuitState(playerID int) CircuitState {
	return c.stateFor(playerID).breaker.GetState()
}
