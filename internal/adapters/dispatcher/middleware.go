package dispatcher

import (
	"context"
	"log"
	"reflect"

	"github.com/fleetgrid/fleetd/internal/domain/command"
	"github.com/fleetgrid/fleetd/internal/domain/shared"
)

// PlayerScoped requests expose their owning player for the logging
// middleware; requests that don't implement it are logged without one.
type PlayerScoped interface {
	PlayerID() int
}

// LoggingMiddleware records request type, player, latency, and outcome.
func LoggingMiddleware(logger *log.Logger, clock shared.Clock) command.Middleware {
	return func(ctx context.Context, request command.Request, next command.Next) (command.Response, error) {
		start := clock.Now()
		playerID := -1
		if scoped, ok := request.(PlayerScoped); ok {
			playerID = scoped.PlayerID()
		}
		resp, err := next(ctx, request)
		elapsed := clock.Now().Sub(start)
		requestType := reflect.TypeOf(request)
		if err != nil {
			logger.Printf("dispatch type=%s player=%d latency=%s outcome=error err=%v", requestType, playerID, elapsed, err)
		} else {
			logger.Printf("dispatch type=%s player=%d latency=%s outcome=ok", requestType, playerID, elapsed)
		}
		return resp, err
	}
}

// ValidationMiddleware rejects a request before it reaches a handler if it
// implements command.Validatable and its Validate returns an error.
func ValidationMiddleware() command.Middleware {
	return func(ctx context.Context, request command.Request, next command.Next) (command.Response, error) {
		if v, ok := request.(command.Validatable); ok {
			if err := v.Validate(); err != nil {
				return nil, shared.NewBadRequestError(err.Error())
			}
		}
		return next(ctx, request)
	}
}
