// Package dispatcher implements the command.Dispatcher contract: a
// reflect.Type-keyed handler registry invoked through a composable
// middleware chain.
package dispatcher

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/fleetgrid/fleetd/internal/domain/command"
)

type dispatcher struct {
	mu          sync.RWMutex
	handlers    map[reflect.Type]command.Handler
	middlewares []command.Middleware
}

// New creates an empty dispatcher.
func New() command.Dispatcher {
	return &dispatcher{
		handlers: make(map[reflect.Type]command.Handler),
	}
}

func (d *dispatcher) Register(requestType reflect.Type, handler command.Handler) error {
	if requestType == nil {
		return fmt.Errorf("request type cannot be nil")
	}
	if handler == nil {
		return fmt.Errorf("handler cannot be nil")
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.handlers[requestType]; exists {
		return fmt.Errorf("handler already registered for type %s", requestType)
	}
	d.handlers[requestType] = handler
	return nil
}

func (d *dispatcher) Use(middleware command.Middleware) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.middlewares = append(d.middlewares, middleware)
}

// Send looks up the handler for request's concrete type and runs it
// through the middleware chain, innermost-last: the first registered
// middleware sees the request first.
func (d *dispatcher) Send(ctx context.Context, request command.Request) (command.Response, error) {
	if request == nil {
		return nil, fmt.Errorf("request cannot be nil")
	}

	requestType := reflect.TypeOf(request)
	d.mu.RLock()
	handler, ok := d.handlers[requestType]
	middlewares := append([]command.Middleware(nil), d.middlewares...)
	d.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("no handler registered for type %s", requestType)
	}

	next := command.Next(handler.Handle)
	for i := len(middlewares) - 1; i >= 0; i-- {
		mw := middlewares[i]
		current := next
		next = func(ctx context.Context, req command.Request) (command.Response, error) {
			return mw(ctx, req, current)
		}
	}
	return next(ctx, request)
}
