package metrics

import (
	"context"
	"reflect"
	"strings"
	"time"

	"github.com/fleetgrid/fleetd/internal/domain/command"
)

// PrometheusMiddleware records command execution duration and outcome,
// keyed by the request's type name stripped of its package prefix (e.g.
// "*navigatecmd.NavigateRequest" becomes "NavigateRequest").
func PrometheusMiddleware(collector *CommandMetricsCollector) command.Middleware {
	return func(ctx context.Context, request command.Request, next command.Next) (command.Response, error) {
		if collector == nil {
			return next(ctx, request)
		}

		commandName := extractCommandName(request)
		start := time.Now()

		response, err := next(ctx, request)

		duration := time.Since(start).Seconds()
		collector.RecordCommandExecution(commandName, duration, err == nil)

		return response, err
	}
}

func extractCommandName(request command.Request) string {
	if request == nil {
		return "UnknownCommand"
	}

	// Get the type via reflection
	requestType := reflect.TypeOf(request)

	// Get the full type name (e.g., "*commands.NavigateRouteCommand")
	fullName := requestType.String()

	// Remove pointer prefix if present
	fullName = strings.TrimPrefix(fullName, "*")

	// Split by '.' to separate package from type name
	parts := strings.Split(fullName, ".")

	// Return the last part (the actual command/query name)
	if len(parts) > 0 {
		return parts[len(parts)-1]
	}

	return fullName
}
