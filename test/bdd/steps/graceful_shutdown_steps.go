package steps

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/cucumber/godog"

	"github.com/fleetgrid/fleetd/internal/adapters/persistence"
	"github.com/fleetgrid/fleetd/internal/adapters/supervisor"
	"github.com/fleetgrid/fleetd/internal/domain/container"
	"github.com/fleetgrid/fleetd/internal/domain/shared"
	"github.com/fleetgrid/fleetd/internal/infrastructure/database"
)

type gracefulShutdownContext struct {
	sup        *supervisor.Supervisor
	containers container.Repository
	clock      shared.Clock
	remaining  int
}

func (g *gracefulShutdownContext) reset() error {
	db, err := database.NewTestConnection()
	if err != nil {
		return fmt.Errorf("open test database: %w", err)
	}
	g.clock = shared.NewRealClock()
	g.containers = persistence.NewContainerRepository(db, g.clock)
	logs := persistence.NewContainerLogRepository(db, g.clock)

	registry := supervisor.NewRegistry()
	registry.Register(container.TypeNavigate, g.stepForScenario)

	g.sup = supervisor.New(registry, g.containers, logs, &supervisor.Deps{}, g.clock, nil, log.New(discard{}, "", 0), supervisor.Config{MaxRestarts: 3})
	g.remaining = -1
	return nil
}

// honorsCancellation is set per-scenario by the Given step before the
// container is launched, so stepForScenario's closure reads a settled value.
var honorsCancellation bool

// stepForScenario either returns promptly once its context is cancelled, or
// blocks on real time regardless of cancellation, to exercise both sides of
// the shutdown deadline.
func (g *gracefulShutdownContext) stepForScenario(rc *supervisor.RunContext) error {
	if honorsCancellation {
		<-rc.Ctx.Done()
		return supervisor.ErrDone
	}
	time.Sleep(2 * time.Second)
	return supervisor.ErrDone
}

func (g *gracefulShutdownContext) aRunningContainerOfTypeThatStopsPromptlyOnCancellation(containerType string) error {
	honorsCancellation = true
	_, err := g.sup.Start(context.Background(), 1, "test-token", container.Type(containerType), -1, nil)
	return err
}

func (g *gracefulShutdownContext) aRunningContainerOfTypeThatIgnoresCancellation(containerType string) error {
	honorsCancellation = false
	_, err := g.sup.Start(context.Background(), 1, "test-token", container.Type(containerType), -1, nil)
	return err
}

func (g *gracefulShutdownContext) theSupervisorShutsDownWithADeadline(deadline string) error {
	d, err := time.ParseDuration(deadline)
	if err != nil {
		return fmt.Errorf("parse deadline %q: %w", deadline, err)
	}
	g.remaining = g.sup.Shutdown(d)
	return nil
}

func (g *gracefulShutdownContext) containersShouldStillBeRunningAfterShutdown(expected string) error {
	n, err := strconv.Atoi(expected)
	if err != nil {
		return err
	}
	if g.remaining != n {
		return fmt.Errorf("expected %d containers still running, got %d", n, g.remaining)
	}
	return nil
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

// InitializeGracefulShutdownScenario registers step definitions for the
// supervisor's deadline-bounded shutdown.
func InitializeGracefulShutdownScenario(sc *godog.ScenarioContext) {
	g := &gracefulShutdownContext{}

	sc.Before(func(gCtx context.Context, s *godog.Scenario) (context.Context, error) {
		if err := g.reset(); err != nil {
			return gCtx, err
		}
		return gCtx, nil
	})

	sc.Step(`^a running container of type "([^"]*)" that stops promptly on cancellation$`, g.aRunningContainerOfTypeThatStopsPromptlyOnCancellation)
	sc.Step(`^a running container of type "([^"]*)" that ignores cancellation$`, g.aRunningContainerOfTypeThatIgnoresCancellation)
	sc.Step(`^the supervisor shuts down with a (.+) deadline$`, g.theSupervisorShutsDownWithADeadline)
	sc.Step(`^(\d+) containers should still be running after shutdown$`, g.containersShouldStillBeRunningAfterShutdown)
}
