// Package supervisor implements the container supervisor: the lifecycle,
// restart, and shutdown machinery for every background task the daemon
// runs. It owns the iteration loop; a registered Step supplies one unit of
// domain work per iteration.
package supervisor

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fleetgrid/fleetd/internal/adapters/metrics"
	"github.com/fleetgrid/fleetd/internal/domain/container"
	"github.com/fleetgrid/fleetd/internal/domain/shared"
)

// LogRepository persists container log lines (deduped per spec).
type LogRepository interface {
	Log(ctx context.Context, containerID string, playerID int, level, message string) error
}

// MetricsRecorder is satisfied by *metrics.ContainerMetricsCollector;
// *container.Container satisfies metrics.ContainerInfo directly.
type MetricsRecorder interface {
	RecordContainerCompletion(info metrics.ContainerInfo)
	RecordContainerRestart(info metrics.ContainerInfo)
	RecordContainerIteration(info metrics.ContainerInfo)
}

// RestartBackoff computes the delay before a restart attempt, indexed by
// restart_count (0-based at the time of the decision).
func RestartBackoff(restartCount int) time.Duration {
	base := time.Second
	delay := base * time.Duration(1<<uint(restartCount))
	if max := 30 * time.Second; delay > max {
		delay = max
	}
	return delay
}

// Supervisor tracks every live container and runs its Step loop in its own
// goroutine, persisting state transitions and logs as they happen.
type Supervisor struct {
	registry *Registry
	repo     container.Repository
	logs     LogRepository
	clock    shared.Clock
	deps     *Deps
	metrics  MetricsRecorder
	logger   *log.Logger

	maxRestarts int

	mu      sync.Mutex
	running map[string]*runningContainer
	wg      sync.WaitGroup
}

type runningContainer struct {
	c      *container.Container
	cancel context.CancelFunc
	token  string
}

type Config struct {
	MaxRestarts int // assigned as max_restarts to every container Start creates, default 3
}

func New(registry *Registry, repo container.Repository, logs LogRepository, deps *Deps, clock shared.Clock, metrics MetricsRecorder, logger *log.Logger, cfg Config) *Supervisor {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	if cfg.MaxRestarts <= 0 {
		cfg.MaxRestarts = container.DefaultMaxRestarts
	}
	if deps != nil && deps.Clock == nil {
		deps.Clock = clock
	}
	return &Supervisor{
		registry:    registry,
		repo:        repo,
		logs:        logs,
		clock:       clock,
		deps:        deps,
		metrics:     metrics,
		logger:      logger,
		maxRestarts: cfg.MaxRestarts,
		running:     make(map[string]*runningContainer),
	}
}

// Start creates and launches a new container of the given type, returning
// its id immediately; the workflow runs in its own goroutine.
func (s *Supervisor) Start(ctx context.Context, playerID int, token string, t container.Type, maxIterations int, metadata map[string]interface{}) (string, error) {
	step, ok := s.registry.Lookup(t)
	if !ok {
		return "", shared.NewBadRequestError(fmt.Sprintf("no workflow registered for container type %q", t))
	}

	id := uuid.NewString()
	c, err := container.New(id, t, playerID, maxIterations, metadata, s.clock)
	if err != nil {
		return "", err
	}
	c.SetMaxRestarts(s.maxRestarts)

	if err := s.repo.Add(ctx, c); err != nil {
		return "", err
	}

	s.launch(c, token, step)
	return id, nil
}

func (s *Supervisor) launch(c *container.Container, token string, step Step) {
	runCtx, cancel := context.WithCancel(context.Background())
	rc := &runningContainer{c: c, cancel: cancel, token: token}

	s.mu.Lock()
	s.running[c.ID()] = rc
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			s.mu.Lock()
			if s.running[c.ID()] == rc {
				delete(s.running, c.ID())
			}
			s.mu.Unlock()
		}()
		s.run(runCtx, c, token, step)
	}()
}

func (s *Supervisor) run(ctx context.Context, c *container.Container, token string, step Step) {
	if err := c.Start(); err != nil {
		s.logger.Printf("container %s failed to start: %v", c.ID(), err)
		return
	}
	s.persist(ctx, c)
	s.logLine(ctx, c, "INFO", "container started")

	for {
		if ctx.Err() != nil {
			s.stopGracefully(ctx, c)
			return
		}
		if c.IsStopping() {
			s.stopGracefully(ctx, c)
			return
		}
		if !c.ShouldContinue() {
			_ = c.Complete()
			s.persist(ctx, c)
			s.logLine(ctx, c, "INFO", "container completed")
			s.recordCompletion(c)
			return
		}

		rc := &RunContext{
			Ctx:       ctx,
			Container: c,
			Token:     token,
			Deps:      s.deps,
			Log: func(level, message string) {
				s.logLine(ctx, c, level, message)
			},
		}

		stepErr := step(rc)
		if stepErr == ErrDone {
			_ = c.Complete()
			s.persist(ctx, c)
			s.logLine(ctx, c, "INFO", "container completed")
			s.recordCompletion(c)
			return
		}
		if stepErr != nil {
			_ = c.Fail(stepErr)
			s.persist(ctx, c)
			s.logLine(ctx, c, "ERROR", "container failed: "+stepErr.Error())
			s.recordCompletion(c)
			s.maybeRestart(ctx, c, token, step)
			return
		}

		if err := c.IncrementIteration(); err != nil {
			s.logger.Printf("container %s: %v", c.ID(), err)
		}
		s.persist(ctx, c)
		if s.metrics != nil {
			s.metrics.RecordContainerIteration(c)
		}
	}
}

func (s *Supervisor) maybeRestart(ctx context.Context, c *container.Container, token string, step Step) {
	if !c.CanRestart() {
		return
	}
	delay := RestartBackoff(c.RestartCount())
	if err := s.clock.Sleep(ctx, delay); err != nil {
		return
	}
	if err := c.ResetForRestart(); err != nil {
		return
	}
	s.persist(ctx, c)
	if s.metrics != nil {
		s.metrics.RecordContainerRestart(c)
	}
	s.logLine(ctx, c, "INFO", fmt.Sprintf("restarting (attempt %d/%d)", c.RestartCount(), c.MaxRestarts()))
	s.launch(c, token, step)
}

func (s *Supervisor) stopGracefully(ctx context.Context, c *container.Container) {
	if c.IsRunning() {
		_ = c.Stop()
		s.persist(ctx, c)
	}
	_ = c.MarkStopped()
	s.persist(context.Background(), c)
	s.logLine(context.Background(), c, "INFO", "container stopped")
}

func (s *Supervisor) recordCompletion(c *container.Container) {
	if s.metrics != nil {
		s.metrics.RecordContainerCompletion(c)
	}
}

func (s *Supervisor) persist(ctx context.Context, c *container.Container) {
	if err := s.repo.Update(ctx, c); err != nil {
		s.logger.Printf("container %s: failed to persist: %v", c.ID(), err)
	}
}

func (s *Supervisor) logLine(ctx context.Context, c *container.Container, level, message string) {
	if s.logs == nil {
		return
	}
	if err := s.logs.Log(ctx, c.ID(), c.PlayerID(), level, message); err != nil {
		s.logger.Printf("container %s: failed to persist log: %v", c.ID(), err)
	}
}

// StopContainer requests graceful shutdown of a running container; the
// Step's next iteration boundary (or ctx cancellation) performs the
// transition to STOPPED.
func (s *Supervisor) StopContainer(containerID string) error {
	s.mu.Lock()
	rc, ok := s.running[containerID]
	s.mu.Unlock()
	if !ok {
		return shared.NewNotFoundError("container not running: " + containerID)
	}
	if err := rc.c.Stop(); err != nil {
		return err
	}
	return nil
}

// Shutdown requests every running container stop, then waits up to
// deadline for them to finish. A container still running when the deadline
// passes is marked FAILED with "shutdown-timeout" and its ship assignments
// are released; returns how many were still running.
func (s *Supervisor) Shutdown(deadline time.Duration) int {
	s.mu.Lock()
	for _, rc := range s.running {
		_ = rc.c.Stop()
		rc.cancel()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return 0
	case <-time.After(deadline):
		s.mu.Lock()
		remaining := len(s.running)
		for _, rc := range s.running {
			_ = rc.c.Fail(shared.NewInternalError("shutdown-timeout", nil))
			s.persist(context.Background(), rc.c)
			if s.deps != nil && s.deps.Locks != nil {
				if _, err := s.deps.Locks.ReleaseByContainer(context.Background(), rc.c.ID(), "shutdown-timeout"); err != nil {
					s.logger.Printf("container %s: failed to release ship assignments: %v", rc.c.ID(), err)
				}
			}
		}
		s.mu.Unlock()
		return remaining
	}
}

// ActiveContainers returns a snapshot of every currently-running container,
// keyed by id, for the metrics collector's poll loop.
func (s *Supervisor) ActiveContainers() map[string]*container.Container {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]*container.Container, len(s.running))
	for id, rc := range s.running {
		out[id] = rc.c
	}
	return out
}

// RecoverOnStartup resolves every container left non-terminal by a previous
// daemon run, per the per-type, build-time-fixed table container.Type.Resumable
// names: explicitly resumable types are relaunched from their persisted
// current_iteration with a fresh goroutine; everything else is marked FAILED
// with reason "orphaned-at-startup" and has its ship assignments released,
// since it has no safe way to pick back up mid-flight.
func (s *Supervisor) RecoverOnStartup(ctx context.Context, playerID int, tokenFor func(playerID int) (string, error)) (int, error) {
	containers, err := s.repo.ListNonTerminal(ctx, playerID)
	if err != nil {
		return 0, err
	}
	recovered := 0
	for _, c := range containers {
		if !c.Type().Resumable() {
			s.orphanAtStartup(ctx, c)
			continue
		}

		step, ok := s.registry.Lookup(c.Type())
		if !ok {
			s.logger.Printf("container %s: no workflow registered for type %s, leaving stopped", c.ID(), c.Type())
			continue
		}
		token, err := tokenFor(c.PlayerID())
		if err != nil {
			s.logger.Printf("container %s: no token for player %d: %v", c.ID(), c.PlayerID(), err)
			continue
		}
		// A container recovered mid-RUNNING resumes as if freshly PENDING;
		// the state machine only allows Start() from PENDING or STOPPED.
		if c.IsRunning() {
			_ = c.Stop()
			_ = c.MarkStopped()
		}
		s.launch(c, token, step)
		recovered++
	}
	return recovered, nil
}

// orphanAtStartup implements the non-resumable side of RecoverOnStartup:
// fail the container in place and release whatever ship assignments it held.
func (s *Supervisor) orphanAtStartup(ctx context.Context, c *container.Container) {
	if c.IsRunning() {
		_ = c.Stop()
	}
	_ = c.Fail(shared.NewInternalError("orphaned-at-startup", nil))
	s.persist(ctx, c)
	s.logLine(ctx, c, "WARN", "orphaned-at-startup: not a resumable container type")

	if s.deps == nil || s.deps.Locks == nil {
		return
	}
	if _, err := s.deps.Locks.ReleaseByContainer(ctx, c.ID(), "orphaned-at-startup"); err != nil {
		s.logger.Printf("container %s: failed to release ship assignments: %v", c.ID(), err)
	}
}
