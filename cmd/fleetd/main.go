package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fleetgrid/fleetd/internal/adapters/api"
	"github.com/fleetgrid/fleetd/internal/adapters/cache"
	"github.com/fleetgrid/fleetd/internal/adapters/dispatcher"
	healthadapter "github.com/fleetgrid/fleetd/internal/adapters/health"
	"github.com/fleetgrid/fleetd/internal/adapters/lock"
	"github.com/fleetgrid/fleetd/internal/adapters/metrics"
	"github.com/fleetgrid/fleetd/internal/adapters/persistence"
	"github.com/fleetgrid/fleetd/internal/adapters/routingclient"
	"github.com/fleetgrid/fleetd/internal/adapters/socket"
	"github.com/fleetgrid/fleetd/internal/adapters/supervisor"
	"github.com/fleetgrid/fleetd/internal/adapters/workflow"
	"github.com/fleetgrid/fleetd/internal/domain/command"
	"github.com/fleetgrid/fleetd/internal/domain/player"
	"github.com/fleetgrid/fleetd/internal/domain/shared"
	"github.com/fleetgrid/fleetd/internal/infrastructure/config"
	"github.com/fleetgrid/fleetd/internal/infrastructure/database"
	"github.com/fleetgrid/fleetd/internal/infrastructure/logging"
	"github.com/fleetgrid/fleetd/internal/infrastructure/pidfile"
)

const version = "0.1.0"

func main() {
	forceFlag := flag.Bool("force", false, "kill any existing daemon and start a new one")
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	logger := logging.New("fleetd", nil)
	logger.Printf("fleetd %s starting", version)

	cfg := config.MustLoadConfig(*configPath)

	pf := pidfile.New(cfg.Daemon.PIDFile)
	if err := pf.Acquire(); err != nil {
		if *forceFlag {
			logger.Printf("force mode: killing existing daemon")
			if killErr := pf.KillExisting(); killErr != nil {
				log.Fatalf("failed to kill existing daemon: %v", killErr)
			}
			if err := pf.Acquire(); err != nil {
				log.Fatalf("failed to acquire pid file after killing existing daemon: %v", err)
			}
		} else {
			log.Fatalf("failed to acquire pid file: %v (use --force to replace the running daemon)", err)
		}
	}
	defer func() {
		if err := pf.Release(); err != nil {
			logger.Printf("warning: failed to release pid file: %v", err)
		}
	}()

	if err := run(cfg, logger); err != nil {
		log.Fatalf("fatal: %v", err)
	}
	logger.Printf("fleetd stopped")
}

func run(cfg *config.Config, logger *log.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	clock := shared.NewRealClock()

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer database.Close(db)
	if err := database.AutoMigrate(db); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	logger.Printf("database ready")

	playerRepo := persistence.NewPlayerRepository(db)
	waypointRepo := persistence.NewWaypointRepository(db)
	systemGraphRepo := persistence.NewSystemGraphRepository(db, clock)
	containerLogRepo := persistence.NewContainerLogRepository(db, clock)
	containerRepo := persistence.NewContainerRepository(db, clock)
	shipAssignmentRepo := persistence.NewShipAssignmentRepository(db, clock)

	apiClient := api.New(api.Config{
		BaseURL:          cfg.API.BaseURL,
		RateLimit:        float64(cfg.API.RateLimit.Requests),
		Burst:            cfg.API.RateLimit.Burst,
		MaxRetries:       cfg.API.Retry.MaxAttempts,
		BackoffBase:      cfg.API.Retry.BackoffBase,
		CircuitThreshold: cfg.API.Circuit.Threshold,
		CircuitCooldown:  cfg.API.Circuit.Cooldown,
		Timeout:          cfg.API.Timeout,
	}, clock)

	lockManager := lock.NewManager(shipAssignmentRepo, clock)
	waypointCache := cache.NewWaypointCache(waypointRepo, clock, cfg.Cache.WaypointTTL)
	graphCache := cache.NewSystemGraphCache(systemGraphRepo, waypointCache)
	routingC := routingclient.New(cfg.Routing, clock)

	cmdDispatcher := dispatcher.New()
	cmdDispatcher.Use(dispatcher.ValidationMiddleware())
	cmdDispatcher.Use(dispatcher.LoggingMiddleware(logging.New("dispatcher", nil), clock))
	if err := command.RegisterHandler[workflow.GetAgentCreditsQuery](cmdDispatcher, &workflow.GetAgentCreditsHandler{API: apiClient}); err != nil {
		return fmt.Errorf("register GetAgentCredits handler: %w", err)
	}

	tokenFor := func(playerID int) (string, error) {
		p, err := playerRepo.FindByID(ctx, playerID)
		if err != nil {
			return "", err
		}
		return p.Token, nil
	}

	deps := &supervisor.Deps{
		API:        apiClient,
		Players:    playerRepo,
		Locks:      lockManager,
		Waypoints:  waypointCache,
		Graphs:     graphCache,
		Routing:    routingC,
		Dispatcher: cmdDispatcher,
		Clock:      clock,
	}

	registry := workflow.NewRegistry()
	if missing := registry.Validate(); len(missing) > 0 {
		return fmt.Errorf("workflow registry is missing %d container type(s): %v", len(missing), missing)
	}

	// The supervisor needs a MetricsRecorder at construction time, but the
	// container-running gauge needs the supervisor's own ActiveContainers
	// snapshot; sup is built in two passes to avoid that cycle.
	var metricsRecorder supervisor.MetricsRecorder
	var containerMetrics *metrics.ContainerMetricsCollector
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		containerMetrics = metrics.NewContainerMetricsCollector(nil)
		if err := containerMetrics.Register(); err != nil {
			return fmt.Errorf("register container metrics: %w", err)
		}
		metrics.SetGlobalCollector(containerMetrics)
		metricsRecorder = containerMetrics

		apiMetrics := metrics.NewAPIMetricsCollector()
		if err := apiMetrics.Register(); err != nil {
			return fmt.Errorf("register api metrics: %w", err)
		}
		cmdMetrics := metrics.NewCommandMetricsCollector()
		if err := cmdMetrics.Register(); err != nil {
			return fmt.Errorf("register command metrics: %w", err)
		}
		go reportCircuitState(ctx, playerRepo, apiClient, apiMetrics)
	}

	sup := supervisor.New(registry, containerRepo, containerLogRepo, deps, clock, metricsRecorder, logging.New("supervisor", nil), supervisor.Config{MaxRestarts: cfg.Container.MaxRestarts})

	if cfg.Metrics.Enabled {
		containerMetrics.SetSource(func() map[string]metrics.ContainerInfo {
			running := sup.ActiveContainers()
			info := make(map[string]metrics.ContainerInfo, len(running))
			for id, c := range running {
				info[id] = c
			}
			return info
		})
		containerMetrics.Start(ctx)
		defer containerMetrics.Stop()

		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
		metricsServer := &http.Server{Addr: cfg.Metrics.Addr, Handler: mux}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Printf("metrics server error: %v", err)
			}
		}()
		defer metricsServer.Close()
		logger.Printf("metrics listening on %s", cfg.Metrics.Addr)
	}

	if n, err := lockManager.ReleaseAllActive(ctx, "daemon-startup-sweep"); err != nil {
		logger.Printf("release leftover assignments on startup: %v", err)
	} else if n > 0 {
		logger.Printf("released %d ship assignment(s) left over from a previous run", n)
	}

	players, err := playerRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("list players for startup recovery: %w", err)
	}
	for _, p := range players {
		resumed, err := sup.RecoverOnStartup(ctx, p.ID, tokenFor)
		if err != nil {
			logger.Printf("startup recovery for player %d: %v", p.ID, err)
			continue
		}
		if resumed > 0 {
			logger.Printf("resumed %d container(s) for player %d", resumed, p.ID)
		}
	}

	liveContainerIDs := make(map[string]bool)
	for id := range sup.ActiveContainers() {
		liveContainerIDs[id] = true
	}
	if n, err := lockManager.CleanOrphans(ctx, liveContainerIDs, "startup-orphan-cleanup"); err != nil {
		logger.Printf("clean orphan assignments: %v", err)
	} else if n > 0 {
		logger.Printf("released %d orphaned ship assignment(s)", n)
	}

	monitor := healthadapter.NewMonitor(apiClient, lockManager, containerRepo, containerLogRepo, clock, tokenFor, healthadapter.Config{Interval: cfg.Health.Interval}, logging.New("health", nil))
	go monitor.Run(ctx)

	if err := os.MkdirAll(filepath.Dir(cfg.Daemon.SocketPath), 0o755); err != nil {
		return fmt.Errorf("create socket directory: %w", err)
	}
	srv, err := socket.NewServer(cfg.Daemon.SocketPath, sup, containerRepo, containerLogRepo, tokenFor, version, logging.New("socket", nil))
	if err != nil {
		return fmt.Errorf("start socket server: %w", err)
	}
	go srv.Serve(ctx)
	logger.Printf("socket listening on %s", cfg.Daemon.SocketPath)

	logger.Printf("daemon ready")
	<-ctx.Done()

	logger.Printf("shutting down, deadline %s", cfg.Daemon.ShutdownDeadline)
	srv.Close()
	remaining := sup.Shutdown(cfg.Daemon.ShutdownDeadline)
	if remaining > 0 {
		logger.Printf("shutdown deadline reached with %d container(s) still running", remaining)
	}

	return nil
}

// reportCircuitState polls every known player's per-player circuit breaker
// state into the API metrics gauge, the one signal api.Client exposes
// (CircuitState) purely for observability rather than request handling.
func reportCircuitState(ctx context.Context, players player.Repository, apiClient *api.Client, apiMetrics *metrics.APIMetricsCollector) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			all, err := players.List(ctx)
			if err != nil {
				continue
			}
			for _, p := range all {
				apiMetrics.RecordCircuitState(p.ID, int(apiClient.CircuitState(p.ID)))
			}
		}
	}
}
