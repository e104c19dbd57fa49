package metrics

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/fleetgrid/fleetd/internal/domain/container"
)

// ContainerMetricsCollector exposes the supervisor's active-container gauge,
// lifecycle counters, and restart/iteration counters named in the spec's
// metrics list.
type ContainerMetricsCollector struct {
	getContainers func() map[string]ContainerInfo

	containerRunningTotal *prometheus.GaugeVec
	containerTotal        *prometheus.CounterVec
	containerDuration     *prometheus.HistogramVec
	containerRestarts     *prometheus.CounterVec
	containerIterations   *prometheus.CounterVec

	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
}

// ContainerInfo is the read-only view the collector polls; the supervisor's
// registry satisfies this without the collector importing it back.
type ContainerInfo interface {
	PlayerID() int
	Type() container.Type
	Status() container.ContainerStatus
	RestartCount() int
	CurrentIteration() int
	RuntimeDuration() time.Duration
}

// SetSource assigns (or replaces) the callback the collector polls. Must be
// called before Start; a container supervisor often isn't fully
// constructed until after its metrics collector is, so the source is
// wired in a second pass rather than required at construction time.
func (c *ContainerMetricsCollector) SetSource(getContainers func() map[string]ContainerInfo) {
	c.getContainers = getContainers
}

func NewContainerMetricsCollector(getContainers func() map[string]ContainerInfo) *ContainerMetricsCollector {
	return &ContainerMetricsCollector{
		getContainers: getContainers,

		containerRunningTotal: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "container_running_total",
				Help:      "Number of currently running containers by type and player",
			},
			[]string{"player_id", "container_type"},
		),

		containerTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "container_total",
				Help:      "Total number of container lifecycle events by status",
			},
			[]string{"player_id", "container_type", "status"},
		),

		containerDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "container_duration_seconds",
				Help:      "Container execution duration distribution",
				Buckets:   []float64{1, 5, 10, 30, 60, 300, 600, 1800, 3600},
			},
			[]string{"player_id", "container_type"},
		),

		containerRestarts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "container_restarts_total",
				Help:      "Total number of container restarts",
			},
			[]string{"player_id", "container_type"},
		),

		containerIterations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "container_iterations_total",
				Help:      "Total number of container iterations completed",
			},
			[]string{"player_id", "container_type"},
		),
	}
}

func (c *ContainerMetricsCollector) Register() error {
	if Registry == nil {
		return nil
	}
	metrics := []prometheus.Collector{
		c.containerRunningTotal,
		c.containerTotal,
		c.containerDuration,
		c.containerRestarts,
		c.containerIterations,
	}
	for _, metric := range metrics {
		if err := Registry.Register(metric); err != nil {
			return err
		}
	}
	return nil
}

// Start begins the gauge-refresh goroutine, polling getContainers at interval.
func (c *ContainerMetricsCollector) Start(ctx context.Context) {
	c.ctx, c.cancelFunc = context.WithCancel(ctx)
	c.wg.Add(1)
	go c.pollLoop(10 * time.Second)
}

func (c *ContainerMetricsCollector) Stop() {
	if c.cancelFunc != nil {
		c.cancelFunc()
	}
	c.wg.Wait()
}

func (c *ContainerMetricsCollector) pollLoop(interval time.Duration) {
	defer c.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			c.updateRunningGauge()
		}
	}
}

func (c *ContainerMetricsCollector) updateRunningGauge() {
	if c.getContainers == nil {
		return
	}
	containers := c.getContainers()
	c.containerRunningTotal.Reset()
	for _, info := range containers {
		if info.Status() != container.ContainerStatusRunning {
			continue
		}
		playerID := strconv.Itoa(info.PlayerID())
		c.containerRunningTotal.WithLabelValues(playerID, string(info.Type())).Inc()
	}
}

// RecordContainerCompletion records a terminal-status transition.
func (c *ContainerMetricsCollector) RecordContainerCompletion(info ContainerInfo) {
	playerID := strconv.Itoa(info.PlayerID())
	containerType := string(info.Type())
	status := string(info.Status())

	c.containerTotal.WithLabelValues(playerID, containerType, status).Inc()

	if info.Status() == container.ContainerStatusCompleted || info.Status() == container.ContainerStatusFailed {
		c.containerDuration.WithLabelValues(playerID, containerType).Observe(info.RuntimeDuration().Seconds())
	}
}

func (c *ContainerMetricsCollector) RecordContainerRestart(info ContainerInfo) {
	c.containerRestarts.WithLabelValues(strconv.Itoa(info.PlayerID()), string(info.Type())).Inc()
}

func (c *ContainerMetricsCollector) RecordContainerIteration(info ContainerInfo) {
	c.containerIterations.WithLabelValues(strconv.Itoa(info.PlayerID()), string(info.Type())).Inc()
}
