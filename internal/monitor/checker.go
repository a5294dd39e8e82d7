package monitor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/trly/portinus/internal/log"
)

// Report is the outcome of one health check of an instance.
type Report struct {
	Instance   string
	Containers []Container
	Healthy    bool
	Restarted  bool
	CheckedAt  time.Time
}

// Recorder persists reports, for example as metrics.
type Recorder interface {
	Record(report Report) error
}

// Option configures a Checker.
type Option func(*Checker)

// WithRecorder records every report produced by Run.
func WithRecorder(r Recorder) Option {
	return func(c *Checker) {
		c.recorder = r
	}
}

// WithClock overrides the time source used for report timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Checker) {
		c.now = now
	}
}

// Checker evaluates container health. It holds no state between runs.
type Checker struct {
	inspector ContainerInspector
	recorder  Recorder
	now       func() time.Time
	logger    log.Logger
}

// NewChecker creates a Checker backed by inspector.
func NewChecker(inspector ContainerInspector, logger log.Logger, opts ...Option) *Checker {
	c := &Checker{
		inspector: inspector,
		now:       time.Now,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CheckContainerHealth reports whether c counts as healthy. Pending containers
// are still within their start period and count as healthy. Containers
// without a health check never reach this point from Run; they are treated as
// healthy.
func (ch *Checker) CheckContainerHealth(c Container) bool {
	switch c.Health {
	case HealthHealthy, HealthPending:
		return true
	case HealthUnreported:
		ch.logger.Debug("Container reports no health status", "container", c.Name, "id", c.ID)
		return true
	default:
		return false
	}
}

// GetComposeContainerIDs returns the IDs of the group's containers, in the
// order compose lists them.
func (ch *Checker) GetComposeContainerIDs(ctx context.Context, group Group) ([]string, error) {
	out, err := group.ComposeOutput(ctx, "ps", "-q")
	if err != nil {
		return nil, fmt.Errorf("failed to list containers of %s: %w", group.Name(), err)
	}

	var ids []string
	for _, line := range strings.Split(string(out), "\n") {
		if id := strings.TrimSpace(line); id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// ListMonitored returns every running container that has a health check.
func (ch *Checker) ListMonitored(ctx context.Context) ([]Container, error) {
	running, err := ch.inspector.ListRunning(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list running containers: %w", err)
	}

	monitored := make([]Container, 0, len(running))
	for _, c := range running {
		if c.Health == HealthUnreported {
			continue
		}
		monitored = append(monitored, c)
	}
	return monitored, nil
}

// GetMonitoredComposeContainers returns the group's containers that have a
// health check.
func (ch *Checker) GetMonitoredComposeContainers(ctx context.Context, group Group) ([]Container, error) {
	ids, err := ch.GetComposeContainerIDs(ctx, group)
	if err != nil {
		return nil, err
	}
	monitored, err := ch.ListMonitored(ctx)
	if err != nil {
		return nil, err
	}

	var result []Container
	for _, id := range ids {
		for _, c := range monitored {
			if sameID(id, c.ID) {
				result = append(result, c)
				break
			}
		}
	}
	return result, nil
}

// Run checks every monitored container of the group and restarts the group
// once if any is unhealthy. It reports whether all containers were healthy.
func (ch *Checker) Run(ctx context.Context, group Group) (bool, error) {
	containers, err := ch.GetMonitoredComposeContainers(ctx, group)
	if err != nil {
		return false, err
	}

	report := Report{
		Instance:   group.Name(),
		Containers: containers,
		Healthy:    true,
		CheckedAt:  ch.now(),
	}
	for _, c := range containers {
		if ch.CheckContainerHealth(c) {
			ch.logger.Info("Container is healthy", "instance", group.Name(), "container", c.Name, "status", string(c.Health))
			continue
		}
		ch.logger.Warn("Container is unhealthy", "instance", group.Name(), "container", c.Name, "status", string(c.Health))
		report.Healthy = false
	}

	if len(containers) == 0 {
		ch.logger.Info("No containers with health checks", "instance", group.Name())
	}

	var restartErr error
	if !report.Healthy {
		ch.logger.Warn("Restarting unhealthy instance", "instance", group.Name())
		restartErr = group.Restart(ctx)
		report.Restarted = restartErr == nil
	}

	if ch.recorder != nil {
		if err := ch.recorder.Record(report); err != nil {
			ch.logger.Warn("Failed to record health report", "instance", group.Name(), "error", err)
		}
	}

	if restartErr != nil {
		return false, fmt.Errorf("failed to restart %s: %w", group.Name(), restartErr)
	}
	return report.Healthy, nil
}
