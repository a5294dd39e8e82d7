// Package metrics writes health-check results for the node-exporter textfile
// collector.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/trly/portinus/internal/log"
	"github.com/trly/portinus/internal/monitor"
)

// Textfile records monitor reports as one .prom file per instance.
type Textfile struct {
	dir    string
	logger log.Logger
}

var _ monitor.Recorder = (*Textfile)(nil)

// NewTextfile writes into dir, which the node exporter scrapes.
func NewTextfile(dir string, logger log.Logger) *Textfile {
	return &Textfile{dir: dir, logger: logger}
}

// Path returns the file written for instance.
func (t *Textfile) Path(instance string) string {
	return filepath.Join(t.dir, "portinus_"+instance+".prom")
}

// Record writes the report, replacing the previous file for the instance.
func (t *Textfile) Record(report monitor.Report) error {
	registry := prometheus.NewRegistry()

	containerHealthy := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "portinus_container_healthy",
			Help: "Whether a monitored container counts as healthy (1) or not (0)",
		},
		[]string{"instance", "container", "status"},
	)
	instanceHealthy := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "portinus_instance_healthy",
			Help: "Whether every monitored container of the instance is healthy",
		},
		[]string{"instance"},
	)
	monitored := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "portinus_instance_monitored_containers",
			Help: "Number of containers of the instance that have a health check",
		},
		[]string{"instance"},
	)
	restarted := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "portinus_instance_restart_triggered",
			Help: "Whether the last check restarted the instance",
		},
		[]string{"instance"},
	)
	lastCheck := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "portinus_instance_last_check_timestamp_seconds",
			Help: "Unix time of the last health check",
		},
		[]string{"instance"},
	)

	registry.MustRegister(containerHealthy, instanceHealthy, monitored, restarted, lastCheck)

	for _, c := range report.Containers {
		name := c.Name
		if name == "" {
			name = c.ID
		}
		containerHealthy.WithLabelValues(report.Instance, name, string(c.Health)).Set(boolValue(c.Health != monitor.HealthUnhealthy))
	}
	instanceHealthy.WithLabelValues(report.Instance).Set(boolValue(report.Healthy))
	monitored.WithLabelValues(report.Instance).Set(float64(len(report.Containers)))
	restarted.WithLabelValues(report.Instance).Set(boolValue(report.Restarted))
	lastCheck.WithLabelValues(report.Instance).Set(float64(report.CheckedAt.Unix()))

	if err := os.MkdirAll(t.dir, 0755); err != nil { //nolint:gosec // scraped by node exporter
		return fmt.Errorf("failed to create metrics directory %s: %w", t.dir, err)
	}
	path := t.Path(report.Instance)
	if err := prometheus.WriteToTextfile(path, registry); err != nil {
		return fmt.Errorf("failed to write metrics %s: %w", path, err)
	}
	t.logger.Debug("Wrote health metrics", "path", path)
	return nil
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
