// Package monitor decides whether an instance's containers are healthy and
// restarts the instance when one is not.
package monitor

import (
	"context"
	"strings"
)

// HealthStatus is the health a container runtime reports for a container.
type HealthStatus string

// Health statuses. Runtimes that say "starting" are mapped to HealthPending.
const (
	HealthHealthy    HealthStatus = "healthy"
	HealthPending    HealthStatus = "pending"
	HealthUnhealthy  HealthStatus = "unhealthy"
	HealthUnreported HealthStatus = "unreported"
)

// ParseHealth maps a runtime's health string onto a HealthStatus. An empty or
// "none" status means the container has no health check. Unrecognised values
// are treated as unhealthy.
func ParseHealth(status string) HealthStatus {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "healthy":
		return HealthHealthy
	case "starting", "pending":
		return HealthPending
	case "", "none":
		return HealthUnreported
	default:
		return HealthUnhealthy
	}
}

// Container is one running container as seen by a ContainerInspector.
type Container struct {
	ID     string       `json:"id" yaml:"id"`
	Name   string       `json:"name" yaml:"name"`
	Health HealthStatus `json:"health" yaml:"health"`
}

// ContainerInspector lists the running containers of a container runtime.
type ContainerInspector interface {
	ListRunning(ctx context.Context) ([]Container, error)
}

// Group is the container group of one instance.
type Group interface {
	Name() string
	ComposeOutput(ctx context.Context, args ...string) ([]byte, error)
	Restart(ctx context.Context) error
}

// sameID matches full and truncated container IDs.
func sameID(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	if len(a) > len(b) {
		a, b = b, a
	}
	return strings.HasPrefix(b, a)
}
