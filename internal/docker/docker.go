// Package docker inspects containers through the Docker Engine API.
package docker

import (
	"context"
	"fmt"
	"strings"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
	"github.com/docker/docker/errdefs"

	"github.com/trly/portinus/internal/log"
	"github.com/trly/portinus/internal/monitor"
)

// Inspector implements monitor.ContainerInspector for Docker.
type Inspector struct {
	client *client.Client
	logger log.Logger
}

var _ monitor.ContainerInspector = (*Inspector)(nil)

// NewInspector connects to host, or to the daemon named by DOCKER_HOST when
// host is empty.
func NewInspector(host string, logger log.Logger) (*Inspector, error) {
	opts := []client.Opt{client.FromEnv, client.WithAPIVersionNegotiation()}
	if host != "" {
		opts = append(opts, client.WithHost(host))
	}

	cli, err := client.NewClientWithOpts(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}
	logger.Debug("Created docker client", "host", cli.DaemonHost())
	return &Inspector{client: cli, logger: logger}, nil
}

// ListRunning lists running containers with their health status.
func (i *Inspector) ListRunning(ctx context.Context) ([]monitor.Container, error) {
	summaries, err := i.client.ContainerList(ctx, container.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list containers: %w", err)
	}

	containers := make([]monitor.Container, 0, len(summaries))
	for _, s := range summaries {
		info, err := i.client.ContainerInspect(ctx, s.ID)
		if err != nil {
			if errdefs.IsNotFound(err) {
				i.logger.Debug("Container went away before inspection", "id", s.ID)
				continue
			}
			return nil, fmt.Errorf("failed to inspect container %s: %w", s.ID, err)
		}
		containers = append(containers, fromInspect(s.ID, info))
	}
	return containers, nil
}

// Close releases the client's connections.
func (i *Inspector) Close() error {
	return i.client.Close()
}

func fromInspect(id string, info container.InspectResponse) monitor.Container {
	c := monitor.Container{ID: id, Health: monitor.HealthUnreported}
	if info.ContainerJSONBase == nil {
		return c
	}
	c.Name = strings.TrimPrefix(info.Name, "/")
	if info.State != nil && info.State.Health != nil {
		c.Health = monitor.ParseHealth(info.State.Health.Status)
	}
	return c
}
