// Package podman inspects containers through the Podman REST API.
//
// The bindings must be built with the "remote" build tag (plus
// exclude_graphdriver_btrfs and containers_image_openpgp) to avoid pulling in
// the local storage stack.
package podman

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/containers/podman/v5/libpod/define"
	"github.com/containers/podman/v5/pkg/bindings"
	"github.com/containers/podman/v5/pkg/bindings/containers"
	"github.com/containers/podman/v5/pkg/errorhandling"

	"github.com/trly/portinus/internal/log"
	"github.com/trly/portinus/internal/monitor"
)

const systemSocket = "unix:///run/podman/podman.sock"

// DefaultURI returns the API socket of the system or the user's podman
// service.
func DefaultURI(userMode bool) string {
	if !userMode {
		return systemSocket
	}
	runtimeDir := os.Getenv("XDG_RUNTIME_DIR")
	if runtimeDir == "" {
		runtimeDir = fmt.Sprintf("/run/user/%d", os.Getuid())
	}
	return "unix://" + runtimeDir + "/podman/podman.sock"
}

// Inspector implements monitor.ContainerInspector for Podman.
type Inspector struct {
	conn   context.Context
	logger log.Logger
}

var _ monitor.ContainerInspector = (*Inspector)(nil)

// NewInspector connects to the Podman API at uri.
func NewInspector(ctx context.Context, uri string, logger log.Logger) (*Inspector, error) {
	conn, err := bindings.NewConnection(ctx, uri)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to podman at %s: %w", uri, err)
	}
	logger.Debug("Connected to podman", "uri", uri)
	return &Inspector{conn: conn, logger: logger}, nil
}

// ListRunning lists running containers with their health status. The
// connection carries its own context; ctx is not used by the bindings.
func (i *Inspector) ListRunning(_ context.Context) ([]monitor.Container, error) {
	opts := new(containers.ListOptions).WithFilters(map[string][]string{"status": {"running"}})
	list, err := containers.List(i.conn, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list containers: %w", err)
	}

	result := make([]monitor.Container, 0, len(list))
	for _, c := range list {
		data, err := containers.Inspect(i.conn, c.ID, new(containers.InspectOptions))
		if err != nil {
			if isNotFound(err) {
				i.logger.Debug("Container went away before inspection", "id", c.ID)
				continue
			}
			return nil, fmt.Errorf("failed to inspect container %s: %w", c.ID, err)
		}
		result = append(result, fromInspect(c.ID, data))
	}
	return result, nil
}

func isNotFound(err error) bool {
	var model *errorhandling.ErrorModel
	return errors.As(err, &model) && model.ResponseCode == http.StatusNotFound
}

func fromInspect(id string, data *define.InspectContainerData) monitor.Container {
	c := monitor.Container{ID: id, Health: monitor.HealthUnreported}
	if data == nil {
		return c
	}
	c.Name = strings.TrimPrefix(data.Name, "/")
	if data.State != nil && data.State.Health != nil {
		c.Health = monitor.ParseHealth(data.State.Health.Status)
	}
	return c
}
