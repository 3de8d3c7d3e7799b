package docker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/client"
	"github.com/melih/dockdash/internal/core/domain"
)

// Adapter implements ports.ContainerService using Docker SDK
type Adapter struct {
	cli         *client.Client
	stopTimeout time.Duration
}

// NewAdapter creates a new Docker adapter instance. An empty host falls back
// to the environment (DOCKER_HOST etc).
func NewAdapter(host string, stopTimeout time.Duration) (*Adapter, error) {
	opts := []client.Opt{client.FromEnv, client.WithAPIVersionNegotiation()}
	if host != "" {
		opts = append(opts, client.WithHost(host))
	}
	cli, err := client.NewClientWithOpts(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}
	return &Adapter{cli: cli, stopTimeout: stopTimeout}, nil
}

// Close releases the underlying client.
func (a *Adapter) Close() error {
	return a.cli.Close()
}

// ListContainers returns every container on the host, inspected.
func (a *Adapter) ListContainers(ctx context.Context) ([]domain.Container, error) {
	containers, err := a.cli.ContainerList(ctx, container.ListOptions{All: true})
	if err != nil {
		return nil, fmt.Errorf("failed to list containers: %w", err)
	}

	result := make([]domain.Container, 0, len(containers))
	for _, c := range containers {
		info, err := a.inspect(ctx, c.ID)
		if err != nil {
			// Removed between list and inspect.
			if client.IsErrNotFound(err) {
				continue
			}
			return nil, fmt.Errorf("failed to inspect container %s: %w", c.ID, err)
		}
		result = append(result, info)
	}
	return result, nil
}

// InspectContainer returns the current state of a single container.
func (a *Adapter) InspectContainer(ctx context.Context, id string) (domain.Container, error) {
	c, err := a.inspect(ctx, id)
	if err != nil {
		return domain.Container{}, fmt.Errorf("failed to inspect container %s: %w", id, err)
	}
	return c, nil
}

func (a *Adapter) inspect(ctx context.Context, id string) (domain.Container, error) {
	info, err := a.cli.ContainerInspect(ctx, id)
	if err != nil {
		return domain.Container{}, err
	}
	if info.ContainerJSONBase == nil {
		return domain.Container{}, fmt.Errorf("empty inspect response")
	}

	c := domain.Container{
		ID:    info.ID,
		Name:  strings.TrimPrefix(info.Name, "/"),
		Image: info.Image,
	}
	if info.State != nil {
		c.State = domain.ContainerState{Running: info.State.Running, Status: info.State.Status}
	}
	if info.NetworkSettings != nil {
		c.NetworkSettings.IPAddress = info.NetworkSettings.IPAddress
	}
	return c, nil
}

// ListImages returns all tagged images, skipping dangling ones.
func (a *Adapter) ListImages(ctx context.Context) ([]domain.Image, error) {
	images, err := a.cli.ImageList(ctx, types.ImageListOptions{All: true})
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}

	result := make([]domain.Image, 0, len(images))
	for _, img := range images {
		image := domain.Image{
			Id:       img.ID,
			RepoTags: img.RepoTags,
			Size:     img.Size,
			Created:  img.Created,
		}
		if image.Dangling() {
			continue
		}
		result = append(result, image)
	}
	return result, nil
}

// StartContainer starts an existing container
func (a *Adapter) StartContainer(ctx context.Context, id string) error {
	if err := a.cli.ContainerStart(ctx, id, container.StartOptions{}); err != nil {
		return fmt.Errorf("failed to start container: %w", err)
	}
	return nil
}

// StopContainer stops a running container, killing it after the stop timeout.
func (a *Adapter) StopContainer(ctx context.Context, id string) error {
	seconds := int(a.stopTimeout.Seconds())
	// Leave the daemon some headroom past its own grace period.
	ctx, cancel := context.WithTimeout(ctx, a.stopTimeout+10*time.Second)
	defer cancel()
	if err := a.cli.ContainerStop(ctx, id, container.StopOptions{Timeout: &seconds}); err != nil {
		return fmt.Errorf("failed to stop container: %w", err)
	}
	return nil
}

// RemoveContainer deletes a stopped container along with its volumes.
func (a *Adapter) RemoveContainer(ctx context.Context, id string) error {
	opts := container.RemoveOptions{RemoveVolumes: true, Force: false}
	if err := a.cli.ContainerRemove(ctx, id, opts); err != nil {
		return fmt.Errorf("failed to remove container: %w", err)
	}
	return nil
}

// KillContainer sends SIGKILL to a running container
func (a *Adapter) KillContainer(ctx context.Context, id string) error {
	if err := a.cli.ContainerKill(ctx, id, "SIGKILL"); err != nil {
		return fmt.Errorf("failed to kill container: %w", err)
	}
	return nil
}

// Events streams container events until ctx is cancelled. The error channel
// receives at most one value.
func (a *Adapter) Events(ctx context.Context) (<-chan domain.EngineEvent, <-chan error) {
	out := make(chan domain.EngineEvent)
	errc := make(chan error, 1)

	msgs, errs := a.cli.Events(ctx, types.EventsOptions{
		Filters: filters.NewArgs(filters.Arg("type", "container")),
	})

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case err := <-errs:
				if err != nil && ctx.Err() == nil {
					errc <- fmt.Errorf("docker event stream: %w", err)
				}
				return
			case msg := <-msgs:
				event := domain.EngineEvent{ID: msg.Actor.ID, Action: string(msg.Action)}
				select {
				case out <- event:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, errc
}
