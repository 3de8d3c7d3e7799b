package ports

import (
	"context"

	"github.com/melih/dockdash/internal/core/domain"
)

// ContainerService defines the engine operations the backend relies on.
// This interface allows the monitor to run against Docker or a fake in tests.
type ContainerService interface {
	ListContainers(ctx context.Context) ([]domain.Container, error)
	InspectContainer(ctx context.Context, id string) (domain.Container, error)
	ListImages(ctx context.Context) ([]domain.Image, error)
	StartContainer(ctx context.Context, id string) error
	StopContainer(ctx context.Context, id string) error
	RemoveContainer(ctx context.Context, id string) error
	KillContainer(ctx context.Context, id string) error
	// Events streams container lifecycle events until ctx is done.
	Events(ctx context.Context) (<-chan domain.EngineEvent, <-chan error)
}
