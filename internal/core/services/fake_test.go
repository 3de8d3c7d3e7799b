package services

import (
	"context"
	"errors"
	"sync"

	"github.com/melih/dockdash/internal/core/domain"
)

var errNotFound = errors.New("no such container")

// fakeService is an in-memory ports.ContainerService.
type fakeService struct {
	mu         sync.Mutex
	containers map[string]domain.Container
	images     []domain.Image
	calls      []string
	events     chan domain.EngineEvent
	eventErr   chan error
}

func newFakeService() *fakeService {
	return &fakeService{
		containers: make(map[string]domain.Container),
		events:     make(chan domain.EngineEvent),
		eventErr:   make(chan error, 1),
	}
}

func (f *fakeService) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeService) ListContainers(ctx context.Context) ([]domain.Container, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Container, 0, len(f.containers))
	for _, c := range f.containers {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeService) InspectContainer(ctx context.Context, id string) (domain.Container, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.containers[id]
	if !ok {
		return domain.Container{}, errNotFound
	}
	return c, nil
}

func (f *fakeService) ListImages(ctx context.Context) ([]domain.Image, error) {
	return f.images, nil
}

func (f *fakeService) StartContainer(ctx context.Context, id string) error {
	f.record("start " + id)
	return nil
}

func (f *fakeService) StopContainer(ctx context.Context, id string) error {
	f.record("stop " + id)
	return nil
}

func (f *fakeService) RemoveContainer(ctx context.Context, id string) error {
	f.record("remove " + id)
	return nil
}

func (f *fakeService) KillContainer(ctx context.Context, id string) error {
	f.record("kill " + id)
	return nil
}

func (f *fakeService) Events(ctx context.Context) (<-chan domain.EngineEvent, <-chan error) {
	return f.events, f.eventErr
}

// recorder is a ports.Broadcaster that keeps every frame.
type recorder struct {
	mu     sync.Mutex
	frames [][]byte
}

func (r *recorder) Broadcast(frame []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, frame)
}

func (r *recorder) messages() []domain.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Message, 0, len(r.frames))
	for _, f := range r.frames {
		msg, err := domain.DecodeEnvelope(f)
		if err != nil {
			panic(err)
		}
		out = append(out, msg)
	}
	return out
}
