package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/melih/dockdash/internal/core/domain"
	"github.com/melih/dockdash/internal/core/ports"
)

// Engine event actions the monitor reacts to.
const (
	ActionStart   = "start"
	ActionDie     = "die"
	ActionDestroy = "destroy"
)

// Monitor keeps the backend's inventory of images and containers in step
// with the engine and fans changes out to connected dashboards.
type Monitor struct {
	service ports.ContainerService
	out     ports.Broadcaster
	log     *logrus.Entry

	mu         sync.RWMutex
	images     []domain.Image
	containers []domain.Container
}

// NewMonitor creates a monitor. Call Load before serving dashboards.
func NewMonitor(service ports.ContainerService, out ports.Broadcaster, log *logrus.Entry) *Monitor {
	return &Monitor{
		service:    service,
		out:        out,
		log:        log,
		images:     []domain.Image{},
		containers: []domain.Container{},
	}
}

// Load replaces the inventory with what the engine currently reports.
func (m *Monitor) Load(ctx context.Context) error {
	images, err := m.service.ListImages(ctx)
	if err != nil {
		return fmt.Errorf("load images: %w", err)
	}
	containers, err := m.service.ListContainers(ctx)
	if err != nil {
		return fmt.Errorf("load containers: %w", err)
	}

	m.mu.Lock()
	m.images = images
	m.containers = containers
	m.mu.Unlock()

	m.log.WithFields(logrus.Fields{
		"images":     len(images),
		"containers": len(containers),
	}).Info("inventory loaded")
	return nil
}

// FullSync returns the message answering a dashboard's init command.
func (m *Monitor) FullSync() domain.FullSync {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return domain.FullSync{
		Images:        append([]domain.Image{}, m.images...),
		Containers:    append([]domain.Container{}, m.containers...),
		HasImages:     true,
		HasContainers: true,
	}
}

func (m *Monitor) Images() []domain.Image {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]domain.Image{}, m.images...)
}

func (m *Monitor) Containers() []domain.Container {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]domain.Container{}, m.containers...)
}

// Run consumes engine events until ctx is done or the stream fails.
func (m *Monitor) Run(ctx context.Context) error {
	events, errs := m.service.Events(ctx)
	m.log.Info("watching engine events")

	for event := range events {
		if err := m.HandleEvent(ctx, event); err != nil {
			m.log.WithError(err).WithField("container", event.ID).Warn("failed to handle engine event")
		}
	}

	select {
	case err := <-errs:
		return err
	default:
		return ctx.Err()
	}
}

// HandleEvent updates the inventory for one engine event and broadcasts
// the matching envelope. Actions other than start, die and destroy are
// ignored.
func (m *Monitor) HandleEvent(ctx context.Context, event domain.EngineEvent) error {
	m.log.WithFields(logrus.Fields{
		"container": event.ID,
		"action":    event.Action,
	}).Debug("engine event")

	switch event.Action {
	case ActionStart, ActionDie:
		info, err := m.service.InspectContainer(ctx, event.ID)
		if err != nil {
			return err
		}
		m.upsert(info)
		if event.Action == ActionStart {
			return m.publish(domain.ContainerStarted{Container: info})
		}
		return m.publish(domain.ContainerStopped{Container: info})

	case ActionDestroy:
		m.drop(event.ID)
		return m.publish(domain.ContainerDestroyed{ID: event.ID})
	}
	return nil
}

// Execute runs a lifecycle command against the engine.
func (m *Monitor) Execute(ctx context.Context, cmd domain.Command) error {
	if cmd.Data == "" {
		return fmt.Errorf("%s: container ID is required", cmd.Command)
	}

	switch cmd.Command {
	case domain.CommandStart:
		return m.service.StartContainer(ctx, cmd.Data)
	case domain.CommandStop:
		return m.service.StopContainer(ctx, cmd.Data)
	case domain.CommandRemove:
		return m.service.RemoveContainer(ctx, cmd.Data)
	case domain.CommandKill:
		return m.service.KillContainer(ctx, cmd.Data)
	default:
		return fmt.Errorf("%w: %q", domain.ErrUnknownCommand, cmd.Command)
	}
}

func (m *Monitor) publish(msg domain.Message) error {
	frame, err := domain.EncodeEnvelope(msg)
	if err != nil {
		return err
	}
	m.out.Broadcast(frame)
	return nil
}

func (m *Monitor) upsert(c domain.Container) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.containers {
		if m.containers[i].ID == c.ID {
			m.containers[i] = c
			return
		}
	}
	m.containers = append(m.containers, c)
}

func (m *Monitor) drop(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.containers {
		if m.containers[i].ID == id {
			m.containers = append(m.containers[:i], m.containers[i+1:]...)
			return
		}
	}
}
