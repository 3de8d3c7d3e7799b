package dashboard

import (
	"errors"
	"fmt"
	"sync"

	"github.com/melih/dockdash/internal/core/domain"
)

var ErrContainerNotFound = errors.New("container not found")

// State is the view model owned by one dashboard session. It is mutated only
// through Apply and is safe for concurrent access.
type State struct {
	mu         sync.RWMutex
	images     []domain.Image
	containers []domain.Container
}

// NewState creates an empty view model.
func NewState() *State {
	return &State{
		images:     []domain.Image{},
		containers: []domain.Container{},
	}
}

// Apply mutates the view model according to msg:
//   - full: replace images and/or containers when present
//   - start: mark the matching container running and copy its IP, or append it
//   - remove: mark the matching container stopped and clear its IP
//   - destroy: drop the container with the envelope's ID, no-op when absent
func (s *State) Apply(msg domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch m := msg.(type) {
	case domain.FullSync:
		if m.HasImages {
			s.images = append([]domain.Image{}, m.Images...)
		}
		if m.HasContainers {
			s.containers = append([]domain.Container{}, m.Containers...)
		}

	case domain.ContainerStarted:
		idx, ok := s.indexOf(m.Container.ID)
		if !ok {
			s.containers = append(s.containers, m.Container)
			return nil
		}
		s.containers[idx].State.Running = true
		s.containers[idx].NetworkSettings.IPAddress = m.Container.NetworkSettings.IPAddress

	case domain.ContainerStopped:
		idx, ok := s.indexOf(m.Container.ID)
		if !ok {
			return fmt.Errorf("remove %s: %w", m.Container.ID, ErrContainerNotFound)
		}
		s.containers[idx].State.Running = false
		s.containers[idx].NetworkSettings.IPAddress = ""

	case domain.ContainerDestroyed:
		if idx, ok := s.indexOf(m.ID); ok {
			s.containers = append(s.containers[:idx], s.containers[idx+1:]...)
		}

	default:
		return fmt.Errorf("%w: %q", domain.ErrUnknownType, msg.Type())
	}

	return nil
}

// indexOf must be called with mu held.
func (s *State) indexOf(id string) (int, bool) {
	for i := range s.containers {
		if s.containers[i].ID == id {
			return i, true
		}
	}
	return -1, false
}

// Images returns a copy of the current image collection.
func (s *State) Images() []domain.Image {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Image{}, s.images...)
}

// Containers returns a copy of the current container collection.
func (s *State) Containers() []domain.Container {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Container{}, s.containers...)
}

// Container looks up a single container by ID.
func (s *State) Container(id string) (domain.Container, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if idx, ok := s.indexOf(id); ok {
		return s.containers[idx], true
	}
	return domain.Container{}, false
}

// Snapshot is a point-in-time copy of the view model, shaped for JSON output.
type Snapshot struct {
	Images     []domain.Image     `json:"images"`
	Containers []domain.Container `json:"containers"`
}

func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Images:     append([]domain.Image{}, s.images...),
		Containers: append([]domain.Container{}, s.containers...),
	}
}
