package dashboard

import "github.com/melih/dockdash/internal/core/domain"

// ImageTag resolves the display tag of the first image whose Id matches.
func (s *State) ImageTag(id string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, img := range s.images {
		if img.Id == id {
			return img.DisplayTag()
		}
	}
	return "", false
}

// RunningContainers returns the containers selected by IsRunning.
func (s *State) RunningContainers() []domain.Container {
	s.mu.RLock()
	defer s.mu.RUnlock()
	running := make([]domain.Container, 0, len(s.containers))
	for _, c := range s.containers {
		if IsRunning(c) {
			running = append(running, c)
		}
	}
	return running
}

// IsRunning is the list filter for currently running containers.
func IsRunning(c domain.Container) bool {
	return c.IsRunning()
}

// IsActive reports whether viewLocation is the path currently being shown.
func IsActive(viewLocation, currentPath string) bool {
	return viewLocation == currentPath
}
