package domain

// Container represents a container as reported by the engine and mirrored
// by the dashboard. Field names follow the engine's inspect payload.
type Container struct {
	ID              string          `json:"ID"`
	Name            string          `json:"Name,omitempty"`
	Image           string          `json:"Image,omitempty"`
	State           ContainerState  `json:"State"`
	NetworkSettings NetworkSettings `json:"NetworkSettings"`
}

// ContainerState is the nested runtime state of a container.
type ContainerState struct {
	Running bool   `json:"Running"`
	Status  string `json:"Status,omitempty"` // running, exited, etc.
}

type NetworkSettings struct {
	IPAddress string `json:"IPAddress"`
}

// IsRunning reports whether the container is currently running.
func (c Container) IsRunning() bool {
	return c.State.Running
}

// EngineEvent is a container lifecycle event observed on the host.
type EngineEvent struct {
	ID     string
	Action string // start, die, destroy, ...
}
