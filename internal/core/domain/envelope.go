package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// MessageType is the discriminator carried in the Type field of every envelope.
type MessageType string

const (
	TypeFull    MessageType = "full"
	TypeStart   MessageType = "start"
	TypeRemove  MessageType = "remove"
	TypeDestroy MessageType = "destroy"
)

var (
	ErrUnknownType      = errors.New("unknown envelope type")
	ErrMissingContainer = errors.New("envelope carries no container")
)

// Message is one decoded envelope. Each variant carries only the fields
// valid for its type.
type Message interface {
	Type() MessageType
}

// FullSync replaces one or both collections wholesale. A collection that was
// absent from the envelope is left untouched.
type FullSync struct {
	Images        []Image
	Containers    []Container
	HasImages     bool
	HasContainers bool
}

// ContainerStarted reports a container that entered the running state.
type ContainerStarted struct {
	Container Container
}

// ContainerStopped reports a container that stopped running. It travels
// under the "remove" type on the wire.
type ContainerStopped struct {
	Container Container
}

// ContainerDestroyed reports a container deleted from the host. Unlike the
// other kinds it is keyed by the envelope's top-level ID.
type ContainerDestroyed struct {
	ID string
}

func (FullSync) Type() MessageType           { return TypeFull }
func (ContainerStarted) Type() MessageType   { return TypeStart }
func (ContainerStopped) Type() MessageType   { return TypeRemove }
func (ContainerDestroyed) Type() MessageType { return TypeDestroy }

type wireEnvelope struct {
	Type       MessageType  `json:"Type"`
	Images     *[]Image     `json:"Images,omitempty"`
	Containers *[]Container `json:"Containers,omitempty"`
	ID         string       `json:"ID,omitempty"`
}

// DecodeEnvelope parses a single inbound frame.
func DecodeEnvelope(data []byte) (Message, error) {
	var env wireEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to parse envelope: %w", err)
	}

	switch env.Type {
	case TypeFull:
		msg := FullSync{}
		if env.Images != nil {
			msg.Images, msg.HasImages = *env.Images, true
		}
		if env.Containers != nil {
			msg.Containers, msg.HasContainers = *env.Containers, true
		}
		return msg, nil
	case TypeStart, TypeRemove:
		if env.Containers == nil || len(*env.Containers) == 0 {
			return nil, fmt.Errorf("%s envelope: %w", env.Type, ErrMissingContainer)
		}
		c := (*env.Containers)[0]
		if env.Type == TypeStart {
			return ContainerStarted{Container: c}, nil
		}
		return ContainerStopped{Container: c}, nil
	case TypeDestroy:
		return ContainerDestroyed{ID: env.ID}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, env.Type)
	}
}

// EncodeEnvelope serializes a message into its wire form.
func EncodeEnvelope(m Message) ([]byte, error) {
	env := wireEnvelope{Type: m.Type()}

	switch msg := m.(type) {
	case FullSync:
		if msg.HasImages {
			images := nonNilImages(msg.Images)
			env.Images = &images
		}
		if msg.HasContainers {
			containers := nonNilContainers(msg.Containers)
			env.Containers = &containers
		}
	case ContainerStarted:
		env.Containers = &[]Container{msg.Container}
	case ContainerStopped:
		env.Containers = &[]Container{msg.Container}
	case ContainerDestroyed:
		env.ID = msg.ID
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, m.Type())
	}

	return json.Marshal(env)
}

func nonNilImages(in []Image) []Image {
	if in == nil {
		return []Image{}
	}
	return in
}

func nonNilContainers(in []Container) []Container {
	if in == nil {
		return []Container{}
	}
	return in
}
