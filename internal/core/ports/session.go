package ports

// CommandSender is the outbound half of a dashboard session.
type CommandSender interface {
	Start(id string) error
	Stop(id string) error
	Remove(id string) error
	Kill(id string) error
}

// Broadcaster fans envelopes out to every connected dashboard.
type Broadcaster interface {
	Broadcast(frame []byte)
}

// SessionStatus reports the health of the dashboard's backend connection.
type SessionStatus interface {
	Connected() bool
	Err() error
}
