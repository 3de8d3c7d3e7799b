package socket

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/melih/dockdash/internal/core/domain"
	"github.com/melih/dockdash/internal/dashboard"
)

var ErrNotConnected = errors.New("session is not connected")

// Session is the dashboard's single connection to the backend. It mirrors
// inbound envelopes into a dashboard.State and sends lifecycle commands.
type Session struct {
	url          string
	state        *dashboard.State
	log          *logrus.Entry
	dialer       *websocket.Dialer
	dialAttempts uint64
	dialInterval time.Duration
	dialTimeout  time.Duration
	writeTimeout time.Duration

	writeMu sync.Mutex
	conn    *websocket.Conn

	mu        sync.RWMutex
	connected bool
	err       error
}

// SessionOption customizes a Session.
type SessionOption func(*Session)

// WithDialAttempts bounds the total number of initial dial attempts.
// Values below 1 mean a single attempt.
func WithDialAttempts(n uint64) SessionOption {
	return func(s *Session) { s.dialAttempts = n }
}

// WithDialer replaces the default websocket dialer.
func WithDialer(d *websocket.Dialer) SessionOption {
	return func(s *Session) { s.dialer = d }
}

// NewSession creates a session for the backend at url. It does not connect;
// call Connect for that.
func NewSession(url string, state *dashboard.State, log *logrus.Entry, opts ...SessionOption) *Session {
	s := &Session{
		url:          url,
		state:        state,
		log:          log.WithField("backend", url),
		dialer:       websocket.DefaultDialer,
		dialAttempts: 5,
		dialInterval: 500 * time.Millisecond,
		dialTimeout:  30 * time.Second,
		writeTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Connect dials the backend, retrying with exponential backoff, and sends
// the init command once the socket is open.
func (s *Session) Connect(ctx context.Context) error {
	var conn *websocket.Conn
	dial := func() error {
		c, _, err := s.dialer.DialContext(ctx, s.url, nil)
		if err != nil {
			s.log.WithError(err).Debug("dial failed")
			return err
		}
		conn = c
		return nil
	}

	if err := backoff.Retry(dial, backoff.WithContext(s.dialPolicy(), ctx)); err != nil {
		err = errors.Wrap(err, "dial backend")
		s.setConnected(false, err)
		return err
	}

	s.writeMu.Lock()
	s.conn = conn
	s.writeMu.Unlock()
	s.setConnected(true, nil)
	s.log.Info("connected to backend")

	if err := s.send(domain.InitCommand()); err != nil {
		return errors.Wrap(err, "send init")
	}
	return nil
}

// dialPolicy allows dialAttempts tries in total. WithMaxRetries treats 0 as
// unlimited, so a single attempt uses StopBackOff instead.
func (s *Session) dialPolicy() backoff.BackOff {
	if s.dialAttempts <= 1 {
		return &backoff.StopBackOff{}
	}
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = s.dialInterval
	exp.MaxElapsedTime = s.dialTimeout
	exp.Reset()
	return backoff.WithMaxRetries(exp, s.dialAttempts-1)
}

// Run reads frames until the socket fails or ctx is done. Frames that cannot
// be decoded or applied are logged and skipped. There is no reconnection:
// once Run returns the session stays disconnected.
func (s *Session) Run(ctx context.Context) error {
	s.writeMu.Lock()
	conn := s.conn
	s.writeMu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-stop:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				err = ctx.Err()
			} else {
				err = errors.Wrap(err, "read frame")
			}
			s.setConnected(false, err)
			s.log.WithError(err).Warn("backend connection closed")
			return err
		}

		if err := s.HandleFrame(data); err != nil {
			s.log.WithError(err).Warn("dropped frame")
		}
	}
}

// HandleFrame decodes one inbound frame and applies it to the view model.
func (s *Session) HandleFrame(data []byte) error {
	msg, err := domain.DecodeEnvelope(data)
	if err != nil {
		return err
	}
	s.log.WithField("type", msg.Type()).Debug("envelope received")
	return errors.Wrapf(s.state.Apply(msg), "apply %s", msg.Type())
}

func (s *Session) Start(id string) error  { return s.send(domain.Command{Command: domain.CommandStart, Data: id}) }
func (s *Session) Stop(id string) error   { return s.send(domain.Command{Command: domain.CommandStop, Data: id}) }
func (s *Session) Remove(id string) error { return s.send(domain.Command{Command: domain.CommandRemove, Data: id}) }
func (s *Session) Kill(id string) error   { return s.send(domain.Command{Command: domain.CommandKill, Data: id}) }

func (s *Session) send(cmd domain.Command) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.conn == nil || !s.Connected() {
		return ErrNotConnected
	}
	if err := s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout)); err != nil {
		return errors.Wrap(err, "set write deadline")
	}
	if err := s.conn.WriteMessage(websocket.TextMessage, cmd.Encode()); err != nil {
		return errors.Wrapf(err, "send %s", cmd.Command)
	}
	s.log.WithFields(logrus.Fields{"command": cmd.Command, "container": cmd.Data}).Debug("command sent")
	return nil
}

// Connected reports whether the socket is open.
func (s *Session) Connected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected
}

// Err returns the error that ended the session, if any.
func (s *Session) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

func (s *Session) setConnected(connected bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = connected
	s.err = err
}

// Close sends a close frame and releases the socket.
func (s *Session) Close() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if s.conn == nil {
		return nil
	}
	s.setConnected(false, nil)
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	return s.conn.Close()
}
