package socket

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	"github.com/melih/dockdash/internal/core/domain"
)

// Backend is what the hub needs from the inventory owner.
type Backend interface {
	FullSync() domain.FullSync
	Execute(ctx context.Context, cmd domain.Command) error
	Images() []domain.Image
	Containers() []domain.Container
}

// peer is one connected dashboard.
type peer struct {
	id   string
	conn *websocket.Conn
	mu   sync.Mutex
}

func (p *peer) write(frame []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.conn.SetWriteDeadline(time.Now().Add(10 * time.Second)); err != nil {
		return err
	}
	return p.conn.WriteMessage(websocket.TextMessage, frame)
}

// Hub accepts dashboard connections on /ws and fans envelopes out to all
// of them. It implements ports.Broadcaster.
type Hub struct {
	log      *logrus.Entry
	upgrader websocket.Upgrader

	mu    sync.RWMutex
	peers map[string]*peer

	backend Backend
}

// NewHub creates a hub with no backend attached. Attach one with SetBackend
// before serving.
func NewHub(log *logrus.Entry) *Hub {
	return &Hub{
		log:   log,
		peers: make(map[string]*peer),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// CheckOrigin left nil: browsers on other origins are refused,
			// the dashboard's own dialer sends no Origin header.
		},
	}
}

// SetBackend attaches the inventory owner that answers commands.
func (h *Hub) SetBackend(b Backend) {
	h.backend = b
}

// Router builds the hub's HTTP routes.
func (h *Hub) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/ws", h.ServeWS)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/containers", h.listContainers)
		r.Get("/images", h.listImages)
	})
	return r
}

func (h *Hub) listContainers(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.backend.Containers())
}

func (h *Hub) listImages(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.backend.Images())
}

// ServeWS upgrades the request and serves commands from one dashboard until
// it disconnects.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied with an HTTP error.
		h.log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	p := &peer{id: uuid.New().String(), conn: conn}
	log := h.log.WithField("conn", p.id)
	h.add(p)
	log.Info("dashboard connected")

	defer func() {
		h.remove(p.id)
		conn.Close()
		log.Info("dashboard disconnected")
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.WithError(err).Debug("read failed")
			}
			return
		}

		cmd, err := domain.DecodeCommand(data)
		if err != nil {
			log.WithError(err).Warn("ignoring frame")
			continue
		}
		log.WithFields(logrus.Fields{"command": cmd.Command, "container": cmd.Data}).Info("command received")

		if err := h.dispatch(r.Context(), p, cmd); err != nil {
			log.WithError(err).WithField("command", cmd.Command).Error("command failed")
		}
	}
}

func (h *Hub) dispatch(ctx context.Context, p *peer, cmd domain.Command) error {
	if cmd.Command != domain.CommandInit {
		return h.backend.Execute(ctx, cmd)
	}

	frame, err := domain.EncodeEnvelope(h.backend.FullSync())
	if err != nil {
		return errors.Wrap(err, "encode full sync")
	}
	return errors.Wrap(p.write(frame), "send full sync")
}

// Broadcast writes frame to every connected dashboard. A dashboard whose
// write fails is dropped; the rest still receive the frame.
func (h *Hub) Broadcast(frame []byte) {
	h.mu.RLock()
	peers := make([]*peer, 0, len(h.peers))
	for _, p := range h.peers {
		peers = append(peers, p)
	}
	h.mu.RUnlock()

	for _, p := range peers {
		if err := p.write(frame); err != nil {
			h.log.WithError(err).WithField("conn", p.id).Warn("dropping dashboard")
			h.remove(p.id)
			p.conn.Close()
		}
	}
}

// Len returns the number of connected dashboards.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.peers)
}

// Close disconnects every dashboard.
func (h *Hub) Close() error {
	h.mu.Lock()
	peers := h.peers
	h.peers = make(map[string]*peer)
	h.mu.Unlock()

	var err error
	for _, p := range peers {
		err = multierr.Append(err, p.conn.Close())
	}
	return err
}

func (h *Hub) add(p *peer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.peers[p.id] = p
}

func (h *Hub) remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.peers, id)
}
