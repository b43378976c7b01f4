package live

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"pet-health-monitor/internal/domain/animals"
	"pet-health-monitor/internal/domain/health"
	"pet-health-monitor/internal/domain/permissions"
	"pet-health-monitor/internal/middleware"
	"pet-health-monitor/internal/platform/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// mensajes encolados por suscriptor antes de cortarlo por lento
	sendBuffer = 32
)

var ErrHubClosed = errors.New("live hub closed")

// AnimalLookup lo cumple animals.Service.
type AnimalLookup interface {
	GetByID(ctx context.Context, id string) (animals.Animal, error)
}

type subscriber struct {
	animalID string
	conn     *websocket.Conn
	send     chan []byte
	once     sync.Once
}

func (s *subscriber) close() {
	s.once.Do(func() { close(s.send) })
}

// Hub reparte los eventos del simulador a los websockets suscriptos a cada animal.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]map[*subscriber]struct{}
	closed bool

	upgrader websocket.Upgrader
	log      logger.Logger
	now      func() time.Time
}

var _ health.Publisher = (*Hub)(nil)

func NewHub(log logger.Logger) *Hub {
	if log == nil {
		log = logger.NewNop()
	}
	return &Hub{
		subs: make(map[string]map[*subscriber]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// el dashboard corre en otro origen en dev
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		log: log,
		now: time.Now,
	}
}

// Subscribers cantidad de conexiones abiertas para el animal.
func (h *Hub) Subscribers(animalID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[animalID])
}

func (h *Hub) PublishReadings(ctx context.Context, animalID string, readings []health.Reading) error {
	if len(readings) == 0 {
		return nil
	}
	return h.broadcast(health.NewReadingsEvent(animalID, readings, h.now()))
}

func (h *Hub) PublishAlert(ctx context.Context, a health.Alert) error {
	return h.broadcast(health.NewAlertEvent(a, h.now()))
}

// broadcast envía sin bloquear y con h.mu tomado: remove y Close cierran
// send bajo el lock de escritura, así nunca se envía a un canal cerrado.
func (h *Hub) broadcast(ev health.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal live event: %w", err)
	}

	h.mu.RLock()
	if h.closed {
		h.mu.RUnlock()
		return ErrHubClosed
	}
	var slow []*subscriber
	for s := range h.subs[ev.AnimalID] {
		select {
		case s.send <- payload:
		default:
			slow = append(slow, s)
		}
	}
	h.mu.RUnlock()

	for _, s := range slow {
		h.log.Warn("live subscriber too slow, dropping", map[string]any{"animal_id": s.animalID})
		h.remove(s)
	}
	return nil
}

func (h *Hub) add(s *subscriber) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrHubClosed
	}
	set, ok := h.subs[s.animalID]
	if !ok {
		set = make(map[*subscriber]struct{})
		h.subs[s.animalID] = set
	}
	set[s] = struct{}{}
	return nil
}

func (h *Hub) remove(s *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.subs[s.animalID]
	if !ok {
		return
	}
	if _, ok := set[s]; !ok {
		return
	}
	delete(set, s)
	if len(set) == 0 {
		delete(h.subs, s.animalID)
	}
	s.close()
}

// Close corta todas las conexiones; se llama en el shutdown.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for _, set := range h.subs {
		for s := range set {
			s.close()
		}
	}
	h.subs = make(map[string]map[*subscriber]struct{})
}

// RegisterRoutes expone GET /animals/{animalID}/live.
func RegisterRoutes(r chi.Router, h *Hub, dir AnimalLookup, guard middleware.Guard) {
	r.With(guard(permissions.DataView)).Get("/animals/{animalID}/live", h.serve(dir))
}

func (h *Hub) serve(dir AnimalLookup) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		animalID := strings.TrimSpace(chi.URLParam(r, "animalID"))
		if _, err := dir.GetByID(r.Context(), animalID); err != nil {
			if errors.Is(err, animals.ErrNotFound) {
				http.Error(w, "not found", http.StatusNotFound)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		conn, err := h.upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade ya respondió con el error HTTP
			h.log.Warn("websocket upgrade failed", map[string]any{"animal_id": animalID, "error": err})
			return
		}

		s := &subscriber{animalID: animalID, conn: conn, send: make(chan []byte, sendBuffer)}
		if err := h.add(s); err != nil {
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
				time.Now().Add(writeWait))
			_ = conn.Close()
			return
		}
		h.log.Debug("live subscriber connected", map[string]any{"animal_id": animalID})

		go h.writePump(s)
		h.readPump(s)
	}
}

// readPump solo consume pongs y detecta el cierre del cliente.
func (h *Hub) readPump(s *subscriber) {
	defer func() {
		h.remove(s)
		h.log.Debug("live subscriber disconnected", map[string]any{"animal_id": s.animalID})
	}()

	s.conn.SetReadLimit(512)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(s *subscriber) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
