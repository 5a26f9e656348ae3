package ws

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gofiber/contrib/websocket"

	"github.com/jhoicas/inventario-compras/internal/application/audit"
	"github.com/jhoicas/inventario-compras/internal/domain/entity"
	"github.com/jhoicas/inventario-compras/pkg/logger"
)

var _ audit.Publisher = (*Hub)(nil)

// Conn lo que el hub necesita de una conexión (*websocket.Conn lo cumple).
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Client conexión suscrita al feed. Un usuario solo recibe sus propios movimientos; el admin, todos.
type Client struct {
	Conn   Conn
	UserID string
	Admin  bool
}

func (c *Client) wants(m *entity.Movement) bool {
	return c.Admin || c.UserID == m.UserID
}

// Message sobre enviado por el socket.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Hub difunde movimientos recién registrados a los clientes conectados.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan *entity.Movement
	done       chan struct{}
	mutex      sync.Mutex
	log        *logger.Logger
}

func NewHub(log *logger.Logger) *Hub {
	if log == nil {
		log = logger.Nop()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *entity.Movement, 256),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run procesa altas, bajas y difusiones hasta que ctx se cancela.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mutex.Lock()
			for c := range h.clients {
				_ = c.Conn.Close()
				delete(h.clients, c)
			}
			h.mutex.Unlock()
			return

		case c := <-h.register:
			h.mutex.Lock()
			h.clients[c] = true
			h.mutex.Unlock()
			h.log.Debug().Str("user_id", c.UserID).Msg("cliente ws conectado")

		case c := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				_ = c.Conn.Close()
			}
			h.mutex.Unlock()

		case m := <-h.broadcast:
			h.send(m)
		}
	}
}

func (h *Hub) send(m *entity.Movement) {
	payload, err := json.Marshal(Message{Type: "movement", Data: audit.ToMovementResponse(m)})
	if err != nil {
		h.log.Error().Err(err).Str("movement_id", m.ID).Msg("serializar movimiento ws")
		return
	}
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for c := range h.clients {
		if !c.wants(m) {
			continue
		}
		if err := c.Conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			_ = c.Conn.Close()
			delete(h.clients, c)
		}
	}
}

// Publish encola el movimiento sin bloquear: si el buffer está lleno se descarta y se registra.
func (h *Hub) Publish(m *entity.Movement) {
	select {
	case h.broadcast <- m:
	default:
		h.log.Warn().Str("movement_id", m.ID).Msg("feed ws saturado, movimiento descartado")
	}
}

// Register da de alta el cliente; con el hub detenido cierra la conexión y retorna.
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
		_ = c.Conn.Close()
	}
}

// Unregister no bloquea una vez que Run terminó.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Serve mantiene viva la conexión hasta que el cliente cierra; pensado para websocket.New.
func (h *Hub) Serve(conn *websocket.Conn, userID string, admin bool) {
	c := &Client{Conn: conn, UserID: userID, Admin: admin}
	h.Register(c)
	defer h.Unregister(c)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
