package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"virtualitems/internal/domain/entity"
	"virtualitems/pkg/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 32
)

// Client is one websocket connection. A user may hold several.
type Client struct {
	ID     string
	UserID string
	Conn   *websocket.Conn
	Send   chan []byte
}

func NewClient(userID string, conn *websocket.Conn) *Client {
	return &Client{
		ID:     uuid.NewString(),
		UserID: userID,
		Conn:   conn,
		Send:   make(chan []byte, sendBuffer),
	}
}

// Manager fans purchase events out to the connections of the purchasing user.
type Manager struct {
	clients    map[string]map[string]*Client
	Register   chan *Client
	Unregister chan *Client
	done       chan struct{}
	mutex      sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		clients:    make(map[string]map[string]*Client),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Start runs the registration loop until ctx is done. Clients still connected at that point
// have their Send channel closed so their write pumps exit.
func (m *Manager) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case client := <-m.Register:
				m.mutex.Lock()
				if m.clients[client.UserID] == nil {
					m.clients[client.UserID] = make(map[string]*Client)
				}
				m.clients[client.UserID][client.ID] = client
				m.mutex.Unlock()
				logger.Debug("websocket client %s registered for user %s", client.ID, client.UserID)

			case client := <-m.Unregister:
				m.remove(client)
				logger.Debug("websocket client %s unregistered", client.ID)

			case <-ctx.Done():
				close(m.done)
				m.closeAll()
				return
			}
		}
	}()
}

// RegisterClient hands client to the registration loop. It returns false once the manager has stopped.
func (m *Manager) RegisterClient(client *Client) bool {
	select {
	case m.Register <- client:
		return true
	case <-m.done:
		return false
	}
}

// UnregisterClient never blocks after the manager has stopped.
func (m *Manager) UnregisterClient(client *Client) {
	select {
	case m.Unregister <- client:
	case <-m.done:
	}
}

func (m *Manager) closeAll() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for userID, userClients := range m.clients {
		for _, client := range userClients {
			close(client.Send)
		}
		delete(m.clients, userID)
	}
}

func (m *Manager) remove(client *Client) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	userClients, ok := m.clients[client.UserID]
	if !ok {
		return
	}
	if _, ok := userClients[client.ID]; !ok {
		return
	}
	delete(userClients, client.ID)
	close(client.Send)
	if len(userClients) == 0 {
		delete(m.clients, client.UserID)
	}
}

func (m *Manager) ClientCount(userID string) int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.clients[userID])
}

// Publish implements the purchase notifier. Events for users without a connection are dropped.
func (m *Manager) Publish(event entity.PurchaseEvent) {
	message, err := json.Marshal(event)
	if err != nil {
		logger.Error("failed to encode purchase event %s: %v", event.RequestID, err)
		return
	}
	m.SendToUser(event.UserID, message)
}

// SendToUser never blocks; a client whose buffer is full misses the message.
func (m *Manager) SendToUser(userID string, message []byte) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	for _, client := range m.clients[userID] {
		select {
		case client.Send <- message:
		default:
			logger.Warn("websocket client %s is not keeping up, dropping message", client.ID)
		}
	}
}

// ReadPump discards inbound messages and keeps the connection alive until it closes.
func (c *Client) ReadPump(m *Manager) {
	defer func() {
		m.UnregisterClient(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("websocket client %s read error: %v", c.ID, err)
			}
			return
		}
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logger.Warn("websocket client %s write error: %v", c.ID, err)
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
