package websocket

import (
	"encoding/json"
	"log"
	"sync"
	"time"
)

type ClientMessage struct {
	Client  *Client
	Message []byte
}

// Manager fans sync lifecycle events out to a user's connected browse
// clients. Clients are indexed per user key so a sync for one user never
// touches another user's connections.
type Manager struct {
	clients        map[string]*Client
	userIndex      map[string]map[string]bool
	clientsMutex   sync.RWMutex
	Register       chan *Client
	Unregister     chan *Client
	HandleMessage  chan *ClientMessage
	maxConnPerUser int
	writeWait      time.Duration
	pongWait       time.Duration
	pingPeriod     time.Duration
}

func NewManager(maxConnPerUser int, writeWait, pongWait, pingPeriod time.Duration) *Manager {
	return &Manager{
		clients:        make(map[string]*Client),
		userIndex:      make(map[string]map[string]bool),
		Register:       make(chan *Client),
		Unregister:     make(chan *Client),
		HandleMessage:  make(chan *ClientMessage),
		maxConnPerUser: maxConnPerUser,
		writeWait:      writeWait,
		pongWait:       pongWait,
		pingPeriod:     pingPeriod,
	}
}

func (m *Manager) Run() {
	for {
		select {
		case client := <-m.Register:
			m.registerClient(client)

		case client := <-m.Unregister:
			m.unregisterClient(client)

		case clientMsg := <-m.HandleMessage:
			m.processMessage(clientMsg)
		}
	}
}

func (m *Manager) registerClient(client *Client) {
	m.clientsMutex.Lock()
	defer m.clientsMutex.Unlock()

	if m.userIndex[client.UserKey] == nil {
		m.userIndex[client.UserKey] = make(map[string]bool)
	}

	if len(m.userIndex[client.UserKey]) >= m.maxConnPerUser {
		log.Printf("max connections reached for user %s", client.UserKey)
		close(client.Send)
		return
	}

	m.clients[client.ID] = client
	m.userIndex[client.UserKey][client.ID] = true

	log.Printf("client registered: %s (user: %s)", client.ID, client.UserKey)
}

func (m *Manager) unregisterClient(client *Client) {
	m.clientsMutex.Lock()
	defer m.clientsMutex.Unlock()

	if _, ok := m.clients[client.ID]; ok {
		delete(m.clients, client.ID)
		delete(m.userIndex[client.UserKey], client.ID)

		if len(m.userIndex[client.UserKey]) == 0 {
			delete(m.userIndex, client.UserKey)
		}

		close(client.Send)
		log.Printf("client unregistered: %s", client.ID)
	}
}

// processMessage handles inbound client traffic. Clients only ever send
// pings; everything else is logged and dropped.
func (m *Manager) processMessage(clientMsg *ClientMessage) {
	var msg Message
	if err := json.Unmarshal(clientMsg.Message, &msg); err != nil {
		log.Printf("error unmarshaling message: %v", err)
		return
	}

	switch msg.Type {
	case TypePing:
		pong, err := NewMessage(TypePong, nil)
		if err != nil {
			return
		}
		pongBytes, _ := json.Marshal(pong)
		select {
		case clientMsg.Client.Send <- pongBytes:
		default:
		}
	default:
		log.Printf("unexpected message type from client %s: %s", clientMsg.Client.ID, msg.Type)
	}
}

func (m *Manager) BroadcastToUser(userKey string, message *Message) error {
	m.clientsMutex.RLock()
	defer m.clientsMutex.RUnlock()

	messageBytes, err := json.Marshal(message)
	if err != nil {
		return err
	}

	clientIDs, exists := m.userIndex[userKey]
	if !exists {
		return nil
	}

	for clientID := range clientIDs {
		client := m.clients[clientID]
		select {
		case client.Send <- messageBytes:
		default:
			log.Printf("client %s send buffer full, closing connection", clientID)
			go func(c *Client) { m.Unregister <- c }(client)
		}
	}

	return nil
}

func (m *Manager) GetUserConnections(userKey string) int {
	m.clientsMutex.RLock()
	defer m.clientsMutex.RUnlock()

	if clients, exists := m.userIndex[userKey]; exists {
		return len(clients)
	}
	return 0
}
