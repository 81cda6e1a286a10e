package sse

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
)

const (
	EventRequestCreated = "request_created"
	EventRequestDecided = "request_decided"
	EventMessageCreated = "message_created"
	EventMemberJoined   = "member_joined"
)

type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Client is one open event stream. It receives events of a single family.
type Client struct {
	ID       string
	UserID   uuid.UUID
	FamilyID uuid.UUID
	Send     chan []byte
}

type FamilyMessage struct {
	FamilyID uuid.UUID
	Event    Event
}

type Hub struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	broadcast  chan *FamilyMessage
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *FamilyMessage, 256),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.ID]; ok {
				delete(h.clients, client.ID)
				close(client.Send)
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			data, err := json.Marshal(msg.Event)
			if err != nil {
				continue
			}
			h.mu.RLock()
			for _, client := range h.clients {
				if client.FamilyID != msg.FamilyID {
					continue
				}
				select {
				case client.Send <- data:
				default:
					// slow client, drop
				}
			}
			h.mu.RUnlock()
		}
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// ClientCount returns the number of open streams for familyID.
func (h *Hub) ClientCount(familyID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, c := range h.clients {
		if c.FamilyID == familyID {
			n++
		}
	}
	return n
}

// Publish queues an event for every stream of familyID.
func (h *Hub) Publish(familyID uuid.UUID, eventType string, data any) {
	h.broadcast <- &FamilyMessage{
		FamilyID: familyID,
		Event:    Event{Type: eventType, Data: data},
	}
}
