package ws

import (
	"log"
	"sync"
)

type envelope struct {
	channel string
	payload []byte
}

// Hub fans notification payloads out to connected recipients. Each client
// subscribes to one channel, its recipient id; a broadcast reaches every
// connection of that recipient and nobody else.
type Hub struct {
	clients    map[*Client]bool
	byChannel  map[string]map[*Client]bool
	broadcast  chan envelope
	register   chan *Client
	unregister chan *Client
	mutex      sync.RWMutex
	logger     *log.Logger
}

func NewHub(logger *log.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		byChannel:  make(map[string]map[*Client]bool),
		broadcast:  make(chan envelope, 1024),
		register:   make(chan *Client, 128),
		unregister: make(chan *Client, 128),
		logger:     logger,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			if client == nil {
				continue
			}
			h.mutex.Lock()
			h.clients[client] = true
			if h.byChannel[client.channel] == nil {
				h.byChannel[client.channel] = make(map[*Client]bool)
			}
			h.byChannel[client.channel][client] = true
			total := len(h.clients)
			h.mutex.Unlock()
			if h.logger != nil {
				h.logger.Printf("WS connected | channel=%s total_clients=%d", client.channel, total)
			}

		case client := <-h.unregister:
			if client == nil {
				continue
			}
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				delete(h.byChannel[client.channel], client)
				if len(h.byChannel[client.channel]) == 0 {
					delete(h.byChannel, client.channel)
				}
				close(client.send)
			}
			total := len(h.clients)
			h.mutex.Unlock()
			if h.logger != nil {
				h.logger.Printf("WS disconnected | channel=%s total_clients=%d", client.channel, total)
			}

		case msg := <-h.broadcast:
			h.mutex.RLock()
			targets := make([]*Client, 0, len(h.byChannel[msg.channel]))
			for c := range h.byChannel[msg.channel] {
				targets = append(targets, c)
			}
			h.mutex.RUnlock()

			for _, client := range targets {
				select {
				case client.send <- msg.payload:
				default:
					h.unregister <- client
				}
			}
		}
	}
}

func (h *Hub) Register(client *Client) {
	if h == nil {
		return
	}
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	if h == nil {
		return
	}
	h.unregister <- client
}

func (h *Hub) Broadcast(channel string, message []byte) {
	if h == nil {
		return
	}
	select {
	case h.broadcast <- envelope{channel: channel, payload: message}:
	default:
		if h.logger != nil {
			h.logger.Printf("WS broadcast dropped | channel=%s reason=buffer_full", channel)
		}
	}
}

func (h *Hub) ClientCount() int {
	if h == nil {
		return 0
	}
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}
