package main

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// Broadcaster publishes an event to every subscriber of a match channel.
type Broadcaster interface {
	Publish(matchID string, event string, payload any)
}

// Hub fans messages out to the clients of each match room.
type Hub struct {
	mu        sync.Mutex
	rooms     map[string]map[*Client]struct{}
	broadcast chan roomMessage
	logger    *zap.Logger
}

type Client struct {
	hub   *Hub
	room  string
	name  string
	color Color
	send  chan []byte
}

type roomMessage struct {
	room   string
	except *Client
	msg    wsMessage
}

type wsMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		rooms:     make(map[string]map[*Client]struct{}),
		broadcast: make(chan roomMessage, 64),
		logger:    logger,
	}
}

func NewClient(hub *Hub, room, name string, color Color) *Client {
	return &Client{hub: hub, room: room, name: name, color: color, send: make(chan []byte, 16)}
}

func (h *Hub) Run(done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case rm := <-h.broadcast:
			h.mu.Lock()
			for client := range h.rooms[rm.room] {
				if client == rm.except {
					continue
				}
				client.sendJSON(rm.msg)
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) Publish(matchID string, event string, payload any) {
	msg, ok := h.message(matchID, event, payload)
	if !ok {
		return
	}
	h.broadcast <- roomMessage{room: matchID, msg: msg}
}

// PublishOthers sends to every client of c's room except c.
func (h *Hub) PublishOthers(c *Client, event string, payload any) {
	msg, ok := h.message(c.room, event, payload)
	if !ok {
		return
	}
	h.broadcast <- roomMessage{room: c.room, except: c, msg: msg}
}

// message encodes payload into an envelope. Payloads that fail to encode are
// logged and dropped.
func (h *Hub) message(room, event string, payload any) (wsMessage, bool) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("payload encode failed", zap.String("match", room), zap.String("event", event), zap.Error(err))
		return wsMessage{}, false
	}
	return wsMessage{Type: event, Payload: data}, true
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	room, ok := h.rooms[c.room]
	if !ok {
		room = make(map[*Client]struct{})
		h.rooms[c.room] = room
	}
	room[c] = struct{}{}
	h.mu.Unlock()
	h.logger.Debug("client joined", zap.String("match", c.room), zap.String("name", c.name))
}

func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if room, ok := h.rooms[c.room]; ok {
		if _, ok := room[c]; ok {
			delete(room, c)
			close(c.send)
		}
		if len(room) == 0 {
			delete(h.rooms, c.room)
		}
	}
	h.mu.Unlock()
	h.logger.Debug("client left", zap.String("match", c.room), zap.String("name", c.name))
}

func (h *Hub) ClientCount(room string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[room])
}

func (c *Client) sendJSON(msg wsMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.hub.logger.Error("message encode failed", zap.String("match", c.room), zap.String("event", msg.Type), zap.Error(err))
		return
	}
	select {
	case c.send <- data:
	default:
		c.hub.logger.Warn("client send buffer full, message dropped",
			zap.String("match", c.room),
			zap.String("name", c.name),
			zap.String("event", msg.Type),
		)
	}
}

func (c *Client) sendEvent(event string, payload any) {
	if msg, ok := c.hub.message(c.room, event, payload); ok {
		c.sendJSON(msg)
	}
}
