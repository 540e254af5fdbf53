// Package ws bridges the game to browser clients over WebSocket: every game event is
// pushed to every client together with a fresh snapshot, and client actions are
// dispatched to the game's command surface.
package ws

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/cory-johannsen/lurefish/internal/game/catalog"
	"github.com/cory-johannsen/lurefish/internal/game/events"
	"github.com/cory-johannsen/lurefish/internal/game/progression"
	"github.com/cory-johannsen/lurefish/internal/gameserver"
)

// Outbound message types.
const (
	MessageEvent    = "EVENT"
	MessageSnapshot = "SNAPSHOT"
	MessageError    = "ERROR"
)

// eventBuffer absorbs bursts of game events, such as reel ticks, between hub iterations.
const eventBuffer = 256

// Game is the command surface clients drive.
type Game interface {
	Snapshot() gameserver.Snapshot
	Events() *events.Bus
	CastLine() error
	ReelIn() error
	ReleaseReel() error
	Acknowledge() error
	BuyEquipment(slot catalog.Slot, id string) error
	UnlockScene(id string) error
	ClaimTaskReward(id int) error
	SwitchLure(id string) error
	SetSettings(s progression.Settings) error
	SetScene(id string) error
	SetScreen(s progression.Screen) error
	AddToAlbum(instanceID string) error
	RemoveFromAlbum(instanceID string) error
}

// Message is one server-to-client frame.
type Message struct {
	Type     string               `json:"type"`
	Event    *events.Event        `json:"event,omitempty"`
	Snapshot *gameserver.Snapshot `json:"snapshot,omitempty"`
	Error    string               `json:"error,omitempty"`
}

type direct struct {
	client *Client
	data   []byte
}

// Hub maintains the set of connected clients and fans game events out to them.
// Only the Run goroutine sends on or closes a client's send channel.
type Hub struct {
	game   Game
	logger *zap.Logger

	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	direct     chan direct
	done       chan struct{}

	mu    sync.Mutex
	count int
}

// NewHub creates a Hub for game.
//
// Precondition: game and logger must be non-nil.
func NewHub(game Game, logger *zap.Logger) *Hub {
	if game == nil {
		panic("ws.NewHub: game must not be nil")
	}
	if logger == nil {
		panic("ws.NewHub: logger must not be nil")
	}
	return &Hub{
		game:       game,
		logger:     logger,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		direct:     make(chan direct),
		done:       make(chan struct{}),
	}
}

// Run handles registrations and broadcasts until ctx is cancelled.
//
// Postcondition: every client's send channel is closed when Run returns.
func (h *Hub) Run(ctx context.Context) {
	ch := make(chan events.Event, eventBuffer)
	bus := h.game.Events()
	bus.Subscribe(ch)
	defer bus.Unsubscribe(ch)
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				h.drop(c)
			}
			h.logger.Info("websocket hub shutting down")
			return
		case c := <-h.register:
			h.clients[c] = true
			h.setCount(len(h.clients))
			h.logger.Info("websocket client connected", zap.String("remote", c.remote))
			h.sendTo(c, h.snapshotMessage())
		case c := <-h.unregister:
			if h.clients[c] {
				h.drop(c)
				h.logger.Info("websocket client disconnected", zap.String("remote", c.remote))
			}
		case d := <-h.direct:
			if h.clients[d.client] {
				h.sendTo(d.client, d.data)
			}
		case ev := <-ch:
			h.broadcast(encode(h.logger, Message{Type: MessageEvent, Event: &ev}))
			if ev.Kind != events.KindNotification {
				h.broadcast(h.snapshotMessage())
			}
		}
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.count
}

func (h *Hub) setCount(n int) {
	h.mu.Lock()
	h.count = n
	h.mu.Unlock()
}

func (h *Hub) snapshotMessage() []byte {
	snap := h.game.Snapshot()
	return encode(h.logger, Message{Type: MessageSnapshot, Snapshot: &snap})
}

func (h *Hub) broadcast(data []byte) {
	if data == nil {
		return
	}
	for c := range h.clients {
		h.sendTo(c, data)
	}
}

// sendTo queues data for c, dropping a client whose buffer is full.
func (h *Hub) sendTo(c *Client, data []byte) {
	if data == nil {
		return
	}
	select {
	case c.send <- data:
	default:
		h.logger.Warn("websocket client too slow, disconnecting", zap.String("remote", c.remote))
		h.drop(c)
	}
}

func (h *Hub) drop(c *Client) {
	delete(h.clients, c)
	close(c.send)
	h.setCount(len(h.clients))
}

// reply queues data for one client; a no-op once the hub has stopped.
func (h *Hub) reply(c *Client, data []byte) {
	if data == nil {
		return
	}
	select {
	case h.direct <- direct{client: c, data: data}:
	case <-h.done:
	}
}

func (h *Hub) join(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func encode(logger *zap.Logger, m Message) []byte {
	data, err := json.Marshal(m)
	if err != nil {
		logger.Error("encoding websocket message", zap.String("type", m.Type), zap.Error(err))
		return nil
	}
	return data
}
