package ws

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/cory-johannsen/lurefish/internal/game/catalog"
	"github.com/cory-johannsen/lurefish/internal/game/progression"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Maximum message size allowed from peer.
	maxMessageSize = 4096
	// Outbound frames buffered per client.
	sendBuffer = 256
)

// Action types accepted from clients.
const (
	ActionCast        = "CAST"
	ActionReel        = "REEL"
	ActionRelease     = "RELEASE"
	ActionAck         = "ACK"
	ActionBuy         = "BUY"
	ActionSwitchLure  = "SWITCH_LURE"
	ActionUnlockScene = "UNLOCK_SCENE"
	ActionClaimTask   = "CLAIM_TASK"
	ActionSetScene    = "SET_SCENE"
	ActionSetScreen   = "SET_SCREEN"
	ActionSetSettings = "SET_SETTINGS"
	ActionAlbumAdd    = "ALBUM_ADD"
	ActionAlbumRemove = "ALBUM_REMOVE"
	ActionSnapshot    = "SNAPSHOT"
)

var (
	// ErrUnknownAction is returned for an unrecognized action type.
	ErrUnknownAction = errors.New("unknown action")
	// ErrBadPayload is returned when an action payload cannot be decoded.
	ErrBadPayload = errors.New("malformed payload")
)

// Action is an incoming command from a client.
type Action struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type idPayload struct {
	ID string `json:"id"`
}

type buyPayload struct {
	Slot catalog.Slot `json:"slot"`
	ID   string       `json:"id"`
}

type taskPayload struct {
	TaskID int `json:"taskId"`
}

type screenPayload struct {
	Screen progression.Screen `json:"screen"`
}

type albumPayload struct {
	InstanceID string `json:"instanceId"`
}

// Client is one WebSocket connection.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	remote string
}

// NewClient creates a client for conn.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		remote: conn.RemoteAddr().String(),
	}
}

// ReadPump reads actions from the connection and dispatches them until the peer
// goes away.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.leave(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("websocket read failed", zap.String("remote", c.remote), zap.Error(err))
			}
			return
		}

		var action Action
		if err := json.Unmarshal(message, &action); err != nil {
			c.fail(fmt.Errorf("decoding action: %w", ErrBadPayload))
			continue
		}
		if err := c.handle(action); err != nil {
			c.fail(err)
		}
	}
}

func (c *Client) fail(err error) {
	c.hub.logger.Debug("websocket action refused", zap.String("remote", c.remote), zap.Error(err))
	c.hub.reply(c, encode(c.hub.logger, Message{Type: MessageError, Error: err.Error()}))
}

// handle dispatches one action to the game.
func (c *Client) handle(a Action) error {
	g := c.hub.game
	switch a.Type {
	case ActionCast:
		return g.CastLine()
	case ActionReel:
		return g.ReelIn()
	case ActionRelease:
		return g.ReleaseReel()
	case ActionAck:
		return g.Acknowledge()
	case ActionSnapshot:
		c.hub.reply(c, c.hub.snapshotMessage())
		return nil
	case ActionBuy:
		var p buyPayload
		if err := decode(a, &p); err != nil {
			return err
		}
		return g.BuyEquipment(p.Slot, p.ID)
	case ActionSwitchLure:
		var p idPayload
		if err := decode(a, &p); err != nil {
			return err
		}
		return g.SwitchLure(p.ID)
	case ActionUnlockScene:
		var p idPayload
		if err := decode(a, &p); err != nil {
			return err
		}
		return g.UnlockScene(p.ID)
	case ActionSetScene:
		var p idPayload
		if err := decode(a, &p); err != nil {
			return err
		}
		return g.SetScene(p.ID)
	case ActionClaimTask:
		var p taskPayload
		if err := decode(a, &p); err != nil {
			return err
		}
		return g.ClaimTaskReward(p.TaskID)
	case ActionSetScreen:
		var p screenPayload
		if err := decode(a, &p); err != nil {
			return err
		}
		return g.SetScreen(p.Screen)
	case ActionSetSettings:
		var s progression.Settings
		if err := decode(a, &s); err != nil {
			return err
		}
		return g.SetSettings(s)
	case ActionAlbumAdd:
		var p albumPayload
		if err := decode(a, &p); err != nil {
			return err
		}
		return g.AddToAlbum(p.InstanceID)
	case ActionAlbumRemove:
		var p albumPayload
		if err := decode(a, &p); err != nil {
			return err
		}
		return g.RemoveFromAlbum(p.InstanceID)
	default:
		return fmt.Errorf("action %q: %w", a.Type, ErrUnknownAction)
	}
}

func decode(a Action, v any) error {
	if len(a.Payload) == 0 {
		return fmt.Errorf("action %s: missing payload: %w", a.Type, ErrBadPayload)
	}
	if err := json.Unmarshal(a.Payload, v); err != nil {
		return fmt.Errorf("action %s: %v: %w", a.Type, err, ErrBadPayload)
	}
	return nil
}

// WritePump writes queued frames and keep-alive pings to the connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
