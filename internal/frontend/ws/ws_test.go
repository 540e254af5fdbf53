package ws_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/lurefish/internal/frontend/ws"
	"github.com/cory-johannsen/lurefish/internal/game/catalog"
	"github.com/cory-johannsen/lurefish/internal/game/dice"
	"github.com/cory-johannsen/lurefish/internal/game/events"
	"github.com/cory-johannsen/lurefish/internal/game/fishing"
	"github.com/cory-johannsen/lurefish/internal/game/progression"
	"github.com/cory-johannsen/lurefish/internal/gameserver"
)

func newGame(t *testing.T) *gameserver.Game {
	t.Helper()
	g := gameserver.New(gameserver.Options{
		Catalog: catalog.Default(),
		Params:  fishing.DefaultParams(),
		Timings: gameserver.DefaultTimings(),
		Roller:  dice.NewLoggedRoller(dice.Fixed{F: 0.5}, zap.NewNop()),
		Logger:  zap.NewNop(),
	})
	t.Cleanup(g.Stop)
	return g
}

// dial starts a hub and test server for g and connects one client.
func dial(t *testing.T, g *gameserver.Game) (*websocket.Conn, *ws.Hub) {
	t.Helper()
	hub := ws.NewHub(g, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	srv := httptest.NewServer(ws.Handler(hub, zap.NewNop()))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn, hub
}

func send(t *testing.T, conn *websocket.Conn, typ string, payload any) {
	t.Helper()
	msg := map[string]any{"type": typ}
	if payload != nil {
		msg["payload"] = payload
	}
	require.NoError(t, conn.WriteJSON(msg))
}

// await reads messages until match accepts one.
func await(t *testing.T, conn *websocket.Conn, match func(ws.Message) bool) ws.Message {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	require.NoError(t, conn.SetReadDeadline(deadline))
	for {
		var m ws.Message
		_, data, err := conn.ReadMessage()
		require.NoError(t, err, "no matching message before deadline")
		require.NoError(t, json.Unmarshal(data, &m))
		if match(m) {
			return m
		}
	}
}

func isSnapshot(pred func(gameserver.Snapshot) bool) func(ws.Message) bool {
	return func(m ws.Message) bool {
		return m.Type == ws.MessageSnapshot && m.Snapshot != nil && pred(*m.Snapshot)
	}
}

func TestConnect_ReceivesInitialSnapshot(t *testing.T) {
	g := newGame(t)
	conn, hub := dial(t, g)

	m := await(t, conn, func(m ws.Message) bool { return m.Type == ws.MessageSnapshot })
	require.NotNil(t, m.Snapshot)
	assert.Equal(t, 1000, m.Snapshot.Player.Coins)
	assert.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 10*time.Millisecond)
}

func TestBuy_PushesEventAndSnapshot(t *testing.T) {
	g := newGame(t)
	conn, _ := dial(t, g)
	await(t, conn, func(m ws.Message) bool { return m.Type == ws.MessageSnapshot })

	send(t, conn, ws.ActionBuy, map[string]string{"slot": "lure", "id": "popper"})

	note := await(t, conn, func(m ws.Message) bool {
		return m.Type == ws.MessageEvent && m.Event != nil && m.Event.Kind == events.KindNotification
	})
	assert.Contains(t, note.Event.Message, "Purchased")
	await(t, conn, isSnapshot(func(s gameserver.Snapshot) bool { return s.Player.Coins == 850 }))
	assert.Equal(t, 850, g.Snapshot().Player.Coins)
}

func TestActions_DispatchToGame(t *testing.T) {
	g := newGame(t)
	conn, _ := dial(t, g)

	send(t, conn, ws.ActionSetScreen, map[string]string{"screen": "shop"})
	await(t, conn, isSnapshot(func(s gameserver.Snapshot) bool { return s.Screen == progression.ScreenShop }))

	settings := progression.DefaultSettings()
	settings.Graphics = progression.GraphicsHigh
	send(t, conn, ws.ActionSetSettings, settings)
	await(t, conn, isSnapshot(func(s gameserver.Snapshot) bool { return s.Settings.Graphics == progression.GraphicsHigh }))

	send(t, conn, ws.ActionSwitchLure, map[string]string{"id": "minnow"})
	await(t, conn, isSnapshot(func(s gameserver.Snapshot) bool { return s.Equipment.Lure.ID == "minnow" }))

	send(t, conn, ws.ActionCast, nil)
	await(t, conn, isSnapshot(func(s gameserver.Snapshot) bool { return s.Fishing.Stage == fishing.StageCasting }))
}

func TestSnapshotAction(t *testing.T) {
	g := newGame(t)
	conn, _ := dial(t, g)
	await(t, conn, func(m ws.Message) bool { return m.Type == ws.MessageSnapshot })

	send(t, conn, ws.ActionSnapshot, nil)
	m := await(t, conn, func(m ws.Message) bool { return m.Type == ws.MessageSnapshot })
	assert.Equal(t, progression.StartingScene, m.Snapshot.Scene)
}

func TestErrors_ReportedToSender(t *testing.T) {
	g := newGame(t)
	conn, _ := dial(t, g)

	tests := []struct {
		name    string
		typ     string
		payload any
		want    string
	}{
		{"unknown action", "TELEPORT", nil, "unknown action"},
		{"missing payload", ws.ActionBuy, nil, "malformed payload"},
		{"wrong payload", ws.ActionClaimTask, map[string]string{"taskId": "one"}, "malformed payload"},
		{"insufficient coins", ws.ActionUnlockScene, map[string]string{"id": "river"}, "insufficient coins"},
		{"incomplete task", ws.ActionClaimTask, map[string]int{"taskId": 1}, "not complete"},
		{"bad screen", ws.ActionSetScreen, map[string]string{"screen": "arcade"}, "invalid screen"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			send(t, conn, tt.typ, tt.payload)
			m := await(t, conn, func(m ws.Message) bool { return m.Type == ws.MessageError })
			assert.Contains(t, m.Error, tt.want)
		})
	}
	assert.Equal(t, 1000, g.Snapshot().Player.Coins)
}

func TestErrors_GarbageFrame(t *testing.T) {
	g := newGame(t)
	conn, _ := dial(t, g)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	m := await(t, conn, func(m ws.Message) bool { return m.Type == ws.MessageError })
	assert.Contains(t, m.Error, "malformed payload")
}

func TestBroadcast_ReachesEveryClient(t *testing.T) {
	g := newGame(t)
	hub := ws.NewHub(g, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)
	srv := httptest.NewServer(ws.Handler(hub, zap.NewNop()))
	defer srv.Close()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	a, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer a.Close()
	b, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer b.Close()
	require.Eventually(t, func() bool { return hub.Clients() == 2 }, time.Second, 10*time.Millisecond)

	send(t, a, ws.ActionBuy, map[string]string{"slot": "lure", "id": "spoon"})
	for _, conn := range []*websocket.Conn{a, b} {
		await(t, conn, isSnapshot(func(s gameserver.Snapshot) bool { return s.Player.Coins == 950 }))
	}
}

func TestHub_StopClosesClients(t *testing.T) {
	g := newGame(t)
	hub := ws.NewHub(g, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() { hub.Run(ctx); close(done) }()
	srv := httptest.NewServer(ws.Handler(hub, zap.NewNop()))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 10*time.Millisecond)

	cancel()
	<-done
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var readErr error
	for readErr == nil {
		_, _, readErr = conn.ReadMessage()
	}
	var closeErr *websocket.CloseError
	assert.ErrorAs(t, readErr, &closeErr, "connection should end with a close frame")
	assert.Equal(t, 0, hub.Clients())
}

func TestServer_StartStop(t *testing.T) {
	g := newGame(t)
	s := ws.NewServer("127.0.0.1:0", g, zap.NewNop())
	errc := make(chan error, 1)
	go func() { errc <- s.Start() }()

	require.Eventually(t, func() bool { return !strings.HasSuffix(s.Addr(), ":0") }, time.Second, 10*time.Millisecond)
	conn, _, err := websocket.DefaultDialer.Dial("ws://"+s.Addr()+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()
	await(t, conn, func(m ws.Message) bool { return m.Type == ws.MessageSnapshot })

	s.Stop()
	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestNewHub_Panics(t *testing.T) {
	assert.Panics(t, func() { ws.NewHub(nil, zap.NewNop()) })
	assert.Panics(t, func() { ws.NewHub(newGame(t), nil) })
}
