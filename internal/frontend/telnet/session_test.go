package telnet

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/lurefish/internal/game/catalog"
	"github.com/cory-johannsen/lurefish/internal/game/dice"
	"github.com/cory-johannsen/lurefish/internal/game/fishing"
	"github.com/cory-johannsen/lurefish/internal/gameserver"
	"github.com/cory-johannsen/lurefish/internal/savegame"
	"github.com/cory-johannsen/lurefish/internal/storage/memory"
)

func newConsoleHandler(t *testing.T) (*ConsoleHandler, *gameserver.Game) {
	t.Helper()
	cat := catalog.Default()
	g := gameserver.New(gameserver.Options{
		Catalog: cat,
		Params:  fishing.DefaultParams(),
		Timings: gameserver.DefaultTimings(),
		Roller:  dice.NewLoggedRoller(dice.Fixed{F: 0.5}, zap.NewNop()),
		Logger:  zap.NewNop(),
	})
	t.Cleanup(g.Stop)
	saves := savegame.New(memory.New(), cat, zap.NewNop())
	p := savegame.NewPersister(saves, g, nil, zap.NewNop())
	return NewConsoleHandler(g, p, saves.Manager(), zaptest.NewLogger(t)), g
}

func TestConsoleHandler_PlaysOverTelnet(t *testing.T) {
	handler, g := newConsoleHandler(t)
	acc := NewAcceptor(testConfig(), handler, zaptest.NewLogger(t))
	startAcceptor(t, acc)

	c := dial(t, acc.Addr())
	c.readUntil(t, "Welcome to the lake")

	c.send(t, "buy lure popper")
	out := c.readUntil(t, "Surface Popper")
	assert.Contains(t, out, "\r\n")
	assert.Equal(t, 850, g.Snapshot().Player.Coins)

	c.send(t, "cats")
	c.readUntil(t, "Unknown command")

	c.send(t, "quit")
	c.readUntil(t, "Tight lines!")
	assert.Eventually(t, func() bool { return acc.Sessions() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestConsoleHandler_SharedGame(t *testing.T) {
	handler, g := newConsoleHandler(t)
	acc := NewAcceptor(testConfig(), handler, zaptest.NewLogger(t))
	startAcceptor(t, acc)

	a := dial(t, acc.Addr())
	a.readUntil(t, "Welcome")
	b := dial(t, acc.Addr())
	b.readUntil(t, "Welcome")

	a.send(t, "buy lure spoon")
	a.readUntil(t, "Purchased")
	b.readUntil(t, "Purchased")
	assert.Equal(t, 950, g.Snapshot().Player.Coins)
}

func TestConsoleHandler_StopSaysGoodbye(t *testing.T) {
	handler, _ := newConsoleHandler(t)
	acc := NewAcceptor(testConfig(), handler, zaptest.NewLogger(t))
	startAcceptor(t, acc)

	c := dial(t, acc.Addr())
	c.readUntil(t, "Welcome")
	go acc.Stop()
	c.readUntil(t, "The lake is closing")
}

func TestNewConsoleHandler_PanicsOnNil(t *testing.T) {
	assert.Panics(t, func() { NewConsoleHandler(nil, nil, nil, zap.NewNop()) })
}
