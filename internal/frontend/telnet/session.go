package telnet

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/cory-johannsen/lurefish/internal/frontend/console"
)

// ConsoleHandler runs a console session over each Telnet connection.
// Every session drives the same game, so remote anglers share one profile.
type ConsoleHandler struct {
	game    console.Game
	saver   console.Saver
	archive console.Archive
	logger  *zap.Logger
}

// NewConsoleHandler creates a ConsoleHandler.
//
// Precondition: game, saver, archive and logger must be non-nil.
func NewConsoleHandler(game console.Game, saver console.Saver, archive console.Archive, logger *zap.Logger) *ConsoleHandler {
	if game == nil || saver == nil || archive == nil {
		panic("telnet.NewConsoleHandler: game, saver and archive must not be nil")
	}
	if logger == nil {
		panic("telnet.NewConsoleHandler: logger must not be nil")
	}
	return &ConsoleHandler{game: game, saver: saver, archive: archive, logger: logger}
}

// HandleSession runs the console until the client quits or disconnects, or ctx is
// cancelled.
//
// Postcondition: Returns nil when the client quits or hangs up.
func (h *ConsoleHandler) HandleSession(ctx context.Context, conn *Conn) error {
	logger := h.logger.With(zap.String("remote_addr", conn.RemoteAddr().String()))
	con := console.New(h.game, h.saver, h.archive, console.Options{
		In:     conn.Reader(),
		Out:    conn.Writer(),
		Color:  true,
		Prompt: "> ",
	}, logger)
	err := con.Run(ctx)
	if errors.Is(err, context.Canceled) {
		_ = conn.WriteLine("The lake is closing. Tight lines!")
		return nil
	}
	return err
}
