// Package console is the line-oriented text front end: it reads commands from an
// input stream, drives the game, and prints views and notifications.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/cory-johannsen/lurefish/internal/game/catalog"
	"github.com/cory-johannsen/lurefish/internal/game/command"
	"github.com/cory-johannsen/lurefish/internal/game/events"
	"github.com/cory-johannsen/lurefish/internal/game/progression"
	"github.com/cory-johannsen/lurefish/internal/gameserver"
	"github.com/cory-johannsen/lurefish/internal/storage"
)

// maxSuggestions bounds the "did you mean" list.
const maxSuggestions = 3

// Game is the command surface the console drives.
type Game interface {
	Snapshot() gameserver.Snapshot
	Events() *events.Bus
	Catalog() *catalog.Catalog
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

// Saver persists and replaces the running game.
type Saver interface {
	SaveNow(ctx context.Context) error
	Import(ctx context.Context, doc []byte) (storage.ImportResult, error)
	Reset(ctx context.Context) error
}

// Archive reads the saved game as a whole.
type Archive interface {
	ExportSnapshot(ctx context.Context) ([]byte, error)
	Validate(ctx context.Context) storage.ValidationReport
	Info(ctx context.Context) storage.Info
}

// Options configures a Console.
type Options struct {
	In  io.Reader
	Out io.Writer
	// Color enables ANSI styling; when false every escape sequence is stripped.
	Color bool
	// Prompt is printed before each command; empty prints none.
	Prompt string
}

// Console runs the text front end over one input and one output stream.
type Console struct {
	game     Game
	saver    Saver
	archive  Archive
	registry *command.Registry
	in       io.Reader
	color    bool
	prompt   string
	logger   *zap.Logger

	outMu sync.Mutex
	out   io.Writer
}

// New creates a Console.
//
// Precondition: game, saver, archive, logger, opts.In and opts.Out must be non-nil.
func New(game Game, saver Saver, archive Archive, opts Options, logger *zap.Logger) *Console {
	if game == nil || saver == nil || archive == nil {
		panic("console.New: game, saver and archive must not be nil")
	}
	if opts.In == nil || opts.Out == nil {
		panic("console.New: input and output must not be nil")
	}
	if logger == nil {
		panic("console.New: logger must not be nil")
	}
	return &Console{
		game:     game,
		saver:    saver,
		archive:  archive,
		registry: command.DefaultRegistry(),
		in:       opts.In,
		out:      opts.Out,
		color:    opts.Color,
		prompt:   opts.Prompt,
		logger:   logger,
	}
}

// Run reads commands until quit, end of input, or ctx is cancelled.
// Notifications are printed as they arrive.
//
// Postcondition: Returns nil on quit or end of input, ctx.Err() on cancellation.
func (c *Console) Run(ctx context.Context) error {
	notes := make(chan events.Event, 64)
	bus := c.game.Events()
	bus.Subscribe(notes)
	defer bus.Unsubscribe(notes)

	done := make(chan struct{})
	defer close(done)
	go c.printNotifications(notes, done)

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(c.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
		readErr <- scanner.Err()
	}()

	c.writeln(Colorize(BrightCyan, "Welcome to the lake. Type help for commands."))
	c.showPrompt()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-readErr:
			if err != nil {
				return fmt.Errorf("reading console input: %w", err)
			}
			return nil
		case line := <-lines:
			if c.Execute(ctx, line) {
				return nil
			}
			c.showPrompt()
		}
	}
}

func (c *Console) printNotifications(ch <-chan events.Event, done <-chan struct{}) {
	for {
		select {
		case ev := <-ch:
			if ev.Kind == events.KindNotification {
				c.writeln(RenderNotification(ev))
			}
		case <-done:
			return
		}
	}
}

// Execute runs one command line.
//
// Postcondition: Returns true when the line asks to quit.
func (c *Console) Execute(ctx context.Context, line string) bool {
	parsed := command.Parse(line)
	if parsed.Command == "" {
		return false
	}
	cmd, ok := c.registry.Resolve(parsed.Command)
	if !ok {
		msg := fmt.Sprintf("Unknown command %q.", parsed.Command)
		if s := c.registry.Suggest(parsed.Command, maxSuggestions); len(s) > 0 {
			msg += " Did you mean: " + strings.Join(s, ", ") + "?"
		}
		c.writeln(Colorize(Yellow, msg))
		return false
	}
	if len(parsed.Args) < cmd.MinArgs {
		c.writeln(Colorf(Yellow, "Usage: %s %s", cmd.Name, cmd.Usage))
		return false
	}
	c.logger.Debug("console command", zap.String("command", cmd.Name), zap.Strings("args", parsed.Args))
	return c.dispatch(ctx, cmd, parsed)
}

func (c *Console) dispatch(ctx context.Context, cmd *command.Command, p command.ParseResult) bool {
	switch cmd.Handler {
	case command.HandlerCast:
		c.screen(progression.ScreenFishing)
		c.run(c.game.CastLine())
	case command.HandlerReel:
		c.run(c.game.ReelIn())
	case command.HandlerRelease:
		c.run(c.game.ReleaseReel())
	case command.HandlerAck:
		c.run(c.game.Acknowledge())
	case command.HandlerStatus:
		c.write(RenderStatus(c.game.Snapshot(), c.game.Catalog()))
	case command.HandlerEnv:
		c.write(RenderEnvironment(c.game.Snapshot(), c.game.Catalog()))
	case command.HandlerInventory:
		c.write(RenderInventory(c.game.Snapshot()))
	case command.HandlerDex:
		c.screen(progression.ScreenCollection)
		c.write(RenderDex(c.game.Snapshot(), c.game.Catalog()))
	case command.HandlerTasks:
		c.write(RenderTasks(c.game.Snapshot()))
	case command.HandlerClaim:
		id, err := strconv.Atoi(p.Args[0])
		if err != nil {
			c.writeln(Colorize(Yellow, "Task id must be a number."))
			return false
		}
		c.run(c.game.ClaimTaskReward(id))
	case command.HandlerShop:
		c.screen(progression.ScreenShop)
		c.write(RenderShop(c.game.Snapshot(), c.game.Catalog()))
	case command.HandlerBuy:
		slot := catalog.Slot(strings.ToLower(p.Args[0]))
		switch slot {
		case catalog.SlotRod, catalog.SlotReel, catalog.SlotLure, catalog.SlotLine:
		default:
			c.writeln(Colorf(Yellow, "Usage: %s %s", cmd.Name, cmd.Usage))
			return false
		}
		c.run(c.game.BuyEquipment(slot, p.Args[1]))
	case command.HandlerLure:
		c.run(c.game.SwitchLure(p.Args[0]))
	case command.HandlerScenes:
		c.screen(progression.ScreenSceneSelect)
		c.write(RenderScenes(c.game.Snapshot(), c.game.Catalog()))
	case command.HandlerScene:
		c.run(c.game.SetScene(p.Args[0]))
	case command.HandlerUnlock:
		c.run(c.game.UnlockScene(p.Args[0]))
	case command.HandlerAlbum:
		c.album(p.Args[0], p.Args[1])
	case command.HandlerSet:
		c.screen(progression.ScreenSettings)
		c.set(p.Args[0], p.Args[1])
	case command.HandlerSave:
		if err := c.saver.SaveNow(ctx); err != nil {
			c.writeln(Colorf(BrightRed, "Save failed: %v", err))
			return false
		}
		c.writeln(Colorize(Green, "Game saved."))
	case command.HandlerExport:
		c.export(ctx, p.RawArgs)
	case command.HandlerImport:
		c.importFile(ctx, p.RawArgs)
	case command.HandlerValidate:
		c.write(RenderValidation(c.archive.Validate(ctx)))
	case command.HandlerInfo:
		c.write(RenderInfo(c.archive.Info(ctx)))
	case command.HandlerReset:
		if p.Args[0] != "confirm" {
			c.writeln(Colorize(Yellow, "Type 'reset confirm' to delete your saved game."))
			return false
		}
		if err := c.saver.Reset(ctx); err != nil {
			c.writeln(Colorf(BrightRed, "Reset failed: %v", err))
			return false
		}
		c.writeln(Colorize(Green, "Saved game deleted. Starting over."))
	case command.HandlerHelp:
		c.write(RenderHelp(c.registry))
	case command.HandlerQuit:
		c.writeln("Tight lines!")
		return true
	}
	return false
}

// run logs a refused command. The game has already published a notification for it.
func (c *Console) run(err error) {
	if err != nil {
		c.logger.Debug("command refused", zap.Error(err))
	}
}

func (c *Console) screen(s progression.Screen) {
	c.run(c.game.SetScreen(s))
}

// album resolves ref as an instance id or unique id prefix.
func (c *Console) album(op, ref string) {
	snap := c.game.Snapshot()
	switch op {
	case "add":
		ids := make([]string, len(snap.Inventory.CaughtFish))
		for i, f := range snap.Inventory.CaughtFish {
			ids[i] = f.InstanceID
		}
		id, err := resolvePrefix(ids, ref)
		if err != nil {
			c.writeln(Colorf(Yellow, "%v", err))
			return
		}
		c.run(c.game.AddToAlbum(id))
	case "remove":
		id, err := resolvePrefix(snap.Inventory.PhotoAlbum, ref)
		if err != nil {
			c.writeln(Colorf(Yellow, "%v", err))
			return
		}
		c.run(c.game.RemoveFromAlbum(id))
	default:
		c.writeln(Colorize(Yellow, "Usage: album <add|remove> <fish>"))
	}
}

func resolvePrefix(ids []string, ref string) (string, error) {
	var match string
	for _, id := range ids {
		if id == ref {
			return id, nil
		}
		if strings.HasPrefix(id, ref) {
			if match != "" {
				return "", fmt.Errorf("%q matches more than one fish", ref)
			}
			match = id
		}
	}
	if match == "" {
		return "", fmt.Errorf("no caught fish %q", ref)
	}
	return match, nil
}

func (c *Console) set(name, value string) {
	s := c.game.Snapshot().Settings
	switch strings.ToLower(name) {
	case "sound":
		v, err := parseSwitch(value)
		if err != nil {
			c.writeln(Colorize(Yellow, err.Error()))
			return
		}
		s.Sound = v
	case "vibration":
		v, err := parseSwitch(value)
		if err != nil {
			c.writeln(Colorize(Yellow, err.Error()))
			return
		}
		s.Vibration = v
	case "darkmode":
		v, err := parseSwitch(value)
		if err != nil {
			c.writeln(Colorize(Yellow, err.Error()))
			return
		}
		s.DarkMode = v
	case "graphics":
		s.Graphics = strings.ToLower(value)
	case "controls":
		s.Controls = strings.ToLower(value)
	default:
		c.writeln(Colorf(Yellow, "Unknown setting %q.", name))
		return
	}
	if err := c.game.SetSettings(s); err != nil {
		c.run(err)
		return
	}
	c.writeln(Colorf(Green, "%s set to %s.", name, value))
}

func parseSwitch(v string) (bool, error) {
	switch strings.ToLower(v) {
	case "on", "yes":
		return true, nil
	case "off", "no":
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("expected on or off, got %q", v)
	}
	return b, nil
}

func (c *Console) export(ctx context.Context, path string) {
	doc, err := c.archive.ExportSnapshot(ctx)
	if err != nil {
		c.writeln(Colorf(BrightRed, "Export failed: %v", err))
		return
	}
	if err := os.WriteFile(path, doc, 0o644); err != nil {
		c.writeln(Colorf(BrightRed, "Export failed: %v", err))
		return
	}
	c.writeln(Colorf(Green, "Exported saved game to %s.", path))
}

func (c *Console) importFile(ctx context.Context, path string) {
	doc, err := os.ReadFile(path)
	if err != nil {
		c.writeln(Colorf(BrightRed, "Import failed: %v", err))
		return
	}
	res, err := c.saver.Import(ctx, doc)
	if err != nil {
		c.writeln(Colorf(BrightRed, "Import failed: %v", err))
		return
	}
	c.write(RenderImport(res))
	if !res.Complete() {
		c.logger.Warn("partial import", zap.String("path", path), zap.Int("failed", len(res.Failed)))
	}
}

func (c *Console) showPrompt() {
	if c.prompt != "" {
		c.write(c.prompt)
	}
}

func (c *Console) writeln(s string) {
	c.write(s + "\n")
}

func (c *Console) write(s string) {
	if !c.color {
		s = StripANSI(s)
	}
	c.outMu.Lock()
	defer c.outMu.Unlock()
	if _, err := io.WriteString(c.out, s); err != nil && !errors.Is(err, io.ErrClosedPipe) {
		c.logger.Debug("console write failed", zap.Error(err))
	}
}
