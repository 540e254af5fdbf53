// Package main runs the lure-fishing game: the game core, persistence, and the
// console, Telnet, and WebSocket front ends.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/lurefish/internal/config"
	"github.com/cory-johannsen/lurefish/internal/frontend/console"
	"github.com/cory-johannsen/lurefish/internal/frontend/telnet"
	"github.com/cory-johannsen/lurefish/internal/frontend/ws"
	"github.com/cory-johannsen/lurefish/internal/game/catalog"
	"github.com/cory-johannsen/lurefish/internal/game/dice"
	"github.com/cory-johannsen/lurefish/internal/game/fishing"
	"github.com/cory-johannsen/lurefish/internal/gameserver"
	"github.com/cory-johannsen/lurefish/internal/observability"
	"github.com/cory-johannsen/lurefish/internal/savegame"
	"github.com/cory-johannsen/lurefish/internal/scripting"
	"github.com/cory-johannsen/lurefish/internal/server"
	"github.com/cory-johannsen/lurefish/internal/storage/backend"
)

// finalSaveTimeout bounds the save performed on shutdown.
const finalSaveTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "configs/lurefish.yaml", "path to configuration file")
	color := flag.Bool("color", true, "use ANSI colors in the console")
	flag.Parse()

	if err := run(*configPath, *color); err != nil {
		os.Exit(1)
	}
}

// run wires the game and blocks until shutdown. Startup misconfiguration is fatal.
func run(configPath string, color bool) error {
	start := time.Now()
	ctx := context.Background()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	cat := catalog.Default()
	if cfg.Game.CatalogPath != "" {
		cat, err = catalog.Load(cfg.Game.CatalogPath)
		if err != nil {
			logger.Fatal("loading catalog", zap.String("path", cfg.Game.CatalogPath), zap.Error(err))
		}
	}
	logger.Info("catalog loaded",
		zap.Int("fish", len(cat.AllFish())),
		zap.Int("scenes", len(cat.Scenes())),
	)

	params := fishing.DefaultParams()
	if err := params.ApplyOverrides(cfg.Game.Params); err != nil {
		logger.Fatal("applying fishing params", zap.Error(err))
	}

	roller := dice.NewLoggedRoller(dice.NewSource(cfg.Game.Seed), logger)

	opts := gameserver.Options{
		Catalog: cat,
		Params:  params,
		Timings: gameserver.TimingsFromConfig(cfg.Game),
		Roller:  roller,
		Logger:  logger.Named("game"),
	}
	if cfg.Game.ScriptDir != "" {
		scripts := scripting.NewManager(roller, logger.Named("scripting"))
		if err := scripts.LoadDir(cfg.Game.ScriptDir, cfg.Game.ScriptInstructionLimit); err != nil {
			logger.Fatal("loading scripts", zap.Error(err))
		}
		defer scripts.Close()
		opts.Scripts = scripts
	}
	game := gameserver.New(opts)

	store, err := backend.Open(ctx, cfg.Storage, logger)
	if err != nil {
		logger.Fatal("opening storage", zap.Error(err))
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("closing storage", zap.Error(err))
		}
	}()

	saves := savegame.New(store, cat, logger.Named("savegame"))
	persister := savegame.NewPersister(saves, game, savegame.DelaysFromConfig(cfg.Game.Debounce), logger.Named("persister"))

	persister.Restore(ctx)

	lc := server.NewLifecycle(logger)
	lc.StopTimeout = finalSaveTimeout + 5*time.Second
	lc.Add("persister", server.NewBackground(func() error {
		persister.Start(cfg.Game.AutoSaveInterval)
		return nil
	}, func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), finalSaveTimeout)
		defer cancel()
		if err := persister.Stop(stopCtx); err != nil {
			logger.Error("final save failed", zap.Error(err))
		}
	}))
	lc.Add("game", server.NewBackground(func() error {
		game.Start()
		return nil
	}, game.Stop))

	if cfg.Frontend.WSAddr != "" {
		wsServer := ws.NewServer(cfg.Frontend.WSAddr, game, logger.Named("ws"))
		lc.Add("websocket", wsServer)
	}

	if cfg.Frontend.Telnet.Enabled {
		handler := telnet.NewConsoleHandler(game, persister, saves.Manager(), logger.Named("telnet"))
		acc := telnet.NewAcceptor(cfg.Frontend.Telnet, handler, logger.Named("telnet"))
		lc.Add("telnet", &server.FuncService{
			StartFn: acc.ListenAndServe,
			StopFn:  acc.Stop,
		})
	}

	if cfg.Frontend.Console {
		con := console.New(game, persister, saves.Manager(), console.Options{
			In:     os.Stdin,
			Out:    os.Stdout,
			Color:  color,
			Prompt: "> ",
		}, logger.Named("console"))
		conCtx, cancelConsole := context.WithCancel(ctx)
		lc.Add("console", &server.FuncService{
			StartFn: func() error {
				if err := con.Run(conCtx); err != nil && !errors.Is(err, context.Canceled) {
					return err
				}
				return nil
			},
			StopFn: cancelConsole,
		})
	}

	logger.Info("lurefish ready",
		zap.String("storage", cfg.Storage.Backend),
		zap.Bool("console", cfg.Frontend.Console),
		zap.String("ws_addr", cfg.Frontend.WSAddr),
		zap.Bool("telnet", cfg.Frontend.Telnet.Enabled),
		zap.Duration("startup", time.Since(start)),
	)

	if err := lc.Run(ctx); err != nil {
		logger.Error("lurefish exited with error", zap.Error(err))
		return err
	}
	return nil
}
