// Package main provides a CLI tool for inspecting and moving saved games
// without running the game.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/lurefish/internal/config"
	"github.com/cory-johannsen/lurefish/internal/game/catalog"
	"github.com/cory-johannsen/lurefish/internal/observability"
	"github.com/cory-johannsen/lurefish/internal/savegame"
	"github.com/cory-johannsen/lurefish/internal/storage"
	"github.com/cory-johannsen/lurefish/internal/storage/backend"
)

// errUsage reports a malformed command line.
var errUsage = errors.New("usage: savetool [-config path] <export FILE|import FILE|validate|info|reset -confirm>")

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/lurefish.yaml", "path to configuration file")
	confirm := flag.Bool("confirm", false, "required by reset")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, errUsage)
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := backend.Open(ctx, cfg.Storage, logger)
	if err != nil {
		log.Fatalf("opening storage: %v", err)
	}
	defer store.Close()

	saves := savegame.New(store, catalog.Default(), logger)
	err = execute(ctx, saves.Manager(), flag.Args(), *confirm, os.Stdout)
	logger.Info("savetool finished",
		zap.Strings("args", flag.Args()),
		zap.Duration("elapsed", time.Since(start)),
		zap.Error(err),
	)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

// execute runs one savetool command against m.
func execute(ctx context.Context, m *storage.Manager, args []string, confirm bool, out io.Writer) error {
	switch args[0] {
	case "export":
		if len(args) < 2 {
			return errUsage
		}
		doc, err := m.ExportSnapshot(ctx)
		if err != nil {
			return fmt.Errorf("exporting: %w", err)
		}
		if err := os.WriteFile(args[1], doc, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", args[1], err)
		}
		fmt.Fprintf(out, "exported %d bytes to %s\n", len(doc), args[1])
	case "import":
		if len(args) < 2 {
			return errUsage
		}
		doc, err := os.ReadFile(args[1])
		if err != nil {
			return fmt.Errorf("reading %s: %w", args[1], err)
		}
		res, err := m.ImportSnapshot(ctx, doc)
		if err != nil {
			return fmt.Errorf("importing: %w", err)
		}
		fmt.Fprintf(out, "imported %d key(s)\n", len(res.Imported))
		for _, k := range res.Skipped {
			fmt.Fprintf(out, "skipped %s\n", k)
		}
		failed := make([]string, 0, len(res.Failed))
		for k := range res.Failed {
			failed = append(failed, k)
		}
		sort.Strings(failed)
		for _, k := range failed {
			fmt.Fprintf(out, "failed %s: %s\n", k, res.Failed[k])
		}
		if !res.Complete() {
			return fmt.Errorf("import incomplete: %d key(s) failed", len(res.Failed))
		}
	case "validate":
		report := m.Validate(ctx)
		for _, issue := range report.Issues {
			fmt.Fprintln(out, issue)
		}
		if !report.Valid {
			return fmt.Errorf("saved game has %d issue(s)", len(report.Issues))
		}
		fmt.Fprintln(out, "valid")
	case "info":
		info := m.Info(ctx)
		last := "never"
		if !info.LastSave.IsZero() {
			last = info.LastSave.Format(time.RFC3339)
		}
		fmt.Fprintf(out, "last save: %s\nkeys: %d\n", last, info.TotalKeys)
		for _, k := range m.Keys() {
			fmt.Fprintf(out, "%-28s %t\n", k, info.DataExists[k])
		}
	case "reset":
		if !confirm {
			return fmt.Errorf("reset deletes the saved game; pass -confirm: %w", errUsage)
		}
		if err := m.RemoveAll(ctx); err != nil {
			return fmt.Errorf("removing saved game: %w", err)
		}
		fmt.Fprintln(out, "saved game removed")
	default:
		return errUsage
	}
	return nil
}
