// Package main applies or rolls back the key-value schema used by the postgres
// storage backend.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/cory-johannsen/lurefish/internal/config"
)

var errUsage = errors.New("usage: migrate [-config path] [-migrations dir] <up [N]|down [N]|version|force V>")

// migrator is the subset of *migrate.Migrate the commands drive.
type migrator interface {
	Up() error
	Down() error
	Steps(n int) error
	Version() (uint, bool, error)
	Force(version int) error
}

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/lurefish.yaml", "path to configuration file")
	migrationsDir := flag.String("migrations", "migrations", "directory holding the migration files")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, errUsage)
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if cfg.Storage.Backend != "postgres" {
		log.Printf("storage backend is %q; the schema is only used by postgres", cfg.Storage.Backend)
	}

	m, err := migrate.New("file://"+*migrationsDir, cfg.Storage.Database.DSN())
	if err != nil {
		log.Fatalf("creating migrator: %v", err)
	}
	defer m.Close()

	if err := run(m, flag.Arg(0), flag.Args()[1:], os.Stdout); err != nil {
		log.Fatal(err)
	}
	fmt.Fprintf(os.Stdout, "done in %s\n", time.Since(start).Round(time.Millisecond))
}

// run executes one migration command and reports the resulting schema version.
//
// Postcondition: an already-current schema is not an error.
func run(m migrator, cmd string, args []string, out io.Writer) error {
	n, err := optionalCount(args)
	if err != nil {
		return err
	}

	switch cmd {
	case "up":
		if n > 0 {
			err = m.Steps(n)
		} else {
			err = m.Up()
		}
	case "down":
		if n > 0 {
			err = m.Steps(-n)
		} else {
			err = m.Down()
		}
	case "version":
	case "force":
		if len(args) != 1 {
			return errUsage
		}
		err = m.Force(n)
	default:
		return fmt.Errorf("unknown command %q: %w", cmd, errUsage)
	}

	noChange := errors.Is(err, migrate.ErrNoChange)
	if err != nil && !noChange {
		return fmt.Errorf("%s: %w", cmd, err)
	}

	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		fmt.Fprintln(out, "schema: empty")
		return nil
	case err != nil:
		return fmt.Errorf("reading version: %w", err)
	}
	if noChange {
		fmt.Fprint(out, "no changes; ")
	}
	fmt.Fprintf(out, "schema: version %d", version)
	if dirty {
		fmt.Fprint(out, " (dirty: fix the failed migration, then force a version)")
	}
	fmt.Fprintln(out)
	return nil
}

func optionalCount(args []string) (int, error) {
	switch len(args) {
	case 0:
		return 0, nil
	case 1:
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid count %q: %w", args[0], errUsage)
		}
		return n, nil
	default:
		return 0, errUsage
	}
}
