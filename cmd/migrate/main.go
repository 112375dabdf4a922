// Command migrate upgrades a quimo.db file created by older versions.
//
//	migrate [-db path] add-columns|rebuild-produccion|all
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/quimo/inventario/internal/config"
	"github.com/quimo/inventario/internal/repository/sqlite"
	"github.com/quimo/inventario/pkg/logger"
)

const usage = `usage: migrate [-db path] <command>

commands:
  add-columns         add costo and area to produccion
  rebuild-produccion  recreate produccion with UNIQUE(fecha, producto_id)
  all                 run both steps
`

func main() {
	defaultPath := "quimo.db"
	if cfg, err := config.Load(""); err == nil {
		defaultPath = cfg.Database.Path
	}

	fs := flag.NewFlagSet("migrate", flag.ExitOnError)
	dbPath := fs.String("db", defaultPath, "path to the SQLite database")
	verbose := fs.Bool("v", false, "log debug output to stderr")
	fs.Usage = func() { fmt.Fprint(fs.Output(), usage); fs.PrintDefaults() }
	_ = fs.Parse(os.Args[1:])

	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, *dbPath, fs.Arg(0), *verbose); err != nil {
		fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, path, command string, verbose bool) error {
	level := "warn"
	if verbose {
		level = "debug"
	}
	log, err := logger.New(level)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("database %s: %w", path, err)
	}

	repo, err := sqlite.Open(ctx, path, log.Named("repo.sqlite"))
	if err != nil {
		return err
	}
	defer repo.Close()

	progress := func(format string, args ...interface{}) {
		fmt.Fprintf(os.Stdout, format+"\n", args...)
	}
	m := sqlite.NewMigrator(repo, progress)

	switch command {
	case "add-columns":
		return m.AddProductionColumns(ctx)
	case "rebuild-produccion":
		_, err := m.RebuildProductionTable(ctx)
		return err
	case "all":
		if err := m.AddProductionColumns(ctx); err != nil {
			return err
		}
		_, err := m.RebuildProductionTable(ctx)
		return err
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}
