package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"slices"
	"time"

	"vk-compliment-bot/internal/config"
	"vk-compliment-bot/internal/storage"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"
)

// Commands the bot_state schema needs. Anything else goes through the goose CLI.
var commands = []string{"up", "down", "status", "version", "reset"}

var errUnknownCommand = errors.New("unknown command")

var (
	flags = flag.NewFlagSet("migrator", flag.ExitOnError)
	dir   = flags.String("dir", "migrations", "directory with migration files")
)

func main() {
	flags.Usage = usage
	flags.Parse(os.Args[1:])

	command, err := parseCommand(flags.Args())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		flags.Usage()
		os.Exit(1)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Failed to load .env: %v\n", err)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := storage.Connect(ctx, cfg.Storage.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	sqlDB := stdlib.OpenDBFromPool(db.Pool)
	defer sqlDB.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set dialect: %v\n", err)
		os.Exit(1)
	}
	goose.SetTableName("schema_migrations")

	if err := goose.RunContext(ctx, command, sqlDB, *dir); err != nil {
		fmt.Fprintf(os.Stderr, "Migration %s failed: %v\n", command, err)
		os.Exit(1)
	}
}

func parseCommand(args []string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("expected exactly one command, got %d", len(args))
	}
	if !slices.Contains(commands, args[0]) {
		return "", fmt.Errorf("%w: %s", errUnknownCommand, args[0])
	}
	return args[0], nil
}

func usage() {
	fmt.Fprint(os.Stderr, `Usage: migrator [-dir DIR] COMMAND

Applies the bot_state schema for STATE_BACKEND=postgres.
Connection settings come from CONFIG_PATH, .env or DB_HOST, DB_PORT, DB_USER, DB_PASSWORD, DB_NAME.

Options:
`)
	flags.PrintDefaults()
	fmt.Fprint(os.Stderr, `
Commands:
    up        Apply all pending migrations
    down      Roll back the latest migration
    status    Print the migration status
    version   Print the current schema version
    reset     Roll back all migrations
`)
}
