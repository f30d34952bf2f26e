// Package main is the schema migration CLI.
//
// Usage:
//
//	migrate [-database-url URL] up|down|status
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/devconnect/devconnect/internal/migrations"
)

func main() {
	databaseURL := flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection URL")
	timeout := flag.Duration("timeout", time.Minute, "overall timeout")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] up|down|status\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if flag.NArg() != 1 || *databaseURL == "" {
		flag.Usage()
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := run(ctx, flag.Arg(0), *databaseURL, logger); err != nil {
		logger.Error("migration failed", "command", flag.Arg(0), "error", err)
		cancel()
		os.Exit(1)
	}
}

func run(ctx context.Context, command, databaseURL string, logger *slog.Logger) error {
	db, err := migrations.Open(databaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	switch command {
	case "up":
		if err := migrations.Up(ctx, db); err != nil {
			return err
		}
	case "down":
		if err := migrations.Down(ctx, db); err != nil {
			return err
		}
	case "status":
	default:
		return fmt.Errorf("unknown command %q", command)
	}

	version, err := migrations.Version(ctx, db)
	if err != nil {
		return err
	}
	logger.Info("schema version", "command", command, "version", version)
	return nil
}
