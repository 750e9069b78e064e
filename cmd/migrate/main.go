// Command migrate applies or inspects the database schema outside the API
// server.
//
//	migrate [-dir path] up|down|status|version|redo
//
// Without -dir the migrations embedded in the binary are used.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	_ "github.com/lib/pq"
	"github.com/mantavyam/jacob-web/internal/config"
	"github.com/mantavyam/jacob-web/migrations"
	"github.com/pressly/goose/v3"
)

var commands = map[string]bool{
	"up":      true,
	"down":    true,
	"status":  true,
	"version": true,
	"redo":    true,
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	dir := flag.String("dir", "", "read migrations from this directory instead of the embedded set")
	timeout := flag.Duration("timeout", 2*time.Minute, "abort after this long")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: migrate [-dir path] [-timeout d] up|down|status|version|redo\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 || !commands[flag.Arg(0)] {
		flag.Usage()
		os.Exit(2)
	}
	command := flag.Arg(0)

	dbConfig, err := config.LoadDatabase()
	if err != nil {
		logger.Error("failed to load database configuration", slog.Any("error", err))
		os.Exit(1)
	}

	db, err := sql.Open("postgres", dbConfig.DSN())
	if err != nil {
		logger.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	migrationsDir := "."
	if *dir != "" {
		goose.SetBaseFS(os.DirFS(*dir))
	} else {
		goose.SetBaseFS(migrations.FS)
	}

	if err := goose.SetDialect("postgres"); err != nil {
		logger.Error("failed to set dialect", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		logger.Error("failed to reach database", slog.Any("error", err))
		os.Exit(1)
	}

	if err := goose.RunContext(ctx, command, db, migrationsDir); err != nil {
		logger.Error("migration command failed", slog.String("command", command), slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("migration command finished", slog.String("command", command))
}
