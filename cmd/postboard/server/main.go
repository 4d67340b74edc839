package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/astromechza/postboard/pkg/backend"
)

func main() {
	if err := mainInner(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

func mainInner() error {
	addrVar := flag.String("addr", "localhost:8080", "the address to listen on")
	storageVar := flag.String("storage", "memory", "where posts live: memory, sqlite or postgres")
	sqlitePathVar := flag.String("sqlite-path", "posts.sqlite3", "database file for -storage=sqlite")
	dsnVar := flag.String("dsn", os.Getenv("DATABASE_URL"), "connection string for -storage=postgres, defaults to $DATABASE_URL")
	discardVar := flag.Bool("discard-writes", false, "acknowledge writes without keeping them, like the public demo service")
	seedVar := flag.Int("seed", 100, "number of sample posts to create when the storage is empty")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	slog.Info("Opening storage", "kind", *storageVar)
	storage, err := openStorage(ctx, *storageVar, *sqlitePathVar, *dsnVar)
	if err != nil {
		return err
	}
	defer storage.Close()

	if err := backend.Seed(ctx, storage, *seedVar); err != nil {
		return err
	}
	if *discardVar {
		slog.Info("writes will be acknowledged but not stored")
		storage = backend.DiscardWrites(storage)
	}

	hub := backend.NewHub(slog.Default())
	httpServer := &http.Server{
		Addr:              *addrVar,
		Handler:           backend.NewHandler(storage, hub, slog.Default()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	wg := new(sync.WaitGroup)
	wg.Add(1)
	go func() {
		defer wg.Done()
		slog.Info("listening", "addr", *addrVar)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server listen failed", "err", err)
		}
	}()

	exit := make(chan os.Signal, 1) // we need to reserve to buffer size 1, so the notifier are not blocked
	signal.Notify(exit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-exit
	slog.Info("Signal caught", "sig", sig)
	cancel()
	_ = httpServer.Close()

	wg.Wait()
	return nil
}

func openStorage(ctx context.Context, kind, sqlitePath, dsn string) (backend.Storage, error) {
	switch kind {
	case "memory":
		return backend.NewMemoryStorage(), nil
	case "sqlite":
		return backend.NewSQLiteStorage(ctx, sqlitePath)
	case "postgres":
		if dsn == "" {
			return nil, fmt.Errorf("-dsn or DATABASE_URL is required for postgres storage")
		}
		return backend.NewPostgresStorage(ctx, dsn)
	default:
		return nil, fmt.Errorf("unknown storage %q", kind)
	}
}
