package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/astromechza/postboard/pkg/console"
	"github.com/astromechza/postboard/pkg/gateway"
	"github.com/astromechza/postboard/pkg/viewstate"
)

func main() {
	if err := mainInner(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

func mainInner() error {
	baseUrlVar := flag.String("base-url", gateway.DefaultBaseURL, "the posts service to talk to")
	debugVar := flag.Bool("debug", false, "log every request")
	flag.Parse()

	level := slog.LevelInfo
	if *debugVar {
		level = slog.LevelDebug
	}
	// the screen owns stdout
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	gw, err := gateway.New(*baseUrlVar, gateway.WithLogger(logger))
	if err != nil {
		return err
	}
	store := viewstate.New(gw, logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	slog.Info("loading posts", "url", *baseUrlVar)
	_ = store.LoadAll(ctx)

	return console.Run(ctx, store, os.Stdin, os.Stdout)
}
