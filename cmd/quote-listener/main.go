package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"rfpdesk/internal/config"
	"rfpdesk/internal/listener"
	"rfpdesk/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	svc, err := listener.NewService(ctx, db, cfg)
	must(err)

	must(svc.Run(ctx))
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
