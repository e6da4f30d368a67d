// cmd/auth-service/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storesight/internal/auth"
	"storesight/pkg/accounts"
	"storesight/pkg/commerce"
	"storesight/pkg/config"
	"storesight/pkg/db"
	"storesight/pkg/logger"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env)

	if cfg.TokenSecret == "" {
		log.Fatalw("TOKEN_SECRET not set, refusing to start")
	}

	pool := db.MustConnect(cfg, log)
	rdb := db.MustRedis(cfg, log)

	var store accounts.Store
	var data commerce.Store
	if pool != nil {
		if err := accounts.EnsureSchema(context.Background(), pool); err != nil {
			log.Fatalw("accounts schema", "err", err)
		}
		if err := commerce.EnsureSchema(context.Background(), pool); err != nil {
			log.Fatalw("commerce schema", "err", err)
		}
		store = accounts.NewPostgresStore(pool, log)
		data = commerce.NewPostgresStore(pool, log)
	} else {
		store = accounts.NewMemoryStore()
		data = commerce.NewMemoryStore()
	}
	data = commerce.NewCachedStore(data, rdb, 30*time.Second)

	// Seed stands in for the webhook ingestion pipeline in dev: tenants may
	// exist (with data) before anyone registers credentials for them.
	if cfg.SeedFile != "" {
		if err := accounts.SeedFromFile(context.Background(), store, cfg.SeedFile, log); err != nil {
			log.Warnw("seed tenants", "err", err)
		}
		if err := commerce.SeedFromFile(context.Background(), data, store, cfg.SeedFile, log); err != nil {
			log.Warnw("seed data", "err", err)
		}
	}

	app, err := auth.New(log, cfg, store, data)
	if err != nil {
		log.Fatalw("app init", "err", err)
	}

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: app.Handler()}
	go func() {
		log.Infow("auth-service listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("ListenAndServe", "err", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	fmt.Println("auth-service stopped")
}
