package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/m4dzi4/pict-io-sub000/internal/auth"
	"github.com/m4dzi4/pict-io-sub000/internal/game"
	"github.com/m4dzi4/pict-io-sub000/internal/server"
	"github.com/m4dzi4/pict-io-sub000/internal/store"
	"github.com/m4dzi4/pict-io-sub000/internal/words"
)

func main() {
	cfg := server.LoadConfig()
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	pg, err := store.NewPostgres(ctx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("connecting to postgres: %v", err)
	}
	defer pg.Close()

	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
	err = pg.EnsureSchema(ctx)
	cancel()
	if err != nil {
		log.Fatalf("ensuring schema: %v", err)
	}

	catalog := words.Default()
	if cfg.WordsCSV != "" {
		list, err := words.LoadCSV(cfg.WordsCSV)
		if err != nil {
			log.Fatalf("loading words from %s: %v", cfg.WordsCSV, err)
		}
		catalog = words.NewCatalog(list)
	}
	keywords := words.NewStoreSource(pg, catalog)

	tokens := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)
	accounts := auth.NewService(pg, auth.NewArgon2idHasher(), tokens)

	registry := game.NewRegistry(pg)
	service := game.NewService(keywords, pg)
	gateway := game.NewGateway(registry, service, accounts)

	srv := server.NewServer(cfg.Port, registry, gateway, accounts, pg)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server: %v", err)
		}
	}()

	<-rootCtx.Done()
	log.Println("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}
