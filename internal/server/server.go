package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/m4dzi4/pict-io-sub000/internal"
	"github.com/m4dzi4/pict-io-sub000/internal/game"
)

// AuthService is the account surface the HTTP handlers need.
type AuthService interface {
	Register(ctx context.Context, username, password string) (string, error)
	Login(ctx context.Context, username, password string) (string, error)
	Verify(token string) (accountID, username string, err error)
}

// StatsStore serves the read-only aggregates built from persisted
// game results.
type StatsStore interface {
	Leaderboard(ctx context.Context, limit int) ([]internal.LeaderboardEntry, error)
	UserStats(ctx context.Context, accountID string) (internal.UserStats, error)
}

type Server struct {
	port int

	registry *game.Registry
	gateway  *game.Gateway
	auth     AuthService
	stats    StatsStore
}

func NewServer(port int, registry *game.Registry, gateway *game.Gateway, auth AuthService, stats StatsStore) *http.Server {
	s := &Server{
		port:     port,
		registry: registry,
		gateway:  gateway,
		auth:     auth,
		stats:    stats,
	}

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}
