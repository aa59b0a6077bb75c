package store

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/m4dzi4/pict-io-sub000/internal"
)

//go:embed schema.sql
var schema string

// Postgres is the durable store: users, rooms, the keyword catalog and
// end-of-game stats. Sessions never block on it.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(ctx context.Context, connString string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &Postgres{pool: pool}, nil
}

// EnsureSchema creates missing tables. Statements are idempotent.
func (pg *Postgres) EnsureSchema(ctx context.Context) error {
	_, err := pg.pool.Exec(ctx, schema)
	return err
}

func (pg *Postgres) Close() {
	pg.pool.Close()
}

// =============================================================================
// USERS
// =============================================================================

func (pg *Postgres) CreateUser(ctx context.Context, username, passwordHash string) (string, error) {
	row := pg.pool.QueryRow(ctx,
		"INSERT INTO users(username, password_hash) VALUES($1, $2) RETURNING id",
		username, passwordHash)

	var id string
	if err := row.Scan(&id); err != nil {
		var pgErr *pgconn.PgError
		// "23505" is the PostgreSQL unique_violation code.
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return "", internal.ErrDuplicateUsername
		}
		return "", fmt.Errorf("creating user: %w", err)
	}
	return id, nil
}

func (pg *Postgres) GetUserByUsername(ctx context.Context, username string) (internal.User, error) {
	user := internal.User{Username: username}

	row := pg.pool.QueryRow(ctx,
		"SELECT id, password_hash FROM users WHERE username = $1", username)

	if err := row.Scan(&user.ID, &user.PasswordHash); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return internal.User{}, internal.ErrUserNotFound
		}
		return internal.User{}, fmt.Errorf("fetching user: %w", err)
	}
	return user, nil
}

// =============================================================================
// ROOMS
// =============================================================================

func (pg *Postgres) CreateRoom(ctx context.Context, rec internal.RoomRecord) error {
	_, err := pg.pool.Exec(ctx,
		`INSERT INTO rooms(room_id, owner_id, max_players, game_mode, private, status, created_at)
		 VALUES($1, $2, $3, $4, $5, $6, $7)`,
		rec.RoomID, rec.OwnerID, rec.MaxPlayers, string(rec.GameMode), rec.Private, rec.Status, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting room: %w", err)
	}
	return nil
}

func (pg *Postgres) RoomExists(ctx context.Context, roomID string) (bool, error) {
	row := pg.pool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM rooms WHERE room_id = $1 AND status <> 'inactive')", roomID)

	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, fmt.Errorf("checking room id: %w", err)
	}
	return exists, nil
}

func (pg *Postgres) MarkRoomInactive(ctx context.Context, roomID string) error {
	_, err := pg.pool.Exec(ctx,
		"UPDATE rooms SET status = 'inactive', updated_at = now() WHERE room_id = $1", roomID)
	if err != nil {
		return fmt.Errorf("marking room inactive: %w", err)
	}
	return nil
}

func (pg *Postgres) DeleteRoom(ctx context.Context, roomID string) error {
	_, err := pg.pool.Exec(ctx, "DELETE FROM rooms WHERE room_id = $1", roomID)
	if err != nil {
		return fmt.Errorf("deleting room: %w", err)
	}
	return nil
}

// =============================================================================
// KEYWORD CATALOG
// =============================================================================

func (pg *Postgres) RandomWord(ctx context.Context) (string, error) {
	row := pg.pool.QueryRow(ctx, "SELECT word FROM words ORDER BY RANDOM() LIMIT 1")

	var word string
	if err := row.Scan(&word); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("keyword catalog is empty")
		}
		return "", fmt.Errorf("picking keyword: %w", err)
	}
	return word, nil
}

// =============================================================================
// GAME STATS
// =============================================================================

func (pg *Postgres) SaveGameStats(ctx context.Context, recs []internal.GameStatRecord) error {
	if len(recs) == 0 {
		return nil
	}

	tx, err := pg.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("starting stats tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, rec := range recs {
		if _, err := tx.Exec(ctx,
			`INSERT INTO game_stats(room_id, identity_key, name, score, won, rounds_played)
			 VALUES($1, $2, $3, $4, $5, $6)`,
			rec.RoomID, rec.IdentityKey, rec.Name, rec.Score, rec.Won, rec.RoundsPlayed); err != nil {
			return fmt.Errorf("inserting game stat: %w", err)
		}
	}
	return tx.Commit(ctx)
}

// Leaderboard aggregates authenticated accounts by accumulated score.
func (pg *Postgres) Leaderboard(ctx context.Context, limit int) ([]internal.LeaderboardEntry, error) {
	rows, err := pg.pool.Query(ctx,
		`SELECT identity_key, MAX(name), SUM(score), COUNT(*), COUNT(*) FILTER (WHERE won)
		 FROM game_stats
		 WHERE identity_key LIKE 'acct:%'
		 GROUP BY identity_key
		 ORDER BY SUM(score) DESC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []internal.LeaderboardEntry
	for rows.Next() {
		var e internal.LeaderboardEntry
		if err := rows.Scan(&e.IdentityKey, &e.Name, &e.TotalScore, &e.GamesPlayed, &e.GamesWon); err != nil {
			return nil, fmt.Errorf("scanning leaderboard row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (pg *Postgres) UserStats(ctx context.Context, accountID string) (internal.UserStats, error) {
	key := internal.AccountIdentity(accountID).Key()
	stats := internal.UserStats{IdentityKey: key}

	row := pg.pool.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE won), COALESCE(SUM(score), 0), COALESCE(SUM(rounds_played), 0)
		 FROM game_stats WHERE identity_key = $1`, key)

	if err := row.Scan(&stats.GamesPlayed, &stats.GamesWon, &stats.TotalScore, &stats.RoundsPlayed); err != nil {
		return internal.UserStats{}, fmt.Errorf("querying user stats: %w", err)
	}
	return stats, nil
}
