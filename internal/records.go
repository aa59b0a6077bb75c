package internal

import "time"

// Durable-store records. The store is an external collaborator; these
// rows never drive live gameplay.

type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
}

type RoomRecord struct {
	RoomID     string    `json:"room_id"`
	OwnerID    string    `json:"owner_id"`
	MaxPlayers int       `json:"max_players"`
	GameMode   GameMode  `json:"game_mode"`
	Private    bool      `json:"private"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

// GameStatRecord is one player's line of an end-of-game summary.
type GameStatRecord struct {
	RoomID       string `json:"room_id"`
	IdentityKey  string `json:"identity_key"`
	Name         string `json:"name"`
	Score        int    `json:"score"`
	Won          bool   `json:"won"`
	RoundsPlayed int    `json:"rounds_played"`
}

type LeaderboardEntry struct {
	IdentityKey string `json:"identity_key"`
	Name        string `json:"name"`
	TotalScore  int    `json:"total_score"`
	GamesPlayed int    `json:"games_played"`
	GamesWon    int    `json:"games_won"`
}

type UserStats struct {
	IdentityKey  string `json:"identity_key"`
	GamesPlayed  int    `json:"games_played"`
	GamesWon     int    `json:"games_won"`
	TotalScore   int    `json:"total_score"`
	RoundsPlayed int    `json:"rounds_played"`
}
