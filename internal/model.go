package internal

import (
	"context"
	"sync"
	"time"
)

const (
	MinPlayersPerRoom = 2

	// Delay between a round ending and the next one starting, so
	// clients can display the revealed keyword.
	BetweenRoundsDelay = 3 * time.Second

	MinRoundDuration = 10 * time.Second
	MaxRoundDuration = 600 * time.Second

	RoomIDLength      = 6
	MaxRoomIDAttempts = 16
)

type GameStatus string

const (
	StatusWaiting       GameStatus = "waiting"
	StatusPlaying       GameStatus = "playing"
	StatusBetweenRounds GameStatus = "betweenRounds"
	StatusEnded         GameStatus = "ended"
)

type GameMode string

const (
	ModeRounds GameMode = "rounds"
	ModePoints GameMode = "points"
)

type DrawerChoice string

const (
	DrawerRandom DrawerChoice = "random"
	DrawerQueue  DrawerChoice = "queue"
	DrawerWinner DrawerChoice = "winner"
)

// RoundEndReason is carried on end_round broadcasts.
type RoundEndReason string

const (
	ReasonTimer      RoundEndReason = "timer"
	ReasonAllGuessed RoundEndReason = "all_guessed"
)

// RoomSettings is the immutable configuration snapshot taken at room
// creation. AccessCode empty means the room is public.
type RoomSettings struct {
	MaxPlayers           int          `json:"max_players"`
	AccessCode           string       `json:"-"`
	GameMode             GameMode     `json:"game_mode"`
	MaxRounds            int          `json:"max_rounds"`
	PointsToWin          int          `json:"points_to_win"`
	RoundDurationSeconds int          `json:"round_duration_seconds"`
	DrawerChoice         DrawerChoice `json:"drawer_choice"`
}

func (s RoomSettings) RoundDuration() time.Duration {
	return time.Duration(s.RoundDurationSeconds) * time.Second
}

func (s RoomSettings) Validate() error {
	if s.MaxPlayers < MinPlayersPerRoom {
		return ErrInvalidSettings
	}
	d := s.RoundDuration()
	if d < MinRoundDuration || d > MaxRoundDuration {
		return ErrInvalidSettings
	}
	switch s.GameMode {
	case ModeRounds:
		if s.MaxRounds < 1 {
			return ErrInvalidSettings
		}
	case ModePoints:
		if s.PointsToWin < 1 {
			return ErrInvalidSettings
		}
	default:
		return ErrInvalidSettings
	}
	switch s.DrawerChoice {
	case DrawerRandom, DrawerQueue, DrawerWinner:
	default:
		return ErrInvalidSettings
	}
	return nil
}

type IdentityKind string

const (
	IdentityAccount IdentityKind = "acct"
	IdentityGuest   IdentityKind = "guest"
)

// Identity is the normalized scoring identity: authenticated players
// are keyed by account id, guests by a generated id scoped to the
// client. Every score/guess map in a session is keyed by Key().
type Identity struct {
	Kind  IdentityKind `json:"kind"`
	Value string       `json:"value"`
}

func AccountIdentity(accountID string) Identity {
	return Identity{Kind: IdentityAccount, Value: accountID}
}

func GuestIdentity(guestID string) Identity {
	return Identity{Kind: IdentityGuest, Value: guestID}
}

func (id Identity) Key() string {
	return string(id.Kind) + ":" + id.Value
}

func (id Identity) IsZero() bool {
	return id.Value == ""
}

// Conn is the per-connection event channel the gateway hands to a
// session. *websocket.Conn satisfies it; tests substitute recorders.
type Conn interface {
	WriteJSON(v any) error
	Close() error
}

type Player struct {
	// ConnID is ephemeral and changes on reconnect.
	ConnID      string   `json:"conn_id"`
	DisplayName string   `json:"display_name"`
	Identity    Identity `json:"identity"`

	Conn Conn       `json:"-"`
	WMu  sync.Mutex `json:"-"`
}

// Key returns the player's normalized scoring identity key.
func (p *Player) Key() string {
	return p.Identity.Key()
}

// SafeWriteJSON serializes writes on a single connection.
func (p *Player) SafeWriteJSON(v any) error {
	p.WMu.Lock()
	defer p.WMu.Unlock()
	if p.Conn == nil {
		return ErrConnClosed
	}
	return p.Conn.WriteJSON(v)
}

// RosterEntry is the public view of a player sent to clients.
type RosterEntry struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// RoundRecord is the per-round history entry. The keyword is kept out
// of JSON so a record can never leak it through a broadcast.
type RoundRecord struct {
	DrawerID       string            `json:"drawer_id"`
	Keyword        string            `json:"-"`
	CorrectGuesses []string          `json:"correct_guesses"`
	AllGuesses     map[string]string `json:"-"`
}

// RoundTimer is the explicit per-session timer handle. Generation ties
// an expiry callback to the round that armed it; timer-driven
// transitions re-validate state instead of trusting the callback's
// captured view.
type RoundTimer struct {
	StartTime  time.Time
	Duration   time.Duration
	IsActive   bool
	Generation uint64
	Context    context.Context
	Cancel     context.CancelFunc
}

// Response is the HTTP envelope with request timing attached.
type Response struct {
	StatusCode    int   `json:"status_code"`
	RespStartTime int64 `json:"resp_time_start_ms"`
	RespEndTime   int64 `json:"resp_time_end_ms"`
	NetRespTime   int64 `json:"net_resp_time_ms"`
	Data          any   `json:"data"`
}

// Session is the authoritative in-memory state for one active room.
// All fields are guarded by Mu; every gateway-invoked operation runs
// as one critical section per session.
type Session struct {
	RoomID    string `json:"room_id"`
	OwnerID   string `json:"owner_id"`
	OwnerName string `json:"owner_name"`

	Settings RoomSettings `json:"settings"`

	// Players is join-ordered; the queue strategy depends on it.
	Players []*Player      `json:"players"`
	Scores  map[string]int `json:"scores"`

	CurrentRound int    `json:"current_round"`
	DrawerID     string `json:"drawer_id,omitempty"`
	Keyword      string `json:"-"`

	DrawingPaths []Stroke             `json:"drawing_paths"`
	RoundHistory map[int]*RoundRecord `json:"-"`

	RoundEndTime time.Time  `json:"round_end_time"`
	GameStatus   GameStatus `json:"game_status"`

	// DrawerQueue holds identity keys awaiting a drawing turn
	// (queue strategy only). Dequeued at each round start.
	DrawerQueue []string `json:"-"`

	Timer    *RoundTimer `json:"-"`
	TimerGen uint64      `json:"-"`
	Mu       sync.Mutex  `json:"-"`
}
