package internal

// Message is the envelope for every event exchanged over a connection.
type Message[T any] struct {
	Type string `json:"type"`
	Data T      `json:"data"`
}

// Inbound event types.
const (
	EventJoinRoom      = "join_room"
	EventStartGame     = "start_game"
	EventDrawingUpdate = "drawing_update"
	EventSendChat      = "send_chat_message"
)

// Outbound event types.
const (
	EventJoinAck          = "join_ack"
	EventUpdateGame       = "update_game"
	EventNewRound         = "new_round"
	EventNewKeyword       = "new_keyword"
	EventEndRound         = "end_round"
	EventChatMessage      = "new_chat_message"
	EventUpdateGuessed    = "update_guessed"
	EventDrawingBroadcast = "drawing_data_broadcast"
	EventGameStarted      = "game_started"
	EventGameEnded        = "game_ended"
)

type JoinRoomData struct {
	RoomID     string `json:"roomId"`
	Token      string `json:"token,omitempty"`
	AccessCode string `json:"accessCode,omitempty"`
	GuestName  string `json:"guestName,omitempty"`
	GuestID    string `json:"guestId,omitempty"`
}

type StartGameData struct {
	RoomID string `json:"roomId"`
}

type DrawingUpdateData struct {
	RoomID string   `json:"roomId"`
	Paths  []Stroke `json:"paths"`
}

type SendChatData struct {
	RoomID string `json:"roomId"`
	Text   string `json:"text"`
}

// GameStateData is the public session snapshot. It never carries the
// keyword; the drawer gets that on a private new_keyword event only.
type GameStateData struct {
	RoomID       string        `json:"room_id"`
	Players      []RosterEntry `json:"players"`
	DrawerID     string        `json:"drawer_id,omitempty"`
	DrawingPaths []Stroke      `json:"drawing_paths"`
	CurrentRound int           `json:"current_round"`
	MaxRounds    int           `json:"max_rounds,omitempty"`
	RoundEndTime int64         `json:"round_end_time_ms,omitempty"`
	GameStatus   GameStatus    `json:"game_status"`
}

type JoinAckData struct {
	Success bool           `json:"success"`
	Message string         `json:"message,omitempty"`
	Game    *GameStateData `json:"game,omitempty"`
}

type StartAckData struct {
	Success    bool       `json:"success"`
	Message    string     `json:"message,omitempty"`
	GameStatus GameStatus `json:"gameStatus,omitempty"`
}

type UpdateGameData struct {
	Players      []RosterEntry `json:"players"`
	DrawerID     string        `json:"drawer_id,omitempty"`
	DrawingPaths []Stroke      `json:"drawing_paths"`
}

type NewRoundData struct {
	DrawingPaths []Stroke   `json:"drawing_paths"`
	CurrentRound int        `json:"current_round"`
	MaxRounds    int        `json:"max_rounds,omitempty"`
	DrawerID     string     `json:"drawer_id,omitempty"`
	RoundEndTime int64      `json:"round_end_time_ms"`
	GameStatus   GameStatus `json:"game_status"`
}

type NewKeywordData struct {
	Keyword string `json:"keyword"`
}

type EndRoundData struct {
	GameStatus GameStatus `json:"gameStatus"`
}

type ChatMessageData struct {
	User      string `json:"user"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
	Type      string `json:"type,omitempty"`
}

// ChatTypeSystem marks server-generated notices.
const ChatTypeSystem = "system"

type DrawingBroadcastData struct {
	Paths []Stroke `json:"paths"`
}

type GameStats struct {
	RoundsPlayed   int `json:"rounds_played"`
	CorrectGuesses int `json:"correct_guesses"`
}

type GameEndedData struct {
	Winner    *RosterEntry   `json:"winner,omitempty"`
	Scores    map[string]int `json:"scores"`
	GameStats GameStats      `json:"gameStats"`
}
