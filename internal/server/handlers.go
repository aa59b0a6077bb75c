package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/m4dzi4/pict-io-sub000/internal"
)

// respond wraps payloads in the timing envelope every endpoint uses.
func respond(w http.ResponseWriter, startTime int64, statusCode int, data any) {
	endTime := time.Now().UnixMilli()
	resp := internal.Response{
		StatusCode:    statusCode,
		RespStartTime: startTime,
		RespEndTime:   endTime,
		NetRespTime:   endTime - startTime,
		Data:          data,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// errStatus maps the sentinel error taxonomy onto HTTP status codes.
func errStatus(err error) int {
	switch {
	case errors.Is(err, internal.ErrInvalidSettings),
		errors.Is(err, internal.ErrInvalidUsername),
		errors.Is(err, internal.ErrWeakPassword):
		return http.StatusBadRequest
	case errors.Is(err, internal.ErrBadCredentials),
		errors.Is(err, internal.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, internal.ErrInvalidAccessCode):
		return http.StatusForbidden
	case errors.Is(err, internal.ErrRoomNotFound),
		errors.Is(err, internal.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, internal.ErrRoomFull),
		errors.Is(err, internal.ErrDuplicateUsername),
		errors.Is(err, internal.ErrDuplicateRoomID):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	respond(w, time.Now().UnixMilli(), http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// ACCOUNTS
// =============================================================================

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

func (s *Server) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now().UnixMilli()

	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, startTime, http.StatusBadRequest, "invalid request body")
		return
	}

	token, err := s.auth.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		log.Printf("[RegisterHandler] user=%s: %v", req.Username, err)
		respond(w, startTime, errStatus(err), err.Error())
		return
	}

	respond(w, startTime, http.StatusCreated, tokenResponse{Token: token})
}

func (s *Server) LoginHandler(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now().UnixMilli()

	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, startTime, http.StatusBadRequest, "invalid request body")
		return
	}

	token, err := s.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		log.Printf("[LoginHandler] user=%s: %v", req.Username, err)
		respond(w, startTime, errStatus(err), err.Error())
		return
	}

	respond(w, startTime, http.StatusOK, tokenResponse{Token: token})
}

// bearerToken extracts the token from an Authorization header, empty
// when absent.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return token
	}
	return ""
}

// =============================================================================
// ROOMS
// =============================================================================

type createRoomRequest struct {
	MaxPlayers           int                   `json:"max_players"`
	AccessCode           string                `json:"access_code"`
	GameMode             internal.GameMode     `json:"game_mode"`
	MaxRounds            int                   `json:"max_rounds"`
	PointsToWin          int                   `json:"points_to_win"`
	RoundDurationSeconds int                   `json:"round_duration_seconds"`
	DrawerChoice         internal.DrawerChoice `json:"drawer_choice"`

	// Guest hosts identify themselves here; authenticated hosts use
	// the Authorization header instead.
	GuestName string `json:"guest_name"`
	GuestID   string `json:"guest_id"`
}

type createRoomResponse struct {
	RoomID  string `json:"room_id"`
	GuestID string `json:"guest_id,omitempty"`
}

func (s *Server) CreateRoomHandler(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now().UnixMilli()

	var req createRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, startTime, http.StatusBadRequest, "invalid request body")
		return
	}

	var (
		owner     internal.Identity
		ownerName string
		guestID   string
	)
	if token := bearerToken(r); token != "" {
		accountID, username, err := s.auth.Verify(token)
		if err != nil {
			respond(w, startTime, errStatus(err), err.Error())
			return
		}
		owner = internal.AccountIdentity(accountID)
		ownerName = username
	} else {
		guestID = req.GuestID
		if guestID == "" {
			guestID = uuid.NewString()
		}
		owner = internal.GuestIdentity(guestID)
		ownerName = req.GuestName
		if ownerName == "" {
			ownerName = "Anonymous"
		}
	}

	settings := internal.RoomSettings{
		MaxPlayers:           req.MaxPlayers,
		AccessCode:           req.AccessCode,
		GameMode:             req.GameMode,
		MaxRounds:            req.MaxRounds,
		PointsToWin:          req.PointsToWin,
		RoundDurationSeconds: req.RoundDurationSeconds,
		DrawerChoice:         req.DrawerChoice,
	}

	roomID, err := s.registry.CreateRoom(r.Context(), settings, owner, ownerName)
	if err != nil {
		log.Printf("[CreateRoomHandler] owner=%s: %v", owner.Key(), err)
		respond(w, startTime, errStatus(err), err.Error())
		return
	}

	respond(w, startTime, http.StatusCreated, createRoomResponse{RoomID: roomID, GuestID: guestID})
}

type validateRoomRequest struct {
	RoomID     string `json:"room_id"`
	AccessCode string `json:"access_code"`
}

// ValidateRoomHandler lets a client check a room id and access code
// pair before opening the websocket.
func (s *Server) ValidateRoomHandler(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now().UnixMilli()

	var req validateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, startTime, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.registry.ValidateAccess(req.RoomID, req.AccessCode); err != nil {
		respond(w, startTime, errStatus(err), err.Error())
		return
	}

	respond(w, startTime, http.StatusOK, map[string]bool{"valid": true})
}

func (s *Server) ListRoomsHandler(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now().UnixMilli()
	respond(w, startTime, http.StatusOK, s.registry.ActiveRooms())
}

// =============================================================================
// STATS
// =============================================================================

const (
	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 100
)

func (s *Server) LeaderboardHandler(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now().UnixMilli()

	limit := defaultLeaderboardLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			respond(w, startTime, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = min(parsed, maxLeaderboardLimit)
	}

	entries, err := s.stats.Leaderboard(r.Context(), limit)
	if err != nil {
		log.Printf("[LeaderboardHandler] %v", err)
		respond(w, startTime, errStatus(err), "failed to load leaderboard")
		return
	}

	respond(w, startTime, http.StatusOK, entries)
}

func (s *Server) UserStatsHandler(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now().UnixMilli()

	accountID := mux.Vars(r)["id"]
	stats, err := s.stats.UserStats(r.Context(), accountID)
	if err != nil {
		log.Printf("[UserStatsHandler] user=%s: %v", accountID, err)
		respond(w, startTime, errStatus(err), "failed to load stats")
		return
	}

	respond(w, startTime, http.StatusOK, stats)
}
