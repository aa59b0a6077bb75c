package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m4dzi4/pict-io-sub000/internal"
	"github.com/m4dzi4/pict-io-sub000/internal/game"
)

type fakeAuth struct {
	token      string
	err        error
	verifyID   string
	verifyName string
	verifyErr  error
}

func (a fakeAuth) Register(ctx context.Context, username, password string) (string, error) {
	return a.token, a.err
}

func (a fakeAuth) Login(ctx context.Context, username, password string) (string, error) {
	return a.token, a.err
}

func (a fakeAuth) Verify(token string) (string, string, error) {
	return a.verifyID, a.verifyName, a.verifyErr
}

type fakeStats struct {
	entries []internal.LeaderboardEntry
	stats   internal.UserStats
	err     error
}

func (s fakeStats) Leaderboard(ctx context.Context, limit int) ([]internal.LeaderboardEntry, error) {
	if limit < len(s.entries) {
		return s.entries[:limit], s.err
	}
	return s.entries, s.err
}

func (s fakeStats) UserStats(ctx context.Context, accountID string) (internal.UserStats, error) {
	return s.stats, s.err
}

type nopRoomStore struct{}

func (nopRoomStore) CreateRoom(ctx context.Context, rec internal.RoomRecord) error { return nil }
func (nopRoomStore) RoomExists(ctx context.Context, roomID string) (bool, error)   { return false, nil }
func (nopRoomStore) MarkRoomInactive(ctx context.Context, roomID string) error     { return nil }
func (nopRoomStore) DeleteRoom(ctx context.Context, roomID string) error           { return nil }
func (nopRoomStore) SaveGameStats(ctx context.Context, recs []internal.GameStatRecord) error {
	return nil
}

type staticWords string

func (w staticWords) RandomKeyword() string { return string(w) }

func newTestHandler(t *testing.T, auth AuthService, stats StatsStore) (http.Handler, *game.Registry) {
	t.Helper()
	registry := game.NewRegistry(nopRoomStore{})
	service := game.NewService(staticWords("rocket"), nopRoomStore{})
	gateway := game.NewGateway(registry, service, auth)

	s := &Server{
		port:     0,
		registry: registry,
		gateway:  gateway,
		auth:     auth,
		stats:    stats,
	}
	return s.RegisterRoutes(), registry
}

type envelope struct {
	StatusCode int             `json:"status_code"`
	Data       json.RawMessage `json:"data"`
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any, headers map[string]string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func validCreateRoomBody() map[string]any {
	return map[string]any{
		"max_players":            8,
		"game_mode":              "rounds",
		"max_rounds":             3,
		"round_duration_seconds": 60,
		"drawer_choice":          "random",
		"guest_name":             "host",
	}
}

func TestHealthHandler(t *testing.T) {
	handler, _ := newTestHandler(t, fakeAuth{}, fakeStats{})

	rec, env := doJSON(t, handler, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, http.StatusOK, env.StatusCode)
}

func TestRegisterHandler(t *testing.T) {
	handler, _ := newTestHandler(t, fakeAuth{token: "tok-1"}, fakeStats{})

	rec, env := doJSON(t, handler, http.MethodPost, "/register",
		map[string]string{"username": "alice", "password": "long enough password"}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp tokenResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.Equal(t, "tok-1", resp.Token)
}

func TestRegisterHandlerErrors(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{internal.ErrWeakPassword, http.StatusBadRequest},
		{internal.ErrInvalidUsername, http.StatusBadRequest},
		{internal.ErrDuplicateUsername, http.StatusConflict},
	}
	for _, tc := range cases {
		handler, _ := newTestHandler(t, fakeAuth{err: tc.err}, fakeStats{})
		rec, _ := doJSON(t, handler, http.MethodPost, "/register",
			map[string]string{"username": "alice", "password": "pw"}, nil)
		assert.Equal(t, tc.status, rec.Code, "error %v", tc.err)
	}
}

func TestLoginHandlerBadCredentials(t *testing.T) {
	handler, _ := newTestHandler(t, fakeAuth{err: internal.ErrBadCredentials}, fakeStats{})

	rec, _ := doJSON(t, handler, http.MethodPost, "/login",
		map[string]string{"username": "alice", "password": "wrong"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateRoomAsGuest(t *testing.T) {
	handler, registry := newTestHandler(t, fakeAuth{verifyErr: internal.ErrInvalidToken}, fakeStats{})

	rec, env := doJSON(t, handler, http.MethodPost, "/rooms", validCreateRoomBody(), nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp createRoomResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.NotEmpty(t, resp.GuestID, "guest hosts get an id to reconnect with")

	s, ok := registry.Get(resp.RoomID)
	require.True(t, ok)
	assert.Equal(t, internal.GuestIdentity(resp.GuestID).Key(), s.OwnerID)
}

func TestCreateRoomAuthenticated(t *testing.T) {
	handler, registry := newTestHandler(t, fakeAuth{verifyID: "u-1", verifyName: "alice"}, fakeStats{})

	rec, env := doJSON(t, handler, http.MethodPost, "/rooms", validCreateRoomBody(),
		map[string]string{"Authorization": "Bearer tok-1"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp createRoomResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.Empty(t, resp.GuestID)

	s, ok := registry.Get(resp.RoomID)
	require.True(t, ok)
	assert.Equal(t, internal.AccountIdentity("u-1").Key(), s.OwnerID)
	assert.Equal(t, "alice", s.OwnerName)
}

func TestCreateRoomInvalidSettings(t *testing.T) {
	handler, _ := newTestHandler(t, fakeAuth{verifyErr: internal.ErrInvalidToken}, fakeStats{})

	body := validCreateRoomBody()
	body["max_players"] = 1
	rec, _ := doJSON(t, handler, http.MethodPost, "/rooms", body, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestValidateRoomHandler(t *testing.T) {
	handler, registry := newTestHandler(t, fakeAuth{verifyErr: internal.ErrInvalidToken}, fakeStats{})

	settings := internal.RoomSettings{
		MaxPlayers:           4,
		AccessCode:           "sekrit",
		GameMode:             internal.ModeRounds,
		MaxRounds:            3,
		RoundDurationSeconds: 60,
		DrawerChoice:         internal.DrawerRandom,
	}
	roomID, err := registry.CreateRoom(context.Background(), settings, internal.GuestIdentity("host"), "host")
	require.NoError(t, err)

	rec, _ := doJSON(t, handler, http.MethodPost, "/rooms/validate",
		map[string]string{"room_id": "nosuch"}, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = doJSON(t, handler, http.MethodPost, "/rooms/validate",
		map[string]string{"room_id": roomID, "access_code": "wrong"}, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = doJSON(t, handler, http.MethodPost, "/rooms/validate",
		map[string]string{"room_id": roomID, "access_code": "sekrit"}, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListRoomsHandler(t *testing.T) {
	handler, registry := newTestHandler(t, fakeAuth{verifyErr: internal.ErrInvalidToken}, fakeStats{})

	settings := internal.RoomSettings{
		MaxPlayers:           4,
		GameMode:             internal.ModeRounds,
		MaxRounds:            3,
		RoundDurationSeconds: 60,
		DrawerChoice:         internal.DrawerRandom,
	}
	_, err := registry.CreateRoom(context.Background(), settings, internal.GuestIdentity("host"), "host")
	require.NoError(t, err)

	rec, env := doJSON(t, handler, http.MethodGet, "/rooms", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var rooms []game.RoomSummary
	require.NoError(t, json.Unmarshal(env.Data, &rooms))
	assert.Len(t, rooms, 1)
}

func TestLeaderboardHandler(t *testing.T) {
	entries := []internal.LeaderboardEntry{
		{IdentityKey: "acct:u-1", Name: "alice", TotalScore: 10},
		{IdentityKey: "acct:u-2", Name: "bob", TotalScore: 5},
	}
	handler, _ := newTestHandler(t, fakeAuth{}, fakeStats{entries: entries})

	rec, env := doJSON(t, handler, http.MethodGet, "/leaderboard?limit=1", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got []internal.LeaderboardEntry
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Len(t, got, 1)

	rec, _ = doJSON(t, handler, http.MethodGet, "/leaderboard?limit=bogus", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = doJSON(t, handler, http.MethodGet, "/leaderboard?limit=0", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUserStatsHandler(t *testing.T) {
	stats := internal.UserStats{IdentityKey: "acct:u-1", GamesPlayed: 4, GamesWon: 2, TotalScore: 12}
	handler, _ := newTestHandler(t, fakeAuth{}, fakeStats{stats: stats})

	rec, env := doJSON(t, handler, http.MethodGet, "/users/u-1/stats", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got internal.UserStats
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, stats, got)
}

func TestPreflightRequests(t *testing.T) {
	handler, _ := newTestHandler(t, fakeAuth{}, fakeStats{})

	req := httptest.NewRequest(http.MethodOptions, "/rooms", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestErrStatusCoverage(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, errStatus(fmt.Errorf("boom")))
	assert.Equal(t, http.StatusConflict, errStatus(internal.ErrRoomFull))
	assert.Equal(t, http.StatusUnauthorized, errStatus(internal.ErrInvalidToken))
}
