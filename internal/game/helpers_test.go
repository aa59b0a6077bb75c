package game

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/m4dzi4/pict-io-sub000/internal"
)

// fakeConn records every payload written to it.
type fakeConn struct {
	mu     sync.Mutex
	closed bool
	msgs   []any
}

func (c *fakeConn) WriteJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return internal.ErrConnClosed
	}
	c.msgs = append(c.msgs, v)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// events returns the envelope type of everything written, in order.
func (c *fakeConn) events() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	types := make([]string, 0, len(c.msgs))
	for _, m := range c.msgs {
		raw, _ := json.Marshal(m)
		var envelope struct {
			Type string `json:"type"`
		}
		_ = json.Unmarshal(raw, &envelope)
		types = append(types, envelope.Type)
	}
	return types
}

func (c *fakeConn) countEvents(eventType string) int {
	count := 0
	for _, t := range c.events() {
		if t == eventType {
			count++
		}
	}
	return count
}

// sawText reports whether any serialized payload contains text.
func (c *fakeConn) sawText(text string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, m := range c.msgs {
		raw, _ := json.Marshal(m)
		if strings.Contains(string(raw), text) {
			return true
		}
	}
	return false
}

// fakeStore records durable-store calls. All methods succeed unless an
// error is injected.
type fakeStore struct {
	mu        sync.Mutex
	exists    bool
	existsErr error
	statsErr  error

	created  []internal.RoomRecord
	inactive []string
	deleted  []string
	stats    [][]internal.GameStatRecord
}

func (f *fakeStore) CreateRoom(ctx context.Context, rec internal.RoomRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, rec)
	return nil
}

func (f *fakeStore) RoomExists(ctx context.Context, roomID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.exists, f.existsErr
}

func (f *fakeStore) MarkRoomInactive(ctx context.Context, roomID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inactive = append(f.inactive, roomID)
	return nil
}

func (f *fakeStore) DeleteRoom(ctx context.Context, roomID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, roomID)
	return nil
}

func (f *fakeStore) SaveGameStats(ctx context.Context, recs []internal.GameStatRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.statsErr != nil {
		return f.statsErr
	}
	f.stats = append(f.stats, recs)
	return nil
}

func (f *fakeStore) savedStats() [][]internal.GameStatRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]internal.GameStatRecord(nil), f.stats...)
}

func (f *fakeStore) markedInactive() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.inactive...)
}

// fixedWords always yields the same keyword.
type fixedWords string

func (w fixedWords) RandomKeyword() string { return string(w) }

func testSettings() internal.RoomSettings {
	return internal.RoomSettings{
		MaxPlayers:           8,
		GameMode:             internal.ModeRounds,
		MaxRounds:            3,
		RoundDurationSeconds: 60,
		DrawerChoice:         internal.DrawerRandom,
	}
}

// newTestSession builds a waiting session owned by guest "host".
func newTestSession(t *testing.T, settings internal.RoomSettings) *internal.Session {
	t.Helper()
	s := &internal.Session{
		RoomID:       "r0test",
		OwnerID:      internal.GuestIdentity("host").Key(),
		OwnerName:    "host",
		Settings:     settings,
		Players:      make([]*internal.Player, 0, settings.MaxPlayers),
		Scores:       make(map[string]int),
		DrawingPaths: make([]internal.Stroke, 0),
		RoundHistory: make(map[int]*internal.RoundRecord),
		GameStatus:   internal.StatusWaiting,
	}
	t.Cleanup(func() {
		s.Mu.Lock()
		disarmTimerLocked(s)
		s.Mu.Unlock()
	})
	return s
}

func addPlayer(s *internal.Session, guestID, name string) (*internal.Player, *fakeConn) {
	conn := &fakeConn{}
	p := &internal.Player{
		ConnID:      "conn-" + guestID,
		DisplayName: name,
		Identity:    internal.GuestIdentity(guestID),
		Conn:        conn,
	}
	s.Players = append(s.Players, p)
	s.Scores[p.Key()] = 0
	return p, conn
}
