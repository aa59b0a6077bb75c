package game

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/m4dzi4/pict-io-sub000/internal"
	"github.com/m4dzi4/pict-io-sub000/internal/utils"
)

// =============================================================================
// ROOM REGISTRY
// =============================================================================

// RoomStore is the durable-store collaborator. Sessions stay
// authoritative while active; every store write is best-effort.
type RoomStore interface {
	CreateRoom(ctx context.Context, rec internal.RoomRecord) error
	RoomExists(ctx context.Context, roomID string) (bool, error)
	MarkRoomInactive(ctx context.Context, roomID string) error
	DeleteRoom(ctx context.Context, roomID string) error
	SaveGameStats(ctx context.Context, recs []internal.GameStatRecord) error
}

// KeywordSource supplies a random non-empty keyword for a round.
type KeywordSource interface {
	RandomKeyword() string
}

// RoomSummary is the public listing entry for an active room.
type RoomSummary struct {
	RoomID      string              `json:"room_id"`
	OwnerName   string              `json:"owner_name"`
	Players     int                 `json:"players"`
	MaxPlayers  int                 `json:"max_players"`
	GameMode    internal.GameMode   `json:"game_mode"`
	GameStatus  internal.GameStatus `json:"game_status"`
	HasAccess   bool                `json:"requires_access_code"`
}

// Registry owns the mapping from room id to live session. It is an
// explicit dependency of the gateway rather than package state, so
// independent registries can run side by side in tests.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*internal.Session
	store    RoomStore
}

func NewRegistry(store RoomStore) *Registry {
	return &Registry{
		sessions: make(map[string]*internal.Session),
		store:    store,
	}
}

// CreateRoom generates a collision-free room id, persists the durable
// record and registers a fresh waiting session. The room id space
// makes exhaustion practically unreachable.
func (r *Registry) CreateRoom(ctx context.Context, settings internal.RoomSettings, owner internal.Identity, ownerName string) (string, error) {
	if err := settings.Validate(); err != nil {
		return "", err
	}

	ownerKey := owner.Key()

	r.mu.Lock()
	defer r.mu.Unlock()

	roomID := ""
	for range internal.MaxRoomIDAttempts {
		candidate := utils.GenerateID(internal.RoomIDLength)
		if _, taken := r.sessions[candidate]; taken {
			continue
		}
		exists, err := r.store.RoomExists(ctx, candidate)
		if err != nil {
			// The store is not authoritative for live rooms; keep going.
			log.Printf("[CreateRoom] store lookup for %s failed: %v", candidate, err)
		}
		if exists {
			continue
		}
		roomID = candidate
		break
	}
	if roomID == "" {
		return "", internal.ErrDuplicateRoomID
	}

	session := &internal.Session{
		RoomID:       roomID,
		OwnerID:      ownerKey,
		OwnerName:    ownerName,
		Settings:     settings,
		Players:      make([]*internal.Player, 0, settings.MaxPlayers),
		Scores:       make(map[string]int),
		DrawingPaths: make([]internal.Stroke, 0),
		RoundHistory: make(map[int]*internal.RoundRecord),
		GameStatus:   internal.StatusWaiting,
	}
	r.sessions[roomID] = session

	if err := r.store.CreateRoom(ctx, internal.RoomRecord{
		RoomID:     roomID,
		OwnerID:    ownerKey,
		MaxPlayers: settings.MaxPlayers,
		GameMode:   settings.GameMode,
		Private:    settings.AccessCode != "",
		Status:     string(internal.StatusWaiting),
		CreatedAt:  time.Now(),
	}); err != nil {
		log.Printf("[CreateRoom] room=%s: persisting room record failed: %v", roomID, err)
	}

	log.Printf("[CreateRoom] room=%s created by %s (%s), mode=%s maxPlayers=%d",
		roomID, ownerKey, ownerName, settings.GameMode, settings.MaxPlayers)
	return roomID, nil
}

// Get returns the live session for roomID. A durable record without a
// live session does not count.
func (r *Registry) Get(roomID string) (*internal.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.sessions[roomID]
	return session, ok
}

// Remove drops the in-memory session. Callers only invoke it once the
// last player is gone.
func (r *Registry) Remove(roomID string) {
	r.mu.Lock()
	delete(r.sessions, roomID)
	r.mu.Unlock()
	log.Printf("[Registry.Remove] room=%s removed", roomID)
}

// MarkInactive flags the durable record; the in-memory session is
// untouched.
func (r *Registry) MarkInactive(ctx context.Context, roomID string) {
	if err := r.store.MarkRoomInactive(ctx, roomID); err != nil {
		log.Printf("[MarkInactive] room=%s: %v", roomID, err)
	}
}

// Delete removes the durable record; the in-memory session is
// untouched.
func (r *Registry) Delete(ctx context.Context, roomID string) {
	if err := r.store.DeleteRoom(ctx, roomID); err != nil {
		log.Printf("[Registry.Delete] room=%s: %v", roomID, err)
	}
}

// ActiveRooms lists live sessions for the rooms endpoint.
func (r *Registry) ActiveRooms() []RoomSummary {
	r.mu.RLock()
	sessions := make([]*internal.Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.mu.RUnlock()

	summaries := make([]RoomSummary, 0, len(sessions))
	for _, s := range sessions {
		s.Mu.Lock()
		summaries = append(summaries, RoomSummary{
			RoomID:     s.RoomID,
			OwnerName:  s.OwnerName,
			Players:    len(s.Players),
			MaxPlayers: s.Settings.MaxPlayers,
			GameMode:   s.Settings.GameMode,
			GameStatus: s.GameStatus,
			HasAccess:  s.Settings.AccessCode != "",
		})
		s.Mu.Unlock()
	}
	return summaries
}

// ValidateAccess checks a room id and access code pair without joining.
func (r *Registry) ValidateAccess(roomID, accessCode string) error {
	session, ok := r.Get(roomID)
	if !ok {
		return internal.ErrRoomNotFound
	}
	session.Mu.Lock()
	defer session.Mu.Unlock()
	if session.Settings.AccessCode != "" && session.Settings.AccessCode != accessCode {
		return internal.ErrInvalidAccessCode
	}
	return nil
}
