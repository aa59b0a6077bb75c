package game

import (
	"log"
	"time"

	"github.com/m4dzi4/pict-io-sub000/internal"
)

// =============================================================================
// BROADCASTING & MESSAGING
// =============================================================================

// SafeBroadcastToSession sends msg to every player in the session.
// It snapshots the player list under the session lock and performs all
// writes outside it, so a slow connection never blocks game state.
func SafeBroadcastToSession[T any](s *internal.Session, msg internal.Message[T]) {
	s.Mu.Lock()
	players := make([]*internal.Player, len(s.Players))
	copy(players, s.Players)
	s.Mu.Unlock()

	for _, player := range players {
		if err := player.SafeWriteJSON(msg); err != nil {
			log.Printf("[Broadcast][Room:%s] Failed for player %s (%s): %v",
				s.RoomID, player.Key(), player.DisplayName, err)
		}
	}
}

// SafeBroadcastToSessionExcept sends msg to every player except the
// one owning excludeConnID.
func SafeBroadcastToSessionExcept[T any](s *internal.Session, msg internal.Message[T], excludeConnID string) {
	s.Mu.Lock()
	players := make([]*internal.Player, 0, len(s.Players))
	for _, player := range s.Players {
		if player.ConnID != excludeConnID {
			players = append(players, player)
		}
	}
	s.Mu.Unlock()

	for _, player := range players {
		if err := player.SafeWriteJSON(msg); err != nil {
			log.Printf("[BroadcastExcept][Room:%s] Failed for player %s (%s): %v",
				s.RoomID, player.Key(), player.DisplayName, err)
		}
	}
}

// BroadcastGameState pushes the public update_game snapshot to every
// player. Called after roster or canvas changes.
func BroadcastGameState(s *internal.Session) {
	s.Mu.Lock()
	update := internal.UpdateGameData{
		Players:      s.Roster(),
		DrawerID:     s.DrawerID,
		DrawingPaths: s.DrawingPaths,
	}
	s.Mu.Unlock()

	SafeBroadcastToSession(s, internal.Message[internal.UpdateGameData]{
		Type: internal.EventUpdateGame,
		Data: update,
	})
}

func systemChat(text string) internal.Message[internal.ChatMessageData] {
	return internal.Message[internal.ChatMessageData]{
		Type: internal.EventChatMessage,
		Data: internal.ChatMessageData{
			User:      "system",
			Text:      text,
			Timestamp: time.Now().UnixMilli(),
			Type:      internal.ChatTypeSystem,
		},
	}
}
