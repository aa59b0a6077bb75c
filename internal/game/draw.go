package game

import (
	"log"
	"slices"

	"github.com/m4dzi4/pict-io-sub000/internal"
)

// =============================================================================
// DRAWING RELAY
// =============================================================================

// UpdateDrawing replaces the session canvas wholesale with the
// drawer's paths and relays them to everyone else. The drawer's client
// is authoritative; stroke content is not inspected. Non-drawer
// updates are dropped.
func (g *Service) UpdateDrawing(s *internal.Session, senderConnID string, paths []internal.Stroke) {
	s.Mu.Lock()

	sender := s.FindPlayerByConnID(senderConnID)
	if sender == nil {
		s.Mu.Unlock()
		return
	}
	if s.GameStatus != internal.StatusPlaying || sender.Key() != s.DrawerID {
		roomID := s.RoomID
		key := sender.Key()
		s.Mu.Unlock()
		log.Printf("[UpdateDrawing] room=%s: %s is not the active drawer, ignoring", roomID, key)
		return
	}

	s.DrawingPaths = slices.Clone(paths)
	broadcast := internal.DrawingBroadcastData{Paths: s.DrawingPaths}

	s.Mu.Unlock()

	SafeBroadcastToSessionExcept(s, internal.Message[internal.DrawingBroadcastData]{
		Type: internal.EventDrawingBroadcast,
		Data: broadcast,
	}, senderConnID)
}
