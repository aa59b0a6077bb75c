package game

import (
	"log"
	"math/rand"

	"github.com/m4dzi4/pict-io-sub000/internal"
)

// =============================================================================
// DRAWER SELECTION
// =============================================================================

// SelectDrawer chooses the drawer for the round the session is about
// to start, per the configured strategy. Returns "" when the strategy
// yields nobody; the round then starts drawer-less, which is accepted
// behavior rather than a reason to reselect. Caller holds s.Mu and has
// already incremented CurrentRound.
func SelectDrawer(s *internal.Session) string {
	// Round 1 always goes to the room owner, if still present.
	if s.CurrentRound <= 1 {
		if s.FindPlayer(s.OwnerID) != nil {
			return s.OwnerID
		}
		log.Printf("[SelectDrawer] room=%s: owner %s absent at round 1, starting drawer-less", s.RoomID, s.OwnerID)
		return ""
	}

	switch s.Settings.DrawerChoice {
	case internal.DrawerQueue:
		// Pop until a queued player who is still in the room; players
		// who left simply lose their turn.
		for len(s.DrawerQueue) > 0 {
			next := s.DrawerQueue[0]
			s.DrawerQueue = s.DrawerQueue[1:]
			if s.FindPlayer(next) != nil {
				return next
			}
		}
		return ""

	case internal.DrawerWinner:
		prev := s.RoundHistory[s.CurrentRound-1]
		if prev == nil || len(prev.CorrectGuesses) == 0 {
			return ""
		}
		winner := prev.CorrectGuesses[0]
		if s.FindPlayer(winner) == nil {
			return ""
		}
		return winner

	default: // random, same-drawer repeats accepted
		if len(s.Players) == 0 {
			return ""
		}
		return s.Players[rand.Intn(len(s.Players))].Key()
	}
}
