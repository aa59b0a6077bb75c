package game

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/m4dzi4/pict-io-sub000/internal"
)

// =============================================================================
// GAME FLOW - ROUND MANAGEMENT
// =============================================================================

// Service runs the session state machine. Every operation takes the
// session lock for its whole critical section, snapshots what it will
// broadcast, releases the lock, then sends; timer expiries funnel back
// through the same operations and re-validate state under the lock, so
// the first trigger wins and a late timer is a no-op.
type Service struct {
	words KeywordSource
	store RoomStore
}

func NewService(words KeywordSource, store RoomStore) *Service {
	return &Service{words: words, store: store}
}

// StartGame moves a waiting session into play. Owner-only.
func (g *Service) StartGame(s *internal.Session, requesterKey string) error {
	s.Mu.Lock()

	if s.GameStatus != internal.StatusWaiting {
		s.Mu.Unlock()
		return internal.ErrGameNotWaiting
	}
	if requesterKey != s.OwnerID {
		s.Mu.Unlock()
		return internal.ErrNotRoomOwner
	}
	if len(s.Players) < internal.MinPlayersPerRoom {
		s.Mu.Unlock()
		return fmt.Errorf("%w: need at least %d players", internal.ErrInvalidSettings, internal.MinPlayersPerRoom)
	}

	s.GameStatus = internal.StatusPlaying
	s.CurrentRound = 0
	for key := range s.Scores {
		s.Scores[key] = 0
	}

	// The queue strategy rotates through the game-start roster in join
	// order. Round 1 belongs to the owner, so the owner is not queued.
	if s.Settings.DrawerChoice == internal.DrawerQueue {
		s.DrawerQueue = make([]string, 0, len(s.Players))
		for _, p := range s.Players {
			if p.Key() != s.OwnerID {
				s.DrawerQueue = append(s.DrawerQueue, p.Key())
			}
		}
	}

	roomID := s.RoomID
	s.Mu.Unlock()

	log.Printf("[StartGame] room=%s: game started by owner %s", roomID, requesterKey)
	SafeBroadcastToSession(s, internal.Message[internal.GameStatus]{
		Type: internal.EventGameStarted,
		Data: internal.StatusPlaying,
	})

	g.StartNewRound(s, 0)
	return nil
}

// StartNewRound begins the next round: clears the canvas, advances the
// round counter, picks drawer and keyword, arms the round timer and
// broadcasts new_round (keyword going to the drawer alone). A gen of 0
// means the call is not timer-driven; otherwise the grace timer that
// scheduled it must still be current.
//
// When the strategy yields no drawer the round still starts with an
// empty drawer id; nobody can draw and the timer ends the round.
func (g *Service) StartNewRound(s *internal.Session, gen uint64) {
	s.Mu.Lock()

	if s.GameStatus != internal.StatusPlaying && s.GameStatus != internal.StatusBetweenRounds {
		s.Mu.Unlock()
		log.Printf("[StartNewRound] room=%s: status=%s, not starting", s.RoomID, s.GameStatus)
		return
	}
	if !timerGenIsCurrentLocked(s, gen) {
		s.Mu.Unlock()
		log.Printf("[StartNewRound] room=%s: stale grace timer gen=%d, ignoring", s.RoomID, gen)
		return
	}

	s.GameStatus = internal.StatusPlaying
	s.DrawingPaths = make([]internal.Stroke, 0)
	s.CurrentRound++
	s.DrawerID = SelectDrawer(s)
	s.Keyword = g.words.RandomKeyword()

	s.RoundHistory[s.CurrentRound] = &internal.RoundRecord{
		DrawerID:       s.DrawerID,
		Keyword:        s.Keyword,
		CorrectGuesses: make([]string, 0),
		AllGuesses:     make(map[string]string),
	}

	duration := s.Settings.RoundDuration()
	s.RoundEndTime = time.Now().Add(duration)

	roundGen := armTimerLocked(s, duration, func(expiredGen uint64) {
		g.EndRound(s, internal.ReasonTimer, expiredGen)
	})

	newRound := internal.NewRoundData{
		DrawingPaths: s.DrawingPaths,
		CurrentRound: s.CurrentRound,
		DrawerID:     s.DrawerID,
		RoundEndTime: s.RoundEndTime.UnixMilli(),
		GameStatus:   s.GameStatus,
	}
	if s.Settings.GameMode == internal.ModeRounds {
		newRound.MaxRounds = s.Settings.MaxRounds
	}
	drawer := s.FindPlayer(s.DrawerID)
	keyword := s.Keyword
	roomID := s.RoomID
	round := s.CurrentRound

	s.Mu.Unlock()

	log.Printf("[StartNewRound] room=%s: round=%d drawer=%s timerGen=%d",
		roomID, round, newRound.DrawerID, roundGen)

	SafeBroadcastToSession(s, internal.Message[internal.NewRoundData]{
		Type: internal.EventNewRound,
		Data: newRound,
	})

	if drawer != nil {
		if err := drawer.SafeWriteJSON(internal.Message[internal.NewKeywordData]{
			Type: internal.EventNewKeyword,
			Data: internal.NewKeywordData{Keyword: keyword},
		}); err != nil {
			log.Printf("[StartNewRound] room=%s: failed to send keyword to drawer %s: %v",
				roomID, drawer.Key(), err)
		}
	}
}

// EndRound finishes the active round. Idempotent: if the round already
// ended (or the triggering timer was superseded) it does nothing, so a
// last correct guess racing the timer fires the transition exactly
// once.
func (g *Service) EndRound(s *internal.Session, reason internal.RoundEndReason, gen uint64) {
	s.Mu.Lock()

	if s.GameStatus != internal.StatusPlaying {
		s.Mu.Unlock()
		log.Printf("[EndRound] room=%s: status=%s, round already over", s.RoomID, s.GameStatus)
		return
	}
	if !timerGenIsCurrentLocked(s, gen) {
		s.Mu.Unlock()
		log.Printf("[EndRound] room=%s: stale timer gen=%d, ignoring", s.RoomID, gen)
		return
	}

	disarmTimerLocked(s)
	revealed := s.Keyword
	s.Keyword = ""
	s.DrawerID = ""
	s.RoundEndTime = time.Time{}
	s.GameStatus = internal.StatusBetweenRounds

	gameOver := s.Settings.GameMode == internal.ModeRounds && s.CurrentRound >= s.Settings.MaxRounds
	roomID := s.RoomID
	round := s.CurrentRound

	if !gameOver {
		armTimerLocked(s, internal.BetweenRoundsDelay, func(expiredGen uint64) {
			g.StartNewRound(s, expiredGen)
		})
	}

	s.Mu.Unlock()

	log.Printf("[EndRound] room=%s: round=%d ended (%s), word was %q", roomID, round, reason, revealed)

	SafeBroadcastToSession(s, systemChat(fmt.Sprintf("The word was %q (%s)", revealed, reason)))
	SafeBroadcastToSession(s, internal.Message[internal.EndRoundData]{
		Type: internal.EventEndRound,
		Data: internal.EndRoundData{GameStatus: internal.StatusBetweenRounds},
	})

	if gameOver {
		g.EndGame(s)
	}
}

// EndGame closes the session's game, announces the winner and writes
// summary stats to the durable store without blocking on it.
func (g *Service) EndGame(s *internal.Session) {
	s.Mu.Lock()

	if s.GameStatus == internal.StatusEnded || s.GameStatus == internal.StatusWaiting {
		s.Mu.Unlock()
		return
	}

	disarmTimerLocked(s)
	s.Keyword = ""
	s.DrawerID = ""
	s.RoundEndTime = time.Time{}
	s.GameStatus = internal.StatusEnded

	winner := s.Winner()
	scores := make(map[string]int, len(s.Scores))
	for key, score := range s.Scores {
		scores[key] = score
	}
	stats := internal.GameStats{RoundsPlayed: s.CurrentRound}
	statRecords := make([]internal.GameStatRecord, 0, len(s.Players))
	for _, p := range s.Players {
		won := winner != nil && winner.ID == p.Key()
		statRecords = append(statRecords, internal.GameStatRecord{
			RoomID:       s.RoomID,
			IdentityKey:  p.Key(),
			Name:         p.DisplayName,
			Score:        s.Scores[p.Key()],
			Won:          won,
			RoundsPlayed: s.CurrentRound,
		})
	}
	for _, record := range s.RoundHistory {
		stats.CorrectGuesses += len(record.CorrectGuesses)
	}
	roomID := s.RoomID

	s.Mu.Unlock()

	winnerName := "<nobody>"
	if winner != nil {
		winnerName = winner.Name
	}
	log.Printf("[EndGame] room=%s: game over, winner=%s", roomID, winnerName)

	SafeBroadcastToSession(s, internal.Message[internal.GameEndedData]{
		Type: internal.EventGameEnded,
		Data: internal.GameEndedData{Winner: winner, Scores: scores, GameStats: stats},
	})

	// Best-effort persistence; the in-memory result already reached
	// every player.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := g.store.SaveGameStats(ctx, statRecords); err != nil {
			log.Printf("[EndGame] room=%s: saving game stats failed: %v", roomID, err)
		}
	}()
}
