package game

import (
	"fmt"
	"log"
	"slices"
	"strings"
	"time"

	"github.com/m4dzi4/pict-io-sub000/internal"
)

// =============================================================================
// GUESS HANDLING
// =============================================================================

// SubmitChat routes a chat line: outside play it is plain chat, during
// play it is evaluated against the keyword. The drawer's messages are
// never evaluated, and a player who already guessed this round is
// muted until the round ends so the keyword cannot be relayed.
func (g *Service) SubmitChat(s *internal.Session, senderConnID, text string) {
	s.Mu.Lock()

	sender := s.FindPlayerByConnID(senderConnID)
	if sender == nil {
		s.Mu.Unlock()
		return
	}

	chat := internal.Message[internal.ChatMessageData]{
		Type: internal.EventChatMessage,
		Data: internal.ChatMessageData{
			User:      sender.DisplayName,
			Text:      text,
			Timestamp: time.Now().UnixMilli(),
		},
	}

	if s.GameStatus != internal.StatusPlaying {
		s.Mu.Unlock()
		SafeBroadcastToSession(s, chat)
		return
	}

	senderKey := sender.Key()
	record := s.CurrentRecord()

	if senderKey == s.DrawerID {
		// Drawer talk is chat, not a guess.
		s.Mu.Unlock()
		SafeBroadcastToSession(s, chat)
		return
	}

	if record != nil && slices.Contains(record.CorrectGuesses, senderKey) {
		s.Mu.Unlock()
		log.Printf("[SubmitChat] room=%s: %s already guessed this round, dropping message", s.RoomID, senderKey)
		return
	}

	guess := strings.ToLower(strings.TrimSpace(text))
	target := strings.ToLower(strings.TrimSpace(s.Keyword))

	if record != nil {
		record.AllGuesses[senderKey] = text
	}

	if record == nil || target == "" || guess != target {
		s.Mu.Unlock()
		SafeBroadcastToSession(s, chat)
		return
	}

	// Correct guess.
	record.CorrectGuesses = append(record.CorrectGuesses, senderKey)
	s.Scores[senderKey]++

	score := s.Scores[senderKey]
	wonByPoints := s.Settings.GameMode == internal.ModePoints && score >= s.Settings.PointsToWin
	allGuessed := s.AllNonDrawersGuessed()
	roomID := s.RoomID
	senderName := sender.DisplayName

	s.Mu.Unlock()

	log.Printf("[SubmitChat] room=%s: %s guessed correctly (score=%d)", roomID, senderKey, score)

	if err := sender.SafeWriteJSON(internal.Message[any]{Type: internal.EventUpdateGuessed}); err != nil {
		log.Printf("[SubmitChat] room=%s: failed to notify guesser %s: %v", roomID, senderKey, err)
	}
	SafeBroadcastToSessionExcept(s, systemChat(fmt.Sprintf("%s guessed the word!", senderName)), senderConnID)

	switch {
	case wonByPoints:
		g.EndGame(s)
	case allGuessed:
		g.EndRound(s, internal.ReasonAllGuessed, 0)
	}
}
