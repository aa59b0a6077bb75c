package internal

import "slices"

// Helpers below expect s.Mu to be held by the caller.

func (s *Session) FindPlayer(identityKey string) *Player {
	for _, p := range s.Players {
		if p.Key() == identityKey {
			return p
		}
	}
	return nil
}

func (s *Session) FindPlayerByConnID(connID string) *Player {
	for _, p := range s.Players {
		if p.ConnID == connID {
			return p
		}
	}
	return nil
}

// RemovePlayerByConnID drops the player from the join-ordered list and
// returns it, or nil if no player owns that connection. Scores are
// kept so a later re-join resumes them.
func (s *Session) RemovePlayerByConnID(connID string) *Player {
	for i, p := range s.Players {
		if p.ConnID == connID {
			s.Players = slices.Delete(s.Players, i, i+1)
			return p
		}
	}
	return nil
}

func (s *Session) Roster() []RosterEntry {
	roster := make([]RosterEntry, 0, len(s.Players))
	for _, p := range s.Players {
		roster = append(roster, RosterEntry{
			ID:    p.Key(),
			Name:  p.DisplayName,
			Score: s.Scores[p.Key()],
		})
	}
	return roster
}

func (s *Session) CurrentRecord() *RoundRecord {
	return s.RoundHistory[s.CurrentRound]
}

// AllNonDrawersGuessed reports whether every player other than the
// drawer appears in the current round's correct guesses.
func (s *Session) AllNonDrawersGuessed() bool {
	record := s.CurrentRecord()
	if record == nil {
		return false
	}
	for _, p := range s.Players {
		if p.Key() == s.DrawerID {
			continue
		}
		if !slices.Contains(record.CorrectGuesses, p.Key()) {
			return false
		}
	}
	return true
}

// Winner returns the highest-scoring roster entry, ties resolved by
// join order. Nil when the room is empty.
func (s *Session) Winner() *RosterEntry {
	var winner *RosterEntry
	for _, entry := range s.Roster() {
		e := entry
		if winner == nil || e.Score > winner.Score {
			winner = &e
		}
	}
	return winner
}

// PublicState builds the keyword-free snapshot returned to callers and
// late joiners.
func (s *Session) PublicState() GameStateData {
	state := GameStateData{
		RoomID:       s.RoomID,
		Players:      s.Roster(),
		DrawerID:     s.DrawerID,
		DrawingPaths: slices.Clone(s.DrawingPaths),
		CurrentRound: s.CurrentRound,
		GameStatus:   s.GameStatus,
	}
	if s.Settings.GameMode == ModeRounds {
		state.MaxRounds = s.Settings.MaxRounds
	}
	if !s.RoundEndTime.IsZero() && s.GameStatus == StatusPlaying {
		state.RoundEndTime = s.RoundEndTime.UnixMilli()
	}
	return state
}
