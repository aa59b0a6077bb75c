package game

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/m4dzi4/pict-io-sub000/internal"
)

// startedSession returns a playing session with host drawing and two
// guessers attached.
func startedSession(t *testing.T, settings internal.RoomSettings, svc *Service) (*internal.Session, map[string]*fakeConn) {
	t.Helper()
	s := newTestSession(t, settings)
	conns := make(map[string]*fakeConn)
	for _, name := range []string{"host", "bob", "carol"} {
		_, conn := addPlayer(s, name, name)
		conns[name] = conn
	}
	require.NoError(t, svc.StartGame(s, s.OwnerID))
	return s, conns
}

func TestCorrectGuessScoresOnce(t *testing.T) {
	svc := NewService(fixedWords("rocket"), &fakeStore{})
	s, conns := startedSession(t, testSettings(), svc)

	svc.SubmitChat(s, "conn-bob", "rocket")

	s.Mu.Lock()
	require.Equal(t, 1, s.Scores[internal.GuestIdentity("bob").Key()])
	require.Equal(t, []string{internal.GuestIdentity("bob").Key()}, s.CurrentRecord().CorrectGuesses)
	s.Mu.Unlock()

	require.Equal(t, 1, conns["bob"].countEvents(internal.EventUpdateGuessed))
	require.Zero(t, conns["carol"].countEvents(internal.EventUpdateGuessed))
	require.True(t, conns["carol"].sawText("guessed the word"))
}

func TestGuessIsTrimmedAndCaseInsensitive(t *testing.T) {
	svc := NewService(fixedWords("Rocket"), &fakeStore{})
	s, _ := startedSession(t, testSettings(), svc)

	svc.SubmitChat(s, "conn-bob", "  rOcKeT ")

	s.Mu.Lock()
	defer s.Mu.Unlock()
	require.Equal(t, 1, s.Scores[internal.GuestIdentity("bob").Key()])
}

func TestWrongGuessIsPlainChat(t *testing.T) {
	svc := NewService(fixedWords("rocket"), &fakeStore{})
	s, conns := startedSession(t, testSettings(), svc)

	svc.SubmitChat(s, "conn-bob", "submarine")

	s.Mu.Lock()
	require.Zero(t, s.Scores[internal.GuestIdentity("bob").Key()])
	require.Equal(t, "submarine", s.CurrentRecord().AllGuesses[internal.GuestIdentity("bob").Key()])
	s.Mu.Unlock()

	require.True(t, conns["carol"].sawText("submarine"))
}

func TestDrawerChatIsNeverAGuess(t *testing.T) {
	svc := NewService(fixedWords("rocket"), &fakeStore{})
	s, conns := startedSession(t, testSettings(), svc)

	// Host is the round-1 drawer.
	svc.SubmitChat(s, "conn-host", "rocket")

	s.Mu.Lock()
	require.Zero(t, s.Scores[s.OwnerID])
	require.Empty(t, s.CurrentRecord().CorrectGuesses)
	require.Equal(t, internal.StatusPlaying, s.GameStatus)
	s.Mu.Unlock()

	require.True(t, conns["bob"].sawText("rocket"), "drawer talk is still chat")
}

func TestCorrectGuesserIsMutedForTheRound(t *testing.T) {
	svc := NewService(fixedWords("rocket"), &fakeStore{})
	s, conns := startedSession(t, testSettings(), svc)

	svc.SubmitChat(s, "conn-bob", "rocket")
	svc.SubmitChat(s, "conn-bob", "it was rocket everyone")

	require.False(t, conns["carol"].sawText("it was rocket everyone"),
		"a solved player must not relay the keyword")
}

func TestAllGuessedEndsRound(t *testing.T) {
	svc := NewService(fixedWords("rocket"), &fakeStore{})
	s, conns := startedSession(t, testSettings(), svc)

	svc.SubmitChat(s, "conn-bob", "rocket")

	s.Mu.Lock()
	require.Equal(t, internal.StatusPlaying, s.GameStatus, "carol has not guessed yet")
	s.Mu.Unlock()

	svc.SubmitChat(s, "conn-carol", "rocket")

	s.Mu.Lock()
	require.Equal(t, internal.StatusBetweenRounds, s.GameStatus)
	s.Mu.Unlock()
	require.Equal(t, 1, conns["host"].countEvents(internal.EventEndRound))
}

func TestPointsModeWinEndsGame(t *testing.T) {
	settings := testSettings()
	settings.GameMode = internal.ModePoints
	settings.MaxRounds = 0
	settings.PointsToWin = 1
	store := &fakeStore{}
	svc := NewService(fixedWords("rocket"), store)
	s, conns := startedSession(t, settings, svc)

	svc.SubmitChat(s, "conn-bob", "rocket")

	s.Mu.Lock()
	require.Equal(t, internal.StatusEnded, s.GameStatus)
	s.Mu.Unlock()
	require.Equal(t, 1, conns["carol"].countEvents(internal.EventGameEnded))
	require.True(t, conns["carol"].sawText(internal.GuestIdentity("bob").Key()), "winner announced")
}

func TestPointsModeWinsAfterThirdGuessNotBefore(t *testing.T) {
	settings := testSettings()
	settings.GameMode = internal.ModePoints
	settings.MaxRounds = 0
	settings.PointsToWin = 3
	settings.DrawerChoice = internal.DrawerQueue
	svc := NewService(fixedWords("rocket"), &fakeStore{})

	s := newTestSession(t, settings)
	for _, name := range []string{"host", "bob", "carol", "dave"} {
		addPlayer(s, name, name)
	}
	require.NoError(t, svc.StartGame(s, s.OwnerID))

	// Queue order keeps dave guessing for the first three rounds.
	for round := 1; round <= 3; round++ {
		s.Mu.Lock()
		require.Equal(t, round, s.CurrentRound)
		s.Mu.Unlock()

		svc.SubmitChat(s, "conn-dave", "rocket")

		s.Mu.Lock()
		status := s.GameStatus
		score := s.Scores[internal.GuestIdentity("dave").Key()]
		s.Mu.Unlock()
		require.Equal(t, round, score)

		if round < 3 {
			require.NotEqual(t, internal.StatusEnded, status, "game must not end before the goal is reached")
			svc.EndRound(s, internal.ReasonTimer, 0)
			svc.StartNewRound(s, 0)
		} else {
			require.Equal(t, internal.StatusEnded, status, "third correct guess ends the game")
		}
	}
}

func TestChatOutsidePlayIsPlainChat(t *testing.T) {
	svc := NewService(fixedWords("rocket"), &fakeStore{})
	s := newTestSession(t, testSettings())
	addPlayer(s, "host", "host")
	_, bobConn := addPlayer(s, "bob", "bob")

	svc.SubmitChat(s, "conn-host", "hello there")

	s.Mu.Lock()
	require.Equal(t, internal.StatusWaiting, s.GameStatus)
	s.Mu.Unlock()
	require.True(t, bobConn.sawText("hello there"))
}

func TestUnknownConnIsIgnored(t *testing.T) {
	svc := NewService(fixedWords("rocket"), &fakeStore{})
	s, conns := startedSession(t, testSettings(), svc)

	svc.SubmitChat(s, "conn-stranger", "rocket")

	require.False(t, conns["host"].sawText("stranger"))
	s.Mu.Lock()
	defer s.Mu.Unlock()
	require.Empty(t, s.CurrentRecord().CorrectGuesses)
}
