package game

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/m4dzi4/pict-io-sub000/internal"
)

func strokes(color string) []internal.Stroke {
	return []internal.Stroke{{
		StrokeColor: color,
		StrokeWidth: 4,
		Paths: []internal.Point{
			{X: 1, Y: 2, Type: "start"},
			{X: 3, Y: 4},
		},
	}}
}

func TestUpdateDrawingReplacesCanvasAndRelays(t *testing.T) {
	svc := NewService(fixedWords("rocket"), &fakeStore{})
	s, conns := startedSession(t, testSettings(), svc)

	svc.UpdateDrawing(s, "conn-host", strokes("#ff0000"))

	s.Mu.Lock()
	require.Equal(t, strokes("#ff0000"), s.DrawingPaths)
	s.Mu.Unlock()

	require.Equal(t, 1, conns["bob"].countEvents(internal.EventDrawingBroadcast))
	require.Zero(t, conns["host"].countEvents(internal.EventDrawingBroadcast), "drawer already has the strokes")

	// The canvas is replaced wholesale, not appended to.
	svc.UpdateDrawing(s, "conn-host", strokes("#00ff00"))
	s.Mu.Lock()
	defer s.Mu.Unlock()
	require.Equal(t, strokes("#00ff00"), s.DrawingPaths)
}

func TestUpdateDrawingRejectsNonDrawer(t *testing.T) {
	svc := NewService(fixedWords("rocket"), &fakeStore{})
	s, conns := startedSession(t, testSettings(), svc)

	svc.UpdateDrawing(s, "conn-bob", strokes("#ff0000"))

	s.Mu.Lock()
	require.Empty(t, s.DrawingPaths)
	s.Mu.Unlock()
	require.Zero(t, conns["carol"].countEvents(internal.EventDrawingBroadcast))
}

func TestUpdateDrawingIgnoredOutsidePlay(t *testing.T) {
	svc := NewService(fixedWords("rocket"), &fakeStore{})
	s := newTestSession(t, testSettings())
	addPlayer(s, "host", "host")

	svc.UpdateDrawing(s, "conn-host", strokes("#ff0000"))

	s.Mu.Lock()
	defer s.Mu.Unlock()
	require.Empty(t, s.DrawingPaths)
}
