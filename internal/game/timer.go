package game

import (
	"context"
	"log"
	"time"

	"github.com/m4dzi4/pict-io-sub000/internal"
)

// =============================================================================
// TIMER MANAGEMENT
// =============================================================================

// armTimerLocked replaces any pending timer on the session with a new
// one and returns its generation. The expiry callback runs in its own
// goroutine and receives that generation; the transition it invokes
// must re-validate session state before acting, so a timer racing a
// concurrent event can never double-fire. Caller holds s.Mu.
func armTimerLocked(s *internal.Session, duration time.Duration, onExpire func(gen uint64)) uint64 {
	disarmTimerLocked(s)

	ctx, cancel := context.WithTimeout(context.Background(), duration)
	s.TimerGen++
	gen := s.TimerGen
	s.Timer = &internal.RoundTimer{
		StartTime:  time.Now(),
		Duration:   duration,
		IsActive:   true,
		Generation: gen,
		Context:    ctx,
		Cancel:     cancel,
	}

	go func() {
		<-ctx.Done()
		if ctx.Err() == context.DeadlineExceeded {
			log.Printf("[armTimer] room=%s: timer gen=%d expired after %v", s.RoomID, gen, duration)
			go onExpire(gen)
			return
		}
		log.Printf("[armTimer] room=%s: timer gen=%d cancelled before expiry", s.RoomID, gen)
	}()

	return gen
}

// disarmTimerLocked cancels the pending timer, if any. Idempotent.
// Caller holds s.Mu.
func disarmTimerLocked(s *internal.Session) {
	if s.Timer == nil || !s.Timer.IsActive {
		return
	}
	if s.Timer.Cancel != nil {
		s.Timer.Cancel()
	}
	s.Timer.IsActive = false
}

// timerGenIsCurrentLocked reports whether gen identifies the timer
// that is currently armed. A zero gen marks a non-timer trigger and
// always passes. Caller holds s.Mu.
func timerGenIsCurrentLocked(s *internal.Session, gen uint64) bool {
	if gen == 0 {
		return true
	}
	return s.Timer != nil && s.Timer.Generation == gen
}
