package ratelimit

import (
	"fmt"
	"time"
)

// DefaultSendWindow is the minimum spacing between successive send-PDF actions
const DefaultSendWindow = 5 * time.Second

// Error reports a rejected attempt and how long the caller still has to wait.
type Error struct {
	Remaining int // whole seconds until the next attempt is allowed
}

func (e *Error) Error() string {
	return fmt.Sprintf("rate limited: wait %d seconds before sending again", e.Remaining)
}

// Cooldown is a fixed-window gate: an attempt inside the window is rejected
// without moving the window. Only accepted attempts stamp a new instant.
type Cooldown struct {
	Window time.Duration
	Now    func() time.Time
}

// NewCooldown creates a gate with the given window and the wall clock.
func NewCooldown(window time.Duration) *Cooldown {
	if window <= 0 {
		window = DefaultSendWindow
	}
	return &Cooldown{
		Window: window,
		Now:    time.Now,
	}
}

// Allow checks the last accepted instant (nil means never). On acceptance it
// returns the instant the caller must record as the new last-send time. On
// rejection it returns a *Error with the remaining wait; the stored instant
// must be left untouched so that repeated rejected attempts cannot extend
// the window.
func (c *Cooldown) Allow(last *time.Time) (time.Time, error) {
	now := c.Now()

	if last != nil {
		elapsed := now.Sub(*last)
		if elapsed < c.Window {
			remaining := c.Window - elapsed
			secs := int(remaining / time.Second)
			if remaining%time.Second != 0 {
				secs++
			}
			return time.Time{}, &Error{Remaining: secs}
		}
	}

	return now, nil
}
