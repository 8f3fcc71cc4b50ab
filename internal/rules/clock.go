// Package rules evaluates the tagged-variant precondition atoms and rule
// actions of §4.5 against a session's device snapshot and in-game clock.
package rules

import (
	"fmt"
	"time"

	"github.com/shine-lab/orchestration-core/internal/config"
)

// InGameTime computes the current in-game clock position (§4.5):
// in_game_time = start_of_day + (wall_now - session.start_time) * speed.
func InGameTime(cfg config.TimeConfig, sessionStart, wallNow time.Time) (hour, minute int) {
	elapsed := wallNow.Sub(sessionStart).Seconds() * cfg.Speed
	totalMinutes := cfg.StartTime.Hour*60 + cfg.StartTime.Minute + int(elapsed/60)
	totalMinutes = ((totalMinutes % (24 * 60)) + 24*60) % (24 * 60)
	return totalMinutes / 60, totalMinutes % 60
}

// ClockString renders the in-game clock as "HH:MM" for Time-atom comparison.
func ClockString(hour, minute int) string {
	return fmt.Sprintf("%02d:%02d", hour, minute)
}
