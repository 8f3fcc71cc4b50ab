package config

import (
	"fmt"
	"strconv"
	"strings"
)

// UnmarshalYAML accepts "HH:MM" scalars, matching how game.yaml spells a
// start-of-day time (§4.5).
func (c *ClockTime) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	parts := strings.SplitN(raw, ":", 2)
	if len(parts) != 2 {
		return fmt.Errorf("startTime: expected HH:MM, got %q", raw)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return fmt.Errorf("startTime: bad hour in %q: %w", raw, err)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return fmt.Errorf("startTime: bad minute in %q: %w", raw, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return fmt.Errorf("startTime: %q out of range", raw)
	}
	c.Hour, c.Minute = hour, minute
	return nil
}
