// Package config handles application configuration.
package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// ClockTime is a wall-clock instant within a day, unmarshalled from an
// "HH:MM" string.
type ClockTime struct {
	Hour   int
	Minute int
}

// UnmarshalYAML implements the yaml.Unmarshaler interface for ClockTime.
func (ct *ClockTime) UnmarshalYAML(value *yaml.Node) error {
	if value.Tag != "!!str" {
		return fmt.Errorf("cannot unmarshal %s into ClockTime, want an HH:MM string", value.Tag)
	}
	var h, m int
	if _, err := fmt.Sscanf(value.Value, "%d:%d", &h, &m); err != nil {
		return fmt.Errorf("cannot unmarshal %q into ClockTime: %w", value.Value, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return fmt.Errorf("clock time %q out of range", value.Value)
	}
	*ct = ClockTime{Hour: h, Minute: m}
	return nil
}

// MarshalYAML implements the yaml.Marshaler interface for ClockTime.
func (ct ClockTime) MarshalYAML() (interface{}, error) {
	return ct.String(), nil
}

// String renders the instant as HH:MM.
func (ct ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", ct.Hour, ct.Minute)
}

// MinuteOfDay returns the number of minutes since midnight.
func (ct ClockTime) MinuteOfDay() int {
	return ct.Hour*60 + ct.Minute
}

// Matches reports whether t falls inside the one-minute window [ct, ct+1m).
func (ct ClockTime) Matches(t time.Time) bool {
	return t.Hour() == ct.Hour && t.Minute() == ct.Minute
}

// SessionWindow is a half-open [Open, Close) daily trading session range.
type SessionWindow struct {
	Open  ClockTime `yaml:"open"`
	Close ClockTime `yaml:"close"`
}

// Contains reports whether the wall-clock part of t falls inside the window.
func (w SessionWindow) Contains(t time.Time) bool {
	minute := t.Hour()*60 + t.Minute()
	return minute >= w.Open.MinuteOfDay() && minute < w.Close.MinuteOfDay()
}
