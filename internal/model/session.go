// Package model defines the domain entities shared by the sources, the
// reconciler and the presentation layers.
package model

import (
	"fmt"
	"time"
)

// SessionType classifies a track session within a race weekend.
type SessionType string

const (
	SessionTypeRace       SessionType = "Race"
	SessionTypeQualifying SessionType = "Qualifying"
	SessionTypeSprint     SessionType = "Sprint"
	SessionTypePractice   SessionType = "Practice"
)

// Provenance records which upstream a record was built from.
type Provenance string

const (
	ProvenanceLive   Provenance = "live"
	ProvenanceLegacy Provenance = "legacy"
)

// SessionRef identifies a session. Legacy keys are round numbers and repeat
// every season, so the year is always part of the identity.
type SessionRef struct {
	Year int `json:"year"`
	Key  int `json:"key"`
}

func (r SessionRef) String() string {
	return fmt.Sprintf("%d/%d", r.Year, r.Key)
}

// Session is one scheduled track event.
type Session struct {
	Key        int         `json:"session_key"`
	Year       int         `json:"year"`
	Round      int         `json:"round"`
	MeetingKey int         `json:"meeting_key,omitempty"`
	Name       string      `json:"session_name"`
	Type       SessionType `json:"session_type"`
	Country    string      `json:"country_name"`
	Location   string      `json:"location"`
	Circuit    string      `json:"circuit_short_name"`
	Start      time.Time   `json:"date_start"`
	End        time.Time   `json:"date_end,omitzero"`
	Source     Provenance  `json:"source"`
}

// Ref returns the composite (year, key) identity of the session.
func (s Session) Ref() SessionRef {
	return SessionRef{Year: s.Year, Key: s.Key}
}

// Started reports whether the session start lies before now.
func (s Session) Started(now time.Time) bool {
	return !s.Start.IsZero() && s.Start.Before(now)
}
