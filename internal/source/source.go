// Package source adapts the two upstream schemas to the domain model. Live
// wraps OpenF1 for recent seasons; Legacy wraps the Ergast API for older ones.
package source

import (
	"context"

	"github.com/sells-group/paddock/internal/model"
)

// DefaultLegacyCutoff is the first season served by the live API.
const DefaultLegacyCutoff = 2023

// Source yields normalized records for one upstream.
type Source interface {
	Provenance() model.Provenance
	// Sessions lists a season's sessions of the given type in chronological
	// order. An empty type lists every session the upstream knows of.
	Sessions(ctx context.Context, year int, sessionType model.SessionType) ([]model.Session, error)
	Positions(ctx context.Context, ref model.SessionRef) ([]model.PositionRecord, error)
	Drivers(ctx context.Context, ref model.SessionRef) ([]model.Driver, error)
	Laps(ctx context.Context, ref model.SessionRef) ([]model.LapRecord, error)
	Weather(ctx context.Context, ref model.SessionRef) ([]model.Weather, error)
}

// StandingsSource yields the drivers' championship table.
type StandingsSource interface {
	Standings(ctx context.Context, year int) ([]model.Standing, error)
}

// Selector picks the source that serves a given season.
type Selector struct {
	live   Source
	legacy Source
	cutoff int
}

// NewSelector routes years >= cutoff to live and older years to legacy.
// A non-positive cutoff uses DefaultLegacyCutoff.
func NewSelector(live, legacy Source, cutoff int) *Selector {
	if cutoff <= 0 {
		cutoff = DefaultLegacyCutoff
	}
	return &Selector{live: live, legacy: legacy, cutoff: cutoff}
}

// For returns the source for year.
func (s *Selector) For(year int) Source {
	if year < s.cutoff {
		return s.legacy
	}
	return s.live
}

// Cutoff returns the first live season.
func (s *Selector) Cutoff() int {
	return s.cutoff
}

// Standings returns the source of championship tables, which only the
// historical API provides. It is nil when the legacy source cannot serve it.
func (s *Selector) Standings() StandingsSource {
	ss, _ := s.legacy.(StandingsSource)
	return ss
}
