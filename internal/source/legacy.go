package source

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/paddock/internal/model"
	"github.com/sells-group/paddock/pkg/ergast"
)

// legacyNumberBase offsets synthesized numbers for drivers that have neither
// a race number nor a permanent number.
const legacyNumberBase = 1000

// Legacy serves seasons covered only by the Ergast API. Round numbers act
// as session keys; the API has no lap stream or weather.
type Legacy struct {
	client ergast.Client
}

var (
	_ Source          = (*Legacy)(nil)
	_ StandingsSource = (*Legacy)(nil)
)

// NewLegacy creates a legacy source.
func NewLegacy(client ergast.Client) *Legacy {
	return &Legacy{client: client}
}

func (l *Legacy) Provenance() model.Provenance {
	return model.ProvenanceLegacy
}

// Sessions lists the season's races. Ergast only classifies races, so any
// other session type yields nothing.
func (l *Legacy) Sessions(ctx context.Context, year int, sessionType model.SessionType) ([]model.Session, error) {
	if sessionType != "" && sessionType != model.SessionTypeRace {
		return []model.Session{}, nil
	}
	races, err := l.client.Season(ctx, year)
	if err != nil {
		return nil, err
	}
	out := make([]model.Session, 0, len(races))
	for _, r := range races {
		s, err := legacySession(year, r)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	sortSessions(out)
	return out, nil
}

type loadScopeKey struct{}

// loadScope shares fetched legacy classifications between the streams of
// one load.
type loadScope struct {
	mu    sync.Mutex
	races map[model.SessionRef]*ergast.Race
}

// WithLoadScope returns a context under which the positions and drivers of a
// legacy session come from a single classification request. The scope dies
// with the context; nothing is kept across loads.
func WithLoadScope(ctx context.Context) context.Context {
	return context.WithValue(ctx, loadScopeKey{}, &loadScope{races: make(map[model.SessionRef]*ergast.Race)})
}

func (l *Legacy) raceResults(ctx context.Context, ref model.SessionRef) (*ergast.Race, error) {
	scope, _ := ctx.Value(loadScopeKey{}).(*loadScope)
	if scope == nil {
		return l.client.RaceResults(ctx, ref.Year, ref.Key)
	}

	scope.mu.Lock()
	defer scope.mu.Unlock()
	if race, ok := scope.races[ref]; ok {
		return race, nil
	}
	race, err := l.client.RaceResults(ctx, ref.Year, ref.Key)
	if err != nil {
		return nil, err
	}
	scope.races[ref] = race
	return race, nil
}

// Positions returns one record per classified driver, stamped with the race
// start so repeated loads of a finished race are identical.
func (l *Legacy) Positions(ctx context.Context, ref model.SessionRef) ([]model.PositionRecord, error) {
	race, err := l.raceResults(ctx, ref)
	if err != nil {
		return nil, err
	}
	if race == nil {
		return []model.PositionRecord{}, nil
	}
	start, err := raceStart(*race)
	if err != nil {
		return nil, decodeErr("ergast race", err)
	}
	out := make([]model.PositionRecord, 0, len(race.Results))
	for i, res := range race.Results {
		pos, err := strconv.Atoi(res.Position)
		if err != nil || pos <= 0 {
			pos = i + 1
		}
		out = append(out, model.PositionRecord{
			DriverNumber: legacyDriverNumber(res, i),
			Position:     pos,
			Date:         start,
		})
	}
	return out, nil
}

func (l *Legacy) Drivers(ctx context.Context, ref model.SessionRef) ([]model.Driver, error) {
	race, err := l.raceResults(ctx, ref)
	if err != nil {
		return nil, err
	}
	if race == nil {
		return []model.Driver{}, nil
	}
	out := make([]model.Driver, 0, len(race.Results))
	for i, res := range race.Results {
		d := res.Driver
		laps, _ := strconv.Atoi(res.Laps)
		var fastest string
		if res.FastestLap != nil {
			fastest = res.FastestLap.Time.Time
		}
		out = append(out, model.Driver{
			Number:           legacyDriverNumber(res, i),
			FullName:         strings.TrimSpace(d.GivenName + " " + d.FamilyName),
			Acronym:          legacyAcronym(d),
			TeamName:         res.Constructor.Name,
			TeamColour:       model.NeutralTeamColour,
			LegacyID:         d.DriverID,
			LegacyFastestLap: fastest,
			LegacyLaps:       laps,
		})
	}
	return out, nil
}

func (l *Legacy) Laps(context.Context, model.SessionRef) ([]model.LapRecord, error) {
	return []model.LapRecord{}, nil
}

func (l *Legacy) Weather(context.Context, model.SessionRef) ([]model.Weather, error) {
	return []model.Weather{}, nil
}

// Standings returns the drivers' championship after the latest round.
func (l *Legacy) Standings(ctx context.Context, year int) ([]model.Standing, error) {
	raw, err := l.client.DriverStandings(ctx, year)
	if err != nil {
		return nil, err
	}
	out := make([]model.Standing, 0, len(raw))
	for i, s := range raw {
		pos, err := strconv.Atoi(s.Position)
		if err != nil || pos <= 0 {
			pos = i + 1
		}
		pts, err := strconv.ParseFloat(s.Points, 64)
		if err != nil {
			return nil, decodeErr("ergast standings", eris.Wrapf(err, "points %q", s.Points))
		}
		wins, _ := strconv.Atoi(s.Wins)
		number, _ := strconv.Atoi(s.Driver.PermanentNumber)
		var team string
		if len(s.Constructors) > 0 {
			team = s.Constructors[len(s.Constructors)-1].Name
		}
		out = append(out, model.Standing{
			Position:     pos,
			Points:       pts,
			Wins:         wins,
			DriverNumber: number,
			FullName:     strings.TrimSpace(s.Driver.GivenName + " " + s.Driver.FamilyName),
			Acronym:      legacyAcronym(s.Driver),
			TeamName:     team,
		})
	}
	return out, nil
}

func legacySession(year int, r ergast.Race) (model.Session, error) {
	round, err := strconv.Atoi(r.Round)
	if err != nil {
		return model.Session{}, decodeErr("ergast season", eris.Wrapf(err, "round %q", r.Round))
	}
	start, err := raceStart(r)
	if err != nil {
		return model.Session{}, decodeErr("ergast season", err)
	}
	return model.Session{
		Key:      round,
		Year:     year,
		Round:    round,
		Name:     r.RaceName,
		Type:     model.SessionTypeRace,
		Country:  r.Circuit.Location.Country,
		Location: r.Circuit.Location.Locality,
		Circuit:  r.Circuit.CircuitName,
		Start:    start,
		Source:   model.ProvenanceLegacy,
	}, nil
}

// raceStart joins the race date and time. Old seasons carry no time, which
// is read as midnight UTC.
func raceStart(r ergast.Race) (time.Time, error) {
	clock := r.Time
	if clock == "" {
		clock = "00:00:00Z"
	}
	t, err := time.Parse(time.RFC3339, r.Date+"T"+clock)
	if err != nil {
		return time.Time{}, eris.Wrapf(err, "race start %q %q", r.Date, r.Time)
	}
	return t.UTC(), nil
}

func legacyDriverNumber(res ergast.Result, index int) int {
	for _, s := range []string{res.Number, res.Driver.PermanentNumber} {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return legacyNumberBase + index
}

func legacyAcronym(d ergast.Driver) string {
	if d.Code != "" {
		return d.Code
	}
	id := d.DriverID
	if len(id) > 3 {
		id = id[:3]
	}
	return strings.ToUpper(id)
}

