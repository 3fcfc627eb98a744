package source

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/paddock/internal/fetcher"
	"github.com/sells-group/paddock/internal/model"
	"github.com/sells-group/paddock/pkg/openf1"
)

const sprintSessionName = "Sprint"

// Live serves seasons covered by the OpenF1 API.
type Live struct {
	client openf1.Client
}

var _ Source = (*Live)(nil)

// NewLive creates a live source.
func NewLive(client openf1.Client) *Live {
	return &Live{client: client}
}

func (l *Live) Provenance() model.Provenance {
	return model.ProvenanceLive
}

// Sessions lists the season's sessions. OpenF1 files sprints under the Race
// session type, so Sprint is requested as Race and filtered by name.
func (l *Live) Sessions(ctx context.Context, year int, sessionType model.SessionType) ([]model.Session, error) {
	apiType := string(sessionType)
	if sessionType == model.SessionTypeSprint {
		apiType = string(model.SessionTypeRace)
	}

	raw, err := l.client.Sessions(ctx, year, apiType)
	if err != nil {
		return nil, err
	}

	races := raw
	if apiType != string(model.SessionTypeRace) {
		races, err = l.client.Sessions(ctx, year, string(model.SessionTypeRace))
		if err != nil {
			return nil, err
		}
	}
	rounds, err := meetingRounds(races)
	if err != nil {
		return nil, err
	}

	out := make([]model.Session, 0, len(raw))
	for _, s := range raw {
		sess, err := liveSession(s)
		if err != nil {
			return nil, err
		}
		if sessionType != "" && sess.Type != sessionType {
			continue
		}
		sess.Round = rounds[s.MeetingKey]
		out = append(out, sess)
	}
	sortSessions(out)
	return out, nil
}

func (l *Live) Positions(ctx context.Context, ref model.SessionRef) ([]model.PositionRecord, error) {
	raw, err := l.client.Positions(ctx, ref.Key)
	if err != nil {
		return nil, err
	}
	out := make([]model.PositionRecord, 0, len(raw))
	for _, p := range raw {
		ts, err := parseTime(p.Date)
		if err != nil {
			return nil, decodeErr("openf1 position", err)
		}
		out = append(out, model.PositionRecord{DriverNumber: p.DriverNumber, Position: p.Position, Date: ts})
	}
	return out, nil
}

func (l *Live) Drivers(ctx context.Context, ref model.SessionRef) ([]model.Driver, error) {
	raw, err := l.client.Drivers(ctx, ref.Key)
	if err != nil {
		return nil, err
	}
	out := make([]model.Driver, 0, len(raw))
	for _, d := range raw {
		colour := strings.TrimPrefix(d.TeamColour, "#")
		if colour == "" {
			colour = model.NeutralTeamColour
		}
		out = append(out, model.Driver{
			Number:      d.DriverNumber,
			FullName:    d.FullName,
			Acronym:     d.NameAcronym,
			TeamName:    d.TeamName,
			TeamColour:  strings.ToUpper(colour),
			CountryCode: d.CountryCode,
			HeadshotURL: d.HeadshotURL,
		})
	}
	return out, nil
}

func (l *Live) Laps(ctx context.Context, ref model.SessionRef) ([]model.LapRecord, error) {
	raw, err := l.client.Laps(ctx, ref.Key)
	if err != nil {
		return nil, err
	}
	out := make([]model.LapRecord, 0, len(raw))
	for _, lap := range raw {
		var dur float64
		if lap.LapDuration != nil {
			dur = *lap.LapDuration
		}
		out = append(out, model.LapRecord{
			DriverNumber: lap.DriverNumber,
			LapNumber:    lap.LapNumber,
			Duration:     dur,
			PitOut:       lap.IsPitOutLap,
		})
	}
	return out, nil
}

func (l *Live) Weather(ctx context.Context, ref model.SessionRef) ([]model.Weather, error) {
	raw, err := l.client.Weather(ctx, ref.Key)
	if err != nil {
		return nil, err
	}
	out := make([]model.Weather, 0, len(raw))
	for _, w := range raw {
		ts, err := parseTime(w.Date)
		if err != nil {
			return nil, decodeErr("openf1 weather", err)
		}
		out = append(out, model.Weather{
			Date:             ts,
			AirTemperature:   w.AirTemperature,
			TrackTemperature: w.TrackTemperature,
			Humidity:         w.Humidity,
			Pressure:         w.Pressure,
			Rainfall:         w.Rainfall,
			WindDirection:    w.WindDirection,
			WindSpeed:        w.WindSpeed,
		})
	}
	return out, nil
}

func liveSession(s openf1.Session) (model.Session, error) {
	start, err := parseTime(s.DateStart)
	if err != nil {
		return model.Session{}, decodeErr("openf1 session", err)
	}
	var end time.Time
	if s.DateEnd != "" {
		if end, err = parseTime(s.DateEnd); err != nil {
			return model.Session{}, decodeErr("openf1 session", err)
		}
	}
	return model.Session{
		Key:        s.SessionKey,
		Year:       s.Year,
		MeetingKey: s.MeetingKey,
		Name:       s.SessionName,
		Type:       liveType(s),
		Country:    s.CountryName,
		Location:   s.Location,
		Circuit:    s.CircuitShortName,
		Start:      start,
		End:        end,
		Source:     model.ProvenanceLive,
	}, nil
}

func liveType(s openf1.Session) model.SessionType {
	if s.SessionType == string(model.SessionTypeRace) && s.SessionName == sprintSessionName {
		return model.SessionTypeSprint
	}
	return model.SessionType(s.SessionType)
}

// meetingRounds numbers meetings by their earliest race-type session, so a
// sprint and the grand prix of one weekend share a round and pre-season
// testing gets none.
func meetingRounds(races []openf1.Session) (map[int]int, error) {
	first := make(map[int]time.Time)
	for _, s := range races {
		ts, err := parseTime(s.DateStart)
		if err != nil {
			return nil, decodeErr("openf1 session", err)
		}
		if cur, ok := first[s.MeetingKey]; !ok || ts.Before(cur) {
			first[s.MeetingKey] = ts
		}
	}

	keys := make([]int, 0, len(first))
	for k := range first {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b int) int {
		if c := first[a].Compare(first[b]); c != 0 {
			return c
		}
		return a - b
	})

	rounds := make(map[int]int, len(keys))
	for i, k := range keys {
		rounds[k] = i + 1
	}
	return rounds, nil
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// parseTime accepts OpenF1 ISO timestamps. Values without an offset are UTC.
func parseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, eris.Errorf("invalid timestamp %q", s)
}

func decodeErr(what string, err error) error {
	return &fetcher.DecodeError{URL: what, Err: err}
}

func sortSessions(s []model.Session) {
	slices.SortStableFunc(s, func(a, b model.Session) int {
		if c := a.Start.Compare(b.Start); c != 0 {
			return c
		}
		return a.Key - b.Key
	})
}
