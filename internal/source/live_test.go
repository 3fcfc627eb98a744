package source

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/paddock/internal/fetcher"
	"github.com/sells-group/paddock/internal/model"
	"github.com/sells-group/paddock/pkg/openf1"
)

type fakeOpenF1 struct {
	sessions  map[string][]openf1.Session
	drivers   []openf1.Driver
	positions []openf1.Position
	laps      []openf1.Lap
	weather   []openf1.Weather
	err       error
	calls     []string
}

func (f *fakeOpenF1) Sessions(_ context.Context, _ int, t string) ([]openf1.Session, error) {
	f.calls = append(f.calls, "sessions:"+t)
	return f.sessions[t], f.err
}

func (f *fakeOpenF1) Drivers(context.Context, int) ([]openf1.Driver, error) {
	return f.drivers, f.err
}

func (f *fakeOpenF1) Positions(context.Context, int, ...openf1.DateFilter) ([]openf1.Position, error) {
	return f.positions, f.err
}

func (f *fakeOpenF1) Weather(context.Context, int) ([]openf1.Weather, error) {
	return f.weather, f.err
}

func (f *fakeOpenF1) Laps(context.Context, int) ([]openf1.Lap, error) {
	return f.laps, f.err
}

func raceWeekends() []openf1.Session {
	return []openf1.Session{
		{SessionKey: 9480, MeetingKey: 1230, SessionName: "Race", SessionType: "Race", Year: 2024,
			CircuitShortName: "Jeddah", DateStart: "2024-03-09T17:00:00+00:00"},
		{SessionKey: 9472, MeetingKey: 1229, SessionName: "Race", SessionType: "Race", Year: 2024,
			CircuitShortName: "Sakhir", DateStart: "2024-03-02T15:00:00+00:00", DateEnd: "2024-03-02T17:00:00+00:00"},
		{SessionKey: 9488, MeetingKey: 1231, SessionName: "Sprint", SessionType: "Race", Year: 2024,
			CircuitShortName: "Shanghai", DateStart: "2024-04-20T03:00:00+00:00"},
		{SessionKey: 9492, MeetingKey: 1231, SessionName: "Race", SessionType: "Race", Year: 2024,
			CircuitShortName: "Shanghai", DateStart: "2024-04-21T07:00:00+00:00"},
	}
}

func TestLiveSessions_RoundsAndOrder(t *testing.T) {
	f := &fakeOpenF1{sessions: map[string][]openf1.Session{"Race": raceWeekends()}}
	l := NewLive(f)

	got, err := l.Sessions(context.Background(), 2024, model.SessionTypeRace)
	require.NoError(t, err)
	require.Len(t, got, 4)

	assert.Equal(t, 9472, got[0].Key)
	assert.Equal(t, 1, got[0].Round)
	assert.Equal(t, 9480, got[1].Key)
	assert.Equal(t, 2, got[1].Round)
	assert.Equal(t, model.SessionTypeSprint, got[2].Type)
	assert.Equal(t, 3, got[2].Round, "sprint shares the round of its weekend")
	assert.Equal(t, 3, got[3].Round)
	assert.Equal(t, model.ProvenanceLive, got[0].Source)
	assert.Equal(t, time.Date(2024, 3, 2, 15, 0, 0, 0, time.UTC), got[0].Start)
	assert.Equal(t, time.Date(2024, 3, 2, 17, 0, 0, 0, time.UTC), got[0].End)
	assert.Equal(t, []string{"sessions:Race"}, f.calls)
}

func TestLiveSessions_SprintFiltered(t *testing.T) {
	f := &fakeOpenF1{sessions: map[string][]openf1.Session{"Race": raceWeekends()}}
	got, err := NewLive(f).Sessions(context.Background(), 2024, model.SessionTypeSprint)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 9488, got[0].Key)
	assert.Equal(t, 3, got[0].Round)
}

func TestLiveSessions_QualifyingUsesRaceRounds(t *testing.T) {
	f := &fakeOpenF1{sessions: map[string][]openf1.Session{
		"Race": raceWeekends(),
		"Qualifying": {
			{SessionKey: 9479, MeetingKey: 1230, SessionName: "Qualifying", SessionType: "Qualifying",
				Year: 2024, DateStart: "2024-03-08T17:00:00+00:00"},
		},
	}}
	got, err := NewLive(f).Sessions(context.Background(), 2024, model.SessionTypeQualifying)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].Round)
	assert.Equal(t, []string{"sessions:Qualifying", "sessions:Race"}, f.calls)
}

func TestLiveSessions_BadTimestamp(t *testing.T) {
	f := &fakeOpenF1{sessions: map[string][]openf1.Session{
		"Race": {{SessionKey: 1, MeetingKey: 1, SessionType: "Race", DateStart: "yesterday"}},
	}}
	_, err := NewLive(f).Sessions(context.Background(), 2024, model.SessionTypeRace)
	require.Error(t, err)
	assert.True(t, fetcher.IsDecodeError(err))
}

func TestLivePositions(t *testing.T) {
	f := &fakeOpenF1{positions: []openf1.Position{
		{DriverNumber: 1, Position: 2, Date: "2024-03-02T15:00:00.123000+00:00"},
		{DriverNumber: 1, Position: 1, Date: "2024-03-02T16:00:00"},
	}}
	got, err := NewLive(f).Positions(context.Background(), model.SessionRef{Year: 2024, Key: 9472})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 123*time.Millisecond, time.Duration(got[0].Date.Nanosecond()))
	assert.Equal(t, time.Date(2024, 3, 2, 16, 0, 0, 0, time.UTC), got[1].Date)
}

func TestLiveDrivers(t *testing.T) {
	f := &fakeOpenF1{drivers: []openf1.Driver{
		{DriverNumber: 1, FullName: "Max VERSTAPPEN", NameAcronym: "VER", TeamName: "Red Bull Racing", TeamColour: "3671c6"},
		{DriverNumber: 2, FullName: "Logan SARGEANT"},
	}}
	got, err := NewLive(f).Drivers(context.Background(), model.SessionRef{Year: 2024, Key: 9472})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "3671C6", got[0].TeamColour)
	assert.Equal(t, model.NeutralTeamColour, got[1].TeamColour)
}

func TestLiveLaps_NullDurationIsZero(t *testing.T) {
	d := 90.123
	f := &fakeOpenF1{laps: []openf1.Lap{
		{DriverNumber: 1, LapNumber: 1, LapDuration: nil, IsPitOutLap: true},
		{DriverNumber: 1, LapNumber: 2, LapDuration: &d},
	}}
	got, err := NewLive(f).Laps(context.Background(), model.SessionRef{Year: 2024, Key: 1})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Zero(t, got[0].Duration)
	assert.True(t, got[0].PitOut)
	assert.InDelta(t, 90.123, got[1].Duration, 1e-9)
}

func TestLiveWeather(t *testing.T) {
	f := &fakeOpenF1{weather: []openf1.Weather{
		{Date: "2024-03-02T15:00:00+00:00", AirTemperature: 18.5, TrackTemperature: 25.1, Humidity: 46},
	}}
	got, err := NewLive(f).Weather(context.Background(), model.SessionRef{Year: 2024, Key: 1})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.InDelta(t, 18.5, got[0].AirTemperature, 1e-9)
}

func TestLive_PropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	f := &fakeOpenF1{err: boom}
	l := NewLive(f)
	ref := model.SessionRef{Year: 2024, Key: 1}

	_, err := l.Positions(context.Background(), ref)
	assert.ErrorIs(t, err, boom)
	_, err = l.Drivers(context.Background(), ref)
	assert.ErrorIs(t, err, boom)
	_, err = l.Sessions(context.Background(), 2024, model.SessionTypeRace)
	assert.ErrorIs(t, err, boom)
}
