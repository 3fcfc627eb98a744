package reconcile

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/paddock/internal/model"
)

var t0 = time.Date(2024, 3, 2, 15, 0, 0, 0, time.UTC)

func at(sec int) time.Time {
	return t0.Add(time.Duration(sec) * time.Second)
}

func TestReconcile_EndToEndScenario(t *testing.T) {
	positions := []model.PositionRecord{
		{DriverNumber: 1, Position: 3, Date: at(1)},
		{DriverNumber: 1, Position: 1, Date: at(5)},
		{DriverNumber: 2, Position: 2, Date: at(5)},
	}
	drivers := []model.Driver{
		{Number: 1, FullName: "A", Acronym: "AAA", TeamName: "X"},
		{Number: 2, FullName: "B", Acronym: "BBB", TeamName: "Y"},
	}
	laps := []model.LapRecord{
		{DriverNumber: 1, LapNumber: 1, Duration: 90.123},
		{DriverNumber: 2, LapNumber: 1, Duration: -1},
	}

	res := Reconcile(positions, drivers, laps)
	require.Len(t, res.Rows, 2)

	a, b := res.Rows[0], res.Rows[1]
	assert.Equal(t, "A", a.FullName)
	assert.Equal(t, 1, a.Position)
	assert.Equal(t, 25, a.Points)
	assert.Equal(t, "1:30.123", a.BestLap)

	assert.Equal(t, "B", b.FullName)
	assert.Equal(t, 2, b.Position)
	assert.Equal(t, 18, b.Points)
	assert.Equal(t, "--", b.BestLap)
	assert.Zero(t, b.BestLapSeconds)

	require.NotNil(t, res.Fastest)
	assert.Equal(t, 1, res.Fastest.DriverNumber)
	assert.Equal(t, "1:30.123", res.Fastest.Time)
	assert.Equal(t, 1, res.TotalLaps)
}

func TestReconcile_LatestTimestampWins(t *testing.T) {
	positions := []model.PositionRecord{
		{DriverNumber: 4, Position: 1, Date: at(10)},
		{DriverNumber: 4, Position: 5, Date: at(2)},
	}
	res := Reconcile(positions, nil, nil)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, 1, res.Rows[0].Position, "arrival order does not override timestamps")
}

func TestReconcile_EqualTimestampsLaterInputWins(t *testing.T) {
	positions := []model.PositionRecord{
		{DriverNumber: 4, Position: 3, Date: at(10)},
		{DriverNumber: 4, Position: 2, Date: at(10)},
	}
	res := Reconcile(positions, nil, nil)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, 2, res.Rows[0].Position)
}

func TestReconcile_PlaceholderDriver(t *testing.T) {
	positions := []model.PositionRecord{{DriverNumber: 99, Position: 7, Date: at(0)}}
	res := Reconcile(positions, []model.Driver{{Number: 1, FullName: "A"}}, nil)

	require.Len(t, res.Rows, 1)
	row := res.Rows[0]
	assert.Equal(t, "Driver #99", row.FullName)
	assert.Equal(t, "Unknown Team", row.TeamName)
	assert.Equal(t, "333333", row.TeamColour)
	assert.Equal(t, 6, row.Points)
}

func TestReconcile_DriversWithoutPositionsAreOmitted(t *testing.T) {
	positions := []model.PositionRecord{{DriverNumber: 1, Position: 1, Date: at(0)}}
	drivers := []model.Driver{{Number: 1, FullName: "A"}, {Number: 2, FullName: "B"}}
	res := Reconcile(positions, drivers, nil)
	assert.Len(t, res.Rows, 1)
}

func TestReconcile_DriverLookupLastWriteWins(t *testing.T) {
	positions := []model.PositionRecord{{DriverNumber: 1, Position: 1, Date: at(0)}}
	drivers := []model.Driver{{Number: 1, FullName: "Old"}, {Number: 1, FullName: "New"}}
	res := Reconcile(positions, drivers, nil)
	assert.Equal(t, "New", res.Rows[0].FullName)
}

func TestReconcile_InvalidLapsExcluded(t *testing.T) {
	positions := []model.PositionRecord{{DriverNumber: 1, Position: 1, Date: at(0)}}
	laps := []model.LapRecord{
		{DriverNumber: 1, LapNumber: 1, Duration: 80, PitOut: true},
		{DriverNumber: 1, LapNumber: 2, Duration: 0},
		{DriverNumber: 1, LapNumber: 3, Duration: math.NaN()},
		{DriverNumber: 1, LapNumber: 4, Duration: 92.5},
		{DriverNumber: 1, LapNumber: 5, Duration: 91.0004},
	}
	res := Reconcile(positions, nil, laps)
	row := res.Rows[0]
	assert.Equal(t, "1:31.000", row.BestLap)
	assert.InDelta(t, 91.0004, row.BestLapSeconds, 1e-9)
	assert.Equal(t, 5, row.LapsCompleted, "excluded laps still count as completed")
	assert.Equal(t, 5, res.TotalLaps)
}

func TestReconcile_TotalLapsCountsUnclassifiedDrivers(t *testing.T) {
	positions := []model.PositionRecord{{DriverNumber: 1, Position: 1, Date: at(0)}}
	laps := []model.LapRecord{
		{DriverNumber: 1, LapNumber: 1, Duration: 90},
		{DriverNumber: 2, LapNumber: 1, Duration: 91},
		{DriverNumber: 2, LapNumber: 2, Duration: 90.5},
		{DriverNumber: 2, LapNumber: 3, Duration: 90.2},
	}
	res := Reconcile(positions, nil, laps)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, 1, res.Rows[0].LapsCompleted)
	assert.Equal(t, 3, res.TotalLaps)
}

func TestReconcile_LegacyFallbacks(t *testing.T) {
	positions := []model.PositionRecord{
		{DriverNumber: 44, Position: 1, Date: at(0)},
		{DriverNumber: 33, Position: 2, Date: at(0)},
	}
	drivers := []model.Driver{
		{Number: 44, FullName: "Lewis Hamilton", LegacyFastestLap: "1:34.015", LegacyLaps: 56},
		{Number: 33, FullName: "Max Verstappen", LegacyLaps: 55},
	}
	res := Reconcile(positions, drivers, nil)

	require.Len(t, res.Rows, 2)
	assert.Equal(t, "1:34.015", res.Rows[0].BestLap)
	assert.InDelta(t, 94.015, res.Rows[0].BestLapSeconds, 1e-9)
	assert.Equal(t, 56, res.Rows[0].LapsCompleted)
	assert.Equal(t, "--", res.Rows[1].BestLap)
	assert.Equal(t, 56, res.TotalLaps)
	require.NotNil(t, res.Fastest)
	assert.Equal(t, "Lewis Hamilton", res.Fastest.FullName)
}

func TestReconcile_LegacyFastestLapUnparseableKeptVerbatim(t *testing.T) {
	positions := []model.PositionRecord{{DriverNumber: 1, Position: 1, Date: at(0)}}
	drivers := []model.Driver{{Number: 1, LegacyFastestLap: "+1 Lap"}}
	res := Reconcile(positions, drivers, nil)
	assert.Equal(t, "+1 Lap", res.Rows[0].BestLap)
	assert.Nil(t, res.Fastest)
}

func TestReconcile_OrderByPositionThenNumber(t *testing.T) {
	positions := []model.PositionRecord{
		{DriverNumber: 16, Position: 2, Date: at(0)},
		{DriverNumber: 55, Position: 1, Date: at(0)},
		{DriverNumber: 11, Position: 2, Date: at(0)},
	}
	res := Reconcile(positions, nil, nil)
	got := []int{res.Rows[0].DriverNumber, res.Rows[1].DriverNumber, res.Rows[2].DriverNumber}
	assert.Equal(t, []int{55, 11, 16}, got)
}

func TestReconcile_PointsBeyondTenth(t *testing.T) {
	positions := []model.PositionRecord{
		{DriverNumber: 1, Position: 10, Date: at(0)},
		{DriverNumber: 2, Position: 11, Date: at(0)},
	}
	res := Reconcile(positions, nil, nil)
	assert.Equal(t, 1, res.Rows[0].Points)
	assert.Equal(t, 0, res.Rows[1].Points)
}

func TestReconcile_Empty(t *testing.T) {
	res := Reconcile(nil, nil, nil)
	assert.NotNil(t, res.Rows)
	assert.Empty(t, res.Rows)
	assert.Nil(t, res.Fastest)
	assert.Zero(t, res.TotalLaps)
}
