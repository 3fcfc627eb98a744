// Package reconcile merges position, driver and lap streams into a final
// classification.
package reconcile

import (
	"cmp"
	"math"
	"slices"

	"github.com/sells-group/paddock/internal/format"
	"github.com/sells-group/paddock/internal/model"
	"github.com/sells-group/paddock/internal/points"
)

// Result is the merged classification of one session.
type Result struct {
	Rows      []model.ResultRow
	TotalLaps int
	Fastest   *model.FastestLap
}

// Reconcile builds one row per driver that appears in positions. The latest
// record of each driver decides its position; on equal timestamps the record
// later in the input wins. Drivers without metadata get a placeholder
// identity rather than being dropped. Rows are ordered by position, then by
// driver number. TotalLaps is the highest lap count of any driver in the lap
// stream, classified or not, or else the highest legacy count.
func Reconcile(positions []model.PositionRecord, drivers []model.Driver, laps []model.LapRecord) Result {
	latest := make(map[int]model.PositionRecord, len(positions))
	order := make([]int, 0, len(positions))
	for _, p := range positions {
		cur, ok := latest[p.DriverNumber]
		if !ok {
			order = append(order, p.DriverNumber)
		}
		if !ok || !p.Date.Before(cur.Date) {
			latest[p.DriverNumber] = p
		}
	}

	byNumber := make(map[int]model.Driver, len(drivers))
	for _, d := range drivers {
		byNumber[d.Number] = d
	}

	var res Result
	best := make(map[int]float64)
	counts := make(map[int]int)
	for _, l := range laps {
		counts[l.DriverNumber]++
		res.TotalLaps = max(res.TotalLaps, counts[l.DriverNumber])
		if !validLap(l) {
			continue
		}
		if cur, ok := best[l.DriverNumber]; !ok || l.Duration < cur {
			best[l.DriverNumber] = l.Duration
		}
	}

	res.Rows = make([]model.ResultRow, 0, len(order))
	for _, n := range order {
		p := latest[n]
		d, ok := byNumber[n]
		if !ok {
			d = model.PlaceholderDriver(n)
		}

		row := model.ResultRow{
			Position:     p.Position,
			DriverNumber: n,
			FullName:     d.FullName,
			Acronym:      d.Acronym,
			TeamName:     d.TeamName,
			TeamColour:   d.TeamColour,
			Points:       points.ForPosition(p.Position),
			BestLap:      format.Placeholder,
		}

		if secs, ok := best[n]; ok {
			row.BestLap = format.LapTime(secs)
			row.BestLapSeconds = secs
		} else if d.LegacyFastestLap != "" {
			row.BestLap = d.LegacyFastestLap
			if secs, err := format.ParseLapTime(d.LegacyFastestLap); err == nil {
				row.BestLapSeconds = secs
			}
		}

		row.LapsCompleted = counts[n]
		if row.LapsCompleted == 0 {
			row.LapsCompleted = d.LegacyLaps
		}
		res.TotalLaps = max(res.TotalLaps, row.LapsCompleted)

		res.Rows = append(res.Rows, row)
	}

	slices.SortStableFunc(res.Rows, func(a, b model.ResultRow) int {
		return cmp.Or(cmp.Compare(a.Position, b.Position), cmp.Compare(a.DriverNumber, b.DriverNumber))
	})

	res.Fastest = fastest(res.Rows)
	return res
}

func validLap(l model.LapRecord) bool {
	return !l.PitOut && l.Duration > 0 && !math.IsNaN(l.Duration) && !math.IsInf(l.Duration, 0)
}

func fastest(rows []model.ResultRow) *model.FastestLap {
	var out *model.FastestLap
	for _, r := range rows {
		if r.BestLapSeconds <= 0 {
			continue
		}
		if out == nil || r.BestLapSeconds < out.Seconds {
			out = &model.FastestLap{
				DriverNumber: r.DriverNumber,
				FullName:     r.FullName,
				Time:         r.BestLap,
				Seconds:      r.BestLapSeconds,
			}
		}
	}
	return out
}
