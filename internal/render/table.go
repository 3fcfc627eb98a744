package render

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/sells-group/paddock/internal/format"
	"github.com/sells-group/paddock/internal/model"
)

// tabular is a format-neutral grid shared by the table and XLSX writers.
type tabular struct {
	title  string
	header []string
	rows   [][]any
}

func writeTable(w io.Writer, t tabular) error {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	if t.title != "" {
		tw.SetTitle(t.title)
	}
	if len(t.header) > 0 {
		header := make(table.Row, len(t.header))
		for i, h := range t.header {
			header[i] = h
		}
		tw.AppendHeader(header)
	}
	for _, r := range t.rows {
		tw.AppendRow(table.Row(r))
	}
	tw.Render()
	return nil
}

const dateLayout = "2006-01-02 15:04 MST"

func displayTime(t time.Time) string {
	if t.IsZero() {
		return format.Placeholder
	}
	return t.UTC().Format(dateLayout)
}

func sessionsTable(sessions []model.Session) tabular {
	t := tabular{header: []string{"Round", "Key", "Session", "Type", "Circuit", "Location", "Country", "Start"}}
	for _, s := range sessions {
		t.rows = append(t.rows, []any{
			s.Round, s.Key, s.Name, string(s.Type), s.Circuit, s.Location, s.Country, displayTime(s.Start),
		})
	}
	return t
}

func resultsTable(res *model.SessionResult) tabular {
	s := res.Session
	t := tabular{
		title:  fmt.Sprintf("%d R%d %s · %s · %s", s.Year, s.Round, s.Name, s.Circuit, displayTime(s.Start)),
		header: []string{"Pos", "No", "Driver", "Code", "Team", "Laps", "Best Lap", "Pts"},
	}
	for _, r := range res.Rows {
		t.rows = append(t.rows, []any{
			r.Position, r.DriverNumber, r.FullName, r.Acronym, r.TeamName, r.LapsCompleted, r.BestLap, r.Points,
		})
	}
	return t
}

func summaryTable(s Summary) tabular {
	t := tabular{title: fmt.Sprintf("Latest: %s %s (%s)", s.Session.Country, s.Session.Name, displayTime(s.Session.Start))}
	add := func(k string, v any) {
		t.rows = append(t.rows, []any{k, v})
	}
	add("Track", s.TrackTemperature)
	add("Air", s.AirTemperature)
	add("Humidity", s.Humidity)
	for i, p := range s.Podium {
		add("P"+strconv.Itoa(i+1), fmt.Sprintf("%s (%s)", p.FullName, p.TeamName))
	}
	add("Grid", s.GridSize)
	add("Distance", s.TotalLaps)
	add("Fastest lap", fmt.Sprintf("%s %s", s.FastestLap, s.FastestDriver))
	return t
}

func standingsTable(rows []model.Standing) tabular {
	t := tabular{header: []string{"Pos", "Driver", "Code", "Team", "Wins", "Pts"}}
	for _, s := range rows {
		t.rows = append(t.rows, []any{
			s.Position, s.FullName, s.Acronym, s.TeamName, s.Wins, strconv.FormatFloat(s.Points, 'f', -1, 64),
		})
	}
	return t
}

func runsTable(runs []model.Run) tabular {
	t := tabular{header: []string{"ID", "Kind", "Year", "Key", "Source", "Status", "Rows", "Created", "Error"}}
	for _, r := range runs {
		t.rows = append(t.rows, []any{
			r.ID, string(r.Kind), r.Year, r.SessionKey, string(r.Source), string(r.Status), r.Rows,
			displayTime(r.CreatedAt), r.Error,
		})
	}
	return t
}
